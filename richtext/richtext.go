// Package richtext inspects and renders the HTML produced by the admin
// rich-text editor.
package richtext

import (
	"context"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"
)

// EmptyDocument is what the editor submits when the body has been cleared.
const EmptyDocument = "<p><br></p>"

// embedded media count as content even without any text.
const mediaSelector = "img, iframe, video, audio, embed, object"

var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Globally()
	p.AllowAttrs("target").OnElements("a")
	p.AllowImages()
	return p
}

// IsEmpty reports whether html carries no visible content: blank input, the
// editor's empty document, or markup made only of whitespace and empty tags.
func IsEmpty(html string) bool {
	trimmed := strings.TrimSpace(html)
	if trimmed == "" || trimmed == EmptyDocument {
		return true
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(trimmed))
	if err != nil {
		return false
	}
	if doc.Find(mediaSelector).Length() > 0 {
		return false
	}
	return strings.TrimSpace(doc.Text()) == ""
}

// PlainText returns the visible text of html with runs of whitespace collapsed.
func PlainText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find("script, style").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// Excerpt returns at most max runes of the text of html, cut on a word
// boundary and suffixed with an ellipsis when truncated.
func Excerpt(html string, max int) string {
	text := PlainText(html)
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	cut := string(runes[:max])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}

// Sanitize strips markup that is unsafe to serve back to visitors.
func Sanitize(html string) string {
	return policy.Sanitize(html)
}

// HTML returns a templ.Component that renders sanitized html.
func HTML(html string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, Sanitize(html))
		return err
	})
}
