// Package views holds the default templ components for sitepress. Sites that
// want their own markup build a sitepress.ViewFuncs from their own templates;
// Funcs returns these defaults.
package views

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sort"
	"time"

	"github.com/a-h/templ"
)

type renderFunc func(ctx context.Context, b *bytes.Buffer) error

// component buffers the whole fragment before writing so a failing child
// never leaves half a page on the wire.
func component(fn renderFunc) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		if err := fn(ctx, &buf); err != nil {
			return err
		}
		_, err := w.Write(buf.Bytes())
		return err
	})
}

func esc(s string) string {
	return templ.EscapeString(s)
}

func printf(b *bytes.Buffer, format string, args ...interface{}) {
	fmt.Fprintf(b, format, args...)
}

func csrfField(b *bytes.Buffer, token string) {
	if token != "" {
		printf(b, `<input type="hidden" name="_csrf" value="%s">`, esc(token))
	}
}

func hxHeaders(token string) string {
	return esc(fmt.Sprintf(`{"X-CSRF-Token": %q}`, token))
}

func fieldError(b *bytes.Buffer, errs map[string]string, field string) {
	if msg, ok := errs[field]; ok {
		printf(b, `<p class="field-error" id="%s-error" role="alert">%s</p>`, esc(field), esc(msg))
	}
}

func invalidAttr(errs map[string]string, field string) string {
	if _, ok := errs[field]; ok {
		return fmt.Sprintf(` aria-invalid="true" aria-describedby="%s-error"`, esc(field))
	}
	return ""
}

func selectedAttr(ok bool) string {
	if ok {
		return " selected"
	}
	return ""
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("January 2, 2006")
}

func inputDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02T15:04")
}

func pathEscape(s string) string {
	return url.PathEscape(s)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// nextParam is the query-escaped local path of an absolute URL, for the
// ?next= redirect after a language switch.
func nextParam(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Path == "" {
		return "%2F"
	}
	return url.QueryEscape(u.Path)
}
