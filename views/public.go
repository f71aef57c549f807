package views

import (
	"bytes"
	"context"
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/sitepress"
	"github.com/eringen/sitepress/content"
	"github.com/eringen/sitepress/richtext"
)

// theme is the site-wide chrome shared by every public page.
type theme struct {
	site      sitepress.SiteConfig
	languages []string
}

func (t theme) layout(ctx context.Context, b *bytes.Buffer, meta sitepress.PageMeta, body renderFunc) error {
	lang := meta.Lang
	if lang == "" {
		lang = t.site.DefaultLang
	}
	printf(b, `<!doctype html><html lang="%s"><head><meta charset="utf-8">`, esc(lang))
	b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
	printf(b, `<title>%s</title>`, esc(meta.Title))
	if meta.Description != "" {
		printf(b, `<meta name="description" content="%s">`, esc(meta.Description))
		printf(b, `<meta property="og:description" content="%s">`, esc(meta.Description))
	}
	if meta.Keywords != "" {
		printf(b, `<meta name="keywords" content="%s">`, esc(meta.Keywords))
	}
	if meta.URL != "" {
		printf(b, `<link rel="canonical" href="%s"><meta property="og:url" content="%s">`, esc(meta.URL), esc(meta.URL))
	}
	printf(b, `<meta property="og:title" content="%s">`, esc(meta.Title))
	if meta.OGType != "" {
		printf(b, `<meta property="og:type" content="%s">`, esc(meta.OGType))
	}
	if meta.Image != "" {
		printf(b, `<meta property="og:image" content="%s">`, esc(meta.Image))
	}
	printf(b, `<link rel="alternate" type="application/rss+xml" title="%s" href="/feed.xml">`, esc(t.site.Name))
	b.WriteString(`<link rel="stylesheet" href="/public/styles.css">`)
	b.WriteString(`<script src="/public/site.js" defer></script>`)
	if meta.JSONLD != "" {
		// JSON-LD is produced by encoding/json, which escapes <, > and &.
		printf(b, `<script type="application/ld+json">%s</script>`, meta.JSONLD)
	}
	b.WriteString(`</head><body>`)
	printf(b, `<header class="site-header"><a class="brand" href="/">%s</a><nav class="lang" aria-label="%s">`, esc(t.site.Name), esc(T(lang, "language")))
	for _, code := range t.languages {
		current := ""
		if code == lang {
			current = ` aria-current="true"`
		}
		printf(b, `<a href="/lang/%s/?next=%s"%s>%s</a>`, esc(pathEscape(code)), esc(nextParam(meta.URL)), current, esc(code))
	}
	b.WriteString(`</nav></header><main>`)
	if err := body(ctx, b); err != nil {
		return err
	}
	printf(b, `</main><footer class="site-footer"><p>%s</p><a href="/feed.xml">RSS</a></footer></body></html>`, esc(t.site.Description))
	return nil
}

func (t theme) home(page sitepress.HomePage) templ.Component {
	return component(func(ctx context.Context, b *bytes.Buffer) error {
		return t.layout(ctx, b, page.Meta, func(ctx context.Context, b *bytes.Buffer) error {
			lang := page.Meta.Lang
			printf(b, `<section class="hero"><h1>%s</h1><p>%s</p></section>`, esc(t.site.Name), esc(t.site.Description))
			printf(b, `<section class="articles"><h2>%s</h2>`, esc(T(lang, "latest")))
			if len(page.Articles) == 0 {
				printf(b, `<p class="empty">%s</p>`, esc(T(lang, "no_articles")))
			}
			for _, a := range page.Articles {
				articleCard(b, a, lang)
			}
			printf(b, `</section><section class="contact" id="contact"><h2>%s</h2>`, esc(T(lang, "contact")))
			if err := t.contactForm(page.Contact).Render(ctx, b); err != nil {
				return err
			}
			b.WriteString(`</section>`)
			return nil
		})
	})
}

func articleCard(b *bytes.Buffer, a content.Article, lang string) {
	href := "/blog/" + pathEscape(a.ID) + "/"
	b.WriteString(`<article class="card">`)
	if a.FeaturedImage != "" {
		printf(b, `<img src="%s" alt="" loading="lazy">`, esc(a.FeaturedImage))
	}
	if a.Category != "" {
		printf(b, `<span class="category">%s</span>`, esc(a.Category))
	}
	printf(b, `<h3><a href="%s">%s</a></h3>`, esc(href), esc(a.Title))
	printf(b, `<time datetime="%s">%s</time>`, esc(a.PublishDate.Format("2006-01-02")), esc(formatDate(a.PublishDate)))
	if a.Excerpt != "" {
		printf(b, `<p>%s</p>`, esc(a.Excerpt))
	}
	printf(b, `<a class="more" href="%s">%s</a></article>`, esc(href), esc(T(lang, "read_more")))
}

func (t theme) article(page sitepress.ArticlePage) templ.Component {
	return component(func(ctx context.Context, b *bytes.Buffer) error {
		return t.layout(ctx, b, page.Meta, func(ctx context.Context, b *bytes.Buffer) error {
			a := page.Article
			lang := page.Meta.Lang
			b.WriteString(`<article class="post">`)
			if a.FeaturedImage != "" {
				printf(b, `<img class="featured" src="%s" alt="">`, esc(a.FeaturedImage))
			}
			printf(b, `<h1>%s</h1><p class="byline">`, esc(a.Title))
			if a.Author != "" {
				printf(b, `<span class="author">%s</span> · `, esc(a.Author))
			}
			printf(b, `%s <time datetime="%s">%s</time>`, esc(T(lang, "published_on")), esc(a.PublishDate.Format("2006-01-02")), esc(formatDate(a.PublishDate)))
			printf(b, ` · <span class="views">%s %s</span></p>`, strconv.Itoa(a.Views), esc(T(lang, "views")))
			b.WriteString(`<div class="content">`)
			if err := richtext.HTML(a.Content).Render(ctx, b); err != nil {
				return err
			}
			b.WriteString(`</div></article>`)
			if len(page.Related) > 0 {
				printf(b, `<section class="related"><h2>%s</h2>`, esc(T(lang, "related")))
				for _, r := range page.Related {
					articleCard(b, r, lang)
				}
				b.WriteString(`</section>`)
			}
			printf(b, `<p><a href="/">%s</a></p>`, esc(T(lang, "back")))
			return nil
		})
	})
}

// contactForm is both part of the landing page and the partial the contact
// handler swaps in after a submission. A successful submission comes back as
// an empty form with the acknowledgment on top.
func (t theme) contactForm(form sitepress.ContactForm) templ.Component {
	return component(func(ctx context.Context, b *bytes.Buffer) error {
		lang := form.Lang
		printf(b, `<form id="contact-form" method="post" action="/contact/" hx-post="/contact/" hx-target="this" hx-swap="outerHTML" hx-headers="%s">`, hxHeaders(form.CSRFToken))
		if form.Success {
			printf(b, `<p class="contact-success" role="status">%s</p>`, esc(T(lang, "thanks")))
		}
		csrfField(b, form.CSRFToken)
		if form.Page != "" {
			printf(b, `<input type="hidden" name="page" value="%s">`, esc(form.Page))
		}
		for _, f := range []struct {
			name, kind string
			required   bool
		}{
			{"name", "text", true},
			{"email", "email", true},
			{"company", "text", false},
		} {
			req := ""
			if f.required {
				req = " required"
			}
			printf(b, `<label for="contact-%s">%s</label>`, f.name, esc(T(lang, f.name)))
			printf(b, `<input id="contact-%s" name="%s" type="%s" value="%s"%s%s>`,
				f.name, f.name, f.kind, esc(form.Values[f.name]), req, invalidAttr(form.Errors, f.name))
			fieldError(b, form.Errors, f.name)
		}
		printf(b, `<label for="contact-message">%s</label>`, esc(T(lang, "message")))
		printf(b, `<textarea id="contact-message" name="message" rows="5" required%s>%s</textarea>`,
			invalidAttr(form.Errors, "message"), esc(form.Values["message"]))
		fieldError(b, form.Errors, "message")
		printf(b, `<button type="submit">%s</button></form>`, esc(T(lang, "send")))
		return nil
	})
}

func (t theme) notFound() templ.Component {
	return t.errorPage("not_found", "not_found_body")
}

func (t theme) serverError() templ.Component {
	return t.errorPage("server_error", "error_body")
}

func (t theme) errorPage(titleKey, bodyKey string) templ.Component {
	return component(func(ctx context.Context, b *bytes.Buffer) error {
		lang := t.site.DefaultLang
		meta := sitepress.PageMeta{Title: T(lang, titleKey) + " | " + t.site.Name, Lang: lang}
		return t.layout(ctx, b, meta, func(ctx context.Context, b *bytes.Buffer) error {
			printf(b, `<section class="error"><h1>%s</h1><p>%s</p><a href="/">%s</a></section>`,
				esc(T(lang, titleKey)), esc(T(lang, bodyKey)), esc(T(lang, "back")))
			return nil
		})
	})
}
