package views

import (
	"bytes"
	"context"
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/sitepress"
	"github.com/eringen/sitepress/content"
)

func (t theme) adminLayout(ctx context.Context, b *bytes.Buffer, title, csrf string, body renderFunc) error {
	b.WriteString(`<!doctype html><html lang="en"><head><meta charset="utf-8">`)
	b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1"><meta name="robots" content="noindex">`)
	printf(b, `<title>%s | %s</title>`, esc(title), esc(t.site.Name))
	b.WriteString(`<link rel="stylesheet" href="/public/styles.css">`)
	b.WriteString(`<script src="/public/site.js" defer></script>`)
	printf(b, `</head><body class="admin" hx-headers="%s">`, hxHeaders(csrf))
	if err := body(ctx, b); err != nil {
		return err
	}
	b.WriteString(`</body></html>`)
	return nil
}

func (t theme) adminLogin(page sitepress.LoginPage) templ.Component {
	return component(func(ctx context.Context, b *bytes.Buffer) error {
		return t.adminLayout(ctx, b, "Admin login", page.CSRFToken, func(ctx context.Context, b *bytes.Buffer) error {
			b.WriteString(`<main class="login"><h1>Admin</h1>`)
			b.WriteString(`<form method="post" action="/admin/login/">`)
			csrfField(b, page.CSRFToken)
			b.WriteString(`<label for="password">Password</label>`)
			b.WriteString(`<input id="password" name="password" type="password" autocomplete="current-password" required autofocus>`)
			if page.Error != "" {
				ms := page.ClearAfter.Milliseconds()
				if ms < 0 {
					ms = 0
				}
				printf(b, `<p class="login-error" role="alert" data-clear-after="%d">%s</p>`, ms, esc(page.Error))
			}
			b.WriteString(`<button type="submit">Log in</button></form></main>`)
			return nil
		})
	})
}

var adminViews = []struct {
	view  sitepress.AdminView
	label string
}{
	{sitepress.ViewWrite, "Write"},
	{sitepress.ViewManage, "Manage"},
	{sitepress.ViewSettings, "Settings"},
}

func (t theme) dashboard(d sitepress.Dashboard) templ.Component {
	return component(func(ctx context.Context, b *bytes.Buffer) error {
		return t.adminLayout(ctx, b, "Dashboard", d.Form.CSRFToken, func(ctx context.Context, b *bytes.Buffer) error {
			printf(b, `<header class="admin-header"><a href="/">%s</a><nav class="tabs">`, esc(t.site.Name))
			for _, v := range adminViews {
				current := ""
				if v.view == d.View {
					current = ` aria-current="page"`
				}
				printf(b, `<a href="/admin/?view=%s" data-tab="%s" hx-get="/admin/view/%s/" hx-target="#panel-%s"%s>%s</a>`,
					v.view, v.view, v.view, v.view, current, v.label)
			}
			b.WriteString(`</nav><form method="post" action="/admin/logout/">`)
			csrfField(b, d.Form.CSRFToken)
			b.WriteString(`<button type="submit">Log out</button></form></header>`)

			panel := func(view sitepress.AdminView, fill func() error) error {
				hidden := ""
				if view != d.View {
					hidden = " hidden"
				}
				printf(b, `<section id="panel-%s" class="panel" data-panel="%s"%s>`, view, view, hidden)
				if err := fill(); err != nil {
					return err
				}
				b.WriteString(`</section>`)
				return nil
			}
			if err := panel(sitepress.ViewWrite, func() error {
				if err := t.articleForm(d.Form).Render(ctx, b); err != nil {
					return err
				}
				b.WriteString(`<div hx-get="/admin/images/" hx-trigger="load" hx-swap="outerHTML"></div>`)
				return nil
			}); err != nil {
				return err
			}
			if err := panel(sitepress.ViewManage, func() error {
				return t.articleList(d.List).Render(ctx, b)
			}); err != nil {
				return err
			}
			return panel(sitepress.ViewSettings, func() error {
				return t.settings(d.Settings).Render(ctx, b)
			})
		})
	})
}

func (t theme) articleForm(form sitepress.ArticleForm) templ.Component {
	return component(func(ctx context.Context, b *bytes.Buffer) error {
		a := form.Article
		b.WriteString(`<form id="article-form" class="editor" method="post" action="/admin/save/" hx-post="/admin/save/" hx-target="this" hx-swap="outerHTML">`)
		csrfField(b, form.CSRFToken)
		printf(b, `<input type="hidden" name="id" value="%s">`, esc(a.ID))
		if a.ID != "" {
			printf(b, `<p class="editing">Editing <strong>%s</strong> (%s)</p>`, esc(a.Title), esc(string(a.Status)))
		} else {
			b.WriteString(`<p class="editing">New article</p>`)
		}
		if form.Message != "" {
			printf(b, `<p class="flash" role="status">%s</p>`, esc(form.Message))
		}

		textInput := func(name, label, value string) {
			printf(b, `<label for="%s">%s</label><input id="%s" name="%s" type="text" value="%s"%s>`,
				name, label, name, name, esc(value), invalidAttr(form.Errors, name))
			fieldError(b, form.Errors, name)
		}
		textInput("title", "Title", a.Title)
		textInput("author", "Author", a.Author)

		b.WriteString(`<label for="category">Category</label><select id="category" name="category"><option value="">None</option>`)
		for _, cat := range form.Categories {
			printf(b, `<option value="%s"%s>%s</option>`, esc(cat), selectedAttr(cat == a.Category), esc(cat))
		}
		b.WriteString(`</select>`)

		printf(b, `<label for="excerpt">Excerpt</label><textarea id="excerpt" name="excerpt" rows="2">%s</textarea>`, esc(a.Excerpt))
		printf(b, `<label for="content">Content</label><textarea id="content" name="content" rows="16" data-rich-text%s>%s</textarea>`,
			invalidAttr(form.Errors, "content"), esc(a.Content))
		fieldError(b, form.Errors, "content")
		textInput("featuredImage", "Featured image", a.FeaturedImage)
		textInput("metaDescription", "Meta description", a.MetaDescription)
		textInput("keywords", "Keywords", a.Keywords)
		printf(b, `<label for="publishDate">Publish date</label><input id="publishDate" name="publishDate" type="datetime-local" value="%s">`,
			esc(inputDate(a.PublishDate)))

		b.WriteString(`<div class="actions">`)
		b.WriteString(`<button type="submit" name="action" value="draft">Save draft</button>`)
		b.WriteString(`<button type="submit" name="action" value="publish">Publish</button>`)
		b.WriteString(`<button type="button" hx-get="/admin/article/new/" hx-target="#article-form" hx-swap="outerHTML">New</button>`)
		b.WriteString(`</div></form>`)
		return nil
	})
}

var listFilters = []struct {
	filter content.Filter
	label  string
}{
	{content.FilterAll, "All"},
	{content.FilterPublished, "Published"},
	{content.FilterDraft, "Drafts"},
}

func (t theme) articleList(list sitepress.ArticleList) templ.Component {
	return component(func(ctx context.Context, b *bytes.Buffer) error {
		b.WriteString(`<div id="article-list">`)
		if list.Message != "" {
			printf(b, `<p class="flash" role="status">%s</p>`, esc(list.Message))
		}
		printf(b, `<dl class="stats"><dt>Total</dt><dd>%d</dd><dt>Published</dt><dd>%d</dd><dt>Drafts</dt><dd>%d</dd></dl>`,
			list.Stats.Total, list.Stats.Published, list.Stats.Drafts)
		b.WriteString(`<nav class="filters">`)
		for _, f := range listFilters {
			current := ""
			if f.filter == list.Filter {
				current = ` aria-current="true"`
			}
			printf(b, `<a href="/admin/?view=manage" hx-get="/admin/view/manage/?status=%s" hx-target="#article-list" hx-swap="outerHTML"%s>%s</a>`,
				f.filter, current, f.label)
		}
		b.WriteString(`</nav>`)
		if len(list.Articles) == 0 {
			b.WriteString(`<p class="empty">No articles.</p></div>`)
			return nil
		}
		b.WriteString(`<table><thead><tr><th>Title</th><th>Category</th><th>Status</th><th>Published</th><th>Views</th><th></th></tr></thead><tbody>`)
		for _, a := range list.Articles {
			id := pathEscape(a.ID)
			printf(b, `<tr><td>%s</td><td>%s</td><td><span class="status status-%s">%s</span></td><td>%s</td><td>%s</td>`,
				esc(a.Title), esc(a.Category), esc(string(a.Status)), esc(string(a.Status)), esc(formatDate(a.PublishDate)), strconv.Itoa(a.Views))
			printf(b, `<td><button type="button" data-tab="write" hx-get="/admin/article/%s/" hx-target="#article-form" hx-swap="outerHTML">Edit</button>`, esc(id))
			printf(b, `<button type="button" class="danger" hx-delete="/admin/article/%s/?confirm=yes&amp;status=%s" hx-confirm="%s" hx-target="#article-list" hx-swap="outerHTML">Delete</button></td></tr>`,
				esc(id), list.Filter, esc("Delete \""+a.Title+"\"? This cannot be undone."))
		}
		b.WriteString(`</tbody></table></div>`)
		return nil
	})
}

func (t theme) settings(page sitepress.SettingsPage) templ.Component {
	return component(func(ctx context.Context, b *bytes.Buffer) error {
		b.WriteString(`<div id="settings">`)
		if page.Message != "" {
			printf(b, `<p class="flash" role="status">%s</p>`, esc(page.Message))
		}
		b.WriteString(`<h2>Site</h2><dl class="site-info">`)
		printf(b, `<dt>Name</dt><dd>%s</dd><dt>URL</dt><dd>%s</dd><dt>Description</dt><dd>%s</dd><dt>Author</dt><dd>%s</dd>`,
			esc(page.Site.Name), esc(page.Site.URL), esc(page.Site.Description), esc(page.Site.Author))
		printf(b, `<dt>Lead relay</dt><dd>%s</dd><dt>Action backend</dt><dd>%s</dd><dt>Session length</dt><dd>%s</dd></dl>`,
			onOff(page.RelayOn), onOff(page.BackendOn), esc(page.SessionTTL.String()))

		b.WriteString(`<h2>Language</h2><nav class="lang">`)
		for _, code := range page.Languages {
			current := ""
			if code == page.Lang {
				current = ` aria-current="true"`
			}
			printf(b, `<a href="/lang/%s/?next=%%2Fadmin%%2F%%3Fview%%3Dsettings"%s>%s</a>`, esc(pathEscape(code)), current, esc(code))
		}
		b.WriteString(`</nav>`)

		printf(b, `<h2>Leads (%d)</h2>`, page.LeadTotal)
		if len(page.Leads) == 0 {
			b.WriteString(`<p class="empty">No leads yet.</p></div>`)
			return nil
		}
		b.WriteString(`<table class="leads"><thead><tr><th>Received</th><th>Name</th><th>Email</th><th>Company</th><th>Message</th><th>Page</th><th>Other</th></tr></thead><tbody>`)
		for _, l := range page.Leads {
			printf(b, `<tr><td>%s</td><td>%s</td><td><a href="mailto:%s">%s</a></td><td>%s</td><td>%s</td><td>%s</td><td>`,
				esc(l.Timestamp.Format("2006-01-02 15:04")), esc(l.Name), esc(l.Email), esc(l.Email), esc(l.Company), esc(l.Message), esc(l.Page))
			for _, k := range sortedKeys(l.Fields) {
				printf(b, `<span class="extra">%s: %s</span> `, esc(k), esc(l.Fields[k]))
			}
			b.WriteString(`</td></tr>`)
		}
		b.WriteString(`</tbody></table>`)
		b.WriteString(`<form hx-post="/admin/leads/clear/" hx-confirm="Remove every stored lead?" hx-target="#settings" hx-swap="outerHTML">`)
		csrfField(b, page.CSRFToken)
		b.WriteString(`<input type="hidden" name="confirm" value="yes"><button type="submit" class="danger">Clear leads</button></form></div>`)
		return nil
	})
}

func onOff(on bool) string {
	if on {
		return "enabled"
	}
	return "disabled"
}

func (t theme) adminImages(images []sitepress.Image, csrf string) templ.Component {
	return component(func(ctx context.Context, b *bytes.Buffer) error {
		b.WriteString(`<div id="image-list" class="images"><h3>Featured images</h3>`)
		b.WriteString(`<form hx-post="/admin/images/upload/" hx-encoding="multipart/form-data" hx-target="#image-list" hx-swap="outerHTML">`)
		csrfField(b, csrf)
		b.WriteString(`<input type="file" name="image" accept="image/jpeg,image/png,image/gif" required><button type="submit">Upload</button></form>`)
		if len(images) == 0 {
			b.WriteString(`<p class="empty">No images uploaded.</p></div>`)
			return nil
		}
		b.WriteString(`<ul>`)
		for _, img := range images {
			src := sitepress.ImageURL(img.Filename)
			printf(b, `<li><img src="%s" alt="%s" width="120" loading="lazy"><span>%dx%d</span>`,
				esc(src), esc(img.OriginalName), img.Width, img.Height)
			printf(b, `<button type="button" data-pick-image="%s">Use</button>`, esc(src))
			printf(b, `<button type="button" class="danger" hx-delete="/admin/images/%s/" hx-confirm="Delete this image?" hx-target="#image-list" hx-swap="outerHTML">Delete</button></li>`,
				esc(pathEscape(img.Filename)))
		}
		b.WriteString(`</ul></div>`)
		return nil
	})
}
