package sitepress

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/sitepress/content"
	"github.com/eringen/sitepress/intake"
	"github.com/eringen/sitepress/richtext"
)

func (a *App) handleHome(c echo.Context) error {
	articles, err := a.Cache.Published()
	if err != nil {
		return err
	}
	lang := a.langFor(c)
	return Render(c, a.Views.Home(HomePage{
		Meta: PageMeta{
			Title:       a.Config.Name,
			Description: a.Config.Description,
			URL:         BuildURL(a.Config.URL),
			OGType:      "website",
			Lang:        lang,
			JSONLD:      WebsiteJsonLD(a.Config),
		},
		Articles: articles,
		Contact:  ContactForm{CSRFToken: CsrfToken(c), Lang: lang, Page: c.Request().URL.RequestURI()},
	}))
}

// handleArticle serves a published article. Each request is a read-detail
// access and increments the view count.
func (a *App) handleArticle(c echo.Context) error {
	id := c.Param("id")
	article, err := a.Store.GetArticle(id)
	if errors.Is(err, ErrNotFound) || (err == nil && !article.Published()) {
		return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
	}
	if err != nil {
		return err
	}
	if article, err = a.Store.ViewArticle(id); err != nil {
		return err
	}
	related, err := a.Cache.Related(article, 3)
	if err != nil {
		return err
	}
	description := article.MetaDescription
	if description == "" {
		description = article.Excerpt
	}
	if description == "" {
		description = richtext.Excerpt(article.Content, 160)
	}
	return Render(c, a.Views.Article(ArticlePage{
		Meta: PageMeta{
			Title:       article.Title + " | " + a.Config.Name,
			Description: description,
			URL:         ArticleURL(a.Config.URL, article),
			OGType:      "article",
			Keywords:    article.Keywords,
			Image:       article.FeaturedImage,
			Lang:        a.langFor(c),
			JSONLD:      ArticleJsonLD(article, a.Config),
		},
		Article: article,
		Related: related,
	}))
}

// handleContact is the single intake handler for the contact form. It
// always answers with the form partial so the page never navigates.
func (a *App) handleContact(c echo.Context) error {
	if !a.contactLimiter.Allow(c.RealIP()) {
		return c.String(http.StatusTooManyRequests, "Too many submissions. Try again in a minute.")
	}
	params, err := c.FormParams()
	if err != nil {
		return err
	}
	fields := make(map[string]string, len(params))
	for k, v := range params {
		if len(v) > 0 {
			fields[k] = strings.Join(v, ", ")
		}
	}
	page := fields["page"]
	delete(fields, "page")
	if page == "" {
		page = c.Request().Referer()
	}

	_, err = a.Intake.Submit(c.Request().Context(), intake.Submission{Fields: fields, Page: page})
	var verr *intake.ValidationError
	if errors.As(err, &verr) {
		delete(fields, "_csrf")
		form := ContactForm{Values: fields, Errors: map[string]string{}, CSRFToken: CsrfToken(c), Lang: a.langFor(c), Page: page}
		for _, f := range verr.Fields {
			form.Errors[f] = fmt.Sprintf("%s is required.", fieldLabel(f))
		}
		return RenderInvalid(c, a.Views.ContactForm(form))
	}
	if err != nil {
		return err
	}
	return Render(c, a.Views.ContactForm(ContactForm{Success: true, CSRFToken: CsrfToken(c), Lang: a.langFor(c), Page: page}))
}

func fieldLabel(field string) string {
	switch field {
	case "name":
		return "Name"
	case "email":
		return "Email"
	case "message":
		return "Message"
	case "title":
		return "Title"
	case "content":
		return "Content"
	}
	return field
}

// handleRobots generates robots.txt from the configured site URL.
func (a *App) handleRobots(c echo.Context) error {
	body := fmt.Sprintf("User-agent: *\nAllow: /\nDisallow: /admin/\nDisallow: /api/\n\nSitemap: %s/sitemap.xml\n", strings.TrimRight(a.Config.URL, "/"))
	return c.String(http.StatusOK, body)
}

func (a *App) handleSitemap(c echo.Context) error {
	articles, err := a.Cache.Published()
	if err != nil {
		return err
	}
	return a.renderSitemap(c, articles)
}

func (a *App) handleFeed(c echo.Context) error {
	articles, err := a.Cache.Published()
	if err != nil {
		return err
	}
	sorted := append([]content.Article(nil), articles...)
	content.SortByPublishDate(sorted)
	return a.renderRSS(c, sorted)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Logger.Error("server error", zap.String("uri", c.Request().RequestURI), zap.Error(err))
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
