package sitepress

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/sitepress/content"
	"github.com/eringen/sitepress/intake"
	"github.com/eringen/sitepress/richtext"
)

// adminSession loads the session for an admin route. ok is false when the
// visitor is not logged in; the caller should answer with denyAdmin.
func (a *App) adminSession(c echo.Context) (*Session, bool, error) {
	s, err := a.loadSession(c)
	if err != nil {
		return nil, false, err
	}
	return s, s.LoggedIn(), nil
}

// denyAdmin redirects to the login page. htmx requests get HX-Redirect
// instead so a partial swap does not land a full page in a panel.
func denyAdmin(c echo.Context) error {
	if IsHTMXRequest(c) {
		c.Response().Header().Set("HX-Redirect", "/admin/")
		return c.NoContent(http.StatusUnauthorized)
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) handleAdmin(c echo.Context) error {
	s, ok, err := a.adminSession(c)
	if err != nil {
		return err
	}
	if !ok {
		return Render(c, a.Views.AdminLogin(LoginPage{
			Error:      s.VisibleError(a.now()),
			ClearAfter: s.ErrorUntil.Sub(a.now()),
			CSRFToken:  CsrfToken(c),
		}))
	}
	if v := c.QueryParam("view"); v != "" {
		s.SwitchView(ParseAdminView(v))
		if err := a.saveSession(c, s); err != nil {
			return err
		}
	}
	d, err := a.dashboard(c, s)
	if err != nil {
		return err
	}
	d.List.Message = c.QueryParam("msg")
	return Render(c, a.Views.Dashboard(d))
}

func (a *App) dashboard(c echo.Context, s *Session) (Dashboard, error) {
	view := s.View
	if view == "" {
		view = ViewWrite
	}
	list, err := a.articleList(c, content.FilterAll)
	if err != nil {
		return Dashboard{}, err
	}
	settings, err := a.settingsPage(c, s)
	if err != nil {
		return Dashboard{}, err
	}
	return Dashboard{
		View:     view,
		Form:     a.emptyForm(c),
		List:     list,
		Settings: settings,
		Lang:     a.langFor(c),
	}, nil
}

func (a *App) handleAdminLogin(c echo.Context) error {
	s, err := a.loadSession(c)
	if err != nil {
		return err
	}
	if a.gate.Login(s, c.FormValue("password")) {
		if err := a.saveSession(c, s); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if err := a.saveSession(c, s); err != nil {
		return err
	}
	return RenderStatus(c, http.StatusUnauthorized, a.Views.AdminLogin(LoginPage{
		Error:      s.Error,
		ClearAfter: a.gate.ErrorTTL(),
		CSRFToken:  CsrfToken(c),
	}))
}

func (a *App) handleAdminLogout(c echo.Context) error {
	s, err := a.loadSession(c)
	if err != nil {
		return err
	}
	a.gate.Logout(s)
	if err := a.saveSession(c, s); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

// handleAdminView switches the admin sub-navigation. Manage re-queries the
// list and counts; Write leaves whatever is in the editor alone.
func (a *App) handleAdminView(c echo.Context) error {
	s, ok, err := a.adminSession(c)
	if err != nil {
		return err
	}
	if !ok {
		return denyAdmin(c)
	}
	view := ParseAdminView(c.Param("view"))
	s.SwitchView(view)
	if err := a.saveSession(c, s); err != nil {
		return err
	}
	switch view {
	case ViewManage:
		list, err := a.articleList(c, content.ParseFilter(c.QueryParam("status")))
		if err != nil {
			return err
		}
		return Render(c, a.Views.ArticleList(list))
	case ViewSettings:
		page, err := a.settingsPage(c, s)
		if err != nil {
			return err
		}
		return Render(c, a.Views.Settings(page))
	}
	return c.NoContent(http.StatusNoContent)
}

// handleAdminNewArticle resets the editor to its empty defaults.
func (a *App) handleAdminNewArticle(c echo.Context) error {
	if _, ok, err := a.adminSession(c); err != nil || !ok {
		if err != nil {
			return err
		}
		return denyAdmin(c)
	}
	return Render(c, a.Views.ArticleForm(a.emptyForm(c)))
}

// handleAdminEdit loads an article into the editor. The form carries the
// id so the next save updates instead of inserting.
func (a *App) handleAdminEdit(c echo.Context) error {
	if _, ok, err := a.adminSession(c); err != nil || !ok {
		if err != nil {
			return err
		}
		return denyAdmin(c)
	}
	article, err := a.Store.GetArticle(c.Param("id"))
	if errors.Is(err, ErrNotFound) {
		return c.NoContent(http.StatusNotFound)
	}
	if err != nil {
		return err
	}
	return Render(c, a.Views.ArticleForm(ArticleForm{
		Article:    article,
		Categories: content.Categories,
		CSRFToken:  CsrfToken(c),
	}))
}

// articleFromForm reads the editor fields. Status comes from the submit
// button pressed ("publish" or "draft").
func (a *App) articleFromForm(c echo.Context) content.Article {
	article := content.Article{
		ID:              strings.TrimSpace(c.FormValue("id")),
		Title:           strings.TrimSpace(c.FormValue("title")),
		Author:          strings.TrimSpace(c.FormValue("author")),
		Category:        strings.TrimSpace(c.FormValue("category")),
		Excerpt:         strings.TrimSpace(c.FormValue("excerpt")),
		Content:         c.FormValue("content"),
		FeaturedImage:   strings.TrimSpace(c.FormValue("featuredImage")),
		MetaDescription: strings.TrimSpace(c.FormValue("metaDescription")),
		Keywords:        strings.TrimSpace(c.FormValue("keywords")),
		Status:          content.StatusDraft,
	}
	if c.FormValue("action") == "publish" {
		article.Status = content.StatusPublished
	}
	if article.Author == "" {
		article.Author = a.Config.Author
	}
	if pd := strings.TrimSpace(c.FormValue("publishDate")); pd != "" {
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"} {
			if t, err := time.ParseInLocation(layout, pd, time.UTC); err == nil {
				article.PublishDate = t
				break
			}
		}
	}
	return article
}

// ValidateArticle checks the fields the editor requires before a save.
func ValidateArticle(article content.Article) map[string]string {
	errs := map[string]string{}
	if article.Title == "" {
		errs["title"] = "Title is required."
	}
	if richtext.IsEmpty(article.Content) {
		errs["content"] = "Content is required."
	}
	return errs
}

// handleAdminSave publishes or saves a draft. Validation failures re-render
// the form with messages and leave the store untouched. Publishing clears the
// editor; saving a draft keeps it loaded with its id.
func (a *App) handleAdminSave(c echo.Context) error {
	if _, ok, err := a.adminSession(c); err != nil || !ok {
		if err != nil {
			return err
		}
		return denyAdmin(c)
	}
	article := a.articleFromForm(c)
	if errs := ValidateArticle(article); len(errs) > 0 {
		return RenderInvalid(c, a.Views.ArticleForm(ArticleForm{
			Article:    article,
			Errors:     errs,
			Categories: content.Categories,
			CSRFToken:  CsrfToken(c),
		}))
	}
	if article.Excerpt == "" {
		article.Excerpt = richtext.Excerpt(article.Content, 200)
	}
	saved, err := a.Store.SaveArticle(article)
	if err != nil {
		return err
	}
	a.Cache.Invalidate()

	if saved.Published() {
		form := a.emptyForm(c)
		form.Message = "Article published."
		return Render(c, a.Views.ArticleForm(form))
	}
	return Render(c, a.Views.ArticleForm(ArticleForm{
		Article:    saved,
		Message:    "Draft saved.",
		Categories: content.Categories,
		CSRFToken:  CsrfToken(c),
	}))
}

// handleAdminDelete removes an article once the request carries an explicit
// confirmation, then refreshes the list.
func (a *App) handleAdminDelete(c echo.Context) error {
	if _, ok, err := a.adminSession(c); err != nil || !ok {
		if err != nil {
			return err
		}
		return denyAdmin(c)
	}
	if !confirmed(c) {
		return c.String(http.StatusBadRequest, "Deletion must be confirmed.")
	}
	if err := a.Store.DeleteArticle(c.Param("id")); err != nil {
		return err
	}
	a.Cache.Invalidate()
	list, err := a.articleList(c, content.ParseFilter(c.QueryParam("status")))
	if err != nil {
		return err
	}
	list.Message = "Article deleted."
	return Render(c, a.Views.ArticleList(list))
}

func (a *App) handleAdminClearLeads(c echo.Context) error {
	s, ok, err := a.adminSession(c)
	if err != nil {
		return err
	}
	if !ok {
		return denyAdmin(c)
	}
	if !confirmed(c) {
		return c.String(http.StatusBadRequest, "Clearing leads must be confirmed.")
	}
	n, err := a.Store.ClearLeads()
	if err != nil {
		return err
	}
	page, err := a.settingsPage(c, s)
	if err != nil {
		return err
	}
	page.Message = pluralize(int(n), "lead", "leads") + " cleared."
	return Render(c, a.Views.Settings(page))
}

// confirmed reports whether the request carries confirm=yes, either as a
// form value or in the HX-Prompt answer.
func confirmed(c echo.Context) bool {
	v := c.FormValue("confirm")
	if v == "" {
		v = c.Request().Header.Get("HX-Prompt")
	}
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "yes" || v == "true"
}

func (a *App) emptyForm(c echo.Context) ArticleForm {
	return ArticleForm{
		Article:    content.Article{Author: a.Config.Author, Status: content.StatusDraft},
		Categories: content.Categories,
		CSRFToken:  CsrfToken(c),
	}
}

// articleList queries the store for the Manage view. Counts are computed
// from the same snapshot as the list, never cached.
func (a *App) articleList(c echo.Context, filter content.Filter) (ArticleList, error) {
	all, err := a.Store.ListArticles(content.FilterAll)
	if err != nil {
		return ArticleList{}, err
	}
	articles := all
	if filter != content.FilterAll {
		articles = make([]content.Article, 0, len(all))
		for _, art := range all {
			if filter.Match(art) {
				articles = append(articles, art)
			}
		}
	}
	return ArticleList{
		Articles:  articles,
		Stats:     content.ComputeStats(all),
		Filter:    filter,
		CSRFToken: CsrfToken(c),
	}, nil
}

func (a *App) settingsPage(c echo.Context, s *Session) (SettingsPage, error) {
	leads, err := a.Store.ListLeads()
	if err != nil {
		return SettingsPage{}, err
	}
	leads = intake.Dedupe(leads)
	return SettingsPage{
		Site:       a.Config,
		Leads:      leads,
		LeadTotal:  len(leads),
		Lang:       a.languages.Resolve(s.Lang, c.Request().Header.Get("Accept-Language")),
		Languages:  a.languages.Codes(),
		CSRFToken:  CsrfToken(c),
		RelayOn:    a.Config.RelayURL != "",
		BackendOn:  a.Config.BackendEnabled,
		SessionTTL: a.Config.SessionTTL,
	}, nil
}
