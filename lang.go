package sitepress

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/text/language"
)

// LanguageSet resolves a visitor's UI language from their stored preference
// or their Accept-Language header.
type LanguageSet struct {
	tags    []language.Tag
	codes   []string
	matcher language.Matcher
}

// NewLanguageSet builds a LanguageSet. The default language is matched
// first when nothing else fits.
func NewLanguageSet(codes []string, def string) *LanguageSet {
	ls := &LanguageSet{}
	add := func(code string) {
		tag, err := language.Parse(code)
		if err != nil {
			return
		}
		base, _ := tag.Base()
		for _, existing := range ls.codes {
			if existing == base.String() {
				return
			}
		}
		ls.tags = append(ls.tags, tag)
		ls.codes = append(ls.codes, base.String())
	}
	add(def)
	for _, c := range codes {
		add(c)
	}
	if len(ls.tags) == 0 {
		ls.tags = []language.Tag{language.English}
		ls.codes = []string{"en"}
	}
	ls.matcher = language.NewMatcher(ls.tags)
	return ls
}

// Codes returns the supported base language codes, default first.
func (ls *LanguageSet) Codes() []string {
	return ls.codes
}

// Match returns the supported code closest to want, and whether the match
// was better than a fallback to the default.
func (ls *LanguageSet) Match(want string) (string, bool) {
	tag, err := language.Parse(want)
	if err != nil {
		return ls.codes[0], false
	}
	_, idx, conf := ls.matcher.Match(tag)
	return ls.codes[idx], conf > language.No
}

// Resolve picks the stored preference when it is supported, otherwise the
// best match for the Accept-Language header.
func (ls *LanguageSet) Resolve(pref, acceptLanguage string) string {
	if pref != "" {
		if code, ok := ls.Match(pref); ok {
			return code
		}
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return ls.codes[0]
	}
	_, idx, _ := ls.matcher.Match(tags...)
	return ls.codes[idx]
}

func (a *App) langFor(c echo.Context) string {
	s, err := a.loadSession(c)
	pref := ""
	if err == nil {
		pref = s.Lang
	}
	return a.languages.Resolve(pref, c.Request().Header.Get("Accept-Language"))
}

// handleLanguage stores the visitor's language preference and sends them
// back where they came from.
func (a *App) handleLanguage(c echo.Context) error {
	code, ok := a.languages.Match(c.Param("code"))
	if !ok {
		return c.String(http.StatusBadRequest, "Unsupported language.")
	}
	s, err := a.loadSession(c)
	if err != nil {
		return err
	}
	s.Lang = code
	if err := a.saveSession(c, s); err != nil {
		return err
	}
	back := c.QueryParam("next")
	if back == "" || back[0] != '/' || (len(back) > 1 && back[1] == '/') {
		back = "/"
	}
	return c.Redirect(http.StatusSeeOther, back)
}
