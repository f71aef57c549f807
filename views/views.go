package views

import "github.com/eringen/sitepress"

// Funcs returns the default component set for cfg.
func Funcs(cfg sitepress.SiteConfig) sitepress.ViewFuncs {
	t := theme{site: cfg, languages: sitepress.NewLanguageSet(cfg.Languages, cfg.DefaultLang).Codes()}
	return sitepress.ViewFuncs{
		Home:        t.home,
		Article:     t.article,
		ContactForm: t.contactForm,
		AdminLogin:  t.adminLogin,
		Dashboard:   t.dashboard,
		ArticleForm: t.articleForm,
		ArticleList: t.articleList,
		Settings:    t.settings,
		AdminImages: t.adminImages,
		NotFound:    t.notFound,
		ServerError: t.serverError,
	}
}
