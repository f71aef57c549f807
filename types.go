package sitepress

import (
	"time"

	"github.com/eringen/sitepress/content"
	"github.com/eringen/sitepress/intake"
)

// Image is an uploaded featured image stored under the uploads directory.
type Image struct {
	Filename     string `db:"filename"`
	OriginalName string `db:"original_name"`
	Width        int    `db:"width"`
	Height       int    `db:"height"`
	Size         int    `db:"size"`
	UploadedAt   string `db:"uploaded_at"`
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Keywords    string
	Image       string
	Lang        string
	JSONLD      string
}

// ContactForm is the state of the public contact form. Values are echoed
// back on validation failure; Errors is keyed by field name.
type ContactForm struct {
	Values    map[string]string
	Errors    map[string]string
	Success   bool
	CSRFToken string
	Lang      string
	// Page is the URL the form was rendered on, recorded with the lead.
	Page string
}

// HomePage is everything the landing page renders.
type HomePage struct {
	Meta     PageMeta
	Articles []content.Article
	Contact  ContactForm
}

// ArticlePage is a single public article.
type ArticlePage struct {
	Meta    PageMeta
	Article content.Article
	Related []content.Article
}

// LoginPage is the admin login screen. ClearAfter tells the page how long
// the inline error stays visible.
type LoginPage struct {
	Error      string
	ClearAfter time.Duration
	CSRFToken  string
}

// ArticleForm is the editor state. A non-empty Article.ID marks the next save
// as an update.
type ArticleForm struct {
	Article    content.Article
	Errors     map[string]string
	Message    string
	Categories []string
	CSRFToken  string
}

// ArticleList is the Manage view: the filtered list plus counts taken at the
// same moment.
type ArticleList struct {
	Articles  []content.Article
	Stats     content.Stats
	Filter    content.Filter
	Message   string
	CSRFToken string
}

// SettingsPage is the Settings view.
type SettingsPage struct {
	Site       SiteConfig
	Leads      []intake.Lead
	LeadTotal  int
	Lang       string
	Languages  []string
	Message    string
	CSRFToken  string
	RelayOn    bool
	BackendOn  bool
	SessionTTL time.Duration
}

// Dashboard is the full admin page with the active view's panel.
type Dashboard struct {
	View     AdminView
	Form     ArticleForm
	List     ArticleList
	Settings SettingsPage
	Lang     string
}
