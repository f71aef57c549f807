// Package sitepress is the server behind a marketing website: a landing page
// with a contact form, a small blog, and a password-gated admin panel for
// writing and managing articles. It is built with Go, Echo, and templ.
//
// Users provide their own templ templates via the ViewFuncs struct, and
// sitepress handles the handler logic, middleware, and database operations.
package sitepress

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/sitepress/backend"
	"github.com/eringen/sitepress/intake"
)

// ViewFuncs holds user-provided templ components that the framework calls
// when rendering pages.
type ViewFuncs struct {
	Home        func(page HomePage) templ.Component
	Article     func(page ArticlePage) templ.Component
	ContactForm func(form ContactForm) templ.Component
	AdminLogin  func(page LoginPage) templ.Component
	Dashboard   func(d Dashboard) templ.Component
	ArticleForm func(form ArticleForm) templ.Component
	ArticleList func(list ArticleList) templ.Component
	Settings    func(page SettingsPage) templ.Component
	AdminImages func(images []Image, csrfToken string) templ.Component
	NotFound    func() templ.Component
	ServerError func() templ.Component
}

// App is the central sitepress application. It wires together the store,
// cache, intake pipeline, handlers, middleware, and user-provided templates.
type App struct {
	Config  SiteConfig
	Echo    *echo.Echo
	Store   *Store
	Cache   *ArticleCache
	Intake  *intake.Pipeline
	Backend *backend.Dispatcher
	Views   ViewFuncs
	Logger  *zap.Logger

	gate           *Gate
	contactLimiter *SubmitLimiter
	languages      *LanguageSet
	customRoutes   []func(*App)
	staticDir      string
	now            func() time.Time
}

// New creates a new sitepress App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		staticDir: "public",
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(a)
	}
	if a.Logger == nil {
		logger, err := zap.NewProduction()
		if err != nil {
			logger = zap.NewNop()
		}
		a.Logger = logger
	}
	a.Echo.HideBanner = true
	return a
}

// Init opens the store and builds every component the routes depend on.
// Start calls it; the serve command and tests call it directly.
func (a *App) Init() error {
	if a.Config.AdminPassword == "" {
		return errors.New("sitepress: AdminPassword is required")
	}
	if a.Config.SessionSecret == "" {
		return errors.New("sitepress: SessionSecret is required")
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("sitepress: init store: %w", err)
	}
	store.now = a.now
	a.Store = store

	a.Cache = NewArticleCache(a.Store, a.Config.ArticleCacheTTL)
	a.gate = NewGate(a.Config.AdminPassword, a.Config.SessionTTL, a.Config.LoginErrorTTL, a.now)
	a.contactLimiter = NewSubmitLimiter(a.Config.ContactLimit, time.Minute)
	a.languages = NewLanguageSet(a.Config.Languages, a.Config.DefaultLang)

	var relay intake.Relay = intake.NopRelay{}
	if a.Config.RelayURL != "" {
		relay = intake.NewSpreadsheetRelay(a.Config.RelayURL, a.Config.RelayTimeout)
	}
	a.Intake = intake.NewPipeline(a.Store, relay, a.Logger.Named("intake"), intake.WithClock(a.now))
	a.Backend = backend.NewDispatcher(cachedArticles{a}, a.Intake, a.Logger.Named("backend"))
	return nil
}

// Start initializes the database, cache, middleware, routes, and starts the server.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	return a.Serve()
}

// Serve installs middleware and routes on an initialized App and blocks
// listening on Config.Addr.
func (a *App) Serve() error {
	if a.Store == nil {
		return errors.New("sitepress: Serve called before Init")
	}
	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}

	a.Logger.Info("listening", zap.String("addr", a.Config.Addr), zap.Bool("relay", a.Config.RelayURL != ""))
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/site.js", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))

	// User's static assets
	e.Static("/public", a.staticDir)
	e.GET("/robots.txt", a.handleRobots)

	// Public routes
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/", a.handleHome)
	e.GET("/blog/:id/", a.handleArticle)
	e.POST("/contact/", a.handleContact)
	e.GET("/lang/:code/", a.handleLanguage)

	// Admin routes
	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", a.handleAdminLogout)
	e.GET("/admin/view/:view/", a.handleAdminView)
	e.GET("/admin/article/new/", a.handleAdminNewArticle)
	e.GET("/admin/article/:id/", a.handleAdminEdit)
	e.POST("/admin/save/", a.handleAdminSave)
	e.DELETE("/admin/article/:id/", a.handleAdminDelete)
	e.POST("/admin/leads/clear/", a.handleAdminClearLeads)
	e.GET("/admin/images/", a.handleImageList)
	e.POST("/admin/images/upload/", a.handleImageUpload)
	e.DELETE("/admin/images/:filename/", a.handleImageDelete)

	if a.Config.BackendEnabled {
		e.POST("/api/backend", backend.Handler(a.Backend, a.Config.BackendToken))
	}
}

// Close waits for in-flight lead deliveries and releases resources.
func (a *App) Close() error {
	if a.Intake != nil {
		a.Intake.Wait()
	}
	if a.contactLimiter != nil {
		a.contactLimiter.Stop()
	}
	if a.Store != nil {
		a.Store.Close()
	}
	_ = a.Logger.Sync()
	return nil
}
