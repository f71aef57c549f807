package sitepress

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
)

// SiteConfig holds all configuration for a sitepress site.
type SiteConfig struct {
	Name        string `env:"SITE_NAME"`        // Site name (default "Sitepress")
	URL         string `env:"SITE_URL"`         // Canonical URL (default "http://localhost:3000")
	Description string `env:"SITE_DESCRIPTION"` // Site description for RSS and meta tags
	Author      string `env:"SITE_AUTHOR"`      // Default article author and JSON-LD publisher

	Addr         string `env:"SITE_ADDR"`          // Listen address (default ":3000")
	DatabasePath string `env:"SITE_DATABASE_PATH"` // SQLite path (default "data/site.db")

	AdminPassword string        `env:"ADMIN_PASSWORD"`        // Required: the single admin secret
	SessionSecret string        `env:"SESSION_SECRET"`        // Required: session encryption secret
	CookieSecure  bool          `env:"COOKIE_SECURE"`         // Set true for HTTPS
	SessionTTL    time.Duration `env:"ADMIN_SESSION_TTL"`     // Login lifetime (default 24h)
	LoginErrorTTL time.Duration `env:"ADMIN_LOGIN_ERROR_TTL"` // How long a failed-login banner shows (default 3s)

	RelayURL     string        `env:"LEAD_RELAY_URL"`     // Spreadsheet endpoint for best-effort lead delivery
	RelayTimeout time.Duration `env:"LEAD_RELAY_TIMEOUT"` // Relay HTTP timeout (default 15s)

	BackendEnabled bool   `env:"BACKEND_ENABLED"` // Serve the JSON action backend at /api/backend
	BackendToken   string `env:"BACKEND_TOKEN"`   // Optional X-Backend-Token required by the backend

	Languages   []string `env:"SITE_LANGUAGES" envSeparator:","` // Supported UI languages (default en,es)
	DefaultLang string   `env:"SITE_DEFAULT_LANG"`               // Fallback language (default "en")

	ArticleCacheTTL time.Duration `env:"ARTICLE_CACHE_TTL"` // Public article cache TTL (default 5min)
	ContactLimit    int           `env:"CONTACT_LIMIT"`     // Contact submissions per IP per minute (default 20)
}

// LoadConfig reads SiteConfig from the environment and applies defaults.
func LoadConfig() (SiteConfig, error) {
	var cfg SiteConfig
	if err := env.Parse(&cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.setDefaults()
	return cfg, nil
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Sitepress"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/site.db"
	}
	if c.SessionTTL == 0 {
		c.SessionTTL = 24 * time.Hour
	}
	if c.LoginErrorTTL == 0 {
		c.LoginErrorTTL = 3 * time.Second
	}
	if c.RelayTimeout == 0 {
		c.RelayTimeout = 15 * time.Second
	}
	if len(c.Languages) == 0 {
		c.Languages = []string{"en", "es"}
	}
	if c.DefaultLang == "" {
		c.DefaultLang = c.Languages[0]
	}
	if c.ArticleCacheTTL == 0 {
		c.ArticleCacheTTL = 5 * time.Minute
	}
	if c.ContactLimit == 0 {
		c.ContactLimit = 20
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithLogger replaces the default production zap logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}

// WithClock overrides time.Now for sessions and the store.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.now = now
	}
}
