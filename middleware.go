package sitepress

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

const sessionName = "site_session"

// session cookie keys
const (
	keyAuthenticated = "authenticated"
	keyExpires       = "expires"
	keyError         = "login_error"
	keyErrorUntil    = "login_error_until"
	keyView          = "view"
	keyLang          = "lang"
)

func (a *App) setupMiddleware() {
	e := a.Echo

	e.IPExtractor = echo.ExtractIPFromXFFHeader(
		echo.TrustLoopback(true),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(true),
	)

	e.HTTPErrorHandler = a.httpErrorHandler

	e.Pre(middleware.NonWWWRedirect())

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			a.Logger.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("ip", v.RemoteIP))
			return nil
		},
	}))

	e.Use(middleware.Recover())

	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/public/")
		},
	}))

	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' https: data:; font-src 'self'; connect-src 'self'",
		HSTSMaxAge:            31536000,
		HSTSExcludeSubdomains: false,
	}))

	e.Use(session.Middleware(a.newSessionStore()))

	e.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
		ContextKey:  middleware.DefaultCSRFConfig.ContextKey,
		TokenLookup: "header:X-CSRF-Token,form:_csrf",
		CookieName:  "_csrf",
		CookiePath:  "/",
		CookieSameSite: func() http.SameSite {
			return http.SameSiteLaxMode
		}(),
		CookieSecure: a.Config.CookieSecure,
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/api/")
		},
		ErrorHandler: func(err error, c echo.Context) error {
			return c.String(http.StatusForbidden, "Forbidden")
		},
	}))

	e.Use(middleware.AddTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		RedirectCode: http.StatusMovedPermanently,
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return strings.HasPrefix(path, "/public") ||
				strings.HasPrefix(path, "/api/") ||
				path == "/sitemap.xml" || path == "/feed.xml" || path == "/robots.txt"
		},
	}))

	e.Use(cacheControlMiddleware)
}

func cacheControlMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		path := c.Request().URL.Path
		switch {
		case strings.HasPrefix(path, "/public/"):
			c.Response().Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		case path == "/sitemap.xml" || path == "/feed.xml" || path == "/robots.txt":
			c.Response().Header().Set("Cache-Control", "public, max-age=86400")
		case strings.HasPrefix(path, "/admin"), strings.HasPrefix(path, "/api/"),
			strings.HasPrefix(path, "/contact"), strings.HasPrefix(path, "/lang"):
			c.Response().Header().Set("Cache-Control", "no-store")
		default:
			c.Response().Header().Set("Cache-Control", "public, max-age=3600")
		}
		return next(c)
	}
}

func (a *App) newSessionStore() *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(a.Config.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		// The cookie outlives the login so the language preference sticks;
		// the login itself is bounded by the stored expiry.
		MaxAge:   60 * 60 * 24 * 30,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.Config.CookieSecure,
	}
	return store
}

// rawSession returns the gorilla session behind sessionName. A cookie that
// no longer decodes (rotated SESSION_SECRET, tampering) is treated as logged
// out: gorilla hands back a fresh session alongside the error, and stale
// reports it so the caller overwrites the cookie.
func (a *App) rawSession(c echo.Context) (raw *sessions.Session, stale bool, err error) {
	raw, err = session.Get(sessionName, c)
	if raw == nil {
		return nil, false, err
	}
	if err != nil {
		a.Logger.Debug("discarding undecodable session cookie", zap.Error(err))
		return raw, true, nil
	}
	return raw, false, nil
}

// loadSession reads the visitor's Session and applies the gate's expiry
// rules, persisting the result if anything was cleared.
func (a *App) loadSession(c echo.Context) (*Session, error) {
	raw, stale, err := a.rawSession(c)
	if err != nil {
		return nil, err
	}
	s := &Session{}
	if auth, ok := raw.Values[keyAuthenticated].(bool); ok && auth {
		s.State = LoggedIn
	}
	if exp, ok := raw.Values[keyExpires].(int64); ok {
		s.ExpiresAt = time.Unix(0, exp)
	}
	if msg, ok := raw.Values[keyError].(string); ok {
		s.Error = msg
	}
	if until, ok := raw.Values[keyErrorUntil].(int64); ok {
		s.ErrorUntil = time.Unix(0, until)
	}
	if v, ok := raw.Values[keyView].(string); ok {
		s.View = ParseAdminView(v)
	}
	if lang, ok := raw.Values[keyLang].(string); ok {
		s.Lang = lang
	}
	if a.gate.Restore(s) || stale {
		if err := a.saveSession(c, s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// saveSession writes s back to the session cookie. Cleared fields are
// removed rather than stored as zero values.
func (a *App) saveSession(c echo.Context, s *Session) error {
	raw, _, err := a.rawSession(c)
	if err != nil {
		return err
	}
	setOrDelete := func(key string, keep bool, v interface{}) {
		if keep {
			raw.Values[key] = v
		} else {
			delete(raw.Values, key)
		}
	}
	setOrDelete(keyAuthenticated, s.State == LoggedIn, true)
	setOrDelete(keyExpires, !s.ExpiresAt.IsZero(), s.ExpiresAt.UnixNano())
	setOrDelete(keyError, s.Error != "", s.Error)
	setOrDelete(keyErrorUntil, !s.ErrorUntil.IsZero(), s.ErrorUntil.UnixNano())
	setOrDelete(keyView, s.View != "", string(s.View))
	setOrDelete(keyLang, s.Lang != "", s.Lang)
	return raw.Save(c.Request(), c.Response())
}

// CsrfToken extracts the CSRF token from the Echo context.
func CsrfToken(c echo.Context) string {
	token, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}
