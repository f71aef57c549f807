package sitepress

import (
	"crypto/subtle"
	"time"
)

// AuthState is the admin login state.
type AuthState int

const (
	LoggedOut AuthState = iota
	LoggedIn
)

func (s AuthState) String() string {
	if s == LoggedIn {
		return "logged-in"
	}
	return "logged-out"
}

// AdminView is one of the admin sub-navigation panels.
type AdminView string

const (
	ViewWrite    AdminView = "write"
	ViewManage   AdminView = "manage"
	ViewSettings AdminView = "settings"
)

// ParseAdminView maps a path or query value onto an AdminView. Unknown
// values select the editor.
func ParseAdminView(s string) AdminView {
	switch AdminView(s) {
	case ViewManage:
		return ViewManage
	case ViewSettings:
		return ViewSettings
	}
	return ViewWrite
}

// Session is the per-visitor state carried between requests: the admin
// login with its absolute expiry, the pending login error, the active admin
// view, and the language preference.
type Session struct {
	State      AuthState
	ExpiresAt  time.Time
	Error      string
	ErrorUntil time.Time
	View       AdminView
	Lang       string
}

// LoggedIn reports whether the session is authenticated. Callers must run
// Gate.Restore first so an expired login is already cleared.
func (s *Session) LoggedIn() bool {
	return s.State == LoggedIn
}

// VisibleError returns the login error while it is still within its display
// window, and "" afterwards.
func (s *Session) VisibleError(now time.Time) string {
	if s.Error == "" || !now.Before(s.ErrorUntil) {
		return ""
	}
	return s.Error
}

// SwitchView selects the active admin panel.
func (s *Session) SwitchView(v AdminView) {
	s.View = v
}

func (s *Session) clearAuth() {
	s.State = LoggedOut
	s.ExpiresAt = time.Time{}
}

// Gate checks the admin secret and enforces the login lifetime.
type Gate struct {
	secret   string
	ttl      time.Duration
	errorTTL time.Duration
	now      func() time.Time
}

// NewGate returns a Gate for secret. Logins last ttl; failed-login errors
// stay visible for errorTTL.
func NewGate(secret string, ttl, errorTTL time.Duration, now func() time.Time) *Gate {
	if now == nil {
		now = time.Now
	}
	return &Gate{secret: secret, ttl: ttl, errorTTL: errorTTL, now: now}
}

// ErrorTTL is how long a failed-login message stays on screen.
func (g *Gate) ErrorTTL() time.Duration {
	return g.errorTTL
}

// Restore runs on every page load. A login whose expiry has passed is
// cleared, and a stale error is dropped. It reports whether s changed.
func (g *Gate) Restore(s *Session) bool {
	now := g.now()
	changed := false
	if s.State == LoggedIn && !now.Before(s.ExpiresAt) {
		s.clearAuth()
		changed = true
	}
	if s.Error != "" && !now.Before(s.ErrorUntil) {
		s.Error = ""
		s.ErrorUntil = time.Time{}
		changed = true
	}
	return changed
}

// Login compares candidate with the configured secret. On success the
// session is logged in until now+ttl. On failure the session stays logged
// out and carries an inline error for errorTTL. There is no lockout.
func (g *Gate) Login(s *Session, candidate string) bool {
	now := g.now()
	if g.secret != "" && subtle.ConstantTimeCompare([]byte(candidate), []byte(g.secret)) == 1 {
		s.State = LoggedIn
		s.ExpiresAt = now.Add(g.ttl)
		s.Error = ""
		s.ErrorUntil = time.Time{}
		return true
	}
	s.clearAuth()
	s.Error = "Incorrect password."
	s.ErrorUntil = now.Add(g.errorTTL)
	return false
}

// Logout clears the login flag and its expiry.
func (g *Gate) Logout(s *Session) {
	s.clearAuth()
	s.View = ""
}
