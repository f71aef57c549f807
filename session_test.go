package sitepress

import (
	"testing"
	"time"
)

type testClock struct {
	t time.Time
}

func (c *testClock) now() time.Time { return c.t }

func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestClock() *testClock {
	return &testClock{t: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func TestGateLoginSuccess(t *testing.T) {
	clock := newTestClock()
	g := NewGate("s3cret", 24*time.Hour, 3*time.Second, clock.now)
	var s Session

	if !g.Login(&s, "s3cret") {
		t.Fatal("expected login to succeed")
	}
	if s.State != LoggedIn {
		t.Errorf("State = %v, want %v", s.State, LoggedIn)
	}
	want := clock.t.Add(24 * time.Hour)
	if d := s.ExpiresAt.Sub(want); d > time.Second || d < -time.Second {
		t.Errorf("ExpiresAt = %v, want %v (±1s)", s.ExpiresAt, want)
	}
}

func TestGateLoginFailureClearsErrorAfterTTL(t *testing.T) {
	clock := newTestClock()
	g := NewGate("s3cret", 24*time.Hour, 3*time.Second, clock.now)
	var s Session

	if g.Login(&s, "wrong") {
		t.Fatal("expected login to fail")
	}
	if s.State != LoggedOut {
		t.Errorf("State = %v, want %v", s.State, LoggedOut)
	}
	if s.VisibleError(clock.t) == "" {
		t.Error("expected inline error right after failure")
	}

	clock.advance(2900 * time.Millisecond)
	if s.VisibleError(clock.t) == "" {
		t.Error("error should still be visible before 3s")
	}

	clock.advance(100 * time.Millisecond)
	if got := s.VisibleError(clock.t); got != "" {
		t.Errorf("error should be cleared after 3s, got %q", got)
	}
	if !g.Restore(&s) {
		t.Error("Restore should report the dropped error")
	}
	if s.Error != "" {
		t.Errorf("Error = %q after Restore, want empty", s.Error)
	}
}

func TestGateNoLockout(t *testing.T) {
	clock := newTestClock()
	g := NewGate("s3cret", time.Hour, 3*time.Second, clock.now)
	var s Session
	for i := 0; i < 50; i++ {
		g.Login(&s, "nope")
	}
	if !g.Login(&s, "s3cret") {
		t.Fatal("correct password must work after repeated failures")
	}
	if s.Error != "" {
		t.Errorf("successful login should clear the error, got %q", s.Error)
	}
}

func TestGateEmptySecretNeverMatches(t *testing.T) {
	g := NewGate("", time.Hour, time.Second, nil)
	var s Session
	if g.Login(&s, "") {
		t.Fatal("empty secret must not authenticate")
	}
}

func TestGateRestoreExpires(t *testing.T) {
	clock := newTestClock()
	g := NewGate("s3cret", 24*time.Hour, 3*time.Second, clock.now)
	var s Session
	g.Login(&s, "s3cret")

	clock.advance(23 * time.Hour)
	if g.Restore(&s) {
		t.Error("Restore should not change a live session")
	}
	if !s.LoggedIn() {
		t.Fatal("session should still be logged in")
	}

	clock.advance(time.Hour)
	if !g.Restore(&s) {
		t.Error("Restore should report the expiry")
	}
	if s.LoggedIn() {
		t.Error("expired session must be logged out")
	}
	if !s.ExpiresAt.IsZero() {
		t.Errorf("ExpiresAt = %v, want zero", s.ExpiresAt)
	}
}

func TestGateLogout(t *testing.T) {
	g := NewGate("s3cret", time.Hour, time.Second, nil)
	s := Session{Lang: "es"}
	g.Login(&s, "s3cret")
	s.SwitchView(ViewManage)

	g.Logout(&s)
	if s.LoggedIn() || !s.ExpiresAt.IsZero() {
		t.Errorf("logout left auth state: %+v", s)
	}
	if s.Lang != "es" {
		t.Errorf("logout should keep the language preference, got %q", s.Lang)
	}
}

func TestParseAdminView(t *testing.T) {
	tests := map[string]AdminView{
		"manage":   ViewManage,
		"settings": ViewSettings,
		"write":    ViewWrite,
		"":         ViewWrite,
		"other":    ViewWrite,
	}
	for in, want := range tests {
		if got := ParseAdminView(in); got != want {
			t.Errorf("ParseAdminView(%q) = %q, want %q", in, got, want)
		}
	}
}
