package intake

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type memStore struct {
	mu    sync.Mutex
	leads []Lead
	err   error
}

func (m *memStore) AppendLead(l Lead) (Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return Lead{}, m.err
	}
	m.leads = append(m.leads, l)
	return l, nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.leads)
}

type failingRelay struct{}

func (failingRelay) Deliver(context.Context, Lead) error {
	return errors.New("network unreachable")
}

type recordingRelay struct {
	mu    sync.Mutex
	leads []Lead
}

func (r *recordingRelay) Deliver(_ context.Context, l Lead) error {
	r.mu.Lock()
	r.leads = append(r.leads, l)
	r.mu.Unlock()
	return nil
}

func validFields() map[string]string {
	return map[string]string{
		"name":    "Ada Lovelace",
		"email":   "ada@example.com",
		"company": "Analytical Engines",
		"message": "We need a new site.",
		"budget":  "10k",
	}
}

func fixedClock() func() time.Time {
	at := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func TestSubmitStoresLeadAndRelays(t *testing.T) {
	store := &memStore{}
	relay := &recordingRelay{}
	p := NewPipeline(store, relay, nil, WithClock(fixedClock()))

	lead, err := p.Submit(context.Background(), Submission{Fields: validFields(), Page: "https://example.com/contact"})
	require.NoError(t, err)
	p.Wait()

	assert.Equal(t, 1, store.count())
	assert.Equal(t, "Ada Lovelace", lead.Name)
	assert.Equal(t, "https://example.com/contact", lead.Page)
	assert.Equal(t, "10k", lead.Fields["budget"])
	assert.True(t, lead.Timestamp.Equal(fixedClock()()))
	require.Len(t, relay.leads, 1)
	assert.Equal(t, lead.Email, relay.leads[0].Email)
}

func TestSubmitSurvivesRelayFailure(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	store := &memStore{}
	p := NewPipeline(store, failingRelay{}, zap.New(core))

	_, err := p.Submit(context.Background(), Submission{Fields: validFields()})
	require.NoError(t, err)
	p.Wait()

	assert.Equal(t, 1, store.count(), "local copy must exist even when relay fails")
	assert.Equal(t, 1, logs.FilterMessage("lead relay failed").Len())
}

func TestSubmitRejectsMissingFields(t *testing.T) {
	store := &memStore{}
	relay := &recordingRelay{}
	p := NewPipeline(store, relay, nil)

	fields := validFields()
	fields["email"] = "  "
	delete(fields, "message")

	_, err := p.Submit(context.Background(), Submission{Fields: fields})
	p.Wait()

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"email", "message"}, verr.Fields)
	assert.True(t, verr.Has("email"))
	assert.Contains(t, verr.Error(), "email")
	assert.Equal(t, 0, store.count())
	assert.Empty(t, relay.leads)
}

func TestSubmitAcceptsDescriptionAlias(t *testing.T) {
	store := &memStore{}
	p := NewPipeline(store, nil, nil)

	fields := validFields()
	delete(fields, "message")
	fields["description"] = "From the short form"

	lead, err := p.Submit(context.Background(), Submission{Fields: fields})
	require.NoError(t, err)
	p.Wait()
	assert.Equal(t, "From the short form", lead.Message)
	assert.NotContains(t, lead.Fields, "description")
}

func TestSubmitStoreErrorIsReturned(t *testing.T) {
	store := &memStore{err: errors.New("disk full")}
	p := NewPipeline(store, nil, nil)

	_, err := p.Submit(context.Background(), Submission{Fields: validFields()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestSpreadsheetRelayRemapsFields(t *testing.T) {
	form := make(chan map[string]string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		form <- map[string]string{
			"Content-Type":  r.Header.Get("Content-Type"),
			"Full Name":     r.PostForm.Get("Full Name"),
			"Email Address": r.PostForm.Get("Email Address"),
			"Page URL":      r.PostForm.Get("Page URL"),
			"budget":        r.PostForm.Get("budget"),
		}
		// The body is never read by the relay.
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html>moved</html>"))
	}))
	defer srv.Close()

	relay := NewSpreadsheetRelay(srv.URL, time.Second)
	lead := NewLead(validFields(), "https://example.com/", time.Now())
	require.NoError(t, relay.Deliver(context.Background(), lead))

	values := <-form
	assert.Equal(t, "application/x-www-form-urlencoded", values["Content-Type"])
	assert.Equal(t, "Ada Lovelace", values["Full Name"])
	assert.Equal(t, "ada@example.com", values["Email Address"])
	assert.Equal(t, "https://example.com/", values["Page URL"])
	assert.Equal(t, "10k", values["budget"])
}

func TestSpreadsheetRelayTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	relay := NewSpreadsheetRelay(url, time.Second)
	err := relay.Deliver(context.Background(), NewLead(validFields(), "", time.Now()))
	assert.Error(t, err)
}

func TestSpreadsheetRelayIgnoresStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	relay := NewSpreadsheetRelay(srv.URL, time.Second)
	assert.NoError(t, relay.Deliver(context.Background(), NewLead(validFields(), "", time.Now())))
}

func TestDedupe(t *testing.T) {
	at := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	leads := []Lead{
		{Name: "a", Timestamp: at},
		{Name: "a-dup", Timestamp: at},
		{Name: "b", Timestamp: at.Add(time.Second)},
	}
	got := Dedupe(leads)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Name)
	assert.Equal(t, "b", got[1].Name)
}
