package intake

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// RequiredFields must be non-blank on every submission.
var RequiredFields = []string{"name", "email", "message"}

// LeadStore is the durable local copy of captured leads.
type LeadStore interface {
	AppendLead(l Lead) (Lead, error)
}

// ValidationError names the required fields that were missing.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field(s): %s", strings.Join(e.Fields, ", "))
}

// Has reports whether field is among the missing fields.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// Submission is a flattened form post.
type Submission struct {
	Fields map[string]string
	Page   string
}

// Pipeline persists submissions first and relays them second. A relay
// failure never fails the submission.
type Pipeline struct {
	store  LeadStore
	relay  Relay
	logger *zap.Logger
	now    func() time.Time

	wg sync.WaitGroup
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// NewPipeline creates a Pipeline. A nil relay disables delivery and a nil
// logger discards log output.
func NewPipeline(store LeadStore, relay Relay, logger *zap.Logger, opts ...Option) *Pipeline {
	if relay == nil {
		relay = NopRelay{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Pipeline{
		store:  store,
		relay:  relay,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Validate checks the required fields of fields.
func Validate(fields map[string]string) error {
	var missing []string
	for _, f := range RequiredFields {
		v := strings.TrimSpace(fields[f])
		if v == "" && f == "message" {
			v = strings.TrimSpace(fields["description"])
		}
		if v == "" {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// Submit validates and stores s, then starts a one-shot relay in the
// background. The returned lead is the stored copy.
func (p *Pipeline) Submit(ctx context.Context, s Submission) (Lead, error) {
	if err := Validate(s.Fields); err != nil {
		return Lead{}, err
	}
	lead, err := p.store.AppendLead(NewLead(s.Fields, s.Page, p.now()))
	if err != nil {
		return Lead{}, fmt.Errorf("store lead: %w", err)
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if err := p.relay.Deliver(context.WithoutCancel(ctx), lead); err != nil {
			p.logger.Warn("lead relay failed",
				zap.String("email", lead.Email),
				zap.Time("timestamp", lead.Timestamp),
				zap.Error(err))
			return
		}
		p.logger.Debug("lead relayed", zap.Time("timestamp", lead.Timestamp))
	}()
	return lead, nil
}

// Wait blocks until in-flight relays have finished.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}
