// Package intake captures contact-form submissions, persists them locally,
// and relays them best-effort to an external collection endpoint.
package intake

import (
	"strings"
	"time"
)

// Lead is a captured contact-form submission. Leads are never mutated and
// duplicates are legal.
type Lead struct {
	Name      string            `json:"name"`
	Email     string            `json:"email"`
	Company   string            `json:"company"`
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp"`
	Page      string            `json:"page"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// well-known form fields; everything else lands in Lead.Fields verbatim.
var knownFields = map[string]bool{
	"name":        true,
	"email":       true,
	"company":     true,
	"message":     true,
	"description": true,
	"_csrf":       true,
}

// NewLead builds a Lead from flattened form fields. The "description" field is
// accepted as an alias of "message".
func NewLead(fields map[string]string, page string, at time.Time) Lead {
	l := Lead{
		Name:      strings.TrimSpace(fields["name"]),
		Email:     strings.TrimSpace(fields["email"]),
		Company:   strings.TrimSpace(fields["company"]),
		Message:   strings.TrimSpace(fields["message"]),
		Timestamp: at.UTC(),
		Page:      page,
	}
	if l.Message == "" {
		l.Message = strings.TrimSpace(fields["description"])
	}
	for k, v := range fields {
		if knownFields[k] {
			continue
		}
		if l.Fields == nil {
			l.Fields = make(map[string]string)
		}
		l.Fields[k] = v
	}
	return l
}

// Dedupe keeps the first lead seen for each timestamp, preserving order.
func Dedupe(leads []Lead) []Lead {
	seen := make(map[int64]struct{}, len(leads))
	out := make([]Lead, 0, len(leads))
	for _, l := range leads {
		key := l.Timestamp.UnixNano()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, l)
	}
	return out
}
