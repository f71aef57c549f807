package intake

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Relay delivers a lead to an external collector.
type Relay interface {
	Deliver(ctx context.Context, l Lead) error
}

// NopRelay drops every lead. It is used when no endpoint is configured.
type NopRelay struct{}

// Deliver implements Relay.
func (NopRelay) Deliver(context.Context, Lead) error { return nil }

// RelayFieldNames maps lead fields onto the column headers the spreadsheet
// collector expects. Extra fields are sent under their own names.
var RelayFieldNames = map[string]string{
	"name":      "Full Name",
	"email":     "Email Address",
	"company":   "Company",
	"message":   "Message",
	"timestamp": "Timestamp",
	"page":      "Page URL",
}

// SpreadsheetRelay posts form-encoded leads to a spreadsheet script endpoint.
// The response is treated as opaque: it is drained and discarded, and only a
// transport failure counts as an error.
type SpreadsheetRelay struct {
	Endpoint string
	Client   *http.Client
}

// NewSpreadsheetRelay returns a relay posting to endpoint with the given timeout.
func NewSpreadsheetRelay(endpoint string, timeout time.Duration) *SpreadsheetRelay {
	return &SpreadsheetRelay{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: timeout},
	}
}

// Deliver implements Relay.
func (r *SpreadsheetRelay) Deliver(ctx context.Context, l Lead) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.Endpoint, strings.NewReader(EncodeLead(l).Encode()))
	if err != nil {
		return fmt.Errorf("build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("relay lead: %w", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

// EncodeLead renders l as form values using RelayFieldNames.
func EncodeLead(l Lead) url.Values {
	v := url.Values{}
	v.Set(RelayFieldNames["name"], l.Name)
	v.Set(RelayFieldNames["email"], l.Email)
	v.Set(RelayFieldNames["company"], l.Company)
	v.Set(RelayFieldNames["message"], l.Message)
	v.Set(RelayFieldNames["timestamp"], l.Timestamp.Format(time.RFC3339Nano))
	v.Set(RelayFieldNames["page"], l.Page)
	for k, val := range l.Fields {
		if mapped, ok := RelayFieldNames[k]; ok {
			k = mapped
		}
		if v.Has(k) {
			continue
		}
		v.Set(k, val)
	}
	return v
}
