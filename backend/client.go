package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client calls a remote backend. Transport and decoding problems come back
// as failed Results so callers only ever check Result.Success.
type Client struct {
	URL   string
	Token string
	HTTP  *http.Client
}

// NewClient returns a Client for url with the given timeout.
func NewClient(url, token string, timeout time.Duration) *Client {
	return &Client{URL: url, Token: token, HTTP: &http.Client{Timeout: timeout}}
}

// Do posts env and decodes the Result.
func (c *Client) Do(ctx context.Context, env Envelope) Result {
	body, err := json.Marshal(env)
	if err != nil {
		return Failure(fmt.Sprintf("encode request: %v", err))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return Failure(fmt.Sprintf("build request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set(TokenHeader, c.Token)
	}
	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Failure(fmt.Sprintf("request failed: %v", err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxEnvelopeBytes))
	if err != nil {
		return Failure(fmt.Sprintf("read response: %v", err))
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		return Failure(fmt.Sprintf("unexpected response (%d): %v", resp.StatusCode, err))
	}
	if !res.Success && res.Message == "" {
		res.Message = fmt.Sprintf("backend returned status %d", resp.StatusCode)
	}
	return res
}

// Articles fetches articles matching status ("all", "published", "draft").
func (c *Client) Articles(ctx context.Context, status string) Result {
	return c.Do(ctx, Envelope{Action: ActionGetArticles, Status: status})
}

// Article fetches one article; the remote counts it as a view.
func (c *Client) Article(ctx context.Context, id string) Result {
	return c.Do(ctx, Envelope{Action: ActionGetArticle, ID: id})
}
