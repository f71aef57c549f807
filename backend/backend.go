// Package backend implements the JSON action endpoint that mirrors the
// spreadsheet script the site used as a remote backend. Every call answers
// with a Result; failures are reported in the result, never as transport
// errors.
package backend

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/eringen/sitepress/content"
	"github.com/eringen/sitepress/intake"
)

// Action names accepted in an Envelope.
const (
	ActionSaveArticle   = "saveArticle"
	ActionGetArticles   = "getArticles"
	ActionGetArticle    = "getArticle"
	ActionUpdateArticle = "updateArticle"
	ActionDeleteArticle = "deleteArticle"
	ActionSubmitContact = "submitContact"
)

// Envelope is a backend request. Only the fields the action needs are read.
type Envelope struct {
	Action  string            `json:"action"`
	ID      string            `json:"id,omitempty"`
	Status  string            `json:"status,omitempty"`
	Article *content.Article  `json:"article,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
	Page    string            `json:"page,omitempty"`
}

// Result is every backend response.
type Result struct {
	Success  bool              `json:"success"`
	Message  string            `json:"message,omitempty"`
	Article  *content.Article  `json:"article,omitempty"`
	Articles []content.Article `json:"articles,omitempty"`
	Stats    *content.Stats    `json:"stats,omitempty"`
	Lead     *intake.Lead      `json:"lead,omitempty"`
	Missing  []string          `json:"missing,omitempty"`
}

// Failure builds an unsuccessful Result.
func Failure(msg string) Result {
	return Result{Success: false, Message: msg}
}

// Articles is the article storage the dispatcher works against.
type Articles interface {
	SaveArticle(a content.Article) (content.Article, error)
	UpdateArticle(a content.Article) (content.Article, error)
	ListArticles(f content.Filter) ([]content.Article, error)
	ViewArticle(id string) (content.Article, error)
	DeleteArticle(id string) error
}

// Contacts accepts contact-form submissions.
type Contacts interface {
	Submit(ctx context.Context, s intake.Submission) (intake.Lead, error)
}

// Dispatcher routes envelopes to the article store and intake pipeline.
type Dispatcher struct {
	articles Articles
	contacts Contacts
	logger   *zap.Logger
}

// NewDispatcher returns a Dispatcher. A nil logger discards output.
func NewDispatcher(articles Articles, contacts Contacts, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{articles: articles, contacts: contacts, logger: logger}
}

// Dispatch runs env and reports the outcome.
func (d *Dispatcher) Dispatch(ctx context.Context, env Envelope) Result {
	switch env.Action {
	case ActionSaveArticle:
		return d.saveArticle(env)
	case ActionGetArticles:
		return d.getArticles(env)
	case ActionGetArticle:
		return d.getArticle(env)
	case ActionUpdateArticle:
		return d.updateArticle(env)
	case ActionDeleteArticle:
		return d.deleteArticle(env)
	case ActionSubmitContact:
		return d.submitContact(ctx, env)
	case "":
		return Failure("action is required")
	}
	return Failure("unknown action: " + env.Action)
}

func (d *Dispatcher) internal(action string, err error) Result {
	d.logger.Error("backend action failed", zap.String("action", action), zap.Error(err))
	return Failure("internal error")
}

func (d *Dispatcher) saveArticle(env Envelope) Result {
	if env.Article == nil {
		return Failure("article is required")
	}
	a, err := d.articles.SaveArticle(*env.Article)
	if err != nil {
		return d.internal(env.Action, err)
	}
	return Result{Success: true, Message: "Article saved", Article: &a}
}

// getArticles lists by publish date, newest first, with counts over the
// whole store.
func (d *Dispatcher) getArticles(env Envelope) Result {
	all, err := d.articles.ListArticles(content.FilterAll)
	if err != nil {
		return d.internal(env.Action, err)
	}
	stats := content.ComputeStats(all)
	filter := content.ParseFilter(env.Status)
	articles := make([]content.Article, 0, len(all))
	for _, a := range all {
		if filter.Match(a) {
			articles = append(articles, a)
		}
	}
	content.SortByPublishDate(articles)
	return Result{Success: true, Articles: articles, Stats: &stats}
}

// getArticle counts as a view: every successful read increments the
// article's view count.
func (d *Dispatcher) getArticle(env Envelope) Result {
	id := strings.TrimSpace(env.ID)
	if id == "" {
		return Failure("id is required")
	}
	a, err := d.articles.ViewArticle(id)
	if errors.Is(err, content.ErrNotFound) {
		return Failure("Article not found")
	}
	if err != nil {
		return d.internal(env.Action, err)
	}
	return Result{Success: true, Article: &a}
}

func (d *Dispatcher) updateArticle(env Envelope) Result {
	if env.Article == nil {
		return Failure("article is required")
	}
	a := *env.Article
	if env.ID != "" {
		a.ID = env.ID
	}
	saved, err := d.articles.UpdateArticle(a)
	if errors.Is(err, content.ErrNotFound) {
		return Failure("Article not found")
	}
	if err != nil {
		return d.internal(env.Action, err)
	}
	return Result{Success: true, Message: "Article updated", Article: &saved}
}

func (d *Dispatcher) deleteArticle(env Envelope) Result {
	id := strings.TrimSpace(env.ID)
	if id == "" {
		return Failure("id is required")
	}
	if err := d.articles.DeleteArticle(id); err != nil {
		return d.internal(env.Action, err)
	}
	return Result{Success: true, Message: "Article deleted"}
}

func (d *Dispatcher) submitContact(ctx context.Context, env Envelope) Result {
	lead, err := d.contacts.Submit(ctx, intake.Submission{Fields: env.Fields, Page: env.Page})
	var verr *intake.ValidationError
	if errors.As(err, &verr) {
		return Result{Success: false, Message: verr.Error(), Missing: verr.Fields}
	}
	if err != nil {
		return d.internal(env.Action, err)
	}
	return Result{Success: true, Message: "Thank you! We will be in touch.", Lead: &lead}
}
