package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/sitepress/content"
	"github.com/eringen/sitepress/intake"
)

// memArticles keeps articles in insertion order, like the SQLite store.
type memArticles struct {
	mu       sync.Mutex
	articles []content.Article
	failList bool
}

func (m *memArticles) SaveArticle(a content.Article) (content.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == "" {
		a.ID = content.NewID()
	}
	for i := range m.articles {
		if m.articles[i].ID == a.ID {
			a.Views = m.articles[i].Views
			m.articles[i] = a
			return a, nil
		}
	}
	m.articles = append(m.articles, a)
	return a, nil
}

func (m *memArticles) UpdateArticle(a content.Article) (content.Article, error) {
	m.mu.Lock()
	found := false
	for _, x := range m.articles {
		if x.ID == a.ID {
			found = true
		}
	}
	m.mu.Unlock()
	if !found {
		return content.Article{}, content.ErrNotFound
	}
	return m.SaveArticle(a)
}

func (m *memArticles) ListArticles(f content.Filter) ([]content.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failList {
		return nil, errors.New("db locked")
	}
	var out []content.Article
	for i := len(m.articles) - 1; i >= 0; i-- {
		if f.Match(m.articles[i]) {
			out = append(out, m.articles[i])
		}
	}
	return out, nil
}

func (m *memArticles) ViewArticle(id string) (content.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.articles {
		if m.articles[i].ID == id {
			m.articles[i].Views++
			return m.articles[i], nil
		}
	}
	return content.Article{}, content.ErrNotFound
}

func (m *memArticles) DeleteArticle(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.articles {
		if m.articles[i].ID == id {
			m.articles = append(m.articles[:i], m.articles[i+1:]...)
			return nil
		}
	}
	return nil
}

type memLeads struct {
	mu    sync.Mutex
	leads []intake.Lead
}

func (m *memLeads) AppendLead(l intake.Lead) (intake.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leads = append(m.leads, l)
	return l, nil
}

func newDispatcher() (*Dispatcher, *memArticles, *memLeads) {
	articles := &memArticles{}
	leads := &memLeads{}
	return NewDispatcher(articles, intake.NewPipeline(leads, nil, nil), nil), articles, leads
}

func TestDispatchUnknownAction(t *testing.T) {
	d, _, _ := newDispatcher()
	res := d.Dispatch(context.Background(), Envelope{Action: "dropTables"})
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "unknown action")

	res = d.Dispatch(context.Background(), Envelope{})
	assert.False(t, res.Success)
}

func TestDispatchSaveAndGetCountsViews(t *testing.T) {
	d, _, _ := newDispatcher()
	ctx := context.Background()

	saved := d.Dispatch(ctx, Envelope{Action: ActionSaveArticle, Article: &content.Article{Title: "Hello", Content: "<p>World</p>"}})
	require.True(t, saved.Success)
	require.NotNil(t, saved.Article)
	id := saved.Article.ID
	require.NotEmpty(t, id)

	first := d.Dispatch(ctx, Envelope{Action: ActionGetArticle, ID: id})
	require.True(t, first.Success)
	assert.Equal(t, 1, first.Article.Views)

	second := d.Dispatch(ctx, Envelope{Action: ActionGetArticle, ID: id})
	require.True(t, second.Success)
	assert.Equal(t, 2, second.Article.Views)
}

func TestDispatchGetMissingArticle(t *testing.T) {
	d, _, _ := newDispatcher()
	res := d.Dispatch(context.Background(), Envelope{Action: ActionGetArticle, ID: "nope"})
	assert.False(t, res.Success)
	assert.Equal(t, "Article not found", res.Message)

	res = d.Dispatch(context.Background(), Envelope{Action: ActionGetArticle})
	assert.False(t, res.Success)
}

func TestDispatchGetArticlesSortsByPublishDate(t *testing.T) {
	d, store, _ := newDispatcher()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	_, _ = store.SaveArticle(content.Article{ID: "b", Status: content.StatusPublished, PublishDate: base.Add(48 * time.Hour)})
	_, _ = store.SaveArticle(content.Article{ID: "a", Status: content.StatusPublished, PublishDate: base.Add(72 * time.Hour)})
	_, _ = store.SaveArticle(content.Article{ID: "c", Status: content.StatusDraft, PublishDate: base})

	res := d.Dispatch(context.Background(), Envelope{Action: ActionGetArticles, Status: "published"})
	require.True(t, res.Success)
	require.Len(t, res.Articles, 2)
	assert.Equal(t, "a", res.Articles[0].ID)
	assert.Equal(t, "b", res.Articles[1].ID)
	assert.Equal(t, content.Stats{Total: 3, Published: 2, Drafts: 1}, *res.Stats)

	all := d.Dispatch(context.Background(), Envelope{Action: ActionGetArticles})
	require.True(t, all.Success)
	assert.Len(t, all.Articles, 3)
}

func TestDispatchStoreFailureIsStructured(t *testing.T) {
	d, store, _ := newDispatcher()
	store.failList = true
	res := d.Dispatch(context.Background(), Envelope{Action: ActionGetArticles})
	assert.False(t, res.Success)
	assert.Equal(t, "internal error", res.Message)
}

func TestDispatchUpdateArticle(t *testing.T) {
	d, store, _ := newDispatcher()
	ctx := context.Background()

	res := d.Dispatch(ctx, Envelope{Action: ActionUpdateArticle, ID: "ghost", Article: &content.Article{Title: "x"}})
	assert.False(t, res.Success)
	assert.Equal(t, "Article not found", res.Message)

	a, _ := store.SaveArticle(content.Article{Title: "Before"})
	res = d.Dispatch(ctx, Envelope{Action: ActionUpdateArticle, ID: a.ID, Article: &content.Article{Title: "After"}})
	require.True(t, res.Success)
	assert.Equal(t, "After", res.Article.Title)
	assert.Len(t, store.articles, 1)
}

func TestDispatchDeleteIsIdempotent(t *testing.T) {
	d, store, _ := newDispatcher()
	a, _ := store.SaveArticle(content.Article{Title: "Bye"})

	for i := 0; i < 2; i++ {
		res := d.Dispatch(context.Background(), Envelope{Action: ActionDeleteArticle, ID: a.ID})
		assert.True(t, res.Success)
	}
	assert.Empty(t, store.articles)
}

func TestDispatchSubmitContact(t *testing.T) {
	d, _, leads := newDispatcher()
	ctx := context.Background()

	res := d.Dispatch(ctx, Envelope{Action: ActionSubmitContact, Fields: map[string]string{"name": "Ada"}})
	assert.False(t, res.Success)
	assert.Equal(t, []string{"email", "message"}, res.Missing)
	assert.Empty(t, leads.leads)

	res = d.Dispatch(ctx, Envelope{
		Action: ActionSubmitContact,
		Fields: map[string]string{"name": "Ada", "email": "ada@example.com", "message": "hi"},
		Page:   "https://example.com/",
	})
	require.True(t, res.Success)
	assert.Len(t, leads.leads, 1)
	assert.Equal(t, "https://example.com/", res.Lead.Page)
}

func TestHandlerAndClient(t *testing.T) {
	d, _, _ := newDispatcher()
	e := echo.New()
	e.POST("/api/backend", Handler(d, "tok"))
	srv := httptest.NewServer(e)
	defer srv.Close()

	ctx := context.Background()
	unauth := NewClient(srv.URL+"/api/backend", "", time.Second)
	res := unauth.Articles(ctx, "all")
	assert.False(t, res.Success)
	assert.Equal(t, "unauthorized", res.Message)

	client := NewClient(srv.URL+"/api/backend", "tok", time.Second)
	saved := client.Do(ctx, Envelope{Action: ActionSaveArticle, Article: &content.Article{Title: "Remote", Status: content.StatusPublished}})
	require.True(t, saved.Success, saved.Message)

	got := client.Article(ctx, saved.Article.ID)
	require.True(t, got.Success)
	assert.Equal(t, 1, got.Article.Views)

	list := client.Articles(ctx, "published")
	require.True(t, list.Success)
	assert.Len(t, list.Articles, 1)
}

func TestClientTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	res := NewClient(url, "", time.Second).Articles(context.Background(), "all")
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "request failed")
}

func TestClientNonJSONResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	res := NewClient(srv.URL, "", time.Second).Articles(context.Background(), "all")
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "502")
}
