package sitepress

import (
	"sync"
	"time"

	"github.com/eringen/sitepress/content"
)

// ArticleCache is an in-memory cache of published articles for the public
// pages. Admin views and statistics always read the store directly.
type ArticleCache struct {
	mu       sync.RWMutex
	articles []content.Article
	fetched  time.Time
	ttl      time.Duration
	store    *Store
}

// NewArticleCache creates an ArticleCache backed by the given Store.
func NewArticleCache(s *Store, ttl time.Duration) *ArticleCache {
	return &ArticleCache{store: s, ttl: ttl}
}

func (c *ArticleCache) valid() bool {
	return c.articles != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *ArticleCache) Invalidate() {
	c.mu.Lock()
	c.articles = nil
	c.mu.Unlock()
}

// ensureLoaded returns cached articles after ensuring the cache is fresh.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *ArticleCache) ensureLoaded() ([]content.Article, error) {
	c.mu.RLock()
	if c.valid() {
		articles := c.articles
		c.mu.RUnlock()
		return articles, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid() {
		return c.articles, nil
	}
	articles, err := c.store.ListArticles(content.FilterPublished)
	if err != nil {
		return nil, err
	}
	if articles == nil {
		articles = []content.Article{}
	}
	c.articles = articles
	c.fetched = time.Now()
	return c.articles, nil
}

// Published returns published articles, most recently added first.
func (c *ArticleCache) Published() ([]content.Article, error) {
	return c.ensureLoaded()
}

// Related returns up to max other published articles, preferring the same
// category.
func (c *ArticleCache) Related(current content.Article, max int) ([]content.Article, error) {
	articles, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}
	var same, other []content.Article
	for _, a := range articles {
		if a.ID == current.ID {
			continue
		}
		if current.Category != "" && a.Category == current.Category {
			same = append(same, a)
		} else {
			other = append(other, a)
		}
	}
	related := append(same, other...)
	if len(related) > max {
		related = related[:max]
	}
	return related, nil
}

// cachedArticles is the article service handed to the action backend. Every
// mutation goes to the store and then drops the public cache.
type cachedArticles struct {
	app *App
}

func (c cachedArticles) SaveArticle(a content.Article) (content.Article, error) {
	saved, err := c.app.Store.SaveArticle(a)
	if err == nil {
		c.app.Cache.Invalidate()
	}
	return saved, err
}

func (c cachedArticles) UpdateArticle(a content.Article) (content.Article, error) {
	saved, err := c.app.Store.UpdateArticle(a)
	if err == nil {
		c.app.Cache.Invalidate()
	}
	return saved, err
}

func (c cachedArticles) ListArticles(f content.Filter) ([]content.Article, error) {
	return c.app.Store.ListArticles(f)
}

func (c cachedArticles) ViewArticle(id string) (content.Article, error) {
	return c.app.Store.ViewArticle(id)
}

func (c cachedArticles) DeleteArticle(id string) error {
	if err := c.app.Store.DeleteArticle(id); err != nil {
		return err
	}
	c.app.Cache.Invalidate()
	return nil
}
