// Package content holds the article model shared by the store, the admin
// controller, and the action backend.
package content

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the publication state of an article.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// ParseStatus maps form and JSON input onto a Status. Anything that is not
// "published" is treated as a draft.
func ParseStatus(s string) Status {
	if strings.EqualFold(strings.TrimSpace(s), string(StatusPublished)) {
		return StatusPublished
	}
	return StatusDraft
}

// Categories are the values the editor offers. The store accepts any string.
var Categories = []string{"news", "insights", "case-studies", "announcements", "guides"}

// Article is a blog record with a draft/published lifecycle.
type Article struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	Category        string    `json:"category"`
	Excerpt         string    `json:"excerpt"`
	Content         string    `json:"content"`
	FeaturedImage   string    `json:"featuredImage"`
	MetaDescription string    `json:"metaDescription"`
	Keywords        string    `json:"keywords"`
	Status          Status    `json:"status"`
	PublishDate     time.Time `json:"publishDate"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
	Views           int       `json:"views"`
}

// Published reports whether the article is publicly visible.
func (a Article) Published() bool {
	return a.Status == StatusPublished
}

// KeywordList splits the comma-separated keywords, dropping blanks.
func (a Article) KeywordList() []string {
	var out []string
	for _, k := range strings.Split(a.Keywords, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

// NewID returns a time-seeded random token for a new article.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Filter selects articles by status.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterPublished Filter = "published"
	FilterDraft     Filter = "draft"
)

// ParseFilter maps a query value onto a Filter, defaulting to FilterAll.
func ParseFilter(s string) Filter {
	switch Filter(strings.ToLower(strings.TrimSpace(s))) {
	case FilterPublished:
		return FilterPublished
	case FilterDraft:
		return FilterDraft
	}
	return FilterAll
}

// Match reports whether a passes the filter.
func (f Filter) Match(a Article) bool {
	switch f {
	case FilterPublished:
		return a.Status == StatusPublished
	case FilterDraft:
		return a.Status == StatusDraft
	}
	return true
}

// Stats are counts derived from the current article set.
type Stats struct {
	Total     int `json:"total"`
	Published int `json:"published"`
	Drafts    int `json:"drafts"`
}

// ComputeStats counts articles by status in a single pass.
func ComputeStats(articles []Article) Stats {
	var s Stats
	for _, a := range articles {
		s.Total++
		switch a.Status {
		case StatusPublished:
			s.Published++
		case StatusDraft:
			s.Drafts++
		}
	}
	return s
}

// SortByPublishDate orders articles newest publish date first. Ties keep
// their relative order.
func SortByPublishDate(articles []Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishDate.After(articles[j].PublishDate)
	})
}

// ErrNotFound is returned when no article matches the requested id.
var ErrNotFound = errors.New("article not found")
