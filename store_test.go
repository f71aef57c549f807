package sitepress

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/eringen/sitepress/content"
	"github.com/eringen/sitepress/intake"
)

func setupTestStore(t *testing.T) (*Store, *testClock) {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "site.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	clock := newTestClock()
	s.now = clock.now
	return s, clock
}

func sampleArticle(title string, status content.Status) content.Article {
	return content.Article{
		Title:           title,
		Author:          "Dana",
		Category:        "insights",
		Excerpt:         "Short summary",
		Content:         "<p>Body of " + title + "</p>",
		FeaturedImage:   "/public/uploads/cover.jpg",
		MetaDescription: "Meta for " + title,
		Keywords:        "go, web",
		Status:          status,
	}
}

func TestNewStore(t *testing.T) {
	s, _ := setupTestStore(t)
	if s.db == nil {
		t.Fatal("db should not be nil")
	}
}

func TestSaveAndGetArticle(t *testing.T) {
	s, clock := setupTestStore(t)

	saved, err := s.SaveArticle(sampleArticle("Hello", content.StatusPublished))
	if err != nil {
		t.Fatalf("SaveArticle failed: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("expected a generated id")
	}
	if !saved.CreatedAt.Equal(clock.t) || !saved.UpdatedAt.Equal(clock.t) {
		t.Errorf("timestamps = %v/%v, want %v", saved.CreatedAt, saved.UpdatedAt, clock.t)
	}
	if !saved.PublishDate.Equal(clock.t) {
		t.Errorf("PublishDate = %v, want default %v", saved.PublishDate, clock.t)
	}

	got, err := s.GetArticle(saved.ID)
	if err != nil {
		t.Fatalf("GetArticle failed: %v", err)
	}
	if diff := cmp.Diff(saved, got); diff != "" {
		t.Errorf("GetArticle mismatch (-saved +got):\n%s", diff)
	}
}

func TestGetArticleNotFound(t *testing.T) {
	s, _ := setupTestStore(t)
	if _, err := s.GetArticle("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDraftThenPublishKeepsOneArticle(t *testing.T) {
	s, clock := setupTestStore(t)

	draft, err := s.SaveArticle(sampleArticle("Launch", content.StatusDraft))
	if err != nil {
		t.Fatalf("save draft: %v", err)
	}
	created := draft.CreatedAt

	clock.advance(time.Hour)
	draft.Status = content.StatusPublished
	published, err := s.SaveArticle(draft)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	all, err := s.ListArticles(content.FilterAll)
	if err != nil {
		t.Fatalf("ListArticles: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("got %d articles, want 1", len(all))
	}
	if all[0].Status != content.StatusPublished {
		t.Errorf("Status = %q, want published", all[0].Status)
	}
	if !all[0].CreatedAt.Equal(created) {
		t.Errorf("CreatedAt changed: %v -> %v", created, all[0].CreatedAt)
	}
	if !published.UpdatedAt.After(created) || !all[0].UpdatedAt.Equal(clock.t) {
		t.Errorf("UpdatedAt = %v, want %v", all[0].UpdatedAt, clock.t)
	}
}

func TestListArticlesOrderAndFilters(t *testing.T) {
	s, clock := setupTestStore(t)

	var ids []string
	for i, status := range []content.Status{content.StatusPublished, content.StatusDraft, content.StatusPublished} {
		a, err := s.SaveArticle(sampleArticle("Article "+string(rune('A'+i)), status))
		if err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
		ids = append(ids, a.ID)
		clock.advance(time.Minute)
	}

	all, err := s.ListArticles(content.FilterAll)
	if err != nil {
		t.Fatalf("ListArticles: %v", err)
	}
	var got []string
	for _, a := range all {
		got = append(got, a.ID)
	}
	want := []string{ids[2], ids[1], ids[0]}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}

	published, _ := s.ListArticles(content.FilterPublished)
	drafts, _ := s.ListArticles(content.FilterDraft)
	if len(published) != 2 || len(drafts) != 1 {
		t.Errorf("published=%d drafts=%d, want 2 and 1", len(published), len(drafts))
	}

	stats, err := s.ArticleStats()
	if err != nil {
		t.Fatalf("ArticleStats: %v", err)
	}
	if diff := cmp.Diff(content.Stats{Total: 3, Published: 2, Drafts: 1}, stats); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveArticleReplacesInPlace(t *testing.T) {
	s, _ := setupTestStore(t)

	first, _ := s.SaveArticle(sampleArticle("First", content.StatusPublished))
	second, _ := s.SaveArticle(sampleArticle("Second", content.StatusPublished))

	first.Title = "First, edited"
	if _, err := s.SaveArticle(first); err != nil {
		t.Fatalf("resave: %v", err)
	}

	all, _ := s.ListArticles(content.FilterAll)
	if len(all) != 2 {
		t.Fatalf("got %d articles, want 2", len(all))
	}
	if all[0].ID != second.ID || all[1].ID != first.ID {
		t.Errorf("edit moved the article: got order %s, %s", all[0].ID, all[1].ID)
	}
	if all[1].Title != "First, edited" {
		t.Errorf("Title = %q, want edited title", all[1].Title)
	}
}

func TestViewArticleCountsViews(t *testing.T) {
	s, _ := setupTestStore(t)
	a, _ := s.SaveArticle(sampleArticle("Counted", content.StatusPublished))

	for want := 1; want <= 2; want++ {
		got, err := s.ViewArticle(a.ID)
		if err != nil {
			t.Fatalf("ViewArticle: %v", err)
		}
		if got.Views != want {
			t.Errorf("Views = %d, want %d", got.Views, want)
		}
	}

	plain, _ := s.GetArticle(a.ID)
	if plain.Views != 2 {
		t.Errorf("GetArticle changed views: %d", plain.Views)
	}

	a.Title = "Counted, edited"
	updated, err := s.SaveArticle(a)
	if err != nil {
		t.Fatalf("resave: %v", err)
	}
	if updated.Views != 2 {
		t.Errorf("views after update = %d, want 2", updated.Views)
	}

	if _, err := s.ViewArticle("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ViewArticle(missing) err = %v, want ErrNotFound", err)
	}
}

func TestUpdateArticleRequiresExisting(t *testing.T) {
	s, _ := setupTestStore(t)

	if _, err := s.UpdateArticle(content.Article{ID: "nope", Title: "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if _, err := s.UpdateArticle(content.Article{Title: "no id"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("empty id err = %v, want ErrNotFound", err)
	}
	all, _ := s.ListArticles(content.FilterAll)
	if len(all) != 0 {
		t.Errorf("failed updates stored %d articles", len(all))
	}
}

func TestDeleteArticleIsIdempotent(t *testing.T) {
	s, _ := setupTestStore(t)
	a, _ := s.SaveArticle(sampleArticle("Doomed", content.StatusDraft))

	if err := s.DeleteArticle(a.ID); err != nil {
		t.Fatalf("DeleteArticle: %v", err)
	}
	if err := s.DeleteArticle(a.ID); err != nil {
		t.Fatalf("second DeleteArticle: %v", err)
	}
	if _, err := s.GetArticle(a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("article still present: %v", err)
	}
}

func TestLeadsAppendListClear(t *testing.T) {
	s, clock := setupTestStore(t)

	first := intake.NewLead(map[string]string{
		"name": "Ada", "email": "ada@example.com", "message": "Hi", "budget": "10k",
	}, "/", clock.t)
	if _, err := s.AppendLead(first); err != nil {
		t.Fatalf("AppendLead: %v", err)
	}
	// same submission recorded twice
	if _, err := s.AppendLead(first); err != nil {
		t.Fatalf("AppendLead duplicate: %v", err)
	}
	clock.advance(time.Second)
	second := intake.NewLead(map[string]string{
		"name": "Lin", "email": "lin@example.com", "message": "Hello",
	}, "/blog/x/", clock.t)
	if _, err := s.AppendLead(second); err != nil {
		t.Fatalf("AppendLead: %v", err)
	}

	leads, err := s.ListLeads()
	if err != nil {
		t.Fatalf("ListLeads: %v", err)
	}
	if len(leads) != 3 {
		t.Fatalf("got %d leads, want 3", len(leads))
	}
	if diff := cmp.Diff(first, leads[0]); diff != "" {
		t.Errorf("lead mismatch (-want +got):\n%s", diff)
	}
	if got := intake.Dedupe(leads); len(got) != 2 {
		t.Errorf("Dedupe kept %d leads, want 2", len(got))
	}

	n, err := s.ClearLeads()
	if err != nil {
		t.Fatalf("ClearLeads: %v", err)
	}
	if n != 3 {
		t.Errorf("cleared %d, want 3", n)
	}
	leads, _ = s.ListLeads()
	if len(leads) != 0 {
		t.Errorf("got %d leads after clear", len(leads))
	}
}

func TestImages(t *testing.T) {
	s, _ := setupTestStore(t)

	older := Image{Filename: "a.jpg", OriginalName: "a.png", Width: 800, Height: 600, Size: 1234, UploadedAt: "2025-01-01T00:00:00Z"}
	newer := Image{Filename: "b.jpg", OriginalName: "b.png", Width: 1200, Height: 400, Size: 999, UploadedAt: "2025-02-01T00:00:00Z"}
	for _, img := range []Image{older, newer} {
		if err := s.SaveImage(img); err != nil {
			t.Fatalf("SaveImage: %v", err)
		}
	}

	images, err := s.ListImages()
	if err != nil {
		t.Fatalf("ListImages: %v", err)
	}
	if diff := cmp.Diff([]Image{newer, older}, images); diff != "" {
		t.Errorf("images mismatch (-want +got):\n%s", diff)
	}

	if err := s.DeleteImage("a.jpg"); err != nil {
		t.Fatalf("DeleteImage: %v", err)
	}
	images, _ = s.ListImages()
	if len(images) != 1 || images[0].Filename != "b.jpg" {
		t.Errorf("after delete: %+v", images)
	}
}
