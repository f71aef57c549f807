package content

import (
	"testing"
	"time"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
	}{
		{"published", StatusPublished},
		{" Published ", StatusPublished},
		{"draft", StatusDraft},
		{"", StatusDraft},
		{"archived", StatusDraft},
	}
	for _, tt := range tests {
		if got := ParseStatus(tt.in); got != tt.want {
			t.Errorf("ParseStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFilterMatch(t *testing.T) {
	draft := Article{Status: StatusDraft}
	pub := Article{Status: StatusPublished}

	if !FilterAll.Match(draft) || !FilterAll.Match(pub) {
		t.Error("FilterAll should match every article")
	}
	if FilterPublished.Match(draft) || !FilterPublished.Match(pub) {
		t.Error("FilterPublished should only match published articles")
	}
	if !FilterDraft.Match(draft) || FilterDraft.Match(pub) {
		t.Error("FilterDraft should only match drafts")
	}
	if ParseFilter("bogus") != FilterAll {
		t.Error("unknown filter should fall back to all")
	}
}

func TestComputeStats(t *testing.T) {
	articles := []Article{
		{Status: StatusPublished},
		{Status: StatusDraft},
		{Status: StatusPublished},
	}
	got := ComputeStats(articles)
	want := Stats{Total: 3, Published: 2, Drafts: 1}
	if got != want {
		t.Errorf("ComputeStats = %+v, want %+v", got, want)
	}
	if got := ComputeStats(nil); got != (Stats{}) {
		t.Errorf("ComputeStats(nil) = %+v, want zero", got)
	}
}

func TestSortByPublishDate(t *testing.T) {
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	articles := []Article{
		{ID: "old", PublishDate: base},
		{ID: "new", PublishDate: base.Add(48 * time.Hour)},
		{ID: "mid", PublishDate: base.Add(24 * time.Hour)},
	}
	SortByPublishDate(articles)
	order := []string{articles[0].ID, articles[1].ID, articles[2].ID}
	if order[0] != "new" || order[1] != "mid" || order[2] != "old" {
		t.Errorf("order = %v, want [new mid old]", order)
	}
}

func TestKeywordList(t *testing.T) {
	a := Article{Keywords: " go, ,web ,marketing,"}
	got := a.KeywordList()
	if len(got) != 3 || got[0] != "go" || got[1] != "web" || got[2] != "marketing" {
		t.Errorf("KeywordList = %v", got)
	}
}

func TestNewIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		if id == "" || seen[id] {
			t.Fatalf("duplicate or empty id %q", id)
		}
		seen[id] = true
	}
}
