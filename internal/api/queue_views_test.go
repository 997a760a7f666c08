package api

import "testing"

func TestDisplayName(t *testing.T) {
	if got := DisplayName(QueueItem{AgencyName: "Helping Hands"}); got != "Helping Hands" {
		t.Fatalf("DisplayName agency = %q, want Helping Hands", got)
	}
	if got := DisplayName(QueueItem{Profile: &ProfileSummary{AgencyName: "Derived Agency"}}); got != "Derived Agency" {
		t.Fatalf("DisplayName profile = %q, want Derived Agency", got)
	}
	if got := DisplayName(QueueItem{SiteHost: "agency.org"}); got != "agency.org" {
		t.Fatalf("DisplayName host = %q, want agency.org", got)
	}
	if got := DisplayName(QueueItem{SeedURL: "https://agency.org/"}); got != "https://agency.org/" {
		t.Fatalf("DisplayName seed = %q, want seed URL", got)
	}
	if got := DisplayName(QueueItem{}); got != "Unknown" {
		t.Fatalf("DisplayName empty = %q, want Unknown", got)
	}
}

func TestCompletenessLabel(t *testing.T) {
	if got := CompletenessLabel(QueueItem{}); got != "-" {
		t.Fatalf("CompletenessLabel empty = %q, want -", got)
	}
	if got := CompletenessLabel(QueueItem{Profile: &ProfileSummary{}}); got != "-" {
		t.Fatalf("CompletenessLabel zero totals = %q, want -", got)
	}
	item := QueueItem{Profile: &ProfileSummary{Completeness: 72.4, TotalFields: 25}}
	if got := CompletenessLabel(item); got != "72%" {
		t.Fatalf("CompletenessLabel = %q, want 72%%", got)
	}
}

func TestSortQueueItemsNewestFirst(t *testing.T) {
	items := []QueueItem{
		{ID: 1, CreatedAt: "2026-03-01T10:00:00.000Z"},
		{ID: 2, CreatedAt: "2026-03-02T10:00:00.000Z"},
		{ID: 3, CreatedAt: "2026-03-02T10:00:00.000Z"},
	}
	sorted := SortQueueItemsNewestFirst(items)
	if len(sorted) != 3 {
		t.Fatalf("len = %d, want 3", len(sorted))
	}
	if sorted[0].ID != 3 || sorted[1].ID != 2 || sorted[2].ID != 1 {
		t.Fatalf("unexpected order: %d, %d, %d", sorted[0].ID, sorted[1].ID, sorted[2].ID)
	}
	// Original slice untouched
	if items[0].ID != 1 {
		t.Fatalf("input slice mutated")
	}
}

func TestParseQueueTime(t *testing.T) {
	if got := ParseQueueTime(""); !got.IsZero() {
		t.Fatalf("expected zero time for empty input")
	}
	if got := ParseQueueTime("2026-03-01T10:00:00.000Z"); got.IsZero() {
		t.Fatalf("expected parsed time, got zero")
	}
	if got := ParseQueueTime("not-a-time"); !got.IsZero() {
		t.Fatalf("expected zero time for garbage input")
	}
}
