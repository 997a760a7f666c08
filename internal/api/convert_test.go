package api

import (
	"testing"

	"canvass/internal/profile"
	"canvass/internal/queue"
)

func TestFromQueueItemIncludesProfileSummary(t *testing.T) {
	prof := profile.Profile{
		Agency: profile.FieldMap{
			profile.FieldAgencyName:   "Helping Hands",
			profile.FieldPhoneNumbers: "555-0100",
			profile.FieldDescription:  "Community support agency",
		},
		Sites: []profile.FieldMap{
			{profile.FieldName: "Main Office", profile.FieldStreetAddress: "1 Main St"},
		},
		Services: []profile.FieldMap{
			{profile.FieldName: "Food Pantry"},
			{profile.FieldName: "Housing Counseling"},
		},
		SourceURLs: []string{"https://helpinghands.org/", "https://helpinghands.org/services"},
	}
	encoded, err := prof.Encode()
	if err != nil {
		t.Fatalf("encode profile: %v", err)
	}
	state := profile.CrawlState{
		BaseURL: "https://helpinghands.org",
		Visited: []string{"https://helpinghands.org/", "https://helpinghands.org/services", "https://helpinghands.org/about"},
	}
	stateJSON, err := state.Encode()
	if err != nil {
		t.Fatalf("encode crawl state: %v", err)
	}

	item := &queue.Item{
		AgencyName:     "Helping Hands",
		SeedURL:        "https://helpinghands.org",
		SiteHost:       "helpinghands.org",
		Status:         queue.StatusCompiled,
		ProfileJSON:    encoded,
		CrawlStateJSON: stateJSON,
	}
	dto := FromQueueItem(item)

	if dto.Profile == nil {
		t.Fatalf("expected profile summary to be populated")
	}
	if dto.Profile.AgencyName != "Helping Hands" {
		t.Fatalf("AgencyName = %q, want Helping Hands", dto.Profile.AgencyName)
	}
	if dto.Profile.Sites != 1 {
		t.Fatalf("Sites = %d, want 1", dto.Profile.Sites)
	}
	if dto.Profile.Services != 2 {
		t.Fatalf("Services = %d, want 2", dto.Profile.Services)
	}
	if dto.Profile.Completeness <= 0 {
		t.Fatalf("Completeness = %v, want > 0", dto.Profile.Completeness)
	}
	if dto.Profile.FilledFields == 0 || dto.Profile.TotalFields == 0 {
		t.Fatalf("expected field counts, got %d/%d", dto.Profile.FilledFields, dto.Profile.TotalFields)
	}
	if len(dto.Profile.Missing) == 0 {
		t.Fatalf("expected missing field list for a partial profile")
	}
	if dto.Profile.PagesVisited != 3 {
		t.Fatalf("PagesVisited = %d, want 3", dto.Profile.PagesVisited)
	}
	if len(dto.Profile.SourceURLs) != 2 {
		t.Fatalf("SourceURLs = %d, want 2", len(dto.Profile.SourceURLs))
	}
	if len(dto.ProfileData) == 0 {
		t.Fatalf("expected raw profile data passthrough")
	}
}

func TestFromQueueItemWithoutProfile(t *testing.T) {
	item := &queue.Item{
		AgencyName: "Fresh Agency",
		SeedURL:    "https://fresh.example",
		Status:     queue.StatusPending,
	}
	dto := FromQueueItem(item)

	if dto.Profile != nil {
		t.Fatalf("expected nil profile summary for a fresh item")
	}
	if dto.ProfileData != nil {
		t.Fatalf("expected no raw profile data for a fresh item")
	}
}

func TestFromQueueItemLaneForBackgroundFailure(t *testing.T) {
	item := &queue.Item{
		Status:            queue.StatusFailed,
		BackgroundLogPath: "/logs/item-3.log",
	}
	dto := FromQueueItem(item)
	if dto.ProcessingLane != string(queue.LaneBackground) {
		t.Fatalf("ProcessingLane = %q, want %q", dto.ProcessingLane, queue.LaneBackground)
	}
}

func TestFromQueueItem_NormalizesCompletedProgressStage(t *testing.T) {
	item := &queue.Item{
		Status:          queue.StatusCompleted,
		ProgressStage:   "Exporting",
		ProgressPercent: 42,
	}

	dto := FromQueueItem(item)
	if dto.Progress.Stage != "Completed" {
		t.Fatalf("expected completed stage, got %q", dto.Progress.Stage)
	}
	if dto.Progress.Percent != 100 {
		t.Fatalf("expected percent 100, got %v", dto.Progress.Percent)
	}
}

func TestFromQueueItem_PreservesReviewCompletionStage(t *testing.T) {
	item := &queue.Item{
		Status:          queue.StatusCompleted,
		NeedsReview:     true,
		ProgressStage:   "Review export",
		ProgressPercent: 100,
	}

	dto := FromQueueItem(item)
	if dto.Progress.Stage != "Review export" {
		t.Fatalf("expected review export stage, got %q", dto.Progress.Stage)
	}
	if dto.Progress.Percent != 100 {
		t.Fatalf("expected percent 100, got %v", dto.Progress.Percent)
	}
}

func TestFromQueueItem_FillsEmptyProgressStageFromStatus(t *testing.T) {
	tests := []struct {
		name   string
		status queue.Status
		want   string
	}{
		{name: "pending", status: queue.StatusPending, want: "Pending"},
		{name: "extracting", status: queue.StatusExtracting, want: "Extracting"},
		{name: "compiling", status: queue.StatusCompiling, want: "Compiling"},
		{name: "completed", status: queue.StatusCompleted, want: "Completed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := &queue.Item{
				Status:        tt.status,
				ProgressStage: "",
			}
			dto := FromQueueItem(item)
			if dto.Progress.Stage != tt.want {
				t.Fatalf("expected stage %q, got %q", tt.want, dto.Progress.Stage)
			}
		})
	}
}
