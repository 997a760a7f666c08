package queue

import (
	"testing"
	"time"
)

func nowPtr() *time.Time {
	now := time.Now()
	return &now
}

func TestParseStatus(t *testing.T) {
	status, ok := ParseStatus("  Extracting ")
	if !ok || status != StatusExtracting {
		t.Fatalf("expected extracting, got %s ok=%v", status, ok)
	}
	if _, ok := ParseStatus("bogus"); ok {
		t.Fatal("expected unknown status to be rejected")
	}
	if _, ok := ParseStatus(""); ok {
		t.Fatal("expected empty status to be rejected")
	}
}

func TestStageKey(t *testing.T) {
	cases := []struct {
		status Status
		want   string
	}{
		{StatusPending, "planned"},
		{StatusCompleted, "final"},
		{StatusCompiling, "compiling"},
		{StatusReview, "review"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := tc.status.StageKey(); got != tc.want {
			t.Fatalf("StageKey(%q) = %q, want %q", tc.status, got, tc.want)
		}
	}
}

func TestLaneForItem(t *testing.T) {
	if lane := LaneForItem(nil); lane != LaneForeground {
		t.Fatalf("nil item should be foreground, got %s", lane)
	}
	if lane := LaneForItem(&Item{Status: StatusScouting}); lane != LaneForeground {
		t.Fatalf("scouting should be foreground, got %s", lane)
	}
	if lane := LaneForItem(&Item{Status: StatusExtracting}); lane != LaneBackground {
		t.Fatalf("extracting should be background, got %s", lane)
	}
	if lane := LaneForItem(&Item{Status: StatusFailed}); lane != LaneForeground {
		t.Fatalf("failed without background log should be foreground, got %s", lane)
	}
	if lane := LaneForItem(&Item{Status: StatusFailed, BackgroundLogPath: "/tmp/x.log"}); lane != LaneBackground {
		t.Fatalf("failed with background log should be background, got %s", lane)
	}
}

func TestSetFailedClearsHeartbeat(t *testing.T) {
	now := nowPtr()
	item := Item{Status: StatusExtracting, LastHeartbeat: now, ProgressPercent: 55}
	item.SetFailed("extract blew up")
	if item.Status != StatusFailed {
		t.Fatalf("expected failed status, got %s", item.Status)
	}
	if item.LastHeartbeat != nil {
		t.Fatal("expected heartbeat cleared")
	}
	if item.ProgressStage != "Failed" || item.ProgressPercent != 0 {
		t.Fatalf("unexpected progress state: %#v", item)
	}
}

func TestSetReviewMarksItem(t *testing.T) {
	item := Item{Status: StatusCompiling, LastHeartbeat: nowPtr()}
	item.SetReview("profile too sparse")
	if item.Status != StatusReview || !item.NeedsReview {
		t.Fatalf("expected review state, got %#v", item)
	}
	if item.ReviewReason != "profile too sparse" {
		t.Fatalf("unexpected review reason %q", item.ReviewReason)
	}
	if item.LastHeartbeat != nil {
		t.Fatal("expected heartbeat cleared")
	}
}

func TestIsInWorkflow(t *testing.T) {
	if !(Item{Status: StatusScouted}).IsInWorkflow() {
		t.Fatal("scouted items are in workflow")
	}
	if !(Item{Status: StatusExtracting}).IsInWorkflow() {
		t.Fatal("processing items are in workflow")
	}
	if (Item{Status: StatusPending}).IsInWorkflow() {
		t.Fatal("pending items are not in workflow")
	}
	if (Item{Status: StatusReview}).IsInWorkflow() {
		t.Fatal("review items are not in workflow")
	}
}
