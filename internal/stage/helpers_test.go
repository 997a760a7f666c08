package stage

import (
	"errors"
	"testing"

	"canvass/internal/services"
)

func TestParseCrawlState_Valid(t *testing.T) {
	raw := `{"base_url":"https://acmehealth.org","visited":["https://acmehealth.org/"],"rounds":1}`
	state, err := ParseCrawlState(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.BaseURL != "https://acmehealth.org" || state.Rounds != 1 {
		t.Fatalf("unexpected state: %+v", state)
	}
}

func TestParseCrawlState_Empty(t *testing.T) {
	state, err := ParseCrawlState("")
	if err != nil {
		t.Fatalf("unexpected error for empty input: %v", err)
	}
	if state.BaseURL != "" || len(state.Visited) != 0 {
		t.Fatalf("expected zero state for empty input, got %+v", state)
	}
}

func TestParseCrawlState_Invalid(t *testing.T) {
	_, err := ParseCrawlState("{invalid json")
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
