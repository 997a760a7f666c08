package stage

import (
	"canvass/internal/profile"
	"canvass/internal/services"
)

// ParseCrawlState parses a stored crawl state string and returns the envelope.
// On failure it returns a services.ErrValidation suitable for stage Execute methods.
func ParseCrawlState(raw string) (profile.CrawlState, error) {
	state, err := profile.ParseCrawlState(raw)
	if err != nil {
		return profile.CrawlState{}, services.Wrap(
			services.ErrValidation, "stage", "parse crawl state",
			"Crawl state missing or invalid; rerun the scout stage", err)
	}
	return state, nil
}
