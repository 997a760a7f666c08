package api

import (
	"fmt"
	"strings"
)

// DisplayName resolves the best human label for a queue item: the
// operator-supplied agency name, then the compiled profile's agency name,
// then the site host, then the seed URL.
func DisplayName(item QueueItem) string {
	if name := strings.TrimSpace(item.AgencyName); name != "" {
		return name
	}
	if item.Profile != nil {
		if name := strings.TrimSpace(item.Profile.AgencyName); name != "" {
			return name
		}
	}
	if host := strings.TrimSpace(item.SiteHost); host != "" {
		return host
	}
	if seed := strings.TrimSpace(item.SeedURL); seed != "" {
		return seed
	}
	return "Unknown"
}

// CompletenessLabel formats a completeness percentage for table display.
// Items without a compiled profile render a dash.
func CompletenessLabel(item QueueItem) string {
	if item.Profile == nil || item.Profile.TotalFields == 0 {
		return "-"
	}
	return fmt.Sprintf("%.0f%%", item.Profile.Completeness)
}
