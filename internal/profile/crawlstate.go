package profile

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CrawlState carries crawl bookkeeping between the scout and extraction
// stages. It is stored on the queue item as JSON alongside the profile.
//
// URL slices hold the exact strings handed to the fetcher; normalization for
// duplicate detection is the caller's concern so one normalizer governs the
// whole crawl.
type CrawlState struct {
	// BaseURL is scheme://host of the seed, the boundary of the crawl.
	BaseURL string `json:"base_url,omitempty"`
	// CurrentURL is the page the next extraction round will read.
	CurrentURL string `json:"current_url,omitempty"`
	// PageTitle is the title of the most recently fetched page.
	PageTitle string `json:"page_title,omitempty"`
	// SeedContentPath points at the staged text snapshot of the seed page,
	// written by the scout stage so the first extraction round skips a fetch.
	SeedContentPath string `json:"seed_content_path,omitempty"`

	Visited  []string `json:"visited,omitempty"`
	Failed   []string `json:"failed,omitempty"`
	LinkPool []string `json:"link_pool,omitempty"`

	// Missing holds the still-missing list from the latest model reply. It
	// steers navigation only; the final report recomputes gaps from the
	// profile itself.
	Missing []string `json:"missing,omitempty"`

	// NextURL is the model's pending navigation choice, kept for diagnosis
	// when a run stops midway.
	NextURL string `json:"next_url,omitempty"`

	// Rounds counts completed extraction rounds.
	Rounds int `json:"rounds,omitempty"`
}

// ParseCrawlState decodes a stored crawl state envelope. Empty input yields a
// zero state.
func ParseCrawlState(raw string) (CrawlState, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return CrawlState{}, nil
	}
	var state CrawlState
	if err := json.Unmarshal([]byte(trimmed), &state); err != nil {
		return CrawlState{}, fmt.Errorf("parse crawl state: %w", err)
	}
	return state, nil
}

// Encode serializes the state for storage on a queue item.
func (s CrawlState) Encode() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode crawl state: %w", err)
	}
	return string(data), nil
}

// HasVisited reports whether a URL was already fetched this run.
func (s CrawlState) HasVisited(url string) bool {
	return containsString(s.Visited, url)
}

// HasFailed reports whether a URL already failed this run.
func (s CrawlState) HasFailed(url string) bool {
	return containsString(s.Failed, url)
}

// MarkVisited records a fetched URL. Returns false on duplicates.
func (s *CrawlState) MarkVisited(url string) bool {
	if url == "" || s.HasVisited(url) {
		return false
	}
	s.Visited = append(s.Visited, url)
	return true
}

// MarkFailed records a URL that could not be fetched or validated.
func (s *CrawlState) MarkFailed(url string) bool {
	if url == "" || s.HasFailed(url) {
		return false
	}
	s.Failed = append(s.Failed, url)
	return true
}

// AddLinks extends the link pool with newly discovered URLs, skipping
// duplicates, and returns how many were added.
func (s *CrawlState) AddLinks(links []string) int {
	added := 0
	for _, link := range links {
		if link == "" || containsString(s.LinkPool, link) {
			continue
		}
		s.LinkPool = append(s.LinkPool, link)
		added++
	}
	return added
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
