package queue

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeSeedURL validates a raw seed URL and returns its canonical form.
// A missing scheme defaults to https; fragments are dropped.
func NormalizeSeedURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", errors.New("seed url is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("parse seed url: %w", err)
	}
	switch parsed.Scheme {
	case "http", "https":
	default:
		return "", fmt.Errorf("unsupported seed url scheme %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("seed url %q has no host", raw)
	}
	parsed.Fragment = ""
	return parsed.String(), nil
}

// HostForURL extracts the bare host for grouping and display. Ports and a
// leading www prefix are dropped.
func HostForURL(seedURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(seedURL))
	if err != nil {
		return ""
	}
	host := strings.ToLower(parsed.Hostname())
	return strings.TrimPrefix(host, "www.")
}

// InferAgencyName derives a readable agency name from the seed host when the
// user did not supply one.
func InferAgencyName(seedURL string) string {
	host := HostForURL(seedURL)
	if host == "" {
		return "Unnamed Agency"
	}
	labels := strings.Split(host, ".")
	if len(labels) > 1 {
		labels = labels[:len(labels)-1]
	}
	cleaned := strings.NewReplacer("-", " ", "_", " ", ".", " ").Replace(strings.Join(labels, " "))
	fields := strings.Fields(cleaned)
	if len(fields) == 0 {
		return "Unnamed Agency"
	}
	return cases.Title(language.Und).String(strings.Join(fields, " "))
}
