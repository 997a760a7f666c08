package extraction

import (
	"net/url"
	"strings"

	"canvass/internal/fetch"
	"canvass/internal/profile"
)

// CleanNextURL reduces a model-proposed URL to a usable candidate. It keeps
// only the first line, drops any trailing commentary, strips wrapping quotes
// and trailing punctuation, and collapses duplicate slashes after the scheme.
// An empty result or the word "none" means the model wants to stop.
func CleanNextURL(raw string) string {
	line := raw
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	if idx := strings.Index(line, " ("); idx >= 0 {
		line = line[:idx]
	}
	line = strings.TrimSpace(line)
	line = strings.Trim(line, "'\"`<>")
	line = strings.TrimRight(line, ".,;:!")
	line = strings.TrimSpace(line)
	if line == "" || strings.EqualFold(line, "none") {
		return ""
	}
	return collapseSlashes(line)
}

// NormalizeURL produces the canonical comparison form of a URL: lowercase,
// scheme plus host plus path, no query or fragment, no trailing slash.
func NormalizeURL(raw string) string {
	cleaned := collapseSlashes(strings.TrimSpace(raw))
	parsed, err := url.Parse(cleaned)
	if err != nil {
		return strings.ToLower(strings.TrimRight(cleaned, "/"))
	}
	normalized := parsed.Scheme + "://" + parsed.Host + parsed.Path
	return strings.ToLower(strings.TrimRight(normalized, "/"))
}

// ResolveNextURL turns a cleaned candidate into the absolute URL to fetch
// next. Rooted paths join the site base, relative paths resolve against the
// current page, and the result must stay on the seed host and avoid visited
// and failed URLs. Candidates are validated against the accumulated link pool
// (exact match, then substring tolerance on host/path) before falling back to
// any well-formed same-host URL. Returns "" when no acceptable target remains.
func ResolveNextURL(candidate string, state *profile.CrawlState) string {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" || state == nil {
		return ""
	}

	absolute := candidate
	switch {
	case strings.HasPrefix(candidate, "//"):
		absolute = "https:" + candidate
	case strings.HasPrefix(candidate, "/"):
		absolute = strings.TrimRight(state.BaseURL, "/") + candidate
	case strings.HasPrefix(candidate, "http://"), strings.HasPrefix(candidate, "https://"):
	default:
		absolute = resolveRelative(state.CurrentURL, candidate)
	}

	baseHost := hostOf(state.BaseURL)
	if baseHost == "" || hostOf(absolute) != baseHost {
		return ""
	}

	normalized := NormalizeURL(absolute)
	if seenNormalized(state.Visited, normalized) || seenNormalized(state.Failed, normalized) {
		return ""
	}

	for _, link := range state.LinkPool {
		if NormalizeURL(link) == normalized {
			return link
		}
	}

	target := hostPath(normalized)
	for _, link := range state.LinkPool {
		pool := NormalizeURL(link)
		poolPath := hostPath(pool)
		if !strings.Contains(poolPath, target) && !strings.Contains(target, poolPath) {
			continue
		}
		if seenNormalized(state.Visited, pool) || seenNormalized(state.Failed, pool) {
			continue
		}
		return link
	}

	if strings.HasPrefix(absolute, "http://") || strings.HasPrefix(absolute, "https://") {
		return absolute
	}
	return ""
}

func collapseSlashes(value string) string {
	scheme, rest, ok := strings.Cut(value, "://")
	if !ok {
		return value
	}
	for strings.Contains(rest, "//") {
		rest = strings.ReplaceAll(rest, "//", "/")
	}
	return scheme + "://" + rest
}

func resolveRelative(currentURL, candidate string) string {
	base, err := url.Parse(currentURL)
	if err != nil {
		return candidate
	}
	ref, err := url.Parse(candidate)
	if err != nil {
		return candidate
	}
	return base.ResolveReference(ref).String()
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return fetch.NormalizeHost(parsed.Hostname())
}

func hostPath(normalized string) string {
	if _, rest, ok := strings.Cut(normalized, "://"); ok {
		return rest
	}
	return normalized
}

func seenNormalized(list []string, normalized string) bool {
	for _, item := range list {
		if NormalizeURL(item) == normalized {
			return true
		}
	}
	return false
}
