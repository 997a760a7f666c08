package profile

import (
	"encoding/json"
	"fmt"
	"strings"

	"canvass/internal/textutil"
)

// FieldMap holds field labels and their extracted values for one block of a
// profile. Labels are canonicalized on merge where the registry recognizes
// them; unrecognized labels survive verbatim.
type FieldMap map[string]string

// Profile aggregates everything learned about one agency across crawl rounds.
// It round-trips through the queue as a JSON envelope.
type Profile struct {
	Agency     FieldMap   `json:"agency,omitempty"`
	Sites      []FieldMap `json:"sites,omitempty"`
	Services   []FieldMap `json:"services,omitempty"`
	SourceURLs []string   `json:"source_urls,omitempty"`

	// Custom holds findings from a custom-query run, where the caller's
	// question replaces the standard taxonomy.
	Custom FieldMap `json:"custom,omitempty"`
}

// Parse decodes a stored profile envelope. An empty payload yields an empty
// profile so fresh queue items need no special casing.
func Parse(raw string) (Profile, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Profile{}, nil
	}
	var p Profile
	if err := json.Unmarshal([]byte(trimmed), &p); err != nil {
		return Profile{}, fmt.Errorf("parse profile: %w", err)
	}
	return p, nil
}

// Encode serializes the profile for storage on a queue item.
func (p Profile) Encode() (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode profile: %w", err)
	}
	return string(data), nil
}

// Clone returns a deep copy so callers can mutate without aliasing stored
// state.
func (p Profile) Clone() Profile {
	cp := Profile{
		Agency: cloneFieldMap(p.Agency),
		Custom: cloneFieldMap(p.Custom),
	}
	if len(p.Sites) > 0 {
		cp.Sites = make([]FieldMap, len(p.Sites))
		for i, site := range p.Sites {
			cp.Sites[i] = cloneFieldMap(site)
		}
	}
	if len(p.Services) > 0 {
		cp.Services = make([]FieldMap, len(p.Services))
		for i, svc := range p.Services {
			cp.Services[i] = cloneFieldMap(svc)
		}
	}
	if len(p.SourceURLs) > 0 {
		cp.SourceURLs = append([]string{}, p.SourceURLs...)
	}
	return cp
}

func cloneFieldMap(m FieldMap) FieldMap {
	if m == nil {
		return nil
	}
	cp := make(FieldMap, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

// Placeholder values models emit when a field was not found on the page.
// Values are compared case-insensitively after trimming.
var placeholderValues = map[string]struct{}{
	"(missing)":       {},
	"(not mentioned)": {},
	"not specified":   {},
	"not available":   {},
	"not mentioned":   {},
	"unknown":         {},
	"n/a":             {},
	"none":            {},
}

// IsPlaceholder reports whether a value carries no information.
func IsPlaceholder(value string) bool {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return true
	}
	_, ok := placeholderValues[strings.ToLower(trimmed)]
	return ok
}

// MergeOptions controls duplicate detection when merging site and service
// entries.
type MergeOptions struct {
	// NameSimilarityThreshold treats two entry names as the same entry when
	// their token cosine similarity meets or exceeds it. Zero disables fuzzy
	// matching; exact normalized-name matches always merge.
	NameSimilarityThreshold float64
}

// MergeAgency folds newly extracted agency fields into the profile. A value
// replaces an existing one only when it is longer, so later rounds refine
// rather than erase. Returns the number of fields that changed.
func (p *Profile) MergeAgency(fields FieldMap) int {
	if p.Agency == nil && len(fields) > 0 {
		p.Agency = make(FieldMap)
	}
	return mergeFields(p.Agency, ScopeAgency, fields)
}

// MergeSite folds extracted site fields into the profile. Entries carrying a
// name merge with the entry of the same name; unnamed entries merge into the
// first site, which covers the common single-location agency.
func (p *Profile) MergeSite(fields FieldMap, opts MergeOptions) int {
	normalized := canonicalize(ScopeSite, fields)
	if len(normalized) == 0 {
		return 0
	}
	name := normalized[FieldName]
	if name == "" && len(p.Sites) > 0 {
		return mergeFields(p.entryAt(&p.Sites, 0), ScopeSite, normalized)
	}
	if idx := p.findEntry(p.Sites, name, opts); idx >= 0 {
		return mergeFields(p.entryAt(&p.Sites, idx), ScopeSite, normalized)
	}
	p.Sites = append(p.Sites, normalized)
	return len(normalized)
}

// MergeService folds extracted service fields into the profile, deduplicating
// by name with optional fuzzy matching.
func (p *Profile) MergeService(fields FieldMap, opts MergeOptions) int {
	normalized := canonicalize(ScopeService, fields)
	if len(normalized) == 0 {
		return 0
	}
	name := normalized[FieldName]
	if idx := p.findEntry(p.Services, name, opts); idx >= 0 {
		return mergeFields(p.entryAt(&p.Services, idx), ScopeService, normalized)
	}
	p.Services = append(p.Services, normalized)
	return len(normalized)
}

// MergeCustom folds findings from a custom-query run.
func (p *Profile) MergeCustom(fields FieldMap) int {
	if p.Custom == nil && len(fields) > 0 {
		p.Custom = make(FieldMap)
	}
	changed := 0
	for label, value := range fields {
		label = strings.TrimSpace(label)
		if label == "" || IsPlaceholder(value) {
			continue
		}
		value = strings.TrimSpace(value)
		if existing, ok := p.Custom[label]; ok && len(existing) >= len(value) {
			continue
		}
		p.Custom[label] = value
		changed++
	}
	return changed
}

// AddSourceURL records a page that contributed information, preserving first
// visit order. Returns false when the URL was already recorded.
func (p *Profile) AddSourceURL(url string) bool {
	url = strings.TrimSpace(url)
	if url == "" {
		return false
	}
	for _, existing := range p.SourceURLs {
		if existing == url {
			return false
		}
	}
	p.SourceURLs = append(p.SourceURLs, url)
	return true
}

// entryAt returns the entry at idx, replacing a nil map so merges can write
// into it. Stored envelopes with null entries decode to nil maps.
func (p *Profile) entryAt(entries *[]FieldMap, idx int) FieldMap {
	if (*entries)[idx] == nil {
		(*entries)[idx] = make(FieldMap)
	}
	return (*entries)[idx]
}

func (p *Profile) findEntry(entries []FieldMap, name string, opts MergeOptions) int {
	if name == "" {
		return -1
	}
	key := normalizeName(name)
	for i, entry := range entries {
		if normalizeName(entry[FieldName]) == key {
			return i
		}
	}
	if opts.NameSimilarityThreshold <= 0 {
		return -1
	}
	target := textutil.NewFingerprint(name)
	for i, entry := range entries {
		existing := entry[FieldName]
		if existing == "" {
			continue
		}
		sim := textutil.CosineSimilarity(target, textutil.NewFingerprint(existing))
		if sim >= opts.NameSimilarityThreshold {
			return i
		}
	}
	return -1
}

// canonicalize maps incoming labels to canonical form and drops placeholder
// values, returning a fresh map safe to append.
func canonicalize(scope Scope, fields FieldMap) FieldMap {
	out := make(FieldMap, len(fields))
	for label, value := range fields {
		label = strings.TrimSpace(label)
		if label == "" || IsPlaceholder(value) {
			continue
		}
		if canonical, ok := CanonicalLabel(scope, label); ok {
			label = canonical
		}
		value = strings.TrimSpace(value)
		if existing, ok := out[label]; ok && len(existing) >= len(value) {
			continue
		}
		out[label] = value
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// mergeFields applies longer-wins replacement into dst and reports how many
// fields changed.
func mergeFields(dst FieldMap, scope Scope, fields FieldMap) int {
	changed := 0
	for label, value := range fields {
		label = strings.TrimSpace(label)
		if label == "" || IsPlaceholder(value) {
			continue
		}
		if canonical, ok := CanonicalLabel(scope, label); ok {
			label = canonical
		}
		value = strings.TrimSpace(value)
		if existing, ok := dst[label]; ok && len(existing) >= len(value) {
			continue
		}
		dst[label] = value
		changed++
	}
	return changed
}

// normalizeName reduces an entry name for duplicate detection.
func normalizeName(name string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == ' ' || r == '\t':
			sb.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}
