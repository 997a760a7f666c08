package profile

import (
	"fmt"
	"sort"
	"strings"

	"canvass/internal/textutil"
)

// Section headers of the plain-text report.
const (
	headerAgency   = "=== AGENCY INFORMATION ==="
	headerSites    = "=== SITES ==="
	headerServices = "=== SERVICES ==="
	headerMissing  = "=== MISSING INFORMATION ==="
	headerSources  = "=== SOURCE URLS ==="

	headerQuery    = "=== CUSTOM QUERY ==="
	headerFindings = "=== FINDINGS ==="
)

// RenderText produces the plain-text report for a compiled profile. Every
// section header appears even when empty so reports keep a stable shape.
func (p Profile) RenderText() string {
	var sb strings.Builder

	sb.WriteString(headerAgency + "\n\n")
	writeBlock(&sb, "", p.Agency, ScopeAgency, true)

	sb.WriteString("\n" + headerSites + "\n\n")
	if len(p.Sites) == 0 {
		sb.WriteString("None identified.\n")
	}
	for i, site := range p.Sites {
		fmt.Fprintf(&sb, "Site %d:\n", i+1)
		writeBlock(&sb, "  ", site, ScopeSite, false)
		sb.WriteString("\n")
	}

	sb.WriteString("\n" + headerServices + "\n\n")
	if len(p.Services) == 0 {
		sb.WriteString("None identified.\n")
	}
	for i, svc := range p.Services {
		fmt.Fprintf(&sb, "Service %d:\n", i+1)
		writeBlock(&sb, "  ", svc, ScopeService, false)
		sb.WriteString("\n")
	}

	sb.WriteString("\n" + headerMissing + "\n\n")
	completeness := p.Completeness()
	if len(completeness.Missing) == 0 {
		sb.WriteString("All mandatory information found.\n")
	}
	for _, gap := range completeness.Missing {
		sb.WriteString("- " + gap + "\n")
	}

	writeSources(&sb, p.SourceURLs)
	return sb.String()
}

// RenderCustomText produces the report for a custom-query run, where findings
// replace the taxonomy sections.
func (p Profile) RenderCustomText(query string) string {
	var sb strings.Builder

	sb.WriteString(headerQuery + "\n\n")
	sb.WriteString(strings.TrimSpace(query) + "\n")

	sb.WriteString("\n" + headerFindings + "\n\n")
	if len(p.Custom) == 0 {
		sb.WriteString("Nothing found for this query.\n")
	}
	for _, label := range sortedKeys(p.Custom) {
		fmt.Fprintf(&sb, "%s: %s\n", label, p.Custom[label])
	}

	writeSources(&sb, p.SourceURLs)
	return sb.String()
}

func writeSources(sb *strings.Builder, urls []string) {
	sb.WriteString("\n" + headerSources + "\n\n")
	if len(urls) == 0 {
		sb.WriteString("None recorded.\n")
		return
	}
	for _, url := range urls {
		sb.WriteString("- " + url + "\n")
	}
}

// writeBlock renders one field map: mandatory labels in canonical order, then
// recommended labels when the scope carries them, then any extra labels
// sorted. Absent fields are skipped; the missing section covers them.
func writeBlock(sb *strings.Builder, indent string, fields FieldMap, scope Scope, recommended bool) {
	ordered := MandatoryFields(scope)
	if recommended {
		ordered = append(ordered, RecommendedFields()...)
	}
	seen := make(map[string]struct{}, len(ordered))
	for _, label := range ordered {
		seen[label] = struct{}{}
		if value, ok := fields[label]; ok && !IsPlaceholder(value) {
			fmt.Fprintf(sb, "%s%s: %s\n", indent, label, value)
		}
	}
	var extras []string
	for label, value := range fields {
		if _, ok := seen[label]; ok || IsPlaceholder(value) {
			continue
		}
		extras = append(extras, label)
	}
	sort.Strings(extras)
	for _, label := range extras {
		fmt.Fprintf(sb, "%s%s: %s\n", indent, label, fields[label])
	}
}

func sortedKeys(m FieldMap) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ReportBaseName derives a filesystem-safe base name for a report pair. The
// agency name wins when present, then the site host, then a generic fallback;
// the queue item ID keeps names unique across agencies with similar names.
func ReportBaseName(agencyName, host string, itemID int64) string {
	base := strings.TrimSpace(agencyName)
	if base == "" {
		base = strings.TrimSpace(host)
	}
	if base == "" {
		base = "agency"
	}
	return fmt.Sprintf("%s-%d", textutil.SanitizeToken(base), itemID)
}
