package extraction

import (
	"fmt"
	"sort"
	"strings"

	"canvass/internal/config"
	"canvass/internal/fetch"
	"canvass/internal/profile"
)

const promptValueLimit = 160

const extractionSystemPrompt = `You are a data extraction agent compiling a structured profile of a human-services agency from its website. Extract information according to these priority levels.

MANDATORY INFORMATION
Agency level: Agency Name; AKA Names; Legal Status; Phone Numbers; Website URLs; Email Addresses; Name/Title of Director/Manager; Description; Days/Hours of Operation.
Site level: Name; AKA Names; Street/Physical Address; Mailing Address; Phone Numbers.
Service/program level: Name; AKA Names; Phone Numbers; Description; Days/Hours of Operation; Eligibility; Geographic Area Served; Documents Required; Application/Intake Process; Fees/Payment Options; Taxonomy Terms (Services/Targets).

RECOMMENDED INFORMATION (when available)
Federal Employer Identification Number; Licenses or Accreditation; Physical/Programmatic Access for People with Disabilities; Languages Consistently Available; Social Media Presence.

RULES
1. Only extract information that appears on the current page. Never invent values; omit fields the page does not mention.
2. List each distinct service separately. Keep searching until every service is covered; pages named "Programs", "Services", or "What We Do" are likely sources.
3. For next_url give exactly one URL likely to hold missing information, preferring site-relative paths such as /about-us. Never modify domain names. Never repeat a visited or failed URL.
4. Answer next_url with "none" only when every mandatory field is covered or no unvisited relevant link remains.

Respond with a single JSON object and no prose:
{
  "new_info": {
    "agency": {"<field name>": "<value>"},
    "sites": [{"<field name>": "<value>"}],
    "services": [{"<field name>": "<value>"}]
  },
  "still_missing": ["<section>: <field name>"],
  "next_url": "<one URL or none>"
}
All values must be plain strings and use the exact field names listed above.`

const customSystemPrompt = `You are a data extraction agent. Extract the information the user's query asks for from the current page, following internal links when they lead to more relevant material.

RULES
1. Only extract information that appears on the current page. Never invent values.
2. For next_url give exactly one URL likely to hold further relevant information, preferring site-relative paths. Never modify domain names. Never repeat a visited or failed URL.
3. Answer next_url with "none" when the query is answered or no unvisited relevant link remains.

Respond with a single JSON object and no prose:
{
  "new_info": {"custom": {"<label>": "<value>"}},
  "next_url": "<one URL or none>"
}
All values must be plain strings.`

func systemPrompt(query string) string {
	if strings.TrimSpace(query) != "" {
		return customSystemPrompt
	}
	return extractionSystemPrompt
}

// buildUserPrompt assembles the per-round prompt: where the crawl is, what is
// known, what is missing, which links remain, and the page text itself.
func buildUserPrompt(query string, prof profile.Profile, state *profile.CrawlState, page *fetch.Page, cfg config.Extraction) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Current page: %s\n", page.URL)
	if title := strings.TrimSpace(page.Title); title != "" {
		fmt.Fprintf(&b, "Page title: %s\n", title)
	}
	b.WriteString("\n")

	if query != "" {
		b.WriteString("QUERY:\n")
		b.WriteString(query)
		b.WriteString("\n\nFOUND SO FAR:\n")
		writeFieldSummary(&b, "", prof.Custom)
		if len(prof.Custom) == 0 {
			b.WriteString("Nothing yet.\n")
		}
	} else {
		b.WriteString("FOUND SO FAR:\n")
		b.WriteString(summarizeProfile(prof))
		b.WriteString("\nSTILL MISSING:\n")
		writeList(&b, missingLines(prof, state.Missing))
	}

	b.WriteString("\nVISITED URLS:\n")
	writeList(&b, state.Visited)
	if len(state.Failed) > 0 {
		b.WriteString("\nFAILED URLS (do not suggest these again):\n")
		writeList(&b, state.Failed)
	}

	b.WriteString("\nCANDIDATE LINKS:\n")
	if links := candidateLinks(state, cfg.MaxLinks); len(links) > 0 {
		writeList(&b, links)
	} else {
		b.WriteString("(none left)\n")
	}

	b.WriteString("\nPAGE CONTENT:\n")
	b.WriteString(clipContent(page.Text, cfg.MaxContentChars))
	b.WriteString("\n")
	return b.String()
}

func summarizeProfile(prof profile.Profile) string {
	var b strings.Builder
	writeFieldSummary(&b, "Agency", prof.Agency)
	for i, site := range prof.Sites {
		writeFieldSummary(&b, fmt.Sprintf("Site %d", i+1), site)
	}
	for i, service := range prof.Services {
		writeFieldSummary(&b, fmt.Sprintf("Service %d", i+1), service)
	}
	if b.Len() == 0 {
		return "Nothing yet.\n"
	}
	return b.String()
}

func writeFieldSummary(b *strings.Builder, label string, fields profile.FieldMap) {
	if len(fields) == 0 {
		return
	}
	if label != "" {
		b.WriteString(label)
		b.WriteString(":\n")
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(b, "  %s: %s\n", key, truncateValue(fields[key], promptValueLimit))
	}
}

// missingLines augments the registry-derived gap list with nudges when no
// sites or services have been discovered at all, since absent blocks produce
// no per-field entries.
func missingLines(prof profile.Profile, missing []string) []string {
	lines := make([]string, 0, len(missing)+2)
	lines = append(lines, missing...)
	if len(prof.Sites) == 0 {
		lines = append(lines, "Sites: none discovered yet")
	}
	if len(prof.Services) == 0 {
		lines = append(lines, "Services: none discovered yet")
	}
	return lines
}

// candidateLinks returns pool links not yet visited or failed, capped at
// maxLinks when positive.
func candidateLinks(state *profile.CrawlState, maxLinks int) []string {
	seen := make(map[string]struct{}, len(state.Visited)+len(state.Failed))
	for _, visited := range state.Visited {
		seen[NormalizeURL(visited)] = struct{}{}
	}
	for _, failed := range state.Failed {
		seen[NormalizeURL(failed)] = struct{}{}
	}
	links := make([]string, 0, len(state.LinkPool))
	for _, link := range state.LinkPool {
		if _, ok := seen[NormalizeURL(link)]; ok {
			continue
		}
		links = append(links, link)
		if maxLinks > 0 && len(links) == maxLinks {
			break
		}
	}
	return links
}

func writeList(b *strings.Builder, items []string) {
	for _, item := range items {
		b.WriteString("- ")
		b.WriteString(item)
		b.WriteString("\n")
	}
}

func truncateValue(value string, limit int) string {
	value = strings.Join(strings.Fields(value), " ")
	runes := []rune(value)
	if limit <= 0 || len(runes) <= limit {
		return value
	}
	return string(runes[:limit]) + "..."
}

// clipContent caps page text at limit runes, breaking on a line boundary when
// one falls in the second half of the budget.
func clipContent(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	clipped := string(runes[:limit])
	if idx := strings.LastIndexByte(clipped, '\n'); idx > len(clipped)/2 {
		clipped = clipped[:idx]
	}
	return clipped + "\n[content truncated]"
}
