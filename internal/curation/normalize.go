package curation

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"canvass/internal/profile"
)

// Summary reports what consolidation changed, for logging and progress text.
type Summary struct {
	ServicesBefore int
	ServicesAfter  int
	SitesBefore    int
	SitesAfter     int
}

var titleCaser = cases.Title(language.Und)

// Consolidate rebuilds a profile through the merge rules with every value
// cleaned first. Re-merging after cleanup is what collapses duplicates that
// differed only in casing or whitespace during extraction.
func Consolidate(p profile.Profile, opts profile.MergeOptions) (profile.Profile, Summary) {
	summary := Summary{
		ServicesBefore: len(p.Services),
		SitesBefore:    len(p.Sites),
	}

	var out profile.Profile
	out.MergeAgency(cleanFields(p.Agency))
	if value, ok := out.Agency[profile.FieldLanguages]; ok {
		out.Agency[profile.FieldLanguages] = NormalizeLanguages(value)
	}
	for _, site := range p.Sites {
		out.MergeSite(cleanEntry(site), opts)
	}
	for _, svc := range p.Services {
		out.MergeService(cleanEntry(svc), opts)
	}
	out.MergeCustom(cleanFields(p.Custom))
	for _, url := range p.SourceURLs {
		out.AddSourceURL(url)
	}

	summary.ServicesAfter = len(out.Services)
	summary.SitesAfter = len(out.Sites)
	return out, summary
}

// cleanEntry cleans a site or service block and normalizes its name casing.
func cleanEntry(fields profile.FieldMap) profile.FieldMap {
	cleaned := cleanFields(fields)
	if name, ok := cleaned[profile.FieldName]; ok {
		cleaned[profile.FieldName] = NormalizeEntryName(name)
	}
	return cleaned
}

func cleanFields(fields profile.FieldMap) profile.FieldMap {
	if len(fields) == 0 {
		return nil
	}
	cleaned := make(profile.FieldMap, len(fields))
	for label, value := range fields {
		cleaned[label] = CollapseValue(value)
	}
	return cleaned
}

// CollapseValue tidies a single extracted value: space runs collapse within
// each line, and line breaks become "; " separators so multi-line model
// output renders on one report line.
func CollapseValue(value string) string {
	var parts []string
	for _, line := range strings.Split(value, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, "; ")
}

// NormalizeEntryName fixes shouting-case and all-lowercase entry names.
// Mixed-case names pass through untouched since the site's own casing is
// usually deliberate.
func NormalizeEntryName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return name
	}
	upper := strings.ToUpper(name)
	lower := strings.ToLower(name)
	if name != upper && name != lower {
		return name
	}
	return titleCaser.String(lower)
}

// NormalizeLanguages canonicalizes a spoken-language list. Tokens that parse
// as known language tags render under their English names, so "es" and
// "Spanish" dedupe to one entry; everything else keeps its wording with
// casing fixed.
func NormalizeLanguages(value string) string {
	if profile.IsPlaceholder(value) {
		return strings.TrimSpace(value)
	}
	seen := make(map[string]struct{})
	var out []string
	for _, token := range splitLanguageList(value) {
		name := canonicalLanguageName(token)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}
	if len(out) == 0 {
		return strings.TrimSpace(value)
	}
	return strings.Join(out, "; ")
}

// splitLanguageList breaks a language value on the separators models produce:
// commas, semicolons, slashes, ampersands, and the word "and". Multi-word
// names like "American Sign Language" stay intact.
func splitLanguageList(value string) []string {
	segments := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ';' || r == '/' || r == '&'
	})
	var out []string
	for _, segment := range segments {
		out = append(out, splitOnAnd(segment)...)
	}
	return out
}

func splitOnAnd(segment string) []string {
	words := strings.Fields(segment)
	var parts []string
	var current []string
	for _, word := range words {
		if strings.EqualFold(word, "and") {
			if len(current) > 0 {
				parts = append(parts, strings.Join(current, " "))
				current = current[:0]
			}
			continue
		}
		current = append(current, word)
	}
	if len(current) > 0 {
		parts = append(parts, strings.Join(current, " "))
	}
	return parts
}

// canonicalLanguageName maps one token to a display name. Recognized BCP 47
// tags ("es", "spa", "en-US") resolve through the language registry; prose
// names keep their wording, lowercased input gets title casing, and
// acronyms like "ASL" stay as written.
func canonicalLanguageName(token string) string {
	token = strings.Trim(strings.TrimSpace(token), ".")
	if token == "" {
		return ""
	}
	if tag, err := language.Parse(token); err == nil {
		if base, conf := tag.Base(); conf >= language.High {
			if name := display.English.Languages().Name(language.Make(base.String())); name != "" && !strings.EqualFold(name, base.String()) {
				return name
			}
		}
	}
	if token == strings.ToLower(token) {
		return titleCaser.String(token)
	}
	return token
}
