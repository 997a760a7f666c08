package curation

import (
	"testing"

	"canvass/internal/profile"
)

func TestCollapseValue(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"spaces collapse", "Mon  9am -  5pm", "Mon 9am - 5pm"},
		{"newlines become separators", "Mon 9-5\nTue 9-5", "Mon 9-5; Tue 9-5"},
		{"blank lines drop", "Food boxes\n\n  \nDelivery", "Food boxes; Delivery"},
		{"already clean", "555-0100", "555-0100"},
		{"empty", "   ", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CollapseValue(tc.input); got != tc.want {
				t.Fatalf("CollapseValue(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestNormalizeEntryName(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"FOOD PANTRY", "Food Pantry"},
		{"food pantry", "Food Pantry"},
		{"Meals on Wheels", "Meals on Wheels"},
		{"ESL Classes", "ESL Classes"},
		{"  Emergency Shelter  ", "Emergency Shelter"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeEntryName(tc.input); got != tc.want {
			t.Errorf("NormalizeEntryName(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestNormalizeLanguages(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"tags resolve to names", "en, es", "English; Spanish"},
		{"prose names keep wording", "English and Spanish", "English; Spanish"},
		{"mixed tag and name dedupe", "es, Spanish", "Spanish"},
		{"lowercase prose gets cased", "english, vietnamese", "English; Vietnamese"},
		{"acronyms survive", "English, ASL", "English; ASL"},
		{"slash separated", "English/Spanish", "English; Spanish"},
		{"single value", "Spanish", "Spanish"},
		{"placeholder untouched", "not specified", "not specified"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeLanguages(tc.input); got != tc.want {
				t.Fatalf("NormalizeLanguages(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestConsolidateMergesCaseVariantServices(t *testing.T) {
	p := profile.Profile{
		Services: []profile.FieldMap{
			{profile.FieldName: "FOOD PANTRY", profile.FieldDescription: "Weekly food boxes"},
			{profile.FieldName: "Food Pantry", profile.FieldHours: "Mon-Fri 9-5"},
		},
	}

	out, summary := Consolidate(p, profile.MergeOptions{})
	if summary.ServicesBefore != 2 || summary.ServicesAfter != 1 {
		t.Fatalf("expected 2 services to merge into 1, got %+v", summary)
	}
	svc := out.Services[0]
	if svc[profile.FieldName] != "Food Pantry" {
		t.Fatalf("unexpected merged name %q", svc[profile.FieldName])
	}
	if svc[profile.FieldDescription] != "Weekly food boxes" || svc[profile.FieldHours] != "Mon-Fri 9-5" {
		t.Fatalf("fields from both variants should survive: %#v", svc)
	}
}

func TestConsolidateNormalizesAgencyLanguages(t *testing.T) {
	p := profile.Profile{
		Agency: profile.FieldMap{
			profile.FieldAgencyName: "Helping Hands",
			profile.FieldLanguages:  "en, es",
		},
		SourceURLs: []string{"https://agency.org/"},
	}

	out, _ := Consolidate(p, profile.MergeOptions{})
	if got := out.Agency[profile.FieldLanguages]; got != "English; Spanish" {
		t.Fatalf("languages not normalized: %q", got)
	}
	if len(out.SourceURLs) != 1 {
		t.Fatalf("source urls should carry over: %#v", out.SourceURLs)
	}
}

func TestConsolidateDropsPlaceholderOnlyEntries(t *testing.T) {
	p := profile.Profile{
		Sites: []profile.FieldMap{
			{profile.FieldName: "(missing)", profile.FieldPhoneNumbers: "not specified"},
			{profile.FieldName: "Main Office", profile.FieldStreetAddress: "1 Main St"},
		},
	}

	out, summary := Consolidate(p, profile.MergeOptions{})
	if summary.SitesAfter != 1 {
		t.Fatalf("placeholder-only site should drop, got %+v", summary)
	}
	if out.Sites[0][profile.FieldName] != "Main Office" {
		t.Fatalf("unexpected surviving site: %#v", out.Sites[0])
	}
}
