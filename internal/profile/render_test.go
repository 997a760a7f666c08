package profile

import (
	"strings"
	"testing"
)

func sampleProfile() Profile {
	return Profile{
		Agency: FieldMap{
			FieldAgencyName:   "Acme Health Services",
			FieldDescription:  "Community clinic and food programs.",
			FieldPhoneNumbers: "(555) 010-2000",
			FieldLanguages:    "English; Spanish",
			"Parking Notes":   "Free lot behind the building",
		},
		Sites: []FieldMap{{
			FieldName:          "Main Office",
			FieldStreetAddress: "12 Elm St, Springfield",
		}},
		Services: []FieldMap{{
			FieldName:        "Food Pantry",
			FieldEligibility: "County residents",
		}},
		SourceURLs: []string{
			"https://acmehealth.org/",
			"https://acmehealth.org/contact",
		},
	}
}

func TestRenderTextSections(t *testing.T) {
	text := sampleProfile().RenderText()
	for _, header := range []string{
		"=== AGENCY INFORMATION ===",
		"=== SITES ===",
		"=== SERVICES ===",
		"=== MISSING INFORMATION ===",
		"=== SOURCE URLS ===",
	} {
		if !strings.Contains(text, header) {
			t.Fatalf("report missing header %q:\n%s", header, text)
		}
	}
	if !strings.Contains(text, "Agency Name: Acme Health Services") {
		t.Fatalf("agency block missing:\n%s", text)
	}
	if !strings.Contains(text, "Site 1:\n  Name: Main Office") {
		t.Fatalf("site block missing:\n%s", text)
	}
	if !strings.Contains(text, "Service 1:\n  Name: Food Pantry") {
		t.Fatalf("service block missing:\n%s", text)
	}
	if !strings.Contains(text, "- Agency: Legal Status") {
		t.Fatalf("missing section should list absent mandatory fields:\n%s", text)
	}
	if !strings.Contains(text, "- https://acmehealth.org/contact") {
		t.Fatalf("source urls missing:\n%s", text)
	}
}

func TestRenderTextOrdersAgencyFields(t *testing.T) {
	text := sampleProfile().RenderText()
	name := strings.Index(text, "Agency Name:")
	phones := strings.Index(text, "Phone Numbers:")
	desc := strings.Index(text, "Description:")
	langs := strings.Index(text, "Languages Consistently Available:")
	extra := strings.Index(text, "Parking Notes:")
	if name < 0 || phones < 0 || desc < 0 || langs < 0 || extra < 0 {
		t.Fatalf("expected fields not rendered:\n%s", text)
	}
	if !(name < phones && phones < desc && desc < langs && langs < extra) {
		t.Fatalf("agency fields out of order:\n%s", text)
	}
}

func TestRenderTextEmptyProfile(t *testing.T) {
	text := Profile{}.RenderText()
	if !strings.Contains(text, "None identified.") {
		t.Fatalf("empty sections should say so:\n%s", text)
	}
	if !strings.Contains(text, "None recorded.") {
		t.Fatalf("empty source list should say so:\n%s", text)
	}
	if !strings.Contains(text, "- Agency: Agency Name") {
		t.Fatalf("empty profile should list all agency gaps:\n%s", text)
	}
}

func TestRenderCustomText(t *testing.T) {
	p := Profile{
		Custom:     FieldMap{"Holiday Hours": "Closed Dec 25"},
		SourceURLs: []string{"https://acmehealth.org/hours"},
	}
	text := p.RenderCustomText("What are the holiday hours?")
	if !strings.Contains(text, "=== CUSTOM QUERY ===") || !strings.Contains(text, "What are the holiday hours?") {
		t.Fatalf("query section missing:\n%s", text)
	}
	if !strings.Contains(text, "Holiday Hours: Closed Dec 25") {
		t.Fatalf("findings missing:\n%s", text)
	}
	if !strings.Contains(text, "- https://acmehealth.org/hours") {
		t.Fatalf("source urls missing:\n%s", text)
	}
}

func TestCompletenessCountsBlocks(t *testing.T) {
	c := sampleProfile().Completeness()
	// 9 agency + 5 site + 11 service mandatory fields.
	if c.Total != 25 {
		t.Fatalf("expected 25 mandatory fields, got %d", c.Total)
	}
	// 3 agency (recommended and unknown labels do not count), 2 site, 2 service.
	if c.Filled != 7 {
		t.Fatalf("expected 7 filled fields, got %d", c.Filled)
	}
	if c.Score <= 0 || c.Score >= 100 {
		t.Fatalf("score out of range: %v", c.Score)
	}
	found := false
	for _, gap := range c.Missing {
		if gap == "Service 1 (Food Pantry): Taxonomy Terms (Services/Targets)" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected named service gap, got %v", c.Missing)
	}
}

func TestCompletenessEmptyProfile(t *testing.T) {
	c := Profile{}.Completeness()
	if c.Total != 9 || c.Filled != 0 || c.Score != 0 {
		t.Fatalf("empty profile should audit the agency block only: %+v", c)
	}
}

func TestReportBaseName(t *testing.T) {
	if got := ReportBaseName("Acme Health Services", "acmehealth.org", 12); got != "acme_health_services-12" {
		t.Fatalf("unexpected base name %q", got)
	}
	if got := ReportBaseName("", "acmehealth.org", 7); got != "acmehealth_org-7" {
		t.Fatalf("host fallback failed: %q", got)
	}
	if got := ReportBaseName("", "", 3); got != "agency-3" {
		t.Fatalf("generic fallback failed: %q", got)
	}
}
