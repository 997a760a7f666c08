package profile

import (
	"testing"
)

func TestParseEncodeRoundTrip(t *testing.T) {
	p := Profile{
		Agency: FieldMap{
			FieldAgencyName:   "Acme Health Services",
			FieldPhoneNumbers: "(555) 010-2000",
		},
		Sites: []FieldMap{{
			FieldName:          "Main Office",
			FieldStreetAddress: "12 Elm St, Springfield",
		}},
		Services: []FieldMap{{
			FieldName:        "Food Pantry",
			FieldEligibility: "County residents",
		}},
		SourceURLs: []string{"https://acmehealth.org/"},
	}
	encoded, err := p.Encode()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	decoded, err := Parse(encoded)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if decoded.Agency[FieldAgencyName] != "Acme Health Services" {
		t.Fatalf("unexpected agency block: %+v", decoded.Agency)
	}
	if len(decoded.Sites) != 1 || decoded.Sites[0][FieldStreetAddress] != "12 Elm St, Springfield" {
		t.Fatalf("unexpected sites: %+v", decoded.Sites)
	}
	if len(decoded.Services) != 1 || len(decoded.SourceURLs) != 1 {
		t.Fatalf("unexpected decoded profile: %+v", decoded)
	}
}

func TestParseEmptyPayload(t *testing.T) {
	p, err := Parse("   ")
	if err != nil {
		t.Fatalf("parse empty failed: %v", err)
	}
	if p.Agency != nil || len(p.Sites) != 0 || len(p.Services) != 0 {
		t.Fatalf("expected zero profile, got %+v", p)
	}
}

func TestParseRejectsInvalidJSON(t *testing.T) {
	if _, err := Parse("{not json"); err == nil {
		t.Fatal("expected error for invalid payload")
	}
}

func TestMergeAgencyLongerWins(t *testing.T) {
	var p Profile
	p.MergeAgency(FieldMap{FieldDescription: "A clinic."})
	changed := p.MergeAgency(FieldMap{FieldDescription: "A community clinic serving Springfield."})
	if changed != 1 {
		t.Fatalf("expected 1 changed field, got %d", changed)
	}
	if p.Agency[FieldDescription] != "A community clinic serving Springfield." {
		t.Fatalf("longer value should win: %q", p.Agency[FieldDescription])
	}
	if got := p.MergeAgency(FieldMap{FieldDescription: "Short."}); got != 0 {
		t.Fatalf("shorter value should not replace, changed=%d", got)
	}
}

func TestMergeAgencySkipsPlaceholders(t *testing.T) {
	var p Profile
	changed := p.MergeAgency(FieldMap{
		FieldLegalStatus: "(not mentioned)",
		FieldHours:       "Mon-Fri 9-5",
	})
	if changed != 1 {
		t.Fatalf("expected only the real value merged, changed=%d", changed)
	}
	if _, ok := p.Agency[FieldLegalStatus]; ok {
		t.Fatal("placeholder value should not be stored")
	}
}

func TestMergeAgencyCanonicalizesLabels(t *testing.T) {
	var p Profile
	p.MergeAgency(FieldMap{"phone number": "(555) 010-2000"})
	if p.Agency[FieldPhoneNumbers] != "(555) 010-2000" {
		t.Fatalf("alias label should canonicalize: %+v", p.Agency)
	}
}

func TestMergeAgencyKeepsUnknownLabels(t *testing.T) {
	var p Profile
	p.MergeAgency(FieldMap{"Parking Notes": "Free lot behind the building"})
	if p.Agency["Parking Notes"] != "Free lot behind the building" {
		t.Fatalf("unknown label should survive verbatim: %+v", p.Agency)
	}
}

func TestMergeServiceDedupesByName(t *testing.T) {
	var p Profile
	p.MergeService(FieldMap{FieldName: "Food Pantry", FieldEligibility: "Anyone"}, MergeOptions{})
	p.MergeService(FieldMap{FieldName: "food pantry", FieldFees: "None"}, MergeOptions{})
	if len(p.Services) != 1 {
		t.Fatalf("expected one merged service, got %d", len(p.Services))
	}
	svc := p.Services[0]
	if svc[FieldEligibility] != "Anyone" || svc[FieldFees] != "None" {
		t.Fatalf("merged service missing fields: %+v", svc)
	}
}

func TestMergeServiceFuzzyNameMatch(t *testing.T) {
	var p Profile
	opts := MergeOptions{NameSimilarityThreshold: 0.6}
	p.MergeService(FieldMap{FieldName: "Emergency Food Pantry Program"}, opts)
	p.MergeService(FieldMap{FieldName: "Emergency Food Pantry", FieldHours: "Tue 1-4"}, opts)
	if len(p.Services) != 1 {
		t.Fatalf("similar names should merge, got %d services", len(p.Services))
	}
	if p.Services[0][FieldHours] != "Tue 1-4" {
		t.Fatalf("merged fields missing: %+v", p.Services[0])
	}
}

func TestMergeServiceDistinctNamesAppend(t *testing.T) {
	var p Profile
	opts := MergeOptions{NameSimilarityThreshold: 0.6}
	p.MergeService(FieldMap{FieldName: "Food Pantry"}, opts)
	p.MergeService(FieldMap{FieldName: "Housing Counseling"}, opts)
	if len(p.Services) != 2 {
		t.Fatalf("distinct services should append, got %d", len(p.Services))
	}
}

func TestMergeSiteUnnamedFoldsIntoFirst(t *testing.T) {
	var p Profile
	p.MergeSite(FieldMap{FieldName: "Main Office"}, MergeOptions{})
	p.MergeSite(FieldMap{FieldMailingAddress: "PO Box 9, Springfield"}, MergeOptions{})
	if len(p.Sites) != 1 {
		t.Fatalf("unnamed site fields should fold into the first site, got %d", len(p.Sites))
	}
	if p.Sites[0][FieldMailingAddress] != "PO Box 9, Springfield" {
		t.Fatalf("first site missing merged field: %+v", p.Sites[0])
	}
}

func TestMergeSiteNamedEntriesStaySeparate(t *testing.T) {
	var p Profile
	p.MergeSite(FieldMap{FieldName: "Main Office"}, MergeOptions{})
	p.MergeSite(FieldMap{FieldName: "North Branch"}, MergeOptions{})
	if len(p.Sites) != 2 {
		t.Fatalf("named sites should stay separate, got %d", len(p.Sites))
	}
}

func TestMergeCustomFindings(t *testing.T) {
	var p Profile
	p.MergeCustom(FieldMap{"Holiday Hours": "Closed Dec 25"})
	p.MergeCustom(FieldMap{"Holiday Hours": "(missing)"})
	if p.Custom["Holiday Hours"] != "Closed Dec 25" {
		t.Fatalf("placeholder should not overwrite a finding: %+v", p.Custom)
	}
}

func TestAddSourceURLDedupes(t *testing.T) {
	var p Profile
	if !p.AddSourceURL("https://acmehealth.org/") {
		t.Fatal("first add should report true")
	}
	if p.AddSourceURL("https://acmehealth.org/") {
		t.Fatal("duplicate add should report false")
	}
	p.AddSourceURL("https://acmehealth.org/contact")
	if len(p.SourceURLs) != 2 {
		t.Fatalf("expected 2 source urls, got %v", p.SourceURLs)
	}
}

func TestIsPlaceholder(t *testing.T) {
	for _, value := range []string{"", "  ", "(missing)", "(Not Mentioned)", "not specified", "N/A", "None", "unknown"} {
		if !IsPlaceholder(value) {
			t.Fatalf("%q should be a placeholder", value)
		}
	}
	for _, value := range []string{"Mon-Fri 9-5", "Nonexempt", "(555) 010-2000"} {
		if IsPlaceholder(value) {
			t.Fatalf("%q should not be a placeholder", value)
		}
	}
}

func TestCanonicalLabel(t *testing.T) {
	if got, ok := CanonicalLabel(ScopeAgency, "days and hours of operation"); !ok || got != FieldHours {
		t.Fatalf("hours alias not resolved: %q %v", got, ok)
	}
	if got, ok := CanonicalLabel(ScopeAgency, "EIN"); !ok || got != FieldFEIN {
		t.Fatalf("recommended alias not resolved: %q %v", got, ok)
	}
	if _, ok := CanonicalLabel(ScopeService, "Parking Notes"); ok {
		t.Fatal("unknown label should not resolve")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	p := Profile{
		Agency:   FieldMap{FieldAgencyName: "Acme"},
		Services: []FieldMap{{FieldName: "Food Pantry"}},
	}
	cp := p.Clone()
	cp.Agency[FieldAgencyName] = "Changed"
	cp.Services[0][FieldName] = "Changed"
	if p.Agency[FieldAgencyName] != "Acme" || p.Services[0][FieldName] != "Food Pantry" {
		t.Fatalf("clone should not alias the original: %+v", p)
	}
}
