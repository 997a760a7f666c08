package queue

import "testing"

func TestNormalizeSeedURLAddsScheme(t *testing.T) {
	got, err := NormalizeSeedURL("example.org/services")
	if err != nil {
		t.Fatalf("NormalizeSeedURL: %v", err)
	}
	if got != "https://example.org/services" {
		t.Fatalf("expected https scheme added, got %q", got)
	}
}

func TestNormalizeSeedURLDropsFragment(t *testing.T) {
	got, err := NormalizeSeedURL("https://example.org/page#contact")
	if err != nil {
		t.Fatalf("NormalizeSeedURL: %v", err)
	}
	if got != "https://example.org/page" {
		t.Fatalf("expected fragment dropped, got %q", got)
	}
}

func TestNormalizeSeedURLRejectsInvalid(t *testing.T) {
	cases := []string{"", "   ", "ftp://example.org", "mailto:info@example.org", "https://"}
	for _, raw := range cases {
		if _, err := NormalizeSeedURL(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestHostForURLStripsPortAndPrefix(t *testing.T) {
	if got := HostForURL("https://WWW.Example.org:8443/path"); got != "example.org" {
		t.Fatalf("expected example.org, got %q", got)
	}
	if got := HostForURL("https://services.helpnetwork.org"); got != "services.helpnetwork.org" {
		t.Fatalf("expected full host kept, got %q", got)
	}
}

func TestInferAgencyName(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://www.king-county.gov", "King County"},
		{"https://foodbank.org", "Foodbank"},
		{"https://services.helpnetwork.org", "Services Helpnetwork"},
		{"", "Unnamed Agency"},
	}
	for _, tc := range cases {
		if got := InferAgencyName(tc.url); got != tc.want {
			t.Fatalf("InferAgencyName(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}
