package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"canvass/internal/config"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
  <title>Acme Health Services</title>
  <style>body { color: red; }</style>
  <script>console.log("ignored");</script>
</head>
<body>
  <h1>Welcome</h1>
  <p>We serve Springfield.</p>
  <a href="/contact">Contact</a>
  <a href="services.html">Services</a>
  <a href="#top">Top</a>
  <a href="mailto:info@acmehealth.org">Email us</a>
  <a href="tel:+15550102000">Call</a>
  <a href="https://www.facebook.com/acme">Facebook</a>
  <a href="/contact">Contact again</a>
</body>
</html>`

func newTestClient(cfg config.Fetch) *Client {
	if cfg.UserAgent == "" {
		cfg.UserAgent = "test-agent"
	}
	return NewClient(cfg)
}

func TestFetchPageExtractsTextAndLinks(t *testing.T) {
	var gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, samplePage)
	}))
	defer server.Close()

	client := newTestClient(config.Fetch{})
	page, err := client.FetchPage(context.Background(), server.URL+"/", "")
	if err != nil {
		t.Fatalf("FetchPage returned error: %v", err)
	}
	if gotAgent != "test-agent" {
		t.Fatalf("expected configured user agent, got %q", gotAgent)
	}
	if page.Title != "Acme Health Services" {
		t.Fatalf("unexpected title %q", page.Title)
	}
	if strings.Contains(page.Text, "console.log") || strings.Contains(page.Text, "color: red") {
		t.Fatalf("script/style text should be stripped:\n%s", page.Text)
	}
	if !strings.Contains(page.Text, "Welcome\nWe serve Springfield.") {
		t.Fatalf("text should join elements with newlines:\n%s", page.Text)
	}
	if len(page.Links) != 2 {
		t.Fatalf("expected 2 internal links, got %v", page.Links)
	}
	if page.Links[0] != server.URL+"/contact" {
		t.Fatalf("rooted link not resolved: %v", page.Links)
	}
	if page.Links[1] != server.URL+"/services.html" {
		t.Fatalf("relative link not resolved: %v", page.Links)
	}
}

func TestFetchPageFiltersByBaseHost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<a href="/page">Internal</a>`)
	}))
	defer server.Close()

	client := newTestClient(config.Fetch{})
	page, err := client.FetchPage(context.Background(), server.URL, "elsewhere.org")
	if err != nil {
		t.Fatalf("FetchPage returned error: %v", err)
	}
	if len(page.Links) != 0 {
		t.Fatalf("links off the base host should be dropped, got %v", page.Links)
	}
}

func TestFetchPageStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := newTestClient(config.Fetch{})
	_, err := client.FetchPage(context.Background(), server.URL+"/missing", "")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusNotFound {
		t.Fatalf("unexpected status %d", statusErr.StatusCode)
	}
}

func TestFetchPageRejectsUnsupportedContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		fmt.Fprint(w, "%PDF-1.4")
	}))
	defer server.Close()

	client := newTestClient(config.Fetch{})
	_, err := client.FetchPage(context.Background(), server.URL+"/brochure.pdf", "")
	if !errors.Is(err, ErrUnsupportedContent) {
		t.Fatalf("expected unsupported content error, got %v", err)
	}
}

func TestFetchPageTruncatesOversizedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body><p>")
		fmt.Fprint(w, strings.Repeat("x", 50_000))
		fmt.Fprint(w, "</p></body></html>")
	}))
	defer server.Close()

	client := newTestClient(config.Fetch{MaxPageBytes: 4096})
	page, err := client.FetchPage(context.Background(), server.URL, "")
	if err != nil {
		t.Fatalf("oversized body should truncate, not fail: %v", err)
	}
	if len(page.Text) > 5000 {
		t.Fatalf("body was not truncated: %d bytes", len(page.Text))
	}
}

func TestFetchPagePlainText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, "Food pantry hours: Tue 1-4\n")
	}))
	defer server.Close()

	client := newTestClient(config.Fetch{})
	page, err := client.FetchPage(context.Background(), server.URL+"/hours.txt", "")
	if err != nil {
		t.Fatalf("FetchPage returned error: %v", err)
	}
	if page.Text != "Food pantry hours: Tue 1-4" {
		t.Fatalf("unexpected text %q", page.Text)
	}
	if len(page.Links) != 0 {
		t.Fatalf("plain text pages have no links, got %v", page.Links)
	}
}

func TestFetchPageRedirectLimit(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()
	mux.HandleFunc("/a", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/b", http.StatusFound)
	})
	mux.HandleFunc("/b", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/c", http.StatusFound)
	})
	mux.HandleFunc("/c", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<p>done</p>")
	})

	client := newTestClient(config.Fetch{MaxRedirects: 1})
	if _, err := client.FetchPage(context.Background(), server.URL+"/a", ""); err == nil {
		t.Fatal("expected redirect limit to fail the fetch")
	}

	relaxed := newTestClient(config.Fetch{MaxRedirects: 5})
	page, err := relaxed.FetchPage(context.Background(), server.URL+"/a", "")
	if err != nil {
		t.Fatalf("redirects within the limit should succeed: %v", err)
	}
	if !strings.HasSuffix(page.URL, "/c") {
		t.Fatalf("final URL should reflect redirects, got %q", page.URL)
	}
}

func TestFetchPageRejectsBadScheme(t *testing.T) {
	client := NewClient(config.Fetch{})
	if _, err := client.FetchPage(context.Background(), "ftp://example.org/", ""); err == nil {
		t.Fatal("expected scheme error")
	}
}

func TestNormalizeHost(t *testing.T) {
	cases := map[string]string{
		"WWW.Example.org":      "example.org",
		"example.org:8080":     "example.org",
		"  example.org  ":      "example.org",
		"services.example.org": "services.example.org",
	}
	for input, want := range cases {
		if got := NormalizeHost(input); got != want {
			t.Fatalf("NormalizeHost(%q) = %q, want %q", input, got, want)
		}
	}
}
