package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"canvass/internal/config"
	"canvass/internal/textutil"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultMaxPageBytes = 2 << 20
	defaultMaxRedirects = 5
)

// StatusError reports a non-success HTTP response for a fetched URL.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: http %d", e.URL, e.StatusCode)
}

// ErrUnsupportedContent marks responses whose content type is not page text.
var ErrUnsupportedContent = errors.New("unsupported content type")

// Client fetches pages on behalf of the crawl stages.
type Client struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client. Redirect limits from the
// configuration still apply.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a page fetcher from the crawler configuration.
func NewClient(cfg config.Fetch, opts ...Option) *Client {
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	maxRedirects := cfg.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = defaultMaxRedirects
	}
	client := &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		userAgent: strings.TrimSpace(cfg.UserAgent),
		maxBytes:  cfg.MaxPageBytes,
	}
	if client.maxBytes <= 0 {
		client.maxBytes = defaultMaxPageBytes
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// FetchPage retrieves one page and extracts its title, text, and internal
// links. Links are restricted to baseHost; an empty baseHost falls back to
// the page's own host. Bodies larger than the configured cap are truncated,
// not rejected.
func (c *Client) FetchPage(ctx context.Context, pageURL, baseHost string) (*Page, error) {
	parsed, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil {
		return nil, fmt.Errorf("fetch: parse url %q: %w", pageURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("fetch: unsupported scheme %q", parsed.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: build request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.1")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", parsed.String(), err)
	}
	defer resp.Body.Close()

	finalURL := parsed.String()
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &StatusError{URL: finalURL, StatusCode: resp.StatusCode}
	}

	contentType := resp.Header.Get("Content-Type")
	if !supportedContentType(contentType) {
		return nil, fmt.Errorf("fetch %s: %w: %s", finalURL, ErrUnsupportedContent, contentType)
	}

	limited := io.LimitReader(resp.Body, c.maxBytes)
	reader, err := charset.NewReader(limited, contentType)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: decode charset: %w", finalURL, err)
	}

	if isPlainText(contentType) {
		body, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: read body: %w", finalURL, err)
		}
		return &Page{
			URL:      finalURL,
			Text:     textutil.CollapseLines(string(body)),
			BaseHost: resolveBaseHost(finalURL, baseHost),
		}, nil
	}

	page, err := parsePage(reader, finalURL, baseHost)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: parse page: %w", finalURL, err)
	}
	return page, nil
}

func supportedContentType(value string) bool {
	if strings.TrimSpace(value) == "" {
		// Some small-town sites omit the header; assume HTML.
		return true
	}
	mediaType, _, err := mime.ParseMediaType(value)
	if err != nil {
		return false
	}
	switch mediaType {
	case "text/html", "application/xhtml+xml", "text/plain":
		return true
	default:
		return false
	}
}

func isPlainText(value string) bool {
	mediaType, _, err := mime.ParseMediaType(value)
	if err != nil {
		return false
	}
	return mediaType == "text/plain"
}

func resolveBaseHost(pageURL, baseHost string) string {
	if host := NormalizeHost(baseHost); host != "" {
		return host
	}
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	return NormalizeHost(parsed.Hostname())
}

// NormalizeHost lowercases a host and drops the www prefix so links on
// www.example.org count as internal to example.org.
func NormalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if idx := strings.LastIndex(host, ":"); idx >= 0 && !strings.Contains(host, "]") {
		host = host[:idx]
	}
	return strings.TrimPrefix(host, "www.")
}
