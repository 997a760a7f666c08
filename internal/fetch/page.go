package fetch

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"canvass/internal/textutil"
)

// Page is the reduced form of a fetched document: everything the extraction
// loop needs and nothing the model should not see.
type Page struct {
	// URL is the final URL after redirects.
	URL string
	// BaseHost is the normalized host internal links were matched against.
	BaseHost string
	Title    string
	// Text is the visible text with elements separated by newlines, in
	// document order.
	Text string
	// Links holds absolute same-host URLs in document order, deduplicated.
	Links []string
}

// skippedElements never contribute visible text.
var skippedElements = map[string]struct{}{
	"script":   {},
	"style":    {},
	"noscript": {},
	"template": {},
}

// skippedHrefPrefixes mark links that never lead to another page.
var skippedHrefPrefixes = []string{"#", "javascript:", "mailto:", "tel:"}

func parsePage(r io.Reader, pageURL, baseHost string) (*Page, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	page := &Page{
		URL:      pageURL,
		BaseHost: resolveBaseHost(pageURL, baseHost),
	}

	var texts []string
	seen := make(map[string]struct{})

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			if _, skip := skippedElements[n.Data]; skip {
				return
			}
			if n.Data == "title" && page.Title == "" {
				page.Title = strings.TrimSpace(textContent(n))
			}
			if n.Data == "a" {
				if link, ok := internalLink(base, page.BaseHost, attrValue(n, "href")); ok {
					if _, dup := seen[link]; !dup {
						seen[link] = struct{}{}
						page.Links = append(page.Links, link)
					}
				}
			}
		case html.TextNode:
			if text := strings.TrimSpace(n.Data); text != "" {
				texts = append(texts, text)
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	page.Text = textutil.CollapseLines(strings.Join(texts, "\n"))
	return page, nil
}

// internalLink resolves an href against the page URL and reports whether it
// stays on the crawl's host.
func internalLink(base *url.URL, baseHost, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", false
	}
	lowered := strings.ToLower(href)
	for _, prefix := range skippedHrefPrefixes {
		if strings.HasPrefix(lowered, prefix) {
			return "", false
		}
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", false
	}
	if NormalizeHost(resolved.Hostname()) != baseHost {
		return "", false
	}
	resolved.Fragment = ""
	return resolved.String(), true
}

func attrValue(n *html.Node, name string) string {
	for _, attr := range n.Attr {
		if attr.Key == name {
			return attr.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(node *html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return sb.String()
}
