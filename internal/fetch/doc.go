// Package fetch retrieves pages from an agency website and reduces them to
// the plain text and internal links the extraction loop works with.
//
// The client sends a stable browser user agent, follows a bounded number of
// redirects, and truncates oversized bodies rather than failing on them.
// Non-HTML content types and non-success statuses surface as typed errors so
// the crawl can mark a URL failed and move on.
package fetch
