// Package scout performs the first contact with an agency site.
//
// It fetches the seed page, snapshots its visible text into the staging
// directory so the first extraction round can skip a refetch, and records the
// crawl boundary (base URL, link pool) on the queue item. Fetch failures are
// classified so a typoed seed URL routes to review while a flaky site stays
// retryable. Progress updates and error wrapping follow the same conventions
// as other stages so the workflow manager can react uniformly.
package scout
