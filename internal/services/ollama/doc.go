// Package ollama wraps the local Ollama HTTP API used for extraction.
//
// Generate issues JSON-constrained completions with retry on transient
// failures and on empty replies, which local models produce under memory
// pressure. Tags, Pull, Delete, and Version back model provisioning; Pull
// streams progress lines so long downloads stay observable.
//
// The client never retries context cancellation and honors Retry-After on
// 429 responses.
package ollama
