// Package extraction drives the model-guided crawl that fills an agency
// profile from the agency's website.
//
// # Key Types
//
//   - Engine: the crawl loop. Each round prompts the model with the current
//     page text, the profile so far, and the candidate link pool; the model
//     answers with new field values, what it still considers missing, and one
//     next URL (or "none").
//   - Decision: the JSON envelope the model returns per round.
//   - Extractor: the queue stage adapter that loads crawl state and profile
//     from the item, runs the engine, and persists the result.
//
// # Lifecycle
//
// The scout stage seeds the crawl state (base URL, seed page snapshot, link
// pool). The extractor resumes from whatever state is stored, so a failed or
// stopped item continues where it left off instead of recrawling. Rounds are
// budgeted by extraction.max_pages; visited and failed URLs are never fetched
// twice.
//
// # Entry Points
//
// NewExtractor wires the production fetcher and Ollama client. Tests inject
// fakes through NewExtractorWithDependencies or drive Engine.Run directly.
package extraction
