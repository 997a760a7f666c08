// Package profile defines the structured agency profile that the crawl
// stages build up and the report stage renders, plus the crawl state that
// travels with it on a queue item.
//
// # Key Types
//
//   - Profile: agency, site, and service field maps plus source URLs,
//     stored on the queue item as a JSON envelope.
//   - CrawlState: visited and failed URLs, the link pool, and the model's
//     running still-missing list.
//   - Completeness: mandatory-field audit used for review flags and the
//     report's missing section.
//
// # Lifecycle
//
// The scout stage seeds an empty profile and a crawl state holding the seed
// page. Each extraction round merges newly extracted fields with longer-wins
// replacement and dedupes sites and services by name. The curation stage
// normalizes values and computes completeness; the report stage renders the
// final text and JSON artifacts.
//
// # Entry Points
//
// Parse and ParseCrawlState decode stored envelopes; Encode writes them
// back. MergeAgency, MergeSite, MergeService, and MergeCustom fold new
// extractions into the profile. RenderText and RenderCustomText produce the
// report body.
package profile
