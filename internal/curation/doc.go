// Package curation consolidates an extracted profile before export.
//
// Extraction merges findings round by round, so by the time an item reaches
// this stage its profile can carry shouting-case service names, language
// lists mixing codes and prose, and near-duplicate entries that only became
// recognizable after normalization. Consolidate rebuilds the profile through
// the same merge rules the extractor uses, with values cleaned first, then
// audits completeness. Items scoring below the configured threshold, or with
// no services discovered at all, are flagged for operator review; custom
// query runs skip the audit since the caller's question replaces the
// standard taxonomy.
package curation
