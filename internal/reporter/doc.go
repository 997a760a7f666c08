// Package reporter exports a compiled profile as its final artifacts.
//
// Each item produces a plain-text report and a JSON sidecar sharing one base
// name derived from the agency. Items flagged for review land in the review
// directory instead of the report directory and finish in review status so
// an operator sees them. Writes go through a temp-file rename so a crash
// mid-export never leaves a truncated report behind.
package reporter
