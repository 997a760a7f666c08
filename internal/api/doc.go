// Package api defines wire-format types and converters for the IPC and HTTP
// API layer. It translates internal queue models into transport-friendly DTOs
// that CLI renderers and other consumers can use without coupling to internal
// types.
//
// # Key Types
//
// QueueItem: transport representation of a queue entry with progress, review
// flags, and a derived profile summary.
//
// WorkflowStatus: daemon running state, queue stats, stage health, and last item.
//
// DaemonStatus: aggregated runtime information including dependencies.
//
// # Converters
//
// FromQueueItem: queue.Item -> QueueItem with progress stage defaults and
// profile summary derivation from the stored profile document.
//
// FromStatusSummary: workflow.StatusSummary -> WorkflowStatus.
//
// StageHealthSlice: deterministic ordering of stage health map.
//
// # Design Notes
//
// DTOs use camelCase JSON tags for JavaScript/TypeScript consumers. Internal
// enums (queue.Status, queue.Lane) are exposed as lowercase strings. Timestamps
// use RFC3339 with milliseconds. Profile documents are passed through as
// json.RawMessage to avoid double-encoding.
//
// Profile summaries are derived from the stored profile document rather than
// persisted separately, so the API always reflects the current compiled state.
package api
