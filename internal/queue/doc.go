// Package queue persists workflow items in SQLite and exposes helpers for
// driving their lifecycle.
//
// The Store manages database connections, schema migrations, stats queries,
// heartbeat tracking, stuck-item recovery, and status transitions that mirror
// the public workflow enum. Queue items capture progress, crawl state,
// compiled profiles, and review flags so stages can coordinate without
// additional state.
//
// The database is treated as transient storage for in-flight jobs rather than
// a long-term archive; finished reports live in the report directory. Schema
// changes ship as ordered files under migrations/.
//
// Treat this package as the single source of truth for queue semantics; when
// you add new statuses or columns, add a migration and update itemColumns.
package queue
