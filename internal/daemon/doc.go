// Package daemon coordinates the long-running Canvass process and its
// control surfaces.
//
// It wires configuration, queue storage, and the workflow manager into a
// single lifecycle with flock-based locking to prevent multiple instances.
// The daemon exposes queue maintenance helpers, accepts new seed URLs,
// serves the local HTTP API, emits dependency health summaries, and parks
// in-flight items on shutdown so the next run resumes them.
//
// Keep orchestration logic here: individual pipeline stages live in their
// respective packages while the daemon focuses on startup, shutdown, and
// high level coordination.
package daemon
