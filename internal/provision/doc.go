// Package provision converges the runtime dependencies the config declares.
//
// Setup walks the [provision] manifest: required binaries are resolved on
// PATH and required Ollama models are pulled when absent. The converged set
// is recorded in a JSON state file next to the queue database, which is what
// makes prune mode safe: only models this tool previously installed are
// candidates for removal, never models the operator pulled themselves.
// Converge is idempotent; a second run against a satisfied manifest changes
// nothing.
package provision
