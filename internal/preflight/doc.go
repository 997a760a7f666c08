// Package preflight provides readiness checks for the Ollama runtime
// and filesystem paths that Canvass depends on.
//
// These checks run in two contexts:
//   - The workflow manager calls RunFeatureChecks before processing each
//     queue item. If any check fails, the lane halts instead of burning
//     crawl rounds against a runtime that cannot answer.
//   - The CLI "canvass status" command uses individual check functions
//     (CheckOllama, CheckDirectoryAccess) to display service health.
package preflight
