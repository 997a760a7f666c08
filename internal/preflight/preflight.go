package preflight

import (
	"context"

	"canvass/internal/config"
)

// minFreeBytes is the least free space the staging filesystem may have
// before item processing halts. Page snapshots and reports are small;
// this guards against a full disk, not a tight one.
const minFreeBytes = 256 << 20

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunFeatureChecks executes all applicable preflight checks for the given
// config. The workflow manager runs these before each item so a dead Ollama
// runtime or a full disk stops the lane instead of failing items one by one.
func RunFeatureChecks(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	// Staging and report directories (always checked)
	results = append(results, CheckDirectoryAccess("Staging directory", cfg.Paths.StagingDir))
	results = append(results, CheckDirectoryAccess("Report directory", cfg.Paths.ReportDir))

	// Review directory (when configured)
	if cfg.Paths.ReviewDir != "" {
		results = append(results, CheckDirectoryAccess("Review directory", cfg.Paths.ReviewDir))
	}

	results = append(results, CheckFreeSpace("Staging free space", cfg.Paths.StagingDir, minFreeBytes))

	// Ollama runtime and extraction model
	results = append(results, CheckOllama(ctx, cfg.Ollama))

	return results
}
