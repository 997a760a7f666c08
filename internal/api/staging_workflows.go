package api

import (
	"context"
	"fmt"
	"strings"

	"canvass/internal/staging"
)

// ActiveHostProvider surfaces the site hosts of active queue items for cleanup workflows.
type ActiveHostProvider interface {
	ActiveSiteHosts(ctx context.Context) (map[string]struct{}, error)
}

type CleanStagingRequest struct {
	StagingDir string
	CleanAll   bool
	Hosts      ActiveHostProvider
}

type CleanStagingResult struct {
	Configured bool
	Scope      string
	Cleanup    staging.CleanStaleResult
}

// CleanStagingDirectories applies staging cleanup policy used by CLI commands.
func CleanStagingDirectories(ctx context.Context, req CleanStagingRequest) (CleanStagingResult, error) {
	stagingDir := strings.TrimSpace(req.StagingDir)
	if stagingDir == "" {
		return CleanStagingResult{Configured: false}, nil
	}

	if req.CleanAll {
		return CleanStagingResult{
			Configured: true,
			Scope:      "staging",
			Cleanup:    staging.CleanStale(ctx, stagingDir, 0, nil),
		}, nil
	}

	if req.Hosts == nil {
		return CleanStagingResult{}, fmt.Errorf("active host provider is required when clean_all is false")
	}
	hosts, err := req.Hosts.ActiveSiteHosts(ctx)
	if err != nil {
		return CleanStagingResult{}, err
	}
	return CleanStagingResult{
		Configured: true,
		Scope:      "orphaned staging",
		Cleanup:    staging.CleanOrphaned(ctx, stagingDir, hosts, nil),
	}, nil
}
