package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"canvass/internal/config"
	"canvass/internal/deps"
	"canvass/internal/services/ollama"
)

// CheckOllama verifies that the Ollama runtime is reachable and the configured
// extraction model is installed. It uses a 30-second timeout and a single
// attempt (no retries).
func CheckOllama(ctx context.Context, cfg config.Ollama) Result {
	const name = "Ollama"

	if cfg.BaseURL == "" {
		return Result{Name: name, Detail: "base URL missing"}
	}
	if cfg.Model == "" {
		return Result{Name: name, Detail: "model missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client := ollama.NewClient(cfg, ollama.WithRetryMaxAttempts(1))
	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeOllamaError(err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("Reachable (model %s installed)", cfg.Model)}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFreeSpace verifies that the filesystem holding path has at least
// minBytes available to the calling user.
func CheckFreeSpace(name, path string, minBytes uint64) Result {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	free := stat.Bavail * uint64(stat.Bsize)
	if free < minBytes {
		return Result{Name: name, Detail: fmt.Sprintf("%s free at %s (minimum %s)", formatGiB(free), path, formatGiB(minBytes))}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s free at %s", formatGiB(free), path)}
}

// CheckSystemDeps evaluates all binary dependencies for the given config.
// Both the daemon and the CLI status command use this to avoid duplicating
// the requirements list. The Ollama API check is not included here because
// it needs a live context and its own timeout.
func CheckSystemDeps(ctx context.Context, cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "Ollama",
			Command:     cfg.OllamaBinary(),
			Description: "Local model runtime used for extraction",
		},
	}
	return deps.CheckBinaries(requirements)
}

// summarizeOllamaError produces a human-readable summary for Ollama health
// check failures.
func summarizeOllamaError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (Ollama unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (Ollama unreachable)"
	}
	return err.Error()
}

func formatGiB(value uint64) string {
	const giB = 1 << 30
	return fmt.Sprintf("%.2f GiB", float64(value)/float64(giB))
}
