package daemonctl

import (
	"path/filepath"
	"testing"

	"canvass/internal/ipc"
	"canvass/internal/testsupport"
)

func TestDeriveLogDirPrefersLockPath(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	if got := DeriveLogDir("/var/lib/canvass/logs/canvassd.lock", "", cfg); got != "/var/lib/canvass/logs" {
		t.Fatalf("unexpected log dir from lock path: %s", got)
	}
	if got := DeriveLogDir("", "/data/logs/queue.db", cfg); got != "/data/logs" {
		t.Fatalf("unexpected log dir from db path: %s", got)
	}
	if got := DeriveLogDir("", "", cfg); got != cfg.Paths.LogDir {
		t.Fatalf("expected config log dir fallback, got %s", got)
	}
	if got := DeriveLogDir("", "", nil); got != "" {
		t.Fatalf("expected empty log dir without hints, got %s", got)
	}
}

func TestBuildDependencySummary(t *testing.T) {
	deps := []ipc.DependencyStatus{
		{Name: "Ollama", Available: true},
		{Name: "Ollama API", Available: false},
		{Name: "Extra tool", Available: false, Optional: true},
	}

	summary := BuildDependencySummary(deps)
	if summary.Total != 3 || summary.Available != 1 {
		t.Fatalf("unexpected counts: %#v", summary)
	}
	if summary.MissingRequired != 1 || summary.MissingOptional != 1 {
		t.Fatalf("unexpected missing counts: %#v", summary)
	}
	if summary.Severity != "error" {
		t.Fatalf("expected error severity, got %s", summary.Severity)
	}

	allOK := BuildDependencySummary([]ipc.DependencyStatus{{Name: "Ollama", Available: true}})
	if allOK.Severity != "ok" || allOK.Detail != "1/1 available" {
		t.Fatalf("unexpected summary: %#v", allOK)
	}

	empty := BuildDependencySummary(nil)
	if empty.Severity != "info" {
		t.Fatalf("expected info severity for empty deps, got %s", empty.Severity)
	}
}

func TestBuildWorkspaceChecks(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	cfg.Paths.ReviewDir = filepath.Join(testsupport.BaseDir(cfg), "missing-review")

	lines := BuildWorkspaceChecks(cfg)
	if len(lines) != 3 {
		t.Fatalf("expected 3 workspace lines, got %d", len(lines))
	}
	byLabel := make(map[string]string, len(lines))
	for _, line := range lines {
		byLabel[line.Label] = line.Severity
	}
	if byLabel["Staging"] != "ok" || byLabel["Reports"] != "ok" {
		t.Fatalf("expected staging/reports ok, got %#v", byLabel)
	}
	if byLabel["Review"] != "error" {
		t.Fatalf("expected review error for missing dir, got %#v", byLabel)
	}
}

func TestBuildSystemChecksDaemonDown(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Ollama.BaseURL = ""

	lines := BuildSystemChecks(cfg, false)
	if len(lines) != 3 {
		t.Fatalf("expected 3 system lines, got %d", len(lines))
	}
	if lines[0].Label != "Canvass" || lines[0].Severity != "warn" {
		t.Fatalf("unexpected daemon line: %#v", lines[0])
	}
	if lines[1].Label != "Ollama" || lines[1].Severity != "warn" {
		t.Fatalf("unexpected ollama line: %#v", lines[1])
	}
}
