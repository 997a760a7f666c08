package main

import (
	"context"
	"encoding/json"
	"testing"
)

func TestDoctorCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	if _, err := env.store.NewSeed(ctx, "https://alpha.example.org", "Alpha", ""); err != nil {
		t.Fatalf("alpha seed: %v", err)
	}

	out, _, err := runCLI(t, []string{"doctor"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	requireContains(t, out, "Database")
	requireContains(t, out, "Database path:")
	requireContains(t, out, "queue_items table present:")
	requireContains(t, out, "Queue")
	requireContains(t, out, "Total: 1")
	requireContains(t, out, "Pending: 1")
	requireContains(t, out, "Workspace")
	requireContains(t, out, "Dependencies")
}

func TestDoctorJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"doctor", "--json"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("doctor --json: %v", err)
	}

	var report map[string]any
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("invalid JSON: %v\noutput: %s", err, out)
	}
	for _, key := range []string{"daemon_running", "database", "queue", "features", "dependency_summary"} {
		if _, ok := report[key]; !ok {
			t.Fatalf("missing %q key in doctor JSON", key)
		}
	}
	if report["daemon_running"] != true {
		t.Fatalf("expected daemon_running=true, got %v", report["daemon_running"])
	}
}

func TestTestNotifyWithoutTopic(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"test-notify"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "ntfy topic not configured")
}
