package main

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"canvass/internal/queue"
)

func TestAddCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"add", "harborlight.example.org", "--name", "Harbor Light"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	requireContains(t, out, "Queued Harbor Light as item #")

	items, err := env.store.List(context.Background(), queue.StatusPending)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 pending item, got %d", len(items))
	}
	if items[0].SeedURL != "https://harborlight.example.org" {
		t.Fatalf("expected normalized seed URL, got %q", items[0].SeedURL)
	}
	if items[0].AgencyName != "Harbor Light" {
		t.Fatalf("expected agency name, got %q", items[0].AgencyName)
	}
}

func TestAddCommandJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"add", "https://alpha.example.org", "--json"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("add --json: %v", err)
	}

	var item map[string]any
	if err := json.Unmarshal([]byte(out), &item); err != nil {
		t.Fatalf("invalid JSON: %v\noutput: %s", err, out)
	}
	if item["seedUrl"] != "https://alpha.example.org" {
		t.Fatalf("expected seedUrl, got %v", item["seedUrl"])
	}
	if item["status"] != "pending" {
		t.Fatalf("expected pending status, got %v", item["status"])
	}
	if _, ok := item["agencyName"]; !ok {
		t.Fatal("missing 'agencyName' key in JSON item")
	}
}

func TestAddCommandRejectsUnsupportedScheme(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"add", "ftp://alpha.example.org"}, env.socketPath, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "unsupported seed url scheme") {
		t.Fatalf("expected scheme error, got %v", err)
	}
}
