package config_test

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"canvass/internal/config"
)

func TestLoadDefaultConfigExpandsPathsAndAppliesDefaults(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("OLLAMA_HOST", "")
	t.Setenv("CANVASS_OLLAMA_URL", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantStaging := filepath.Join(tempHome, ".local", "share", "canvass", "staging")
	if cfg.Paths.StagingDir != wantStaging {
		t.Fatalf("unexpected staging dir: got %q want %q", cfg.Paths.StagingDir, wantStaging)
	}
	if cfg.Paths.ReportDir != filepath.Join(tempHome, "canvass", "reports") {
		t.Fatalf("unexpected report dir: %q", cfg.Paths.ReportDir)
	}
	if cfg.Paths.APIBind != "127.0.0.1:7810" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.Ollama.BaseURL != "http://localhost:11434" {
		t.Fatalf("unexpected ollama base url: %q", cfg.Ollama.BaseURL)
	}
	if cfg.Ollama.Model != "gemma2" {
		t.Fatalf("unexpected ollama model: %q", cfg.Ollama.Model)
	}
	if cfg.Extraction.MaxPages != 5 {
		t.Fatalf("unexpected extraction max pages: %d", cfg.Extraction.MaxPages)
	}
	if !strings.Contains(cfg.Fetch.UserAgent, "Mozilla/5.0") {
		t.Fatalf("unexpected fetch user agent: %q", cfg.Fetch.UserAgent)
	}
	if cfg.Notifications.NtfyTopic != "" {
		t.Fatalf("expected notifications disabled by default, got topic %q", cfg.Notifications.NtfyTopic)
	}
	if cfg.Workflow.HeartbeatInterval != config.Default().Workflow.HeartbeatInterval {
		t.Fatalf("unexpected heartbeat interval: %d", cfg.Workflow.HeartbeatInterval)
	}
	if cfg.Workflow.HeartbeatTimeout != config.Default().Workflow.HeartbeatTimeout {
		t.Fatalf("unexpected heartbeat timeout: %d", cfg.Workflow.HeartbeatTimeout)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	for _, dir := range []string{cfg.Paths.StagingDir, cfg.Paths.ReportDir, cfg.Paths.LogDir, cfg.Paths.ReviewDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "canvass.toml")

	type payload struct {
		Ollama struct {
			BaseURL string `toml:"base_url"`
			Model   string `toml:"model"`
		} `toml:"ollama"`
		Extraction struct {
			MaxPages int `toml:"max_pages"`
		} `toml:"extraction"`
		Workflow struct {
			HeartbeatInterval int `toml:"heartbeat_interval"`
			HeartbeatTimeout  int `toml:"heartbeat_timeout"`
		} `toml:"workflow"`
	}
	custom := payload{}
	custom.Ollama.BaseURL = "http://ollama.lan:11434/"
	custom.Ollama.Model = "llama3.1"
	custom.Extraction.MaxPages = 9
	custom.Workflow.HeartbeatInterval = 20
	custom.Workflow.HeartbeatTimeout = 200
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Ollama.BaseURL != "http://ollama.lan:11434" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Ollama.BaseURL)
	}
	if cfg.Ollama.Model != "llama3.1" {
		t.Fatalf("expected model override, got %q", cfg.Ollama.Model)
	}
	if cfg.Extraction.MaxPages != 9 {
		t.Fatalf("expected max pages 9, got %d", cfg.Extraction.MaxPages)
	}
	if cfg.Workflow.HeartbeatInterval != 20 {
		t.Fatalf("expected heartbeat interval 20, got %d", cfg.Workflow.HeartbeatInterval)
	}
	if cfg.Workflow.HeartbeatTimeout != 200 {
		t.Fatalf("expected heartbeat timeout 200, got %d", cfg.Workflow.HeartbeatTimeout)
	}
}

func TestEnvFallbacks(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "canvass.toml")
	if err := os.WriteFile(configPath, []byte(""), 0o644); err != nil {
		t.Fatalf("write empty config: %v", err)
	}

	t.Setenv("OLLAMA_HOST", "ollama.lan:11434")
	t.Setenv("CANVASS_NTFY_TOPIC", "canvass-alerts")
	t.Setenv("CANVASS_API_TOKEN", "secret-token")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Ollama.BaseURL != "http://ollama.lan:11434" {
		t.Errorf("expected OLLAMA_HOST with scheme added, got %q", cfg.Ollama.BaseURL)
	}
	if cfg.Notifications.NtfyTopic != "canvass-alerts" {
		t.Errorf("expected ntfy topic from env, got %q", cfg.Notifications.NtfyTopic)
	}
	if cfg.Paths.APIToken != "secret-token" {
		t.Errorf("expected api token from env, got %q", cfg.Paths.APIToken)
	}
}

func TestCanvassOllamaURLTakesPrecedence(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "canvass.toml")
	if err := os.WriteFile(configPath, []byte(""), 0o644); err != nil {
		t.Fatalf("write empty config: %v", err)
	}

	t.Setenv("CANVASS_OLLAMA_URL", "https://models.internal:8443")
	t.Setenv("OLLAMA_HOST", "ignored.lan:11434")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Ollama.BaseURL != "https://models.internal:8443" {
		t.Fatalf("expected CANVASS_OLLAMA_URL to win, got %q", cfg.Ollama.BaseURL)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "[ollama]") {
		t.Fatalf("sample config missing ollama section: %s", contents)
	}

	// Validate it decodes
	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}

	// On Windows join uses backslashes; skip path expectation specifics when running there to avoid
	// differences in drive letters during CI.
	if runtime.GOOS != "windows" {
		if !strings.Contains(string(contents), "canvass") {
			t.Fatalf("expected sample to reference canvass directories")
		}
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Ollama.Model = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing model")
	}

	cfg = config.Default()
	cfg.Workflow.HeartbeatInterval = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for heartbeat interval")
	}

	cfg = config.Default()
	cfg.Workflow.HeartbeatTimeout = cfg.Workflow.HeartbeatInterval
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when timeout <= interval")
	}

	cfg = config.Default()
	cfg.Curation.MinCompleteness = 140
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for completeness above 100")
	}

	cfg = config.Default()
	cfg.Curation.NameSimilarityThreshold = 1.5
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for similarity above 1")
	}

	cfg = config.Default()
	cfg.Ollama.BaseURL = "not a url"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid ollama url")
	}
}

func TestProvisionModelsFallsBackToOllamaModel(t *testing.T) {
	cfg := config.Default()
	models := cfg.ProvisionModels()
	if len(models) != 1 || models[0] != "gemma2" {
		t.Fatalf("expected fallback to ollama model, got %v", models)
	}

	cfg.Provision.Models = []string{"llama3.1", "gemma2"}
	models = cfg.ProvisionModels()
	if len(models) != 2 || models[0] != "llama3.1" {
		t.Fatalf("expected explicit models, got %v", models)
	}
}
