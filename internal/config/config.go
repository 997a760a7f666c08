package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	StagingDir string `toml:"staging_dir"`
	ReportDir  string `toml:"report_dir"`
	LogDir     string `toml:"log_dir"`
	ReviewDir  string `toml:"review_dir"`
	APIBind    string `toml:"api_bind"`
	APIToken   string `toml:"api_token"`
}

// Ollama contains connection settings for the local Ollama runtime.
type Ollama struct {
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Fetch contains configuration for the site crawler's HTTP client.
type Fetch struct {
	UserAgent      string `toml:"user_agent"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxPageBytes   int64  `toml:"max_page_bytes"`
	MaxRedirects   int    `toml:"max_redirects"`
}

// Extraction contains configuration for the crawl-and-extract loop.
type Extraction struct {
	MaxPages        int `toml:"max_pages"`
	MaxContentChars int `toml:"max_content_chars"`
	MaxLinks        int `toml:"max_links"`
}

// Curation contains thresholds for profile consolidation and review routing.
type Curation struct {
	MinCompleteness         float64 `toml:"min_completeness"`
	NameSimilarityThreshold float64 `toml:"name_similarity_threshold"`
}

// Report contains configuration for rendered profile reports.
type Report struct {
	OverwriteExisting bool `toml:"overwrite_existing"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Scout          bool   `toml:"scout"`
	Extraction     bool   `toml:"extraction"`
	Curation       bool   `toml:"curation"`
	Report         bool   `toml:"report"`
	Queue          bool   `toml:"queue"`
	Review         bool   `toml:"review"`
	Errors         bool   `toml:"errors"`
	QueueMinItems  int    `toml:"queue_min_items"`
}

// Provision contains configuration for first-run model provisioning.
type Provision struct {
	Models             []string `toml:"models"`
	PullTimeoutSeconds int      `toml:"pull_timeout_seconds"`
}

// Workflow contains configuration for daemon timing and intervals.
type Workflow struct {
	QueuePollInterval  int `toml:"queue_poll_interval"`
	ErrorRetryInterval int `toml:"error_retry_interval"`
	HeartbeatInterval  int `toml:"heartbeat_interval"`
	HeartbeatTimeout   int `toml:"heartbeat_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format         string            `toml:"format"`
	Level          string            `toml:"level"`
	RetentionDays  int               `toml:"retention_days"`
	StageOverrides map[string]string `toml:"stage_overrides"`
}

// Config encapsulates all configuration values for Canvass.
//
// Configuration sections by subsystem:
//   - Paths: directories and API bind address
//   - Ollama: local LLM runtime connection settings
//   - Fetch: crawler HTTP client behaviour
//   - Extraction: crawl depth and prompt sizing
//   - Curation: completeness thresholds and dedupe tuning
//   - Report: rendered profile output behaviour
//   - Notifications: ntfy push notification settings
//   - Provision: first-run model pulls
//   - Workflow: daemon polling intervals and timeouts
//   - Logging: log format, level, and retention
type Config struct {
	Paths         Paths         `toml:"paths"`
	Ollama        Ollama        `toml:"ollama"`
	Fetch         Fetch         `toml:"fetch"`
	Extraction    Extraction    `toml:"extraction"`
	Curation      Curation      `toml:"curation"`
	Report        Report        `toml:"report"`
	Notifications Notifications `toml:"notifications"`
	Provision     Provision     `toml:"provision"`
	Workflow      Workflow      `toml:"workflow"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/canvass/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/canvass/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("canvass.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
// ReportDir is created on a best-effort basis so the daemon can run when
// external storage is temporarily unavailable.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StagingDir, c.Paths.LogDir, c.Paths.ReviewDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.ReportDir) != "" {
		// Best-effort to avoid failing config load when storage is offline.
		_ = os.MkdirAll(c.Paths.ReportDir, 0o755)
	}
	return nil
}

// OllamaBinary returns the Ollama CLI executable name.
func (c *Config) OllamaBinary() string {
	return "ollama"
}

// ProvisionModels returns the models the setup flow should ensure are present.
// Falls back to the configured generation model when no explicit list is set.
func (c *Config) ProvisionModels() []string {
	if len(c.Provision.Models) > 0 {
		return append([]string(nil), c.Provision.Models...)
	}
	if model := strings.TrimSpace(c.Ollama.Model); model != "" {
		return []string{model}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	sample := sampleConfig

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
