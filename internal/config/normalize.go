package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeOllama()
	c.normalizeFetch()
	c.normalizeExtraction()
	c.normalizeCuration()
	c.normalizeNotifications()
	c.normalizeProvision()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.ReportDir, err = expandPath(c.Paths.ReportDir); err != nil {
		return fmt.Errorf("paths.report_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.ReviewDir, err = expandPath(c.Paths.ReviewDir); err != nil {
		return fmt.Errorf("paths.review_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	if c.Paths.APIToken == "" {
		if value, ok := os.LookupEnv("CANVASS_API_TOKEN"); ok {
			c.Paths.APIToken = strings.TrimSpace(value)
		}
	}
	return nil
}

func (c *Config) normalizeOllama() {
	c.Ollama.BaseURL = strings.TrimSpace(c.Ollama.BaseURL)
	if c.Ollama.BaseURL == "" {
		if value, ok := os.LookupEnv("CANVASS_OLLAMA_URL"); ok {
			c.Ollama.BaseURL = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("OLLAMA_HOST"); ok {
			c.Ollama.BaseURL = strings.TrimSpace(value)
		}
	}
	if c.Ollama.BaseURL == "" {
		c.Ollama.BaseURL = defaultOllamaBaseURL
	}
	if !strings.Contains(c.Ollama.BaseURL, "://") {
		c.Ollama.BaseURL = "http://" + c.Ollama.BaseURL
	}
	c.Ollama.BaseURL = strings.TrimRight(c.Ollama.BaseURL, "/")
	c.Ollama.Model = strings.TrimSpace(c.Ollama.Model)
	if c.Ollama.Model == "" {
		c.Ollama.Model = defaultOllamaModel
	}
	if c.Ollama.TimeoutSeconds <= 0 {
		c.Ollama.TimeoutSeconds = defaultOllamaTimeoutSeconds
	}
}

func (c *Config) normalizeFetch() {
	c.Fetch.UserAgent = strings.TrimSpace(c.Fetch.UserAgent)
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = defaultFetchUserAgent
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		c.Fetch.TimeoutSeconds = defaultFetchTimeoutSeconds
	}
	if c.Fetch.MaxPageBytes <= 0 {
		c.Fetch.MaxPageBytes = defaultFetchMaxPageBytes
	}
	if c.Fetch.MaxRedirects <= 0 {
		c.Fetch.MaxRedirects = defaultFetchMaxRedirects
	}
}

func (c *Config) normalizeExtraction() {
	if c.Extraction.MaxPages <= 0 {
		c.Extraction.MaxPages = defaultExtractionMaxPages
	}
	if c.Extraction.MaxContentChars <= 0 {
		c.Extraction.MaxContentChars = defaultExtractionMaxContentChars
	}
	if c.Extraction.MaxLinks <= 0 {
		c.Extraction.MaxLinks = defaultExtractionMaxLinks
	}
}

func (c *Config) normalizeCuration() {
	if c.Curation.MinCompleteness <= 0 {
		c.Curation.MinCompleteness = defaultCurationMinCompleteness
	}
	if c.Curation.NameSimilarityThreshold <= 0 {
		c.Curation.NameSimilarityThreshold = defaultCurationNameSimilarity
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("CANVASS_NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
	if c.Notifications.QueueMinItems < 1 {
		c.Notifications.QueueMinItems = defaultNotifyQueueMinItems
	}
}

func (c *Config) normalizeProvision() {
	models := make([]string, 0, len(c.Provision.Models))
	seen := make(map[string]struct{}, len(c.Provision.Models))
	for _, model := range c.Provision.Models {
		trimmed := strings.TrimSpace(model)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		models = append(models, trimmed)
	}
	c.Provision.Models = models
	if c.Provision.PullTimeoutSeconds <= 0 {
		c.Provision.PullTimeoutSeconds = defaultProvisionPullTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
