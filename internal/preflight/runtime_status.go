package preflight

import (
	"context"
	"strings"

	"canvass/internal/config"
)

// CheckOllamaFromConfig evaluates Ollama status from config and connectivity.
func CheckOllamaFromConfig(cfg *config.Config) Result {
	const name = "Ollama"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if strings.TrimSpace(cfg.Ollama.BaseURL) == "" {
		return Result{Name: name, Detail: "Missing base URL"}
	}
	if strings.TrimSpace(cfg.Ollama.Model) == "" {
		return Result{Name: name, Detail: "Missing model"}
	}
	return CheckOllama(context.Background(), cfg.Ollama)
}

// CheckNotificationsFromConfig evaluates ntfy notification status from config.
// A missing topic passes; notifications are optional.
func CheckNotificationsFromConfig(cfg *config.Config) Result {
	const name = "Notifications"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return Result{Name: name, Passed: true, Detail: "Disabled"}
	}
	return Result{Name: name, Passed: true, Detail: "Topic configured"}
}
