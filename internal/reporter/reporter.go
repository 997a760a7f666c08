package reporter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"canvass/internal/config"
	"canvass/internal/fileutil"
	"canvass/internal/logging"
	"canvass/internal/notifications"
	"canvass/internal/profile"
	"canvass/internal/queue"
	"canvass/internal/services"
	"canvass/internal/stage"
)

// Reporter renders the final report pair and routes it to its destination.
type Reporter struct {
	store    *queue.Store
	cfg      *config.Config
	logger   *slog.Logger
	notifier notifications.Service
}

// NewReporter constructs the export handler.
func NewReporter(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Reporter {
	return NewReporterWithDependencies(cfg, store, logger, notifications.NewService(cfg))
}

// NewReporterWithDependencies allows injecting custom dependencies (used for tests).
func NewReporterWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, notifier notifications.Service) *Reporter {
	r := &Reporter{
		store:    store,
		cfg:      cfg,
		notifier: notifier,
	}
	r.SetLogger(logger)
	return r
}

// SetLogger updates the reporter's logging destination while preserving component labeling.
func (r *Reporter) SetLogger(logger *slog.Logger) {
	r.logger = logging.NewComponentLogger(logger, "reporter")
}

func (r *Reporter) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, r.logger)
	item.InitProgress("Exporting", "Rendering profile report")
	logger.Debug("starting export preparation")
	return nil
}

func (r *Reporter) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, r.logger)
	stageStart := time.Now()

	prof, err := profile.Parse(item.ProfileJSON)
	if err != nil {
		return services.Wrap(
			services.ErrValidation,
			"export",
			"parse profile",
			"Stored profile is invalid; rerun the extraction stage",
			err,
		)
	}

	query := strings.TrimSpace(item.CustomQuery)
	var body string
	if query != "" {
		body = prof.RenderCustomText(query)
	} else {
		body = prof.RenderText()
	}

	sidecar, err := json.MarshalIndent(prof, "", "  ")
	if err != nil {
		return services.Wrap(services.ErrTransient, "export", "encode sidecar", "Failed to serialize profile sidecar", err)
	}

	destDir, err := r.destinationDir(item)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "export", "ensure report dir", "Failed to create report destination directory", err)
	}

	base := profile.ReportBaseName(item.AgencyName, item.SiteHost, item.ID)
	textPath, jsonPath, err := r.allocatePaths(destDir, base)
	if err != nil {
		return services.Wrap(services.ErrTransient, "export", "allocate report filename", "Unable to allocate report filename", err)
	}

	if err := fileutil.WriteFileAtomic(textPath, []byte(body), 0o644); err != nil {
		return services.Wrap(services.ErrTransient, "export", "write report", "Failed to write report file", err)
	}
	if err := fileutil.WriteFileAtomic(jsonPath, sidecar, 0o644); err != nil {
		return services.Wrap(services.ErrTransient, "export", "write sidecar", "Failed to write profile sidecar", err)
	}

	item.ReportPath = textPath
	if item.NeedsReview {
		item.Status = queue.StatusReview
		item.ProgressStage = "Manual review"
		item.ProgressPercent = 100
		item.ProgressMessage = fmt.Sprintf("Report routed to review: %s", filepath.Base(textPath))
		if strings.TrimSpace(item.ErrorMessage) == "" {
			item.ErrorMessage = strings.TrimSpace(item.ReviewReason)
		}
	} else {
		item.ProgressStage = "Exported"
		item.ProgressPercent = 100
		item.ProgressMessage = fmt.Sprintf("Report written: %s", filepath.Base(textPath))
	}

	if r.notifier != nil {
		if err := r.notifier.Publish(ctx, notifications.EventReportWritten, notifications.Payload{
			"agency":     reportLabel(item),
			"reportFile": filepath.Base(textPath),
		}); err != nil {
			logger.Debug("report notification failed", logging.Error(err))
		}
	}

	logger.Info("export stage summary",
		logging.String("report_path", textPath),
		logging.String("sidecar_path", jsonPath),
		logging.Int("report_bytes", len(body)),
		logging.Bool("routed_to_review", item.NeedsReview),
		logging.Duration("stage_duration", time.Since(stageStart)))

	return nil
}

// HealthCheck verifies export dependencies without writing anything.
func (r *Reporter) HealthCheck(ctx context.Context) stage.Health {
	const name = "reporter"
	if r.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if strings.TrimSpace(r.cfg.Paths.ReportDir) == "" {
		return stage.Unhealthy(name, "report directory not configured")
	}
	return stage.Healthy(name)
}

// destinationDir picks the report or review directory for the item.
func (r *Reporter) destinationDir(item *queue.Item) (string, error) {
	if item.NeedsReview {
		reviewDir := strings.TrimSpace(r.cfg.Paths.ReviewDir)
		if reviewDir == "" {
			return "", services.Wrap(
				services.ErrConfiguration,
				"export",
				"resolve review dir",
				"Review directory not configured; set review_dir in your canvass config.toml",
				nil,
			)
		}
		return reviewDir, nil
	}
	reportDir := strings.TrimSpace(r.cfg.Paths.ReportDir)
	if reportDir == "" {
		return "", services.Wrap(
			services.ErrConfiguration,
			"export",
			"resolve report dir",
			"Report directory not configured; set report_dir in your canvass config.toml",
			nil,
		)
	}
	return reportDir, nil
}

// allocatePaths returns the .txt/.json pair for base, suffixing a counter
// when the name is taken and overwriting is disabled.
func (r *Reporter) allocatePaths(dir, base string) (string, string, error) {
	textPath := filepath.Join(dir, base+".txt")
	jsonPath := filepath.Join(dir, base+".json")
	if r.cfg.Report.OverwriteExisting {
		return textPath, jsonPath, nil
	}
	if !pathExists(textPath) && !pathExists(jsonPath) {
		return textPath, jsonPath, nil
	}
	const maxAttempts = 10000
	for attempt := 2; attempt <= maxAttempts; attempt++ {
		candidate := fmt.Sprintf("%s-%d", base, attempt)
		textPath = filepath.Join(dir, candidate+".txt")
		jsonPath = filepath.Join(dir, candidate+".json")
		if !pathExists(textPath) && !pathExists(jsonPath) {
			return textPath, jsonPath, nil
		}
	}
	return "", "", fmt.Errorf("exhausted report filename slots in %s", dir)
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, os.ErrNotExist)
}

func reportLabel(item *queue.Item) string {
	if name := strings.TrimSpace(item.AgencyName); name != "" {
		return name
	}
	if host := strings.TrimSpace(item.SiteHost); host != "" {
		return host
	}
	return strings.TrimSpace(item.SeedURL)
}
