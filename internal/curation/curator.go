package curation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"canvass/internal/config"
	"canvass/internal/logging"
	"canvass/internal/notifications"
	"canvass/internal/profile"
	"canvass/internal/queue"
	"canvass/internal/services"
	"canvass/internal/stage"
)

// Curator consolidates extracted profiles and flags weak ones for review.
type Curator struct {
	store    *queue.Store
	cfg      *config.Config
	logger   *slog.Logger
	notifier notifications.Service
}

// NewCurator constructs the curation handler.
func NewCurator(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Curator {
	return NewCuratorWithDependencies(cfg, store, logger, notifications.NewService(cfg))
}

// NewCuratorWithDependencies allows injecting custom dependencies (used for tests).
func NewCuratorWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, notifier notifications.Service) *Curator {
	c := &Curator{
		store:    store,
		cfg:      cfg,
		notifier: notifier,
	}
	c.SetLogger(logger)
	return c
}

// SetLogger updates the curator's logging destination while preserving component labeling.
func (c *Curator) SetLogger(logger *slog.Logger) {
	c.logger = logging.NewComponentLogger(logger, "curation")
}

func (c *Curator) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, c.logger)
	item.InitProgress("Compiling", "Consolidating extracted profile")
	logger.Debug("starting curation preparation")
	return nil
}

func (c *Curator) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, c.logger)
	stageStart := time.Now()

	prof, err := profile.Parse(item.ProfileJSON)
	if err != nil {
		return services.Wrap(
			services.ErrValidation,
			"curation",
			"parse profile",
			"Stored profile is invalid; rerun the extraction stage",
			err,
		)
	}

	consolidated, summary := Consolidate(prof, c.mergeOptions())
	comp := consolidated.Completeness()
	query := strings.TrimSpace(item.CustomQuery)

	if query == "" {
		threshold := c.reviewThreshold()
		switch {
		case len(consolidated.Services) == 0:
			item.NeedsReview = true
			item.ReviewReason = "No services discovered on the site"
		case comp.Score < threshold:
			item.NeedsReview = true
			item.ReviewReason = fmt.Sprintf("Profile %.0f%% complete; review threshold is %.0f%%", comp.Score, threshold)
		}
	}

	encoded, err := consolidated.Encode()
	if err != nil {
		return services.Wrap(services.ErrTransient, "curation", "encode profile", "Failed to serialize consolidated profile", err)
	}
	item.ProfileJSON = encoded
	if item.AgencyName == "" {
		if name := strings.TrimSpace(consolidated.Agency[profile.FieldAgencyName]); name != "" {
			item.AgencyName = name
		}
	}

	item.ProgressStage = "Compiled"
	item.ProgressPercent = 100
	switch {
	case query != "":
		item.ProgressMessage = fmt.Sprintf("Custom findings consolidated: %d fields", len(consolidated.Custom))
	case item.NeedsReview:
		item.ProgressMessage = fmt.Sprintf("Flagged for review: %s", item.ReviewReason)
	default:
		item.ProgressMessage = fmt.Sprintf("Profile consolidated: %.0f%% complete, %d services", comp.Score, len(consolidated.Services))
	}

	if c.notifier != nil {
		if item.NeedsReview {
			if err := c.notifier.Publish(ctx, notifications.EventReviewRequired, notifications.Payload{
				"agency": item.AgencyName,
				"reason": item.ReviewReason,
			}); err != nil {
				logger.Debug("review notification failed", logging.Error(err))
			}
		} else {
			if err := c.notifier.Publish(ctx, notifications.EventCurationCompleted, notifications.Payload{
				"agency":       item.AgencyName,
				"completeness": int(comp.Score),
			}); err != nil {
				logger.Debug("curation notification failed", logging.Error(err))
			}
		}
	}

	logger.Info("curation stage summary",
		logging.Int("services_before", summary.ServicesBefore),
		logging.Int("services_after", summary.ServicesAfter),
		logging.Int("sites_before", summary.SitesBefore),
		logging.Int("sites_after", summary.SitesAfter),
		logging.Float64("completeness_percent", comp.Score),
		logging.Int("missing_fields", len(comp.Missing)),
		logging.Bool("needs_review", item.NeedsReview),
		logging.Duration("stage_duration", time.Since(stageStart)))

	return nil
}

// HealthCheck verifies curation dependencies. The stage works entirely on
// stored state, so only configuration is required.
func (c *Curator) HealthCheck(ctx context.Context) stage.Health {
	const name = "curation"
	if c.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	return stage.Healthy(name)
}

func (c *Curator) mergeOptions() profile.MergeOptions {
	if c.cfg == nil {
		return profile.MergeOptions{}
	}
	return profile.MergeOptions{NameSimilarityThreshold: c.cfg.Curation.NameSimilarityThreshold}
}

func (c *Curator) reviewThreshold() float64 {
	if c.cfg == nil {
		return 0
	}
	return c.cfg.Curation.MinCompleteness
}
