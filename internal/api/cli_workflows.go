package api

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"canvass/internal/config"
	"canvass/internal/curation"
	"canvass/internal/extraction"
	"canvass/internal/fetch"
	"canvass/internal/logging"
	"canvass/internal/notifications"
	"canvass/internal/profile"
	"canvass/internal/queue"
	"canvass/internal/reporter"
	"canvass/internal/scout"
	"canvass/internal/services"
	"canvass/internal/services/ollama"
	"canvass/internal/stageexec"
)

type ProfileSiteRequest struct {
	Config      *config.Config
	SeedURL     string
	AgencyName  string
	CustomQuery string
	Logger      *slog.Logger
}

type ProfileSiteResult struct {
	Item         *queue.Item
	ItemID       int64
	AgencyName   string
	SeedURL      string
	SiteHost     string
	ReportPath   string
	NeedsReview  bool
	ReviewReason string
	Completeness float64
	Sites        int
	Services     int
	PagesVisited int
}

type ProfileRunAssessment struct {
	AgencyName     string
	Completeness   float64
	Services       int
	ReportPath     string
	ReviewRequired bool
	ReviewReason   string
	Outcome        string
	OutcomeMessage string
}

// AssessProfileRun derives CLI-facing outcomes from queue state after a one-shot run.
func AssessProfileRun(item *queue.Item) ProfileRunAssessment {
	if item == nil {
		return ProfileRunAssessment{
			AgencyName:     "Unknown",
			Outcome:        "failed",
			OutcomeMessage: "❌ Profile run failed. Check the logs above for details.",
		}
	}

	assessment := ProfileRunAssessment{
		AgencyName:     strings.TrimSpace(item.AgencyName),
		ReportPath:     strings.TrimSpace(item.ReportPath),
		ReviewRequired: item.NeedsReview,
		ReviewReason:   strings.TrimSpace(item.ReviewReason),
	}
	if summary := deriveProfileSummary(item); summary != nil {
		assessment.Completeness = summary.Completeness
		assessment.Services = summary.Services
		if assessment.AgencyName == "" {
			assessment.AgencyName = summary.AgencyName
		}
	}
	if assessment.AgencyName == "" {
		assessment.AgencyName = "Unknown"
	}

	switch {
	case item.Status == queue.StatusCompleted && !assessment.ReviewRequired:
		assessment.Outcome = "success"
		assessment.OutcomeMessage = "✅ Profile compiled! Report exported to the reports directory."
	case assessment.ReviewRequired:
		assessment.Outcome = "review"
		assessment.OutcomeMessage = "⚠️  Profile requires manual review. Check the review directory and logs for details."
	default:
		assessment.Outcome = "failed"
		assessment.OutcomeMessage = "❌ Profile run failed. Check the logs above for details."
	}

	return assessment
}

// ProfileSite runs the whole pipeline for one seed URL inside the calling
// process: scout, extraction, curation, report export. Items parked for
// review are a normal outcome; hard stage failures surface as errors.
func ProfileSite(ctx context.Context, req ProfileSiteRequest) (ProfileSiteResult, error) {
	cfg := req.Config
	if cfg == nil {
		return ProfileSiteResult{}, fmt.Errorf("configuration is required")
	}
	logger := req.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	seedURL := strings.TrimSpace(req.SeedURL)
	if seedURL == "" {
		return ProfileSiteResult{}, fmt.Errorf("seed URL is required")
	}

	store, err := queue.Open(cfg)
	if err != nil {
		return ProfileSiteResult{}, fmt.Errorf("open queue store: %w", err)
	}
	defer store.Close()

	notifier := notifications.NewService(cfg)
	item, err := store.NewSeed(ctx, seedURL, req.AgencyName, req.CustomQuery)
	if err != nil {
		return ProfileSiteResult{}, fmt.Errorf("create queue item: %w", err)
	}
	baseCtx := services.WithItemID(ctx, item.ID)

	fetcher := fetch.NewClient(cfg.Fetch)
	model := ollama.NewClient(cfg.Ollama)

	stages := []struct {
		name       string
		handler    stageexec.Handler
		processing queue.Status
		done       queue.Status
	}{
		{"scout", scout.NewScoutWithDependencies(cfg, store, logger, fetcher, notifier), queue.StatusScouting, queue.StatusScouted},
		{"extraction", extraction.NewExtractorWithDependencies(cfg, store, logger, fetcher, model, notifier), queue.StatusExtracting, queue.StatusExtracted},
		{"curation", curation.NewCuratorWithDependencies(cfg, store, logger, notifier), queue.StatusCompiling, queue.StatusCompiled},
		{"reporter", reporter.NewReporterWithDependencies(cfg, store, logger, notifier), queue.StatusExporting, queue.StatusCompleted},
	}

	for _, stg := range stages {
		runErr := stageexec.Run(baseCtx, stageexec.Options{
			Logger:     logger,
			Store:      store,
			Notifier:   notifier,
			Handler:    stg.handler,
			StageName:  stg.name,
			Processing: stg.processing,
			Done:       stg.done,
			Item:       item,
		})
		if runErr != nil {
			if item.Status == queue.StatusReview {
				return buildProfileSiteResult(item), nil
			}
			return ProfileSiteResult{}, runErr
		}
		if item.Status == queue.StatusFailed {
			return ProfileSiteResult{}, fmt.Errorf("%s failed: %s", stg.name, strings.TrimSpace(item.ErrorMessage))
		}
	}

	return buildProfileSiteResult(item), nil
}

func buildProfileSiteResult(item *queue.Item) ProfileSiteResult {
	result := ProfileSiteResult{
		Item:         item,
		ItemID:       item.ID,
		AgencyName:   strings.TrimSpace(item.AgencyName),
		SeedURL:      item.SeedURL,
		SiteHost:     item.SiteHost,
		ReportPath:   strings.TrimSpace(item.ReportPath),
		NeedsReview:  item.NeedsReview,
		ReviewReason: strings.TrimSpace(item.ReviewReason),
	}
	if prof, err := profile.Parse(item.ProfileJSON); err == nil {
		comp := prof.Completeness()
		result.Completeness = comp.Score
		result.Sites = len(prof.Sites)
		result.Services = len(prof.Services)
		if result.AgencyName == "" {
			result.AgencyName = strings.TrimSpace(prof.Agency[profile.FieldAgencyName])
		}
	}
	if state, err := profile.ParseCrawlState(item.CrawlStateJSON); err == nil {
		result.PagesVisited = len(state.Visited)
	}
	return result
}
