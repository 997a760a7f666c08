package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"canvass/internal/config"
	"canvass/internal/fetch"
	"canvass/internal/logging"
	"canvass/internal/notifications"
	"canvass/internal/profile"
	"canvass/internal/queue"
	"canvass/internal/services"
	"canvass/internal/services/ollama"
	"canvass/internal/stage"
)

// Extractor adapts the crawl engine to the queue workflow.
type Extractor struct {
	store    *queue.Store
	cfg      *config.Config
	logger   *slog.Logger
	fetcher  PageFetcher
	model    Generator
	notifier notifications.Service
	engine   *Engine
}

// NewExtractor constructs the extraction handler.
func NewExtractor(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Extractor {
	return NewExtractorWithDependencies(cfg, store, logger,
		fetch.NewClient(cfg.Fetch),
		ollama.NewClient(cfg.Ollama),
		notifications.NewService(cfg))
}

// NewExtractorWithDependencies allows injecting custom dependencies (used for tests).
func NewExtractorWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, fetcher PageFetcher, model Generator, notifier notifications.Service) *Extractor {
	x := &Extractor{
		store:    store,
		cfg:      cfg,
		fetcher:  fetcher,
		model:    model,
		notifier: notifier,
	}
	x.SetLogger(logger)
	return x
}

// SetLogger updates the extractor's logging destination while preserving component labeling.
func (x *Extractor) SetLogger(logger *slog.Logger) {
	x.logger = logging.NewComponentLogger(logger, "extraction")
	x.engine = NewEngine(x.fetcher, x.model, extractionConfig(x.cfg), mergeOptions(x.cfg), x.logger)
}

func (x *Extractor) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, x.logger)
	item.InitProgress("Extracting", "Starting extraction crawl")
	logger.Debug("starting extraction preparation")
	return nil
}

func (x *Extractor) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, x.logger)
	stageStart := time.Now()

	state, err := profile.ParseCrawlState(item.CrawlStateJSON)
	if err != nil {
		return services.Wrap(
			services.ErrValidation,
			"extraction",
			"parse crawl state",
			"Stored crawl state is invalid; rerun the scout stage",
			err,
		)
	}
	if strings.TrimSpace(state.CurrentURL) == "" {
		return services.Wrap(
			services.ErrValidation,
			"extraction",
			"validate crawl state",
			"Crawl state has no current URL; rerun the scout stage",
			nil,
		)
	}

	prof, err := profile.Parse(item.ProfileJSON)
	if err != nil {
		return services.Wrap(
			services.ErrValidation,
			"extraction",
			"parse profile",
			"Stored profile is invalid; rerun the scout stage",
			err,
		)
	}

	budget := x.engine.Budget()
	query := strings.TrimSpace(item.CustomQuery)

	persist := func(ctx context.Context, prof profile.Profile, st profile.CrawlState) error {
		encodedProfile, err := prof.Encode()
		if err != nil {
			return fmt.Errorf("encode profile: %w", err)
		}
		encodedState, err := st.Encode()
		if err != nil {
			return fmt.Errorf("encode crawl state: %w", err)
		}
		updated := *item
		updated.ProfileJSON = encodedProfile
		updated.CrawlStateJSON = encodedState
		updated.ProgressStage = "Extracting"
		updated.ProgressPercent = float64(st.Rounds) / float64(budget) * 100
		updated.ProgressMessage = roundMessage(query, prof, st.Rounds, budget)
		if err := x.store.UpdateProgress(ctx, &updated); err != nil {
			return err
		}
		*item = updated
		return nil
	}

	result, err := x.engine.Run(ctx, RunInput{
		Profile: prof,
		State:   state,
		Query:   query,
		Page:    seedPage(logger, state),
		Persist: persist,
	})
	if err != nil {
		return services.Wrap(
			services.ErrExternalTool,
			"extraction",
			"run crawl",
			"Extraction crawl failed; check Ollama and site connectivity",
			err,
		)
	}

	encodedProfile, err := result.Profile.Encode()
	if err != nil {
		return services.Wrap(services.ErrTransient, "extraction", "encode profile", "Failed to serialize extracted profile", err)
	}
	encodedState, err := result.State.Encode()
	if err != nil {
		return services.Wrap(services.ErrTransient, "extraction", "encode crawl state", "Failed to serialize crawl state", err)
	}

	item.ProfileJSON = encodedProfile
	item.CrawlStateJSON = encodedState
	if item.AgencyName == "" {
		if name := strings.TrimSpace(result.Profile.Agency[profile.FieldAgencyName]); name != "" {
			item.AgencyName = name
		}
	}

	comp := result.Profile.Completeness()
	pages := len(result.State.Visited)
	item.ProgressStage = "Extracted"
	item.ProgressPercent = 100
	if query != "" {
		item.ProgressMessage = fmt.Sprintf("Custom extraction finished after %d pages", pages)
	} else {
		item.ProgressMessage = fmt.Sprintf("Extraction finished: %.0f%% complete after %d pages", comp.Score, pages)
	}

	if x.notifier != nil {
		if err := x.notifier.Publish(ctx, notifications.EventExtractionCompleted, notifications.Payload{
			"agency": displayLabel(item, result.Profile),
			"pages":  pages,
		}); err != nil {
			logger.Debug("extraction notification failed", logging.Error(err))
		}
	}

	summaryAttrs := []logging.Attr{
		logging.Int("rounds", result.Rounds),
		logging.Int("pages_visited", pages),
		logging.Int("links_pooled", len(result.State.LinkPool)),
		logging.String("stop_reason", result.StopReason),
		logging.Duration("stage_duration", time.Since(stageStart)),
	}
	if query == "" {
		summaryAttrs = append(summaryAttrs,
			logging.Float64("completeness_percent", comp.Score),
			logging.Int("services_found", len(result.Profile.Services)),
		)
	}
	logger.Info("extraction stage summary", logging.Args(summaryAttrs...)...)

	return nil
}

// HealthCheck verifies extraction dependencies without touching the network.
func (x *Extractor) HealthCheck(ctx context.Context) stage.Health {
	const name = "extraction"
	if x.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if strings.TrimSpace(x.cfg.Paths.StagingDir) == "" {
		return stage.Unhealthy(name, "staging directory not configured")
	}
	if x.fetcher == nil {
		return stage.Unhealthy(name, "page fetcher unavailable")
	}
	if x.model == nil {
		return stage.Unhealthy(name, "ollama client unavailable")
	}
	return stage.Healthy(name)
}

// seedPage reconstructs the current page from the scout stage's snapshot so
// the first round does not refetch the seed. Later rounds carry live pages.
func seedPage(logger *slog.Logger, state profile.CrawlState) *fetch.Page {
	if state.Rounds != 0 {
		return nil
	}
	path := strings.TrimSpace(state.SeedContentPath)
	if path == "" {
		return nil
	}
	text, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("seed snapshot unreadable; refetching current page",
			logging.String("path", path),
			logging.Error(err))
		return nil
	}
	return &fetch.Page{URL: state.CurrentURL, Title: state.PageTitle, Text: string(text)}
}

func roundMessage(query string, prof profile.Profile, rounds, budget int) string {
	message := fmt.Sprintf("Round %d of %d", rounds, budget)
	if query == "" {
		message = fmt.Sprintf("%s (%.0f%% complete)", message, prof.Completeness().Score)
	}
	return message
}

func displayLabel(item *queue.Item, prof profile.Profile) string {
	if name := strings.TrimSpace(prof.Agency[profile.FieldAgencyName]); name != "" {
		return name
	}
	if name := strings.TrimSpace(item.AgencyName); name != "" {
		return name
	}
	if host := strings.TrimSpace(item.SiteHost); host != "" {
		return host
	}
	return strings.TrimSpace(item.SeedURL)
}

func extractionConfig(cfg *config.Config) config.Extraction {
	if cfg == nil {
		return config.Extraction{}
	}
	return cfg.Extraction
}

func mergeOptions(cfg *config.Config) profile.MergeOptions {
	if cfg == nil {
		return profile.MergeOptions{}
	}
	return profile.MergeOptions{NameSimilarityThreshold: cfg.Curation.NameSimilarityThreshold}
}
