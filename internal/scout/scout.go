package scout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"canvass/internal/config"
	"canvass/internal/fetch"
	"canvass/internal/logging"
	"canvass/internal/notifications"
	"canvass/internal/profile"
	"canvass/internal/queue"
	"canvass/internal/services"
	"canvass/internal/stage"
)

// seedSnapshotName is the staged file holding the seed page's visible text.
const seedSnapshotName = "seed.txt"

// PageFetcher retrieves one page of the target site.
type PageFetcher interface {
	FetchPage(ctx context.Context, pageURL, baseHost string) (*fetch.Page, error)
}

// Scout fetches the seed page and prepares the crawl state for extraction.
type Scout struct {
	store    *queue.Store
	cfg      *config.Config
	logger   *slog.Logger
	fetcher  PageFetcher
	notifier notifications.Service
}

// NewScout constructs the scout handler.
func NewScout(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Scout {
	return NewScoutWithDependencies(cfg, store, logger,
		fetch.NewClient(cfg.Fetch),
		notifications.NewService(cfg))
}

// NewScoutWithDependencies allows injecting custom dependencies (used for tests).
func NewScoutWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, fetcher PageFetcher, notifier notifications.Service) *Scout {
	s := &Scout{
		store:    store,
		cfg:      cfg,
		fetcher:  fetcher,
		notifier: notifier,
	}
	s.SetLogger(logger)
	return s
}

// SetLogger updates the scout's logging destination while preserving component labeling.
func (s *Scout) SetLogger(logger *slog.Logger) {
	s.logger = logging.NewComponentLogger(logger, "scout")
}

func (s *Scout) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, s.logger)
	item.InitProgress("Scouting", "Fetching seed page")
	logger.Debug("starting scout preparation")
	return nil
}

func (s *Scout) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, s.logger)
	stageStart := time.Now()

	seedURL, err := queue.NormalizeSeedURL(item.SeedURL)
	if err != nil {
		return services.WithHint(
			services.Wrap(services.ErrValidation, "scout", "normalize seed url",
				"Seed URL is missing or malformed", err),
			"Re-add the item with a full http(s):// URL")
	}

	page, err := s.fetcher.FetchPage(ctx, seedURL, "")
	if err != nil {
		return classifyFetchFailure(seedURL, err)
	}

	item.SeedURL = page.URL
	item.SiteHost = page.BaseHost
	if item.AgencyName == "" {
		item.AgencyName = queue.InferAgencyName(page.URL)
	}

	snapshotPath, err := s.writeSnapshot(item, page.Text)
	if err != nil {
		return services.Wrap(services.ErrTransient, "scout", "write seed snapshot",
			"Failed to stage seed page text", err)
	}

	state := profile.CrawlState{
		BaseURL:         baseOf(page.URL, page.BaseHost),
		CurrentURL:      page.URL,
		PageTitle:       page.Title,
		SeedContentPath: snapshotPath,
	}
	state.MarkVisited(page.URL)
	state.AddLinks(page.Links)

	prof := profile.Profile{}
	prof.AddSourceURL(page.URL)

	encodedState, err := state.Encode()
	if err != nil {
		return services.Wrap(services.ErrTransient, "scout", "encode crawl state",
			"Failed to serialize crawl state", err)
	}
	encodedProfile, err := prof.Encode()
	if err != nil {
		return services.Wrap(services.ErrTransient, "scout", "encode profile",
			"Failed to serialize initial profile", err)
	}
	item.CrawlStateJSON = encodedState
	item.ProfileJSON = encodedProfile

	item.ProgressStage = "Scouted"
	item.ProgressPercent = 100
	item.ProgressMessage = fmt.Sprintf("Seed page read: %d internal links found", len(page.Links))

	if s.notifier != nil {
		if err := s.notifier.Publish(ctx, notifications.EventScoutCompleted, notifications.Payload{
			"agency": item.AgencyName,
			"host":   item.SiteHost,
			"links":  len(page.Links),
		}); err != nil {
			logger.Debug("scout notification failed", logging.Error(err))
		}
	}

	logger.Info("scout stage summary",
		logging.String("seed_url", page.URL),
		logging.String("site_host", item.SiteHost),
		logging.String("page_title", strings.TrimSpace(page.Title)),
		logging.Int("links_pooled", len(page.Links)),
		logging.Int("snapshot_bytes", len(page.Text)),
		logging.Duration("stage_duration", time.Since(stageStart)))

	return nil
}

// HealthCheck verifies scout dependencies without touching the network.
func (s *Scout) HealthCheck(ctx context.Context) stage.Health {
	const name = "scout"
	if s.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if strings.TrimSpace(s.cfg.Paths.StagingDir) == "" {
		return stage.Unhealthy(name, "staging directory not configured")
	}
	if s.fetcher == nil {
		return stage.Unhealthy(name, "page fetcher unavailable")
	}
	return stage.Healthy(name)
}

// writeSnapshot stages the seed page text under the item's staging root and
// returns the snapshot path.
func (s *Scout) writeSnapshot(item *queue.Item, text string) (string, error) {
	root := item.StagingRoot(s.cfg.Paths.StagingDir)
	if root == "" {
		return "", errors.New("staging directory not configured")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", fmt.Errorf("create staging root: %w", err)
	}
	path := filepath.Join(root, seedSnapshotName)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// classifyFetchFailure maps a seed fetch error onto review or retry semantics.
// Client errors point at a bad seed URL and need an operator; everything else
// may clear up on retry.
func classifyFetchFailure(seedURL string, err error) error {
	var statusErr *fetch.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode >= http.StatusBadRequest && statusErr.StatusCode < http.StatusInternalServerError {
		return services.WithHint(
			services.Wrap(services.ErrValidation, "scout", "fetch seed page",
				fmt.Sprintf("Seed page returned HTTP %d", statusErr.StatusCode), err),
			"Check the seed URL for typos or moved pages")
	}
	return services.Wrap(services.ErrExternalTool, "scout", "fetch seed page",
		fmt.Sprintf("Seed page %s unreachable", seedURL), err)
}

func baseOf(pageURL, baseHost string) string {
	scheme := "https"
	if strings.HasPrefix(pageURL, "http://") {
		scheme = "http"
	}
	if i := strings.Index(pageURL, "://"); i >= 0 {
		rest := pageURL[i+3:]
		if j := strings.IndexAny(rest, "/?"); j >= 0 {
			rest = rest[:j]
		}
		if rest != "" {
			return scheme + "://" + rest
		}
	}
	return scheme + "://" + baseHost
}
