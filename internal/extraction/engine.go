package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"canvass/internal/config"
	"canvass/internal/fetch"
	"canvass/internal/logging"
	"canvass/internal/profile"
)

// PageFetcher retrieves one page of the target site.
type PageFetcher interface {
	FetchPage(ctx context.Context, pageURL, baseHost string) (*fetch.Page, error)
}

// Generator produces one model reply per crawl round.
type Generator interface {
	GenerateJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Engine runs the iterative crawl over one agency site. It is safe to share
// across items; per-item state travels through RunInput and RunResult.
type Engine struct {
	fetcher PageFetcher
	model   Generator
	cfg     config.Extraction
	merge   profile.MergeOptions
	logger  *slog.Logger
}

// NewEngine builds a crawl engine around the given fetcher and model.
func NewEngine(fetcher PageFetcher, model Generator, cfg config.Extraction, merge profile.MergeOptions, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{fetcher: fetcher, model: model, cfg: cfg, merge: merge, logger: logger}
}

// Budget returns the maximum number of crawl rounds per run.
func (e *Engine) Budget() int {
	if e.cfg.MaxPages <= 0 {
		return 1
	}
	return e.cfg.MaxPages
}

// RunInput seeds a crawl run. Page carries the already-fetched current page
// when the scout stage left a snapshot; otherwise the engine fetches
// State.CurrentURL itself. Run owns the input state and profile.
type RunInput struct {
	Profile profile.Profile
	State   profile.CrawlState
	Query   string
	Page    *fetch.Page

	// Persist, when set, saves the profile and crawl state after every
	// completed round so an interrupted run resumes without losing work.
	Persist func(ctx context.Context, prof profile.Profile, state profile.CrawlState) error
}

// RunResult reports the crawl outcome.
type RunResult struct {
	Profile    profile.Profile
	State      profile.CrawlState
	Rounds     int
	StopReason string
}

// Run executes crawl rounds until the model stops, the round budget is spent,
// or no usable next link remains. Each round is one model call; a failed page
// fetch marks the URL failed and re-prompts with the same page text.
func (e *Engine) Run(ctx context.Context, in RunInput) (RunResult, error) {
	logger := logging.WithContext(ctx, e.logger)
	prof := in.Profile.Clone()
	state := in.State
	page := in.Page
	query := strings.TrimSpace(in.Query)
	budget := e.Budget()
	baseHost := hostOf(state.BaseURL)

	if page == nil && state.Rounds < budget {
		fetched, err := e.fetcher.FetchPage(ctx, state.CurrentURL, baseHost)
		if err != nil {
			return RunResult{Profile: prof, State: state, Rounds: state.Rounds, StopReason: "current page unreachable"},
				fmt.Errorf("fetch current page %s: %w", state.CurrentURL, err)
		}
		state.MarkVisited(fetched.URL)
		state.AddLinks(fetched.Links)
		state.CurrentURL = fetched.URL
		if strings.TrimSpace(fetched.Title) != "" {
			state.PageTitle = fetched.Title
		}
		page = fetched
	}

	stopReason := "page budget exhausted"
	for state.Rounds < budget {
		if err := ctx.Err(); err != nil {
			return RunResult{Profile: prof, State: state, Rounds: state.Rounds, StopReason: "canceled"}, err
		}

		reply, err := e.model.GenerateJSON(ctx, systemPrompt(query), buildUserPrompt(query, prof, &state, page, e.cfg))
		if err != nil {
			return RunResult{Profile: prof, State: state, Rounds: state.Rounds, StopReason: "model error"},
				fmt.Errorf("generate round %d: %w", state.Rounds+1, err)
		}
		state.Rounds++

		decision, err := ParseDecision(reply)
		if err != nil {
			logger.Warn("model reply not parseable; keeping findings so far",
				logging.Int("round", state.Rounds),
				logging.Error(err))
			stopReason = "unparseable model reply"
			break
		}

		changed := prof.MergeAgency(decision.NewInfo.Agency)
		for _, site := range decision.NewInfo.Sites {
			changed += prof.MergeSite(site, e.merge)
		}
		for _, service := range decision.NewInfo.Services {
			changed += prof.MergeService(service, e.merge)
		}
		changed += prof.MergeCustom(decision.NewInfo.Custom)
		if changed > 0 {
			prof.AddSourceURL(page.URL)
		}
		if query == "" {
			state.Missing = prof.Completeness().Missing
		}

		logger.Debug("extraction round complete",
			logging.Int("round", state.Rounds),
			logging.Int("fields_merged", changed),
			logging.Int("services_total", len(prof.Services)),
			logging.String("proposed_next", decision.NextURL))

		if in.Persist != nil {
			if err := in.Persist(ctx, prof, state); err != nil {
				logger.Warn("failed to persist crawl progress", logging.Error(err))
			}
		}

		cleaned := CleanNextURL(decision.NextURL)
		if cleaned == "" {
			stopReason = "model reported done"
			break
		}
		if state.Rounds >= budget {
			break
		}

		resolved := ResolveNextURL(cleaned, &state)
		if resolved == "" {
			logger.Debug("proposed next url rejected", logging.String("candidate", cleaned))
			stopReason = "no usable next link"
			break
		}

		state.NextURL = resolved
		fetched, err := e.fetcher.FetchPage(ctx, resolved, baseHost)
		state.NextURL = ""
		if err != nil {
			if ctx.Err() != nil {
				return RunResult{Profile: prof, State: state, Rounds: state.Rounds, StopReason: "canceled"}, ctx.Err()
			}
			state.MarkFailed(resolved)
			logger.Warn("candidate page fetch failed",
				logging.String("url", resolved),
				logging.Error(err))
			continue
		}

		state.MarkVisited(resolved)
		if fetched.URL != resolved {
			state.MarkVisited(fetched.URL)
		}
		state.AddLinks(fetched.Links)
		state.CurrentURL = fetched.URL
		if strings.TrimSpace(fetched.Title) != "" {
			state.PageTitle = fetched.Title
		}
		page = fetched
	}

	logger.Debug("extraction crawl finished",
		logging.Int("rounds", state.Rounds),
		logging.Int("pages_visited", len(state.Visited)),
		logging.String("stop_reason", stopReason))

	return RunResult{Profile: prof, State: state, Rounds: state.Rounds, StopReason: stopReason}, nil
}
