package workflow_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"canvass/internal/config"
	"canvass/internal/fetch"
	"canvass/internal/notifications"
	"canvass/internal/queue"
	"canvass/internal/stage"
	"canvass/internal/testsupport"
)

// newWorkflowConfig builds a config whose preflight checks pass: directories
// exist and a stub Ollama endpoint reports the configured model as installed.
func newWorkflowConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprintf(w, `{"models":[{"name":%q}]}`, cfg.Ollama.Model)
	}))
	t.Cleanup(srv.Close)
	cfg.Ollama.BaseURL = srv.URL
	cfg.Workflow.QueuePollInterval = 0
	cfg.Workflow.ErrorRetryInterval = 0
	cfg.Workflow.HeartbeatInterval = 1
	cfg.Workflow.HeartbeatTimeout = 5
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	return cfg
}

// waitForStatus polls the store until the item reaches the wanted status.
func waitForStatus(t *testing.T, store *queue.Store, id int64, want queue.Status, timeout time.Duration) *queue.Item {
	t.Helper()
	ctx := context.Background()
	deadline := time.After(timeout)
	for {
		select {
		case <-deadline:
			item, err := store.GetByID(ctx, id)
			if err == nil && item != nil {
				t.Fatalf("timed out waiting for status %s; item is %s (%s)", want, item.Status, item.ErrorMessage)
			}
			t.Fatalf("timed out waiting for status %s", want)
		default:
		}
		item, err := store.GetByID(ctx, id)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if item == nil {
			t.Fatal("queue item disappeared")
		}
		if item.Status == want {
			return item
		}
		if want != queue.StatusFailed && item.Status == queue.StatusFailed {
			t.Fatalf("item failed while waiting for %s: %s", want, item.ErrorMessage)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

type stubStage struct {
	name        string
	prepareHook func(*queue.Item)
	executeHook func(*queue.Item)
	prepareErr  error
	executeErr  error
	health      stage.Health
}

func newStubStage(name string) *stubStage {
	return &stubStage{name: name, health: stage.Healthy(name)}
}

func (s *stubStage) Prepare(_ context.Context, item *queue.Item) error {
	if s.prepareHook != nil {
		s.prepareHook(item)
	}
	return s.prepareErr
}

func (s *stubStage) Execute(_ context.Context, item *queue.Item) error {
	if s.executeHook != nil {
		s.executeHook(item)
	}
	return s.executeErr
}

func (s *stubStage) HealthCheck(context.Context) stage.Health {
	return s.health
}

type queueCompletion struct {
	processed int
	failed    int
}

// recordingNotifier captures published events for assertions. Both lanes
// publish concurrently, so access is mutex-guarded.
type recordingNotifier struct {
	mu             sync.Mutex
	events         []notifications.Event
	queueStarts    []int
	queueCompletes []queueCompletion
	errorContexts  []string
}

func (r *recordingNotifier) Publish(_ context.Context, event notifications.Event, payload notifications.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	switch event {
	case notifications.EventQueueStarted:
		count, _ := payload["count"].(int)
		r.queueStarts = append(r.queueStarts, count)
	case notifications.EventQueueCompleted:
		processed, _ := payload["processed"].(int)
		failed, _ := payload["failed"].(int)
		r.queueCompletes = append(r.queueCompletes, queueCompletion{processed: processed, failed: failed})
	case notifications.EventError:
		label, _ := payload["context"].(string)
		r.errorContexts = append(r.errorContexts, label)
	}
	return nil
}

func (r *recordingNotifier) queueStartCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queueStarts)
}

func (r *recordingNotifier) queueCompleteCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queueCompletes)
}

func (r *recordingNotifier) countEvent(event notifications.Event) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, evt := range r.events {
		if evt == event {
			total++
		}
	}
	return total
}

// fixedPageFetcher returns the same page for every request.
type fixedPageFetcher struct {
	mu    sync.Mutex
	page  *fetch.Page
	calls int
}

func (f *fixedPageFetcher) FetchPage(context.Context, string, string) (*fetch.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	page := *f.page
	return &page, nil
}

func (f *fixedPageFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fixedModel answers every extraction round with the same scripted reply and
// keeps the last prompt pair for assertions.
type fixedModel struct {
	mu         sync.Mutex
	reply      string
	calls      int
	lastSystem string
	lastUser   string
}

func (m *fixedModel) GenerateJSON(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastSystem = systemPrompt
	m.lastUser = userPrompt
	return m.reply, nil
}

func (m *fixedModel) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *fixedModel) lastPrompts() (string, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastSystem, m.lastUser
}

func agencyPage() *fetch.Page {
	return &fetch.Page{
		URL:      "https://agency.org/",
		BaseHost: "agency.org",
		Title:    "Helping Hands Network",
		Text:     "Helping Hands Network\nFood and housing assistance for Springfield residents.",
		Links: []string{
			"https://agency.org/services",
			"https://agency.org/contact",
		},
	}
}
