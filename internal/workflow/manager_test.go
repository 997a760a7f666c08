package workflow_test

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"canvass/internal/logging"
	"canvass/internal/queue"
	"canvass/internal/services"
	"canvass/internal/stage"
	"canvass/internal/testsupport"
	"canvass/internal/workflow"
)

func TestManagerProcessesItems(t *testing.T) {
	cfg := newWorkflowConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	scout := newStubStage("scout")
	extractor := newStubStage("extractor")
	curator := newStubStage("curator")
	reporter := newStubStage("reporter")

	notifier := &recordingNotifier{}
	mgr := workflow.NewManagerWithNotifier(cfg, store, logging.NewNop(), notifier)
	mgr.ConfigureStages(workflow.StageSet{
		Scout:     scout,
		Extractor: extractor,
		Curator:   curator,
		Reporter:  reporter,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := mgr.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() { mgr.Stop() })

	item := testsupport.NewSeed(t, store, "https://agency.org", "Helping Hands Network")

	updated := waitForStatus(t, store, item.ID, queue.StatusCompleted, 60*time.Second)
	if updated.ProgressStage != "Completed" {
		t.Fatalf("expected progress stage 'Completed', got %s", updated.ProgressStage)
	}

	if got := notifier.queueStartCount(); got != 1 {
		t.Fatalf("expected one queue start notification, got %d", got)
	}
	deadline := time.After(10 * time.Second)
	for notifier.queueCompleteCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("expected queue completion notification")
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
}

func TestManagerStatusIncludesStageHealth(t *testing.T) {
	cfg := newWorkflowConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	handler := newStubStage("scout")
	handler.health = stage.Unhealthy(handler.name, "ollama unreachable")

	mgr := workflow.NewManager(cfg, store, logging.NewNop())
	mgr.ConfigureStages(workflow.StageSet{Scout: handler})

	status := mgr.Status(context.Background())
	health, ok := status.StageHealth[handler.name]
	if !ok {
		t.Fatalf("expected stage health entry for %s", handler.name)
	}
	if health.Ready {
		t.Fatalf("expected not ready health, got %+v", health)
	}
	if health.Detail != handler.health.Detail {
		t.Fatalf("expected detail %q, got %q", handler.health.Detail, health.Detail)
	}
}

func TestManagerFailureRoutesValidationToReview(t *testing.T) {
	cfg := newWorkflowConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	hint := "Rerun with a different seed URL"
	stageErr := services.WithHint(
		services.Wrap(services.ErrValidation, "extractor", "execute", "page yielded no readable text", nil),
		hint,
	)
	failing := newStubStage("extractor")
	failing.executeErr = stageErr

	mgr := workflow.NewManager(cfg, store, logging.NewNop())
	mgr.ConfigureStages(workflow.StageSet{Extractor: failing})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := mgr.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() { mgr.Stop() })

	item := testsupport.NewSeed(t, store, "https://agency.org", "Helping Hands Network")
	item.Status = queue.StatusScouted
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	updated := waitForStatus(t, store, item.ID, queue.StatusReview, 30*time.Second)
	if updated.ProgressStage != "Review" {
		t.Fatalf("expected progress stage 'Review', got %s", updated.ProgressStage)
	}
	if !updated.NeedsReview {
		t.Fatal("expected needs-review flag to be set")
	}
	if !strings.Contains(updated.ErrorMessage, "[validation]") {
		t.Fatalf("expected validation code in error message, got %s", updated.ErrorMessage)
	}
	if updated.ProgressMessage != hint {
		t.Fatalf("expected hint in progress message, got %s", updated.ProgressMessage)
	}
}

func TestManagerFailureDefaultsToFailed(t *testing.T) {
	cfg := newWorkflowConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	failing := newStubStage("extractor")
	failing.executeErr = fmt.Errorf("boom")

	mgr := workflow.NewManager(cfg, store, logging.NewNop())
	mgr.ConfigureStages(workflow.StageSet{Extractor: failing})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := mgr.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() { mgr.Stop() })

	item := testsupport.NewSeed(t, store, "https://agency.org", "Helping Hands Network")
	item.Status = queue.StatusScouted
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	updated := waitForStatus(t, store, item.ID, queue.StatusFailed, 30*time.Second)
	if updated.ProgressStage != "Failed" {
		t.Fatalf("expected progress stage 'Failed', got %s", updated.ProgressStage)
	}
	if updated.ErrorMessage == "" {
		t.Fatal("expected error message to be populated")
	}
}

func TestManagerPreflightBlocksProcessing(t *testing.T) {
	cfg := newWorkflowConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	scout := newStubStage("scout")
	mgr := workflow.NewManager(cfg, store, logging.NewNop())
	mgr.ConfigureStages(workflow.StageSet{Scout: scout})

	if err := os.RemoveAll(cfg.Paths.StagingDir); err != nil {
		t.Fatalf("RemoveAll failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := mgr.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() { mgr.Stop() })

	item := testsupport.NewSeed(t, store, "https://agency.org", "Helping Hands Network")

	deadline := time.After(30 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for preflight failure to surface")
		default:
		}
		status := mgr.Status(ctx)
		if strings.Contains(status.LastError, "preflight checks failed") {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	updated, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if updated.Status != queue.StatusPending {
		t.Fatalf("expected item to stay pending behind failed preflight, got %s", updated.Status)
	}
}
