package daemon_test

import (
	"context"
	"testing"
	"time"

	"canvass/internal/daemon"
	"canvass/internal/logging"
	"canvass/internal/queue"
	"canvass/internal/stage"
	"canvass/internal/testsupport"
	"canvass/internal/workflow"
)

type noopStage struct{}

func (noopStage) Prepare(context.Context, *queue.Item) error { return nil }
func (noopStage) Execute(context.Context, *queue.Item) error { return nil }
func (noopStage) HealthCheck(context.Context) stage.Health {
	return stage.Healthy("noop")
}

func newTestDaemon(t *testing.T) (*daemon.Daemon, *queue.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	cfg.Paths.APIBind = ""
	store := testsupport.MustOpenStore(t, cfg)
	logger := logging.NewNop()
	mgr := workflow.NewManager(cfg, store, logger)
	mgr.ConfigureStages(workflow.StageSet{Scout: noopStage{}})
	d, err := daemon.New(cfg, store, logger, mgr, "", nil, nil, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		d.Stop(context.Background())
	})
	return d, store
}

func TestDaemonStartStop(t *testing.T) {
	d, _ := newTestDaemon(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	status := d.Status(ctx)
	if !status.Running {
		t.Fatal("expected daemon to report running")
	}
	if status.PID <= 0 {
		t.Fatalf("expected a real pid, got %d", status.PID)
	}

	// Second start should fail
	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second start to fail")
	}

	d.Stop(ctx)
	time.Sleep(50 * time.Millisecond)
	status = d.Status(ctx)
	if status.Running {
		t.Fatal("expected daemon to be stopped")
	}
}

func TestDaemonStopParksInFlightItems(t *testing.T) {
	d, store := newTestDaemon(t)

	ctx := context.Background()
	item := testsupport.NewSeed(t, store, "https://parkme.example.org", "Park Me")
	item.Status = queue.StatusCompiling
	item.ProgressStage = "Compiling"
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	d.Stop(ctx)

	parked, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if parked.Status != queue.StatusExtracted {
		t.Fatalf("expected rollback to extracted, got %s", parked.Status)
	}
	if parked.ProgressStage != queue.DaemonStopReason {
		t.Fatalf("expected shutdown stamp, got %q", parked.ProgressStage)
	}
}

func TestDaemonAddSeed(t *testing.T) {
	d, _ := newTestDaemon(t)

	ctx := context.Background()
	item, err := d.AddSeed(ctx, "food-bank.example.org", "", "")
	if err != nil {
		t.Fatalf("AddSeed failed: %v", err)
	}
	if item.SeedURL != "https://food-bank.example.org" {
		t.Fatalf("expected normalized url, got %q", item.SeedURL)
	}
	if item.Status != queue.StatusPending {
		t.Fatalf("expected pending item, got %s", item.Status)
	}

	if _, err := d.AddSeed(ctx, "ftp://unsupported.example.org", "", ""); err == nil {
		t.Fatal("expected unsupported scheme to be rejected")
	}
}

func TestDaemonRemoveQueueItems(t *testing.T) {
	d, store := newTestDaemon(t)

	ctx := context.Background()
	keep := testsupport.NewSeed(t, store, "https://keep.example.org", "Keep")
	drop := testsupport.NewSeed(t, store, "https://drop.example.org", "Drop")

	removed, err := d.RemoveQueueItems(ctx, []int64{drop.ID, 9999})
	if err != nil {
		t.Fatalf("RemoveQueueItems failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removal, got %d", removed)
	}

	remaining, err := d.ListQueue(ctx, nil)
	if err != nil {
		t.Fatalf("ListQueue failed: %v", err)
	}
	if len(remaining) != 1 || remaining[0].ID != keep.ID {
		t.Fatalf("unexpected remaining items: %+v", remaining)
	}

	if _, err := d.RemoveQueueItems(ctx, nil); err == nil {
		t.Fatal("expected empty id list to be rejected")
	}
}
