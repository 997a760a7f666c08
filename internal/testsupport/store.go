package testsupport

import (
	"context"
	"testing"

	"canvass/internal/config"
	"canvass/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewSeed creates a new queue item for tests using the provided store.
func NewSeed(t testing.TB, store *queue.Store, seedURL, agencyName string) *queue.Item {
	t.Helper()

	item, err := store.NewSeed(context.Background(), seedURL, agencyName, "")
	if err != nil {
		t.Fatalf("store.NewSeed: %v", err)
	}
	return item
}
