package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"canvass/internal/api"
	"canvass/internal/logging"
	"canvass/internal/queue"
)

type queueStoreStub struct {
	items []*queue.Item
}

func (s *queueStoreStub) List(context.Context, ...queue.Status) ([]*queue.Item, error) {
	return s.items, nil
}

func (s *queueStoreStub) Stats(context.Context) (map[queue.Status]int, error) {
	return map[queue.Status]int{queue.StatusPending: len(s.items)}, nil
}

func (s *queueStoreStub) GetByID(context.Context, int64) (*queue.Item, error) {
	if len(s.items) == 0 {
		return nil, nil
	}
	return s.items[0], nil
}

func TestAPIServerHandleQueue(t *testing.T) {
	store := &queueStoreStub{items: []*queue.Item{{ID: 1, AgencyName: "Harbor Light Center", Status: queue.StatusPending}}}
	srv := &apiServer{queueSvc: api.NewQueueService(store)}

	req := httptest.NewRequest(http.MethodGet, "/api/queue", nil)
	w := httptest.NewRecorder()
	srv.handleQueue(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	var resp api.QueueListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(resp.Items))
	}
	if resp.Items[0].AgencyName != "Harbor Light Center" {
		t.Fatalf("unexpected agency name: %q", resp.Items[0].AgencyName)
	}
}

func TestAPIServerHandleQueueItem(t *testing.T) {
	store := &queueStoreStub{items: []*queue.Item{{ID: 4, AgencyName: "Valley Outreach", Status: queue.StatusCompleted}}}
	srv := &apiServer{queueSvc: api.NewQueueService(store)}

	req := httptest.NewRequest(http.MethodGet, "/api/queue/4", nil)
	w := httptest.NewRecorder()
	srv.handleQueueItem(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	var resp api.QueueItemResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Item.ID != 4 {
		t.Fatalf("expected item 4, got %d", resp.Item.ID)
	}
}

func TestAPIServerHandleQueueItemNotFound(t *testing.T) {
	srv := &apiServer{queueSvc: api.NewQueueService(&queueStoreStub{})}

	req := httptest.NewRequest(http.MethodGet, "/api/queue/99", nil)
	w := httptest.NewRecorder()
	srv.handleQueueItem(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestAPIServerHandleLogsTail(t *testing.T) {
	hub := logging.NewStreamHub(16)
	hub.Publish(logging.LogEvent{Level: "info", Message: "first", Component: "scout"})
	hub.Publish(logging.LogEvent{Level: "info", Message: "second", Component: "extractor"})
	hub.Publish(logging.LogEvent{Level: "warn", Message: "third", Component: "scout"})

	srv := &apiServer{daemon: &Daemon{logHub: hub}}

	req := httptest.NewRequest(http.MethodGet, "/api/logs?tail=1&limit=2", nil)
	w := httptest.NewRecorder()
	srv.handleLogs(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	var resp api.LogStreamResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(resp.Events))
	}
	if resp.Events[0].Message != "second" || resp.Events[1].Message != "third" {
		t.Fatalf("unexpected tail window: %+v", resp.Events)
	}
	if resp.Next != 3 {
		t.Fatalf("expected cursor 3, got %d", resp.Next)
	}
}

func TestAPIServerHandleLogsComponentFilter(t *testing.T) {
	hub := logging.NewStreamHub(16)
	hub.Publish(logging.LogEvent{Level: "info", Message: "crawl started", Component: "scout"})
	hub.Publish(logging.LogEvent{Level: "info", Message: "fields parsed", Component: "extractor"})

	srv := &apiServer{daemon: &Daemon{logHub: hub}}

	req := httptest.NewRequest(http.MethodGet, "/api/logs?component=extractor", nil)
	w := httptest.NewRecorder()
	srv.handleLogs(w, req)

	var resp api.LogStreamResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Events) != 1 {
		t.Fatalf("expected 1 event after filtering, got %d", len(resp.Events))
	}
	if resp.Events[0].Component != "extractor" {
		t.Fatalf("unexpected component: %q", resp.Events[0].Component)
	}
}
