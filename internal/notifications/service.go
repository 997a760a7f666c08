package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"canvass/internal/config"
)

const userAgent = "Canvass-Go/0.1.0"

// Event identifies a workflow milestone that can be pushed to the operator.
type Event string

const (
	EventScoutCompleted      Event = "scout_completed"
	EventExtractionCompleted Event = "extraction_completed"
	EventCurationCompleted   Event = "curation_completed"
	EventReportWritten       Event = "report_written"
	EventQueueStarted        Event = "queue_started"
	EventQueueCompleted      Event = "queue_completed"
	EventReviewRequired      Event = "review_required"
	EventError               Event = "error"
	EventTest                Event = "test"
)

// Payload carries event-specific values used to format the outgoing message.
type Payload map[string]any

// Service defines the notification surface exposed to workflow components.
type Service interface {
	Publish(ctx context.Context, event Event, data Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		prefs:    cfg.Notifications,
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	prefs    config.Notifications
}

func (n *ntfyService) Publish(ctx context.Context, event Event, data Payload) error {
	if !n.wants(event, data) {
		return nil
	}
	msg, err := format(event, data)
	if err != nil {
		return err
	}
	return n.send(ctx, msg)
}

// wants applies the per-event config toggles. Queue events are additionally
// suppressed when the batch is smaller than queue_min_items.
func (n *ntfyService) wants(event Event, data Payload) bool {
	switch event {
	case EventScoutCompleted:
		return n.prefs.Scout
	case EventExtractionCompleted:
		return n.prefs.Extraction
	case EventCurationCompleted:
		return n.prefs.Curation
	case EventReportWritten:
		return n.prefs.Report
	case EventQueueStarted:
		return n.prefs.Queue && payloadInt(data, "count") >= n.prefs.QueueMinItems
	case EventQueueCompleted:
		total := payloadInt(data, "processed") + payloadInt(data, "failed")
		return n.prefs.Queue && total >= n.prefs.QueueMinItems
	case EventReviewRequired:
		return n.prefs.Review
	case EventError:
		return n.prefs.Errors
	default:
		return true
	}
}

func format(event Event, data Payload) (message, error) {
	switch event {
	case EventScoutCompleted:
		host := payloadString(data, "host")
		if host == "" {
			host = "unknown"
		}
		return message{
			title: "Canvass - Scouted",
			body:  fmt.Sprintf("🔎 Scouted: %s (%s)", payloadString(data, "agency"), host),
			tags:  []string{"canvass", "scout", "completed"},
		}, nil
	case EventExtractionCompleted:
		return message{
			title: "Canvass - Extracted",
			body:  fmt.Sprintf("📄 Extraction complete: %s (%d pages)", payloadString(data, "agency"), payloadInt(data, "pages")),
			tags:  []string{"canvass", "extract", "completed"},
		}, nil
	case EventCurationCompleted:
		return message{
			title: "Canvass - Curated",
			body:  fmt.Sprintf("📋 Curated: %s (%d%% complete)", payloadString(data, "agency"), payloadInt(data, "completeness")),
			tags:  []string{"canvass", "curate", "completed"},
		}, nil
	case EventReportWritten:
		body := fmt.Sprintf("✅ Report ready: %s", payloadString(data, "agency"))
		if file := payloadString(data, "reportFile"); file != "" {
			body = fmt.Sprintf("%s\nFile: %s", body, file)
		}
		return message{
			title:    "Canvass - Report Ready",
			body:     body,
			tags:     []string{"canvass", "report", "completed"},
			priority: "high",
		}, nil
	case EventQueueStarted:
		return message{
			title: "Canvass - Queue Started",
			body:  fmt.Sprintf("Started processing queue with %d items", payloadInt(data, "count")),
			tags:  []string{"canvass", "queue", "started"},
		}, nil
	case EventQueueCompleted:
		return formatQueueCompleted(data), nil
	case EventReviewRequired:
		reason := payloadString(data, "reason")
		if reason == "" {
			reason = "Manual review required"
		}
		return message{
			title: "Canvass - Review Required",
			body:  fmt.Sprintf("Needs review: %s\n%s", payloadString(data, "agency"), reason),
			tags:  []string{"canvass", "review", "required"},
		}, nil
	case EventError:
		return formatError(data), nil
	case EventTest:
		return message{
			title:    "Canvass - Test",
			body:     "🧪 Notification system test",
			tags:     []string{"canvass", "test"},
			priority: "low",
		}, nil
	default:
		return message{}, fmt.Errorf("unknown notification event %q", event)
	}
}

func formatQueueCompleted(data Payload) message {
	processed := payloadInt(data, "processed")
	failed := payloadInt(data, "failed")
	duration := payloadDuration(data, "duration").Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	durationText := duration.String()
	if duration == 0 {
		durationText = "0s"
	}

	title := "Canvass - Queue Complete"
	body := fmt.Sprintf("Queue processing complete: %d items processed in %s", processed, durationText)
	if failed > 0 {
		title = "Canvass - Queue Complete (with errors)"
		body = fmt.Sprintf("Queue processing complete: %d succeeded, %d failed in %s", processed, failed, durationText)
	}
	return message{
		title: title,
		body:  body,
		tags:  []string{"canvass", "queue", "completed"},
	}
}

func formatError(data Payload) message {
	var builder strings.Builder
	builder.WriteString("❌ Error")
	if contextLabel := payloadString(data, "context"); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if errText := payloadString(data, "error"); errText != "" {
		builder.WriteString(errText)
	} else {
		builder.WriteString("unknown")
	}
	return message{
		title:    "Canvass - Error",
		body:     builder.String(),
		tags:     []string{"canvass", "error", "alert"},
		priority: "high",
	}
}

func payloadString(data Payload, key string) string {
	if data == nil {
		return ""
	}
	switch value := data[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(value)
	case error:
		return strings.TrimSpace(value.Error())
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", value))
	}
}

func payloadInt(data Payload, key string) int {
	if data == nil {
		return 0
	}
	switch value := data[key].(type) {
	case int:
		return value
	case int64:
		return int(value)
	case float64:
		return int(value)
	default:
		return 0
	}
}

func payloadDuration(data Payload, key string) time.Duration {
	if data == nil {
		return 0
	}
	if value, ok := data[key].(time.Duration); ok {
		return value
	}
	return 0
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if msg.title != "" {
		req.Header.Set("Title", msg.title)
	}
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" && msg.priority != "default" {
		req.Header.Set("Priority", msg.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
