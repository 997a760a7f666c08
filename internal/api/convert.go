package api

import (
	"encoding/json"
	"slices"
	"strings"
	"time"

	"canvass/internal/profile"
	"canvass/internal/queue"
	"canvass/internal/stage"
	"canvass/internal/workflow"
)

// FromQueueItem converts a queue record to its API representation.
func FromQueueItem(item *queue.Item) QueueItem {
	if item == nil {
		return QueueItem{}
	}

	dto := QueueItem{
		ID:             item.ID,
		AgencyName:     item.AgencyName,
		SeedURL:        item.SeedURL,
		SiteHost:       item.SiteHost,
		CustomQuery:    strings.TrimSpace(item.CustomQuery),
		Status:         string(item.Status),
		ProcessingLane: string(queue.LaneForItem(item)),
		Progress: QueueProgress{
			Stage:   item.ProgressStage,
			Percent: item.ProgressPercent,
			Message: item.ProgressMessage,
		},
		ErrorMessage:      item.ErrorMessage,
		ReportPath:        item.ReportPath,
		BackgroundLogPath: item.BackgroundLogPath,
		NeedsReview:       item.NeedsReview,
		ReviewReason:      item.ReviewReason,
	}
	normalizeProgress(item, &dto.Progress)

	if !item.CreatedAt.IsZero() {
		dto.CreatedAt = item.CreatedAt.UTC().Format(dateTimeFormat)
	}
	if !item.UpdatedAt.IsZero() {
		dto.UpdatedAt = item.UpdatedAt.UTC().Format(dateTimeFormat)
	}
	if raw := strings.TrimSpace(item.ProfileJSON); raw != "" {
		dto.ProfileData = json.RawMessage(raw)
	}
	dto.Profile = deriveProfileSummary(item)
	return dto
}

// FromQueueItems converts a slice of queue records into API DTOs.
func FromQueueItems(items []*queue.Item) []QueueItem {
	if len(items) == 0 {
		return nil
	}
	out := make([]QueueItem, 0, len(items))
	for _, item := range items {
		out = append(out, FromQueueItem(item))
	}
	return out
}

// FromStatusSummary converts a workflow status summary to API payload.
func FromStatusSummary(summary workflow.StatusSummary) WorkflowStatus {
	healthNames := make([]string, 0, len(summary.StageHealth))
	for name := range summary.StageHealth {
		healthNames = append(healthNames, name)
	}
	slices.Sort(healthNames)

	health := make([]StageHealth, 0, len(healthNames))
	for _, name := range healthNames {
		h := summary.StageHealth[name]
		health = append(health, StageHealth{
			Name:   name,
			Ready:  h.Ready,
			Detail: h.Detail,
		})
	}

	stats := make(map[string]int, len(summary.QueueStats))
	for status, count := range summary.QueueStats {
		stats[string(status)] = count
	}

	wf := WorkflowStatus{
		Running:     summary.Running,
		QueueStats:  stats,
		StageHealth: health,
	}

	if summary.LastError != "" {
		wf.LastError = summary.LastError
	}
	if summary.LastItem != nil {
		last := FromQueueItem(summary.LastItem)
		wf.LastItem = &last
	}
	return wf
}

// MergeQueueStats produces a string-keyed representation of queue stats.
func MergeQueueStats(stats map[queue.Status]int) map[string]int {
	out := make(map[string]int, len(stats))
	for status, count := range stats {
		out[string(status)] = count
	}
	return out
}

// StageHealthSlice converts a stage health map into a deterministic slice.
func StageHealthSlice(health map[string]stage.Health) []StageHealth {
	if len(health) == 0 {
		return nil
	}
	names := make([]string, 0, len(health))
	for name := range health {
		names = append(names, name)
	}
	slices.Sort(names)

	out := make([]StageHealth, 0, len(names))
	for _, name := range names {
		h := health[name]
		out = append(out, StageHealth{Name: name, Ready: h.Ready, Detail: h.Detail})
	}
	return out
}

// FormatTime converts a time to RFC3339 or returns empty string.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}

// normalizeProgress fills in display defaults so consumers never see a blank
// stage. Completed items collapse to a terminal stage unless they finished in
// review, where the review stage label carries the useful information.
func normalizeProgress(item *queue.Item, progress *QueueProgress) {
	if item.Status == queue.StatusCompleted && !item.NeedsReview {
		progress.Stage = "Completed"
		progress.Percent = 100
		return
	}
	if strings.TrimSpace(progress.Stage) == "" {
		progress.Stage = titleForStatus(item.Status)
	}
}

// titleForStatus renders a status enum as a display stage label.
func titleForStatus(status queue.Status) string {
	s := string(status)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// deriveProfileSummary condenses the stored profile and crawl state into the
// counts surfaced by list and show views. Items that have not produced any
// profile data yet yield nil so the field stays absent from payloads.
func deriveProfileSummary(item *queue.Item) *ProfileSummary {
	if item == nil || strings.TrimSpace(item.ProfileJSON) == "" {
		return nil
	}
	prof, err := profile.Parse(item.ProfileJSON)
	if err != nil {
		return nil
	}
	if len(prof.Agency) == 0 && len(prof.Sites) == 0 && len(prof.Services) == 0 && len(prof.Custom) == 0 {
		return nil
	}

	completeness := prof.Completeness()
	summary := &ProfileSummary{
		AgencyName:   strings.TrimSpace(prof.Agency[profile.FieldAgencyName]),
		Completeness: completeness.Score,
		FilledFields: completeness.Filled,
		TotalFields:  completeness.Total,
		Sites:        len(prof.Sites),
		Services:     len(prof.Services),
		CustomFields: len(prof.Custom),
		Missing:      completeness.Missing,
	}
	if len(prof.SourceURLs) > 0 {
		summary.SourceURLs = slices.Clone(prof.SourceURLs)
	}
	if state, err := profile.ParseCrawlState(item.CrawlStateJSON); err == nil {
		summary.PagesVisited = len(state.Visited)
	}
	return summary
}
