package queue

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// rollbackCase renders a CASE expression mapping each in-flight status to the
// start of its stage, along with the bound arguments.
func rollbackCase(transitions []statusTransition) (string, []any) {
	var sb strings.Builder
	args := make([]any, 0, len(transitions)*2)
	sb.WriteString("CASE status")
	for _, tr := range transitions {
		sb.WriteString(" WHEN ? THEN ?")
		args = append(args, tr.from, tr.to)
	}
	sb.WriteString(" ELSE status END")
	return sb.String(), args
}

// ResetStuckProcessing resets items in processing states back to the start of their current stage.
func (s *Store) ResetStuckProcessing(ctx context.Context) (int64, error) {
	transitions := processingRollbackTransitions()
	caseExpr, args := rollbackCase(transitions)
	args = append(args, time.Now().UTC().Format(time.RFC3339Nano))
	for _, tr := range transitions {
		args = append(args, tr.from)
	}

	query := `UPDATE queue_items
         SET status = ` + caseExpr + `,
             progress_stage = 'Reset from stuck processing',
             progress_percent = 0, progress_message = NULL, last_heartbeat = NULL, updated_at = ?
         WHERE status IN (` + makePlaceholders(len(transitions)) + `)`
	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("reset stuck items: %w", err)
	}
	return res.RowsAffected()
}

// ParkForShutdown rolls in-flight items back to the start of their stage so
// the next daemon run picks them up again. The shutdown reason is stamped on
// progress so status views explain why the item is no longer moving.
func (s *Store) ParkForShutdown(ctx context.Context) (int64, error) {
	transitions := processingRollbackTransitions()
	caseExpr, args := rollbackCase(transitions)
	args = append(args, DaemonStopReason, time.Now().UTC().Format(time.RFC3339Nano))
	for _, tr := range transitions {
		args = append(args, tr.from)
	}

	query := `UPDATE queue_items
         SET status = ` + caseExpr + `,
             progress_stage = ?,
             progress_percent = 0, progress_message = NULL, last_heartbeat = NULL, updated_at = ?
         WHERE status IN (` + makePlaceholders(len(transitions)) + `)`
	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("park items for shutdown: %w", err)
	}
	return res.RowsAffected()
}

// UpdateHeartbeat updates the last heartbeat timestamp for an in-flight item.
func (s *Store) UpdateHeartbeat(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE queue_items SET last_heartbeat = ?, updated_at = ? WHERE id = ?`,
		now.Format(time.RFC3339Nano),
		now.Format(time.RFC3339Nano),
		id,
	); err != nil {
		return fmt.Errorf("update heartbeat: %w", err)
	}
	return nil
}

// ReclaimStaleProcessing returns items stuck in processing back to the start of
// their current stage when heartbeats expire. When statuses are provided only
// those processing states are considered; otherwise all of them are.
func (s *Store) ReclaimStaleProcessing(ctx context.Context, cutoff time.Time, statuses ...Status) (int64, error) {
	transitions := processingRollbackTransitions()
	if len(statuses) > 0 {
		requested := make(map[Status]struct{}, len(statuses))
		for _, status := range statuses {
			requested[status] = struct{}{}
		}
		filtered := transitions[:0:0]
		for _, tr := range transitions {
			if _, ok := requested[tr.from]; ok {
				filtered = append(filtered, tr)
			}
		}
		transitions = filtered
	}
	if len(transitions) == 0 {
		return 0, nil
	}

	caseExpr, args := rollbackCase(transitions)
	args = append(args, time.Now().UTC().Format(time.RFC3339Nano))
	for _, tr := range transitions {
		args = append(args, tr.from)
	}
	args = append(args, cutoff.UTC().Format(time.RFC3339Nano))

	query := `UPDATE queue_items
        SET status = ` + caseExpr + `,
            progress_stage = 'Reclaimed from stale processing',
            progress_percent = 0, progress_message = NULL, last_heartbeat = NULL, updated_at = ?
        WHERE status IN (` + makePlaceholders(len(transitions)) + `) AND last_heartbeat IS NOT NULL AND last_heartbeat < ?`
	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("reclaim stale items: %w", err)
	}
	return res.RowsAffected()
}

// RetryFailed moves failed and review items back to pending for reprocessing.
// Review flags are cleared so the retried run starts fresh.
func (s *Store) RetryFailed(ctx context.Context, ids ...int64) (int64, error) {
	if len(ids) == 0 {
		res, err := s.execWithRetry(
			ctx,
			`UPDATE queue_items
            SET status = ?, progress_stage = 'Retry requested', progress_percent = 0,
                progress_message = NULL, error_message = NULL, needs_review = 0,
                review_reason = NULL, updated_at = ?
            WHERE status IN (?, ?)`,
			StatusPending,
			time.Now().UTC().Format(time.RFC3339Nano),
			StatusFailed,
			StatusReview,
		)
		if err != nil {
			return 0, fmt.Errorf("retry failed items: %w", err)
		}
		return res.RowsAffected()
	}

	placeholders := makePlaceholders(len(ids))
	args := make([]any, 0, len(ids)+4)
	args = append(args, StatusPending, time.Now().UTC().Format(time.RFC3339Nano))
	for _, id := range ids {
		args = append(args, id)
	}
	args = append(args, StatusFailed, StatusReview)
	query := `UPDATE queue_items
        SET status = ?, progress_stage = 'Retry requested', progress_percent = 0,
            progress_message = NULL, error_message = NULL, needs_review = 0,
            review_reason = NULL, updated_at = ?
        WHERE id IN (` + placeholders + `) AND status IN (?, ?)`
	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("retry selected items: %w", err)
	}
	return res.RowsAffected()
}

// StopItems parks the provided items for manual review with the user stop
// reason. Items already completed or failed are left untouched.
func (s *Store) StopItems(ctx context.Context, ids ...int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := makePlaceholders(len(ids))
	args := make([]any, 0, len(ids)+5)
	args = append(args, StatusReview, UserStopReason, UserStopReason, time.Now().UTC().Format(time.RFC3339Nano))
	for _, id := range ids {
		args = append(args, id)
	}
	args = append(args, StatusCompleted, StatusFailed)
	query := `UPDATE queue_items
        SET status = ?, needs_review = 1, review_reason = ?, progress_stage = 'Review',
            progress_percent = 0, progress_message = ?, last_heartbeat = NULL, updated_at = ?
        WHERE id IN (` + placeholders + `) AND status NOT IN (?, ?)`
	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("stop items: %w", err)
	}
	return res.RowsAffected()
}
