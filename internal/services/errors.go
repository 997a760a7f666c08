package services

import (
	"errors"
	"fmt"
	"strings"

	"canvass/internal/queue"
)

var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")
)

// Kind classifies a stage failure for structured logging and review routing.
type Kind string

const (
	KindExternalTool  Kind = "external_tool"
	KindValidation    Kind = "validation"
	KindConfiguration Kind = "configuration"
	KindNotFound      Kind = "not_found"
	KindTimeout       Kind = "timeout"
	KindTransient     Kind = "transient"
)

// StageError carries the structured context recorded by Wrap. Stage code never
// inspects it directly; use Details to flatten any error chain.
type StageError struct {
	marker     error
	Stage      string
	Operation  string
	Message    string
	Hint       string
	DetailPath string
	Cause      error
}

func (e *StageError) Error() string {
	detail := buildDetail(e.Stage, e.Operation, e.Message)
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.marker.Error(), detail, e.Cause.Error())
	}
	return fmt.Sprintf("%s: %s", e.marker.Error(), detail)
}

func (e *StageError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.marker, e.Cause}
	}
	return []error{e.marker}
}

// Wrap builds an error that includes stage context while tagging it with the
// provided marker for later status classification. The marker should be one of
// the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	if marker == nil {
		marker = ErrTransient
	}
	return &StageError{
		marker:    marker,
		Stage:     strings.TrimSpace(stage),
		Operation: strings.TrimSpace(operation),
		Message:   strings.TrimSpace(message),
		Cause:     err,
	}
}

// WithHint attaches an operator-facing suggestion to a wrapped stage error.
// Non-stage errors are returned unchanged.
func WithHint(err error, hint string) error {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		stageErr.Hint = strings.TrimSpace(hint)
	}
	return err
}

// WithDetailPath records the on-disk artifact holding the full failure detail.
func WithDetailPath(err error, path string) error {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		stageErr.DetailPath = strings.TrimSpace(path)
	}
	return err
}

// ErrorDetails is the flattened view of a stage error used for logging and
// failure persistence.
type ErrorDetails struct {
	Kind       Kind
	Operation  string
	Message    string
	Code       string
	Hint       string
	DetailPath string
	Cause      error
}

// Details flattens an error chain into structured failure metadata. It works
// for arbitrary errors; fields absent from the chain stay empty.
func Details(err error) ErrorDetails {
	details := ErrorDetails{Kind: classify(err)}
	if err == nil {
		return details
	}
	details.Code = fmt.Sprintf("[%s]", strings.ReplaceAll(string(details.Kind), "_", " "))
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		details.Operation = stageErr.Operation
		details.Message = buildDetail(stageErr.Stage, stageErr.Operation, stageErr.Message)
		details.Hint = stageErr.Hint
		details.DetailPath = stageErr.DetailPath
		details.Cause = stageErr.Cause
		return details
	}
	details.Message = strings.TrimSpace(err.Error())
	return details
}

// FailureStatus maps a stage error to the queue status the workflow manager
// should persist after the stage fails.
func FailureStatus(err error) queue.Status {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConfiguration), errors.Is(err, ErrNotFound):
		return queue.StatusReview
	default:
		return queue.StatusFailed
	}
}

func classify(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrConfiguration):
		return KindConfiguration
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrTimeout):
		return KindTimeout
	case errors.Is(err, ErrExternalTool):
		return KindExternalTool
	default:
		return KindTransient
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
