package agent

import (
	"errors"
	"fmt"

	"github.com/ShayCichocki/panel/pkg/models"
)

// Sentinel errors, one per failure kind, for use with errors.Is.
var (
	ErrEmptyInput       = errors.New("empty input message")
	ErrRequestRejected  = errors.New("request rejected")
	ErrExhaustedRetries = errors.New("retries exhausted")
)

// TaskError is the typed failure returned by a Runner.
type TaskError struct {
	Kind     models.FailureKind
	TaskID   models.TaskID
	Attempts int
	// Err is the last underlying error, nil for empty input.
	Err error
}

func (e *TaskError) Error() string {
	switch e.Kind {
	case models.FailureEmptyInput:
		return fmt.Sprintf("%s: %v", e.TaskID, ErrEmptyInput)
	case models.FailureRequestRejected:
		return fmt.Sprintf("%s: %v: %v", e.TaskID, ErrRequestRejected, e.Err)
	default:
		return fmt.Sprintf("%s: %v after %d attempt(s): %v", e.TaskID, ErrExhaustedRetries, e.Attempts, e.Err)
	}
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *TaskError) Unwrap() []error {
	errs := []error{sentinel(e.Kind)}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Failure converts the error into the descriptor stored in a result.
func (e *TaskError) Failure() *models.TaskFailure {
	msg := ErrEmptyInput.Error()
	if e.Err != nil {
		msg = e.Err.Error()
	}
	return &models.TaskFailure{Kind: e.Kind, Message: msg}
}

func sentinel(kind models.FailureKind) error {
	switch kind {
	case models.FailureEmptyInput:
		return ErrEmptyInput
	case models.FailureRequestRejected:
		return ErrRequestRejected
	default:
		return ErrExhaustedRetries
	}
}

// AsFailure converts any runner error into a failure descriptor. Errors
// that are not a TaskError are reported as exhausted retries.
func AsFailure(err error) *models.TaskFailure {
	var te *TaskError
	if errors.As(err, &te) {
		return te.Failure()
	}
	return &models.TaskFailure{Kind: models.FailureExhaustedRetries, Message: err.Error()}
}
