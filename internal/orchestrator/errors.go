package orchestrator

import (
	"errors"
	"fmt"
)

// ErrPipelineFatal matches every FatalError via errors.Is.
var ErrPipelineFatal = errors.New("pipeline fatal")

// FatalError reports an input condition that makes a run impossible. It is
// the only error Run returns for invalid input; per-task failures are
// recorded in the result map instead.
type FatalError struct {
	Stage  Stage
	Reason string
}

func (e *FatalError) Error() string {
	if e.Stage == "" {
		return fmt.Sprintf("%v: %s", ErrPipelineFatal, e.Reason)
	}
	return fmt.Sprintf("%v at %s: %s", ErrPipelineFatal, e.Stage, e.Reason)
}

// Is reports whether target is ErrPipelineFatal.
func (e *FatalError) Is(target error) bool {
	return target == ErrPipelineFatal
}

func fatal(stage Stage, format string, args ...any) error {
	return &FatalError{Stage: stage, Reason: fmt.Sprintf(format, args...)}
}

// IsFatal reports whether err is a pipeline-fatal condition.
func IsFatal(err error) bool {
	return errors.Is(err, ErrPipelineFatal)
}
