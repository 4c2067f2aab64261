// Package agent runs individual review tasks against the text-generation
// capability: retry of transient failures, the failure taxonomy, and
// result memoization.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/ShayCichocki/panel/internal/api"
	"github.com/ShayCichocki/panel/internal/config"
	"github.com/ShayCichocki/panel/pkg/models"
)

// Task is one runnable unit: a descriptor's instructions bound to the tier
// resolved for this run.
type Task struct {
	ID           models.TaskID
	Instructions string
	Tier         models.Tier
	Temperature  float64
}

// Output is a successful task run.
type Output struct {
	Text     string
	Model    string
	Attempts int
	// Cached is true when the text came from a previous identical call.
	Cached bool
}

// Runner executes a task against an input message. Failures are always a
// *TaskError.
type Runner interface {
	Run(ctx context.Context, task Task, message string) (Output, error)
}

// RetryPolicy bounds retries of transient failures.
type RetryPolicy struct {
	// Attempts is the total number of calls, including the first.
	Attempts int
	// Initial is the wait before the second attempt; each later wait doubles.
	Initial time.Duration
	// Max caps a single wait.
	Max time.Duration
}

// DefaultRetryPolicy is three attempts with waits starting at 4s capped at 60s.
var DefaultRetryPolicy = RetryPolicy{Attempts: 3, Initial: 4 * time.Second, Max: 60 * time.Second}

// RetryPolicyFromConfig converts configured units into durations.
func RetryPolicyFromConfig(cfg config.RetryConfig) RetryPolicy {
	return RetryPolicy{
		Attempts: cfg.Attempts,
		Initial:  cfg.InitialInterval(),
		Max:      cfg.MaxInterval(),
	}
}

// RunnerConfig configures a TaskRunner.
type RunnerConfig struct {
	Models    ModelSet
	Retry     RetryPolicy
	MaxTokens int64
}

// TaskRunner executes tasks with retry on transient failures.
type TaskRunner struct {
	gen       api.Generator
	models    ModelSet
	retry     RetryPolicy
	maxTokens int64
	logger    *slog.Logger

	// notify observes every scheduled retry wait.
	notify func(id models.TaskID, err error, wait time.Duration)
}

// NewTaskRunner creates a TaskRunner.
func NewTaskRunner(gen api.Generator, cfg RunnerConfig, logger *slog.Logger) *TaskRunner {
	if cfg.Models == nil {
		cfg.Models = TierDefaultModels
	}
	if cfg.Retry.Attempts < 1 {
		cfg.Retry = DefaultRetryPolicy
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = api.DefaultMaxTokens
	}
	return &TaskRunner{
		gen:       gen,
		models:    cfg.Models,
		retry:     cfg.Retry,
		maxTokens: cfg.MaxTokens,
		logger:    logger.With("component", "task_runner"),
	}
}

// Run issues the task's request. Blank messages fail with EmptyInput and no
// call. Transient errors are retried with exponential backoff; anything
// else fails immediately as RequestRejected. A context deadline reached
// while retrying counts as ExhaustedRetries.
func (r *TaskRunner) Run(ctx context.Context, task Task, message string) (Output, error) {
	if strings.TrimSpace(message) == "" {
		return Output{}, &TaskError{Kind: models.FailureEmptyInput, TaskID: task.ID}
	}

	model := r.models.SelectModel(task.Tier)
	req := api.Request{
		Model:       model,
		System:      task.Instructions,
		Prompt:      message,
		Temperature: task.Temperature,
		MaxTokens:   r.maxTokens,
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.retry.Initial
	b.MaxInterval = r.retry.Max
	b.Multiplier = 2
	b.RandomizationFactor = 0

	attempts := 0
	var lastErr error
	op := func() (string, error) {
		attempts++
		resp, err := r.gen.Generate(ctx, req)
		if err == nil {
			return resp.Text, nil
		}
		lastErr = err
		if !api.IsTransient(err) {
			return "", backoff.Permanent(err)
		}
		return "", err
	}

	text, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(r.retry.Attempts)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, wait time.Duration) {
			r.logger.Warn("transient failure, retrying",
				"task", task.ID, "attempt", attempts, "wait", wait, "error", err)
			if r.notify != nil {
				r.notify(task.ID, err, wait)
			}
		}),
	)
	if err == nil {
		r.logger.Debug("task succeeded", "task", task.ID, "model", model, "attempts", attempts)
		return Output{Text: text, Model: model, Attempts: attempts}, nil
	}

	if lastErr == nil {
		lastErr = err
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return Output{}, &TaskError{
			Kind:     models.FailureExhaustedRetries,
			TaskID:   task.ID,
			Attempts: attempts,
			Err:      fmt.Errorf("%w (last error: %v)", ctxErr, lastErr),
		}
	}
	if !api.IsTransient(lastErr) {
		return Output{}, &TaskError{Kind: models.FailureRequestRejected, TaskID: task.ID, Attempts: attempts, Err: lastErr}
	}
	return Output{}, &TaskError{Kind: models.FailureExhaustedRetries, TaskID: task.ID, Attempts: attempts, Err: lastErr}
}

// IsFailureKind reports whether err is a TaskError of the given kind.
func IsFailureKind(err error, kind models.FailureKind) bool {
	var te *TaskError
	return errors.As(err, &te) && te.Kind == kind
}
