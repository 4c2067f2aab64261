package orchestrator

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ShayCichocki/panel/internal/agent"
	"github.com/ShayCichocki/panel/pkg/models"
)

// fanOut runs every task against the same message and returns once each has
// a result. The group has no shared context, so one failure never cancels
// its siblings; concurrency is bounded by the pool.
func (o *Orchestrator) fanOut(ctx context.Context, runID string, tasks []agent.Task, message string) models.ResultMap {
	results := make([]models.TaskResult, len(tasks))

	var g errgroup.Group
	for i, task := range tasks {
		g.Go(func() error {
			results[i] = o.runTask(ctx, runID, task, message)
			return nil
		})
	}
	_ = g.Wait()

	m := make(models.ResultMap, len(results))
	for _, r := range results {
		m[r.TaskID] = r
	}
	return m
}

// runTask executes one task inside a pool slot and converts any failure into
// a result entry. The per-task timeout starts once the slot is held.
func (o *Orchestrator) runTask(ctx context.Context, runID string, task agent.Task, message string) models.TaskResult {
	res := models.TaskResult{
		TaskID: task.ID,
		Tier:   task.Tier,
		Model:  o.models.SelectModel(task.Tier),
	}
	start := time.Now()

	err := o.pool.Run(ctx, func() error {
		o.emit(OrchestratorEvent{Type: EventTaskStarted, RunID: runID, TaskID: task.ID, Tier: task.Tier})

		taskCtx, cancel := ctx, context.CancelFunc(func() {})
		if o.taskTimeout > 0 {
			taskCtx, cancel = context.WithTimeout(ctx, o.taskTimeout)
		}
		defer cancel()

		out, err := o.runner.Run(taskCtx, task, message)
		if err != nil {
			return err
		}
		res.Content = out.Text
		res.Model = out.Model
		res.Attempts = out.Attempts
		return nil
	})

	res.Duration = time.Since(start)
	res.CompletedAt = time.Now()

	if err != nil {
		res.Failure = agent.AsFailure(err)
		var te *agent.TaskError
		if errors.As(err, &te) {
			res.Attempts = te.Attempts
		}
		o.logger.Warn("task failed",
			"run", runID, "task", task.ID, "tier", task.Tier,
			"kind", res.Failure.Kind, "error", res.Failure.Message)
		o.emit(OrchestratorEvent{
			Type: EventTaskFailed, RunID: runID, TaskID: task.ID, Tier: task.Tier,
			Error: err, Duration: res.Duration,
		})
		return res
	}

	o.logger.Info("task completed",
		"run", runID, "task", task.ID, "tier", task.Tier, "model", res.Model,
		"chars", len(res.Content), "duration", res.Duration.Round(time.Millisecond))
	o.emit(OrchestratorEvent{
		Type: EventTaskCompleted, RunID: runID, TaskID: task.ID, Tier: task.Tier,
		Duration: res.Duration,
	})
	return res
}
