package orchestrator

import (
	"time"

	"github.com/ShayCichocki/panel/pkg/models"
)

// Stage names a step of the review pipeline.
type Stage string

const (
	StageAssess        Stage = "assess"
	StageBuildTasks    Stage = "build_tasks"
	StageFanOutPrimary Stage = "fan_out_primary"
	StageAggregate     Stage = "aggregate"
	StageSummarize     Stage = "summarize"
	StageDecide        Stage = "decide"
	StageSynthesize    Stage = "synthesize"
)

// Stages lists the pipeline in execution order.
var Stages = []Stage{
	StageAssess,
	StageBuildTasks,
	StageFanOutPrimary,
	StageAggregate,
	StageSummarize,
	StageDecide,
	StageSynthesize,
}

// EventType represents the type of orchestrator event.
type EventType string

const (
	// EventStageStarted indicates a pipeline stage has begun.
	EventStageStarted EventType = "stage_started"
	// EventStageCompleted indicates every task of a stage has a result.
	EventStageCompleted EventType = "stage_completed"
	// EventTaskStarted indicates a task acquired a slot and is running.
	EventTaskStarted EventType = "task_started"
	// EventTaskCompleted indicates a task produced content.
	EventTaskCompleted EventType = "task_completed"
	// EventTaskFailed indicates a task ended with a failure entry.
	EventTaskFailed EventType = "task_failed"
	// EventAssessmentDegraded indicates the complexity default was used.
	EventAssessmentDegraded EventType = "assessment_degraded"
	// EventRunDone indicates the decision artifact is ready.
	EventRunDone EventType = "run_done"
)

// OrchestratorEvent represents an event emitted by the orchestrator.
type OrchestratorEvent struct {
	Type      EventType
	RunID     string
	Stage     Stage
	TaskID    models.TaskID
	Tier      models.Tier
	Message   string
	Error     error
	Duration  time.Duration
	Timestamp time.Time
}
