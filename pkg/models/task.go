package models

import (
	"strings"
	"time"
)

// TaskID identifies one analysis task on the review panel.
type TaskID string

const (
	TaskMethodology   TaskID = "methodology"
	TaskResults       TaskID = "results"
	TaskLiterature    TaskID = "literature"
	TaskStructure     TaskID = "structure"
	TaskImpact        TaskID = "impact"
	TaskContradiction TaskID = "contradiction"
	TaskEthics        TaskID = "ethics"
	TaskAIOrigin      TaskID = "ai_origin"
	TaskHallucination TaskID = "hallucination"

	// TaskCoordinator aggregates every primary review.
	TaskCoordinator TaskID = "coordinator"
	// TaskSummary writes the author and editor summaries.
	TaskSummary TaskID = "author_editor_summary"
	// TaskEditor produces the final editorial decision.
	TaskEditor TaskID = "editor"
)

// Role describes which pipeline stage a task belongs to.
type Role string

const (
	// RolePrimary tasks run concurrently against the document.
	RolePrimary Role = "primary"
	// RoleAggregator folds all primary results into one assessment.
	RoleAggregator Role = "aggregator"
	// RoleSummarizer condenses reviews for authors and editors.
	RoleSummarizer Role = "summarizer"
	// RoleDecision produces the terminal artifact of a run.
	RoleDecision Role = "decision"
)

// Valid returns true if the role is a known value.
func (r Role) Valid() bool {
	switch r {
	case RolePrimary, RoleAggregator, RoleSummarizer, RoleDecision:
		return true
	default:
		return false
	}
}

// TaskDescriptor is the immutable definition of a task.
// The tier is not stored; it is derived per run from BaseWeight and the
// document's complexity score.
type TaskDescriptor struct {
	// ID is the unique task identifier.
	ID TaskID `json:"id" yaml:"id"`
	// Name is the display name of the reviewer.
	Name string `json:"name" yaml:"name"`
	// Role is the pipeline stage this task runs in.
	Role Role `json:"role" yaml:"role"`
	// Instructions is the system prompt sent with every request.
	Instructions string `json:"instructions" yaml:"instructions"`
	// BaseWeight is the intrinsic difficulty of the task in [0,1].
	BaseWeight float64 `json:"base_weight" yaml:"base_weight"`
}

// FailureKind classifies why a task produced no content.
type FailureKind string

const (
	// FailureEmptyInput means the input message was blank and no call was made.
	FailureEmptyInput FailureKind = "empty_input"
	// FailureRequestRejected means the capability refused the request.
	FailureRequestRejected FailureKind = "request_rejected"
	// FailureExhaustedRetries means transient errors outlasted the retry budget.
	FailureExhaustedRetries FailureKind = "exhausted_retries"
)

// TaskFailure describes a failed task.
type TaskFailure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

// TaskResult is the outcome of running one task. Exactly one of Content or
// Failure is meaningful.
type TaskResult struct {
	TaskID      TaskID        `json:"task_id"`
	Tier        Tier          `json:"tier"`
	Model       string        `json:"model,omitempty"`
	Content     string        `json:"content,omitempty"`
	Failure     *TaskFailure  `json:"failure,omitempty"`
	Attempts    int           `json:"attempts"`
	Duration    time.Duration `json:"duration"`
	CompletedAt time.Time     `json:"completed_at"`
}

// OK returns true if the task produced content.
func (r TaskResult) OK() bool {
	return r.Failure == nil
}

// Text returns the content for a success, or an explicit error line for a
// failure so downstream stages never see a silent gap.
func (r TaskResult) Text() string {
	if r.Failure != nil {
		return "Error during review: " + r.Failure.Message
	}
	return r.Content
}

// ResultMap holds every task outcome of a run, keyed by task.
type ResultMap map[TaskID]TaskResult

// Ordered returns results following order, skipping ids not present.
func (m ResultMap) Ordered(order []TaskID) []TaskResult {
	out := make([]TaskResult, 0, len(m))
	for _, id := range order {
		if r, ok := m[id]; ok {
			out = append(out, r)
		}
	}
	return out
}

// Failed returns the ids of failed results in the given order.
func (m ResultMap) Failed(order []TaskID) []TaskID {
	var ids []TaskID
	for _, id := range order {
		if r, ok := m[id]; ok && !r.OK() {
			ids = append(ids, id)
		}
	}
	return ids
}

// Upper returns the identifier in upper case, as used in review headers.
func (id TaskID) Upper() string {
	return strings.ToUpper(string(id))
}
