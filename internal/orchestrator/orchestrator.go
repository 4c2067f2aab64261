package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ShayCichocki/panel/internal/agent"
	"github.com/ShayCichocki/panel/internal/reviewers"
	"github.com/ShayCichocki/panel/pkg/models"
)

// Defaults applied by New when a Config field is zero.
const (
	DefaultMaxParallel  = 3
	DefaultExcerptChars = 8000
)

// Assessor scores document complexity. Implementations never fail; a
// degraded result carries the default score.
type Assessor interface {
	Assess(ctx context.Context, excerpt string) models.Complexity
}

// Config contains the collaborators and limits of an Orchestrator.
type Config struct {
	// Registry supplies the task descriptors and canonical order.
	Registry *reviewers.Registry
	// Runner executes individual tasks. Usually a CachingTaskRunner.
	Runner agent.Runner
	// Assessor scores the document. Nil means every run uses the default.
	Assessor Assessor
	// Tiers maps scores to tiers. Nil uses the standard thresholds.
	Tiers *TierSelector
	// Temperature returns the sampling temperature per task.
	Temperature func(models.TaskID) float64
	// Models records which model backs each tier.
	Models agent.ModelSet
	// TaskTimeout bounds a single task including its retries. Zero
	// disables the limit.
	TaskTimeout time.Duration
	// MaxParallel bounds concurrent generation calls.
	MaxParallel int
	// ExcerptChars bounds the excerpt derived when Input.Excerpt is empty.
	ExcerptChars int
	// Usage reports token consumption at the end of a run.
	Usage func() models.Usage
	// OnEvent receives progress events. It must not block for long.
	OnEvent func(OrchestratorEvent)
	Logger  *slog.Logger
}

// Input is one document to review.
type Input struct {
	Document models.DocumentInfo
	// Text is the full decoded document.
	Text string
	// Excerpt is used for the complexity assessment. When empty the first
	// ExcerptChars characters of Text are used.
	Excerpt string
}

// Orchestrator runs the review pipeline: assess, build tasks, fan out the
// primary reviewers, then the coordinator, summarizer and editor in turn.
type Orchestrator struct {
	registry     *reviewers.Registry
	runner       agent.Runner
	assessor     Assessor
	tiers        *TierSelector
	temperature  func(models.TaskID) float64
	models       agent.ModelSet
	pool         *Pool
	taskTimeout  time.Duration
	excerptChars int
	usage        func() models.Usage
	onEvent      func(OrchestratorEvent)
	logger       *slog.Logger

	aggregator models.TaskDescriptor
	summarizer models.TaskDescriptor
	decision   models.TaskDescriptor
}

// New validates cfg and creates an Orchestrator. A registry without primary
// tasks or without one of the fan-in roles is a fatal configuration.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Runner == nil {
		return nil, fatal(StageBuildTasks, "no task runner configured")
	}
	if cfg.Registry == nil {
		cfg.Registry = reviewers.Default()
	}
	if len(cfg.Registry.Primary()) == 0 {
		return nil, fatal(StageBuildTasks, "no primary tasks configured")
	}

	o := &Orchestrator{
		registry:     cfg.Registry,
		runner:       cfg.Runner,
		assessor:     cfg.Assessor,
		tiers:        cfg.Tiers,
		temperature:  cfg.Temperature,
		models:       cfg.Models,
		taskTimeout:  cfg.TaskTimeout,
		excerptChars: cfg.ExcerptChars,
		usage:        cfg.Usage,
		onEvent:      cfg.OnEvent,
		logger:       cfg.Logger,
	}

	for _, fanIn := range []struct {
		role models.Role
		dst  *models.TaskDescriptor
	}{
		{models.RoleAggregator, &o.aggregator},
		{models.RoleSummarizer, &o.summarizer},
		{models.RoleDecision, &o.decision},
	} {
		d, ok := cfg.Registry.ForRole(fanIn.role)
		if !ok {
			return nil, fatal(StageBuildTasks, "no %s task configured", fanIn.role)
		}
		*fanIn.dst = d
	}

	if o.tiers == nil {
		o.tiers = NewTierSelector()
	}
	if o.temperature == nil {
		o.temperature = func(models.TaskID) float64 { return 1.0 }
	}
	if o.models == nil {
		o.models = agent.TierDefaultModels
	}
	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = DefaultMaxParallel
	}
	o.pool = NewPool(cfg.MaxParallel)
	if o.excerptChars <= 0 {
		o.excerptChars = DefaultExcerptChars
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	o.logger = o.logger.With("component", "orchestrator")

	return o, nil
}

// plan is the per-run result of BuildTasks.
type plan struct {
	primary    []agent.Task
	aggregator agent.Task
	summarizer agent.Task
	decision   agent.Task
	tiers      map[models.TaskID]models.Tier
}

// Run reviews one document. Every per-task failure is recorded in the
// returned result; the only errors are a FatalError for invalid input and a
// wrapped context error when ctx is cancelled between stages.
func (o *Orchestrator) Run(ctx context.Context, in Input) (*models.RunResult, error) {
	if strings.TrimSpace(in.Text) == "" {
		return nil, fatal(StageAssess, "document text is empty")
	}

	runID := uuid.New().String()
	started := time.Now()
	logger := o.logger.With("run", runID)
	order := o.registry.Order()

	logger.Info("starting review run",
		"title", in.Document.Title, "chars", len(in.Text),
		"primary_tasks", len(o.registry.Primary()), "max_parallel", o.pool.Limit())

	// Assess
	o.stageStarted(runID, StageAssess)
	excerptText := in.Excerpt
	if excerptText == "" {
		excerptText = excerpt(in.Text, o.excerptChars)
	}
	complexity := o.assess(ctx, excerptText)
	if complexity.Degraded {
		o.emit(OrchestratorEvent{Type: EventAssessmentDegraded, RunID: runID, Stage: StageAssess, Message: complexity.Reason})
	}
	o.stageCompleted(runID, StageAssess, started)
	if err := o.checkCanceled(ctx, StageAssess); err != nil {
		return nil, err
	}

	// BuildTasks
	o.stageStarted(runID, StageBuildTasks)
	p := o.buildTasks(complexity.Score)
	for _, t := range p.primary {
		logger.Debug("task tier selected", "task", t.ID, "tier", t.Tier,
			"score", FinalScore(o.registry.BaseWeight(t.ID), complexity.Score))
	}
	o.stageCompleted(runID, StageBuildTasks, time.Now())

	// FanOutPrimary
	payload := InitialPayload(in.Document, in.Text)
	if len(payload) > LargePayloadChars {
		logger.Info("large document payload, sending without truncation", "chars", len(payload))
	}
	stageStart := time.Now()
	o.stageStarted(runID, StageFanOutPrimary)
	results := o.fanOut(ctx, runID, p.primary, payload)
	if failed := results.Failed(order); len(failed) > 0 {
		logger.Warn("primary tasks failed", "count", len(failed), "tasks", failed)
	}
	o.stageCompleted(runID, StageFanOutPrimary, stageStart)
	if err := o.checkCanceled(ctx, StageFanOutPrimary); err != nil {
		return nil, err
	}

	// Aggregate, Summarize, Decide: one task each, each seeing every
	// result produced so far.
	fanIns := []struct {
		stage Stage
		task  agent.Task
		input func(models.ResultMap, []models.TaskID) string
	}{
		{StageAggregate, p.aggregator, AggregateInput},
		{StageSummarize, p.summarizer, SummaryInput},
		{StageDecide, p.decision, DecisionInput},
	}
	var decision models.TaskResult
	for _, f := range fanIns {
		stageStart = time.Now()
		o.stageStarted(runID, f.stage)
		r := o.runTask(ctx, runID, f.task, f.input(results, order))
		if f.stage == StageDecide {
			decision = r
		} else {
			results[r.TaskID] = r
		}
		o.stageCompleted(runID, f.stage, stageStart)
		if err := o.checkCanceled(ctx, f.stage); err != nil {
			return nil, err
		}
	}

	// Synthesize
	o.stageStarted(runID, StageSynthesize)
	run := &models.RunResult{
		RunID:       runID,
		Document:    in.Document,
		Complexity:  complexity,
		Results:     results,
		Decision:    decision,
		Tiers:       p.tiers,
		Models:      o.modelsUsed(),
		StartedAt:   started,
		CompletedAt: time.Now(),
	}
	if o.usage != nil {
		run.Usage = o.usage()
	}
	o.stageCompleted(runID, StageSynthesize, run.CompletedAt)

	logger.Info("review run complete",
		"duration", run.Duration().Round(time.Millisecond),
		"failed", len(results.Failed(order)),
		"decision_ok", decision.OK())
	o.emit(OrchestratorEvent{Type: EventRunDone, RunID: runID, Duration: run.Duration()})

	return run, nil
}

func (o *Orchestrator) assess(ctx context.Context, excerptText string) models.Complexity {
	if o.assessor == nil {
		o.logger.Warn("no complexity assessor configured, using default", "default", DefaultComplexity)
		return models.Complexity{Score: DefaultComplexity, Degraded: true, Reason: "no assessor configured"}
	}
	return o.assessor.Assess(ctx, excerptText)
}

// buildTasks resolves the tier of every descriptor for one complexity score.
func (o *Orchestrator) buildTasks(score float64) plan {
	p := plan{tiers: make(map[models.TaskID]models.Tier, o.registry.Len())}
	toTask := func(d models.TaskDescriptor) agent.Task {
		tier := o.tiers.SelectTier(d.BaseWeight, score)
		p.tiers[d.ID] = tier
		return agent.Task{
			ID:           d.ID,
			Instructions: d.Instructions,
			Tier:         tier,
			Temperature:  o.temperature(d.ID),
		}
	}
	for _, d := range o.registry.Primary() {
		p.primary = append(p.primary, toTask(d))
	}
	p.aggregator = toTask(o.aggregator)
	p.summarizer = toTask(o.summarizer)
	p.decision = toTask(o.decision)
	return p
}

func (o *Orchestrator) modelsUsed() map[models.Tier]string {
	out := make(map[models.Tier]string, len(models.Tiers))
	for _, t := range models.Tiers {
		out[t] = o.models.SelectModel(t)
	}
	return out
}

func (o *Orchestrator) checkCanceled(ctx context.Context, stage Stage) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("review run canceled after %s: %w", stage, err)
	}
	return nil
}

func (o *Orchestrator) stageStarted(runID string, stage Stage) {
	o.logger.Debug("stage started", "run", runID, "stage", stage)
	o.emit(OrchestratorEvent{Type: EventStageStarted, RunID: runID, Stage: stage})
}

func (o *Orchestrator) stageCompleted(runID string, stage Stage, since time.Time) {
	o.emit(OrchestratorEvent{Type: EventStageCompleted, RunID: runID, Stage: stage, Duration: time.Since(since)})
}

func (o *Orchestrator) emit(ev OrchestratorEvent) {
	if o.onEvent == nil {
		return
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	o.onEvent(ev)
}
