package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"sync"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/panel/internal/agent"
	"github.com/ShayCichocki/panel/internal/api"
	"github.com/ShayCichocki/panel/internal/config"
	"github.com/ShayCichocki/panel/internal/document"
	"github.com/ShayCichocki/panel/internal/logging"
	"github.com/ShayCichocki/panel/internal/orchestrator"
	"github.com/ShayCichocki/panel/internal/report"
	"github.com/ShayCichocki/panel/internal/reviewers"
	"github.com/ShayCichocki/panel/internal/signals"
	"github.com/ShayCichocki/panel/internal/state"
	"github.com/ShayCichocki/panel/pkg/models"
)

var (
	reviewOutputDir   string
	reviewMaxParallel int
	reviewNoAIMeta    bool
	reviewNoHistory   bool
	reviewQuiet       bool
)

var reviewCmd = &cobra.Command{
	Use:   "review <document>",
	Short: "Review a document with the full panel",
	Long: `Review a plain-text document with every reviewer in the registry.

Metadata (title, authors, abstract) is extracted with the basic-tier model
and falls back to pattern matching. The complexity of the document decides
which model tier each reviewer runs on.

Artifacts are written to the output directory (default output_<timestamp>):
  review_<task>.txt            one file per successful review
  paper_info.json              extracted metadata
  review_results_<ts>.json     every result, failures included
  review_report_<ts>.md        full Markdown report
  executive_summary_<ts>.md    decision and per-reviewer excerpts

To stop a running review from another shell, run 'panel kill <output dir>'.`,
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

func init() {
	reviewCmd.Flags().StringVarP(&reviewOutputDir, "output", "o", "", "Output directory (default: output.dir or output_<timestamp>)")
	reviewCmd.Flags().IntVar(&reviewMaxParallel, "max-parallel", 0, "Override concurrency.max_parallel")
	reviewCmd.Flags().BoolVar(&reviewNoAIMeta, "no-ai-metadata", false, "Extract metadata with patterns only")
	reviewCmd.Flags().BoolVar(&reviewNoHistory, "no-history", false, "Do not record the run in the history database")
	reviewCmd.Flags().BoolVarP(&reviewQuiet, "quiet", "q", false, "Hide per-task progress")
}

func runReview(cmd *cobra.Command, args []string) (retErr error) {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if reviewMaxParallel > 0 {
		cfg.Concurrency.MaxParallel = reviewMaxParallel
	}
	if reviewNoAIMeta {
		cfg.Assessment.AIMetadata = false
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	src, err := document.Load(args[0])
	if err != nil {
		return err
	}

	outDir := reviewOutputDir
	if outDir == "" {
		outDir = cfg.Output.Dir
	}
	if outDir == "" {
		outDir = report.DefaultDir(time.Now())
	}

	logger, closeLog, err := logging.New(cfg.Logging, os.Stderr, outDir)
	if err != nil {
		return err
	}
	defer closeLog()

	registry, err := loadRegistry(cfg)
	if err != nil {
		return err
	}
	writer, err := report.NewWriter(outDir, registry, logger)
	if err != nil {
		return err
	}

	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	modelSet := agent.ModelsFromConfig(cfg.Models)
	assessTier, _ := models.ParseTier(cfg.Assessment.ModelTier)
	assessModel := modelSet.SelectModel(assessTier)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if watcher, err := signals.New(outDir, logger); err != nil {
		logger.Warn("kill signal watcher disabled", "error", err)
	} else {
		defer watcher.Close()
		var cancel context.CancelFunc
		ctx, cancel = watcher.Bind(ctx)
		defer cancel()
	}

	fmt.Printf("%s Reviewing %s (%s chars, %s)\n",
		color.CyanString("▶"), src.Path, humanize.Comma(int64(len(src.Text))), src.Encoding)

	var gen api.Generator = client
	if !cfg.Assessment.AIMetadata {
		gen = nil
	}
	info := document.NewAnalyzer(gen, assessModel, logger).
		WithMaxChars(cfg.Assessment.MetadataChars).
		Analyze(ctx, src.Text)
	info.Path = src.Path
	fmt.Printf("  Title:   %s\n  Authors: %s\n", info.Title, info.Authors)

	emitter := orchestrator.NewEventEmitter(64, logger)
	var progress sync.WaitGroup
	progress.Add(1)
	go func() {
		defer progress.Done()
		for ev := range emitter.Events() {
			if !reviewQuiet {
				printEvent(ev, registry)
			}
		}
	}()

	runner := newRunner(client, cfg, logger)
	orch, err := orchestrator.New(orchestrator.Config{
		Registry:     registry,
		Runner:       runner,
		Assessor:     orchestrator.NewComplexityAssessor(client, assessModel, logger),
		Temperature:  cfg.Temperature,
		Models:       modelSet,
		TaskTimeout:  cfg.Timeouts.Task,
		MaxParallel:  cfg.Concurrency.MaxParallel,
		ExcerptChars: cfg.Assessment.ExcerptChars,
		Usage:        usageFrom(client.Tracker()),
		OnEvent:      emitter.Emit,
		Logger:       logger,
	})
	if err != nil {
		emitter.Close()
		return err
	}

	run, err := orch.Run(ctx, orchestrator.Input{Document: info, Text: src.Text})
	emitter.Close()
	progress.Wait()

	hits, misses := runner.Stats()
	logger.Info("generation calls settled",
		"cache_hits", hits, "cache_misses", misses, "cached_outputs", runner.Len(), "dropped_events", emitter.DroppedCount())

	if err != nil {
		switch {
		case orchestrator.IsFatal(err):
			return fmt.Errorf("cannot review %s: %w", src.Path, err)
		case errors.Is(context.Cause(ctx), signals.ErrKilled):
			return fmt.Errorf("review stopped by kill signal: %w", err)
		default:
			return fmt.Errorf("review interrupted: %w", err)
		}
	}

	files, err := writer.WriteAll(run)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if !reviewNoHistory {
		recordRun(cfg, run, registry, src.Path, writer.Dir(), logger)
	}

	printRunSummary(run, registry)
	fmt.Printf("\n%s Report written to %s (%d files)\n", color.GreenString("✓"), writer.Dir(), len(files.All()))
	return nil
}

func usageFrom(tracker *api.TokenTracker) func() models.Usage {
	return func() models.Usage {
		in, out := tracker.Total()
		return models.Usage{
			InputTokens:  in,
			OutputTokens: out,
			Calls:        tracker.Calls(),
			CostUSD:      tracker.Cost(),
		}
	}
}

// recordRun stores the run in the history database. History is best
// effort; the report on disk is the primary artifact.
func recordRun(cfg *config.Config, run *models.RunResult, registry *reviewers.Registry, docPath, outDir string, logger *slog.Logger) {
	db, err := state.Open(cfg.Output.StateDB)
	if err != nil {
		logger.Warn("history unavailable", "error", err)
		return
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		logger.Warn("history migration failed", "error", err)
		return
	}
	if err := db.SaveRun(run, registry.Order(), state.SaveOptions{DocumentPath: docPath, OutputDir: outDir}); err != nil {
		logger.Warn("failed to record run", "run_id", run.RunID, "error", err)
	}
}

func printEvent(ev orchestrator.OrchestratorEvent, registry *reviewers.Registry) {
	name := string(ev.TaskID)
	if desc, ok := registry.Get(ev.TaskID); ok {
		name = desc.Name
	}

	switch ev.Type {
	case orchestrator.EventStageStarted:
		fmt.Printf("%s %s\n", color.CyanString("•"), stageProgress(ev.Stage))
	case orchestrator.EventAssessmentDegraded:
		printStatus("⚠", "Complexity assessment failed, using default: "+ev.Message, color.FgYellow)
	case orchestrator.EventTaskCompleted:
		printStatus("✓", fmt.Sprintf("%s [%s] %s", name, ev.Tier, ev.Duration.Round(time.Millisecond)), color.FgGreen)
	case orchestrator.EventTaskFailed:
		printStatus("✗", failureDetail(name, ev), color.FgRed)
	}
}

// stageProgress renders a stage with its position in the pipeline.
func stageProgress(stage orchestrator.Stage) string {
	return fmt.Sprintf("[%d/%d] %s", slices.Index(orchestrator.Stages, stage)+1, len(orchestrator.Stages), stage)
}

func failureDetail(name string, ev orchestrator.OrchestratorEvent) string {
	msg := fmt.Sprintf("%s [%s] %v", name, ev.Tier, ev.Error)
	if agent.IsFailureKind(ev.Error, models.FailureRequestRejected) {
		msg += " (not retried)"
	}
	return msg
}

// printStatus prints a status line with color
func printStatus(symbol, message string, colorAttr color.Attribute) {
	c := color.New(colorAttr)
	fmt.Printf("  %s %s\n", c.Sprint(symbol), message)
}
