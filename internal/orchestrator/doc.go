// Package orchestrator runs a document through the reviewer panel.
//
// A run moves through fixed stages:
//   - Assess: one lightweight call scores document complexity in [0,1]
//   - BuildTasks: each descriptor's tier is derived from its base weight and that score
//   - FanOutPrimary: the primary reviewers run concurrently in a bounded pool
//   - Aggregate, Summarize, Decide: one task each, fed every earlier result
//   - Synthesize: results, tiers and the decision are assembled into a RunResult
//
// Task failures become entries in the result map and never stop the run.
// Only a FatalError, for input that cannot be reviewed at all, or a
// cancelled context ends a run early.
//
// Example usage:
//
//	orch, err := orchestrator.New(orchestrator.Config{
//		Registry: reviewers.Default(),
//		Runner:   agent.NewCachingTaskRunner(agent.NewTaskRunner(client, runnerCfg, logger)),
//		Assessor: orchestrator.NewComplexityAssessor(client, agent.ModelHaiku, logger),
//		Logger:   logger,
//	})
//	result, err := orch.Run(ctx, orchestrator.Input{Document: info, Text: text})
package orchestrator
