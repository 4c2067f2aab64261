package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/panel/internal/config"
	"github.com/ShayCichocki/panel/internal/reviewers"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "panel",
	Short: "Run a panel of LLM reviewers over a document",
	Long: `Panel reviews a document with a set of specialist reviewers.

Nine primary reviewers (methodology, results, literature, structure,
impact, contradictions, ethics, AI origin, hallucinations) run in
parallel. A coordinator then combines their reports, a summarizer writes
the author and editor summaries, and an editor issues the final decision.

Each reviewer runs on a model tier chosen from its base weight and the
assessed complexity of the document.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: layered user and project config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override logging.level: debug, info, warn or error")

	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(reviewersCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(killCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig honors --config and falls back to the layered lookup, then
// applies flag overrides.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFromPath(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if err := applyLogLevel(cfg, logLevel); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyLogLevel sets logging.level from the --log-level flag.
func applyLogLevel(cfg *config.Config, level string) error {
	if level == "" {
		return nil
	}
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "warning", "error":
		cfg.Logging.Level = strings.ToLower(level)
		return nil
	default:
		return fmt.Errorf("invalid --log-level %q: want debug, info, warn or error", level)
	}
}

// loadRegistry applies reviewers.file overrides to the built-in registry.
func loadRegistry(cfg *config.Config) (*reviewers.Registry, error) {
	registry := reviewers.Default()
	if cfg.Reviewers.File == "" {
		return registry, nil
	}
	registry, err := registry.LoadOverrides(cfg.Reviewers.File)
	if err != nil {
		return nil, fmt.Errorf("load reviewer overrides: %w", err)
	}
	return registry, nil
}
