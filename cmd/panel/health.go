package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/panel/internal/agent"
	"github.com/ShayCichocki/panel/internal/config"
	"github.com/ShayCichocki/panel/internal/state"
	"github.com/ShayCichocki/panel/pkg/models"
)

var healthTimeout time.Duration

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check configuration, storage and API connectivity",
	RunE:  runHealth,
}

func init() {
	healthCmd.Flags().DurationVar(&healthTimeout, "timeout", 15*time.Second, "API ping timeout")
}

func runHealth(cmd *cobra.Command, args []string) error {
	healthy := true
	fail := func(msg string) {
		healthy = false
		printStatus("✗", msg, color.FgRed)
	}

	cfg, err := loadConfig()
	if err != nil {
		fail(fmt.Sprintf("Config: %v", err))
		return fmt.Errorf("health check failed")
	}
	if err := cfg.Validate(); err != nil {
		fail(fmt.Sprintf("Config invalid: %v", err))
	} else {
		printStatus("✓", "Config valid", color.FgGreen)
	}

	if cfg.Output.Dir != "" {
		if info, err := os.Stat(cfg.Output.Dir); err != nil || !info.IsDir() {
			printStatus("⚠", fmt.Sprintf("Output directory %s does not exist yet", cfg.Output.Dir), color.FgYellow)
		} else {
			printStatus("✓", "Output directory "+cfg.Output.Dir+" exists", color.FgGreen)
		}
	}

	if db, err := state.Open(cfg.Output.StateDB); err != nil {
		fail(fmt.Sprintf("History database: %v", err))
	} else {
		printStatus("✓", "History database "+db.Path(), color.FgGreen)
		db.Close()
	}

	key, source, err := config.ResolveAPIKey(cfg)
	if err != nil {
		fail("No API key (set ANTHROPIC_API_KEY or anthropic.api_key)")
		return fmt.Errorf("health check failed")
	}
	if source == config.KeySourceBedrock {
		printStatus("✓", "Using AWS Bedrock", color.FgGreen)
	} else {
		printStatus("✓", fmt.Sprintf("API key %s (%s)", config.MaskAPIKey(key), source), color.FgGreen)
	}

	client, err := newClient(cfg)
	if err != nil {
		fail(err.Error())
		return fmt.Errorf("health check failed")
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), healthTimeout)
	defer cancel()
	latency, err := client.Ping(ctx, agent.ModelsFromConfig(cfg.Models).SelectModel(models.TierBasic))
	if err != nil {
		fail(fmt.Sprintf("API unreachable: %v", err))
	} else {
		printStatus("✓", fmt.Sprintf("API reachable (%s)", latency.Round(time.Millisecond)), color.FgGreen)
	}

	if !healthy {
		return fmt.Errorf("health check failed")
	}
	return nil
}
