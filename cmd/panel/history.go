package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/panel/internal/config"
	"github.com/ShayCichocki/panel/internal/state"
)

var (
	historyLimit int
	historyPurge time.Duration
	showFull     bool
	showJSON     bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded review runs",
	Long: `List review runs recorded in the history database, newest first.

Use --purge to delete runs that completed longer ago than the given
duration, for example --purge 720h.`,
	RunE: runHistory,
}

var showCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show a recorded run",
	Long: `Show a recorded run's metadata, per-reviewer results and editorial
decision. The run id may be abbreviated to any unique prefix.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of runs to list")
	historyCmd.Flags().DurationVar(&historyPurge, "purge", 0, "Delete runs older than this duration")

	showCmd.Flags().BoolVar(&showFull, "full", false, "Print the full editorial decision")
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Print the run as JSON")
}

// openHistory opens and migrates the history database.
func openHistory(cfg *config.Config) (*state.DB, error) {
	db, err := state.Open(cfg.Output.StateDB)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if historyPurge > 0 {
		n, err := db.PurgeOldRuns(historyPurge)
		if err != nil {
			return fmt.Errorf("purge runs: %w", err)
		}
		fmt.Printf("%s Purged %d run(s) older than %s\n", color.GreenString("✓"), n, historyPurge)
	}

	runs, err := db.ListRuns(historyLimit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("No recorded runs. Run 'panel review <document>' to start.")
		return nil
	}
	printHistory(runs)
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	rec, err := db.GetRun(args[0])
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("no run matches %q", args[0])
	}

	if showJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}

	registry, err := loadRegistry(cfg)
	if err != nil {
		return err
	}
	printRunRecord(rec, registry, showFull)
	return nil
}
