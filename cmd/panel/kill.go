package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/panel/internal/signals"
)

var killCmd = &cobra.Command{
	Use:   "kill <output-dir>",
	Short: "Stop a running review",
	Long: `Stop the review writing to the given output directory.

The running process cancels its in-flight requests and exits without
writing a report.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(args[0]); err != nil {
			return fmt.Errorf("output directory: %w", err)
		}
		if err := signals.SendKill(args[0]); err != nil {
			return fmt.Errorf("send kill signal: %w", err)
		}
		fmt.Printf("%s Kill signal sent to %s\n", color.GreenString("✓"), args[0])
		return nil
	},
}
