package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/panel/internal/agent"
	"github.com/ShayCichocki/panel/internal/orchestrator"
)

var (
	reviewersDump       bool
	reviewersComplexity float64
)

var reviewersCmd = &cobra.Command{
	Use:   "reviewers",
	Short: "List the reviewer panel",
	Long: `List every reviewer with its role, base weight and the tier it would
run on for a given document complexity.

Use --dump to print the registry as YAML. The output can be edited and
referenced from reviewers.file to override instruction text or weights.`,
	RunE: runReviewers,
}

func init() {
	reviewersCmd.Flags().BoolVar(&reviewersDump, "dump", false, "Print the registry as YAML")
	reviewersCmd.Flags().Float64Var(&reviewersComplexity, "complexity", 0.5, "Document complexity used to preview tiers")
}

func runReviewers(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	registry, err := loadRegistry(cfg)
	if err != nil {
		return err
	}

	if reviewersDump {
		return registry.Dump(os.Stdout)
	}

	if reviewersComplexity < 0 || reviewersComplexity > 1 {
		return fmt.Errorf("--complexity must be in [0,1], got %v", reviewersComplexity)
	}

	modelSet := agent.ModelsFromConfig(cfg.Models)
	rows := make([][]string, 0, registry.Len())
	for _, desc := range registry.All() {
		score := orchestrator.FinalScore(desc.BaseWeight, reviewersComplexity)
		tier := orchestrator.SelectTier(desc.BaseWeight, reviewersComplexity)
		rows = append(rows, []string{
			string(desc.ID),
			desc.Name,
			string(desc.Role),
			fmt.Sprintf("%.1f", desc.BaseWeight),
			fmt.Sprintf("%.3f", score),
			string(tier),
			modelSet.SelectModel(tier),
		})
	}
	fmt.Printf("Tier preview at complexity %.2f\n", reviewersComplexity)
	fmt.Println(newTable([]string{"ID", "Name", "Role", "Weight", "Score", "Tier", "Model"}, rows, -1))
	return nil
}
