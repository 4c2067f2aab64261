package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/panel/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify panel configuration.

Without arguments, displays the effective configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the value in the user config file.

Configuration is stored at ~/.config/panel/config.yaml
Project-specific overrides can be placed in .panel.yaml`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	if len(args) == 2 {
		if err := config.SaveKey(args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("%s Set %s = %s in %s\n", color.GreenString("✓"), args[0], displayValue(args[0], args[1]), config.GetUserConfigPath())
		return nil
	}

	settings, err := config.Settings(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if len(args) == 1 {
		key := strings.ToLower(args[0])
		value, ok := settings[key]
		if !ok {
			return fmt.Errorf("unknown configuration key: %s", args[0])
		}
		fmt.Println(displayValue(key, value))
		return nil
	}

	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("%s: %s\n", k, displayValue(k, settings[k]))
	}
	if p := config.GetProjectConfigPath(); p != "" {
		fmt.Fprintf(os.Stderr, "\nProject overrides from %s\n", p)
	}
	return nil
}

// displayValue masks secrets.
func displayValue(key string, value any) string {
	s := fmt.Sprint(value)
	if strings.EqualFold(key, "anthropic.api_key") {
		return config.MaskAPIKey(s)
	}
	return s
}
