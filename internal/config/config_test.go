package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ShayCichocki/panel/pkg/models"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Concurrency.MaxParallel != 3 {
		t.Errorf("expected max_parallel 3, got %d", cfg.Concurrency.MaxParallel)
	}
	if cfg.Timeouts.Task != 300*time.Second {
		t.Errorf("expected task timeout 300s, got %v", cfg.Timeouts.Task)
	}
	if cfg.Retry.InitialInterval() != 4*time.Second {
		t.Errorf("expected initial interval 4s, got %v", cfg.Retry.InitialInterval())
	}
	if cfg.Retry.MaxInterval() != 60*time.Second {
		t.Errorf("expected max interval 60s, got %v", cfg.Retry.MaxInterval())
	}
	if cfg.Assessment.ExcerptChars != 8000 {
		t.Errorf("expected excerpt 8000, got %d", cfg.Assessment.ExcerptChars)
	}
	if cfg.Generation.MaxTokens != 4000 {
		t.Errorf("expected max tokens 4000, got %d", cfg.Generation.MaxTokens)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestModelsConfig_ForTier(t *testing.T) {
	m := ModelsConfig{Basic: "b", Standard: "s", Powerful: "p"}
	tests := []struct {
		tier models.Tier
		want string
	}{
		{models.TierBasic, "b"},
		{models.TierStandard, "s"},
		{models.TierPowerful, "p"},
	}
	for _, tt := range tests {
		if got := m.ForTier(tt.tier); got != tt.want {
			t.Errorf("ForTier(%s) = %q, want %q", tt.tier, got, tt.want)
		}
	}
}

func TestTemperature(t *testing.T) {
	cfg := Default()
	cfg.Temperatures["ethics"] = 0.2

	if got := cfg.Temperature(models.TaskEthics); got != 0.2 {
		t.Errorf("Temperature(ethics) = %v, want 0.2", got)
	}
	if got := cfg.Temperature(models.TaskID("unlisted")); got != DefaultTemperature {
		t.Errorf("Temperature(unlisted) = %v, want %v", got, DefaultTemperature)
	}
}

func TestLoadFromPath(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
anthropic:
  api_key: test-key
models:
  powerful: claude-opus-4-5-20251101
temperatures:
  methodology: 0.4
concurrency:
  max_parallel: 5
timeouts:
  task: 90s
retry:
  unit: 10ms
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if cfg.Anthropic.APIKey != "test-key" {
		t.Errorf("expected api_key 'test-key', got %q", cfg.Anthropic.APIKey)
	}
	if cfg.Models.Powerful != "claude-opus-4-5-20251101" {
		t.Errorf("expected powerful override, got %q", cfg.Models.Powerful)
	}
	if cfg.Models.Basic != "claude-haiku-4-5-20251001" {
		t.Errorf("expected basic default to survive, got %q", cfg.Models.Basic)
	}
	if got := cfg.Temperature(models.TaskMethodology); got != 0.4 {
		t.Errorf("expected methodology temperature 0.4, got %v", got)
	}
	if got := cfg.Temperature(models.TaskResults); got != 1.0 {
		t.Errorf("expected results temperature default 1.0, got %v", got)
	}
	if cfg.Concurrency.MaxParallel != 5 {
		t.Errorf("expected max_parallel 5, got %d", cfg.Concurrency.MaxParallel)
	}
	if cfg.Timeouts.Task != 90*time.Second {
		t.Errorf("expected task timeout 90s, got %v", cfg.Timeouts.Task)
	}
	if cfg.Retry.InitialInterval() != 40*time.Millisecond {
		t.Errorf("expected initial interval 40ms, got %v", cfg.Retry.InitialInterval())
	}
}

func TestLoadFromPath_EnvOverrides(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-from-env")
	t.Setenv("PANEL_CONCURRENCY_MAX_PARALLEL", "7")

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("anthropic:\n  api_key: from-file\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.Anthropic.APIKey != "sk-ant-from-env" {
		t.Errorf("api_key = %q, want env value", cfg.Anthropic.APIKey)
	}
	if cfg.Concurrency.MaxParallel != 7 {
		t.Errorf("max_parallel = %d, want 7", cfg.Concurrency.MaxParallel)
	}
}

func TestLoadFromPath_ExpandsEnvReferences(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("PANEL_TEST_KEY", "expanded-value")

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("anthropic:\n  api_key: ${PANEL_TEST_KEY}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.Anthropic.APIKey != "expanded-value" {
		t.Errorf("api_key = %q, want %q", cfg.Anthropic.APIKey, "expanded-value")
	}
}

func TestLoadFromPath_Missing(t *testing.T) {
	if _, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_ProjectOverride(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("ANTHROPIC_API_KEY", "")

	project := t.TempDir()
	nested := filepath.Join(project, "papers", "drafts")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(project, ProjectConfigName), []byte("retry:\n  attempts: 5\n"), 0644); err != nil {
		t.Fatal(err)
	}

	orig, _ := os.Getwd()
	if err := os.Chdir(nested); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(orig)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Retry.Attempts != 5 {
		t.Errorf("retry.attempts = %d, want 5", cfg.Retry.Attempts)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"empty model", func(c *Config) { c.Models.Standard = "" }, "models.standard"},
		{"zero parallel", func(c *Config) { c.Concurrency.MaxParallel = 0 }, "max_parallel"},
		{"zero attempts", func(c *Config) { c.Retry.Attempts = 0 }, "retry.attempts"},
		{"max below initial", func(c *Config) { c.Retry.Max = 1 }, "retry.initial"},
		{"zero timeout", func(c *Config) { c.Timeouts.Task = 0 }, "timeouts.task"},
		{"bad tier", func(c *Config) { c.Assessment.ModelTier = "scout" }, "model_tier"},
		{"temperature range", func(c *Config) { c.Temperatures["editor"] = 1.5 }, "temperatures.editor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestSaveKey(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("ANTHROPIC_API_KEY", "")

	if err := SaveKey("concurrency.max_parallel", "6"); err != nil {
		t.Fatalf("SaveKey failed: %v", err)
	}
	if err := SaveKey("models.basic", "claude-3-5-haiku-20241022"); err != nil {
		t.Fatalf("SaveKey failed: %v", err)
	}

	cfg, err := LoadFromPath(GetUserConfigPath())
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.Concurrency.MaxParallel != 6 {
		t.Errorf("max_parallel = %d, want 6", cfg.Concurrency.MaxParallel)
	}
	if cfg.Models.Basic != "claude-3-5-haiku-20241022" {
		t.Errorf("models.basic = %q", cfg.Models.Basic)
	}

	if err := SaveKey("quality_gates.test", "true"); err == nil {
		t.Error("SaveKey(unknown) should fail")
	}
}

func TestKeys_IncludesTemperatures(t *testing.T) {
	if !IsKnownKey("temperatures.ai_origin") {
		t.Error("temperatures.ai_origin should be a known key")
	}
	if !IsKnownKey("Retry.Unit") {
		t.Error("key lookup should be case-insensitive")
	}
}

func TestSettings_FromPath(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("PANEL_LOGGING_LEVEL", "debug")

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("concurrency:\n  max_parallel: 4\n"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	settings, err := Settings(path)
	if err != nil {
		t.Fatalf("Settings failed: %v", err)
	}
	if got := fmt.Sprint(settings["concurrency.max_parallel"]); got != "4" {
		t.Errorf("concurrency.max_parallel = %s, want 4", got)
	}
	if got := fmt.Sprint(settings["logging.level"]); got != "debug" {
		t.Errorf("logging.level = %s, want env override debug", got)
	}
	if _, ok := settings["temperatures.editor"]; !ok {
		t.Error("defaults missing from settings")
	}
}
