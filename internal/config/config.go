// Package config handles configuration loading and management for panel.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ShayCichocki/panel/pkg/models"
)

// ProjectConfigName is the per-project override file searched upward from
// the working directory.
const ProjectConfigName = ".panel.yaml"

// Config holds all configuration for panel.
type Config struct {
	Anthropic    AnthropicConfig    `mapstructure:"anthropic"`
	Models       ModelsConfig       `mapstructure:"models"`
	Temperatures map[string]float64 `mapstructure:"temperatures"`
	Generation   GenerationConfig   `mapstructure:"generation"`
	Concurrency  ConcurrencyConfig  `mapstructure:"concurrency"`
	Timeouts     TimeoutsConfig     `mapstructure:"timeouts"`
	Retry        RetryConfig        `mapstructure:"retry"`
	Assessment   AssessmentConfig   `mapstructure:"assessment"`
	Breaker      BreakerConfig      `mapstructure:"breaker"`
	Output       OutputConfig       `mapstructure:"output"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Reviewers    ReviewersConfig    `mapstructure:"reviewers"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey     string `mapstructure:"api_key"`
	Bedrock    bool   `mapstructure:"bedrock"`
	AWSRegion  string `mapstructure:"aws_region"`
	AWSProfile string `mapstructure:"aws_profile"`
	BaseURL    string `mapstructure:"base_url"`
}

// ModelsConfig binds each tier to a concrete model name.
type ModelsConfig struct {
	Basic    string `mapstructure:"basic"`
	Standard string `mapstructure:"standard"`
	Powerful string `mapstructure:"powerful"`
}

// ForTier returns the model configured for tier.
func (m ModelsConfig) ForTier(tier models.Tier) string {
	switch tier {
	case models.TierBasic:
		return m.Basic
	case models.TierPowerful:
		return m.Powerful
	default:
		return m.Standard
	}
}

// GenerationConfig holds per-request limits.
type GenerationConfig struct {
	MaxTokens int64 `mapstructure:"max_tokens"`
}

// ConcurrencyConfig bounds concurrent generation calls.
type ConcurrencyConfig struct {
	MaxParallel int `mapstructure:"max_parallel"`
}

// TimeoutsConfig holds timeout settings.
type TimeoutsConfig struct {
	// Task is the budget for one task including all retries.
	Task time.Duration `mapstructure:"task"`
}

// RetryConfig holds the transient-failure retry policy. Initial and Max
// are expressed in multiples of Unit.
type RetryConfig struct {
	Attempts int           `mapstructure:"attempts"`
	Initial  float64       `mapstructure:"initial"`
	Max      float64       `mapstructure:"max"`
	Unit     time.Duration `mapstructure:"unit"`
}

// InitialInterval returns the first backoff wait.
func (r RetryConfig) InitialInterval() time.Duration {
	return time.Duration(r.Initial * float64(r.Unit))
}

// MaxInterval returns the cap on a single backoff wait.
func (r RetryConfig) MaxInterval() time.Duration {
	return time.Duration(r.Max * float64(r.Unit))
}

// AssessmentConfig controls document complexity and metadata extraction.
type AssessmentConfig struct {
	ExcerptChars  int    `mapstructure:"excerpt_chars"`
	ModelTier     string `mapstructure:"model_tier"`
	MetadataChars int    `mapstructure:"metadata_chars"`
	AIMetadata    bool   `mapstructure:"ai_metadata"`
}

// BreakerConfig controls the circuit breaker around generation calls.
type BreakerConfig struct {
	MaxFailures int           `mapstructure:"max_failures"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// OutputConfig controls where run artifacts go.
type OutputConfig struct {
	// Dir is the report directory. Empty means output_<timestamp>.
	Dir string `mapstructure:"dir"`
	// StateDB is the run history database. Empty means the XDG data dir.
	StateDB string `mapstructure:"state_db"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	// File, if set, receives a copy of every log record. Relative paths
	// resolve against the output directory.
	File string `mapstructure:"file"`
}

// ReviewersConfig points at optional reviewer overrides.
type ReviewersConfig struct {
	File string `mapstructure:"file"`
}

// DefaultTemperature applies to tasks without an explicit setting.
const DefaultTemperature = 1.0

// Temperature returns the sampling temperature for a task.
func (c *Config) Temperature(id models.TaskID) float64 {
	if t, ok := c.Temperatures[string(id)]; ok {
		return t
	}
	return DefaultTemperature
}

// Validate checks that the configuration can drive a run.
func (c *Config) Validate() error {
	var errs []error
	for _, tier := range models.Tiers {
		if strings.TrimSpace(c.Models.ForTier(tier)) == "" {
			errs = append(errs, fmt.Errorf("models.%s is empty", tier))
		}
	}
	if c.Concurrency.MaxParallel < 1 {
		errs = append(errs, fmt.Errorf("concurrency.max_parallel must be at least 1, got %d", c.Concurrency.MaxParallel))
	}
	if c.Retry.Attempts < 1 {
		errs = append(errs, fmt.Errorf("retry.attempts must be at least 1, got %d", c.Retry.Attempts))
	}
	if c.Retry.Initial <= 0 || c.Retry.Max < c.Retry.Initial {
		errs = append(errs, fmt.Errorf("retry.initial (%v) must be positive and not above retry.max (%v)", c.Retry.Initial, c.Retry.Max))
	}
	if c.Retry.Unit <= 0 {
		errs = append(errs, errors.New("retry.unit must be positive"))
	}
	if c.Timeouts.Task <= 0 {
		errs = append(errs, errors.New("timeouts.task must be positive"))
	}
	if c.Assessment.ExcerptChars <= 0 {
		errs = append(errs, errors.New("assessment.excerpt_chars must be positive"))
	}
	if _, err := models.ParseTier(c.Assessment.ModelTier); err != nil {
		errs = append(errs, fmt.Errorf("assessment.model_tier: %w", err))
	}
	for id, t := range c.Temperatures {
		if t < 0 || t > 1 {
			errs = append(errs, fmt.Errorf("temperatures.%s must be in [0,1], got %v", id, t))
		}
	}
	return errors.Join(errs...)
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY, PANEL_*)
// 2. Project config (.panel.yaml in current directory or parent)
// 3. User config (~/.config/panel/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v, err := layered()
	if err != nil {
		return nil, err
	}
	return finish(v)
}

// LoadFromPath loads configuration from a specific file, still honoring
// environment overrides.
func LoadFromPath(path string) (*Config, error) {
	v, err := fromPath(path)
	if err != nil {
		return nil, err
	}
	return finish(v)
}

// Settings returns the effective value of every key, resolved the same way
// as Load, or as LoadFromPath when path is set.
func Settings(path string) (map[string]any, error) {
	var (
		v   *viper.Viper
		err error
	)
	if path != "" {
		v, err = fromPath(path)
	} else {
		v, err = layered()
	}
	if err != nil {
		return nil, err
	}
	bindEnv(v)

	out := make(map[string]any)
	for _, key := range v.AllKeys() {
		out[key] = v.Get(key)
	}
	return out, nil
}

func layered() (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getUserConfigDir())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	if projectConfig := findProjectConfig(); projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading project config %s: %w", projectConfig, err)
		}
		if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}
	return v, nil
}

func fromPath(path string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return v, nil
}

func finish(v *viper.Viper) (*Config, error) {
	bindEnv(v)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)
	return cfg, nil
}

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("PANEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY", "PANEL_ANTHROPIC_API_KEY")
}

// Keys returns every known dot-notation configuration key, sorted.
func Keys() []string {
	v := viper.New()
	setDefaults(v)
	keys := v.AllKeys()
	sort.Strings(keys)
	return keys
}

// IsKnownKey reports whether key can be set with SaveKey.
func IsKnownKey(key string) bool {
	key = strings.ToLower(key)
	for _, k := range Keys() {
		if k == key {
			return true
		}
	}
	return false
}

// SaveKey writes a single key into the user config file, keeping any
// values already stored there.
func SaveKey(key, value string) error {
	if !IsKnownKey(key) {
		return fmt.Errorf("unknown configuration key: %s", key)
	}

	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	configPath := filepath.Join(userConfigDir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(configPath)
	if _, err := os.Stat(configPath); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading %s: %w", configPath, err)
		}
	}

	v.Set(strings.ToLower(key), value)
	if err := v.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("writing %s: %w", configPath, err)
	}
	return nil
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.bedrock", false)
	v.SetDefault("anthropic.aws_region", "")
	v.SetDefault("anthropic.aws_profile", "")
	v.SetDefault("anthropic.base_url", "")

	v.SetDefault("models.basic", "claude-haiku-4-5-20251001")
	v.SetDefault("models.standard", "claude-sonnet-4-5-20250929")
	v.SetDefault("models.powerful", "claude-opus-4-1-20250805")

	for id := range defaultTemperatures() {
		v.SetDefault("temperatures."+id, DefaultTemperature)
	}

	v.SetDefault("generation.max_tokens", 4000)
	v.SetDefault("concurrency.max_parallel", 3)
	v.SetDefault("timeouts.task", "300s")

	v.SetDefault("retry.attempts", 3)
	v.SetDefault("retry.initial", 4)
	v.SetDefault("retry.max", 60)
	v.SetDefault("retry.unit", "1s")

	v.SetDefault("assessment.excerpt_chars", 8000)
	v.SetDefault("assessment.model_tier", string(models.TierBasic))
	v.SetDefault("assessment.metadata_chars", 15000)
	v.SetDefault("assessment.ai_metadata", true)

	v.SetDefault("breaker.max_failures", 0)
	v.SetDefault("breaker.timeout", "30s")

	v.SetDefault("output.dir", "")
	v.SetDefault("output.state_db", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", "panel.log")

	v.SetDefault("reviewers.file", "")
}

func defaultTemperatures() map[string]float64 {
	ids := []models.TaskID{
		models.TaskMethodology, models.TaskResults, models.TaskLiterature,
		models.TaskStructure, models.TaskImpact, models.TaskContradiction,
		models.TaskEthics, models.TaskAIOrigin, models.TaskHallucination,
		models.TaskCoordinator, models.TaskSummary, models.TaskEditor,
	}
	out := make(map[string]float64, len(ids))
	for _, id := range ids {
		out[string(id)] = DefaultTemperature
	}
	return out
}

// getUserConfigDir returns the XDG config directory for panel.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "panel")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "panel")
	}
	return filepath.Join(home, ".config", "panel")
}

// findProjectConfig searches for .panel.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ProjectConfigName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Models: ModelsConfig{
			Basic:    "claude-haiku-4-5-20251001",
			Standard: "claude-sonnet-4-5-20250929",
			Powerful: "claude-opus-4-1-20250805",
		},
		Temperatures: defaultTemperatures(),
		Generation:   GenerationConfig{MaxTokens: 4000},
		Concurrency:  ConcurrencyConfig{MaxParallel: 3},
		Timeouts:     TimeoutsConfig{Task: 300 * time.Second},
		Retry: RetryConfig{
			Attempts: 3,
			Initial:  4,
			Max:      60,
			Unit:     time.Second,
		},
		Assessment: AssessmentConfig{
			ExcerptChars:  8000,
			ModelTier:     string(models.TierBasic),
			MetadataChars: 15000,
			AIMetadata:    true,
		},
		Breaker: BreakerConfig{Timeout: 30 * time.Second},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			File:   "panel.log",
		},
	}
}
