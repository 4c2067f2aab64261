package main

import (
	"fmt"
	"log/slog"

	"github.com/ShayCichocki/panel/internal/agent"
	"github.com/ShayCichocki/panel/internal/api"
	"github.com/ShayCichocki/panel/internal/config"
)

// newClient builds the generation client from configuration.
func newClient(cfg *config.Config) (*api.Client, error) {
	key, _, err := config.ResolveAPIKey(cfg)
	if err != nil {
		return nil, err
	}

	client, err := api.NewClient(api.ClientConfig{
		APIKey:        key,
		UseAWSBedrock: cfg.Anthropic.Bedrock,
		AWSRegion:     cfg.Anthropic.AWSRegion,
		AWSProfile:    cfg.Anthropic.AWSProfile,
		BaseURL:       cfg.Anthropic.BaseURL,
		Breaker: api.NewBreaker(api.BreakerConfig{
			MaxFailures: cfg.Breaker.MaxFailures,
			Timeout:     cfg.Breaker.Timeout,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("create API client: %w", err)
	}
	return client, nil
}

// newRunner wraps a retrying TaskRunner in the per-process cache.
func newRunner(gen api.Generator, cfg *config.Config, logger *slog.Logger) *agent.CachingTaskRunner {
	return agent.NewCachingTaskRunner(agent.NewTaskRunner(gen, agent.RunnerConfig{
		Models:    agent.ModelsFromConfig(cfg.Models),
		Retry:     agent.RetryPolicyFromConfig(cfg.Retry),
		MaxTokens: cfg.Generation.MaxTokens,
	}, logger))
}
