package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ShayCichocki/panel/internal/api"
	"github.com/ShayCichocki/panel/pkg/models"
)

// DefaultComplexity is used whenever the assessment cannot be trusted.
const DefaultComplexity = 0.5

const complexitySystem = "You rate the complexity of scientific writing. Reply with a single valid JSON object and nothing else."

const complexityPrompt = `Assess how intellectually demanding the following excerpt of a scientific paper is.
Weigh:
- density of technical vocabulary
- conceptual depth and abstraction
- sophistication of the methods
- how many disciplines it draws on

Score from 0.0 (very simple, such as a school report) to 1.0 (extremely complex, such as frontier theoretical work).

Answer with one JSON object containing a single key, "complexity_score".

--- EXCERPT ---
%s
--- END OF EXCERPT ---`

// ComplexityAssessor estimates document complexity with a single
// lightweight generation call. It never fails: any problem yields
// DefaultComplexity with Degraded set.
type ComplexityAssessor struct {
	gen    api.Generator
	model  string
	logger *slog.Logger
}

// NewComplexityAssessor creates an assessor that calls model through gen.
func NewComplexityAssessor(gen api.Generator, model string, logger *slog.Logger) *ComplexityAssessor {
	return &ComplexityAssessor{
		gen:    gen,
		model:  model,
		logger: logger.With("component", "complexity"),
	}
}

type complexityReply struct {
	Score *scoreValue `json:"complexity_score"`
}

// scoreValue accepts a JSON number or a numeric string such as "0.8".
type scoreValue float64

func (s *scoreValue) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	f, err := n.Float64()
	if err != nil {
		return err
	}
	*s = scoreValue(f)
	return nil
}

// Assess scores excerpt. The excerpt is used as given; bounding its length
// is the caller's job.
func (a *ComplexityAssessor) Assess(ctx context.Context, excerpt string) models.Complexity {
	if a == nil || a.gen == nil {
		return a.degrade("no generator configured")
	}

	resp, err := a.gen.Generate(ctx, api.Request{
		Model:       a.model,
		System:      complexitySystem,
		Prompt:      fmt.Sprintf(complexityPrompt, excerpt),
		Temperature: 0,
		MaxTokens:   100,
	})
	if err != nil {
		return a.degrade(fmt.Sprintf("assessment call failed: %v", err))
	}

	var reply complexityReply
	if err := api.ExtractJSON(resp.Text, &reply); err != nil {
		return a.degrade(fmt.Sprintf("unparseable assessment: %v", err))
	}
	if reply.Score == nil {
		return a.degrade("assessment missing complexity_score")
	}

	score := float64(*reply.Score)
	if score < 0 || score > 1 {
		return a.degrade(fmt.Sprintf("complexity_score %v outside [0,1]", score))
	}

	a.logger.Info("assessed document complexity", "score", fmt.Sprintf("%.2f", score))
	return models.Complexity{Score: score}
}

func (a *ComplexityAssessor) degrade(reason string) models.Complexity {
	if a != nil && a.logger != nil {
		a.logger.Warn("complexity assessment degraded, using default",
			"reason", reason, "default", DefaultComplexity)
	}
	return models.Complexity{Score: DefaultComplexity, Degraded: true, Reason: reason}
}
