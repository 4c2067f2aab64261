package orchestrator

import (
	"math"

	"github.com/ShayCichocki/panel/pkg/models"
)

// Weights of the final tier score. Every task shares the same sensitivity
// to document complexity.
const (
	ComplexityShare = 0.6
	WeightShare     = 0.4
)

// Tier thresholds. A score equal to a threshold takes the higher tier.
const (
	PowerfulThreshold = 0.75
	StandardThreshold = 0.50
)

// scorePrecision rounds away float noise so that exact thresholds land on
// the inclusive branch (0.75*0.6 is not exactly 0.45 in binary).
const scorePrecision = 1e6

// TierSelector maps a task's base weight and the document complexity to an
// execution tier. It holds no state between calls.
type TierSelector struct {
	powerful float64
	standard float64
}

// NewTierSelector creates a TierSelector with the default thresholds.
func NewTierSelector() *TierSelector {
	return &TierSelector{powerful: PowerfulThreshold, standard: StandardThreshold}
}

// FinalScore combines complexity and base weight into a score in [0,1].
func FinalScore(baseWeight, complexity float64) float64 {
	score := complexity*ComplexityShare + baseWeight*WeightShare
	return math.Round(score*scorePrecision) / scorePrecision
}

// SelectTier returns the tier for a task:
//   - score >= 0.75 -> powerful
//   - score >= 0.50 -> standard
//   - otherwise     -> basic
func (s *TierSelector) SelectTier(baseWeight, complexity float64) models.Tier {
	return s.tierForScore(FinalScore(baseWeight, complexity))
}

func (s *TierSelector) tierForScore(score float64) models.Tier {
	switch {
	case score >= s.powerful:
		return models.TierPowerful
	case score >= s.standard:
		return models.TierStandard
	default:
		return models.TierBasic
	}
}

var defaultSelector = NewTierSelector()

// SelectTier is a convenience function using the default thresholds.
func SelectTier(baseWeight, complexity float64) models.Tier {
	return defaultSelector.SelectTier(baseWeight, complexity)
}
