package agent

import (
	"github.com/ShayCichocki/panel/internal/config"
	"github.com/ShayCichocki/panel/pkg/models"
)

// Model identifiers bound to each tier unless configuration overrides them.
const (
	// ModelHaiku is the lightweight, fast model for the basic tier.
	ModelHaiku = "claude-haiku-4-5-20251001"
	// ModelSonnet is the balanced model for the standard tier.
	ModelSonnet = "claude-sonnet-4-5-20250929"
	// ModelOpus is the most capable model for the powerful tier.
	ModelOpus = "claude-opus-4-1-20250805"
)

// TierDefaultModels maps tiers to their default models.
var TierDefaultModels = ModelSet{
	models.TierBasic:    ModelHaiku,
	models.TierStandard: ModelSonnet,
	models.TierPowerful: ModelOpus,
}

// ModelSet binds each tier to a concrete model name.
type ModelSet map[models.Tier]string

// ModelsFromConfig builds a ModelSet from configuration, falling back to
// TierDefaultModels for empty entries.
func ModelsFromConfig(cfg config.ModelsConfig) ModelSet {
	set := make(ModelSet, len(models.Tiers))
	for _, tier := range models.Tiers {
		if m := cfg.ForTier(tier); m != "" {
			set[tier] = m
		} else {
			set[tier] = TierDefaultModels[tier]
		}
	}
	return set
}

// SelectModel returns the model bound to tier. Unknown tiers resolve to the
// standard model.
func (s ModelSet) SelectModel(tier models.Tier) string {
	if m, ok := s[tier]; ok && m != "" {
		return m
	}
	if m, ok := s[models.TierStandard]; ok && m != "" {
		return m
	}
	return ModelSonnet
}
