package models

import "fmt"

// Tier represents the model resource class a task executes on.
type Tier string

const (
	// TierBasic is the cheapest, fastest model class.
	TierBasic Tier = "basic"
	// TierStandard is the default model class.
	TierStandard Tier = "standard"
	// TierPowerful is the most capable model class, used for demanding tasks.
	TierPowerful Tier = "powerful"
)

// Tiers lists every tier from cheapest to most capable.
var Tiers = []Tier{TierBasic, TierStandard, TierPowerful}

// Valid returns true if the tier is a known value.
func (t Tier) Valid() bool {
	switch t {
	case TierBasic, TierStandard, TierPowerful:
		return true
	default:
		return false
	}
}

// ParseTier converts a string into a Tier.
func ParseTier(s string) (Tier, error) {
	t := Tier(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown tier %q (want basic, standard or powerful)", s)
	}
	return t, nil
}
