package models

import "testing"

func TestTier_Valid(t *testing.T) {
	tests := []struct {
		name string
		tier Tier
		want bool
	}{
		{"basic is valid", TierBasic, true},
		{"standard is valid", TierStandard, true},
		{"powerful is valid", TierPowerful, true},
		{"empty string is invalid", Tier(""), false},
		{"unknown tier is invalid", Tier("premium"), false},
		{"uppercase is invalid", Tier("BASIC"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tier.Valid(); got != tt.want {
				t.Errorf("Tier(%q).Valid() = %v, want %v", tt.tier, got, tt.want)
			}
		})
	}
}

func TestParseTier(t *testing.T) {
	tests := []struct {
		in      string
		want    Tier
		wantErr bool
	}{
		{"basic", TierBasic, false},
		{"standard", TierStandard, false},
		{"powerful", TierPowerful, false},
		{"scout", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTier(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTier(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseTier(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTiers_Order(t *testing.T) {
	want := []Tier{TierBasic, TierStandard, TierPowerful}
	if len(Tiers) != len(want) {
		t.Fatalf("len(Tiers) = %d, want %d", len(Tiers), len(want))
	}
	for i := range want {
		if Tiers[i] != want[i] {
			t.Errorf("Tiers[%d] = %v, want %v", i, Tiers[i], want[i])
		}
	}
}
