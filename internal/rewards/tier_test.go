package rewards

import "testing"

func TestClassifyTierBoundaries(t *testing.T) {
	cases := []struct {
		spend int64
		want  string
	}{
		{0, TierBronze},
		{49999, TierBronze},
		{50000, TierBronze},
		{50001, TierSilver},
		{199999, TierSilver},
		{200000, TierSilver},
		{200001, TierGold},
		{1000000, TierGold},
	}

	for _, tc := range cases {
		if got := ClassifyTier(tc.spend); got != tc.want {
			t.Errorf("ClassifyTier(%d) = %q, want %q", tc.spend, got, tc.want)
		}
	}
}

func TestPointsToNextTier(t *testing.T) {
	cases := []struct {
		spend int64
		want  int64
	}{
		{0, 50001},
		{50000, 1},
		{50001, 150000},
		{200000, 1},
		{200001, 0},
		{500000, 0},
	}

	for _, tc := range cases {
		if got := PointsToNextTier(tc.spend); got != tc.want {
			t.Errorf("PointsToNextTier(%d) = %d, want %d", tc.spend, got, tc.want)
		}
	}
}

func TestNextTier(t *testing.T) {
	if got := NextTier(0); got != TierSilver {
		t.Errorf("NextTier(0) = %q, want silver", got)
	}
	if got := NextTier(100000); got != TierGold {
		t.Errorf("NextTier(100000) = %q, want gold", got)
	}
	if got := NextTier(300000); got != "" {
		t.Errorf("NextTier(300000) = %q, want empty", got)
	}
}

func TestTierBenefitsNonEmpty(t *testing.T) {
	for _, tier := range []string{TierBronze, TierSilver, TierGold} {
		if len(TierBenefits(tier)) == 0 {
			t.Errorf("TierBenefits(%q) is empty", tier)
		}
	}
}
