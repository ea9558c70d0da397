package rewards

// Loyalty tiers derived from rolling 12-month spend.
const (
	TierBronze = "bronze"
	TierSilver = "silver"
	TierGold   = "gold"
)

// Tier thresholds. A spend of exactly 50000 is still bronze and 200000 is
// still silver; the next tier starts one unit above. This boundary matches
// the production rule set and must not be "corrected" to >=50000 / >=200000.
const (
	silverMinSpend int64 = 50001
	goldMinSpend   int64 = 200001
)

// ClassifyTier maps rolling yearly spend to a tier.
func ClassifyTier(yearlySpend int64) string {
	switch {
	case yearlySpend >= goldMinSpend:
		return TierGold
	case yearlySpend >= silverMinSpend:
		return TierSilver
	default:
		return TierBronze
	}
}

// PointsToNextTier returns how much additional spend reaches the next tier,
// or 0 when the account is already gold.
func PointsToNextTier(yearlySpend int64) int64 {
	switch ClassifyTier(yearlySpend) {
	case TierGold:
		return 0
	case TierSilver:
		return goldMinSpend - yearlySpend
	default:
		return silverMinSpend - yearlySpend
	}
}

// NextTier returns the tier the account is progressing towards, or an empty
// string at gold.
func NextTier(yearlySpend int64) string {
	switch ClassifyTier(yearlySpend) {
	case TierGold:
		return ""
	case TierSilver:
		return TierGold
	default:
		return TierSilver
	}
}

// TierBenefits lists the perks displayed for each tier.
func TierBenefits(tier string) []string {
	switch tier {
	case TierGold:
		return []string{
			"Free delivery on every order",
			"Early access to limited releases",
			"Birthday double points",
			"Dedicated support line",
		}
	case TierSilver:
		return []string{
			"Free delivery over $50",
			"Member-only offers",
			"Birthday bonus points",
		}
	default:
		return []string{
			"Earn 1 point per dollar",
			"Member pricing on selected items",
		}
	}
}
