package predictor

// RiskTier buckets a model probability for the dashboard.
type RiskTier string

const (
	TierLow      RiskTier = "Low"
	TierModerate RiskTier = "Moderate"
	TierHigh     RiskTier = "High"
)

// Tier thresholds. Both boundaries are closed toward Moderate: exactly
// 0.20 and exactly 0.35 are Moderate. This convention is externally
// observable and must not drift.
const (
	lowCeiling = 0.20
	highFloor  = 0.35
)

// Tier maps a positive-class probability to a risk tier. Policy, not
// statistics: the cut points are fixed and carry no learned parameters.
func Tier(probability float64) RiskTier {
	switch {
	case probability < lowCeiling:
		return TierLow
	case probability <= highFloor:
		return TierModerate
	default:
		return TierHigh
	}
}
