package domain

// Regime is the market-wide risk state inferred from three indicators. It
// adjusts thresholds, never confidence.
type Regime string

const (
	RegimeRiskOn  Regime = "RiskOn"
	RegimeRiskOff Regime = "RiskOff"
	RegimeNeutral Regime = "Neutral"
)

// RegimeAssessment is the regime detector's pure output.
type RegimeAssessment struct {
	Regime               Regime  `json:"regime"`
	SolPositive          bool    `json:"sol_positive"`
	MedianPositive       bool    `json:"median_positive"`
	AboveVWAPMajority    bool    `json:"above_vwap_majority"`
	ThresholdAdjustment  float64 `json:"threshold_adjustment"`
	SizeAdjustmentPct    float64 `json:"size_adjustment_pct"`
}
