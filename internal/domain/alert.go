package domain

// Band is the discrete severity class of an alert.
type Band string

const (
	BandNone           Band = "none"
	BandHeadsUp        Band = "heads_up"
	BandActionable     Band = "actionable"
	BandHighConviction Band = "high_conviction"
)

// AlertRecord is the output unit the alert builder assembles and the
// publisher appends to the outbound alerts stream.
type AlertRecord struct {
	Band             Band    `json:"band"`
	Symbol           string  `json:"symbol"`
	Price            float64 `json:"price"`
	Confidence       int     `json:"confidence"`
	Reasons          []string `json:"reasons"`
	ExitPlan         string  `json:"plan"`
	SolPath          string  `json:"sol_path"`
	EstImpactPct     float64 `json:"est_impact_pct"`
	SuggestedSizeSOL float64 `json:"suggested_size_sol,omitempty"`
	CorrID           string  `json:"corr_id"`
	TimestampMs      int64   `json:"ts_ms"`
}

// ThrottleRecord is one admitted entry in a per-(symbol,band) history.
type ThrottleRecord struct {
	Symbol     string
	Band       Band
	ReasonHash string
	TimestampMs int64
}
