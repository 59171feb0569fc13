package domain

// DataQuality tags the integrity of an ingested MarketUpdate.
type DataQuality string

const (
	DataQualityOK       DataQuality = "ok"
	DataQualityDegraded DataQuality = "degraded"
)

// Route describes the path a DEX quote took to fill, as reported by the
// ingestor's router. Hops and deviation feed S10 and the net-edge check.
type Route struct {
	OK             bool    `json:"ok"`
	Hops           int     `json:"hops"`
	DeviationPct   float64 `json:"deviation_percent"`
	Description    string  `json:"description,omitempty"`
}

// OHLCVBar is a completed fixed-interval bar produced by the bar synthesizer.
type OHLCVBar struct {
	Open      float64 `json:"o"`
	High      float64 `json:"h"`
	Low       float64 `json:"l"`
	Close     float64 `json:"c"`
	VolumeUSD float64 `json:"v_usd"`
	Degraded  bool    `json:"degraded"`
	TickCount int     `json:"tick_count"`
	StartMs   int64   `json:"start_ms"`
}

// MarketUpdate is the unit the ingestor publishes to market.updates and the
// analytics pipeline consumes. Invariant: Price, LiquidityUSD and Volume24hUSD
// are non-negative; a missing or zero required field forces Quality=degraded.
type MarketUpdate struct {
	PoolAddress    string      `json:"pool_address"`
	BaseMint       string      `json:"base_mint"`
	QuoteMint      string      `json:"quote_mint"`
	Symbol         string      `json:"symbol"`
	Price          float64     `json:"price"`
	LiquidityUSD   float64     `json:"liq_usd"`
	Volume24hUSD   float64     `json:"vol24h_usd"`
	FDVUSD         float64     `json:"fdv_usd,omitempty"`
	SpreadPct      float64     `json:"spread_pct"`
	Impact1PctPct  float64     `json:"impact_1pct_pct"`
	AgeHours       float64     `json:"age_hours"`
	Route          Route       `json:"route"`
	Bar5m          OHLCVBar    `json:"bar_5m"`
	Bar15m         OHLCVBar    `json:"bar_15m"`
	Quality        DataQuality `json:"quality"`
	TimestampMs    int64       `json:"ts_ms"`
}

// Normalize enforces the required-field invariant: any missing or zero
// required field forces the quality tag to degraded. Called once by the
// ingestor's normalizer before publish, and defensively by the analytics
// pipeline before it updates the rolling state store.
func (m *MarketUpdate) Normalize() {
	if m.Price <= 0 || m.LiquidityUSD <= 0 || m.Volume24hUSD < 0 ||
		m.Bar5m.TickCount == 0 || m.Bar15m.TickCount == 0 || m.TimestampMs == 0 {
		m.Quality = DataQualityDegraded
		return
	}
	if m.Quality == "" {
		m.Quality = DataQualityOK
	}
}

// Valid reports whether the required non-negativity invariant holds.
func (m *MarketUpdate) Valid() bool {
	return m.Price >= 0 && m.LiquidityUSD >= 0 && m.Volume24hUSD >= 0
}
