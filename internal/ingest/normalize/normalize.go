// Package normalize assembles a domain.MarketUpdate from a raw DEX pool
// snapshot and the two completed bars the synthesizer has emitted for
// it. Raw wire formats differ per venue; that parsing is out of scope
// (the spec names it as an external collaborator) — RawPool is already
// the venue-agnostic shape this package starts from.
package normalize

import (
	"github.com/mbomani/soulscout/internal/domain"
	"github.com/mbomani/soulscout/internal/ingest/impact"
)

// RawPool is the venue-normalized pool snapshot the ingestor's
// per-venue adapters produce before handing off to this package.
type RawPool struct {
	Address      string
	MintBase     string
	MintQuote    string
	Symbol       string
	Price        float64
	LiquidityUSD float64
	Volume24hUSD float64
	FDVUSD       float64
	ReserveBase  float64
	ReserveQuote float64
	AgeHours     float64
	Route        domain.Route
	TimestampMs  int64
}

// Normalize derives spread/impact from the pool's reserves, attaches the
// completed 5m/15m bars, and applies the MarketUpdate invariant: any
// missing or zero required field forces quality=degraded.
func Normalize(raw RawPool, bar5m, bar15m domain.OHLCVBar) domain.MarketUpdate {
	md := domain.MarketUpdate{
		PoolAddress:   raw.Address,
		BaseMint:      raw.MintBase,
		QuoteMint:     raw.MintQuote,
		Symbol:        raw.Symbol,
		Price:         raw.Price,
		LiquidityUSD:  raw.LiquidityUSD,
		Volume24hUSD:  raw.Volume24hUSD,
		FDVUSD:        raw.FDVUSD,
		AgeHours:      raw.AgeHours,
		Route:         raw.Route,
		Bar5m:         bar5m,
		Bar15m:        bar15m,
		TimestampMs:   raw.TimestampMs,
		SpreadPct:     impact.EstimateSpreadPct(raw.ReserveBase, raw.ReserveQuote),
		Impact1PctPct: impact.Calculate1PctImpact(raw.ReserveBase, raw.ReserveQuote, raw.LiquidityUSD),
	}
	md.Normalize()
	return md
}
