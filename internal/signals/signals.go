// Package signals computes the ten real-valued signal scores (S1-S10) and
// the N1 list-hygiene factor the confidence scorer weighs. Every function
// here is pure: given a TokenState snapshot it returns a score in [0,1]
// with no side effects, so the calculator itself needs no locking.
package signals

import (
	"math"

	"github.com/mbomani/soulscout/internal/domain"
)

var knownSymbols = map[string]bool{
	"SOL": true, "USDC": true, "USDT": true, "BONK": true, "JUP": true, "WIF": true, "JTO": true,
}

// Compute derives all ten signals and N1 from the current snapshot and
// its rolling history.
func Compute(state *domain.TokenState) domain.SignalScores {
	md := state.Latest
	return domain.SignalScores{
		S1:  liquidity(md.LiquidityUSD),
		S2:  volume(md.Volume24hUSD),
		S3:  fdvLiq(fdvLiqRatio(md)),
		S4:  momentum(state.M1h(), state.M24h()),
		S5:  structure(state),
		S6:  volatility(state),
		S7:  rugRisk(md.AgeHours),
		S8:  execution(md.SpreadPct, md.Impact1PctPct),
		S9:  volumeTrend(state),
		S10: route(md.Route),
		N1:  listHygiene(md.Symbol),
	}
}

func fdvLiqRatio(md domain.MarketUpdate) float64 {
	if md.FDVUSD <= 0 || md.LiquidityUSD <= 0 {
		return -1 // signals insufficient data to S3
	}
	return md.FDVUSD / md.LiquidityUSD
}

// S1 Liquidity: hard floor at 150k for actionable, 25k-150k heads-up only.
func liquidity(liqUSD float64) float64 {
	switch {
	case liqUSD < 25000:
		return 0.0
	case liqUSD < 150000:
		return 0.5
	default:
		return 1.0
	}
}

// S2 Volume: hard floor at 500k for actionable, 50k-500k heads-up only.
func volume(vol24hUSD float64) float64 {
	switch {
	case vol24hUSD < 50000:
		return 0.0
	case vol24hUSD < 500000:
		return 0.5
	default:
		return 1.0
	}
}

// S3 FDV/Liq: preferred range [5,50], penalized outside, linear between.
func fdvLiq(ratio float64) float64 {
	if ratio < 0 {
		return 0.5 // insufficient data (no FDV supplied)
	}
	if ratio >= 5.0 && ratio <= 50.0 {
		return 1.0
	}
	if ratio > 150.0 {
		return 0.3
	}
	if ratio < 2.0 {
		return 0.4
	}
	if ratio < 5.0 {
		return 0.4 + (ratio/5.0)*0.6
	}
	excess := math.Min(100.0, ratio-50.0)
	return 1.0 - (excess/100.0)*0.7
}

// S4 Momentum: base 0.5, bonus/penalty bands on m1h and m24h, clamped.
func momentum(m1h, m24h float64) float64 {
	score := 0.5
	switch {
	case m1h >= 1.0 && m1h <= 12.0:
		score += 0.25
	case m1h > 12.0:
		score += 0.10
	case m1h < 0:
		score -= 0.20
	}
	switch {
	case m24h >= 2.0 && m24h <= 60.0:
		score += 0.25
	case m24h > 60.0:
		score += 0.10
	case m24h < 0:
		score -= 0.20
	}
	return clamp01(score)
}

// S5 Structure: higher low vs prior low over the last 10-20 entries.
func structure(state *domain.TokenState) float64 {
	h := state.History
	if len(h) < 20 {
		return 0.5
	}
	prevLow := minPrice(h[len(h)-20 : len(h)-10])
	recentLow := minPrice(h[len(h)-10:])
	if recentLow > prevLow*1.02 {
		return 0.9
	}
	if recentLow < prevLow*0.98 {
		return 0.3
	}
	return 0.6
}

// S6 Volatility: coefficient of variation over the last 60 entries.
func volatility(state *domain.TokenState) float64 {
	h := state.History
	if len(h) < 60 {
		return 0.5
	}
	window := h[len(h)-60:]
	mean := 0.0
	for _, e := range window {
		mean += e.Price
	}
	mean /= float64(len(window))
	if mean == 0 {
		return 0.5
	}
	variance := 0.0
	for _, e := range window {
		d := e.Price - mean
		variance += d * d
	}
	variance /= float64(len(window))
	cv := math.Sqrt(variance) / mean
	switch {
	case cv < 0.05:
		return 0.9
	case cv > 0.20:
		return 0.3
	default:
		return 0.7
	}
}

// S7 Rug risk: penalizes very young tokens.
func rugRisk(ageHours float64) float64 {
	switch {
	case ageHours < 24.0:
		return 0.3
	case ageHours < 72.0:
		return 0.6
	default:
		return 0.9
	}
}

// S8 Execution: hard-gates on spread/impact ceilings, else linear penalty.
func execution(spreadPct, impactPct float64) float64 {
	if spreadPct > 2.5 || impactPct > 1.5 {
		return 0.0
	}
	score := 1.0
	score -= (spreadPct / 2.5) * 0.3
	score -= (impactPct / 1.5) * 0.3
	return math.Max(0.0, score)
}

// S9 Volume trend: last 50 entries' volume vs the prior 50.
func volumeTrend(state *domain.TokenState) float64 {
	h := state.History
	if len(h) < 100 {
		return 0.5
	}
	recent := sumBar5mVol(h[len(h)-50:])
	old := sumBar5mVol(h[len(h)-100 : len(h)-50])
	switch {
	case old > 0 && recent > old*1.2:
		return 0.9
	case old > 0 && recent < old*0.8:
		return 0.4
	default:
		return 0.6
	}
}

// S10 Route: hop count and deviation penalties, hard-gated on !ok or >3 hops.
func route(r domain.Route) float64 {
	if !r.OK || r.Hops > 3 {
		return 0.0
	}
	score := 1.0
	score -= float64(r.Hops-1) * 0.15
	score -= r.DeviationPct * 0.3
	return clamp01(score)
}

// N1 List hygiene: a 10-point confidence penalty for symbols not on a
// recognized widely-mirrored list.
func listHygiene(symbol string) domain.ListHygiene {
	if knownSymbols[symbol] {
		return domain.ListHygieneNormal
	}
	return domain.ListHygieneLow
}

func minPrice(entries []domain.MarketUpdate) float64 {
	if len(entries) == 0 {
		return 0
	}
	m := entries[0].Price
	for _, e := range entries[1:] {
		if e.Price < m {
			m = e.Price
		}
	}
	return m
}

func sumBar5mVol(entries []domain.MarketUpdate) float64 {
	total := 0.0
	for _, e := range entries {
		total += e.Bar5m.VolumeUSD
	}
	return total
}

func clamp01(v float64) float64 {
	return math.Max(0.0, math.Min(1.0, v))
}
