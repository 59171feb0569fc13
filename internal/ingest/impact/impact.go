// Package impact estimates DEX execution quality — 1%-impact and spread
// — from a constant-product AMM's reserves (k = x*y), the way the
// ingestor's normalizer derives impact_1pct_pct and spread_pct before a
// MarketUpdate is published.
package impact

import "math"

// Calculate1PctImpact returns the percent price impact of buying 1% of
// the pool's liquidity, via the constant-product invariant. Invalid
// pools (non-positive reserves or liquidity) return a very high impact
// rather than a misleadingly low one.
func Calculate1PctImpact(reserveBase, reserveQuote, liquidityUSD float64) float64 {
	if liquidityUSD <= 0 || reserveBase <= 0 || reserveQuote <= 0 {
		return 999.0
	}

	purchaseUSD := liquidityUSD * 0.01
	k := reserveBase * reserveQuote

	newReserveQuote := reserveQuote + purchaseUSD
	newReserveBase := k / newReserveQuote
	tokensReceived := reserveBase - newReserveBase
	if tokensReceived <= 0 {
		return 999.0
	}

	priceBefore := reserveQuote / reserveBase
	effectivePrice := purchaseUSD / tokensReceived
	impactPct := (effectivePrice - priceBefore) / priceBefore * 100.0

	return math.Max(0.0, impactPct)
}

// EstimateSpreadPct derives a depth-proxy spread: deeper pools imply
// tighter spreads. A placeholder for true order-book tick data, which
// most DEX venues here do not expose.
func EstimateSpreadPct(reserveBase, reserveQuote float64) float64 {
	if reserveBase <= 0 || reserveQuote <= 0 {
		return 10.0
	}
	liquidityScore := math.Sqrt(reserveBase * reserveQuote)
	spread := 100.0 / math.Max(1.0, liquidityScore/100000.0)
	return math.Min(10.0, math.Max(0.01, spread))
}
