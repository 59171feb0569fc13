// Package entryedge implements the Entry/Edge Evaluator: entry
// confirmation for spikes (m1h > +12%) via retest-and-hold or quick-
// pullback patterns, the net-edge check (upside vs execution cost), and
// an advisory position-sizing suggestion.
package entryedge

import (
	"math"

	"github.com/mbomani/soulscout/internal/domain"
)

// EntryConfirmation is the outcome of the entry-confirmation check.
type EntryConfirmation struct {
	Confirmed bool
	Method    string // "not_required", "retest_hold", "quick_pullback", "none"
	Reason    string
}

// NetEdgeCheck is the outcome of the upside-vs-cost check.
type NetEdgeCheck struct {
	Passes     bool
	UpsidePct  float64
	DownsidePct float64
	Reason     string
}

// SizingAdvisory is an informational-only position-size suggestion; it
// never executes, custodies, or signs anything.
type SizingAdvisory struct {
	SizeSOL      float64
	SizeUSD      float64
	EstImpactPct float64
	Rationale    string
}

// CheckEntryConfirmation requires confirmation only when m1h exceeds
// +12%; otherwise it is trivially satisfied.
func CheckEntryConfirmation(state *domain.TokenState) EntryConfirmation {
	m1h := state.M1h()
	if m1h <= 12.0 {
		return EntryConfirmation{Confirmed: true, Method: "not_required", Reason: "m1h within normal range"}
	}
	if checkRetestHold(state) {
		return EntryConfirmation{Confirmed: true, Method: "retest_hold", Reason: "retest and hold confirmed"}
	}
	if checkQuickPullback(state) {
		return EntryConfirmation{Confirmed: true, Method: "quick_pullback", Reason: "quick pullback confirmed"}
	}
	return EntryConfirmation{Confirmed: false, Method: "none", Reason: "awaiting entry confirmation (spike cap)"}
}

// checkRetestHold: within the most recent 20 entries, a prior high is
// found over entries 20-back to 5-back; the last 5 entries pull back
// below 0.98x that high; the current 5m close closes back above it.
func checkRetestHold(state *domain.TokenState) bool {
	h := state.History
	n := len(h)
	if n < 20 {
		return false
	}
	recentHigh := maxPrice(h[n-20 : n-5])
	pullbackLow := minPrice(h[n-5:])
	return pullbackLow < recentHigh*0.98 && state.Latest.Bar5m.Close > recentHigh
}

// checkQuickPullback: over a 30-entry window, H is the max 30-back to
// 15-back; L is the min of the most recent 15; the pullback percent must
// land in [2%,5%] and the current 15m close must close back above H.
func checkQuickPullback(state *domain.TokenState) bool {
	h := state.History
	n := len(h)
	if n < 30 {
		return false
	}
	recentHigh := maxPrice(h[n-30 : n-15])
	pullbackLow := minPrice(h[n-15:])
	if recentHigh <= 0 {
		return false
	}
	pullbackPct := (recentHigh - pullbackLow) / recentHigh * 100.0
	return pullbackPct >= 2.0 && pullbackPct <= 5.0 && state.Latest.Bar15m.Close > recentHigh
}

// estimate24hSwingHigh returns the 24h swing high capped at +15% from
// the current price, falling back to +15% flat when history is empty.
func estimate24hSwingHigh(state *domain.TokenState) float64 {
	price := state.Latest.Price
	if len(state.History) == 0 {
		return price * 1.15
	}
	swingHigh := price
	for _, md := range state.History {
		if md.Price > swingHigh {
			swingHigh = md.Price
		}
	}
	return math.Min(swingHigh, price*1.15)
}

// CheckNetEdge passes iff upside (capped at 15%, to the 24h swing high)
// is at least 2x the downside (spread + impact + a 0.30% lag allowance).
func CheckNetEdge(state *domain.TokenState) NetEdgeCheck {
	price := state.Latest.Price
	swingHigh := estimate24hSwingHigh(state)

	upside := 0.0
	if price > 0 {
		upside = (swingHigh - price) / price * 100.0
	}
	upside = math.Min(upside, 15.0)

	downside := state.Latest.SpreadPct + state.Latest.Impact1PctPct + 0.30

	passes := upside >= 2.0*downside
	reason := "insufficient upside vs execution cost"
	if passes {
		reason = "net edge positive"
	}
	return NetEdgeCheck{Passes: passes, UpsidePct: upside, DownsidePct: downside, Reason: reason}
}

// ComputeSizing derives an advisory-only position size: ATR-based and
// liquidity-based caps, regime-adjusted, globally capped at 30% of the
// wallet. solPriceUSD must come from the portfolio service's price
// oracle; there is no embedded price source here.
func ComputeSizing(state *domain.TokenState, walletSOL, regimeSizeAdjPct, solPriceUSD float64) SizingAdvisory {
	price := state.Latest.Price
	atrProxy := price * 0.05 // 5% ATR proxy, matching the original's simplified estimator
	atrCapSOL := math.Inf(1)
	if atrProxy > 0 && price > 0 {
		atrCapSOL = walletSOL * 0.006 / (atrProxy / price)
	}

	liqCapUSD := state.Latest.LiquidityUSD * 0.008
	liqCapSOL := math.Inf(1)
	if solPriceUSD > 0 {
		liqCapSOL = liqCapUSD / solPriceUSD
	}

	sizeSOL := math.Min(atrCapSOL, liqCapSOL)
	sizeSOL *= 1.0 + regimeSizeAdjPct/100.0
	sizeSOL = math.Min(sizeSOL, walletSOL*0.30)
	if sizeSOL < 0 {
		sizeSOL = 0
	}

	sizeUSD := sizeSOL * solPriceUSD
	estImpact := 0.0
	if state.Latest.LiquidityUSD > 0 {
		estImpact = state.Latest.Impact1PctPct * (sizeUSD / state.Latest.LiquidityUSD) * 100.0
	}

	return SizingAdvisory{
		SizeSOL:      sizeSOL,
		SizeUSD:      sizeUSD,
		EstImpactPct: estImpact,
		Rationale:    "ATR and liquidity capped",
	}
}

// BuildExitPlan returns the default exit-plan template text.
func BuildExitPlan() string {
	return "Trim 25% at +15%; 25% at +30%; trail rest"
}

func maxPrice(entries []domain.MarketUpdate) float64 {
	m := 0.0
	for _, e := range entries {
		if e.Price > m {
			m = e.Price
		}
	}
	return m
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
