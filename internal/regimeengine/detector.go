// Package regimeengine implements the three-indicator market regime
// classification: SOL's own 24h return, the median 24h return across
// tracked tokens, and the fraction of tokens trading above their 24h
// VWAP proxy. It adjusts thresholds, never confidence.
package regimeengine

import (
	"context"
	"sort"

	"github.com/mbomani/soulscout/internal/domain"
)

// StateSnapshot is the minimal read-only view the detector needs from the
// rolling state store: SOL's own state plus every tracked token's state.
type StateSnapshot interface {
	SolState(ctx context.Context) (*domain.TokenState, bool)
	AllStates(ctx context.Context) []*domain.TokenState
}

// Detector computes RegimeAssessment from a StateSnapshot. It holds no
// mutable state of its own — regime is a pure function of the snapshot.
type Detector struct{}

func New() *Detector { return &Detector{} }

// Detect runs the three indicators and derives the regime.
func (d *Detector) Detect(ctx context.Context, snap StateSnapshot) domain.RegimeAssessment {
	solPositive := false
	if sol, ok := snap.SolState(ctx); ok {
		solPositive = sol.M24h() > 0
	}

	states := snap.AllStates(ctx)
	medianPositive := medianM24h(states) > 0
	aboveVWAPMajority := aboveVWAPFraction(states) > 0.5

	k := 0
	if solPositive {
		k++
	}
	if medianPositive {
		k++
	}
	if aboveVWAPMajority {
		k++
	}

	assessment := domain.RegimeAssessment{
		SolPositive:       solPositive,
		MedianPositive:    medianPositive,
		AboveVWAPMajority: aboveVWAPMajority,
	}
	switch {
	case k >= 2:
		assessment.Regime = domain.RegimeRiskOn
		assessment.ThresholdAdjustment = -10
		assessment.SizeAdjustmentPct = 30
	case k == 0:
		assessment.Regime = domain.RegimeRiskOff
		assessment.ThresholdAdjustment = 10
		assessment.SizeAdjustmentPct = -30
	default:
		assessment.Regime = domain.RegimeNeutral
		assessment.ThresholdAdjustment = 0
		assessment.SizeAdjustmentPct = 0
	}
	return assessment
}

func medianM24h(states []*domain.TokenState) float64 {
	if len(states) == 0 {
		return 0
	}
	returns := make([]float64, 0, len(states))
	for _, s := range states {
		returns = append(returns, s.M24h())
	}
	sort.Float64s(returns)
	mid := len(returns) / 2
	if len(returns)%2 == 1 {
		return returns[mid]
	}
	return (returns[mid-1] + returns[mid]) / 2
}

// aboveVWAPFraction computes, per the second Open Question's resolution,
// the VWAP proxy directly from each token's 5-minute bar history
// (volume-weighted running price) rather than indexing raw ticks, and
// returns the fraction of tokens currently trading above their own proxy.
func aboveVWAPFraction(states []*domain.TokenState) float64 {
	if len(states) == 0 {
		return 0
	}
	above := 0
	for _, s := range states {
		if s.Latest.Price > vwapProxy(s) {
			above++
		}
	}
	return float64(above) / float64(len(states))
}

func vwapProxy(s *domain.TokenState) float64 {
	var pv, v float64
	for _, md := range s.History {
		w := md.Bar5m.VolumeUSD
		if w <= 0 {
			continue
		}
		pv += md.Price * w
		v += w
	}
	if v == 0 {
		return s.Latest.Price
	}
	return pv / v
}
