// Package confidence turns a SignalScores snapshot into the weighted,
// discounted, penalized confidence score the band classifier gates on.
package confidence

import (
	"fmt"

	"github.com/mbomani/soulscout/internal/domain"
)

// Weights are the default per-signal weights S1..S10, summing to 1.0.
var Weights = [10]float64{0.15, 0.12, 0.08, 0.18, 0.10, 0.08, 0.12, 0.10, 0.05, 0.02}

// Scorer computes ConfidenceResult from a SignalScores snapshot and the
// MarketUpdate it was derived from. It is stateless and deterministic.
type Scorer struct {
	weights [10]float64
}

// New returns a Scorer using the default weights. An error is returned
// only if the weights passed to NewWithWeights do not sum to a positive
// value.
func New() *Scorer {
	return &Scorer{weights: Weights}
}

// NewWithWeights allows overriding the default weights (e.g. from a
// config profile) while enforcing the one failure mode the component
// design names: malformed weights whose sum is non-positive.
func NewWithWeights(w [10]float64) (*Scorer, error) {
	sum := 0.0
	for _, v := range w {
		sum += v
	}
	if sum <= 0 {
		return nil, fmt.Errorf("confidence: weights sum to %.4f, must be positive", sum)
	}
	return &Scorer{weights: w}, nil
}

// Score computes the confidence result for scores derived from md.
func (s *Scorer) Score(scores domain.SignalScores, md domain.MarketUpdate) domain.ConfidenceResult {
	vals := [10]float64{
		scores.S1, scores.S2, scores.S3, scores.S4, scores.S5,
		scores.S6, scores.S7, scores.S8, scores.S9, scores.S10,
	}

	raw := 0.0
	for i, w := range s.weights {
		raw += w * vals[i]
	}
	raw *= 100.0

	dq := 1.0
	if scores.S1 < 0.1 {
		dq -= 0.08
	}
	if scores.S2 < 0.1 {
		dq -= 0.08
	}
	if scores.S4 < 0.1 {
		dq -= 0.08
	}
	if md.Bar5m.TickCount == 0 {
		dq -= 0.08
	}
	if md.Bar15m.TickCount == 0 {
		dq -= 0.08
	}
	if md.Quality == domain.DataQualityDegraded {
		dq -= 0.08
	}
	dqForced := dq < 0.7

	rugCap := false
	if scores.S7 < 0.3 {
		rugCap = true
		if raw > 55 {
			raw = 55
		}
	}

	penalties := 0.0
	var reasons []string
	if md.AgeHours < 24 {
		penalties += 15
		reasons = append(reasons, "token age < 24h (+15 penalty)")
	} else if md.AgeHours < 48 {
		penalties += 5
		reasons = append(reasons, "token age < 48h (+5 penalty)")
	}
	if md.SpreadPct > 1.5 {
		penalties += 5
		reasons = append(reasons, "spread > 1.5% (+5 penalty)")
	}
	if md.Impact1PctPct > 1.0 {
		penalties += 5
		reasons = append(reasons, "impact > 1.0% (+5 penalty)")
	}
	if scores.S9 < 0.5 {
		penalties += 3
		reasons = append(reasons, "volume trend weak (+3 penalty)")
	}
	if scores.N1Score() < 1.0 {
		penalties += 10
		reasons = append(reasons, "symbol off recognized list (+10 penalty)")
	}

	c := raw - penalties
	if c < 0 {
		c = 0
	}

	youngAndRisky := md.AgeHours < 72 && scores.S7 < 0.6

	return domain.ConfidenceResult{
		RawScore:        raw,
		DataQuality:     dq,
		Penalties:       penalties,
		Confidence:      c,
		RugCapApplied:   rugCap,
		YoungAndRisky:   youngAndRisky,
		DQForcedHeadsUp: dqForced,
		Reasons:         reasons,
	}
}
