// Package bands implements the Band Classifier's first-matching-rule
// decision table, mapping (confidence, regime threshold, gates) onto a
// severity band.
package bands

import "github.com/mbomani/soulscout/internal/domain"

// DefaultBaseThreshold is the actionable cutoff before regime adjustment.
const DefaultBaseThreshold = 70.0

// Inputs bundles everything the decision table's seven rules read.
type Inputs struct {
	Confidence       domain.ConfidenceResult
	Regime           domain.RegimeAssessment
	EntryConfirmed   bool
	NetEdgePasses    bool
	BaseThreshold    float64
}

// Classify applies the seven-rule table in order; the first matching
// rule wins. There is no rule gap: rule 7 is an unconditional "none".
func Classify(in Inputs) domain.Band {
	c := in.Confidence.Confidence
	base := in.BaseThreshold
	if base == 0 {
		base = DefaultBaseThreshold
	}

	// Rule 1/2: DQ-forced heads-up overrides everything else.
	if in.Confidence.DQForcedHeadsUp {
		if c >= 60 {
			return domain.BandHeadsUp
		}
		return domain.BandNone
	}

	// Rule 3: entry not confirmed or net-edge failed caps at heads_up.
	if !in.EntryConfirmed || !in.NetEdgePasses {
		if c >= 60 {
			return domain.BandHeadsUp
		}
		// falls through to remaining rules, which only admit at c>=60 anyway,
		// so an unconfirmed/failed-edge update below 60 is "none" either way.
	}

	entryEdgeOK := in.EntryConfirmed && in.NetEdgePasses

	// Rule 4: high conviction.
	if entryEdgeOK && c >= 85 && !in.Confidence.RugCapApplied && !in.Confidence.YoungAndRisky {
		return domain.BandHighConviction
	}

	// Rule 5: actionable against the regime-adjusted threshold.
	if entryEdgeOK && c >= base+in.Regime.ThresholdAdjustment {
		return domain.BandActionable
	}

	// Rule 6: heads-up.
	if c >= 60 {
		return domain.BandHeadsUp
	}

	// Rule 7: otherwise.
	return domain.BandNone
}
