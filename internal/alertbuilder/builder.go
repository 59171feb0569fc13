// Package alertbuilder assembles the AlertRecord an admitted update
// produces: human-readable reason lines, the exit plan template, and the
// path-to-quote descriptor, ready for the publisher to append to the
// outbound alerts stream.
package alertbuilder

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/mbomani/soulscout/internal/domain"
	"github.com/mbomani/soulscout/internal/entryedge"
)

// Build assembles an AlertRecord from the pipeline's intermediate
// results. corrID is generated fresh per alert — alerts are not replies
// to a command, so there is no caller-supplied correlation id to carry.
func Build(
	md domain.MarketUpdate,
	band domain.Band,
	scores domain.SignalScores,
	conf domain.ConfidenceResult,
	entry entryedge.EntryConfirmation,
	edge entryedge.NetEdgeCheck,
	sizing entryedge.SizingAdvisory,
) domain.AlertRecord {
	reasons := buildReasons(scores, conf, entry, edge)

	return domain.AlertRecord{
		Band:             band,
		Symbol:           md.Symbol,
		Price:            md.Price,
		Confidence:       conf.Int(),
		Reasons:          reasons,
		ExitPlan:         entryedge.BuildExitPlan(),
		SolPath:          routeDescription(md.Route),
		EstImpactPct:     md.Impact1PctPct,
		SuggestedSizeSOL: sizing.SizeSOL,
		CorrID:           uuid.NewString(),
		TimestampMs:      md.TimestampMs,
	}
}

func buildReasons(scores domain.SignalScores, conf domain.ConfidenceResult, entry entryedge.EntryConfirmation, edge entryedge.NetEdgeCheck) []string {
	var reasons []string
	reasons = append(reasons, fmt.Sprintf("S1 liquidity=%.2f", scores.S1))
	reasons = append(reasons, fmt.Sprintf("S2 volume=%.2f", scores.S2))
	reasons = append(reasons, fmt.Sprintf("S4 momentum=%.2f", scores.S4))
	reasons = append(reasons, fmt.Sprintf("S7 rug_risk=%.2f", scores.S7))
	reasons = append(reasons, fmt.Sprintf("S8 execution=%.2f", scores.S8))
	reasons = append(reasons, fmt.Sprintf("entry: %s (%s)", entry.Method, entry.Reason))
	reasons = append(reasons, fmt.Sprintf("net_edge: upside=%.1f%% downside=%.1f%% (%s)", edge.UpsidePct, edge.DownsidePct, edge.Reason))
	reasons = append(reasons, conf.Reasons...)
	return reasons
}

func routeDescription(r domain.Route) string {
	if !r.OK {
		return "route unavailable"
	}
	if r.Description != "" {
		return r.Description
	}
	return fmt.Sprintf("%d hop(s), %.2f%% deviation", r.Hops, r.DeviationPct)
}
