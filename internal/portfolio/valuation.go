// Package portfolio implements wallet tracking and valuation: a price
// oracle cascade (CoinGecko, then tiered DEX liquidity), dust
// filtering, a Postgres-backed wallet/holdings store, and the
// dispatcher that answers /balance, /holdings, /add_wallet, and
// /remove_wallet off cmd.requests.
package portfolio

import (
	"fmt"
	"sort"

	"github.com/mbomani/soulscout/internal/domain"
)

// Valuator turns priced holdings into a PortfolioSummary: dust is
// dropped, CG/DEX holdings sum into the main total, EST_50 holdings
// sum (haircut-applied) into a separate subtotal, and NA holdings are
// counted but excluded from both.
type Valuator struct {
	DustMinUSD float64
	HaircutPct int
}

// NewValuator builds a Valuator with the given dust floor and haircut
// percentage applied to EST_50 holdings.
func NewValuator(dustMinUSD float64, haircutPct int) *Valuator {
	return &Valuator{DustMinUSD: dustMinUSD, HaircutPct: haircutPct}
}

func (v *Valuator) isDust(h domain.Holding) bool {
	return h.Priced && h.USDValue < v.DustMinUSD
}

// Value assembles the PortfolioSummary from a wallet's priced
// holdings.
func (v *Valuator) Value(holdings []domain.Holding) domain.PortfolioSummary {
	var summary domain.PortfolioSummary

	for _, h := range holdings {
		if v.isDust(h) {
			continue
		}

		switch h.Tag {
		case domain.ValuationCG, domain.ValuationDEX:
			if h.Priced {
				summary.TotalUSD += h.USDValue
				summary.IncludedCount++
				summary.Holdings = append(summary.Holdings, h)
			}
		case domain.ValuationEst50:
			if h.Priced {
				haircut := h.USDValue * (float64(v.HaircutPct) / 100.0)
				summary.HaircutSubtotalUSD += haircut
				h.USDValue = haircut
				summary.Holdings = append(summary.Holdings, h)
			}
		default:
			summary.ExcludedCount++
		}
	}

	sort.SliceStable(summary.Holdings, func(i, j int) bool {
		return summary.Holdings[i].USDValue > summary.Holdings[j].USDValue
	})

	summary.Notes = buildNotes(summary)
	return summary
}

func buildNotes(s domain.PortfolioSummary) string {
	var notes string
	if s.ExcludedCount > 0 {
		notes = fmt.Sprintf("Excludes %d unpriced tokens.", s.ExcludedCount)
	}
	if s.HaircutSubtotalUSD > 0 {
		if notes != "" {
			notes += " "
		}
		notes += fmt.Sprintf("Haircut subtotal: $%.2f", s.HaircutSubtotalUSD)
	}
	return notes
}
