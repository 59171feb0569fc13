package portfolio

import (
	"context"

	"github.com/mbomani/soulscout/internal/domain"
)

const (
	dexFullLiquidityUSD = 75_000.0
	dexHaircutMinUSD    = 25_000.0
)

// CGSource is the subset of a price client the oracle needs.
// CoinGecko and DEX clients (whichever venue adapters the ingestor
// already has) satisfy this independently.
type CGSource interface {
	PriceUSD(ctx context.Context, symbol string) (float64, bool, error)
}

// PoolInfo is the DEX pool snapshot the oracle's fallback tier reads.
type PoolInfo struct {
	Price        float64
	LiquidityUSD float64
}

type DEXSource interface {
	PoolInfo(ctx context.Context, mint string) (PoolInfo, bool, error)
}

// Oracle prices a holding via CoinGecko first, falling back to DEX
// liquidity tiers, finally marking it NA if neither source resolves.
type Oracle struct {
	CG  CGSource
	DEX DEXSource
}

// NewOracle builds an Oracle from its two price sources.
func NewOracle(cg CGSource, dex DEXSource) *Oracle {
	return &Oracle{CG: cg, DEX: dex}
}

// Price resolves h's USDPrice/USDValue/Tag in place per the cascade:
// CoinGecko, then DEX >= 75k liquidity (full weight), then DEX 25k-75k
// (EST_50, caller applies the haircut at summary time), else NA.
// Client errors are treated as "this source has no answer" rather than
// failing the whole lookup — a down CoinGecko should fall through to
// DEX, not abort pricing.
func (o *Oracle) Price(ctx context.Context, h domain.Holding) domain.Holding {
	if o.CG != nil {
		if price, ok, err := o.CG.PriceUSD(ctx, h.Symbol); err == nil && ok {
			h.USDPrice = price
			h.USDValue = h.Amount * price
			h.Tag = domain.ValuationCG
			h.Priced = true
			return h
		}
	}

	if o.DEX != nil {
		if pool, ok, err := o.DEX.PoolInfo(ctx, h.Mint); err == nil && ok {
			if pool.LiquidityUSD >= dexFullLiquidityUSD {
				h.USDPrice = pool.Price
				h.USDValue = h.Amount * pool.Price
				h.Tag = domain.ValuationDEX
				h.Priced = true
				return h
			}
			if pool.LiquidityUSD >= dexHaircutMinUSD {
				h.USDPrice = pool.Price
				h.USDValue = h.Amount * pool.Price
				h.Tag = domain.ValuationEst50
				h.Priced = true
				return h
			}
		}
	}

	h.Tag = domain.ValuationNA
	h.Priced = false
	return h
}
