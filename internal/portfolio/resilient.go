package portfolio

import (
	"context"

	"github.com/mbomani/soulscout/infra/breakers"
	"github.com/mbomani/soulscout/infra/limits"
)

// resilientCG wraps a CGSource with a circuit breaker and a per-symbol
// rate limiter, so a flaky or rate-limited CoinGecko integration trips
// open and the oracle cascade falls through to DEX rather than hanging
// every holding lookup on a dead upstream.
type resilientCG struct {
	inner   CGSource
	breaker *breakers.Breaker
	limiter *limits.PerKeyLimiter
}

// NewResilientCG wraps inner with CoinGecko-appropriate resilience.
func NewResilientCG(inner CGSource) CGSource {
	return &resilientCG{
		inner:   inner,
		breaker: breakers.New("coingecko"),
		limiter: limits.NewPerKeyLimiter(),
	}
}

func (r *resilientCG) PriceUSD(ctx context.Context, symbol string) (float64, bool, error) {
	if !r.limiter.Allow(symbol) {
		return 0, false, nil
	}
	res, err := r.breaker.Execute(func() (any, error) {
		price, ok, err := r.inner.PriceUSD(ctx, symbol)
		if err != nil {
			return nil, err
		}
		return [2]any{price, ok}, nil
	})
	if err != nil {
		return 0, false, nil // breaker open or upstream error: no answer, not a hard failure
	}
	pair := res.([2]any)
	return pair[0].(float64), pair[1].(bool), nil
}

// resilientDEX wraps a DEXSource with the same breaker+limiter pattern,
// keyed per pool mint rather than per symbol.
type resilientDEX struct {
	inner   DEXSource
	breaker *breakers.Breaker
	limiter *limits.PerKeyLimiter
}

// NewResilientDEX wraps inner with DEX-lookup-appropriate resilience.
func NewResilientDEX(inner DEXSource) DEXSource {
	return &resilientDEX{
		inner:   inner,
		breaker: breakers.New("dex-pool-lookup"),
		limiter: limits.NewPerKeyLimiter(),
	}
}

func (r *resilientDEX) PoolInfo(ctx context.Context, mint string) (PoolInfo, bool, error) {
	if !r.limiter.Allow(mint) {
		return PoolInfo{}, false, nil
	}
	res, err := r.breaker.Execute(func() (any, error) {
		pool, ok, err := r.inner.PoolInfo(ctx, mint)
		if err != nil {
			return nil, err
		}
		return [2]any{pool, ok}, nil
	})
	if err != nil {
		return PoolInfo{}, false, nil
	}
	pair := res.([2]any)
	return pair[0].(PoolInfo), pair[1].(bool), nil
}
