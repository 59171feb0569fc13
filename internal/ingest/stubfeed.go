package ingest

import (
	"context"
	"math/rand"
	"time"

	"github.com/mbomani/soulscout/internal/domain"
)

// StubFeedSource emits synthetic pool ticks on a fixed cadence for
// local development and integration testing, grounded on the same
// stand-in role the teacher's stub_bus.go plays for the stream bus: a
// real venue feed (DEX aggregator polling, RPC account subscriptions)
// is an external collaborator out of scope, so this is what local runs
// and tests drive the synthesis pipeline with instead.
type StubFeedSource struct {
	Symbols []string
	Every   time.Duration

	rng *rand.Rand
}

// NewStubFeedSource builds a StubFeedSource cycling through symbols
// every interval (defaults to one second if interval <= 0).
func NewStubFeedSource(symbols []string, interval time.Duration) *StubFeedSource {
	if interval <= 0 {
		interval = tickInterval
	}
	return &StubFeedSource{Symbols: symbols, Every: interval, rng: rand.New(rand.NewSource(1))}
}

// Run emits one tick per symbol every Every until ctx is cancelled.
func (f *StubFeedSource) Run(ctx context.Context, emit func(PoolTick)) error {
	ticker := time.NewTicker(f.Every)
	defer ticker.Stop()

	prices := make(map[string]float64, len(f.Symbols))
	for _, sym := range f.Symbols {
		prices[sym] = 1.0
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			now := time.Now().UnixMilli()
			for _, sym := range f.Symbols {
				drift := 1.0 + (f.rng.Float64()-0.5)*0.02
				prices[sym] *= drift
				emit(PoolTick{
					Symbol:       sym,
					Address:      sym + "-pool",
					MintBase:     sym,
					MintQuote:    "SOL",
					Price:        prices[sym],
					LiquidityUSD: 50_000 + f.rng.Float64()*50_000,
					Volume24hUSD: 10_000 + f.rng.Float64()*20_000,
					FDVUSD:       500_000,
					ReserveBase:  1_000_000,
					ReserveQuote: 1_000,
					AgeHours:     24,
					Route:        domain.Route{OK: true, Hops: 1},
					TimestampMs:  now,
				})
			}
		}
	}
}
