package ingest

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/mbomani/soulscout/internal/domain"
	"github.com/mbomani/soulscout/internal/ingest/barsynth"
	"github.com/mbomani/soulscout/internal/ingest/normalize"
	"github.com/mbomani/soulscout/internal/stream"
)

// PoolTick is one venue-normalized pool observation. Per-venue wire
// parsing (DEX aggregator responses, RPC account subscriptions) is an
// external collaborator out of scope here — a FeedSource already
// emits this shape.
type PoolTick struct {
	Symbol       string
	Address      string
	MintBase     string
	MintQuote    string
	Price        float64
	LiquidityUSD float64
	Volume24hUSD float64
	FDVUSD       float64
	ReserveBase  float64
	ReserveQuote float64
	AgeHours     float64
	Route        domain.Route
	TimestampMs  int64
}

// FeedSource streams PoolTicks until ctx is cancelled or the source is
// exhausted; it is the ingestor's only external dependency.
type FeedSource interface {
	Run(ctx context.Context, emit func(PoolTick)) error
}

// Service buckets ticks per symbol into 5m/15m bars and, on 5m bar
// completion, normalizes and publishes a market.updates record.
type Service struct {
	Bus      stream.EventBus
	Feed     FeedSource
	Interval5m  int64
	Interval15m int64
	Log      zerolog.Logger

	synths5m  map[string]*barsynth.Synthesizer
	synths15m map[string]*barsynth.Synthesizer
}

// NewService builds a Service with fresh per-symbol synthesizer state.
func NewService(bus stream.EventBus, feed FeedSource, interval5m, interval15m int64, log zerolog.Logger) *Service {
	return &Service{
		Bus:         bus,
		Feed:        feed,
		Interval5m:  interval5m,
		Interval15m: interval15m,
		Log:         log,
		synths5m:    make(map[string]*barsynth.Synthesizer),
		synths15m:   make(map[string]*barsynth.Synthesizer),
	}
}

// Run drains the feed source until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	return s.Feed.Run(ctx, func(tick PoolTick) {
		s.handleTick(ctx, tick)
	})
}

func (s *Service) handleTick(ctx context.Context, tick PoolTick) {
	s5, ok := s.synths5m[tick.Symbol]
	if !ok {
		var err error
		s5, err = barsynth.New(int(s.Interval5m / 1000))
		if err != nil {
			s.Log.Error().Err(err).Msg("invalid 5m interval")
			return
		}
		s.synths5m[tick.Symbol] = s5
	}
	s15, ok := s.synths15m[tick.Symbol]
	if !ok {
		var err error
		s15, err = barsynth.New(int(s.Interval15m / 1000))
		if err != nil {
			s.Log.Error().Err(err).Msg("invalid 15m interval")
			return
		}
		s.synths15m[tick.Symbol] = s15
	}

	pt := barsynth.PriceTick{TsMs: tick.TimestampMs, Price: tick.Price, VolumeUSD: tick.Volume24hUSD}
	s5.AddTick(pt)
	s15.AddTick(pt)

	completed5m := s5.DrainCompleted()
	if len(completed5m) == 0 {
		return
	}
	completed15m := s15.DrainCompleted()
	var bar15m domain.OHLCVBar
	if len(completed15m) > 0 {
		bar15m = completed15m[len(completed15m)-1]
	}

	for _, bar5m := range completed5m {
		raw := normalize.RawPool{
			Address:      tick.Address,
			MintBase:     tick.MintBase,
			MintQuote:    tick.MintQuote,
			Symbol:       tick.Symbol,
			Price:        tick.Price,
			LiquidityUSD: tick.LiquidityUSD,
			Volume24hUSD: tick.Volume24hUSD,
			FDVUSD:       tick.FDVUSD,
			ReserveBase:  tick.ReserveBase,
			ReserveQuote: tick.ReserveQuote,
			AgeHours:     tick.AgeHours,
			Route:        tick.Route,
			TimestampMs:  bar5m.StartMs,
		}
		md := normalize.Normalize(raw, bar5m, bar15m)
		s.publish(ctx, md)
	}
}

func (s *Service) publish(ctx context.Context, md domain.MarketUpdate) {
	payload, err := json.Marshal(struct {
		Data domain.MarketUpdate `json:"data"`
	}{Data: md})
	if err != nil {
		s.Log.Error().Err(err).Msg("marshal market update")
		return
	}
	if err := s.Bus.Publish(ctx, stream.TopicMarketUpdates, md.Symbol, payload); err != nil {
		s.Log.Error().Err(err).Str("symbol", md.Symbol).Msg("publish market update")
	}
}

// tickInterval bounds how often a StubFeedSource emits synthetic ticks
// in local development.
const tickInterval = time.Second
