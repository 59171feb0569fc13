// Package barsynth buckets a stream of price ticks into fixed-interval
// OHLCV bars. A tick belongs to bar B(t) = floor(t/interval)*interval; a
// bar is emitted once the wall clock has advanced past its end.
package barsynth

import (
	"fmt"
	"sort"
	"time"

	"github.com/mbomani/soulscout/internal/domain"
)

// ErrInvalidInterval is returned when interval is not positive.
var ErrInvalidInterval = fmt.Errorf("barsynth: interval must be positive")

// PriceTick is the raw ingestor tick unit fed to the synthesizer.
type PriceTick struct {
	Price     float64
	VolumeUSD float64
	TsMs      int64
}

// Synthesizer accumulates ticks for a single (symbol, interval) pair and
// yields completed bars on demand. Not safe for concurrent use by more
// than one goroutine per instance — the ingestor owns one per symbol.
type Synthesizer struct {
	intervalMs    int64
	ticks         []PriceTick
	currentStart  int64
	now           func() time.Time
}

// New constructs a synthesizer bucketing ticks into intervalSeconds bars.
func New(intervalSeconds int) (*Synthesizer, error) {
	if intervalSeconds <= 0 {
		return nil, ErrInvalidInterval
	}
	return &Synthesizer{
		intervalMs: int64(intervalSeconds) * 1000,
		now:        time.Now,
	}, nil
}

// AddTick appends a tick to the open bucket.
func (s *Synthesizer) AddTick(t PriceTick) {
	if s.currentStart == 0 {
		s.currentStart = s.bucketStart(t.TsMs)
	}
	s.ticks = append(s.ticks, t)
}

func (s *Synthesizer) bucketStart(tsMs int64) int64 {
	return (tsMs / s.intervalMs) * s.intervalMs
}

func (s *Synthesizer) isComplete(startMs int64) bool {
	endMs := startMs + s.intervalMs
	return s.now().UnixMilli() >= endMs
}

// DrainCompleted groups buffered ticks by bucket and returns every bar
// whose bucket has fully elapsed; ticks for the still-open bucket are
// retained for the next call.
func (s *Synthesizer) DrainCompleted() []domain.OHLCVBar {
	if len(s.ticks) == 0 {
		return nil
	}
	sort.Slice(s.ticks, func(i, j int) bool { return s.ticks[i].TsMs < s.ticks[j].TsMs })

	var completed []domain.OHLCVBar
	barStart := s.currentStart
	var bucket []PriceTick

	for _, tick := range s.ticks {
		tickBarStart := s.bucketStart(tick.TsMs)
		if tickBarStart != barStart {
			if len(bucket) > 0 && s.isComplete(barStart) {
				completed = append(completed, synthesizeBar(barStart, bucket))
			}
			barStart = tickBarStart
			bucket = nil
		}
		bucket = append(bucket, tick)
	}

	if len(bucket) > 0 && s.isComplete(barStart) {
		completed = append(completed, synthesizeBar(barStart, bucket))
		bucket = nil
		barStart = 0
	}
	s.ticks = bucket
	s.currentStart = barStart
	return completed
}

// CurrentBar returns the (possibly incomplete) bar for the still-open
// bucket without draining it.
func (s *Synthesizer) CurrentBar() domain.OHLCVBar {
	if len(s.ticks) == 0 {
		return domain.OHLCVBar{Degraded: true}
	}
	return synthesizeBar(s.currentStart, s.ticks)
}

func synthesizeBar(startMs int64, ticks []PriceTick) domain.OHLCVBar {
	if len(ticks) == 0 {
		return domain.OHLCVBar{StartMs: startMs, Degraded: true}
	}
	bar := domain.OHLCVBar{
		StartMs:   startMs,
		Open:      ticks[0].Price,
		Close:     ticks[len(ticks)-1].Price,
		High:      ticks[0].Price,
		Low:       ticks[0].Price,
		TickCount: len(ticks),
		Degraded:  len(ticks) < 3,
	}
	for _, t := range ticks {
		if t.Price > bar.High {
			bar.High = t.Price
		}
		if t.Price < bar.Low {
			bar.Low = t.Price
		}
		bar.VolumeUSD += t.VolumeUSD
	}
	return bar
}
