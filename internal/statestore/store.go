// Package statestore implements the Rolling State Store: a per-symbol
// keyed, mutex-guarded map of TokenState. Updates and queries may
// interleave across goroutines; the store hands back value copies so a
// single derived query always sees a consistent snapshot.
package statestore

import (
	"context"
	"sync"
	"time"

	"github.com/mbomani/soulscout/internal/domain"
)

// Store is safe for concurrent use by multiple pipeline workers.
type Store struct {
	mu     sync.RWMutex
	tokens map[string]*domain.TokenState
}

func New() *Store {
	return &Store{tokens: make(map[string]*domain.TokenState)}
}

// Update appends md to symbol's rolling history, creating the TokenState
// lazily on first sight of that symbol.
func (s *Store) Update(symbol string, md domain.MarketUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.tokens[symbol]
	if !ok {
		state = &domain.TokenState{Symbol: symbol}
		s.tokens[symbol] = state
	}
	state.Append(md)
}

// Snapshot returns a copy of the current TokenState for symbol, so the
// caller can compute derived queries without holding the store's lock.
func (s *Store) Snapshot(symbol string) (*domain.TokenState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.tokens[symbol]
	if !ok {
		return nil, false
	}
	cp := *state
	cp.History = append([]domain.MarketUpdate(nil), state.History...)
	return &cp, true
}

// All returns a snapshot of every tracked token, used by the regime
// detector's cross-token indicators.
func (s *Store) All() []*domain.TokenState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.TokenState, 0, len(s.tokens))
	for _, state := range s.tokens {
		cp := *state
		cp.History = append([]domain.MarketUpdate(nil), state.History...)
		out = append(out, &cp)
	}
	return out
}

// CleanupStale evicts any token whose latest update is older than
// maxAge, the periodic staleness-horizon sweep named in the data
// model's lifecycle section.
func (s *Store) CleanupStale(maxAge time.Duration, now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoffMs := now.Add(-maxAge).UnixMilli()
	removed := 0
	for symbol, state := range s.tokens {
		if state.Latest.TimestampMs < cutoffMs {
			delete(s.tokens, symbol)
			removed++
		}
	}
	return removed
}

// solSymbol is the symbol the regime detector treats as "SOL's own
// return" for the first of its three indicators.
const solSymbol = "SOL"

// SolState satisfies regimeengine.StateSnapshot.
func (s *Store) SolState(ctx context.Context) (*domain.TokenState, bool) {
	return s.Snapshot(solSymbol)
}

// AllStates satisfies regimeengine.StateSnapshot.
func (s *Store) AllStates(ctx context.Context) []*domain.TokenState {
	return s.All()
}
