// Package throttle implements the multi-layer throttle engine: per-token
// cooldowns, a global hourly cap, reason-hash deduplication, and a
// re-entry guard. All four checks and the subsequent record form a
// single atomic critical section shared across pipeline workers.
package throttle

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/mbomani/soulscout/internal/domain"
)

// Config holds the throttle engine's tunable windows, sourced from the
// ambient env-style configuration.
type Config struct {
	CooldownActionable time.Duration
	CooldownHeadsUp    time.Duration
	GlobalMaxPerHour    int
	DedupTTL            time.Duration
	ReentryGuard        time.Duration
}

// DefaultConfig mirrors the external-interfaces defaults.
func DefaultConfig() Config {
	return Config{
		CooldownActionable: 6 * time.Hour,
		CooldownHeadsUp:    1 * time.Hour,
		GlobalMaxPerHour:   5,
		DedupTTL:           21600 * time.Second,
		ReentryGuard:       12 * time.Hour,
	}
}

type key struct {
	symbol string
	band   domain.Band
}

type dedupEntry struct {
	hash string
	tsMs int64
}

// Ledger is the in-memory throttle ledger. It is not persisted: on
// restart, state is reconstructible from the input stream tail, so an
// empty ledger at startup is the correct initial state, not a defect.
type Ledger struct {
	mu sync.Mutex
	cfg Config

	lastBySymbolBand map[key]int64       // cooldown: last alert ts per (symbol,band)
	dedupBySymbol    map[string][]dedupEntry // reason-hash history per symbol
	lastStop         map[string]int64    // re-entry guard: last stop ts per symbol
	globalWindow     []int64             // global sliding window of admitted ts
}

// NewLedger constructs an empty ledger.
func NewLedger(cfg Config) *Ledger {
	return &Ledger{
		cfg:              cfg,
		lastBySymbolBand: make(map[key]int64),
		dedupBySymbol:    make(map[string][]dedupEntry),
		lastStop:         make(map[string]int64),
	}
}

// ReasonHash computes the stable fingerprint of an ordered reasons list
// used to detect semantic duplicates.
func ReasonHash(reasons []string) string {
	h := sha256.Sum256([]byte(strings.Join(reasons, "|")))
	return hex.EncodeToString(h[:])
}

// Decision is the throttle engine's verdict plus the reason a rejection
// occurred, for observability.
type Decision struct {
	Admit  bool
	Reason string
}

// Check runs all four filters and, if every one passes, records the
// admission — all under a single lock, the atomic check-and-record the
// component design requires.
func (l *Ledger) Check(symbol string, band domain.Band, reasons []string, nowMs int64) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.evictGlobalWindow(nowMs)

	// 1. Per-token cooldown.
	cooldown := l.cfg.CooldownHeadsUp
	if band == domain.BandActionable || band == domain.BandHighConviction {
		cooldown = l.cfg.CooldownActionable
	}
	k := key{symbol: symbol, band: band}
	if last, ok := l.lastBySymbolBand[k]; ok {
		if nowMs-last < cooldown.Milliseconds() {
			return Decision{Admit: false, Reason: "per_token_cooldown"}
		}
	}

	// 2. Global hourly cap.
	if len(l.globalWindow) >= l.cfg.GlobalMaxPerHour {
		return Decision{Admit: false, Reason: "global_hourly_cap"}
	}

	// 3. Reason-hash deduplication.
	hash := ReasonHash(reasons)
	ttlMs := l.cfg.DedupTTL.Milliseconds()
	for _, e := range l.dedupBySymbol[symbol] {
		if e.hash == hash && nowMs-e.tsMs < ttlMs {
			return Decision{Admit: false, Reason: "reason_hash_dedup"}
		}
	}

	// 4. Re-entry guard.
	if stop, ok := l.lastStop[symbol]; ok {
		if nowMs-stop < l.cfg.ReentryGuard.Milliseconds() {
			return Decision{Admit: false, Reason: "reentry_guard"}
		}
	}

	// Admit: record.
	l.lastBySymbolBand[k] = nowMs
	l.dedupBySymbol[symbol] = append(l.dedupBySymbol[symbol], dedupEntry{hash: hash, tsMs: nowMs})
	l.globalWindow = append(l.globalWindow, nowMs)

	return Decision{Admit: true}
}

// RecordStop marks a stop (exit) for symbol, arming the re-entry guard.
func (l *Ledger) RecordStop(symbol string, nowMs int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastStop[symbol] = nowMs
}

func (l *Ledger) evictGlobalWindow(nowMs int64) {
	cutoff := nowMs - time.Hour.Milliseconds()
	i := 0
	for i < len(l.globalWindow) && l.globalWindow[i] < cutoff {
		i++
	}
	if i > 0 {
		l.globalWindow = l.globalWindow[i:]
	}
}

// RecentAdmits returns the admitted record timestamps for symbol within
// windowMs of now, the query the Command Dispatcher's /signals uses.
func (l *Ledger) RecentAdmits(symbol string, nowMs, windowMs int64) []int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []int64
	for _, e := range l.dedupBySymbol[symbol] {
		if nowMs-e.tsMs <= windowMs {
			out = append(out, e.tsMs)
		}
	}
	return out
}

// Cleanup evicts ledger entries older than maxAge, the throttle-cleanup
// worker's periodic pass.
func (l *Ledger) Cleanup(nowMs int64, maxAge time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := nowMs - maxAge.Milliseconds()
	for k, ts := range l.lastBySymbolBand {
		if ts < cutoff {
			delete(l.lastBySymbolBand, k)
		}
	}
	for sym, stop := range l.lastStop {
		if stop < cutoff {
			delete(l.lastStop, sym)
		}
	}
	for sym, entries := range l.dedupBySymbol {
		kept := entries[:0]
		for _, e := range entries {
			if e.tsMs >= cutoff {
				kept = append(kept, e)
			}
		}
		if len(kept) == 0 {
			delete(l.dedupBySymbol, sym)
		} else {
			l.dedupBySymbol[sym] = kept
		}
	}
}
