package domain

const MaxHistoryLen = 1440

// TokenState is the rolling, per-token, in-memory record the state store
// maintains. History is append-only and monotone in timestamp; Latest is
// always the tail. Append keeps History at most MaxHistoryLen long,
// discarding the oldest entries first by re-slicing the history slice.
type TokenState struct {
	Symbol         string         `json:"symbol"`
	Latest         MarketUpdate   `json:"latest"`
	History        []MarketUpdate `json:"history"`
	FirstLiqTsMs   int64          `json:"first_liq_ts_ms,omitempty"`
	EntryPrice     float64        `json:"entry_price,omitempty"`
	HasPosition    bool           `json:"has_position,omitempty"`
}

// Append adds md as the new tail, evicting the oldest entry once the
// history bound is exceeded. Callers (the rolling state store) are
// responsible for serializing concurrent access.
func (t *TokenState) Append(md MarketUpdate) {
	t.Latest = md
	t.History = append(t.History, md)
	if len(t.History) > MaxHistoryLen {
		t.History = t.History[len(t.History)-MaxHistoryLen:]
	}
	if t.FirstLiqTsMs == 0 && md.LiquidityUSD > 0 {
		t.FirstLiqTsMs = md.TimestampMs
	}
}

// entryNear returns the history entry whose timestamp is closest to
// targetAgo milliseconds before latest.ts_ms, validating that the delta
// falls within [minMs, maxMs]; if the candidate found by simple reverse
// indexing (count entries back) falls outside that window, it instead
// scans for the closest-by-timestamp entry. This resolves the source's
// original behavior of indexing N entries back with no timestamp check.
func (t *TokenState) entryNear(countBack int, targetMs, minMs, maxMs int64) (MarketUpdate, bool) {
	if len(t.History) == 0 {
		return MarketUpdate{}, false
	}
	idx := len(t.History) - 1 - countBack
	if idx < 0 {
		idx = 0
	}
	candidate := t.History[idx]
	delta := t.Latest.TimestampMs - candidate.TimestampMs
	if delta >= minMs && delta <= maxMs {
		return candidate, true
	}

	best := candidate
	bestDiff := absInt64(delta - targetMs)
	for _, e := range t.History {
		d := t.Latest.TimestampMs - e.TimestampMs
		if d < 0 {
			continue
		}
		diff := absInt64(d - targetMs)
		if diff < bestDiff {
			best, bestDiff = e, diff
		}
	}
	delta = t.Latest.TimestampMs - best.TimestampMs
	if delta < minMs || delta > maxMs {
		return MarketUpdate{}, false
	}
	return best, true
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

const (
	oneHourMs  = 3_600_000
	oneDayMs   = 24 * oneHourMs
	m1hMinMs   = 50 * 60_000
	m1hMaxMs   = 70 * 60_000
	m24hMinMs  = 23 * oneHourMs
	m24hMaxMs  = 25 * oneHourMs
)

// M1h returns the percent change versus the entry ~60 entries back,
// validated to be within [50,70] minutes of latest; falls back to
// latest (0% change) if history is too short or no entry validates.
func (t *TokenState) M1h() float64 {
	if len(t.History) < 2 {
		return 0
	}
	e, ok := t.entryNear(60, oneHourMs, m1hMinMs, m1hMaxMs)
	if !ok {
		return 0
	}
	return pctChange(e.Price, t.Latest.Price)
}

// M24h returns the percent change versus the oldest entry when it lies
// within [23,25] hours of latest, else the entry closest to 24h back
// within that window. Unlike M1h, when no entry validates it falls back
// to the oldest entry in history rather than returning 0.
func (t *TokenState) M24h() float64 {
	if len(t.History) < 2 {
		return 0
	}
	e, ok := t.entryNear(len(t.History)-1, oneDayMs, m24hMinMs, m24hMaxMs)
	if !ok {
		e = t.History[0]
	}
	return pctChange(e.Price, t.Latest.Price)
}

func pctChange(from, to float64) float64 {
	if from <= 0 {
		return 0
	}
	return (to - from) / from * 100.0
}
