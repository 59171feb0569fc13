package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// MuteState tracks per-owner "/silence" windows. A muted owner still
// has alerts evaluated and throttled normally upstream; muting only
// suppresses the notifier's outbound delivery.
type MuteState struct {
	client *redis.Client
}

// NewMuteState builds a MuteState against an already-connected client.
func NewMuteState(client *redis.Client) *MuteState {
	return &MuteState{client: client}
}

func (m *MuteState) key(userID int64) string {
	return fmt.Sprintf("notifier:mute:%d", userID)
}

// Mute silences alerts for userID for the given duration. "/silence"
// with no duration argument maps to a caller-chosen default (the
// gateway command parser owns that default, not this package).
func (m *MuteState) Mute(ctx context.Context, userID int64, d time.Duration) error {
	if err := m.client.SetEX(ctx, m.key(userID), "1", d).Err(); err != nil {
		return fmt.Errorf("mute set: %w", err)
	}
	return nil
}

// Resume clears an active mute ("/resume").
func (m *MuteState) Resume(ctx context.Context, userID int64) error {
	if err := m.client.Del(ctx, m.key(userID)).Err(); err != nil {
		return fmt.Errorf("mute clear: %w", err)
	}
	return nil
}

// IsMuted reports whether userID currently has an active mute. Redis
// errors degrade to "not muted" — a cache outage should not silently
// suppress every alert.
func (m *MuteState) IsMuted(ctx context.Context, userID int64) bool {
	_, err := m.client.Get(ctx, m.key(userID)).Result()
	return err == nil
}

// RemainingMinutes returns the mute's remaining TTL in whole minutes,
// or 0 if not muted.
func (m *MuteState) RemainingMinutes(ctx context.Context, userID int64) int {
	ttl, err := m.client.TTL(ctx, m.key(userID)).Result()
	if err != nil || ttl <= 0 {
		return 0
	}
	return int(ttl / time.Minute)
}
