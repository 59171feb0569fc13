// Package notifier consumes the alerts stream, applies dedup/mute/rate
// filtering, formats an alert for delivery, and publishes to
// outbound.alerts. The actual bot-API send is out of scope; this
// package owns everything upstream of that transport.
package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// DedupCache suppresses re-sending an alert whose (symbol, band,
// reason-hash) combination was already delivered within ttl. It is
// backed by Redis SETEX/GET rather than the in-process throttle
// ledger because the notifier may run as more than one replica behind
// the same consumer group.
type DedupCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDedupCache builds a DedupCache against an already-connected
// client; dial/ping handling lives with the caller that constructs the
// client (see NewRedisClient).
func NewDedupCache(client *redis.Client, ttl time.Duration) *DedupCache {
	return &DedupCache{client: client, ttl: ttl}
}

func (d *DedupCache) key(symbol, band, reasonHash string) string {
	return fmt.Sprintf("notifier:dedup:%s:%s:%s", symbol, band, reasonHash)
}

// IsDuplicate reports whether this (symbol, band, reasonHash) was
// already recorded and hasn't expired. Redis errors degrade to "not a
// duplicate" — a transient cache outage should not silently swallow
// alerts the way an inverted failure mode would.
func (d *DedupCache) IsDuplicate(ctx context.Context, symbol, band, reasonHash string) bool {
	_, err := d.client.Get(ctx, d.key(symbol, band, reasonHash)).Result()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		return false
	}
	return true
}

// Record marks (symbol, band, reasonHash) as delivered for the
// configured TTL.
func (d *DedupCache) Record(ctx context.Context, symbol, band, reasonHash string) error {
	err := d.client.SetEX(ctx, d.key(symbol, band, reasonHash), "1", d.ttl).Err()
	if err != nil {
		return fmt.Errorf("dedup record: %w", err)
	}
	return nil
}

// NewRedisClient dials a Redis client for the notifier's dedup and
// mute-state caches, verifying connectivity before returning it — a
// bus-unavailable-at-startup condition should fail fast rather than
// surface as a mystery later.
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     10,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("notifier redis connection failed: %w", err)
	}
	return client, nil
}
