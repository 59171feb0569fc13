package gateway

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/go-redis/redis/v8"
)

const pinDigits = 6

// GuestStore backs PIN-based guest pairing: the owner issues a PIN via
// "/guest [minutes]", and whoever redeems it within its TTL becomes a
// paired guest for the same TTL.
type GuestStore struct {
	client *redis.Client
}

// NewGuestStore builds a GuestStore against an already-connected client.
func NewGuestStore(client *redis.Client) *GuestStore {
	return &GuestStore{client: client}
}

func pinKey(pin string) string {
	return fmt.Sprintf("gateway:pin:%s", pin)
}

func pairedKey(tgUserID int64) string {
	return fmt.Sprintf("gateway:guest:%d", tgUserID)
}

// IssuePIN generates a random numeric PIN valid for d, the owner-only
// "/guest" command's effect.
func (g *GuestStore) IssuePIN(ctx context.Context, d time.Duration) (string, error) {
	pin, err := randomPIN()
	if err != nil {
		return "", fmt.Errorf("generate pin: %w", err)
	}
	if err := g.client.SetEX(ctx, pinKey(pin), "1", d).Err(); err != nil {
		return "", fmt.Errorf("issue pin: %w", err)
	}
	return pin, nil
}

// Redeem pairs tgUserID as a guest for d if pin is currently valid and
// unredeemed. The PIN is consumed on success so it cannot be reused by
// a second user.
func (g *GuestStore) Redeem(ctx context.Context, tgUserID int64, pin string, d time.Duration) (bool, error) {
	n, err := g.client.Exists(ctx, pinKey(pin)).Result()
	if err != nil {
		return false, fmt.Errorf("redeem pin lookup: %w", err)
	}
	if n == 0 {
		return false, nil
	}
	if err := g.client.Del(ctx, pinKey(pin)).Err(); err != nil {
		return false, fmt.Errorf("redeem pin consume: %w", err)
	}
	if err := g.client.SetEX(ctx, pairedKey(tgUserID), "1", d).Err(); err != nil {
		return false, fmt.Errorf("redeem pair: %w", err)
	}
	return true, nil
}

// IsPaired reports whether tgUserID currently holds an active guest
// pairing. Redis errors degrade to "not paired" — a cache outage
// should fail closed for authorization, not silently grant access.
func (g *GuestStore) IsPaired(ctx context.Context, tgUserID int64) bool {
	n, err := g.client.Exists(ctx, pairedKey(tgUserID)).Result()
	if err != nil {
		return false
	}
	return n > 0
}

func randomPIN() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < pinDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", pinDigits, n.Int64()), nil
}
