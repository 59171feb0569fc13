package gateway

import (
	"sync"

	"golang.org/x/time/rate"
)

// defaultPerChatRPS and defaultBurst mirror the original poller's fixed
// per-chat allowance: enough to answer a burst of slash commands without
// opening the bot up to a single chat monopolizing the dispatcher.
const (
	defaultPerChatRPS = 1.0
	defaultBurst      = 3
)

// ChatLimiter rate-limits inbound commands per Telegram chat, grounded
// on the original poller's RateLimiter (one token bucket per chat, kept
// until Forget drops it; there is no timer).
type ChatLimiter struct {
	rps   rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[int64]*rate.Limiter
}

// NewChatLimiter builds a ChatLimiter with the given per-chat rate and
// burst; rps <= 0 falls back to defaultPerChatRPS.
func NewChatLimiter(rps float64, burst int) *ChatLimiter {
	if rps <= 0 {
		rps = defaultPerChatRPS
	}
	if burst <= 0 {
		burst = defaultBurst
	}
	return &ChatLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		limiters: make(map[int64]*rate.Limiter),
	}
}

// Allow reports whether chatID may send another command right now,
// creating that chat's bucket on first use.
func (c *ChatLimiter) Allow(chatID int64) bool {
	c.mu.Lock()
	l, ok := c.limiters[chatID]
	if !ok {
		l = rate.NewLimiter(c.rps, c.burst)
		c.limiters[chatID] = l
	}
	c.mu.Unlock()
	return l.Allow()
}

// Forget drops chatID's bucket, reclaiming memory for chats that have
// gone quiet. ChatLimiter never calls it itself, and neither does
// Service.
func (c *ChatLimiter) Forget(chatID int64) {
	c.mu.Lock()
	delete(c.limiters, chatID)
	c.mu.Unlock()
}

// Size reports the number of chats currently tracked.
func (c *ChatLimiter) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.limiters)
}
