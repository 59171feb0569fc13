package notifier

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redismock/v8"
)

func TestDedupCache_IsDuplicate(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewDedupCache(db, 6*time.Hour)
	ctx := context.Background()

	t.Run("cache hit is a duplicate", func(t *testing.T) {
		key := cache.key("WIF", "actionable", "abc123")
		mock.ExpectGet(key).SetVal("1")

		if !cache.IsDuplicate(ctx, "WIF", "actionable", "abc123") {
			t.Error("expected duplicate")
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("redis expectations not met: %v", err)
		}
	})

	t.Run("cache miss is not a duplicate", func(t *testing.T) {
		key := cache.key("BONK", "heads_up", "def456")
		mock.ExpectGet(key).RedisNil()

		if cache.IsDuplicate(ctx, "BONK", "heads_up", "def456") {
			t.Error("expected not a duplicate")
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("redis expectations not met: %v", err)
		}
	})

	t.Run("redis error degrades to not a duplicate", func(t *testing.T) {
		key := cache.key("POPCAT", "high_conviction", "ghi789")
		mock.ExpectGet(key).SetErr(redis.TxFailedErr)

		if cache.IsDuplicate(ctx, "POPCAT", "high_conviction", "ghi789") {
			t.Error("expected redis error to degrade to not a duplicate")
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("redis expectations not met: %v", err)
		}
	})
}

func TestDedupCache_Record(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewDedupCache(db, 6*time.Hour)
	ctx := context.Background()

	key := cache.key("WIF", "actionable", "abc123")
	mock.ExpectSetEX(key, "1", 6*time.Hour).SetVal("OK")

	if err := cache.Record(ctx, "WIF", "actionable", "abc123"); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("redis expectations not met: %v", err)
	}
}
