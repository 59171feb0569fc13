package notifier

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
)

func TestMuteState(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mute := NewMuteState(db)
	ctx := context.Background()

	t.Run("mute sets TTL key", func(t *testing.T) {
		key := mute.key(42)
		mock.ExpectSetEX(key, "1", 30*time.Minute).SetVal("OK")

		if err := mute.Mute(ctx, 42, 30*time.Minute); err != nil {
			t.Fatalf("mute failed: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("redis expectations not met: %v", err)
		}
	})

	t.Run("resume deletes key", func(t *testing.T) {
		key := mute.key(42)
		mock.ExpectDel(key).SetVal(1)

		if err := mute.Resume(ctx, 42); err != nil {
			t.Fatalf("resume failed: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("redis expectations not met: %v", err)
		}
	})

	t.Run("is muted true on hit", func(t *testing.T) {
		key := mute.key(7)
		mock.ExpectGet(key).SetVal("1")

		if !mute.IsMuted(ctx, 7) {
			t.Error("expected muted")
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("redis expectations not met: %v", err)
		}
	})

	t.Run("remaining minutes from TTL", func(t *testing.T) {
		key := mute.key(7)
		mock.ExpectTTL(key).SetVal(125 * time.Second)

		if got := mute.RemainingMinutes(ctx, 7); got != 2 {
			t.Errorf("expected 2 minutes, got %d", got)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("redis expectations not met: %v", err)
		}
	})
}
