package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
)

func TestGuestStore_IssueAndRedeem(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewGuestStore(db)
	ctx := context.Background()

	mock.Regexp().ExpectSetEX(`gateway:pin:\d{6}`, "1", 30*time.Minute).SetVal("OK")
	pin, err := store.IssuePIN(ctx, 30*time.Minute)
	if err != nil {
		t.Fatalf("issue pin: %v", err)
	}
	if len(pin) != pinDigits {
		t.Errorf("expected %d digit pin, got %q", pinDigits, pin)
	}

	mock.ExpectExists(pinKey(pin)).SetVal(1)
	mock.ExpectDel(pinKey(pin)).SetVal(1)
	mock.ExpectSetEX(pairedKey(999), "1", 30*time.Minute).SetVal("OK")

	ok, err := store.Redeem(ctx, 999, pin, 30*time.Minute)
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if !ok {
		t.Error("expected redeem to succeed")
	}

	mock.ExpectExists(pairedKey(999)).SetVal(1)
	if !store.IsPaired(ctx, 999) {
		t.Error("expected paired")
	}
}

func TestGuestStore_RedeemInvalidPIN(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewGuestStore(db)
	ctx := context.Background()

	mock.ExpectExists(pinKey("000000")).SetVal(0)
	ok, err := store.Redeem(ctx, 1, "000000", time.Minute)
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if ok {
		t.Error("expected redeem of invalid pin to fail")
	}
}
