package gateway

import (
	"context"
	"testing"

	"github.com/go-redis/redismock/v8"
	"github.com/mbomani/soulscout/internal/domain"
)

func TestAuthenticator_Owner(t *testing.T) {
	auth := NewAuthenticator(42, nil)
	result := auth.Authenticate(context.Background(), 42)
	if !result.Authorized || result.Role != domain.RoleOwner {
		t.Errorf("expected authorized owner, got %+v", result)
	}
}

func TestAuthenticator_PairedGuest(t *testing.T) {
	db, mock := redismock.NewClientMock()
	guests := NewGuestStore(db)
	auth := NewAuthenticator(42, guests)

	mock.ExpectExists(pairedKey(7)).SetVal(1)
	result := auth.Authenticate(context.Background(), 7)
	if !result.Authorized || result.Role != domain.RoleGuest {
		t.Errorf("expected authorized guest, got %+v", result)
	}
}

func TestAuthenticator_Unknown(t *testing.T) {
	db, mock := redismock.NewClientMock()
	guests := NewGuestStore(db)
	auth := NewAuthenticator(42, guests)

	mock.ExpectExists(pairedKey(999)).SetVal(0)
	result := auth.Authenticate(context.Background(), 999)
	if result.Authorized {
		t.Error("expected unauthorized")
	}
	if result.Role != "unknown" {
		t.Errorf("expected unknown role, got %s", result.Role)
	}
}
