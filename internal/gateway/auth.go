// Package gateway implements the messaging gateway's boundary between
// an inbound command and the internal Command/Reply envelope: owner
// and paired-guest authentication, text parsing, and publish/await
// against cmd.requests/cmd.replies. The bot-API transport itself
// (long-poll or webhook) is an external collaborator out of scope
// here — this package is everything upstream and downstream of it.
package gateway

import (
	"context"

	"github.com/mbomani/soulscout/internal/domain"
)

// AuthResult is the outcome of authenticating an inbound sender.
type AuthResult struct {
	Role       domain.Role
	Authorized bool
	Message    string
}

var ownerOnlyCommands = map[string]bool{
	"silence":       true,
	"resume":        true,
	"add_wallet":    true,
	"remove_wallet": true,
	"guest":         true,
}

// Authenticator resolves a Telegram user id (and, for unpaired users, a
// PIN) to a role.
type Authenticator struct {
	OwnerID int64
	Guests  *GuestStore
}

// NewAuthenticator builds an Authenticator backed by guests for PIN-paired
// guest session lookups.
func NewAuthenticator(ownerID int64, guests *GuestStore) *Authenticator {
	return &Authenticator{OwnerID: ownerID, Guests: guests}
}

// Authenticate classifies tgUserID as owner, an already-paired guest, or
// unknown. It only looks up existing pairings; redeeming a PIN is
// GuestStore.Redeem's job, and Authenticate does not call it.
func (a *Authenticator) Authenticate(ctx context.Context, tgUserID int64) AuthResult {
	if tgUserID == a.OwnerID {
		return AuthResult{Role: domain.RoleOwner, Authorized: true}
	}

	if a.Guests != nil && a.Guests.IsPaired(ctx, tgUserID) {
		return AuthResult{Role: domain.RoleGuest, Authorized: true}
	}

	return AuthResult{
		Role:       "unknown",
		Authorized: false,
		Message:    "Access denied. This bot is private.",
	}
}

// IsCommandAllowed enforces the owner-only command set; guests may run
// every other valid command, unknown users may only run /start and /help.
func IsCommandAllowed(cmd string, role domain.Role) bool {
	if role == domain.RoleOwner {
		return true
	}
	if role == domain.RoleGuest {
		return !ownerOnlyCommands[cmd]
	}
	return cmd == "start" || cmd == "help"
}
