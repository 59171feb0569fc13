package gateway

import (
	"encoding/json"
	"testing"

	"github.com/mbomani/soulscout/internal/domain"
)

func TestParse(t *testing.T) {
	t.Run("rejects non-command text", func(t *testing.T) {
		p := Parse("hello there")
		if p.Error == "" {
			t.Error("expected error for non-command text")
		}
	})

	t.Run("rejects unknown command", func(t *testing.T) {
		p := Parse("/nonsense")
		if p.Error == "" {
			t.Error("expected error for unknown command")
		}
	})

	t.Run("parses valid command with args", func(t *testing.T) {
		p := Parse("/silence 45")
		if p.Error != "" {
			t.Fatalf("unexpected error: %s", p.Error)
		}
		if p.Cmd != "silence" {
			t.Errorf("expected cmd silence, got %s", p.Cmd)
		}
		if len(p.Args) != 1 || p.Args[0] != "45" {
			t.Errorf("expected args [45], got %v", p.Args)
		}
	})
}

func TestToCommand_Silence(t *testing.T) {
	p := Parse("/silence 45")
	cmd := ToCommand(p, 123, domain.RoleOwner)

	if cmd.Cmd != "/silence" {
		t.Errorf("expected /silence, got %s", cmd.Cmd)
	}
	if cmd.From.TgUserID != 123 || cmd.From.Role != domain.RoleOwner {
		t.Errorf("unexpected from: %+v", cmd.From)
	}

	var args struct {
		Minutes int `json:"minutes"`
	}
	if err := json.Unmarshal(cmd.Args, &args); err != nil {
		t.Fatalf("unmarshal args: %v", err)
	}
	if args.Minutes != 45 {
		t.Errorf("expected 45 minutes, got %d", args.Minutes)
	}
}

func TestToCommand_SilenceDefaultsMinutes(t *testing.T) {
	p := Parse("/silence")
	cmd := ToCommand(p, 123, domain.RoleOwner)

	var args struct {
		Minutes int `json:"minutes"`
	}
	_ = json.Unmarshal(cmd.Args, &args)
	if args.Minutes != defaultMinutes {
		t.Errorf("expected default %d minutes, got %d", defaultMinutes, args.Minutes)
	}
}

func TestIsCommandAllowed(t *testing.T) {
	cases := []struct {
		cmd     string
		role    domain.Role
		allowed bool
	}{
		{"silence", domain.RoleOwner, true},
		{"silence", domain.RoleGuest, false},
		{"balance", domain.RoleGuest, true},
		{"start", "unknown", true},
		{"balance", "unknown", false},
	}
	for _, c := range cases {
		if got := IsCommandAllowed(c.cmd, c.role); got != c.allowed {
			t.Errorf("IsCommandAllowed(%s, %s) = %v, want %v", c.cmd, c.role, got, c.allowed)
		}
	}
}
