package gateway

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mbomani/soulscout/internal/domain"
)

var validCommands = map[string]bool{
	"start": true, "help": true, "balance": true, "holdings": true,
	"signals": true, "silence": true, "resume": true, "health": true,
	"add_wallet": true, "remove_wallet": true, "guest": true,
}

// ParsedCommand is the intermediate result of tokenizing raw inbound
// text before it becomes a domain.Command envelope.
type ParsedCommand struct {
	Cmd   string
	Args  []string
	Error string
}

// Parse tokenizes raw inbound text into a command name and argument
// list. Non-command text (no leading "/") and unknown command names
// both return a populated Error rather than a panic or silent drop —
// the caller decides how to surface that to the sender.
func Parse(text string) ParsedCommand {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || trimmed[0] != '/' {
		return ParsedCommand{Error: "not a command"}
	}

	fields := strings.Fields(strings.TrimPrefix(trimmed, "/"))
	if len(fields) == 0 {
		return ParsedCommand{Error: "empty command"}
	}

	cmd := fields[0]
	args := fields[1:]

	if !validCommands[cmd] {
		return ParsedCommand{Error: fmt.Sprintf("unknown command: /%s", cmd)}
	}
	return ParsedCommand{Cmd: cmd, Args: args}
}

const defaultMinutes = 30

// ToCommand builds the Command/Reply envelope from a ParsedCommand, the
// sender's identity and role, and a fresh correlation id.
func ToCommand(pc ParsedCommand, tgUserID int64, role domain.Role) domain.Command {
	args := buildArgs(pc)
	return domain.Command{
		Type:   "command",
		Cmd:    "/" + pc.Cmd,
		CorrID: uuid.NewString(),
		Ts:     time.Now().UTC().Format(time.RFC3339),
		Args:   args,
		From:   domain.CommandFrom{TgUserID: tgUserID, Role: role},
	}
}

func buildArgs(pc ParsedCommand) json.RawMessage {
	var payload map[string]any

	switch pc.Cmd {
	case "signals":
		payload = map[string]any{}
		if len(pc.Args) > 0 {
			payload["window"] = pc.Args[0]
		}
	case "silence", "guest":
		minutes := defaultMinutes
		if len(pc.Args) > 0 {
			if v, err := strconv.Atoi(pc.Args[0]); err == nil {
				minutes = v
			}
		}
		payload = map[string]any{"minutes": minutes}
	case "add_wallet", "remove_wallet":
		payload = map[string]any{}
		if len(pc.Args) > 0 {
			payload["address"] = pc.Args[0]
		}
	case "holdings":
		limit := 10
		if len(pc.Args) > 0 {
			if v, err := strconv.Atoi(pc.Args[0]); err == nil {
				limit = v
			}
		}
		payload = map[string]any{"limit": limit}
	default:
		payload = map[string]any{}
	}

	raw, _ := json.Marshal(payload)
	return raw
}
