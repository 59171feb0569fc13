package gateway

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// replyTimeout bounds how long the gateway waits for a downstream
// service's reply before giving the user a timeout message.
const replyTimeout = 5 * time.Second

// InboundResult is what a transport (long-poll loop, webhook handler)
// sends back to the chat once HandleText returns.
type InboundResult struct {
	Text string
}

// Service is the transport-independent half of the gateway: given raw
// text and a Telegram user/chat id, it rate-limits, authenticates,
// parses, dispatches, and renders a reply. A concrete long-poll or
// webhook transport (out of scope here) owns the network side and
// calls HandleText per inbound message.
type Service struct {
	Auth    *Authenticator
	Limiter *ChatLimiter
	Disp    *Dispatcher
	Log     zerolog.Logger
}

// NewService wires the gateway's request-handling pipeline.
func NewService(auth *Authenticator, limiter *ChatLimiter, disp *Dispatcher, log zerolog.Logger) *Service {
	return &Service{Auth: auth, Limiter: limiter, Disp: disp, Log: log}
}

// HandleText runs one inbound chat message through rate limiting, auth,
// command parsing, and dispatch, returning the text to send back.
func (s *Service) HandleText(ctx context.Context, tgUserID int64, text string) InboundResult {
	if !s.Limiter.Allow(tgUserID) {
		return InboundResult{Text: "Slow down — too many commands. Try again in a moment."}
	}

	result := s.Auth.Authenticate(ctx, tgUserID)
	if !result.Authorized {
		return InboundResult{Text: result.Message}
	}

	parsed := Parse(text)
	if parsed.Error != "" {
		return InboundResult{Text: parsed.Error}
	}

	if !IsCommandAllowed(parsed.Cmd, result.Role) {
		return InboundResult{Text: "That command is owner-only."}
	}

	cmd := ToCommand(parsed, tgUserID, result.Role)
	reply, err := s.Disp.Dispatch(ctx, cmd, replyTimeout)
	if err != nil {
		s.Log.Warn().Err(err).Str("cmd", parsed.Cmd).Msg("dispatch failed")
		return InboundResult{Text: "Request timed out — try again shortly."}
	}

	return InboundResult{Text: reply.Message}
}
