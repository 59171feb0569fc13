// Package dispatch implements the Command Dispatcher: it consumes
// cmd.requests under a consumer group, switches on the command name, and
// publishes a correlated reply to cmd.replies before acknowledging.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mbomani/soulscout/internal/domain"
	"github.com/mbomani/soulscout/internal/stream"
	"github.com/mbomani/soulscout/internal/throttle"
)

const defaultWatchWindowMin = 120

// Dispatcher handles the analytics side of command dispatch: `/signals`.
// Other commands (`/balance`, `/holdings`, `/add_wallet`, `/remove_wallet`)
// are handled by the portfolio service's own dispatcher against the same
// cmd.requests/cmd.replies streams.
type Dispatcher struct {
	Bus            stream.EventBus
	Ledger         *throttle.Ledger
	WatchWindowMin int
	Log            zerolog.Logger
}

// Run subscribes to cmd.requests under the analytics group and drains it
// until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	if err := d.Bus.Subscribe(ctx, stream.TopicCmdRequests, stream.GroupAnalytics, d.handle); err != nil {
		return err
	}
	<-ctx.Done()
	return nil
}

func (d *Dispatcher) handle(ctx context.Context, msg *stream.Message) error {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
		d.Log.Warn().Err(err).Msg("malformed command envelope, dropping")
		return nil
	}
	var cmd domain.Command
	if err := json.Unmarshal(envelope.Data, &cmd); err != nil {
		d.Log.Warn().Err(err).Msg("malformed command, dropping")
		return nil
	}

	if cmd.Cmd != "/signals" {
		return nil // not ours; another service's dispatcher owns it
	}

	reply := d.handleSignals(cmd)
	return d.publishReply(ctx, reply)
}

type signalsArgs struct {
	Symbol    string `json:"symbol,omitempty"`
	WindowMin int    `json:"window_min,omitempty"`
}

func (d *Dispatcher) handleSignals(cmd domain.Command) domain.Reply {
	var args signalsArgs
	if len(cmd.Args) > 0 {
		_ = json.Unmarshal(cmd.Args, &args) // malformed args degrade to defaults, not a failure
	}
	windowMin := args.WindowMin
	if windowMin <= 0 {
		windowMin = d.WatchWindowMin
	}
	if windowMin <= 0 {
		windowMin = defaultWatchWindowMin
	}

	nowMs := time.Now().UnixMilli()
	windowMs := int64(windowMin) * 60_000
	admits := d.Ledger.RecentAdmits(args.Symbol, nowMs, windowMs)

	message := fmt.Sprintf("%d alert(s) for %s in the last %d minutes", len(admits), args.Symbol, windowMin)
	data, _ := json.Marshal(struct {
		Symbol    string  `json:"symbol"`
		WindowMin int     `json:"window_min"`
		Count     int     `json:"count"`
		Timestamps []int64 `json:"timestamps"`
	}{Symbol: args.Symbol, WindowMin: windowMin, Count: len(admits), Timestamps: admits})

	return domain.Reply{
		CorrID:  cmd.CorrID,
		OK:      true,
		Message: message,
		Data:    data,
		Ts:      time.Now().UTC().Format(time.RFC3339),
	}
}

func (d *Dispatcher) publishReply(ctx context.Context, reply domain.Reply) error {
	payload, err := json.Marshal(struct {
		Data domain.Reply `json:"data"`
	}{Data: reply})
	if err != nil {
		return err
	}
	return d.Bus.Publish(ctx, stream.TopicCmdReplies, reply.CorrID, payload)
}
