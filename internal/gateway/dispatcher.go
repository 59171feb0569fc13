package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mbomani/soulscout/internal/domain"
	"github.com/mbomani/soulscout/internal/stream"
)

// Dispatcher publishes parsed commands to cmd.requests and correlates
// the eventual cmd.replies message back to the caller awaiting it —
// the request/reply half of the gateway's job, independent of
// whichever bot-API transport delivered the original text.
type Dispatcher struct {
	Bus stream.EventBus
	Log zerolog.Logger

	mu      sync.Mutex
	pending map[string]chan domain.Reply
}

// NewDispatcher builds a Dispatcher over bus.
func NewDispatcher(bus stream.EventBus, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		Bus:     bus,
		Log:     log,
		pending: make(map[string]chan domain.Reply),
	}
}

// Run subscribes to cmd.replies under the gateway consumer group and
// routes each reply to the goroutine awaiting its correlation id until
// ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	if err := d.Bus.Subscribe(ctx, stream.TopicCmdReplies, stream.GroupGateway, d.handleReply); err != nil {
		return err
	}
	<-ctx.Done()
	return nil
}

func (d *Dispatcher) handleReply(ctx context.Context, msg *stream.Message) error {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
		d.Log.Warn().Err(err).Msg("malformed reply envelope, dropping")
		return nil
	}
	var reply domain.Reply
	if err := json.Unmarshal(envelope.Data, &reply); err != nil {
		d.Log.Warn().Err(err).Msg("malformed reply, dropping")
		return nil
	}

	d.mu.Lock()
	ch, ok := d.pending[reply.CorrID]
	if ok {
		delete(d.pending, reply.CorrID)
	}
	d.mu.Unlock()

	if ok {
		ch <- reply
	}
	return nil
}

// Dispatch publishes cmd to cmd.requests and blocks until a correlated
// reply arrives or timeout/ctx elapses.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd domain.Command, timeout time.Duration) (domain.Reply, error) {
	ch := make(chan domain.Reply, 1)
	d.mu.Lock()
	d.pending[cmd.CorrID] = ch
	d.mu.Unlock()

	payload, err := json.Marshal(struct {
		Data domain.Command `json:"data"`
	}{Data: cmd})
	if err != nil {
		d.forget(cmd.CorrID)
		return domain.Reply{}, fmt.Errorf("marshal command: %w", err)
	}

	if err := d.Bus.Publish(ctx, stream.TopicCmdRequests, cmd.CorrID, payload); err != nil {
		d.forget(cmd.CorrID)
		return domain.Reply{}, fmt.Errorf("publish command: %w", err)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case reply := <-ch:
		return reply, nil
	case <-timer.C:
		d.forget(cmd.CorrID)
		return domain.Reply{}, fmt.Errorf("timed out waiting for reply to %s", cmd.CorrID)
	case <-ctx.Done():
		d.forget(cmd.CorrID)
		return domain.Reply{}, ctx.Err()
	}
}

func (d *Dispatcher) forget(corrID string) {
	d.mu.Lock()
	delete(d.pending, corrID)
	d.mu.Unlock()
}
