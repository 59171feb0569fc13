package notifier

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/mbomani/soulscout/internal/domain"
	"github.com/mbomani/soulscout/internal/stream"
	"github.com/mbomani/soulscout/internal/throttle"
)

// Config bundles the notifier's tunable windows, sourced from the
// ambient env-style configuration.
type Config struct {
	DedupTTL       time.Duration
	GlobalMaxPerHour int
	DefaultMuteMin int
}

// Service is the notifier's consumer: it drains the alerts stream,
// applies mute/dedup/rate filtering per owner, formats, and publishes
// to outbound.alerts for the (out-of-scope) delivery transport to
// pick up.
type Service struct {
	Bus       stream.EventBus
	Dedup     *DedupCache
	Mute      *MuteState
	Throttle  *GlobalThrottle
	Config    Config
	OwnerID   int64
	Log       zerolog.Logger
}

// NewService wires a Service from already-constructed dependencies.
func NewService(bus stream.EventBus, dedup *DedupCache, mute *MuteState, cfg Config, ownerID int64, log zerolog.Logger) *Service {
	return &Service{
		Bus:      bus,
		Dedup:    dedup,
		Mute:     mute,
		Throttle: NewGlobalThrottle(cfg.GlobalMaxPerHour),
		Config:   cfg,
		OwnerID:  ownerID,
		Log:      log,
	}
}

// Run subscribes to the alerts stream under the notifier consumer
// group and drains it until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if err := s.Bus.Subscribe(ctx, stream.TopicAlerts, stream.GroupNotifier, s.handle); err != nil {
		return err
	}
	<-ctx.Done()
	return nil
}

func (s *Service) handle(ctx context.Context, msg *stream.Message) error {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
		s.Log.Warn().Err(err).Msg("malformed alert envelope, dropping")
		return nil
	}
	var alert domain.AlertRecord
	if err := json.Unmarshal(envelope.Data, &alert); err != nil {
		s.Log.Warn().Err(err).Msg("malformed alert, dropping")
		return nil
	}

	if s.Mute.IsMuted(ctx, s.OwnerID) {
		s.Log.Debug().Str("symbol", alert.Symbol).Msg("owner muted, suppressing delivery")
		return nil
	}

	reasonHash := throttle.ReasonHash(alert.Reasons)
	if s.Dedup.IsDuplicate(ctx, alert.Symbol, string(alert.Band), reasonHash) {
		s.Log.Debug().Str("symbol", alert.Symbol).Msg("duplicate alert, suppressing delivery")
		return nil
	}

	nowMs := time.Now().UnixMilli()
	if !s.Throttle.CheckAndRecord(nowMs) {
		s.Log.Debug().Str("symbol", alert.Symbol).Msg("global delivery cap reached, suppressing")
		return nil
	}

	formatted := FormatAlert(alert)
	if err := s.Dedup.Record(ctx, alert.Symbol, string(alert.Band), reasonHash); err != nil {
		s.Log.Warn().Err(err).Msg("dedup record failed, continuing delivery")
	}

	return s.publish(ctx, alert, formatted)
}

func (s *Service) publish(ctx context.Context, alert domain.AlertRecord, formatted FormattedAlert) error {
	payload, err := json.Marshal(struct {
		Symbol string   `json:"symbol"`
		Parts  []string `json:"parts"`
	}{Symbol: alert.Symbol, Parts: formatted.Parts})
	if err != nil {
		return err
	}
	return s.Bus.Publish(ctx, stream.TopicOutboundAlerts, alert.Symbol, payload)
}
