// Package pipeline wires the decision-pipeline components — signals,
// confidence, regime, entry/edge, bands, throttle, alert building — into
// the single hot loop that drains market.updates and emits a throttled,
// deduplicated stream of alerts.
package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/mbomani/soulscout/internal/alertbuilder"
	"github.com/mbomani/soulscout/internal/bands"
	"github.com/mbomani/soulscout/internal/confidence"
	"github.com/mbomani/soulscout/internal/domain"
	"github.com/mbomani/soulscout/internal/entryedge"
	"github.com/mbomani/soulscout/internal/metrics"
	"github.com/mbomani/soulscout/internal/regimeengine"
	"github.com/mbomani/soulscout/internal/signals"
	"github.com/mbomani/soulscout/internal/statestore"
	"github.com/mbomani/soulscout/internal/stream"
	"github.com/mbomani/soulscout/internal/throttle"
)

// Config bundles the band/regime thresholds the pipeline needs per
// update; wallet sizing inputs are optional (zero disables sizing).
type Config struct {
	BaseThreshold  float64
	WalletSOL      float64
	SolPriceUSD    float64
}

// Analytics is the stateful core: a rolling state store, a throttle
// ledger, and a regime detector shared across every pipeline worker
// processing market.updates.
type Analytics struct {
	Store    *statestore.Store
	Ledger   *throttle.Ledger
	Regime   *regimeengine.Detector
	Scorer   *confidence.Scorer
	Config   Config
	Bus      stream.EventBus
	Metrics  *metrics.Registry
	Log      zerolog.Logger
}

// New constructs an Analytics pipeline with fresh in-memory state —
// restarts reconstruct state from the stream tail, not from any
// durable store.
func New(bus stream.EventBus, cfg Config, throttleCfg throttle.Config, reg *metrics.Registry, log zerolog.Logger) *Analytics {
	return &Analytics{
		Store:   statestore.New(),
		Ledger:  throttle.NewLedger(throttleCfg),
		Regime:  regimeengine.New(),
		Scorer:  confidence.New(),
		Config:  cfg,
		Bus:     bus,
		Metrics: reg,
		Log:     log,
	}
}

// Run subscribes to market.updates under the analytics consumer group
// and drains it until ctx is cancelled. Each message is processed by a
// single worker per the per-symbol ordering guarantee — the bus's
// consumer-group semantics already pin one symbol's updates to the
// worker that reads them in arrival order within a partition/shard.
func (a *Analytics) Run(ctx context.Context) error {
	if err := a.Bus.Subscribe(ctx, stream.TopicMarketUpdates, stream.GroupAnalytics, a.handle); err != nil {
		return err
	}
	<-ctx.Done()
	return nil
}

func (a *Analytics) handle(ctx context.Context, msg *stream.Message) error {
	start := time.Now()
	defer func() {
		if a.Metrics != nil {
			a.Metrics.PipelineStepDuration.WithLabelValues("handle").Observe(time.Since(start).Seconds())
		}
	}()

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
		a.Log.Warn().Err(err).Msg("malformed message payload, dropping")
		return nil // ack to drop per malformed-message error kind
	}
	var md domain.MarketUpdate
	if err := json.Unmarshal(envelope.Data, &md); err != nil {
		a.Log.Warn().Err(err).Msg("malformed market update, dropping")
		return nil
	}

	md.Normalize()
	a.Store.Update(md.Symbol, md)

	state, ok := a.Store.Snapshot(md.Symbol)
	if !ok {
		return nil
	}

	scores := signals.Compute(state)
	conf := a.Scorer.Score(scores, md)
	regimeAssessment := a.Regime.Detect(ctx, a.Store)

	entry := entryedge.CheckEntryConfirmation(state)
	edge := entryedge.CheckNetEdge(state)

	band := bands.Classify(bands.Inputs{
		Confidence:     conf,
		Regime:         regimeAssessment,
		EntryConfirmed: entry.Confirmed,
		NetEdgePasses:  edge.Passes,
		BaseThreshold:  a.Config.BaseThreshold,
	})

	if band == domain.BandNone {
		return nil
	}

	sizing := entryedge.ComputeSizing(state, a.Config.WalletSOL, regimeAssessment.SizeAdjustmentPct, a.Config.SolPriceUSD)
	alert := alertbuilder.Build(md, band, scores, conf, entry, edge, sizing)

	decision := a.Ledger.Check(alert.Symbol, alert.Band, alert.Reasons, time.Now().UnixMilli())
	if !decision.Admit {
		a.Log.Debug().Str("symbol", alert.Symbol).Str("reason", decision.Reason).Msg("alert throttled")
		if a.Metrics != nil {
			a.Metrics.ThrottleRejects.WithLabelValues(decision.Reason).Inc()
		}
		return nil
	}

	if a.Metrics != nil {
		a.Metrics.AlertsEmitted.WithLabelValues(string(alert.Band)).Inc()
	}
	return a.publish(ctx, alert)
}

func (a *Analytics) publish(ctx context.Context, alert domain.AlertRecord) error {
	payload, err := json.Marshal(struct {
		Data domain.AlertRecord `json:"data"`
	}{Data: alert})
	if err != nil {
		return err
	}
	if err := a.Bus.Publish(ctx, stream.TopicAlerts, alert.Symbol, payload); err != nil {
		return err
	}
	if a.Metrics != nil {
		a.Metrics.BusPublishTotal.WithLabelValues(stream.TopicAlerts).Inc()
	}
	return nil
}

// RunCleanup runs the throttle-cleanup and stale-token-eviction workers
// on a fixed tick until ctx is cancelled.
func (a *Analytics) RunCleanup(ctx context.Context, interval, maxTokenAge, maxLedgerAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := a.Store.CleanupStale(maxTokenAge, time.Now())
			a.Ledger.Cleanup(time.Now().UnixMilli(), maxLedgerAge)
			if removed > 0 {
				a.Log.Debug().Int("removed", removed).Msg("evicted stale tokens")
			}
		}
	}
}
