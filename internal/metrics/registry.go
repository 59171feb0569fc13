// Package metrics defines the Prometheus instrumentation shared across
// the five services, grounded on the teacher's MetricsRegistry pattern
// (internal/interfaces/http/metrics.go): one struct of pre-registered
// collectors built at startup and handed to whichever component emits
// them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
)

// Registry holds every Prometheus collector a SoulScout service emits.
type Registry struct {
	PipelineStepDuration *prometheus.HistogramVec
	ThrottleRejects      *prometheus.CounterVec
	AlertsEmitted        *prometheus.CounterVec
	BusPublishTotal      *prometheus.CounterVec
	BusConsumerLag       *prometheus.GaugeVec
	BusPendingCount      *prometheus.GaugeVec
	DedupSuppressed      prometheus.Counter
	MuteSuppressed       prometheus.Counter
}

// NewRegistry builds and registers every collector against reg (pass
// prometheus.NewRegistry() for test isolation, or
// prometheus.DefaultRegisterer in production).
func NewRegistry(reg prometheus.Registerer) *Registry {
	r := &Registry{
		PipelineStepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "soulscout_pipeline_step_duration_seconds",
				Help:    "Duration of each decision-pipeline step",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
			},
			[]string{"step"},
		),
		ThrottleRejects: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "soulscout_throttle_rejects_total",
				Help: "Alerts rejected by the throttle engine, by reason",
			},
			[]string{"reason"},
		),
		AlertsEmitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "soulscout_alerts_emitted_total",
				Help: "Alerts admitted and published, by band",
			},
			[]string{"band"},
		),
		BusPublishTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "soulscout_bus_publish_total",
				Help: "Messages published to the stream bus, by topic",
			},
			[]string{"topic"},
		),
		BusConsumerLag: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "soulscout_bus_consumer_lag",
				Help: "Approximate consumer lag per topic/group",
			},
			[]string{"topic", "group"},
		),
		BusPendingCount: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "soulscout_bus_pending_count",
				Help: "Unacknowledged (pending) entries per topic/group",
			},
			[]string{"topic", "group"},
		),
		DedupSuppressed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "soulscout_notifier_dedup_suppressed_total",
				Help: "Alerts suppressed by the notifier's dedup cache",
			},
		),
		MuteSuppressed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "soulscout_notifier_mute_suppressed_total",
				Help: "Alerts suppressed because the owner was muted",
			},
		),
	}

	reg.MustRegister(
		r.PipelineStepDuration, r.ThrottleRejects, r.AlertsEmitted,
		r.BusPublishTotal, r.BusConsumerLag, r.BusPendingCount,
		r.DedupSuppressed, r.MuteSuppressed,
	)
	return r
}

// Handler returns the promhttp handler serving /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
