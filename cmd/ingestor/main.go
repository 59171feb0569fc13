// Command ingestor buckets per-pool price ticks into 5m/15m bars and
// publishes normalized market.updates. The per-venue feed (DEX
// aggregator polling, RPC account subscriptions) is an external
// collaborator out of scope here; this always runs against a synthetic
// local feed (--symbols picks the symbols it drives) so the synthesis
// pipeline is exercisable end to end without one.
package main

import (
	"context"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/mbomani/soulscout/internal/config"
	"github.com/mbomani/soulscout/internal/httpapi"
	"github.com/mbomani/soulscout/internal/ingest"
	"github.com/mbomani/soulscout/internal/logging"
	"github.com/mbomani/soulscout/internal/metrics"
	"github.com/mbomani/soulscout/internal/stream"
)

func main() {
	root := &cobra.Command{
		Use:   "ingestor",
		Short: "Run the SoulScout bar synthesis and normalization pipeline",
		RunE:  run,
	}
	root.Flags().String("symbols", "DEMO", "comma-separated symbols to drive with the stub feed source")
	root.Flags().Duration("tick-every", time.Second, "stub feed tick cadence")

	if err := root.Execute(); err != nil {
		logging.Init("ingestor").Fatal().Err(err).Msg("ingestor exited")
	}
}

func run(cmd *cobra.Command, args []string) error {
	log := logging.Init("ingestor")

	cfg, err := config.LoadIngestorConfig()
	if err != nil {
		return err
	}

	symbolsFlag, _ := cmd.Flags().GetString("symbols")
	tickEvery, _ := cmd.Flags().GetDuration("tick-every")
	symbols := strings.Split(symbolsFlag, ",")

	bus, err := stream.NewBus(cfg.BusType, cfg.BusAddr, 5000)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := bus.Start(ctx); err != nil {
		return err
	}
	defer bus.Stop(context.Background())

	_ = metrics.NewRegistry(prometheus.DefaultRegisterer)

	feed := ingest.NewStubFeedSource(symbols, tickEvery)
	svc := ingest.NewService(bus, feed, cfg.Bar5mIntervalMs, cfg.Bar15mIntervalMs, log)

	mux := httpapi.NewHealthRouter("ingestor", map[string]httpapi.Checker{
		"bus": func() (bool, string) {
			h := bus.Health()
			return h.Healthy, h.Status
		},
	})
	mux.Handle("/metrics", metrics.Handler())
	server := &http.Server{Addr: cfg.HTTPAddr, Handler: mux}
	go server.ListenAndServe()

	errCh := make(chan error, 1)
	go func() { errCh <- svc.Run(ctx) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
		log.Info().Msg("ingestor shutting down")
		return nil
	case err := <-errCh:
		return err
	}
}
