// Command analytics runs the decision pipeline core: it drains
// market.updates, scores and classifies each update, and publishes
// admitted alerts.
package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/mbomani/soulscout/internal/config"
	"github.com/mbomani/soulscout/internal/dispatch"
	"github.com/mbomani/soulscout/internal/httpapi"
	"github.com/mbomani/soulscout/internal/logging"
	"github.com/mbomani/soulscout/internal/metrics"
	"github.com/mbomani/soulscout/internal/pipeline"
	"github.com/mbomani/soulscout/internal/stream"
)

func main() {
	root := &cobra.Command{
		Use:   "analytics",
		Short: "Run the SoulScout analytics decision pipeline",
		RunE:  run,
	}
	root.Flags().Float64("wallet-sol", 0, "Wallet balance in SOL for sizing advisories (0 disables sizing)")
	root.Flags().Float64("sol-price-usd", 0, "SOL/USD price for sizing advisories")
	root.Flags().String("thresholds-file", "", "Path to a YAML thresholds profile overriding throttle env config (defaults to THRESHOLDS_PROFILE_PATH)")

	if err := root.Execute(); err != nil {
		logging.Init("analytics").Fatal().Err(err).Msg("analytics exited")
	}
}

func run(cmd *cobra.Command, args []string) error {
	log := logging.Init("analytics")

	cfg, err := config.LoadAnalyticsConfig()
	if err != nil {
		return err
	}
	walletSOL, _ := cmd.Flags().GetFloat64("wallet-sol")
	solPrice, _ := cmd.Flags().GetFloat64("sol-price-usd")
	thresholdsFile, _ := cmd.Flags().GetString("thresholds-file")
	if thresholdsFile != "" {
		cfg.ThresholdsProfilePath = thresholdsFile
	}

	bus, err := stream.NewBus(cfg.BusType, cfg.BusAddr, cfg.BlockMs)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := bus.Start(ctx); err != nil {
		return err
	}
	defer bus.Stop(context.Background())

	reg := metrics.NewRegistry(prometheus.DefaultRegisterer)

	throttleCfg, err := config.LoadThresholdsProfile(cfg.ThresholdsProfilePath, cfg.ThrottleConfig())
	if err != nil {
		return err
	}

	pl := pipeline.New(bus, pipeline.Config{
		BaseThreshold: cfg.ActionableBaseThreshold,
		WalletSOL:     walletSOL,
		SolPriceUSD:   solPrice,
	}, throttleCfg, reg, log)

	disp := &dispatch.Dispatcher{Bus: bus, Ledger: pl.Ledger, WatchWindowMin: cfg.WatchWindowMin, Log: log}

	mux := httpapi.NewHealthRouter("analytics", map[string]httpapi.Checker{
		"bus": func() (bool, string) {
			h := bus.Health()
			return h.Healthy, h.Status
		},
	})
	mux.Handle("/metrics", metrics.Handler())
	server := &http.Server{Addr: cfg.HTTPAddr, Handler: mux}
	go server.ListenAndServe()

	go pl.RunCleanup(ctx, time.Minute, 24*time.Hour, 24*time.Hour)

	errCh := make(chan error, 2)
	go func() { errCh <- pl.Run(ctx) }()
	go func() { errCh <- disp.Run(ctx) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
		log.Info().Msg("analytics shutting down")
		return nil
	case err := <-errCh:
		return err
	}
}
