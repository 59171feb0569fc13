// Command portfolio runs the wallet valuation service: it answers
// /balance, /holdings, /add_wallet, and /remove_wallet off
// cmd.requests, pricing each wallet's holdings through the CoinGecko/
// DEX cascade. Valuations go back in the reply only; the dispatcher does
// not call Store.SaveSnapshot.
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
	"github.com/mbomani/soulscout/internal/httpapi"
	"github.com/mbomani/soulscout/internal/logging"
	"github.com/mbomani/soulscout/internal/metrics"
	"github.com/mbomani/soulscout/internal/portfolio"
	"github.com/mbomani/soulscout/internal/stream"
)

func main() {
	root := &cobra.Command{
		Use:   "portfolio",
		Short: "Run the SoulScout wallet valuation service",
		RunE:  run,
	}
	if err := root.Execute(); err != nil {
		logging.Init("portfolio").Fatal().Err(err).Msg("portfolio exited")
	}
}

func run(cmd *cobra.Command, args []string) error {
	log := logging.Init("portfolio")

	cfg, err := config.LoadPortfolioConfig()
	if err != nil {
		return err
	}

	store, err := portfolio.Open(cfg.PostgresDSN)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := store.InitSchema(ctx); err != nil {
		return err
	}

	cg, dex := portfolio.DefaultPriceSources()
	oracle := portfolio.NewOracle(portfolio.NewResilientCG(cg), portfolio.NewResilientDEX(dex))
	valuator := portfolio.NewValuator(cfg.DustMinUSD, cfg.HaircutPct)

	bus, err := stream.NewBus(cfg.BusType, cfg.BusAddr, 5000)
	if err != nil {
		return err
	}
	if err := bus.Start(ctx); err != nil {
		return err
	}
	defer bus.Stop(context.Background())

	_ = metrics.NewRegistry(prometheus.DefaultRegisterer)

	disp := &portfolio.Dispatcher{
		Bus:      bus,
		Store:    store,
		Oracle:   oracle,
		Valuator: valuator,
		Fetcher:  portfolio.DefaultHoldingsFetcher(),
		Log:      log,
	}

	mux := httpapi.NewHealthRouter("portfolio", map[string]httpapi.Checker{
		"bus": func() (bool, string) {
			h := bus.Health()
			return h.Healthy, h.Status
		},
		"postgres": func() (bool, string) {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := store.Ping(ctx); err != nil {
				return false, err.Error()
			}
			return true, "ok"
		},
	})
	mux.Handle("/metrics", metrics.Handler())
	server := &http.Server{Addr: cfg.HTTPAddr, Handler: mux}
	go server.ListenAndServe()

	errCh := make(chan error, 1)
	go func() { errCh <- disp.Run(ctx) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
		log.Info().Msg("portfolio shutting down")
		return nil
	case err := <-errCh:
		return err
	}
}
