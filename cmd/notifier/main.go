// Command notifier drains the alerts stream, applies mute/dedup/rate
// filtering, formats each admitted alert, and publishes it to
// outbound.alerts for the bot-API delivery transport to pick up.
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
	"github.com/mbomani/soulscout/internal/notifier"
	"github.com/mbomani/soulscout/internal/stream"
)

func main() {
	root := &cobra.Command{
		Use:   "notifier",
		Short: "Run the SoulScout alert delivery filter",
		RunE:  run,
	}
	if err := root.Execute(); err != nil {
		logging.Init("notifier").Fatal().Err(err).Msg("notifier exited")
	}
}

func run(cmd *cobra.Command, args []string) error {
	log := logging.Init("notifier")

	cfg, err := config.LoadNotifierConfig()
	if err != nil {
		return err
	}

	redisClient, err := notifier.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	dedup := notifier.NewDedupCache(redisClient, time.Duration(cfg.DedupTTLSeconds)*time.Second)
	mute := notifier.NewMuteState(redisClient)

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

	svc := notifier.NewService(bus, dedup, mute, notifier.Config{
		DedupTTL:         time.Duration(cfg.DedupTTLSeconds) * time.Second,
		GlobalMaxPerHour: cfg.GlobalMaxPerHour,
		DefaultMuteMin:   cfg.DefaultMuteMinutes,
	}, cfg.OwnerTelegramID, log)

	mux := httpapi.NewHealthRouter("notifier", map[string]httpapi.Checker{
		"bus": func() (bool, string) {
			h := bus.Health()
			return h.Healthy, h.Status
		},
		"redis": func() (bool, string) {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := redisClient.Ping(ctx).Err(); err != nil {
				return false, err.Error()
			}
			return true, "ok"
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
		log.Info().Msg("notifier shutting down")
		return nil
	case err := <-errCh:
		return err
	}
}
