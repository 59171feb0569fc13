// Command gateway runs the messaging gateway's transport-independent
// core: owner/guest authentication, PIN pairing, per-chat rate
// limiting, command parsing, and request/reply dispatch against
// cmd.requests/cmd.replies. The bot-API long-poll or webhook listener
// that feeds HandleText inbound text is an external collaborator out
// of scope here.
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
	"github.com/mbomani/soulscout/internal/gateway"
	"github.com/mbomani/soulscout/internal/httpapi"
	"github.com/mbomani/soulscout/internal/logging"
	"github.com/mbomani/soulscout/internal/metrics"
	"github.com/mbomani/soulscout/internal/notifier"
	"github.com/mbomani/soulscout/internal/stream"
)

func main() {
	root := &cobra.Command{
		Use:   "gateway",
		Short: "Run the SoulScout messaging gateway core",
		RunE:  run,
	}
	if err := root.Execute(); err != nil {
		logging.Init("gateway").Fatal().Err(err).Msg("gateway exited")
	}
}

func run(cmd *cobra.Command, args []string) error {
	log := logging.Init("gateway")

	cfg, err := config.LoadGatewayConfig()
	if err != nil {
		return err
	}

	redisClient, err := notifier.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	guests := gateway.NewGuestStore(redisClient)
	auth := gateway.NewAuthenticator(cfg.OwnerTelegramID, guests)
	limiter := gateway.NewChatLimiter(0, 0)

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

	disp := gateway.NewDispatcher(bus, log)
	svc := gateway.NewService(auth, limiter, disp, log)
	_ = svc // wired for a bot-API transport to call svc.HandleText per inbound message

	mux := httpapi.NewHealthRouter("gateway", map[string]httpapi.Checker{
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
	go func() { errCh <- disp.Run(ctx) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
		log.Info().Msg("gateway shutting down")
		return nil
	case err := <-errCh:
		return err
	}
}
