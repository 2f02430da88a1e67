package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/starship-console/go/clients/starship_client"
	"github.com/mcdev12/starship-console/go/internal/console"
	"github.com/mcdev12/starship-console/go/internal/console/dashboard"
	"github.com/mcdev12/starship-console/go/internal/consoleconfig"
	"github.com/mcdev12/starship-console/go/internal/mirror"
	"github.com/mcdev12/starship-console/go/internal/ports"
	"github.com/mcdev12/starship-console/go/internal/statesync"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	// Setup logging
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := consoleconfig.NewConfigFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	client, err := starship_client.NewStarshipClient(cfg.ServerURL, cfg.CommandMethod)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create starship client")
	}

	synchronizer := statesync.NewSynchronizer(client, cfg.SyncConfig())
	controller := ports.NewController(synchronizer)

	log.Info().
		Str("server_url", client.BaseURL()).
		Dur("poll_interval", cfg.PollInterval).
		Dur("request_timeout", cfg.RequestTimeout).
		Str("dashboard_port", cfg.DashboardPort).
		Str("nats_url", cfg.NATSURL).
		Msg("starting starship console")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	goRun := func(name string, run func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := run(ctx); err != nil {
				log.Error().Err(err).Str("component", name).Msg("component failed")
			}
		}()
	}

	var renderers []console.Renderer
	if cfg.TerminalRender {
		renderers = append(renderers, console.NewTextRenderer(os.Stdout))
	}

	var server *http.Server
	if cfg.DashboardPort != "" {
		manager := dashboard.NewConnectionManager(dashboard.DefaultConnectionConfig(), controller)
		renderers = append(renderers, manager)
		goRun("dashboard", func(ctx context.Context) error {
			manager.Start(ctx)
			return nil
		})

		server = setupServer(cfg.DashboardPort, dashboard.NewWebSocketHandler(manager, synchronizer))
		go func() {
			log.Info().Str("addr", server.Addr).Msg("dashboard server starting")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal().Err(err).Msg("dashboard server failed")
			}
		}()
	}

	var publisher *mirror.Publisher
	if cfg.NATSURL != "" {
		publisher, err = mirror.Connect(cfg.MirrorConfig())
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect state mirror")
		}
		goRun("mirror", func(ctx context.Context) error {
			return publisher.Run(ctx, synchronizer)
		})
	}

	presenter := console.NewPresenter(synchronizer, cfg.Palette, synchronizer.Clock(), renderers...)
	goRun("presenter", presenter.Run)
	goRun("synchronizer", synchronizer.Run)

	// Operator input is not joined on shutdown; the scanner blocks on stdin.
	go func() {
		if err := console.ReadOperatorInput(ctx, os.Stdin, controller); err != nil {
			log.Error().Err(err).Msg("operator input failed")
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if server != nil {
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("dashboard server shutdown failed")
		}
	}

	cancel()
	wg.Wait()

	if publisher != nil {
		if err := publisher.Close(); err != nil {
			log.Error().Err(err).Msg("state mirror shutdown failed")
		}
	}

	log.Info().Msg("starship console shutdown complete")
}
