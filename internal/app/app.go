package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/chatrelay/chatrelay-server/internal/config"
	"github.com/chatrelay/chatrelay-server/internal/core"
	"github.com/chatrelay/chatrelay-server/internal/store"
	"github.com/chatrelay/chatrelay-server/internal/store/sqlite"
	transporthttp "github.com/chatrelay/chatrelay-server/internal/transport/http"
)

// App wires together the relay core, the store and the transport layer.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	bridge          *core.Bridge
	store           store.Store
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	logger.Info().Str("db_path", cfg.DatabasePath).Msg("database initialized")

	registry := core.NewRegistry(cfg.AllowDuplicateUsers)
	cast := core.NewBroadcaster(registry, cfg.SendTimeout, logger)
	bridge := core.NewBridge(st, cfg.PersistTimeout, logger)
	relay := core.NewRelay(registry, cast, bridge, logger)

	server := transporthttp.NewServer(relay, st, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		bridge:          bridge,
		store:           st,
		log:             logger,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup drains in-flight message writes and closes the store.
func (a *App) cleanup() {
	drainCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	if err := a.bridge.Drain(drainCtx); err != nil {
		a.log.Warn().Err(err).Msg("persistence bridge drain timed out")
	}

	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
