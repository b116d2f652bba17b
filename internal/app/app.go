// Package app wires configuration, the room manager, and the HTTP surface
// into a running server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-redis/redis/v9"
	"github.com/rs/zerolog"

	"marble-soccer/server/internal/config"
	"marble-soccer/server/internal/directory"
	servernet "marble-soccer/server/internal/net"
	"marble-soccer/server/internal/rooms"
	"marble-soccer/server/internal/telemetry"
)

// shutdownTimeout bounds how long Run waits for in-flight requests and
// match loops after the context is cancelled.
const shutdownTimeout = 10 * time.Second

// Run starts the server and blocks until ctx is cancelled or the listener
// fails.
func Run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	dir, closeDir := buildDirectory(cfg, logger)
	defer closeDir()

	counters := telemetry.NewCounters()
	manager := rooms.NewManager(cfg.SimConfig().Normalized(), cfg.LoopConfig(), dir, counters, logger)

	handler := servernet.NewHTTPHandler(manager, counters, servernet.HTTPHandlerConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         logger,
	})

	srv := &http.Server{Addr: cfg.Server.BindAddress, Handler: handler}

	errs := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server listening")
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		logger.Warn().Err(err).Msg("http shutdown incomplete")
	}
	manager.Shutdown(shutdownCtx)
	return nil
}

// buildDirectory returns the configured room listing, or the no-op one when
// no backend is set.
func buildDirectory(cfg *config.Config, logger zerolog.Logger) (directory.Directory, func()) {
	if cfg.Directory.RedisAddress == "" {
		return directory.Nop{}, func() {}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Directory.RedisAddress,
		Password: cfg.Directory.RedisPassword,
		DB:       cfg.Directory.RedisDB,
	})
	logger.Info().Str("addr", cfg.Directory.RedisAddress).Msg("publishing rooms to redis directory")
	return directory.NewRedis(client), func() {
		if err := client.Close(); err != nil {
			logger.Debug().Err(err).Msg("closing redis client")
		}
	}
}
