package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/navikt/roomboard/internal/api"
	"github.com/navikt/roomboard/internal/config"
	"github.com/navikt/roomboard/internal/logging"
	"github.com/navikt/roomboard/internal/repository"
	"github.com/navikt/roomboard/internal/service"
	"github.com/navikt/roomboard/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Server.LogLevel, cfg.Server.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("roomboard stopped with error", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	// Initialize the repository using the factory
	repo, err := repository.NewRepository(cfg.Storage, cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize repository: %w", err)
	}

	// Redis and SQLite hold connections that must be released on exit
	if closer, ok := repo.(interface{ Close() error }); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				logger.Error("error closing repository", zap.Error(err))
			}
		}()
	}

	logger.Info("repository initialized",
		zap.String("backend", cfg.Storage.Backend),
		zap.String("location", cfg.Server.Location.String()),
	)

	roomService := service.NewRoomService(repo,
		service.WithLocation(cfg.Server.Location),
		service.WithLogger(logger.Named("service")),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Push room changes and periodic refreshes to connected dashboards
	broadcaster := web.NewBroadcaster(logger.Named("sse"), cfg.Server.RefreshInterval)
	roomService.RegisterUpdateCallback(broadcaster.NotifyRoomUpdate)
	broadcaster.Start(ctx)

	router := api.SetupRoutes(roomService, broadcaster, logger.Named("api"))

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // Disable write timeout for SSE connections
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		logger.Info("starting roomboard server", zap.String("port", cfg.Server.Port))
		serverErrors <- server.ListenAndServe()
	}()

	// Block until a signal is received or an error occurs
	select {
	case err := <-serverErrors:
		broadcaster.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("error starting server: %w", err)

	case <-ctx.Done():
		logger.Info("shutting down server")

		// First, close SSE connections so Shutdown does not wait on them
		broadcaster.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			server.Close()
			return fmt.Errorf("error shutting down server: %w", err)
		}

		logger.Info("server gracefully stopped")
		return nil
	}
}
