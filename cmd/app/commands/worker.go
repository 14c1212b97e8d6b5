package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/reservehq/reserve-outbox/internal/app"
	"github.com/reservehq/reserve-outbox/internal/config"
)

// serverShutdownTimeout bounds the graceful drain of the admin and metrics
// servers once a shutdown signal arrives.
const serverShutdownTimeout = 10 * time.Second

// RunWorker starts the notification and webhook delivery workers together
// with the admin API and metrics servers. Blocks until receiving
// SIGINT/SIGTERM or encountering a fatal error, then shuts everything down
// gracefully.
func RunWorker(ctx context.Context, version string) error {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode based on log level
	gin.SetMode(cfg.GetGinMode())

	// Create DI container
	container := app.NewContainer(cfg)

	// Get logger from container
	logger := container.Logger()
	logger.Info("starting delivery workers", slog.String("version", version))

	// Ensure cleanup on exit
	defer closeContainer(container, logger)

	notificationDispatcher, err := container.NotificationDispatcher()
	if err != nil {
		return fmt.Errorf("failed to initialize notification dispatcher: %w", err)
	}

	webhookDispatcher, err := container.WebhookDispatcher()
	if err != nil {
		return fmt.Errorf("failed to initialize webhook dispatcher: %w", err)
	}

	// Admin and metrics servers are optional; nil when disabled
	adminServer, err := container.AdminServer()
	if err != nil {
		return fmt.Errorf("failed to initialize admin server: %w", err)
	}

	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}

	// Setup graceful shutdown
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := notificationDispatcher.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("notification dispatcher error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := webhookDispatcher.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("webhook dispatcher error: %w", err)
		}
		return nil
	})

	if adminServer != nil {
		g.Go(func() error {
			if err := adminServer.Start(gctx); err != nil {
				return fmt.Errorf("admin server error: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
			defer shutdownCancel()
			if err := adminServer.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("admin server shutdown: %w", err)
			}
			return nil
		})
	}

	if metricsServer != nil {
		g.Go(func() error {
			if err := metricsServer.Start(gctx); err != nil {
				return fmt.Errorf("metrics server error: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
			defer shutdownCancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("metrics server shutdown: %w", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("worker stopped with error", slog.Any("error", err))
		return err
	}

	logger.Info("worker stopped")
	return nil
}
