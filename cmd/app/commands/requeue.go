package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/reservehq/reserve-outbox/internal/app"
	"github.com/reservehq/reserve-outbox/internal/config"
)

// RunRequeueNotification moves one dead-lettered notification back to the
// pending queue with a fresh retry budget.
//
// Requirements: Database must be migrated and accessible.
func RunRequeueNotification(ctx context.Context, rawID, format string) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("invalid notification id %q: %w", rawID, err)
	}

	// Load configuration
	cfg := config.Load()

	// Create DI container
	container := app.NewContainer(cfg)

	// Get logger from container
	logger := container.Logger()
	logger.Info("requeueing notification", slog.String("id", id.String()))

	// Ensure cleanup on exit
	defer closeContainer(container, logger)

	repo, err := container.NotificationRepository()
	if err != nil {
		return fmt.Errorf("failed to initialize notification repository: %w", err)
	}

	if err := repo.Requeue(ctx, id); err != nil {
		return fmt.Errorf("failed to requeue notification: %w", err)
	}

	outputRequeueResult("notification", id, format)

	logger.Info("notification requeued", slog.String("id", id.String()))
	return nil
}

// RunRequeueWebhook moves one dead-lettered webhook delivery back to the
// pending queue with a fresh retry budget.
//
// Requirements: Database must be migrated and accessible.
func RunRequeueWebhook(ctx context.Context, rawID, format string) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("invalid webhook delivery id %q: %w", rawID, err)
	}

	// Load configuration
	cfg := config.Load()

	// Create DI container
	container := app.NewContainer(cfg)

	// Get logger from container
	logger := container.Logger()
	logger.Info("requeueing webhook delivery", slog.String("id", id.String()))

	// Ensure cleanup on exit
	defer closeContainer(container, logger)

	repo, err := container.DeliveryRepository()
	if err != nil {
		return fmt.Errorf("failed to initialize delivery repository: %w", err)
	}

	if err := repo.Requeue(ctx, id); err != nil {
		return fmt.Errorf("failed to requeue webhook delivery: %w", err)
	}

	outputRequeueResult("webhook delivery", id, format)

	logger.Info("webhook delivery requeued", slog.String("id", id.String()))
	return nil
}

// outputRequeueResult prints the requeue outcome in the requested format.
func outputRequeueResult(kind string, id uuid.UUID, format string) {
	if format == "json" {
		result := map[string]interface{}{
			"id":     id.String(),
			"status": "pending",
		}
		jsonBytes, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
			return
		}
		fmt.Println(string(jsonBytes))
		return
	}

	fmt.Printf("Successfully requeued %s %s\n", kind, id)
}
