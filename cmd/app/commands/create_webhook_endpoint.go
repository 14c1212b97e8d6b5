package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	"github.com/reservehq/reserve-outbox/internal/app"
	"github.com/reservehq/reserve-outbox/internal/config"
	internalValidation "github.com/reservehq/reserve-outbox/internal/validation"
	webhookDomain "github.com/reservehq/reserve-outbox/internal/webhook/domain"
)

// RunCreateWebhookEndpoint registers a webhook endpoint subscription. New
// endpoints start active and receive deliveries on the next worker cycle.
//
// Requirements: Database must be migrated and accessible.
func RunCreateWebhookEndpoint(ctx context.Context, url, description, format string) error {
	if err := validation.Validate(url, validation.Required, internalValidation.AbsoluteURL); err != nil {
		return fmt.Errorf("invalid endpoint url %q: %w", url, err)
	}

	// Load configuration
	cfg := config.Load()

	// Create DI container
	container := app.NewContainer(cfg)

	// Get logger from container
	logger := container.Logger()
	logger.Info("creating webhook endpoint", slog.String("url", url))

	// Ensure cleanup on exit
	defer closeContainer(container, logger)

	repo, err := container.EndpointRepository()
	if err != nil {
		return fmt.Errorf("failed to initialize endpoint repository: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate endpoint id: %w", err)
	}

	endpoint := &webhookDomain.Endpoint{
		ID:          id,
		URL:         url,
		Description: description,
		IsActive:    true,
	}

	if err := repo.Create(ctx, endpoint); err != nil {
		return fmt.Errorf("failed to create webhook endpoint: %w", err)
	}

	outputEndpointResult(endpoint, format)

	logger.Info("webhook endpoint created",
		slog.String("id", endpoint.ID.String()),
		slog.String("url", endpoint.URL),
	)
	return nil
}

// outputEndpointResult prints the created endpoint in the requested format.
func outputEndpointResult(endpoint *webhookDomain.Endpoint, format string) {
	if format == "json" {
		result := map[string]interface{}{
			"id":          endpoint.ID.String(),
			"url":         endpoint.URL,
			"description": endpoint.Description,
			"is_active":   endpoint.IsActive,
		}
		jsonBytes, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
			return
		}
		fmt.Println(string(jsonBytes))
		return
	}

	fmt.Printf("Successfully created webhook endpoint %s\n", endpoint.ID)
	fmt.Printf("  URL: %s\n", endpoint.URL)
	if endpoint.Description != "" {
		fmt.Printf("  Description: %s\n", endpoint.Description)
	}
}
