package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/reservehq/reserve-outbox/internal/webhook/domain"
)

// DeliveryRepository is the full persistence contract for the webhook
// delivery outbox table.
type DeliveryRepository interface {
	Create(ctx context.Context, delivery *domain.Delivery) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Delivery, error)
	ClaimBatch(ctx context.Context, now time.Time, limit int) ([]*domain.Delivery, error)
	MarkSuccess(ctx context.Context, id uuid.UUID, attempts int) error
	MarkRetry(ctx context.Context, id uuid.UUID, attempts int, lastError string, nextScheduledAt time.Time) error
	MarkDeadLetter(ctx context.Context, id uuid.UUID, attempts int, lastError string) error
	SaveSignatureInput(ctx context.Context, id uuid.UUID, input string) error
	ListFailed(ctx context.Context, limit, offset int) ([]*domain.Delivery, error)
	Requeue(ctx context.Context, id uuid.UUID) error
}

// EndpointRepository is the persistence contract for webhook endpoint
// registrations.
type EndpointRepository interface {
	Create(ctx context.Context, endpoint *domain.Endpoint) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Endpoint, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Endpoint, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}
