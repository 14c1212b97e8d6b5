package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/reservehq/reserve-outbox/internal/notification/domain"
)

// MessageRepository is the full persistence contract for the notification
// outbox table. The dispatcher consumes the transition subset; the admin API
// consumes the listing and requeue subset.
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error)
	ClaimBatch(ctx context.Context, now time.Time, limit int) ([]*domain.Message, error)
	MarkSuccess(ctx context.Context, id uuid.UUID, attempts int) error
	MarkRetry(ctx context.Context, id uuid.UUID, attempts int, lastError string, nextScheduledAt time.Time) error
	MarkDeadLetter(ctx context.Context, id uuid.UUID, attempts int, lastError string) error
	ListFailed(ctx context.Context, limit, offset int) ([]*domain.Message, error)
	Requeue(ctx context.Context, id uuid.UUID) error
}
