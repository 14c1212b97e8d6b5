// Package repository provides data persistence implementations for webhook
// deliveries and endpoints.
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/reservehq/reserve-outbox/internal/database"
	apperrors "github.com/reservehq/reserve-outbox/internal/errors"
	outboxDomain "github.com/reservehq/reserve-outbox/internal/outbox/domain"
	"github.com/reservehq/reserve-outbox/internal/webhook/domain"
)

// PostgreSQLDeliveryRepository handles webhook delivery persistence for
// PostgreSQL.
type PostgreSQLDeliveryRepository struct {
	db *sql.DB
}

// NewPostgreSQLDeliveryRepository creates a new PostgreSQLDeliveryRepository
func NewPostgreSQLDeliveryRepository(db *sql.DB) *PostgreSQLDeliveryRepository {
	return &PostgreSQLDeliveryRepository{
		db: db,
	}
}

// Create inserts a new webhook delivery row.
func (r *PostgreSQLDeliveryRepository) Create(ctx context.Context, delivery *domain.Delivery) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO webhook_deliveries (id, endpoint_id, event, payload, status, attempts, last_error, signature_input, delivered_at, scheduled_at, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())`

	_, err := querier.ExecContext(ctx, query, delivery.ID, delivery.EndpointID, delivery.Event,
		delivery.Payload, delivery.Status, delivery.Attempts, delivery.LastError,
		delivery.SignatureInput, delivery.DeliveredAt, delivery.ScheduledAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create webhook delivery")
	}

	return nil
}

// GetByID retrieves one webhook delivery row.
func (r *PostgreSQLDeliveryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Delivery, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, endpoint_id, event, payload, status, attempts, last_error, signature_input, delivered_at, scheduled_at, created_at, updated_at
			  FROM webhook_deliveries
			  WHERE id = $1`

	var delivery domain.Delivery
	err := querier.QueryRowContext(ctx, query, id).Scan(&delivery.ID, &delivery.EndpointID,
		&delivery.Event, &delivery.Payload, &delivery.Status, &delivery.Attempts,
		&delivery.LastError, &delivery.SignatureInput, &delivery.DeliveredAt,
		&delivery.ScheduledAt, &delivery.CreatedAt, &delivery.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get webhook delivery by id")
	}

	return &delivery, nil
}

// ClaimBatch retrieves due pending rows locked for the current transaction.
// SKIP LOCKED keeps concurrent worker replicas from claiming the same rows.
func (r *PostgreSQLDeliveryRepository) ClaimBatch(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]*domain.Delivery, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, endpoint_id, event, payload, status, attempts, last_error, signature_input, delivered_at, scheduled_at, created_at, updated_at
			  FROM webhook_deliveries
			  WHERE status = $1 AND scheduled_at <= $2
			  ORDER BY scheduled_at ASC, created_at ASC
			  LIMIT $3
			  FOR UPDATE SKIP LOCKED`

	rows, err := querier.QueryContext(ctx, query, outboxDomain.StatusPending, now, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to claim webhook deliveries")
	}
	defer rows.Close() //nolint:errcheck

	var deliveries []*domain.Delivery
	for rows.Next() {
		var delivery domain.Delivery

		err := rows.Scan(&delivery.ID, &delivery.EndpointID, &delivery.Event, &delivery.Payload,
			&delivery.Status, &delivery.Attempts, &delivery.LastError, &delivery.SignatureInput,
			&delivery.DeliveredAt, &delivery.ScheduledAt, &delivery.CreatedAt, &delivery.UpdatedAt)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan webhook delivery")
		}

		deliveries = append(deliveries, &delivery)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate webhook deliveries")
	}

	return deliveries, nil
}

// MarkSuccess transitions a row to the success terminal state and stamps the
// acknowledgement time.
func (r *PostgreSQLDeliveryRepository) MarkSuccess(ctx context.Context, id uuid.UUID, attempts int) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE webhook_deliveries
			  SET status = $1, attempts = $2, last_error = NULL, delivered_at = NOW(), updated_at = NOW()
			  WHERE id = $3`

	_, err := querier.ExecContext(ctx, query, outboxDomain.StatusSuccess, attempts, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to mark webhook delivery success")
	}

	return nil
}

// MarkRetry records a failed attempt and schedules the next one.
func (r *PostgreSQLDeliveryRepository) MarkRetry(
	ctx context.Context,
	id uuid.UUID,
	attempts int,
	lastError string,
	nextScheduledAt time.Time,
) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE webhook_deliveries
			  SET attempts = $1, last_error = $2, scheduled_at = $3, updated_at = NOW()
			  WHERE id = $4`

	_, err := querier.ExecContext(ctx, query, attempts, lastError, nextScheduledAt, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to mark webhook delivery retry")
	}

	return nil
}

// MarkDeadLetter transitions a row to the failed terminal state.
func (r *PostgreSQLDeliveryRepository) MarkDeadLetter(
	ctx context.Context,
	id uuid.UUID,
	attempts int,
	lastError string,
) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE webhook_deliveries
			  SET status = $1, attempts = $2, last_error = $3, updated_at = NOW()
			  WHERE id = $4`

	_, err := querier.ExecContext(ctx, query, outboxDomain.StatusFailed, attempts, lastError, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to mark webhook delivery dead letter")
	}

	return nil
}

// SaveSignatureInput retains the exact signed string for audit. Written in
// the cycle transaction so the audit trail commits with the state
// transition.
func (r *PostgreSQLDeliveryRepository) SaveSignatureInput(ctx context.Context, id uuid.UUID, input string) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE webhook_deliveries
			  SET signature_input = $1, updated_at = NOW()
			  WHERE id = $2`

	_, err := querier.ExecContext(ctx, query, input, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to save webhook signature input")
	}

	return nil
}

// ListFailed retrieves dead-lettered rows ordered by most recent first.
func (r *PostgreSQLDeliveryRepository) ListFailed(ctx context.Context, limit, offset int) ([]*domain.Delivery, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, endpoint_id, event, payload, status, attempts, last_error, signature_input, delivered_at, scheduled_at, created_at, updated_at
			  FROM webhook_deliveries
			  WHERE status = $1
			  ORDER BY updated_at DESC
			  LIMIT $2 OFFSET $3`

	rows, err := querier.QueryContext(ctx, query, outboxDomain.StatusFailed, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list failed webhook deliveries")
	}
	defer rows.Close() //nolint:errcheck

	var deliveries []*domain.Delivery
	for rows.Next() {
		var delivery domain.Delivery

		err := rows.Scan(&delivery.ID, &delivery.EndpointID, &delivery.Event, &delivery.Payload,
			&delivery.Status, &delivery.Attempts, &delivery.LastError, &delivery.SignatureInput,
			&delivery.DeliveredAt, &delivery.ScheduledAt, &delivery.CreatedAt, &delivery.UpdatedAt)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan webhook delivery")
		}

		deliveries = append(deliveries, &delivery)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate webhook deliveries")
	}

	return deliveries, nil
}

// Requeue resets a dead-lettered row to pending with a fresh retry budget,
// due immediately. The status guard makes requeue a failed-only transition:
// a missing row maps to ErrNotFound, any other status to ErrConflict.
func (r *PostgreSQLDeliveryRepository) Requeue(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE webhook_deliveries
			  SET status = $1, attempts = 0, last_error = NULL, scheduled_at = NOW(), updated_at = NOW()
			  WHERE id = $2 AND status = $3`

	result, err := querier.ExecContext(ctx, query, outboxDomain.StatusPending, id, outboxDomain.StatusFailed)
	if err != nil {
		return apperrors.Wrap(err, "failed to requeue webhook delivery")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to requeue webhook delivery")
	}
	if affected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return apperrors.ErrConflict
	}

	return nil
}
