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

// MySQLDeliveryRepository handles webhook delivery persistence for MySQL.
type MySQLDeliveryRepository struct {
	db *sql.DB
}

// NewMySQLDeliveryRepository creates a new MySQLDeliveryRepository
func NewMySQLDeliveryRepository(db *sql.DB) *MySQLDeliveryRepository {
	return &MySQLDeliveryRepository{
		db: db,
	}
}

// Create inserts a new webhook delivery row.
func (r *MySQLDeliveryRepository) Create(ctx context.Context, delivery *domain.Delivery) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO webhook_deliveries (id, endpoint_id, event, payload, status, attempts, last_error, signature_input, delivered_at, scheduled_at, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())`

	// Convert UUIDs to bytes for MySQL BINARY(16)
	idBytes, err := delivery.ID.MarshalBinary()
	if err != nil {
		return err
	}
	endpointIDBytes, err := delivery.EndpointID.MarshalBinary()
	if err != nil {
		return err
	}

	_, err = querier.ExecContext(ctx, query, idBytes, endpointIDBytes, delivery.Event,
		delivery.Payload, delivery.Status, delivery.Attempts, delivery.LastError,
		delivery.SignatureInput, delivery.DeliveredAt, delivery.ScheduledAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create webhook delivery")
	}

	return nil
}

// GetByID retrieves one webhook delivery row.
func (r *MySQLDeliveryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Delivery, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, endpoint_id, event, payload, status, attempts, last_error, signature_input, delivered_at, scheduled_at, created_at, updated_at
			  FROM webhook_deliveries
			  WHERE id = ?`

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, err
	}

	var delivery domain.Delivery
	var scannedID, scannedEndpointID []byte
	err = querier.QueryRowContext(ctx, query, idBytes).Scan(&scannedID, &scannedEndpointID,
		&delivery.Event, &delivery.Payload, &delivery.Status, &delivery.Attempts,
		&delivery.LastError, &delivery.SignatureInput, &delivery.DeliveredAt,
		&delivery.ScheduledAt, &delivery.CreatedAt, &delivery.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get webhook delivery by id")
	}

	if err := delivery.ID.UnmarshalBinary(scannedID); err != nil {
		return nil, err
	}
	if err := delivery.EndpointID.UnmarshalBinary(scannedEndpointID); err != nil {
		return nil, err
	}

	return &delivery, nil
}

// ClaimBatch retrieves due pending rows locked for the current transaction.
func (r *MySQLDeliveryRepository) ClaimBatch(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]*domain.Delivery, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, endpoint_id, event, payload, status, attempts, last_error, signature_input, delivered_at, scheduled_at, created_at, updated_at
			  FROM webhook_deliveries
			  WHERE status = ? AND scheduled_at <= ?
			  ORDER BY scheduled_at ASC, created_at ASC
			  LIMIT ?
			  FOR UPDATE SKIP LOCKED`

	rows, err := querier.QueryContext(ctx, query, outboxDomain.StatusPending, now, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to claim webhook deliveries")
	}
	defer rows.Close() //nolint:errcheck

	var deliveries []*domain.Delivery
	for rows.Next() {
		var delivery domain.Delivery
		var idBytes, endpointIDBytes []byte

		err := rows.Scan(&idBytes, &endpointIDBytes, &delivery.Event, &delivery.Payload,
			&delivery.Status, &delivery.Attempts, &delivery.LastError, &delivery.SignatureInput,
			&delivery.DeliveredAt, &delivery.ScheduledAt, &delivery.CreatedAt, &delivery.UpdatedAt)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan webhook delivery")
		}

		// Convert bytes back to UUIDs
		if err := delivery.ID.UnmarshalBinary(idBytes); err != nil {
			return nil, err
		}
		if err := delivery.EndpointID.UnmarshalBinary(endpointIDBytes); err != nil {
			return nil, err
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
func (r *MySQLDeliveryRepository) MarkSuccess(ctx context.Context, id uuid.UUID, attempts int) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE webhook_deliveries
			  SET status = ?, attempts = ?, last_error = NULL, delivered_at = NOW(), updated_at = NOW()
			  WHERE id = ?`

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return err
	}

	_, err = querier.ExecContext(ctx, query, outboxDomain.StatusSuccess, attempts, idBytes)
	if err != nil {
		return apperrors.Wrap(err, "failed to mark webhook delivery success")
	}

	return nil
}

// MarkRetry records a failed attempt and schedules the next one.
func (r *MySQLDeliveryRepository) MarkRetry(
	ctx context.Context,
	id uuid.UUID,
	attempts int,
	lastError string,
	nextScheduledAt time.Time,
) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE webhook_deliveries
			  SET attempts = ?, last_error = ?, scheduled_at = ?, updated_at = NOW()
			  WHERE id = ?`

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return err
	}

	_, err = querier.ExecContext(ctx, query, attempts, lastError, nextScheduledAt, idBytes)
	if err != nil {
		return apperrors.Wrap(err, "failed to mark webhook delivery retry")
	}

	return nil
}

// MarkDeadLetter transitions a row to the failed terminal state.
func (r *MySQLDeliveryRepository) MarkDeadLetter(
	ctx context.Context,
	id uuid.UUID,
	attempts int,
	lastError string,
) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE webhook_deliveries
			  SET status = ?, attempts = ?, last_error = ?, updated_at = NOW()
			  WHERE id = ?`

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return err
	}

	_, err = querier.ExecContext(ctx, query, outboxDomain.StatusFailed, attempts, lastError, idBytes)
	if err != nil {
		return apperrors.Wrap(err, "failed to mark webhook delivery dead letter")
	}

	return nil
}

// SaveSignatureInput retains the exact signed string for audit.
func (r *MySQLDeliveryRepository) SaveSignatureInput(ctx context.Context, id uuid.UUID, input string) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE webhook_deliveries
			  SET signature_input = ?, updated_at = NOW()
			  WHERE id = ?`

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return err
	}

	_, err = querier.ExecContext(ctx, query, input, idBytes)
	if err != nil {
		return apperrors.Wrap(err, "failed to save webhook signature input")
	}

	return nil
}

// ListFailed retrieves dead-lettered rows ordered by most recent first.
func (r *MySQLDeliveryRepository) ListFailed(ctx context.Context, limit, offset int) ([]*domain.Delivery, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, endpoint_id, event, payload, status, attempts, last_error, signature_input, delivered_at, scheduled_at, created_at, updated_at
			  FROM webhook_deliveries
			  WHERE status = ?
			  ORDER BY updated_at DESC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, outboxDomain.StatusFailed, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list failed webhook deliveries")
	}
	defer rows.Close() //nolint:errcheck

	var deliveries []*domain.Delivery
	for rows.Next() {
		var delivery domain.Delivery
		var idBytes, endpointIDBytes []byte

		err := rows.Scan(&idBytes, &endpointIDBytes, &delivery.Event, &delivery.Payload,
			&delivery.Status, &delivery.Attempts, &delivery.LastError, &delivery.SignatureInput,
			&delivery.DeliveredAt, &delivery.ScheduledAt, &delivery.CreatedAt, &delivery.UpdatedAt)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan webhook delivery")
		}

		if err := delivery.ID.UnmarshalBinary(idBytes); err != nil {
			return nil, err
		}
		if err := delivery.EndpointID.UnmarshalBinary(endpointIDBytes); err != nil {
			return nil, err
		}

		deliveries = append(deliveries, &delivery)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate webhook deliveries")
	}

	return deliveries, nil
}

// Requeue resets a dead-lettered row to pending with a fresh retry budget,
// due immediately. The status guard makes requeue a failed-only transition.
func (r *MySQLDeliveryRepository) Requeue(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE webhook_deliveries
			  SET status = ?, attempts = 0, last_error = NULL, scheduled_at = NOW(), updated_at = NOW()
			  WHERE id = ? AND status = ?`

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return err
	}

	result, err := querier.ExecContext(ctx, query, outboxDomain.StatusPending, idBytes, outboxDomain.StatusFailed)
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
