// Package repository provides data persistence implementations for the
// notification outbox.
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/reservehq/reserve-outbox/internal/database"
	apperrors "github.com/reservehq/reserve-outbox/internal/errors"
	"github.com/reservehq/reserve-outbox/internal/notification/domain"
	outboxDomain "github.com/reservehq/reserve-outbox/internal/outbox/domain"
)

// PostgreSQLNotificationRepository handles notification outbox persistence
// for PostgreSQL.
type PostgreSQLNotificationRepository struct {
	db *sql.DB
}

// NewPostgreSQLNotificationRepository creates a new PostgreSQLNotificationRepository
func NewPostgreSQLNotificationRepository(db *sql.DB) *PostgreSQLNotificationRepository {
	return &PostgreSQLNotificationRepository{
		db: db,
	}
}

// Create inserts a new notification outbox row.
func (r *PostgreSQLNotificationRepository) Create(ctx context.Context, msg *domain.Message) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO notification_outbox (id, event, channel, guest_contact, language, payload, status, attempts, last_error, scheduled_at, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())`

	_, err := querier.ExecContext(ctx, query, msg.ID, msg.Event, msg.Channel, msg.GuestContact,
		msg.Language, msg.Payload, msg.Status, msg.Attempts, msg.LastError, msg.ScheduledAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create notification")
	}

	return nil
}

// GetByID retrieves one notification outbox row.
func (r *PostgreSQLNotificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, event, channel, guest_contact, language, payload, status, attempts, last_error, scheduled_at, created_at, updated_at
			  FROM notification_outbox
			  WHERE id = $1`

	var msg domain.Message
	err := querier.QueryRowContext(ctx, query, id).Scan(&msg.ID, &msg.Event, &msg.Channel,
		&msg.GuestContact, &msg.Language, &msg.Payload, &msg.Status, &msg.Attempts,
		&msg.LastError, &msg.ScheduledAt, &msg.CreatedAt, &msg.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get notification by id")
	}

	return &msg, nil
}

// ClaimBatch retrieves due pending rows locked for the current transaction.
// SKIP LOCKED keeps concurrent worker replicas from claiming the same rows.
func (r *PostgreSQLNotificationRepository) ClaimBatch(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]*domain.Message, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, event, channel, guest_contact, language, payload, status, attempts, last_error, scheduled_at, created_at, updated_at
			  FROM notification_outbox
			  WHERE status = $1 AND scheduled_at <= $2
			  ORDER BY scheduled_at ASC, created_at ASC
			  LIMIT $3
			  FOR UPDATE SKIP LOCKED`

	rows, err := querier.QueryContext(ctx, query, outboxDomain.StatusPending, now, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to claim notifications")
	}
	defer rows.Close() //nolint:errcheck

	var messages []*domain.Message
	for rows.Next() {
		var msg domain.Message

		err := rows.Scan(&msg.ID, &msg.Event, &msg.Channel, &msg.GuestContact, &msg.Language,
			&msg.Payload, &msg.Status, &msg.Attempts, &msg.LastError, &msg.ScheduledAt,
			&msg.CreatedAt, &msg.UpdatedAt)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan notification")
		}

		messages = append(messages, &msg)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate notifications")
	}

	return messages, nil
}

// MarkSuccess transitions a row to the success terminal state.
func (r *PostgreSQLNotificationRepository) MarkSuccess(ctx context.Context, id uuid.UUID, attempts int) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE notification_outbox
			  SET status = $1, attempts = $2, last_error = NULL, updated_at = NOW()
			  WHERE id = $3`

	_, err := querier.ExecContext(ctx, query, outboxDomain.StatusSuccess, attempts, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to mark notification success")
	}

	return nil
}

// MarkRetry records a failed attempt and schedules the next one.
func (r *PostgreSQLNotificationRepository) MarkRetry(
	ctx context.Context,
	id uuid.UUID,
	attempts int,
	lastError string,
	nextScheduledAt time.Time,
) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE notification_outbox
			  SET attempts = $1, last_error = $2, scheduled_at = $3, updated_at = NOW()
			  WHERE id = $4`

	_, err := querier.ExecContext(ctx, query, attempts, lastError, nextScheduledAt, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to mark notification retry")
	}

	return nil
}

// MarkDeadLetter transitions a row to the failed terminal state.
func (r *PostgreSQLNotificationRepository) MarkDeadLetter(
	ctx context.Context,
	id uuid.UUID,
	attempts int,
	lastError string,
) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE notification_outbox
			  SET status = $1, attempts = $2, last_error = $3, updated_at = NOW()
			  WHERE id = $4`

	_, err := querier.ExecContext(ctx, query, outboxDomain.StatusFailed, attempts, lastError, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to mark notification dead letter")
	}

	return nil
}

// ListFailed retrieves dead-lettered rows ordered by most recent first.
func (r *PostgreSQLNotificationRepository) ListFailed(ctx context.Context, limit, offset int) ([]*domain.Message, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, event, channel, guest_contact, language, payload, status, attempts, last_error, scheduled_at, created_at, updated_at
			  FROM notification_outbox
			  WHERE status = $1
			  ORDER BY updated_at DESC
			  LIMIT $2 OFFSET $3`

	rows, err := querier.QueryContext(ctx, query, outboxDomain.StatusFailed, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list failed notifications")
	}
	defer rows.Close() //nolint:errcheck

	var messages []*domain.Message
	for rows.Next() {
		var msg domain.Message

		err := rows.Scan(&msg.ID, &msg.Event, &msg.Channel, &msg.GuestContact, &msg.Language,
			&msg.Payload, &msg.Status, &msg.Attempts, &msg.LastError, &msg.ScheduledAt,
			&msg.CreatedAt, &msg.UpdatedAt)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan notification")
		}

		messages = append(messages, &msg)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate notifications")
	}

	return messages, nil
}

// Requeue resets a dead-lettered row to pending with a fresh retry budget,
// due immediately. The status guard makes requeue a failed-only transition:
// a missing row maps to ErrNotFound, any other status to ErrConflict.
func (r *PostgreSQLNotificationRepository) Requeue(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE notification_outbox
			  SET status = $1, attempts = 0, last_error = NULL, scheduled_at = NOW(), updated_at = NOW()
			  WHERE id = $2 AND status = $3`

	result, err := querier.ExecContext(ctx, query, outboxDomain.StatusPending, id, outboxDomain.StatusFailed)
	if err != nil {
		return apperrors.Wrap(err, "failed to requeue notification")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to requeue notification")
	}
	if affected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return apperrors.ErrConflict
	}

	return nil
}
