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

// MySQLNotificationRepository handles notification outbox persistence for MySQL.
type MySQLNotificationRepository struct {
	db *sql.DB
}

// NewMySQLNotificationRepository creates a new MySQLNotificationRepository
func NewMySQLNotificationRepository(db *sql.DB) *MySQLNotificationRepository {
	return &MySQLNotificationRepository{
		db: db,
	}
}

// Create inserts a new notification outbox row.
func (r *MySQLNotificationRepository) Create(ctx context.Context, msg *domain.Message) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO notification_outbox (id, event, channel, guest_contact, language, payload, status, attempts, last_error, scheduled_at, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())`

	// Convert UUID to bytes for MySQL BINARY(16)
	idBytes, err := msg.ID.MarshalBinary()
	if err != nil {
		return err
	}

	_, err = querier.ExecContext(ctx, query, idBytes, msg.Event, msg.Channel, msg.GuestContact,
		msg.Language, msg.Payload, msg.Status, msg.Attempts, msg.LastError, msg.ScheduledAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create notification")
	}

	return nil
}

// GetByID retrieves one notification outbox row.
func (r *MySQLNotificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, event, channel, guest_contact, language, payload, status, attempts, last_error, scheduled_at, created_at, updated_at
			  FROM notification_outbox
			  WHERE id = ?`

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, err
	}

	var msg domain.Message
	var scannedID []byte
	err = querier.QueryRowContext(ctx, query, idBytes).Scan(&scannedID, &msg.Event, &msg.Channel,
		&msg.GuestContact, &msg.Language, &msg.Payload, &msg.Status, &msg.Attempts,
		&msg.LastError, &msg.ScheduledAt, &msg.CreatedAt, &msg.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get notification by id")
	}

	if err := msg.ID.UnmarshalBinary(scannedID); err != nil {
		return nil, err
	}

	return &msg, nil
}

// ClaimBatch retrieves due pending rows locked for the current transaction.
func (r *MySQLNotificationRepository) ClaimBatch(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]*domain.Message, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, event, channel, guest_contact, language, payload, status, attempts, last_error, scheduled_at, created_at, updated_at
			  FROM notification_outbox
			  WHERE status = ? AND scheduled_at <= ?
			  ORDER BY scheduled_at ASC, created_at ASC
			  LIMIT ?
			  FOR UPDATE SKIP LOCKED`

	rows, err := querier.QueryContext(ctx, query, outboxDomain.StatusPending, now, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to claim notifications")
	}
	defer rows.Close() //nolint:errcheck

	var messages []*domain.Message
	for rows.Next() {
		var msg domain.Message
		var idBytes []byte

		err := rows.Scan(&idBytes, &msg.Event, &msg.Channel, &msg.GuestContact, &msg.Language,
			&msg.Payload, &msg.Status, &msg.Attempts, &msg.LastError, &msg.ScheduledAt,
			&msg.CreatedAt, &msg.UpdatedAt)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan notification")
		}

		// Convert bytes back to UUID
		if err := msg.ID.UnmarshalBinary(idBytes); err != nil {
			return nil, err
		}

		messages = append(messages, &msg)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate notifications")
	}

	return messages, nil
}

// MarkSuccess transitions a row to the success terminal state.
func (r *MySQLNotificationRepository) MarkSuccess(ctx context.Context, id uuid.UUID, attempts int) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE notification_outbox
			  SET status = ?, attempts = ?, last_error = NULL, updated_at = NOW()
			  WHERE id = ?`

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return err
	}

	_, err = querier.ExecContext(ctx, query, outboxDomain.StatusSuccess, attempts, idBytes)
	if err != nil {
		return apperrors.Wrap(err, "failed to mark notification success")
	}

	return nil
}

// MarkRetry records a failed attempt and schedules the next one.
func (r *MySQLNotificationRepository) MarkRetry(
	ctx context.Context,
	id uuid.UUID,
	attempts int,
	lastError string,
	nextScheduledAt time.Time,
) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE notification_outbox
			  SET attempts = ?, last_error = ?, scheduled_at = ?, updated_at = NOW()
			  WHERE id = ?`

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return err
	}

	_, err = querier.ExecContext(ctx, query, attempts, lastError, nextScheduledAt, idBytes)
	if err != nil {
		return apperrors.Wrap(err, "failed to mark notification retry")
	}

	return nil
}

// MarkDeadLetter transitions a row to the failed terminal state.
func (r *MySQLNotificationRepository) MarkDeadLetter(
	ctx context.Context,
	id uuid.UUID,
	attempts int,
	lastError string,
) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE notification_outbox
			  SET status = ?, attempts = ?, last_error = ?, updated_at = NOW()
			  WHERE id = ?`

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return err
	}

	_, err = querier.ExecContext(ctx, query, outboxDomain.StatusFailed, attempts, lastError, idBytes)
	if err != nil {
		return apperrors.Wrap(err, "failed to mark notification dead letter")
	}

	return nil
}

// ListFailed retrieves dead-lettered rows ordered by most recent first.
func (r *MySQLNotificationRepository) ListFailed(ctx context.Context, limit, offset int) ([]*domain.Message, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, event, channel, guest_contact, language, payload, status, attempts, last_error, scheduled_at, created_at, updated_at
			  FROM notification_outbox
			  WHERE status = ?
			  ORDER BY updated_at DESC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, outboxDomain.StatusFailed, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list failed notifications")
	}
	defer rows.Close() //nolint:errcheck

	var messages []*domain.Message
	for rows.Next() {
		var msg domain.Message
		var idBytes []byte

		err := rows.Scan(&idBytes, &msg.Event, &msg.Channel, &msg.GuestContact, &msg.Language,
			&msg.Payload, &msg.Status, &msg.Attempts, &msg.LastError, &msg.ScheduledAt,
			&msg.CreatedAt, &msg.UpdatedAt)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan notification")
		}

		if err := msg.ID.UnmarshalBinary(idBytes); err != nil {
			return nil, err
		}

		messages = append(messages, &msg)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate notifications")
	}

	return messages, nil
}

// Requeue resets a dead-lettered row to pending with a fresh retry budget,
// due immediately. The status guard makes requeue a failed-only transition.
func (r *MySQLNotificationRepository) Requeue(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE notification_outbox
			  SET status = ?, attempts = 0, last_error = NULL, scheduled_at = NOW(), updated_at = NOW()
			  WHERE id = ? AND status = ?`

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return err
	}

	result, err := querier.ExecContext(ctx, query, outboxDomain.StatusPending, idBytes, outboxDomain.StatusFailed)
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
