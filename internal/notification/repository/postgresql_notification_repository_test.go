package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/reservehq/reserve-outbox/internal/errors"
	"github.com/reservehq/reserve-outbox/internal/notification/domain"
	outboxDomain "github.com/reservehq/reserve-outbox/internal/outbox/domain"
)

var notificationColumns = []string{
	"id", "event", "channel", "guest_contact", "language", "payload",
	"status", "attempts", "last_error", "scheduled_at", "created_at", "updated_at",
}

func TestPostgreSQLNotificationRepository_ClaimBatch(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	repo := NewPostgreSQLNotificationRepository(db)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	id := uuid.Must(uuid.NewV7())
	payload, _ := json.Marshal(map[string]any{"variables": map[string]any{"guest_name": "Ada"}})

	mock.ExpectQuery(`SELECT (.+) FROM notification_outbox\s+WHERE status = \$1 AND scheduled_at <= \$2(.+)FOR UPDATE SKIP LOCKED`).
		WithArgs(outboxDomain.StatusPending, now, 25).
		WillReturnRows(sqlmock.NewRows(notificationColumns).
			AddRow(id.String(), "reservation.created", "email", "ct", "en", payload,
				"pending", 0, nil, now.Add(-time.Minute), now.Add(-time.Minute), now.Add(-time.Minute)))

	messages, err := repo.ClaimBatch(context.Background(), now, 25)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, id, messages[0].ID)
	assert.Equal(t, domain.ChannelEmail, messages[0].Channel)
	assert.Equal(t, outboxDomain.StatusPending, messages[0].Status)
	assert.Nil(t, messages[0].LastError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLNotificationRepository_MarkSuccess(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	repo := NewPostgreSQLNotificationRepository(db)
	id := uuid.Must(uuid.NewV7())

	mock.ExpectExec(`UPDATE notification_outbox\s+SET status = \$1, attempts = \$2, last_error = NULL`).
		WithArgs(outboxDomain.StatusSuccess, 1, id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.MarkSuccess(context.Background(), id, 1)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLNotificationRepository_MarkRetry(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	repo := NewPostgreSQLNotificationRepository(db)
	id := uuid.Must(uuid.NewV7())
	next := time.Date(2026, 3, 1, 12, 2, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE notification_outbox\s+SET attempts = \$1, last_error = \$2, scheduled_at = \$3`).
		WithArgs(2, "smtp down", next, id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.MarkRetry(context.Background(), id, 2, "smtp down", next)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLNotificationRepository_MarkDeadLetter(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	repo := NewPostgreSQLNotificationRepository(db)
	id := uuid.Must(uuid.NewV7())

	mock.ExpectExec(`UPDATE notification_outbox\s+SET status = \$1, attempts = \$2, last_error = \$3`).
		WithArgs(outboxDomain.StatusFailed, 5, "smtp down", id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.MarkDeadLetter(context.Background(), id, 5, "smtp down")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLNotificationRepository_Requeue(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	repo := NewPostgreSQLNotificationRepository(db)
	id := uuid.Must(uuid.NewV7())

	mock.ExpectExec(`UPDATE notification_outbox\s+SET status = \$1, attempts = 0, last_error = NULL`).
		WithArgs(outboxDomain.StatusPending, id, outboxDomain.StatusFailed).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Requeue(context.Background(), id)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLNotificationRepository_RequeueNotFailed(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	repo := NewPostgreSQLNotificationRepository(db)
	id := uuid.Must(uuid.NewV7())
	now := time.Now()

	mock.ExpectExec(`UPDATE notification_outbox`).
		WithArgs(outboxDomain.StatusPending, id, outboxDomain.StatusFailed).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT (.+) FROM notification_outbox\s+WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(notificationColumns).
			AddRow(id.String(), "reservation.created", "email", "ct", "en", []byte(`{}`),
				"pending", 0, nil, now, now, now))

	err = repo.Requeue(context.Background(), id)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLNotificationRepository_RequeueMissing(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	repo := NewPostgreSQLNotificationRepository(db)
	id := uuid.Must(uuid.NewV7())

	mock.ExpectExec(`UPDATE notification_outbox`).
		WithArgs(outboxDomain.StatusPending, id, outboxDomain.StatusFailed).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT (.+) FROM notification_outbox\s+WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(notificationColumns))

	err = repo.Requeue(context.Background(), id)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLNotificationRepository_ListFailed(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	repo := NewPostgreSQLNotificationRepository(db)
	id := uuid.Must(uuid.NewV7())
	now := time.Now()
	lastError := "smtp down"

	mock.ExpectQuery(`SELECT (.+) FROM notification_outbox\s+WHERE status = \$1\s+ORDER BY updated_at DESC`).
		WithArgs(outboxDomain.StatusFailed, 50, 0).
		WillReturnRows(sqlmock.NewRows(notificationColumns).
			AddRow(id.String(), "reservation.cancelled", "sms", "ct", "es", []byte(`{}`),
				"failed", 5, lastError, now, now, now))

	messages, err := repo.ListFailed(context.Background(), 50, 0)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, outboxDomain.StatusFailed, messages[0].Status)
	require.NotNil(t, messages[0].LastError)
	assert.Equal(t, lastError, *messages[0].LastError)
	assert.NoError(t, mock.ExpectationsWereMet())
}
