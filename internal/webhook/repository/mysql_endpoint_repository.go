package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/reservehq/reserve-outbox/internal/database"
	apperrors "github.com/reservehq/reserve-outbox/internal/errors"
	"github.com/reservehq/reserve-outbox/internal/webhook/domain"
)

// MySQLEndpointRepository handles webhook endpoint persistence for MySQL.
type MySQLEndpointRepository struct {
	db *sql.DB
}

// NewMySQLEndpointRepository creates a new MySQLEndpointRepository
func NewMySQLEndpointRepository(db *sql.DB) *MySQLEndpointRepository {
	return &MySQLEndpointRepository{
		db: db,
	}
}

// Create inserts a new webhook endpoint.
func (r *MySQLEndpointRepository) Create(ctx context.Context, endpoint *domain.Endpoint) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO webhook_endpoints (id, url, description, is_active, created_at)
			  VALUES (?, ?, ?, ?, NOW())`

	// Convert UUID to bytes for MySQL BINARY(16)
	idBytes, err := endpoint.ID.MarshalBinary()
	if err != nil {
		return err
	}

	_, err = querier.ExecContext(ctx, query, idBytes, endpoint.URL, endpoint.Description, endpoint.IsActive)
	if err != nil {
		return apperrors.Wrap(err, "failed to create webhook endpoint")
	}

	return nil
}

// GetByID retrieves one webhook endpoint.
func (r *MySQLEndpointRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Endpoint, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, url, description, is_active, created_at
			  FROM webhook_endpoints
			  WHERE id = ?`

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, err
	}

	var endpoint domain.Endpoint
	var scannedID []byte
	err = querier.QueryRowContext(ctx, query, idBytes).Scan(&scannedID, &endpoint.URL,
		&endpoint.Description, &endpoint.IsActive, &endpoint.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get webhook endpoint by id")
	}

	if err := endpoint.ID.UnmarshalBinary(scannedID); err != nil {
		return nil, err
	}

	return &endpoint, nil
}

// List retrieves endpoints ordered by creation time.
func (r *MySQLEndpointRepository) List(ctx context.Context, limit, offset int) ([]*domain.Endpoint, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, url, description, is_active, created_at
			  FROM webhook_endpoints
			  ORDER BY created_at ASC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list webhook endpoints")
	}
	defer rows.Close() //nolint:errcheck

	var endpoints []*domain.Endpoint
	for rows.Next() {
		var endpoint domain.Endpoint
		var idBytes []byte

		err := rows.Scan(&idBytes, &endpoint.URL, &endpoint.Description,
			&endpoint.IsActive, &endpoint.CreatedAt)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan webhook endpoint")
		}

		if err := endpoint.ID.UnmarshalBinary(idBytes); err != nil {
			return nil, err
		}

		endpoints = append(endpoints, &endpoint)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate webhook endpoints")
	}

	return endpoints, nil
}

// Deactivate marks an endpoint inactive. Pending deliveries to an inactive
// endpoint dead-letter on their next attempt.
func (r *MySQLEndpointRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE webhook_endpoints
			  SET is_active = FALSE
			  WHERE id = ?`

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return err
	}

	result, err := querier.ExecContext(ctx, query, idBytes)
	if err != nil {
		return apperrors.Wrap(err, "failed to deactivate webhook endpoint")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to deactivate webhook endpoint")
	}
	if affected == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}
