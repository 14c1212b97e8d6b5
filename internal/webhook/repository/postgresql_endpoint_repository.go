package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/reservehq/reserve-outbox/internal/database"
	apperrors "github.com/reservehq/reserve-outbox/internal/errors"
	"github.com/reservehq/reserve-outbox/internal/webhook/domain"
)

// PostgreSQLEndpointRepository handles webhook endpoint persistence for
// PostgreSQL.
type PostgreSQLEndpointRepository struct {
	db *sql.DB
}

// NewPostgreSQLEndpointRepository creates a new PostgreSQLEndpointRepository
func NewPostgreSQLEndpointRepository(db *sql.DB) *PostgreSQLEndpointRepository {
	return &PostgreSQLEndpointRepository{
		db: db,
	}
}

// Create inserts a new webhook endpoint.
func (r *PostgreSQLEndpointRepository) Create(ctx context.Context, endpoint *domain.Endpoint) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO webhook_endpoints (id, url, description, is_active, created_at)
			  VALUES ($1, $2, $3, $4, NOW())`

	_, err := querier.ExecContext(ctx, query, endpoint.ID, endpoint.URL, endpoint.Description, endpoint.IsActive)
	if err != nil {
		return apperrors.Wrap(err, "failed to create webhook endpoint")
	}

	return nil
}

// GetByID retrieves one webhook endpoint.
func (r *PostgreSQLEndpointRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Endpoint, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, url, description, is_active, created_at
			  FROM webhook_endpoints
			  WHERE id = $1`

	var endpoint domain.Endpoint
	err := querier.QueryRowContext(ctx, query, id).Scan(&endpoint.ID, &endpoint.URL,
		&endpoint.Description, &endpoint.IsActive, &endpoint.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get webhook endpoint by id")
	}

	return &endpoint, nil
}

// List retrieves endpoints ordered by creation time.
func (r *PostgreSQLEndpointRepository) List(ctx context.Context, limit, offset int) ([]*domain.Endpoint, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, url, description, is_active, created_at
			  FROM webhook_endpoints
			  ORDER BY created_at ASC
			  LIMIT $1 OFFSET $2`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list webhook endpoints")
	}
	defer rows.Close() //nolint:errcheck

	var endpoints []*domain.Endpoint
	for rows.Next() {
		var endpoint domain.Endpoint

		err := rows.Scan(&endpoint.ID, &endpoint.URL, &endpoint.Description,
			&endpoint.IsActive, &endpoint.CreatedAt)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan webhook endpoint")
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
func (r *PostgreSQLEndpointRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE webhook_endpoints
			  SET is_active = FALSE
			  WHERE id = $1`

	result, err := querier.ExecContext(ctx, query, id)
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
