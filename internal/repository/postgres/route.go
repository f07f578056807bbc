package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"transit/internal/domain"
	"transit/internal/repository"
)

// RouteRepository is a PostgreSQL implementation of repository.RouteRepository.
type RouteRepository struct {
	q Querier
}

// NewRouteRepository creates a new PostgreSQL route repository.
func NewRouteRepository(db *sql.DB) *RouteRepository {
	return &RouteRepository{q: db}
}

// Create persists a new route.
func (r *RouteRepository) Create(ctx context.Context, route *domain.Route) error {
	query := `INSERT INTO routes (id, name, stops) VALUES ($1, $2, $3)`
	_, err := r.q.ExecContext(ctx, query, route.ID, route.Name, pq.Array(route.Stops))
	return err
}

// GetByID retrieves a route by ID.
func (r *RouteRepository) GetByID(ctx context.Context, id string) (*domain.Route, error) {
	query := `SELECT id, name, stops FROM routes WHERE id = $1`

	var route domain.Route
	err := r.q.QueryRowContext(ctx, query, id).Scan(&route.ID, &route.Name, pq.Array(&route.Stops))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &route, nil
}

// GetAll retrieves all routes ordered by name.
func (r *RouteRepository) GetAll(ctx context.Context) ([]*domain.Route, error) {
	query := `SELECT id, name, stops FROM routes ORDER BY name`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routes []*domain.Route
	for rows.Next() {
		var route domain.Route
		if err := rows.Scan(&route.ID, &route.Name, pq.Array(&route.Stops)); err != nil {
			return nil, err
		}
		routes = append(routes, &route)
	}
	return routes, rows.Err()
}
