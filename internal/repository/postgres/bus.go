package postgres

import (
	"context"
	"database/sql"
	"errors"

	"transit/internal/domain"
	"transit/internal/repository"
)

// BusRepository is a PostgreSQL implementation of repository.BusRepository.
type BusRepository struct {
	q Querier
}

// NewBusRepository creates a new PostgreSQL bus repository.
func NewBusRepository(db *sql.DB) *BusRepository {
	return &BusRepository{q: db}
}

// NewBusRepositoryWithTx creates a bus repository using a transaction.
func NewBusRepositoryWithTx(tx *sql.Tx) *BusRepository {
	return &BusRepository{q: tx}
}

const busColumns = `id, license_plate, capacity, type, company_id, owner_id, active, current_driver, current_route`

// Create registers a new bus.
func (r *BusRepository) Create(ctx context.Context, bus *domain.Bus) error {
	query := `
		INSERT INTO buses (id, license_plate, capacity, type, company_id, owner_id, active, current_driver, current_route)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	var currentDriver, currentRoute sql.NullString
	if bus.CurrentDriver != "" {
		currentDriver = sql.NullString{String: bus.CurrentDriver, Valid: true}
	}
	if bus.CurrentRoute != "" {
		currentRoute = sql.NullString{String: bus.CurrentRoute, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		bus.ID,
		bus.LicensePlate,
		bus.Capacity,
		bus.Type,
		bus.CompanyID,
		bus.OwnerID,
		bus.Active,
		currentDriver,
		currentRoute,
	)
	return err
}

// GetByID retrieves a bus by ID.
func (r *BusRepository) GetByID(ctx context.Context, id string) (*domain.Bus, error) {
	query := `SELECT ` + busColumns + ` FROM buses WHERE id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetByIDForUpdate retrieves a bus by ID, locking the row. The lock on the
// active flag is the serialization point of the activation protocol.
func (r *BusRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Bus, error) {
	query := `SELECT ` + busColumns + ` FROM buses WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetByOwner retrieves all buses registered by an owner.
func (r *BusRepository) GetByOwner(ctx context.Context, ownerID string) ([]*domain.Bus, error) {
	query := `SELECT ` + busColumns + ` FROM buses WHERE owner_id = $1 ORDER BY license_plate`
	rows, err := r.q.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// GetAll retrieves all buses.
func (r *BusRepository) GetAll(ctx context.Context) ([]*domain.Bus, error) {
	query := `SELECT ` + busColumns + ` FROM buses ORDER BY license_plate`
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// SetActive marks a bus as active and binds the driver and route.
func (r *BusRepository) SetActive(ctx context.Context, id, driverID, routeID string) error {
	query := `UPDATE buses SET active = TRUE, current_driver = $1, current_route = $2 WHERE id = $3`
	return r.exec(ctx, query, driverID, routeID, id)
}

// ClearActive marks a bus as inactive and unbinds driver and route.
func (r *BusRepository) ClearActive(ctx context.Context, id string) error {
	query := `UPDATE buses SET active = FALSE, current_driver = NULL, current_route = NULL WHERE id = $1`
	return r.exec(ctx, query, id)
}

func (r *BusRepository) exec(ctx context.Context, query string, args ...any) error {
	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *BusRepository) scanOne(row *sql.Row) (*domain.Bus, error) {
	var bus domain.Bus
	var currentDriver, currentRoute sql.NullString

	err := row.Scan(
		&bus.ID,
		&bus.LicensePlate,
		&bus.Capacity,
		&bus.Type,
		&bus.CompanyID,
		&bus.OwnerID,
		&bus.Active,
		&currentDriver,
		&currentRoute,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if currentDriver.Valid {
		bus.CurrentDriver = currentDriver.String
	}
	if currentRoute.Valid {
		bus.CurrentRoute = currentRoute.String
	}
	return &bus, nil
}

func (r *BusRepository) scanAll(rows *sql.Rows) ([]*domain.Bus, error) {
	var buses []*domain.Bus
	for rows.Next() {
		var bus domain.Bus
		var currentDriver, currentRoute sql.NullString
		if err := rows.Scan(
			&bus.ID,
			&bus.LicensePlate,
			&bus.Capacity,
			&bus.Type,
			&bus.CompanyID,
			&bus.OwnerID,
			&bus.Active,
			&currentDriver,
			&currentRoute,
		); err != nil {
			return nil, err
		}
		if currentDriver.Valid {
			bus.CurrentDriver = currentDriver.String
		}
		if currentRoute.Valid {
			bus.CurrentRoute = currentRoute.String
		}
		buses = append(buses, &bus)
	}
	return buses, rows.Err()
}
