package postgres

import (
	"context"
	"database/sql"
	"errors"

	"transit/internal/domain"
	"transit/internal/repository"
)

// AvailabilityRepository is a PostgreSQL implementation of
// repository.AvailabilityRepository. One row per active bus; the row lock
// taken by GetByBusIDForUpdate is what serializes concurrent reservations.
type AvailabilityRepository struct {
	q Querier
}

// NewAvailabilityRepository creates a new PostgreSQL availability repository.
func NewAvailabilityRepository(db *sql.DB) *AvailabilityRepository {
	return &AvailabilityRepository{q: db}
}

// NewAvailabilityRepositoryWithTx creates an availability repository using a transaction.
func NewAvailabilityRepositoryWithTx(tx *sql.Tx) *AvailabilityRepository {
	return &AvailabilityRepository{q: tx}
}

const availabilityColumns = `bus_id, driver_id, driver_name, license_plate, capacity, type, owner_id, route_id, passengers_on_board, available_seats, activated_at`

// Create inserts the projection entry for a newly activated bus.
func (r *AvailabilityRepository) Create(ctx context.Context, entry *domain.AvailableBus) error {
	query := `
		INSERT INTO available_buses (bus_id, driver_id, driver_name, license_plate, capacity, type, owner_id, route_id, passengers_on_board, available_seats, activated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.q.ExecContext(ctx, query,
		entry.BusID,
		entry.DriverID,
		entry.DriverName,
		entry.LicensePlate,
		entry.Capacity,
		entry.Type,
		entry.OwnerID,
		entry.RouteID,
		entry.PassengersOnBoard,
		entry.AvailableSeats,
		entry.ActivatedAt,
	)
	return err
}

// GetByBusID retrieves the entry for a bus.
func (r *AvailabilityRepository) GetByBusID(ctx context.Context, busID string) (*domain.AvailableBus, error) {
	query := `SELECT ` + availabilityColumns + ` FROM available_buses WHERE bus_id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, busID))
}

// GetByBusIDForUpdate retrieves the entry for a bus, locking the row.
func (r *AvailabilityRepository) GetByBusIDForUpdate(ctx context.Context, busID string) (*domain.AvailableBus, error) {
	query := `SELECT ` + availabilityColumns + ` FROM available_buses WHERE bus_id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRowContext(ctx, query, busID))
}

// GetByRoute retrieves entries serving a route with at least one seat left.
func (r *AvailabilityRepository) GetByRoute(ctx context.Context, routeID string) ([]*domain.AvailableBus, error) {
	query := `SELECT ` + availabilityColumns + ` FROM available_buses WHERE route_id = $1 AND available_seats > 0 ORDER BY activated_at`
	rows, err := r.q.QueryContext(ctx, query, routeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// GetByOwner retrieves entries for buses registered by an owner.
func (r *AvailabilityRepository) GetByOwner(ctx context.Context, ownerID string) ([]*domain.AvailableBus, error) {
	query := `SELECT ` + availabilityColumns + ` FROM available_buses WHERE owner_id = $1 ORDER BY activated_at`
	rows, err := r.q.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// UpdateSeats sets the remaining seat count for a bus.
func (r *AvailabilityRepository) UpdateSeats(ctx context.Context, busID string, availableSeats int) error {
	query := `UPDATE available_buses SET available_seats = $1 WHERE bus_id = $2`
	return r.exec(ctx, query, availableSeats, busID)
}

// UpdatePassengers sets the on-board passenger count for a bus.
func (r *AvailabilityRepository) UpdatePassengers(ctx context.Context, busID string, passengersOnBoard int) error {
	query := `UPDATE available_buses SET passengers_on_board = $1 WHERE bus_id = $2`
	return r.exec(ctx, query, passengersOnBoard, busID)
}

// Delete removes the entry for a deactivated bus.
func (r *AvailabilityRepository) Delete(ctx context.Context, busID string) error {
	query := `DELETE FROM available_buses WHERE bus_id = $1`
	return r.exec(ctx, query, busID)
}

func (r *AvailabilityRepository) exec(ctx context.Context, query string, args ...any) error {
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

func (r *AvailabilityRepository) scanOne(row *sql.Row) (*domain.AvailableBus, error) {
	var entry domain.AvailableBus
	err := row.Scan(
		&entry.BusID,
		&entry.DriverID,
		&entry.DriverName,
		&entry.LicensePlate,
		&entry.Capacity,
		&entry.Type,
		&entry.OwnerID,
		&entry.RouteID,
		&entry.PassengersOnBoard,
		&entry.AvailableSeats,
		&entry.ActivatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (r *AvailabilityRepository) scanAll(rows *sql.Rows) ([]*domain.AvailableBus, error) {
	var entries []*domain.AvailableBus
	for rows.Next() {
		var entry domain.AvailableBus
		if err := rows.Scan(
			&entry.BusID,
			&entry.DriverID,
			&entry.DriverName,
			&entry.LicensePlate,
			&entry.Capacity,
			&entry.Type,
			&entry.OwnerID,
			&entry.RouteID,
			&entry.PassengersOnBoard,
			&entry.AvailableSeats,
			&entry.ActivatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}
