package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"transit/internal/domain"
	"transit/internal/repository"
)

// BookingRepository is a PostgreSQL implementation of repository.BookingRepository.
type BookingRepository struct {
	q Querier
}

// NewBookingRepository creates a new PostgreSQL booking repository.
func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{q: db}
}

// NewBookingRepositoryWithTx creates a booking repository using a transaction.
func NewBookingRepositoryWithTx(tx *sql.Tx) *BookingRepository {
	return &BookingRepository{q: tx}
}

const bookingColumns = `id, client_id, client_name, client_email, driver_id, driver_name, bus_id, license_plate, route_id, departure, destination, seats, status, created_at, pickup_time, dropoff_time, updated_at`

// Create appends a new booking to the ledger.
func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	query := `
		INSERT INTO bookings (id, client_id, client_name, client_email, driver_id, driver_name, bus_id, license_plate, route_id, departure, destination, seats, status, created_at, pickup_time, dropoff_time, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := r.q.ExecContext(ctx, query,
		booking.ID,
		booking.ClientID,
		booking.ClientName,
		booking.ClientEmail,
		booking.DriverID,
		booking.DriverName,
		booking.BusID,
		booking.LicensePlate,
		booking.RouteID,
		booking.Departure,
		booking.Destination,
		booking.Seats,
		booking.Status,
		booking.CreatedAt,
		nullTime(booking.PickupTime),
		nullTime(booking.DropoffTime),
		booking.UpdatedAt,
	)
	return err
}

// GetByID retrieves a booking by ID.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetByIDForUpdate retrieves a booking by ID, locking the row so concurrent
// lifecycle transitions on the same booking serialize.
func (r *BookingRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetByClient retrieves all bookings created by a client, newest first.
func (r *BookingRepository) GetByClient(ctx context.Context, clientID string) ([]*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE client_id = $1 ORDER BY created_at DESC`
	rows, err := r.q.QueryContext(ctx, query, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// GetActiveByBus retrieves the non-terminal bookings bound to a bus. This is
// the driver's live manifest: everything still waiting for pickup or on board.
func (r *BookingRepository) GetActiveByBus(ctx context.Context, busID string) ([]*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE bus_id = $1 AND status IN ($2, $3) ORDER BY created_at`
	rows, err := r.q.QueryContext(ctx, query, busID, domain.BookingStatusWaitingPickup, domain.BookingStatusEnRoute)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// Update persists lifecycle changes to an existing booking.
func (r *BookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	query := `
		UPDATE bookings
		SET status = $1, pickup_time = $2, dropoff_time = $3, updated_at = $4
		WHERE id = $5
	`

	result, err := r.q.ExecContext(ctx, query,
		booking.Status,
		nullTime(booking.PickupTime),
		nullTime(booking.DropoffTime),
		booking.UpdatedAt,
		booking.ID,
	)
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

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

func (r *BookingRepository) scanOne(row *sql.Row) (*domain.Booking, error) {
	var booking domain.Booking
	var pickupTime, dropoffTime sql.NullTime

	err := row.Scan(
		&booking.ID,
		&booking.ClientID,
		&booking.ClientName,
		&booking.ClientEmail,
		&booking.DriverID,
		&booking.DriverName,
		&booking.BusID,
		&booking.LicensePlate,
		&booking.RouteID,
		&booking.Departure,
		&booking.Destination,
		&booking.Seats,
		&booking.Status,
		&booking.CreatedAt,
		&pickupTime,
		&dropoffTime,
		&booking.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if pickupTime.Valid {
		booking.PickupTime = pickupTime.Time
	}
	if dropoffTime.Valid {
		booking.DropoffTime = dropoffTime.Time
	}
	return &booking, nil
}

func (r *BookingRepository) scanAll(rows *sql.Rows) ([]*domain.Booking, error) {
	var bookings []*domain.Booking
	for rows.Next() {
		var booking domain.Booking
		var pickupTime, dropoffTime sql.NullTime
		if err := rows.Scan(
			&booking.ID,
			&booking.ClientID,
			&booking.ClientName,
			&booking.ClientEmail,
			&booking.DriverID,
			&booking.DriverName,
			&booking.BusID,
			&booking.LicensePlate,
			&booking.RouteID,
			&booking.Departure,
			&booking.Destination,
			&booking.Seats,
			&booking.Status,
			&booking.CreatedAt,
			&pickupTime,
			&dropoffTime,
			&booking.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if pickupTime.Valid {
			booking.PickupTime = pickupTime.Time
		}
		if dropoffTime.Valid {
			booking.DropoffTime = dropoffTime.Time
		}
		bookings = append(bookings, &booking)
	}
	return bookings, rows.Err()
}
