package postgres

import (
	"context"
	"database/sql"
	"errors"

	"transit/internal/domain"
	"transit/internal/repository"
)

// DriverRepository is a PostgreSQL implementation of repository.DriverRepository.
type DriverRepository struct {
	q Querier
}

// NewDriverRepository creates a new PostgreSQL driver repository.
func NewDriverRepository(db *sql.DB) *DriverRepository {
	return &DriverRepository{q: db}
}

// NewDriverRepositoryWithTx creates a driver repository using a transaction.
func NewDriverRepositoryWithTx(tx *sql.Tx) *DriverRepository {
	return &DriverRepository{q: tx}
}

const driverColumns = `id, COALESCE(name, ''), COALESCE(email, ''), company_id, active, current_bus, current_route`

// Create adds a new driver.
func (r *DriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	query := `
		INSERT INTO drivers (id, name, email, company_id, active)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.q.ExecContext(ctx, query, driver.ID, driver.Name, driver.Email, driver.CompanyID, driver.Active)
	return err
}

// GetByID retrieves a driver by ID.
func (r *DriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetByIDForUpdate retrieves a driver by ID, locking the row.
func (r *DriverRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetByEmail retrieves a driver by email.
func (r *DriverRepository) GetByEmail(ctx context.Context, email string) (*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE email = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, email))
}

// GetByCompany retrieves all drivers of a company.
func (r *DriverRepository) GetByCompany(ctx context.Context, companyID string) ([]*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE company_id = $1 ORDER BY name`

	rows, err := r.q.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drivers []*domain.Driver
	for rows.Next() {
		driver, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, driver)
	}
	return drivers, rows.Err()
}

// SetActive marks a driver as active and binds the bus and route.
func (r *DriverRepository) SetActive(ctx context.Context, id, busID, routeID string) error {
	query := `UPDATE drivers SET active = TRUE, current_bus = $1, current_route = $2 WHERE id = $3`
	return r.exec(ctx, query, busID, routeID, id)
}

// ClearActive marks a driver as inactive and unbinds bus and route.
func (r *DriverRepository) ClearActive(ctx context.Context, id string) error {
	query := `UPDATE drivers SET active = FALSE, current_bus = NULL, current_route = NULL WHERE id = $1`
	return r.exec(ctx, query, id)
}

func (r *DriverRepository) exec(ctx context.Context, query string, args ...any) error {
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

func (r *DriverRepository) scanOne(row *sql.Row) (*domain.Driver, error) {
	var driver domain.Driver
	var currentBus, currentRoute sql.NullString

	err := row.Scan(
		&driver.ID,
		&driver.Name,
		&driver.Email,
		&driver.CompanyID,
		&driver.Active,
		&currentBus,
		&currentRoute,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if currentBus.Valid {
		driver.CurrentBus = currentBus.String
	}
	if currentRoute.Valid {
		driver.CurrentRoute = currentRoute.String
	}
	return &driver, nil
}

func (r *DriverRepository) scanRow(rows *sql.Rows) (*domain.Driver, error) {
	var driver domain.Driver
	var currentBus, currentRoute sql.NullString

	if err := rows.Scan(
		&driver.ID,
		&driver.Name,
		&driver.Email,
		&driver.CompanyID,
		&driver.Active,
		&currentBus,
		&currentRoute,
	); err != nil {
		return nil, err
	}

	if currentBus.Valid {
		driver.CurrentBus = currentBus.String
	}
	if currentRoute.Valid {
		driver.CurrentRoute = currentRoute.String
	}
	return &driver, nil
}
