package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"transit/internal/repository"
)

// Querier is an interface satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Ensure interfaces are satisfied.
var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)

	_ repository.TxManager = (*TxManager)(nil)
)

// maxTxAttempts bounds automatic retries of serialization failures before the
// conflict surfaces to the caller.
const maxTxAttempts = 3

// TxManager implements repository.TxManager over database/sql.
type TxManager struct {
	db *sql.DB
}

// NewTxManager creates a new TxManager.
func NewTxManager(db *sql.DB) *TxManager {
	return &TxManager{db: db}
}

// InTx runs fn inside a single database transaction. Serialization and
// deadlock failures are retried up to maxTxAttempts; any other error from fn
// rolls the transaction back and is returned unchanged.
func (m *TxManager) InTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	var err error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err = m.runOnce(ctx, fn)
		if err == nil || !isRetryable(err) {
			return err
		}
	}
	return repository.ErrConflict
}

func (m *TxManager) runOnce(ctx context.Context, fn func(tx repository.Tx) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(&storeTx{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// isRetryable reports whether err is a serialization or deadlock failure.
func isRetryable(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}
	return false
}

// storeTx adapts *sql.Tx to repository.Tx using transaction-scoped
// repositories.
type storeTx struct {
	tx *sql.Tx
}

func (t *storeTx) Buses() repository.BusRepository {
	return NewBusRepositoryWithTx(t.tx)
}

func (t *storeTx) Drivers() repository.DriverRepository {
	return NewDriverRepositoryWithTx(t.tx)
}

func (t *storeTx) Bookings() repository.BookingRepository {
	return NewBookingRepositoryWithTx(t.tx)
}

func (t *storeTx) Availability() repository.AvailabilityRepository {
	return NewAvailabilityRepositoryWithTx(t.tx)
}
