package repository

import "context"

// Tx exposes transaction-scoped repositories. All reads within one Tx observe
// a single consistent snapshot and all writes commit or roll back together.
type Tx interface {
	Buses() BusRepository
	Drivers() DriverRepository
	Bookings() BookingRepository
	Availability() AvailabilityRepository
}

// TxManager runs a function inside one atomic storage transaction. The
// function's writes are applied all-or-nothing; on a detected write conflict
// the transaction is retried before the error surfaces to the caller as
// ErrConflict. Returning a non-nil error from fn rolls everything back.
type TxManager interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
}
