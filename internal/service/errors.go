package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSeatCount is returned when a reservation asks for fewer than one seat.
	ErrInvalidSeatCount = errors.New("seat count must be at least 1")

	// ErrInvalidBusID is returned when bus ID is empty.
	ErrInvalidBusID = errors.New("invalid bus id")

	// ErrInvalidBookingID is returned when booking ID is empty.
	ErrInvalidBookingID = errors.New("invalid booking id")

	// ErrInvalidClientID is returned when client ID is empty.
	ErrInvalidClientID = errors.New("invalid client id")

	// ErrInvalidDriverID is returned when driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidRouteID is returned when route ID is empty.
	ErrInvalidRouteID = errors.New("invalid route id")

	// ErrInvalidRecipientID is returned when a feed read names no recipient.
	ErrInvalidRecipientID = errors.New("invalid recipient id")

	// ErrInvalidTransition is returned when a booking is not in the status the
	// requested lifecycle transition expects.
	ErrInvalidTransition = errors.New("booking not in expected status")

	// ErrBusAlreadyActive is returned when activating a bus that is already
	// bound to a driver.
	ErrBusAlreadyActive = errors.New("bus already active")

	// ErrDriverAlreadyActive is returned when an active driver tries to
	// activate another bus.
	ErrDriverAlreadyActive = errors.New("driver already active")

	// ErrDriverNotActive is returned when deactivating a driver who has no
	// active bus.
	ErrDriverNotActive = errors.New("driver not active")

	// ErrBusNotOwned is returned when a driver tries to activate a bus that
	// belongs to a different company.
	ErrBusNotOwned = errors.New("bus not owned by driver's company")

	// ErrActivationInProgress is returned when another activation attempt
	// currently holds the bus lock.
	ErrActivationInProgress = errors.New("activation already in progress for this bus")
)

// InsufficientSeatsError is returned when a reservation asks for more seats
// than the bus has left at transaction time. Available carries the remaining
// count so the caller can offer a reduced request.
type InsufficientSeatsError struct {
	Available int
}

func (e *InsufficientSeatsError) Error() string {
	return fmt.Sprintf("insufficient seats: only %d available", e.Available)
}
