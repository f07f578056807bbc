package domain

import "time"

// BookingStatus represents the current status of a booking.
type BookingStatus string

const (
	BookingStatusWaitingPickup BookingStatus = "WAITING_FOR_PICKUP"
	BookingStatusEnRoute       BookingStatus = "EN_ROUTE"
	BookingStatusCompleted     BookingStatus = "COMPLETED"
	// BookingStatusCancelled is reached only when a driver deactivates a bus
	// that still has bookings waiting for pickup.
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// Terminal reports whether the status admits no further transitions.
func (s BookingStatus) Terminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

// Booking represents a client's seat reservation against one bus instance.
// Bookings are a historical ledger: created by Reserve, mutated only by the
// lifecycle transitions, never deleted.
type Booking struct {
	ID           string
	ClientID     string
	ClientName   string
	ClientEmail  string
	DriverID     string
	DriverName   string
	BusID        string
	LicensePlate string
	RouteID      string
	Departure    string
	Destination  string
	Seats        int
	Status       BookingStatus
	CreatedAt    time.Time
	PickupTime   time.Time
	DropoffTime  time.Time
	UpdatedAt    time.Time
}
