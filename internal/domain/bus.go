package domain

import "time"

// BusType represents the category of a bus.
type BusType string

const (
	BusTypeStandard BusType = "STANDARD"
	BusTypeMinibus  BusType = "MINIBUS"
	BusTypeCoach    BusType = "COACH"
)

// Bus represents a fleet vehicle. Capacity is fixed at registration.
// Active, CurrentDriver and CurrentRoute change only through the driver
// activation protocol.
type Bus struct {
	ID            string
	LicensePlate  string
	Capacity      int
	Type          BusType
	CompanyID     string
	OwnerID       string
	Active        bool
	CurrentDriver string
	CurrentRoute  string
}

// AvailableBus is the live availability projection for an active bus.
// Exactly one entry exists per active bus; it is created on activation and
// deleted on deactivation.
//
// AvailableSeats and PassengersOnBoard are deliberately independent counters:
// a seat is committed at booking time (AvailableSeats decremented), while
// physical boarding is tracked later through pickup/dropoff
// (PassengersOnBoard). Boarding never frees or re-reserves a seat.
type AvailableBus struct {
	BusID             string
	DriverID          string
	DriverName        string
	LicensePlate      string
	Capacity          int
	Type              BusType
	OwnerID           string
	RouteID           string
	PassengersOnBoard int
	AvailableSeats    int
	ActivatedAt       time.Time
}
