package domain

// Driver represents a driver in the system. Active, CurrentBus and
// CurrentRoute mirror the bus-side activation fields and change only through
// the activation protocol.
type Driver struct {
	ID           string
	Name         string
	Email        string
	CompanyID    string
	Active       bool
	CurrentBus   string
	CurrentRoute string
}
