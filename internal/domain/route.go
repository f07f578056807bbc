package domain

// Route represents a named route with an ordered list of stops.
// Routes are immutable reference data: created once by owner tooling,
// read by clients when choosing a journey.
type Route struct {
	ID    string
	Name  string
	Stops []string
}
