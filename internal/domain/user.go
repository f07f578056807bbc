package domain

import "time"

// Role identifies which profile store a user belongs to.
type Role string

const (
	RoleClient Role = "client"
	RoleDriver Role = "driver"
	RoleOwner  Role = "owner"
)

// Client represents a booking client, keyed by the external auth uid.
type Client struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
}

// Owner represents a bus-company owner, keyed by the external auth uid.
type Owner struct {
	ID        string
	Name      string
	Email     string
	CompanyID string
	CreatedAt time.Time
}

// Company represents a bus-owning company.
type Company struct {
	ID   string
	Name string
}
