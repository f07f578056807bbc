package domain

import "time"

// NotificationType classifies activity feed entries.
type NotificationType string

const (
	NotificationBookingCreated   NotificationType = "BOOKING_CREATED"
	NotificationBookingPickedUp  NotificationType = "BOOKING_PICKED_UP"
	NotificationBookingCompleted NotificationType = "BOOKING_COMPLETED"
	NotificationBusActivated     NotificationType = "BUS_ACTIVATED"
	NotificationBusDeactivated   NotificationType = "BUS_DEACTIVATED"
)

// Notification is one entry on a recipient's activity feed. The recipient is
// a client or owner uid; Data carries type-specific references such as the
// booking or bus involved.
type Notification struct {
	ID          string
	Type        NotificationType
	RecipientID string
	Title       string
	Message     string
	Data        map[string]interface{}
	CreatedAt   time.Time
}
