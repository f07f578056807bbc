package repository

import (
	"context"

	"transit/internal/domain"
)

// NotificationRepository defines the persistence operations for activity
// feed entries. The feed is append-only.
type NotificationRepository interface {
	// Create appends a new feed entry.
	Create(ctx context.Context, notification *domain.Notification) error

	// GetByRecipient retrieves a recipient's feed entries, newest first.
	GetByRecipient(ctx context.Context, recipientID string) ([]*domain.Notification, error)
}
