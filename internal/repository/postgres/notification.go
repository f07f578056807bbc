package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"transit/internal/domain"
)

// NotificationRepository is a PostgreSQL implementation of
// repository.NotificationRepository.
type NotificationRepository struct {
	db *sql.DB
}

// NewNotificationRepository creates a new PostgreSQL notification repository.
func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// feedLimit caps how much history a single feed read returns.
const feedLimit = 100

// Create appends a new feed entry.
func (r *NotificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	data, err := json.Marshal(notification.Data)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO notifications (id, type, recipient_id, title, message, data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.db.ExecContext(ctx, query,
		notification.ID,
		notification.Type,
		notification.RecipientID,
		notification.Title,
		notification.Message,
		data,
		notification.CreatedAt,
	)
	return err
}

// GetByRecipient retrieves a recipient's feed entries, newest first.
func (r *NotificationRepository) GetByRecipient(ctx context.Context, recipientID string) ([]*domain.Notification, error) {
	query := `
		SELECT id, type, recipient_id, title, message, data, created_at
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, recipientID, feedLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		var notification domain.Notification
		var data []byte
		if err := rows.Scan(
			&notification.ID,
			&notification.Type,
			&notification.RecipientID,
			&notification.Title,
			&notification.Message,
			&data,
			&notification.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &notification.Data); err != nil {
				return nil, err
			}
		}
		notifications = append(notifications, &notification)
	}
	return notifications, rows.Err()
}
