package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"transit/internal/domain"
	"transit/internal/repository"
)

// NotificationService writes activity feed entries for owners and clients.
// Delivery is best-effort from the caller's point of view: feed writes happen
// after the owning transaction commits and never fail the operation.
type NotificationService struct {
	repo repository.NotificationRepository
}

// NewNotificationService creates a new NotificationService. A nil repository
// degrades to log-only delivery.
func NewNotificationService(repo repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// Feed returns the recipient's activity feed, newest first.
func (s *NotificationService) Feed(ctx context.Context, recipientID string) ([]*domain.Notification, error) {
	if recipientID == "" {
		return nil, ErrInvalidRecipientID
	}
	if s.repo == nil {
		return nil, nil
	}
	return s.repo.GetByRecipient(ctx, recipientID)
}

// NotifyBookingCreated tells the bus's owner that seats were booked.
func (s *NotificationService) NotifyBookingCreated(ctx context.Context, booking *domain.Booking, ownerID string) error {
	return s.send(ctx, &domain.Notification{
		Type:        domain.NotificationBookingCreated,
		RecipientID: ownerID,
		Title:       "New Booking",
		Message:     fmt.Sprintf("%d seat(s) booked on %s (%s)", booking.Seats, booking.LicensePlate, booking.RouteID),
		Data: map[string]interface{}{
			"booking_id": booking.ID,
			"bus_id":     booking.BusID,
			"seats":      booking.Seats,
		},
	})
}

// NotifyBookingPickedUp tells the client their ride has started.
func (s *NotificationService) NotifyBookingPickedUp(ctx context.Context, booking *domain.Booking) error {
	return s.send(ctx, &domain.Notification{
		Type:        domain.NotificationBookingPickedUp,
		RecipientID: booking.ClientID,
		Title:       "Picked Up",
		Message:     fmt.Sprintf("You are en route to %s", booking.Destination),
		Data: map[string]interface{}{
			"booking_id": booking.ID,
			"bus_id":     booking.BusID,
		},
	})
}

// NotifyBookingCompleted tells the client their trip is done.
func (s *NotificationService) NotifyBookingCompleted(ctx context.Context, booking *domain.Booking) error {
	return s.send(ctx, &domain.Notification{
		Type:        domain.NotificationBookingCompleted,
		RecipientID: booking.ClientID,
		Title:       "Trip Completed",
		Message:     fmt.Sprintf("You arrived at %s", booking.Destination),
		Data: map[string]interface{}{
			"booking_id": booking.ID,
		},
	})
}

// NotifyBusActivated tells the owner a driver put their bus in service.
func (s *NotificationService) NotifyBusActivated(ctx context.Context, entry *domain.AvailableBus) error {
	return s.send(ctx, &domain.Notification{
		Type:        domain.NotificationBusActivated,
		RecipientID: entry.OwnerID,
		Title:       "Bus Activated",
		Message:     fmt.Sprintf("%s is now serving route %s with %d seats", entry.LicensePlate, entry.RouteID, entry.AvailableSeats),
		Data: map[string]interface{}{
			"bus_id":   entry.BusID,
			"route_id": entry.RouteID,
			"driver":   entry.DriverName,
		},
	})
}

// NotifyBusDeactivated tells the owner a bus left service.
func (s *NotificationService) NotifyBusDeactivated(ctx context.Context, entry *domain.AvailableBus, resolvedBookings int) error {
	return s.send(ctx, &domain.Notification{
		Type:        domain.NotificationBusDeactivated,
		RecipientID: entry.OwnerID,
		Title:       "Bus Deactivated",
		Message:     fmt.Sprintf("%s left route %s (%d in-flight bookings resolved)", entry.LicensePlate, entry.RouteID, resolvedBookings),
		Data: map[string]interface{}{
			"bus_id":   entry.BusID,
			"route_id": entry.RouteID,
		},
	})
}

// send stamps identity on the entry and appends it to the recipient's feed.
func (s *NotificationService) send(ctx context.Context, n *domain.Notification) error {
	n.ID = uuid.New().String()
	n.CreatedAt = time.Now()

	log.Printf("[NOTIFICATION] type=%s recipient=%s title=%q message=%q", n.Type, n.RecipientID, n.Title, n.Message)

	if s.repo == nil {
		return nil
	}
	return s.repo.Create(ctx, n)
}
