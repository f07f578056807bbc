package redis

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"
)

// AvailabilityEventType classifies availability feed events.
type AvailabilityEventType string

const (
	// EventEntryUpdated signals seat or passenger counter changes on a bus,
	// including the initial entry created at activation.
	EventEntryUpdated AvailabilityEventType = "updated"

	// EventEntryRemoved signals that the bus left the route (deactivation).
	EventEntryRemoved AvailabilityEventType = "removed"
)

// AvailabilityEvent is one change on a route's availability feed.
type AvailabilityEvent struct {
	Type              AvailabilityEventType `json:"type"`
	BusID             string                `json:"bus_id"`
	RouteID           string                `json:"route_id"`
	AvailableSeats    int                   `json:"available_seats"`
	PassengersOnBoard int                   `json:"passengers_on_board"`
}

// StreamStore publishes and subscribes to availability events over Redis
// pub/sub, one channel per route.
type StreamStore struct {
	client *redis.Client
}

// NewStreamStore creates a new StreamStore.
func NewStreamStore(client *redis.Client) *StreamStore {
	return &StreamStore{client: client}
}

func routeChannel(routeID string) string {
	return "availability:route:" + routeID
}

// Publish sends an availability event to the route's channel.
func (s *StreamStore) Publish(ctx context.Context, event AvailabilityEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return s.client.Publish(ctx, routeChannel(event.RouteID), data).Err()
}

// Subscribe opens a live feed of availability events for one route. The
// returned handle is owned by the caller and must be closed when the
// consuming view goes away; a leaked subscription keeps delivering stale
// updates.
func (s *StreamStore) Subscribe(ctx context.Context, routeID string) (AvailabilitySubscription, error) {
	pubsub := s.client.Subscribe(ctx, routeChannel(routeID))

	// Force the subscription onto the wire before handing out the handle.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	sub := &subscription{
		pubsub: pubsub,
		events: make(chan AvailabilityEvent, 16),
		done:   make(chan struct{}),
	}
	go sub.pump(pubsub.Channel())
	return sub, nil
}

// AvailabilitySubscription is an explicitly owned handle on a route's
// availability feed. Events() is closed after Close().
type AvailabilitySubscription interface {
	Events() <-chan AvailabilityEvent
	Close() error
}

type subscription struct {
	pubsub    *redis.PubSub
	events    chan AvailabilityEvent
	done      chan struct{}
	closeOnce sync.Once
}

func (s *subscription) Events() <-chan AvailabilityEvent {
	return s.events
}

// Close tears the feed down. Safe to call more than once.
func (s *subscription) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.pubsub.Close()
	})
	return err
}

// pump forwards messages until the feed ends from either side: the pubsub
// channel closing, or Close abandoning a consumer that stopped draining.
// A consumer that leaves with events still buffered would otherwise park the
// send forever.
func (s *subscription) pump(msgs <-chan *redis.Message) {
	defer close(s.events)
	for msg := range msgs {
		var event AvailabilityEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			continue
		}
		select {
		case s.events <- event:
		case <-s.done:
			return
		}
	}
}
