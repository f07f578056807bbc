package redis

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func makeMessage(t *testing.T, event AvailabilityEvent) *redis.Message {
	t.Helper()
	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return &redis.Message{Payload: string(data)}
}

func TestPump_ExitsWhenConsumerLeaves(t *testing.T) {
	t.Parallel()

	// A consumer that stops draining leaves the pump parked on a full events
	// channel; closing the subscription must still let it exit.
	msgs := make(chan *redis.Message)
	sub := &subscription{
		events: make(chan AvailabilityEvent, 1),
		done:   make(chan struct{}),
	}

	finished := make(chan struct{})
	go func() {
		sub.pump(msgs)
		close(finished)
	}()

	// First message fills the buffer, second parks the pump on the send.
	msgs <- makeMessage(t, AvailabilityEvent{Type: EventEntryUpdated, BusID: "bus-1", RouteID: "route-1"})
	msgs <- makeMessage(t, AvailabilityEvent{Type: EventEntryUpdated, BusID: "bus-2", RouteID: "route-1"})

	close(sub.done)

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("pump still running after the subscription was closed")
	}

	if _, ok := <-sub.events; !ok {
		t.Error("buffered event should still be readable")
	}
	if _, ok := <-sub.events; ok {
		t.Error("events channel must be closed once the pump exits")
	}
}

func TestPump_ClosesEventsWhenFeedEnds(t *testing.T) {
	t.Parallel()

	msgs := make(chan *redis.Message)
	sub := &subscription{
		events: make(chan AvailabilityEvent, 4),
		done:   make(chan struct{}),
	}
	go sub.pump(msgs)

	msgs <- makeMessage(t, AvailabilityEvent{Type: EventEntryRemoved, BusID: "bus-1", RouteID: "route-1"})
	close(msgs)

	select {
	case event, ok := <-sub.events:
		if !ok {
			t.Fatal("expected the forwarded event before close")
		}
		if event.BusID != "bus-1" || event.Type != EventEntryRemoved {
			t.Errorf("wrong event forwarded: %+v", event)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for forwarded event")
	}

	select {
	case _, ok := <-sub.events:
		if ok {
			t.Error("expected the events channel to close with the feed")
		}
	case <-time.After(time.Second):
		t.Fatal("events channel not closed after the feed ended")
	}
}

func TestPump_SkipsMalformedPayloads(t *testing.T) {
	t.Parallel()

	msgs := make(chan *redis.Message)
	sub := &subscription{
		events: make(chan AvailabilityEvent, 4),
		done:   make(chan struct{}),
	}
	go sub.pump(msgs)

	msgs <- &redis.Message{Payload: "not json"}
	msgs <- makeMessage(t, AvailabilityEvent{Type: EventEntryUpdated, BusID: "bus-7", RouteID: "route-1", AvailableSeats: 5})
	close(msgs)

	select {
	case event := <-sub.events:
		if event.BusID != "bus-7" {
			t.Errorf("expected the valid event only, got %+v", event)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the valid event")
	}
}
