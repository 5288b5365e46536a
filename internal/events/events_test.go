package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestPublish_DeliversToSubscribers(t *testing.T) {
	m := NewManager()
	fixed := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return fixed }

	var mu sync.Mutex
	var received []Event
	record := func(ctx context.Context, e Event) error {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, e)
		return nil
	}

	m.Subscribe(EventFeaturesComputed, record)
	m.Subscribe(EventFeaturesComputed, record)
	m.Subscribe(EventPersonaAssigned, record)

	if err := m.Publish(context.Background(), EventFeaturesComputed, "user1"); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	m.Wait()

	if len(received) != 2 {
		t.Fatalf("Expected 2 deliveries, got %d", len(received))
	}
	for _, e := range received {
		if e.EventType != EventFeaturesComputed || e.UserId != "user1" || !e.Timestamp.Equal(fixed) {
			t.Errorf("Unexpected event: %+v", e)
		}
	}
}

func TestPublish_NoSubscribers(t *testing.T) {
	m := NewManager()
	if err := m.Publish(context.Background(), EventPersonaAssigned, "user1"); err != nil {
		t.Errorf("Publishing without subscribers should succeed, got %v", err)
	}
}

func TestPublish_HandlerErrorDoesNotPropagate(t *testing.T) {
	m := NewManager()
	m.Subscribe(EventPersonaAssigned, func(ctx context.Context, e Event) error {
		return errors.New("boom")
	})

	if err := m.Publish(context.Background(), EventPersonaAssigned, "user1"); err != nil {
		t.Errorf("Handler failure must not reach the publisher, got %v", err)
	}
	m.Wait()
}

func TestPublish_HandlerSurvivesCanceledContext(t *testing.T) {
	m := NewManager()
	ctx, cancel := context.WithCancel(context.Background())

	var handlerErr error
	m.Subscribe(EventFeaturesComputed, func(ctx context.Context, e Event) error {
		handlerErr = ctx.Err()
		return nil
	})

	if err := m.Publish(ctx, EventFeaturesComputed, "user1"); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	cancel()
	m.Wait()

	if handlerErr != nil {
		t.Errorf("Expected handler context to stay live, got %v", handlerErr)
	}
}

func TestWait_CoversChainedPublishes(t *testing.T) {
	m := NewManager()

	var mu sync.Mutex
	var order []EventType
	m.Subscribe(EventFeaturesComputed, func(ctx context.Context, e Event) error {
		mu.Lock()
		order = append(order, e.EventType)
		mu.Unlock()
		return m.Publish(ctx, EventPersonaAssigned, e.UserId)
	})
	m.Subscribe(EventPersonaAssigned, func(ctx context.Context, e Event) error {
		mu.Lock()
		order = append(order, e.EventType)
		mu.Unlock()
		return nil
	})

	if err := m.Publish(context.Background(), EventFeaturesComputed, "user1"); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	m.Wait()

	if len(order) != 2 || order[0] != EventFeaturesComputed || order[1] != EventPersonaAssigned {
		t.Errorf("Unexpected delivery order: %v", order)
	}
}

func TestShutdown(t *testing.T) {
	m := NewManager()
	m.Subscribe(EventFeaturesComputed, func(ctx context.Context, e Event) error { return nil })
	m.Shutdown()

	if err := m.Publish(context.Background(), EventFeaturesComputed, "user1"); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed after shutdown, got %v", err)
	}
}
