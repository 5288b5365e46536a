package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// EventType names a stage-completion signal in the job chain.
type EventType string

const (
	// EventFeaturesComputed is emitted when compute-features finishes for a user.
	EventFeaturesComputed EventType = "features.computed"
	// EventPersonaAssigned is emitted when assign-persona finishes for a user.
	EventPersonaAssigned EventType = "persona.assigned"
)

// ErrClosed is returned by Publish after Shutdown.
var ErrClosed = errors.New("event manager is shut down")

// Event is the payload every stage emits.
type Event struct {
	EventType EventType `json:"event_type"`
	UserId    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Handler is a function that handles events.
type Handler func(ctx context.Context, event Event) error

// Publisher is what the jobs need to emit their completion signal.
type Publisher interface {
	Publish(ctx context.Context, eventType EventType, userId string) error
}

// Manager is an in-process event bus. Handlers run asynchronously, one
// goroutine per handler per event.
type Manager struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	closed   bool
	inflight sync.WaitGroup
	now      func() time.Time
}

// NewManager creates a new event manager.
func NewManager() *Manager {
	return &Manager{
		handlers: make(map[EventType][]Handler),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Subscribe subscribes a handler to a specific event type.
func (m *Manager) Subscribe(eventType EventType, handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.handlers[eventType] = append(m.handlers[eventType], handler)
}

// Publish delivers the event to all subscribed handlers. Handler errors are
// logged; they are not reported to the publisher.
func (m *Manager) Publish(ctx context.Context, eventType EventType, userId string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return ErrClosed
	}

	event := Event{
		EventType: eventType,
		UserId:    userId,
		Timestamp: m.now(),
	}

	handlers := m.handlers[eventType]
	zap.L().Debug("Publishing event",
		zap.String("event_type", string(eventType)),
		zap.String("user_id", userId),
		zap.Int("handlers", len(handlers)))

	// Handlers keep running after the publisher returns.
	handlerCtx := context.WithoutCancel(ctx)
	for _, handler := range handlers {
		m.inflight.Add(1)
		go func(h Handler) {
			defer m.inflight.Done()
			if err := h(handlerCtx, event); err != nil {
				zap.L().Error("Event handler failed",
					zap.String("event_type", string(event.EventType)),
					zap.String("user_id", event.UserId),
					zap.Error(err))
			}
		}(handler)
	}
	return nil
}

// Wait blocks until every handler started so far, and any handler those
// handlers published to, has returned.
func (m *Manager) Wait() {
	m.inflight.Wait()
}

// Shutdown stops accepting events and waits for running handlers.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	m.closed = true
	m.handlers = make(map[EventType][]Handler)
	m.mu.Unlock()

	m.inflight.Wait()
}
