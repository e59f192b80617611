package service

import (
	"sync"
	"time"
)

// Event kinds published on the bus.
const (
	ViewLoaded = "loaded"
	ViewFailed = "failed"
)

// Event reports the outcome of a view load.
type Event struct {
	Kind       string    // ViewLoaded or ViewFailed
	ViewID     string    // empty when the load failed
	Markers    int       // earthquake markers in the view
	Boundaries int       // plate boundary features in the view
	Error      string    // failure reason
	At         time.Time // when the load finished
}

// EventBus is a simple fan-out pub/sub for view lifecycle events.
type EventBus struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

// NewEventBus creates a new event bus.
func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[chan Event]struct{})}
}

// Publish sends an event to all subscribers (non-blocking).
func (b *EventBus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- e:
		default:
			// subscriber too slow, skip
		}
	}
}

// Subscribe returns a buffered channel that receives events.
func (b *EventBus) Subscribe() chan Event {
	ch := make(chan Event, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *EventBus) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
	close(ch)
}

// Subscribers returns the number of open subscriptions.
func (b *EventBus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
