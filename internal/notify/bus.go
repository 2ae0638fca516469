// Package notify implements the in-process publish/subscribe fan-out that
// pushes category change events to connected admin clients. The bus is
// decoupled from transport: the SSE handler subscribes a callback per open
// connection and unsubscribes it on disconnect.
package notify

import (
	"log/slog"
	"sync"

	"catadmin/internal/models"
)

// Subscriber receives every published change event, in publish order.
type Subscriber func(models.ChangeEvent)

// Bus fans change events out to all registered subscribers.
type Bus struct {
	mu   sync.Mutex
	next int
	subs map[int]Subscriber
}

// NewBus returns an empty notification bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]Subscriber)}
}

// Subscribe registers a callback and returns an unsubscribe func that
// removes exactly this registration. Unsubscribing twice is harmless.
func (b *Bus) Subscribe(fn Subscriber) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	b.subs[id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

// Publish delivers the event to every currently registered subscriber. A
// panicking subscriber is logged and skipped; it never blocks delivery to
// the rest and never reaches the publisher.
func (b *Bus) Publish(event models.ChangeEvent) {
	b.mu.Lock()
	subs := make([]Subscriber, 0, len(b.subs))
	for _, fn := range b.subs {
		subs = append(subs, fn)
	}
	b.mu.Unlock()

	for _, fn := range subs {
		deliver(fn, event)
	}
}

// deliver invokes one subscriber with panic isolation.
func deliver(fn Subscriber, event models.ChangeEvent) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("notify subscriber panicked", "event", event.Type, "error", rec)
		}
	}()
	fn(event)
}

// Len reports the number of registered subscribers.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
