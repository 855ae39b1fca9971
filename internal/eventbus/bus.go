// Package eventbus implements a transactional outbox. Aggregates
// append events to a per-unit-of-work buffer; before commit the buffer is
// drained and dispatched, in emission order, to subscribers registered by
// event type. A subscriber error rolls back the transaction it fired
// inside.
package eventbus

import (
	"context"
	"sync"

	"cartflow/pkg/logger"
)

// Handler processes one dispatched event. Returning an error causes
// Drain to abort and propagate, so the caller's transaction rolls back.
type Handler func(ctx context.Context, event Event) error

// Bus is the process-wide subscriber table: populated once at startup
// (internal/infra/providers.go) and read-only during request handling.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[EventType][]Handler
}

func New() *Bus {
	return &Bus{subscribers: make(map[EventType][]Handler)}
}

// Subscribe registers handler against eventType. Intended to be called
// only during process startup wiring.
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// UnitOfWork buffers events emitted by an aggregate during one command's
// transaction. A fresh UnitOfWork is created per command; it is not
// shared across commands, so no cross-order ordering is ever implied.
type UnitOfWork struct {
	bus    *Bus
	events []Event
}

func (b *Bus) NewUnitOfWork() *UnitOfWork {
	return &UnitOfWork{bus: b}
}

// Emit appends event to the outbox. Events are not dispatched until
// Drain runs, normally from the command's commit path.
func (u *UnitOfWork) Emit(event Event) {
	u.events = append(u.events, event)
}

// Events returns the buffered events in emission order, for callers
// (such as tests) that want to inspect them without triggering dispatch.
func (u *UnitOfWork) Events() []Event {
	return u.events
}

// Drain dispatches every buffered event, in emission order, to every
// subscriber registered for its type. The first handler error aborts
// dispatch and is returned so the caller's transaction rolls back; events
// already delivered to other handlers are not undone — handlers are
// expected to be idempotent against redelivery after a retried command.
func (u *UnitOfWork) Drain(ctx context.Context) error {
	for _, event := range u.events {
		u.bus.mu.RLock()
		handlers := u.bus.subscribers[event.Type]
		u.bus.mu.RUnlock()

		for _, handler := range handlers {
			if err := handler(ctx, event); err != nil {
				logger.Errorf("event bus: handler for %s failed: %v", event.Type, err)
				return err
			}
		}
	}
	u.events = nil
	return nil
}
