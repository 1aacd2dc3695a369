// Package eventbus provides the in-memory implementation of the outbound
// event bus. Events are handed to a worker goroutine over a buffered
// channel: publishing never blocks the ledger engine, and a slow or failing
// consumer can only lose its own notifications.
package eventbus

import (
	"context"
	"log/slog"
	"sync"

	"github.com/pesabank/pesabank/pkg/eventbus"
)

const defaultBuffer = 256

// MemoryEventBus is an asynchronous in-memory event bus.
type MemoryEventBus struct {
	handlers map[string][]eventbus.HandlerFunc
	mu       sync.RWMutex
	eventCh  chan envelope
	done     chan struct{}
	logger   *slog.Logger
}

type envelope struct {
	ctx   context.Context
	event eventbus.Event
}

// NewWithMemory creates the bus and starts its dispatch worker.
func NewWithMemory(logger *slog.Logger) *MemoryEventBus {
	b := &MemoryEventBus{
		handlers: make(map[string][]eventbus.HandlerFunc),
		eventCh:  make(chan envelope, defaultBuffer),
		done:     make(chan struct{}),
		logger:   logger.With("bus", "memory"),
	}
	go b.dispatch()
	return b
}

// Subscribe registers a handler for a specific event type.
func (b *MemoryEventBus) Subscribe(eventType string, handler eventbus.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Publish enqueues the event for asynchronous delivery. When the buffer is
// full the event is dropped with a log line; delivery is
// at-most-once-attempted and the caller's financial state is already
// committed.
func (b *MemoryEventBus) Publish(ctx context.Context, event eventbus.Event) error {
	select {
	case b.eventCh <- envelope{ctx: context.WithoutCancel(ctx), event: event}:
	default:
		b.logger.Warn("event buffer full, dropping event", "eventType", event.EventType())
	}
	return nil
}

// Close stops the dispatch worker after draining queued events.
func (b *MemoryEventBus) Close() {
	close(b.eventCh)
	<-b.done
}

func (b *MemoryEventBus) dispatch() {
	defer close(b.done)
	for env := range b.eventCh {
		b.mu.RLock()
		handlers := b.handlers[env.event.EventType()]
		b.mu.RUnlock()
		for _, handler := range handlers {
			b.deliver(env.ctx, handler, env.event)
		}
	}
}

// deliver isolates handler panics so one bad consumer cannot kill the worker.
func (b *MemoryEventBus) deliver(ctx context.Context, handler eventbus.HandlerFunc, event eventbus.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked", "eventType", event.EventType(), "panic", r)
		}
	}()
	handler(ctx, event)
}

var _ eventbus.Bus = (*MemoryEventBus)(nil)
