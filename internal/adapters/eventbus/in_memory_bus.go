package eventbus

import (
	"CivicPulse/internal/core/ports"
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// InMemoryBus implements ports.EventBus with one goroutine per delivery.
type InMemoryBus struct {
	log         zerolog.Logger
	subscribers map[string][]ports.EventHandler
	mu          sync.RWMutex
	inflight    sync.WaitGroup
}

var _ ports.EventBus = (*InMemoryBus)(nil)

// NewInMemoryEventBus creates a new, empty event bus
func NewInMemoryEventBus(baseLogger *zerolog.Logger) *InMemoryBus {
	return &InMemoryBus{
		log:         baseLogger.With().Str("component", "in_memory_bus").Logger(),
		subscribers: make(map[string][]ports.EventHandler),
	}
}

// Publish sends an event to all subscribers of a topic
func (b *InMemoryBus) Publish(ctx context.Context, topic string, data any) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	handlers, ok := b.subscribers[topic]
	if !ok {
		b.log.Debug().Str("topic", topic).Msg("Published event with no subscribers")
		return nil
	}

	event := ports.Event{
		Topic: topic,
		Data:  data,
	}

	// Handlers get a fresh context: the publisher's request is already done
	// by the time delivery runs.
	for _, handler := range handlers {
		b.inflight.Add(1)
		go b.deliver(handler, event)
	}

	b.log.Debug().Str("topic", topic).Int("handlers", len(handlers)).Msg("Event published")
	return nil
}

func (b *InMemoryBus) deliver(h ports.EventHandler, event ports.Event) {
	defer b.inflight.Done()
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().Err(fmt.Errorf("panic: %v", r)).Str("topic", event.Topic).Msg("Event handler panicked")
		}
	}()
	if err := h(context.Background(), event); err != nil {
		b.log.Error().Err(err).Str("topic", event.Topic).Msg("Event handler failed")
	}
}

// Subscribe registers a handler for a specific topic
func (b *InMemoryBus) Subscribe(topic string, handler ports.EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subscribers[topic] = append(b.subscribers[topic], handler)
	b.log.Info().Str("topic", topic).Msg("New handler subscribed to topic")
}

// Wait blocks until every delivery started so far has returned or ctx ends.
func (b *InMemoryBus) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
