// Package event delivers client change events to in-process subscribers:
// the activity recorder, the realtime hub and the metrics collector.
package event

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/attractify/onboarding/internal/domain/shared"
	"github.com/attractify/onboarding/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ErrBusStopped is returned by Publish once Stop has been called.
var ErrBusStopped = errors.New("event bus stopped")

// DeliveryObserver is told about every handler invocation. err is nil on
// success.
type DeliveryObserver func(eventType string, err error)

// Option configures an InMemoryEventBus
type Option func(*InMemoryEventBus)

// WithDeliveryObserver registers an observer for handler outcomes
func WithDeliveryObserver(observer DeliveryObserver) Option {
	return func(b *InMemoryEventBus) {
		b.observer = observer
	}
}

// InMemoryEventBus implements EventBus with synchronous in-memory pub/sub.
// Handlers run in subscription order on the publishing goroutine.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
	observer DeliveryObserver
	stopped  atomic.Bool
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(log *zap.Logger, opts ...Option) *InMemoryEventBus {
	if log == nil {
		log = zap.NewNop()
	}
	b := &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   log,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish delivers events to every matching handler. Handler errors and
// panics are logged and never stop delivery to the remaining handlers.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if b.stopped.Load() {
		return ErrBusStopped
	}
	for _, event := range events {
		eventCtx := logger.WithClientID(ctx, event.AggregateID())
		for _, handler := range b.registry.GetHandlers(event.EventType()) {
			err := b.dispatchToHandler(eventCtx, handler, event)
			if b.observer != nil {
				b.observer(event.EventType(), err)
			}
			if err != nil {
				logger.For(eventCtx, b.logger).Error("handler failed to process event",
					zap.String("event_type", event.EventType()),
					zap.String("event_id", event.EventID().String()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

// Subscribe registers a handler. Without explicit types the handler's own
// EventTypes are used; if those are empty too it receives everything.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("handler subscribed",
		zap.Strings("event_types", eventTypes),
	)
}

// Unsubscribe removes a handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
	b.logger.Debug("handler unsubscribed")
}

// Start starts the event bus
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.stopped.Store(false)
	b.logger.Info("event bus started", zap.Int("handlers", b.registry.Count()))
	return nil
}

// Stop rejects further publishing. Deliveries already in flight finish on
// their own goroutines.
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.stopped.Store(true)
	b.logger.Info("event bus stopped")
	return nil
}

// dispatchToHandler runs one handler, turning a panic into an error
func (b *InMemoryEventBus) dispatchToHandler(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()

	return handler.Handle(ctx, event)
}

// Ensure InMemoryEventBus implements EventBus
var _ shared.EventBus = (*InMemoryEventBus)(nil)
