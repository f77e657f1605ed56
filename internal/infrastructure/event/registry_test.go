package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/attractify/onboarding/internal/domain/client"
)

var fixedTime = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func TestHandlerRegistry_Register(t *testing.T) {
	registry := NewHandlerRegistry()
	specific := newTestHandler()
	wildcard := newTestHandler()

	registry.Register(specific, client.EventTypeClientCreated, client.EventTypeClientUpdated)
	registry.Register(wildcard)

	assert.Equal(t, 2, registry.Count())
	assert.Len(t, registry.GetHandlers(client.EventTypeClientCreated), 2)
	assert.Len(t, registry.GetHandlers(client.EventTypeClientUpdated), 2)

	deleted := registry.GetHandlers(client.EventTypeClientDeleted)
	assert.Len(t, deleted, 1)
	assert.Same(t, wildcard, deleted[0])
}

func TestHandlerRegistry_SubscriptionOrder(t *testing.T) {
	registry := NewHandlerRegistry()
	first := newTestHandler()
	second := newTestHandler()
	third := newTestHandler()

	registry.Register(first)
	registry.Register(second, client.EventTypeTimelineUpdated)
	registry.Register(third)

	handlers := registry.GetHandlers(client.EventTypeTimelineUpdated)
	assert.Len(t, handlers, 3)
	assert.Same(t, first, handlers[0])
	assert.Same(t, second, handlers[1])
	assert.Same(t, third, handlers[2])
}

func TestHandlerRegistry_RegisterTwice(t *testing.T) {
	t.Run("widens specific subscription", func(t *testing.T) {
		registry := NewHandlerRegistry()
		h := newTestHandler()

		registry.Register(h, client.EventTypeClientCreated)
		registry.Register(h, client.EventTypeClientDeleted)

		assert.Equal(t, 1, registry.Count())
		assert.Len(t, registry.GetHandlers(client.EventTypeClientCreated), 1)
		assert.Len(t, registry.GetHandlers(client.EventTypeClientDeleted), 1)
		assert.Empty(t, registry.GetHandlers(client.EventTypeClientUpdated))
	})

	t.Run("wildcard wins", func(t *testing.T) {
		registry := NewHandlerRegistry()
		h := newTestHandler()

		registry.Register(h)
		registry.Register(h, client.EventTypeClientCreated)

		assert.Len(t, registry.GetHandlers(client.EventTypeAnalyticsSetupUpdated), 1)

		other := newTestHandler()
		registry.Register(other, client.EventTypeClientCreated)
		registry.Register(other)
		assert.Len(t, registry.GetHandlers(client.EventTypeAnalyticsSetupUpdated), 2)
	})
}

func TestHandlerRegistry_Unregister(t *testing.T) {
	registry := NewHandlerRegistry()
	a := newTestHandler()
	b := newTestHandler()

	registry.Register(a, client.EventTypeClientCreated)
	registry.Register(b)
	registry.Unregister(a)

	handlers := registry.GetHandlers(client.EventTypeClientCreated)
	assert.Len(t, handlers, 1)
	assert.Same(t, b, handlers[0])

	registry.Unregister(a)
	assert.Equal(t, 1, registry.Count())
}
