package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestChangeEvents(t *testing.T) {
	c := NewClient("42", Fields{CompanyName: "Acme", ContactEmail: "a@acme.com"}, time.Now())

	created := NewClientCreatedEvent(c)
	assert.Equal(t, EventTypeClientCreated, created.EventType())
	assert.Equal(t, AggregateTypeClient, created.AggregateType())
	assert.Equal(t, "42", created.AggregateID())
	assert.Equal(t, TableClients, created.Table)
	assert.Equal(t, ChangeInsert, created.Change)
	assert.Contains(t, created.Summary, "Acme")

	deleted := NewClientDeletedEvent("42", "Acme")
	assert.Equal(t, ChangeDelete, deleted.Change)

	c.EnsureOnboardingSteps()
	step, _ := c.Step(1)
	stepEvent := NewOnboardingStepUpdatedEvent(c, step)
	assert.Equal(t, TableOnboardingSteps, stepEvent.Table)
	assert.Equal(t, "42", stepEvent.ClientID)

	assert.Len(t, AllEventTypes(), 9)
}
