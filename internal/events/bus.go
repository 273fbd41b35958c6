// Package events re-exports the platform event bus and declares the
// domain events exchanged between modules.
package events

import (
	platformevents "lead_scoring_backend/platform/events"
	"lead_scoring_backend/platform/logger"
)

// Event is a type alias to the platform Event interface.
type Event = platformevents.Event

// Bus is a type alias to the platform Bus interface.
type Bus = platformevents.Bus

// BaseEvent is a type alias to the platform BaseEvent.
type BaseEvent = platformevents.BaseEvent

// Handler is a type alias to the platform Handler interface.
type Handler = platformevents.Handler

// HandlerFunc is a type alias to the platform HandlerFunc adapter.
type HandlerFunc = platformevents.HandlerFunc

// InMemoryBus is a type alias to the platform InMemoryBus
type InMemoryBus = platformevents.InMemoryBus

// NewBaseEvent stamps an event with the current time.
func NewBaseEvent() BaseEvent {
	return platformevents.NewBaseEvent()
}

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return platformevents.NewInMemoryBus(log)
}
