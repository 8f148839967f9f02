// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"petcare_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Scheduling Domain Events
// =============================================================================

// QuoteScheduled is published after a scheduling transaction commits.
type QuoteScheduled struct {
	BaseEvent
	QuoteID          uuid.UUID
	QuoteSeqID       int64
	CustomerID       uuid.UUID
	CustomerUserID   *uuid.UUID
	AppointmentCount int
	Mode             string // "wizard" or "approve"
	ActorID          uuid.UUID
}

func (e QuoteScheduled) EventName() string { return "quote.scheduled" }

// QuoteScheduleUndone is published after an undo transaction commits.
type QuoteScheduleUndone struct {
	BaseEvent
	QuoteID        uuid.UUID
	QuoteSeqID     int64
	CustomerID     uuid.UUID
	CustomerUserID *uuid.UUID
	Reason         string
	ActorID        uuid.UUID
}

func (e QuoteScheduleUndone) EventName() string { return "quote.schedule_undone" }

// QuoteStatusChanged is published on any quote status transition.
type QuoteStatusChanged struct {
	BaseEvent
	QuoteID   uuid.UUID
	OldStatus string
	NewStatus string
	ActorID   uuid.UUID
}

func (e QuoteStatusChanged) EventName() string { return "quote.status_changed" }
