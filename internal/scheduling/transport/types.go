// Package transport defines the request and response shapes of the
// scheduling endpoints.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// OccurrenceRequest is one requested scheduling slot. Time fields arrive as
// strings so a bad value becomes a row-numbered validation message instead
// of a decode failure.
type OccurrenceRequest struct {
	SpaAt        string   `json:"spaAt"`
	LevaAt       string   `json:"levaAt"`
	TrazAt       string   `json:"trazAt"`
	LevaDriverID string   `json:"levaDriverId"`
	TrazDriverID string   `json:"trazDriverId"`
	ItemIDs      []string `json:"itemIds"`
}

// ScheduleRequest is the wizard path body: an explicit occurrence list.
type ScheduleRequest struct {
	Occurrences []OccurrenceRequest `json:"occurrences" validate:"required,min=1"`
}

// ApproveAndScheduleRequest is the single-click path body. Occurrences are
// optional; without them one appointment is created at ScheduledAt.
type ApproveAndScheduleRequest struct {
	PerformerID string              `json:"performerId" validate:"omitempty,uuid"`
	ScheduledAt string              `json:"scheduledAt"`
	Occurrences []OccurrenceRequest `json:"occurrences"`
}

// UndoScheduleRequest reverts a scheduled quote. The reason is mandatory and
// lands in the status history and audit trail.
type UndoScheduleRequest struct {
	Reason string `json:"reason"`
}

// AppointmentResponse is one appointment as returned by the scheduling
// endpoints.
type AppointmentResponse struct {
	ID          uuid.UUID  `json:"id"`
	QuoteID     uuid.UUID  `json:"quoteId"`
	StartAt     time.Time  `json:"startAt"`
	Status      string     `json:"status"`
	Category    string     `json:"category"`
	LegType     *string    `json:"legType,omitempty"`
	PerformerID *uuid.UUID `json:"performerId,omitempty"`
}

// ScheduleResult is the outcome of a scheduling pass.
type ScheduleResult struct {
	QuoteID      uuid.UUID             `json:"quoteId"`
	QuoteStatus  string                `json:"quoteStatus"`
	Replayed     bool                  `json:"replayed"`
	Appointments []AppointmentResponse `json:"appointments"`
}

// UndoResult is the outcome of an undo pass.
type UndoResult struct {
	QuoteID     uuid.UUID `json:"quoteId"`
	QuoteStatus string    `json:"quoteStatus"`
	Removed     int64     `json:"removedAppointments"`
}
