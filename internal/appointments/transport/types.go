// Package transport defines the appointment response shapes.
package transport

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type AppointmentView struct {
	ID          uuid.UUID       `json:"id"`
	QuoteID     *uuid.UUID      `json:"quoteId,omitempty"`
	CustomerID  uuid.UUID       `json:"customerId"`
	PetID       *uuid.UUID      `json:"petId,omitempty"`
	PetName     *string         `json:"petName,omitempty"`
	StartAt     time.Time       `json:"startAt"`
	Status      string          `json:"status"`
	Category    string          `json:"category"`
	LegType     *string         `json:"legType,omitempty"`
	PerformerID *uuid.UUID      `json:"performerId,omitempty"`
	Pricing     json.RawMessage `json:"pricing,omitempty"`
}
