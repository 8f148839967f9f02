package transport

import (
	"time"

	"github.com/google/uuid"
)

type QuoteItemResponse struct {
	ID          uuid.UUID  `json:"id"`
	Description string     `json:"description"`
	Quantity    int        `json:"quantity"`
	Price       float64    `json:"price"`
	Discount    float64    `json:"discount"`
	ServiceID   *uuid.UUID `json:"serviceId,omitempty"`
}

type QuoteResponse struct {
	ID            uuid.UUID           `json:"id"`
	Number        string              `json:"number"`
	CustomerID    uuid.UUID           `json:"customerId"`
	CustomerName  string              `json:"customerName"`
	CustomerPhone *string             `json:"customerPhone,omitempty"`
	PetID         *uuid.UUID          `json:"petId,omitempty"`
	PetName       *string             `json:"petName,omitempty"`
	Type          string              `json:"type"`
	TransportType *string             `json:"transportType,omitempty"`
	Status        string              `json:"status"`
	TotalAmount   float64             `json:"totalAmount"`
	IsRecurring   bool                `json:"isRecurring"`
	Items         []QuoteItemResponse `json:"items"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

type UpdateStatusRequest struct {
	Status string  `json:"status" binding:"required"`
	Reason *string `json:"reason,omitempty"`
}

type StatusHistoryResponse struct {
	OldStatus string     `json:"oldStatus"`
	NewStatus string     `json:"newStatus"`
	ChangedBy *uuid.UUID `json:"changedBy,omitempty"`
	Reason    *string    `json:"reason,omitempty"`
	ChangedAt time.Time  `json:"changedAt"`
}

type DependenciesResponse struct {
	Appointments int      `json:"appointments"`
	HasInvoice   bool     `json:"hasInvoice"`
	Warnings     []string `json:"warnings"`
}
