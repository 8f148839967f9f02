// Package handler exposes invoice endpoints.
package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"petcare_backend/internal/invoices/repository"
	"petcare_backend/platform/httpkit"
)

const msgInvalidRequest = "Requisição inválida."

type InvoiceResponse struct {
	ID          uuid.UUID `json:"id"`
	QuoteID     uuid.UUID `json:"quoteId"`
	QuoteNumber string    `json:"quoteNumber"`
	CustomerID  uuid.UUID `json:"customerId"`
	Customer    string    `json:"customer"`
	TotalAmount float64   `json:"totalAmount"`
	Status      string    `json:"status"`
	DueDate     time.Time `json:"dueDate"`
	Overdue     bool      `json:"overdue"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Handler struct {
	repo *repository.Repository
}

func New(repo *repository.Repository) *Handler {
	return &Handler{repo: repo}
}

// RegisterInvoiceRoutes mounts routes on an invoices group.
func (h *Handler) RegisterInvoiceRoutes(rg *gin.RouterGroup) {
	rg.GET("/pending", h.ListPending)
	rg.POST("/:id/pay", h.MarkPaid)
}

// RegisterQuoteRoutes mounts the per-quote invoice lookup.
func (h *Handler) RegisterQuoteRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id/invoice", h.GetByQuote)
}

func (h *Handler) ListPending(c *gin.Context) {
	invoices, err := h.repo.ListPending(c.Request.Context())
	if err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "Erro ao listar faturas.", nil)
		return
	}
	out := make([]InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, toResponse(inv))
	}
	httpkit.OK(c, out)
}

func (h *Handler) GetByQuote(c *gin.Context) {
	quoteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	inv, err := h.repo.FindByQuote(c.Request.Context(), quoteID)
	if errors.Is(err, repository.ErrNotFound) {
		httpkit.Error(c, http.StatusNotFound, "Fatura não encontrada.", nil)
		return
	}
	if err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "Erro ao buscar fatura.", nil)
		return
	}
	httpkit.OK(c, toResponse(*inv))
}

func (h *Handler) MarkPaid(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	if err := h.repo.MarkPaid(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			httpkit.Error(c, http.StatusNotFound, "Fatura pendente não encontrada.", nil)
			return
		}
		httpkit.Error(c, http.StatusInternalServerError, "Erro ao baixar fatura.", nil)
		return
	}
	httpkit.OK(c, gin.H{"id": id, "status": repository.StatusPaid})
}

func toResponse(inv repository.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:          inv.ID,
		QuoteID:     inv.QuoteID,
		QuoteNumber: fmt.Sprintf("OR-%04d", inv.QuoteSeqID),
		CustomerID:  inv.CustomerID,
		Customer:    inv.Customer,
		TotalAmount: inv.TotalAmount,
		Status:      inv.Status,
		DueDate:     inv.DueDate,
		Overdue:     inv.Status == repository.StatusPending && inv.DueDate.Before(time.Now()),
		CreatedAt:   inv.CreatedAt,
	}
}
