// Package handler exposes the scheduling endpoints.
package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"petcare_backend/internal/scheduling/service"
	"petcare_backend/internal/scheduling/transport"
	"petcare_backend/platform/httpkit"
	"petcare_backend/platform/validator"
)

const (
	msgInvalidRequest   = "Requisição inválida."
	msgValidationFailed = "Dados de agendamento inválidos."
)

// Handler handles HTTP requests for scheduling operations.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new scheduling handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes mounts the scheduling routes on a quotes group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/:id/schedule", h.Schedule)
	rg.POST("/:id/approve-and-schedule", h.ApproveAndSchedule)
	rg.POST("/:id/undo-schedule", h.UndoSchedule)
}

// Schedule is the wizard path: the caller submits an explicit occurrence
// list for an already-approved quote.
func (h *Handler) Schedule(c *gin.Context) {
	quoteID, ok := quoteIDParam(c)
	if !ok {
		return
	}

	var req transport.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	identity := httpkit.GetIdentity(c)
	result, err := h.svc.ScheduleFromWizard(c.Request.Context(), identity.UserID, quoteID, idempotencyKey(c), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// ApproveAndSchedule approves and schedules a quote in one call.
func (h *Handler) ApproveAndSchedule(c *gin.Context) {
	quoteID, ok := quoteIDParam(c)
	if !ok {
		return
	}

	var req transport.ApproveAndScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	identity := httpkit.GetIdentity(c)
	result, err := h.svc.ApproveAndSchedule(c.Request.Context(), identity.UserID, quoteID, idempotencyKey(c), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// UndoSchedule reverts a scheduled quote back to approved.
func (h *Handler) UndoSchedule(c *gin.Context) {
	quoteID, ok := quoteIDParam(c)
	if !ok {
		return
	}

	var req transport.UndoScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	identity := httpkit.GetIdentity(c)
	result, err := h.svc.UndoSchedule(c.Request.Context(), identity.UserID, quoteID, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func quoteIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return uuid.Nil, false
	}
	return id, true
}

func idempotencyKey(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader("Idempotency-Key"))
}
