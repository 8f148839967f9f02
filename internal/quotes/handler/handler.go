// Package handler exposes quote read and workflow endpoints.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"petcare_backend/internal/quotes/service"
	"petcare_backend/internal/quotes/transport"
	"petcare_backend/platform/httpkit"
)

const msgInvalidRequest = "Requisição inválida."

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the quote routes on a quotes group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id", h.Get)
	rg.GET("/:id/status-history", h.StatusHistory)
	rg.GET("/:id/dependencies", h.Dependencies)
	rg.PATCH("/:id/status", h.UpdateStatus)
}

func (h *Handler) Get(c *gin.Context) {
	quoteID, ok := quoteIDParam(c)
	if !ok {
		return
	}

	quote, err := h.svc.Get(c.Request.Context(), quoteID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, quote)
}

func (h *Handler) StatusHistory(c *gin.Context) {
	quoteID, ok := quoteIDParam(c)
	if !ok {
		return
	}

	history, err := h.svc.StatusHistory(c.Request.Context(), quoteID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, history)
}

func (h *Handler) Dependencies(c *gin.Context) {
	quoteID, ok := quoteIDParam(c)
	if !ok {
		return
	}

	deps, err := h.svc.Dependencies(c.Request.Context(), quoteID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, deps)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	quoteID, ok := quoteIDParam(c)
	if !ok {
		return
	}

	var req transport.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	identity := httpkit.GetIdentity(c)
	quote, err := h.svc.UpdateStatus(c.Request.Context(), quoteID, req, identity.UserID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, quote)
}

func quoteIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return uuid.Nil, false
	}
	return id, true
}
