// Package handler exposes the appointment read endpoints.
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"petcare_backend/internal/appointments/service"
	"petcare_backend/platform/httpkit"
)

const msgInvalidRequest = "Requisição inválida."

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/upcoming", h.ListUpcoming)
	rg.GET("/:id", h.GetByID)
}

// RegisterQuoteRoutes mounts the by-quote listing under the quotes group.
func (h *Handler) RegisterQuoteRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id/appointments", h.ListByQuote)
}

func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	view, err := h.svc.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, view)
}

func (h *Handler) ListByQuote(c *gin.Context) {
	quoteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	items, err := h.svc.ListByQuote(c.Request.Context(), quoteID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"appointments": items})
}

func (h *Handler) ListUpcoming(c *gin.Context) {
	from := time.Now()
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}
		from = parsed
	}

	to := from.Add(7 * 24 * time.Hour)
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}
		to = parsed
	}

	items, err := h.svc.ListUpcoming(c.Request.Context(), from, to)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"appointments": items})
}
