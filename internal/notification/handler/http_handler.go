// Package handler exposes the in-app notification endpoints.
package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"petcare_backend/internal/notification/inapp"
	"petcare_backend/platform/httpkit"
)

type Handler struct {
	repo *inapp.Repository
}

func New(repo *inapp.Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/unread-count", h.UnreadCount)
	rg.PATCH("/:id/read", h.MarkRead)
	rg.POST("/read-all", h.MarkAllRead)
}

func (h *Handler) List(c *gin.Context) {
	identity := httpkit.GetIdentity(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	items, err := h.repo.ListByUser(c.Request.Context(), identity.UserID, limit)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"notifications": items})
}

func (h *Handler) UnreadCount(c *gin.Context) {
	identity := httpkit.GetIdentity(c)

	count, err := h.repo.CountUnread(c.Request.Context(), identity.UserID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"unread": count})
}

func (h *Handler) MarkRead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "Requisição inválida.", nil)
		return
	}

	identity := httpkit.GetIdentity(c)
	if err := h.repo.MarkRead(c.Request.Context(), id, identity.UserID); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"status": "read"})
}

func (h *Handler) MarkAllRead(c *gin.Context) {
	identity := httpkit.GetIdentity(c)
	if err := h.repo.MarkAllRead(c.Request.Context(), identity.UserID); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"status": "read"})
}
