// Package handler exposes the service catalog endpoints.
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"petcare_backend/internal/services/repository"
	"petcare_backend/platform/httpkit"
	"petcare_backend/platform/validator"
)

const (
	msgInvalidRequest   = "Requisição inválida."
	msgValidationFailed = "Dados do serviço inválidos."
)

type ServiceResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	BasePrice float64   `json:"basePrice"`
	CreatedAt time.Time `json:"createdAt"`
}

type UpsertServiceRequest struct {
	Name      string  `json:"name" validate:"required,min=2,max=100"`
	BasePrice float64 `json:"basePrice" validate:"min=0"`
}

type Handler struct {
	repo *repository.Repository
	val  *validator.Validator
}

func New(repo *repository.Repository, val *validator.Validator) *Handler {
	return &Handler{repo: repo, val: val}
}

// RegisterRoutes mounts the catalog routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, staff *gin.RouterGroup) {
	rg.GET("", h.List)
	staff.PUT("", h.Upsert)
	staff.DELETE("/:id", h.Deactivate)
}

func (h *Handler) List(c *gin.Context) {
	services, err := h.repo.ListActive(c.Request.Context())
	if err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "Erro ao listar serviços.", nil)
		return
	}
	out := make([]ServiceResponse, 0, len(services))
	for _, s := range services {
		out = append(out, ServiceResponse{ID: s.ID, Name: s.Name, BasePrice: s.BasePrice, CreatedAt: s.CreatedAt})
	}
	httpkit.OK(c, out)
}

func (h *Handler) Upsert(c *gin.Context) {
	var req UpsertServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	id, err := h.repo.Upsert(c.Request.Context(), req.Name, req.BasePrice)
	if err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "Erro ao salvar serviço.", nil)
		return
	}
	httpkit.OK(c, gin.H{"id": id, "name": req.Name, "basePrice": req.BasePrice})
}

func (h *Handler) Deactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.repo.Deactivate(c.Request.Context(), id); err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "Erro ao desativar serviço.", nil)
		return
	}
	httpkit.OK(c, gin.H{"id": id, "active": false})
}
