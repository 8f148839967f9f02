// Package audit exposes the immutable audit trail.
package audit

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "petcare_backend/internal/http"
	"petcare_backend/platform/httpkit"
)

type Event struct {
	ID          uuid.UUID  `json:"id"`
	EntityType  string     `json:"entityType"`
	EntityID    uuid.UUID  `json:"entityId"`
	Action      string     `json:"action"`
	PerformedBy *uuid.UUID `json:"performedBy,omitempty"`
	Reason      *string    `json:"reason,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID, limit int) ([]Event, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, entity_type, entity_id, action, performed_by, reason, created_at
		FROM audit_events
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`, entityType, entityID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Event, 0)
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.EntityType, &e.EntityID, &e.Action, &e.PerformedBy, &e.Reason, &e.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

// Module represents the audit domain module.
type Module struct {
	repo *Repository
}

func NewModule(pool *pgxpool.Pool) *Module {
	return &Module{repo: NewRepository(pool)}
}

func (m *Module) Name() string {
	return "audit"
}

// RegisterRoutes registers the audit trail lookup.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	audit := ctx.Protected.Group("/audit")
	audit.Use(httpkit.StaffOnly())
	audit.GET("/:entityType/:entityId", m.listByEntity)
}

func (m *Module) listByEntity(c *gin.Context) {
	entityID, err := uuid.Parse(c.Param("entityId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "Requisição inválida.", nil)
		return
	}

	events, err := m.repo.ListByEntity(c.Request.Context(), c.Param("entityType"), entityID, 100)
	if err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "Erro ao buscar eventos de auditoria.", nil)
		return
	}
	httpkit.OK(c, events)
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)
