// Package services provides the grooming and transport service catalog.
package services

import (
	apphttp "petcare_backend/internal/http"
	"petcare_backend/internal/services/handler"
	"petcare_backend/internal/services/repository"
	"petcare_backend/platform/httpkit"
	"petcare_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the service catalog module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates a new catalog module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := repository.New(pool)
	return &Module{handler: handler.New(repo, val)}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "services"
}

// RegisterRoutes registers the module's routes. Reads are open to any
// authenticated user; catalog management is staff-only.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	services := ctx.Protected.Group("/services")
	staff := ctx.Protected.Group("/services")
	staff.Use(httpkit.StaffOnly())
	m.handler.RegisterRoutes(services, staff)
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)
