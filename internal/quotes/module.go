// Package quotes provides quote reads and manual status workflow.
package quotes

import (
	appevents "petcare_backend/internal/events"
	apphttp "petcare_backend/internal/http"
	"petcare_backend/internal/quotes/handler"
	"petcare_backend/internal/quotes/repository"
	"petcare_backend/internal/quotes/service"
	"petcare_backend/platform/config"
	"petcare_backend/platform/httpkit"
	"petcare_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the quotes domain module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new quotes module with all dependencies wired.
// invoices may be nil; approving a quote then skips invoice creation.
func NewModule(pool *pgxpool.Pool, invoices service.InvoiceStore, bus appevents.Bus, log *logger.Logger, cfg config.SchedulingConfig) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, invoices, bus, log, cfg)
	h := handler.New(svc)

	return &Module{handler: h, service: svc}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "quotes"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	quotes := ctx.Protected.Group("/quotes")
	quotes.Use(httpkit.StaffOnly())
	m.handler.RegisterRoutes(quotes)
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)
