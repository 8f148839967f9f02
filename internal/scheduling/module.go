// Package scheduling provides the quote-to-appointment scheduling module.
package scheduling

import (
	appevents "petcare_backend/internal/events"
	apphttp "petcare_backend/internal/http"
	"petcare_backend/internal/scheduling/handler"
	"petcare_backend/internal/scheduling/repository"
	"petcare_backend/internal/scheduling/service"
	"petcare_backend/platform/config"
	"petcare_backend/platform/httpkit"
	"petcare_backend/platform/logger"
	"petcare_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the scheduling domain module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new scheduling module with all dependencies wired.
// The notifier may be nil; scheduling then skips customer notifications.
func NewModule(pool *pgxpool.Pool, bus appevents.Bus, notifier service.Notifier, log *logger.Logger, cfg config.SchedulingConfig, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, notifier, bus, log, cfg)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "scheduling"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes. Scheduling is a staff
// operation; clients never call these endpoints.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	quotes := ctx.Protected.Group("/quotes")
	quotes.Use(httpkit.StaffOnly())
	m.handler.RegisterRoutes(quotes)
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)
