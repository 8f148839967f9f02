// Package appointments provides the appointment read surface and reminder
// planning.
package appointments

import (
	"petcare_backend/internal/appointments/handler"
	"petcare_backend/internal/appointments/repository"
	"petcare_backend/internal/appointments/service"
	appevents "petcare_backend/internal/events"
	apphttp "petcare_backend/internal/http"
	"petcare_backend/internal/scheduler"
	"petcare_backend/platform/httpkit"
	"petcare_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates the appointments module. The reminder scheduler may be
// nil; reminders are then skipped.
func NewModule(pool *pgxpool.Pool, bus appevents.Bus, reminders scheduler.ReminderScheduler, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, reminders, log)
	svc.SubscribeToEvents(bus)

	return &Module{handler: handler.New(svc), service: svc}
}

func (m *Module) Name() string {
	return "appointments"
}

func (m *Module) Service() *service.Service {
	return m.service
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	appointments := ctx.Protected.Group("/appointments")
	appointments.Use(httpkit.StaffOnly())
	m.handler.RegisterRoutes(appointments)

	quotes := ctx.Protected.Group("/quotes")
	quotes.Use(httpkit.StaffOnly())
	m.handler.RegisterQuoteRoutes(quotes)
}

var _ apphttp.Module = (*Module)(nil)
