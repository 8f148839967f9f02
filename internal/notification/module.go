package notification

import (
	apphttp "petcare_backend/internal/http"
	notifhandler "petcare_backend/internal/notification/handler"
	"petcare_backend/internal/notification/inapp"
	"petcare_backend/internal/notification/outbox"
	"petcare_backend/platform/config"
	"petcare_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module wires notification persistence, the dispatcher and the HTTP
// surface.
type Module struct {
	handler    *notifhandler.Handler
	dispatcher *Dispatcher
	outbox     *outbox.Repository
}

// NewModule creates the notification module. When email delivery is disabled
// the dispatcher only writes in-app notifications.
func NewModule(pool *pgxpool.Pool, cfg config.EmailConfig, log *logger.Logger) *Module {
	inappRepo := inapp.NewRepository(pool)
	outboxRepo := outbox.New(pool)

	var outboxStore OutboxStore
	if cfg.GetEmailEnabled() {
		outboxStore = outboxRepo
	}

	return &Module{
		handler:    notifhandler.New(inappRepo),
		dispatcher: NewDispatcher(inappRepo, outboxStore, log),
		outbox:     outboxRepo,
	}
}

func (m *Module) Name() string {
	return "notification"
}

// Dispatcher returns the fan-out dispatcher consumed by other modules.
func (m *Module) Dispatcher() *Dispatcher {
	return m.dispatcher
}

// Outbox exposes the outbox repository to the scheduler binary.
func (m *Module) Outbox() *outbox.Repository {
	return m.outbox
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	notifications := ctx.Protected.Group("/notifications")
	m.handler.RegisterRoutes(notifications)
}

var _ apphttp.Module = (*Module)(nil)
