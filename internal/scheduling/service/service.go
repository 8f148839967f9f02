// Package service implements the scheduling orchestrators: the transition
// from an approved quote to a concrete set of appointments, the idempotent
// replay of that transition, and its undo.
package service

import (
	"time"

	appevents "petcare_backend/internal/events"
	"petcare_backend/platform/config"
	"petcare_backend/platform/logger"
)

const (
	modeWizard  = "wizard"
	modeApprove = "approve"

	auditActionSchedule = "AGENDAMENTO"
	auditActionApprove  = "APROVACAO_AGENDAMENTO"
	auditActionUndo     = "AGENDAMENTO_DESFEITO"

	notificationCategory = "AGENDAMENTO"
)

// Service runs the scheduling and undo orchestrations.
type Service struct {
	store          Store
	notifier       Notifier
	bus            appevents.Bus
	log            *logger.Logger
	txTimeout      time.Duration
	invoiceDueDays int

	now func() time.Time // swapped in tests
}

// New creates the scheduling service.
func New(store Store, notifier Notifier, bus appevents.Bus, log *logger.Logger, cfg config.SchedulingConfig) *Service {
	return &Service{
		store:          store,
		notifier:       notifier,
		bus:            bus,
		log:            log,
		txTimeout:      cfg.GetScheduleTxTimeout(),
		invoiceDueDays: cfg.GetInvoiceDueDays(),
		now:            time.Now,
	}
}
