// Package service provides appointment reads and reminder planning.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"petcare_backend/internal/appointments/repository"
	"petcare_backend/internal/appointments/transport"
	appevents "petcare_backend/internal/events"
	"petcare_backend/internal/scheduler"
	"petcare_backend/platform/apperr"
	"petcare_backend/platform/logger"
)

const reminderLead = 24 * time.Hour

type Service struct {
	repo      *repository.Repository
	reminders scheduler.ReminderScheduler // nil when redis is not configured
	log       *logger.Logger
	now       func() time.Time
}

func New(repo *repository.Repository, reminders scheduler.ReminderScheduler, log *logger.Logger) *Service {
	return &Service{repo: repo, reminders: reminders, log: log, now: time.Now}
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*transport.AppointmentView, error) {
	a, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("Agendamento não encontrado.")
	}
	if err != nil {
		return nil, err
	}
	view := toView(a)
	return &view, nil
}

func (s *Service) ListByQuote(ctx context.Context, quoteID uuid.UUID) ([]transport.AppointmentView, error) {
	items, err := s.repo.ListByQuote(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	return toViews(items), nil
}

func (s *Service) ListUpcoming(ctx context.Context, from, to time.Time) ([]transport.AppointmentView, error) {
	if to.Before(from) {
		return nil, apperr.BadRequest("O fim do período não pode anteceder o início.")
	}
	items, err := s.repo.ListUpcoming(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return toViews(items), nil
}

// SubscribeToEvents plans a reminder for every appointment produced by a
// scheduling pass. Runs on the event bus, so scheduling never blocks on it.
func (s *Service) SubscribeToEvents(bus appevents.Bus) {
	if s.reminders == nil {
		return
	}
	bus.Subscribe(appevents.QuoteScheduled{}.EventName(), appevents.HandlerFunc(func(ctx context.Context, event appevents.Event) error {
		scheduled, ok := event.(appevents.QuoteScheduled)
		if !ok {
			return nil
		}
		return s.planReminders(ctx, scheduled.QuoteID)
	}))
}

func (s *Service) planReminders(ctx context.Context, quoteID uuid.UUID) error {
	items, err := s.repo.ListByQuote(ctx, quoteID)
	if err != nil {
		return fmt.Errorf("list appointments for reminders: %w", err)
	}

	for _, a := range items {
		runAt := a.StartAt.Add(-reminderLead)
		if runAt.Before(s.now()) {
			continue
		}
		err := s.reminders.ScheduleAppointmentReminder(ctx, scheduler.AppointmentReminderPayload{
			AppointmentID: a.ID.String(),
			QuoteID:       quoteID.String(),
		}, runAt)
		if err != nil {
			s.log.Warn("reminder scheduling failed", "appointment_id", a.ID.String(), "error", err)
		}
	}
	return nil
}

func toView(a repository.Appointment) transport.AppointmentView {
	return transport.AppointmentView{
		ID:          a.ID,
		QuoteID:     a.QuoteID,
		CustomerID:  a.CustomerID,
		PetID:       a.PetID,
		PetName:     a.PetName,
		StartAt:     a.StartAt,
		Status:      a.Status,
		Category:    a.Category,
		LegType:     a.LegType,
		PerformerID: a.PerformerID,
		Pricing:     a.Pricing,
	}
}

func toViews(items []repository.Appointment) []transport.AppointmentView {
	out := make([]transport.AppointmentView, 0, len(items))
	for _, a := range items {
		out = append(out, toView(a))
	}
	return out
}
