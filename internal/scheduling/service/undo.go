package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	appevents "petcare_backend/internal/events"
	"petcare_backend/internal/scheduling/domain"
	"petcare_backend/internal/scheduling/repository"
	"petcare_backend/internal/scheduling/transport"
	"petcare_backend/platform/apperr"
)

// UndoSchedule rolls a scheduled quote back to APROVADO: every linked
// appointment is removed and the reason lands in the status history and the
// audit trail. Invoices are durable once created and are left alone.
func (s *Service) UndoSchedule(ctx context.Context, actorID, quoteID uuid.UUID, req transport.UndoScheduleRequest) (*transport.UndoResult, error) {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, apperr.BadRequest("Motivo é obrigatório para desfazer o agendamento.").WithCode(CodeMissingReason)
	}

	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	var (
		result *transport.UndoResult
		quote  *repository.Quote
	)

	err := s.store.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		q, err := s.store.GetQuoteForUpdate(ctx, tx, quoteID)
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("Orçamento não encontrado.").WithCode(CodeQuoteNotFound)
		}
		if err != nil {
			return fmt.Errorf("load quote: %w", err)
		}

		if q.Status != domain.StatusAgendado {
			return apperr.Conflict("Apenas orçamentos agendados podem ter o agendamento desfeito.").WithCode(CodeInvalidStatus)
		}

		removed, err := s.store.DeleteAppointmentsByQuote(ctx, tx, q.ID)
		if err != nil {
			return fmt.Errorf("delete appointments: %w", err)
		}
		if err := s.store.UpdateQuoteStatus(ctx, tx, q.ID, domain.StatusAgendado, domain.StatusAprovado, actorID, &reason); err != nil {
			return fmt.Errorf("revert quote status: %w", err)
		}
		if err := s.store.RecordAuditEvent(ctx, tx, "quote", q.ID, auditActionUndo, actorID, &reason); err != nil {
			return fmt.Errorf("record audit event: %w", err)
		}

		quote = q
		result = &transport.UndoResult{QuoteID: q.ID, QuoteStatus: domain.StatusAprovado, Removed: removed}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, appevents.QuoteScheduleUndone{
		BaseEvent:      appevents.NewBaseEvent(),
		QuoteID:        quote.ID,
		QuoteSeqID:     quote.SeqID,
		CustomerID:     quote.CustomerID,
		CustomerUserID: quote.Customer.UserID,
		Reason:         reason,
		ActorID:        actorID,
	})

	if s.notifier != nil && quote.Customer.UserID != nil {
		msg := fmt.Sprintf("O agendamento do orçamento #%d foi desfeito. Motivo: %s", quote.SeqID, reason)
		if err := s.notifier.NotifyUser(ctx, *quote.Customer.UserID, "Agendamento desfeito", msg, notificationCategory); err != nil {
			s.log.NotificationError(quote.Customer.UserID.String(), err)
		}
	}

	return result, nil
}
