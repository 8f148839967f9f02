package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	appevents "petcare_backend/internal/events"
	"petcare_backend/internal/quotes/repository"
	"petcare_backend/internal/quotes/transport"
	"petcare_backend/internal/scheduling/domain"
	"petcare_backend/platform/apperr"
	"petcare_backend/platform/config"
	"petcare_backend/platform/logger"
	"petcare_backend/platform/phone"
)

const (
	CodeQuoteNotFound     = "QUOTE_NOT_FOUND"
	CodeInvalidStatus     = "INVALID_STATUS"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeMissingReason     = "MISSING_REASON"
)

// InvoiceStore is satisfied by the invoices repository.
type InvoiceStore interface {
	FindOrCreate(ctx context.Context, quoteID uuid.UUID, amount float64, dueDate time.Time) error
	SoftDeleteByQuote(ctx context.Context, quoteID uuid.UUID) error
}

// QuoteStore is the persistence port for the quotes service.
type QuoteStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*repository.Quote, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, oldStatus, newStatus string, changedBy uuid.UUID, reason *string) error
	ListStatusHistory(ctx context.Context, id uuid.UUID) ([]repository.StatusHistoryEntry, error)
	GetDependencies(ctx context.Context, id uuid.UUID) (repository.Dependencies, error)
}

type Service struct {
	repo           QuoteStore
	invoices       InvoiceStore
	bus            appevents.Bus
	log            *logger.Logger
	invoiceDueDays int
	now            func() time.Time
}

func New(repo QuoteStore, invoices InvoiceStore, bus appevents.Bus, log *logger.Logger, cfg config.SchedulingConfig) *Service {
	return &Service{
		repo:           repo,
		invoices:       invoices,
		bus:            bus,
		log:            log,
		invoiceDueDays: cfg.GetInvoiceDueDays(),
		now:            time.Now,
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*transport.QuoteResponse, error) {
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("Orçamento não encontrado.").WithCode(CodeQuoteNotFound)
		}
		return nil, apperr.Wrap(apperr.KindInternal, "Erro ao buscar orçamento.", err)
	}
	return toResponse(q), nil
}

// UpdateStatus applies a manual workflow transition. Scheduling owns the
// AGENDADO status, so it cannot be set here.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, req transport.UpdateStatusRequest, actorID uuid.UUID) (*transport.QuoteResponse, error) {
	newStatus := strings.ToUpper(strings.TrimSpace(req.Status))
	if !isKnownStatus(newStatus) {
		return nil, apperr.BadRequest("Status inválido.").WithCode(CodeInvalidStatus)
	}
	if newStatus == domain.StatusAgendado {
		return nil, apperr.BadRequest("Use o fluxo de agendamento para colocar um orçamento em AGENDADO.").WithCode(CodeInvalidTransition)
	}

	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("Orçamento não encontrado.").WithCode(CodeQuoteNotFound)
		}
		return nil, apperr.Wrap(apperr.KindInternal, "Erro ao buscar orçamento.", err)
	}

	if q.Status == newStatus {
		return toResponse(q), nil
	}
	if q.Status == domain.StatusEncerrado {
		return nil, apperr.Conflict("Orçamentos encerrados não podem mudar de status.").WithCode(CodeInvalidTransition)
	}
	if newStatus == domain.StatusRejeitado && (req.Reason == nil || strings.TrimSpace(*req.Reason) == "") {
		return nil, apperr.BadRequest("Motivo é obrigatório para rejeitar um orçamento.").WithCode(CodeMissingReason)
	}

	if err := s.repo.UpdateStatus(ctx, id, q.Status, newStatus, actorID, req.Reason); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Conflict("O orçamento foi alterado por outra operação.").WithCode(CodeInvalidTransition)
		}
		return nil, apperr.Wrap(apperr.KindInternal, "Erro ao atualizar status do orçamento.", err)
	}

	if s.invoices != nil {
		switch newStatus {
		case domain.StatusAprovado:
			dueDate := s.now().AddDate(0, 0, s.invoiceDueDays)
			if err := s.invoices.FindOrCreate(ctx, id, q.TotalAmount, dueDate); err != nil {
				s.log.Error("failed to create invoice for approved quote", "quote_id", id.String(), "error", err)
			}
		case domain.StatusRejeitado, domain.StatusEncerrado:
			if err := s.invoices.SoftDeleteByQuote(ctx, id); err != nil {
				s.log.Error("failed to remove pending invoice for closed quote", "quote_id", id.String(), "error", err)
			}
		}
	}

	if s.bus != nil {
		s.bus.Publish(ctx, appevents.QuoteStatusChanged{
			BaseEvent: appevents.NewBaseEvent(),
			QuoteID:   id,
			OldStatus: q.Status,
			NewStatus: newStatus,
			ActorID:   actorID,
		})
	}

	q.Status = newStatus
	return toResponse(q), nil
}

func (s *Service) StatusHistory(ctx context.Context, id uuid.UUID) ([]transport.StatusHistoryResponse, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("Orçamento não encontrado.").WithCode(CodeQuoteNotFound)
		}
		return nil, apperr.Wrap(apperr.KindInternal, "Erro ao buscar orçamento.", err)
	}
	entries, err := s.repo.ListStatusHistory(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "Erro ao buscar histórico do orçamento.", err)
	}
	out := make([]transport.StatusHistoryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, transport.StatusHistoryResponse{
			OldStatus: e.OldStatus,
			NewStatus: e.NewStatus,
			ChangedBy: e.ChangedBy,
			Reason:    e.Reason,
			ChangedAt: e.CreatedAt,
		})
	}
	return out, nil
}

func (s *Service) Dependencies(ctx context.Context, id uuid.UUID) (*transport.DependenciesResponse, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("Orçamento não encontrado.").WithCode(CodeQuoteNotFound)
		}
		return nil, apperr.Wrap(apperr.KindInternal, "Erro ao buscar orçamento.", err)
	}
	deps, err := s.repo.GetDependencies(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "Erro ao buscar dependências do orçamento.", err)
	}

	warnings := make([]string, 0, 2)
	if deps.Appointments > 0 {
		warnings = append(warnings, fmt.Sprintf("Este orçamento possui %d agendamento(s) vinculado(s).", deps.Appointments))
	}
	if deps.HasInvoice {
		warnings = append(warnings, "Este orçamento possui uma fatura vinculada.")
	}
	return &transport.DependenciesResponse{
		Appointments: deps.Appointments,
		HasInvoice:   deps.HasInvoice,
		Warnings:     warnings,
	}, nil
}

func isKnownStatus(status string) bool {
	switch status {
	case domain.StatusSolicitado, domain.StatusAprovado, domain.StatusAgendado,
		domain.StatusRejeitado, domain.StatusEncerrado:
		return true
	}
	return false
}

func toResponse(q *repository.Quote) *transport.QuoteResponse {
	items := make([]transport.QuoteItemResponse, 0, len(q.Items))
	for _, it := range q.Items {
		items = append(items, transport.QuoteItemResponse{
			ID:          it.ID,
			Description: it.Description,
			Quantity:    it.Quantity,
			Price:       it.Price,
			Discount:    it.Discount,
			ServiceID:   it.ServiceID,
		})
	}
	var transportType *string
	if q.TransportType != nil {
		t := string(*q.TransportType)
		transportType = &t
	}
	var customerPhone *string
	if q.CustomerPhone != nil {
		normalized := phone.NormalizeE164(*q.CustomerPhone)
		customerPhone = &normalized
	}
	return &transport.QuoteResponse{
		ID:            q.ID,
		Number:        fmt.Sprintf("OR-%04d", q.SeqID),
		CustomerID:    q.CustomerID,
		CustomerName:  q.CustomerName,
		CustomerPhone: customerPhone,
		PetID:         q.PetID,
		PetName:       q.PetName,
		Type:          string(q.Type),
		TransportType: transportType,
		Status:        q.Status,
		TotalAmount:   q.TotalAmount,
		IsRecurring:   q.IsRecurring,
		Items:         items,
		CreatedAt:     q.CreatedAt,
		UpdatedAt:     q.UpdatedAt,
	}
}
