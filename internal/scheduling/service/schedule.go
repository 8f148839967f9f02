package service

import (
	"context"
	"encoding/json"
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

// scheduleParams collapses the two entry points into one orchestration input.
type scheduleParams struct {
	actorID     uuid.UUID
	quoteID     uuid.UUID
	idemKey     string
	mode        string
	occurrences []domain.Occurrence
	performerID string
	scheduledAt string
}

// ScheduleFromWizard is the schedule-only path: the quote is already
// approved and the caller submits an explicit occurrence list.
func (s *Service) ScheduleFromWizard(ctx context.Context, actorID, quoteID uuid.UUID, idemKey string, req transport.ScheduleRequest) (*transport.ScheduleResult, error) {
	return s.schedule(ctx, scheduleParams{
		actorID:     actorID,
		quoteID:     quoteID,
		idemKey:     idemKey,
		mode:        modeWizard,
		occurrences: toDomainOccurrences(req.Occurrences),
	})
}

// ApproveAndSchedule is the single-click path: approve the quote and
// schedule it in the same transaction. Without occurrences a single
// appointment is created at the requested time.
func (s *Service) ApproveAndSchedule(ctx context.Context, actorID, quoteID uuid.UUID, idemKey string, req transport.ApproveAndScheduleRequest) (*transport.ScheduleResult, error) {
	return s.schedule(ctx, scheduleParams{
		actorID:     actorID,
		quoteID:     quoteID,
		idemKey:     idemKey,
		mode:        modeApprove,
		occurrences: toDomainOccurrences(req.Occurrences),
		performerID: req.PerformerID,
		scheduledAt: req.ScheduledAt,
	})
}

// postCommit carries what the notification step needs once the transaction
// is durable.
type postCommit struct {
	quote *repository.Quote
	count int
}

func (s *Service) schedule(ctx context.Context, p scheduleParams) (*transport.ScheduleResult, error) {
	// The whole orchestration is one unit of work with a generous bound so
	// dozens of occurrences and their legs fit in a single transaction.
	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	var (
		result *transport.ScheduleResult
		post   *postCommit
	)

	err := s.store.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		// Re-read inside the transaction: concurrent calls on the same quote
		// serialize on this row lock and the loser sees the winner's state.
		quote, err := s.store.GetQuoteForUpdate(ctx, tx, p.quoteID)
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("Orçamento não encontrado.").WithCode(CodeQuoteNotFound)
		}
		if err != nil {
			return fmt.Errorf("load quote: %w", err)
		}

		if domain.IsClosedStatus(quote.Status) {
			return apperr.Conflict("Orçamento encerrado não pode ser agendado.").WithCode(CodeQuoteClosed)
		}
		if quote.Pet == nil {
			return apperr.Conflict("Orçamento não possui pet vinculado.").WithCode(CodeMissingPet)
		}

		var topology domain.TransportType
		if quote.TransportType != nil {
			topology = *quote.TransportType
		}

		if len(p.occurrences) > 0 {
			if res := domain.ValidateOccurrences(quote.Type, topology, p.occurrences); !res.Valid {
				return apperr.Validation("Dados de agendamento inválidos.").
					WithCode(CodeValidationError).
					WithDetails(res.Errors)
			}
		} else {
			if quote.Type.RequiresTransport() {
				return apperr.Validation("Ocorrências são obrigatórias para orçamentos com transporte.").
					WithCode(CodeValidationError)
			}
			if _, ok := domain.ParseTime(p.scheduledAt); !ok {
				return apperr.Validation("Data do agendamento é obrigatória.").
					WithCode(CodeValidationError)
			}
		}

		meta, err := domain.ParseQuoteMetadata(quote.Metadata)
		if err != nil {
			return fmt.Errorf("parse quote metadata: %w", err)
		}

		var hash string
		if len(p.occurrences) > 0 {
			hash = domain.BuildScheduleHash(domain.HashParams{
				QuoteID:       quote.ID.String(),
				QuoteType:     quote.Type,
				TransportType: topology,
				PerformerID:   p.performerID,
				Occurrences:   p.occurrences,
			})
		}

		existing, err := s.store.ListAppointmentsByQuote(ctx, tx, quote.ID)
		if err != nil {
			return fmt.Errorf("list appointments: %w", err)
		}
		if len(existing) > 0 {
			if s.isReplay(quote, meta, hash, p) {
				// Single-mode replay detection rests on the quote status
				// alone, so a differing performer in the retry is ignored.
				// Surface that rather than silently dropping it.
				if len(p.occurrences) == 0 && p.performerID != "" {
					s.log.Warn("single-mode schedule replay ignores performer",
						"quote_id", quote.ID.String(),
						"performer_id", p.performerID,
					)
				}
				result = &transport.ScheduleResult{
					QuoteID:      quote.ID,
					QuoteStatus:  quote.Status,
					Replayed:     true,
					Appointments: toAppointmentResponses(existing),
				}
				return nil
			}
			// Destroy-and-rebuild: partial retries must never leave a mix of
			// old and new appointments behind.
			if _, err := s.store.DeleteAppointmentsByQuote(ctx, tx, quote.ID); err != nil {
				return fmt.Errorf("delete prior appointments: %w", err)
			}
		}

		current := quote.Status
		if p.mode == modeApprove && current == domain.StatusSolicitado {
			if err := s.store.UpdateQuoteStatus(ctx, tx, quote.ID, current, domain.StatusAprovado, p.actorID, nil); err != nil {
				return fmt.Errorf("approve quote: %w", err)
			}
			current = domain.StatusAprovado
		}

		due := s.now().AddDate(0, 0, s.invoiceDueDays)
		if _, err := s.store.FindOrCreateInvoice(ctx, tx, quote.ID, quote.TotalAmount, due); err != nil {
			return fmt.Errorf("ensure invoice: %w", err)
		}

		created, err := s.materialize(ctx, tx, quote, topology, p, meta)
		if err != nil {
			return err
		}

		if current != domain.StatusAgendado {
			if err := s.store.UpdateQuoteStatus(ctx, tx, quote.ID, current, domain.StatusAgendado, p.actorID, nil); err != nil {
				return fmt.Errorf("mark quote scheduled: %w", err)
			}
		}

		if len(p.occurrences) > 0 {
			meta.Schedule = &domain.IdempotencyRecord{
				Key:         p.idemKey,
				Hash:        hash,
				RequestedBy: p.actorID.String(),
				RequestedAt: s.now().UTC(),
				Mode:        p.mode,
			}
			raw, err := meta.Encode()
			if err != nil {
				return fmt.Errorf("encode quote metadata: %w", err)
			}
			if err := s.store.UpdateQuoteMetadata(ctx, tx, quote.ID, raw); err != nil {
				return fmt.Errorf("store idempotency record: %w", err)
			}
		}

		action := auditActionSchedule
		if p.mode == modeApprove {
			action = auditActionApprove
		}
		if err := s.store.RecordAuditEvent(ctx, tx, "quote", quote.ID, action, p.actorID, nil); err != nil {
			return fmt.Errorf("record audit event: %w", err)
		}

		result = &transport.ScheduleResult{
			QuoteID:      quote.ID,
			QuoteStatus:  domain.StatusAgendado,
			Appointments: created,
		}
		post = &postCommit{quote: quote, count: len(created)}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if post != nil {
		s.afterSchedule(ctx, post, p)
	}
	return result, nil
}

// isReplay decides whether an incoming request is a repetition of the last
// successful scheduling pass. With occurrences: hash match plus, when the
// caller sent an Idempotency-Key, key match. Without occurrences the only
// signal is the quote already sitting in AGENDADO.
func (s *Service) isReplay(quote *repository.Quote, meta domain.QuoteMetadata, hash string, p scheduleParams) bool {
	if len(p.occurrences) == 0 {
		return quote.Status == domain.StatusAgendado
	}
	if meta.Schedule == nil || meta.Schedule.Hash != hash {
		return false
	}
	return p.idemKey == "" || p.idemKey == meta.Schedule.Key
}

// materialize creates the appointment set for the request: SPA visits per
// occurrence and topology-dependent transport appointments, each carrying a
// pricing snapshot so later billing never re-reads the quote.
func (s *Service) materialize(ctx context.Context, tx pgx.Tx, quote *repository.Quote, topology domain.TransportType, p scheduleParams, meta domain.QuoteMetadata) ([]transport.AppointmentResponse, error) {
	performerID := parseOptionalUUID(p.performerID)

	if len(p.occurrences) == 0 {
		return s.materializeSingle(ctx, tx, quote, performerID, p.scheduledAt)
	}

	var snap domain.TransportSnapshot
	if meta.Transport != nil {
		snap = *meta.Transport
	}

	var share *domain.OccurrenceShare
	if quote.IsRecurring && len(p.occurrences) > 1 && quote.Type.RequiresTransport() {
		sh := domain.DivideAcrossOccurrences(snap, topology, len(p.occurrences))
		share = &sh
	}

	roundTrip := topology == domain.TransportRoundTrip ||
		(topology == "" && quote.Type == domain.QuoteTypeSpaTransport)

	var transportServiceID uuid.UUID
	if quote.Type.RequiresTransport() {
		id, err := s.store.EnsureTransportService(ctx, tx)
		if err != nil {
			return nil, fmt.Errorf("ensure transport service: %w", err)
		}
		transportServiceID = id
	}

	out := make([]transport.AppointmentResponse, 0, len(p.occurrences)*3)

	for _, occ := range p.occurrences {
		if quote.Type.RequiresSpa() {
			startAt, _ := domain.ParseTime(occ.SpaAt)
			lines, serviceIDs := servicePricingFor(quote, occ.ItemIDs)
			resp, err := s.createAppointment(ctx, tx, quote, repository.NewAppointment{
				ID:          uuid.New(),
				QuoteID:     quote.ID,
				CustomerID:  quote.CustomerID,
				PetID:       quote.PetID,
				StartAt:     startAt.UTC(),
				Status:      domain.AppointmentConfirmado,
				Category:    domain.CategorySpa,
				PerformerID: performerID,
				ServiceIDs:  serviceIDs,
			}, domain.AppointmentPricing{QuoteID: quote.ID.String(), ServicePricing: lines})
			if err != nil {
				return nil, err
			}
			out = append(out, resp)
		}

		if !quote.Type.RequiresTransport() {
			continue
		}

		if roundTrip || topology == domain.TransportPickUp {
			resp, err := s.createLeg(ctx, tx, quote, occ, domain.LegLeva, topology, snap, share, transportServiceID)
			if err != nil {
				return nil, err
			}
			out = append(out, resp)
		}
		if roundTrip || topology == domain.TransportDropOff {
			resp, err := s.createLeg(ctx, tx, quote, occ, domain.LegTraz, topology, snap, share, transportServiceID)
			if err != nil {
				return nil, err
			}
			out = append(out, resp)
		}
	}

	return out, nil
}

// materializeSingle is the no-occurrences path: one SPA appointment covering
// every priced line item.
func (s *Service) materializeSingle(ctx context.Context, tx pgx.Tx, quote *repository.Quote, performerID *uuid.UUID, scheduledAt string) ([]transport.AppointmentResponse, error) {
	startAt, _ := domain.ParseTime(scheduledAt)
	lines, serviceIDs := servicePricingFor(quote, nil)
	resp, err := s.createAppointment(ctx, tx, quote, repository.NewAppointment{
		ID:          uuid.New(),
		QuoteID:     quote.ID,
		CustomerID:  quote.CustomerID,
		PetID:       quote.PetID,
		StartAt:     startAt.UTC(),
		Status:      domain.AppointmentConfirmado,
		Category:    domain.CategorySpa,
		PerformerID: performerID,
		ServiceIDs:  serviceIDs,
	}, domain.AppointmentPricing{QuoteID: quote.ID.String(), ServicePricing: lines})
	if err != nil {
		return nil, err
	}
	return []transport.AppointmentResponse{resp}, nil
}

// createLeg creates one LOGISTICA appointment for a transport leg. A missing
// or malformed driver here is a hard failure even when earlier validation
// passed.
func (s *Service) createLeg(ctx context.Context, tx pgx.Tx, quote *repository.Quote, occ domain.Occurrence, leg domain.LegType, topology domain.TransportType, snap domain.TransportSnapshot, share *domain.OccurrenceShare, transportServiceID uuid.UUID) (transport.AppointmentResponse, error) {
	rawDriver, rawAt, label := occ.LevaDriverID, occ.LevaAt, "Busca"
	if leg == domain.LegTraz {
		rawDriver, rawAt, label = occ.TrazDriverID, occ.TrazAt, "Entrega"
	}

	driver, err := uuid.Parse(strings.TrimSpace(rawDriver))
	if err != nil {
		return transport.AppointmentResponse{}, apperr.BadRequest(
			fmt.Sprintf("Motorista da %s é obrigatório para criar o agendamento de transporte.", label),
		).WithCode(CodeMissingDriver)
	}
	startAt, _ := domain.ParseTime(rawAt)

	alloc := domain.TransportAllocation{Leg: leg}
	if share != nil {
		alloc.Occurrences = share.Occurrences
		if leg == domain.LegLeva {
			alloc.Price = share.Leva
		} else {
			alloc.Price = share.Traz
		}
	} else {
		alloc.Price = domain.TransportPriceFor(snap, topology, leg)
	}

	legType := string(leg)
	return s.createAppointment(ctx, tx, quote, repository.NewAppointment{
		ID:          uuid.New(),
		QuoteID:     quote.ID,
		CustomerID:  quote.CustomerID,
		PetID:       quote.PetID,
		StartAt:     startAt.UTC(),
		Status:      domain.AppointmentConfirmado,
		Category:    domain.CategoryLogistica,
		PerformerID: &driver,
		ServiceIDs:  []uuid.UUID{transportServiceID},
		LegType:     &legType,
	}, domain.AppointmentPricing{QuoteID: quote.ID.String(), Transport: &alloc})
}

func (s *Service) createAppointment(ctx context.Context, tx pgx.Tx, quote *repository.Quote, in repository.NewAppointment, pricing domain.AppointmentPricing) (transport.AppointmentResponse, error) {
	raw, err := json.Marshal(pricing)
	if err != nil {
		return transport.AppointmentResponse{}, fmt.Errorf("encode pricing snapshot: %w", err)
	}
	in.Pricing = raw

	if err := s.store.CreateAppointment(ctx, tx, in); err != nil {
		return transport.AppointmentResponse{}, fmt.Errorf("create appointment: %w", err)
	}
	return transport.AppointmentResponse{
		ID:          in.ID,
		QuoteID:     quote.ID,
		StartAt:     in.StartAt,
		Status:      in.Status,
		Category:    in.Category,
		LegType:     in.LegType,
		PerformerID: in.PerformerID,
	}, nil
}

func (s *Service) afterSchedule(ctx context.Context, pc *postCommit, p scheduleParams) {
	s.bus.Publish(ctx, appevents.QuoteScheduled{
		BaseEvent:        appevents.NewBaseEvent(),
		QuoteID:          pc.quote.ID,
		QuoteSeqID:       pc.quote.SeqID,
		CustomerID:       pc.quote.CustomerID,
		CustomerUserID:   pc.quote.Customer.UserID,
		AppointmentCount: pc.count,
		Mode:             p.mode,
		ActorID:          p.actorID,
	})

	if s.notifier == nil || pc.quote.Customer.UserID == nil {
		return
	}
	msg := fmt.Sprintf("Seu orçamento #%d foi agendado. %d atendimento(s) confirmado(s).", pc.quote.SeqID, pc.count)
	if err := s.notifier.NotifyUser(ctx, *pc.quote.Customer.UserID, "Agendamento confirmado", msg, notificationCategory); err != nil {
		s.log.NotificationError(pc.quote.Customer.UserID.String(), err)
	}
}

// servicePricingFor selects the line items an appointment covers: the
// explicitly requested ones when the occurrence names them, otherwise every
// priced item on the quote.
func servicePricingFor(quote *repository.Quote, selectedItemIDs []string) ([]domain.ServicePricingLine, []uuid.UUID) {
	want := make(map[string]struct{}, len(selectedItemIDs))
	for _, id := range selectedItemIDs {
		want[id] = struct{}{}
	}

	chosen := make([]repository.QuoteItem, 0, len(quote.Items))
	if len(want) > 0 {
		for _, it := range quote.Items {
			if _, ok := want[it.ID.String()]; ok {
				chosen = append(chosen, it)
			}
		}
	}
	if len(chosen) == 0 {
		for _, it := range quote.Items {
			if it.Price > 0 {
				chosen = append(chosen, it)
			}
		}
	}

	lines := make([]domain.ServicePricingLine, 0, len(chosen))
	seen := make(map[uuid.UUID]struct{}, len(chosen))
	serviceIDs := make([]uuid.UUID, 0, len(chosen))
	for _, it := range chosen {
		line := domain.ServicePricingLine{
			ItemID:   it.ID.String(),
			Price:    domain.RoundCents(it.Price),
			Discount: it.Discount,
		}
		if it.ServiceID != nil {
			line.ServiceID = it.ServiceID.String()
			if _, dup := seen[*it.ServiceID]; !dup {
				seen[*it.ServiceID] = struct{}{}
				serviceIDs = append(serviceIDs, *it.ServiceID)
			}
		}
		lines = append(lines, line)
	}
	return lines, serviceIDs
}

func toDomainOccurrences(in []transport.OccurrenceRequest) []domain.Occurrence {
	out := make([]domain.Occurrence, 0, len(in))
	for _, o := range in {
		out = append(out, domain.Occurrence{
			SpaAt:        o.SpaAt,
			LevaAt:       o.LevaAt,
			TrazAt:       o.TrazAt,
			LevaDriverID: o.LevaDriverID,
			TrazDriverID: o.TrazDriverID,
			ItemIDs:      o.ItemIDs,
		})
	}
	return out
}

func toAppointmentResponses(in []repository.Appointment) []transport.AppointmentResponse {
	out := make([]transport.AppointmentResponse, 0, len(in))
	for _, a := range in {
		resp := transport.AppointmentResponse{
			ID:          a.ID,
			StartAt:     a.StartAt,
			Status:      a.Status,
			Category:    a.Category,
			LegType:     a.LegType,
			PerformerID: a.PerformerID,
		}
		if a.QuoteID != nil {
			resp.QuoteID = *a.QuoteID
		}
		out = append(out, resp)
	}
	return out
}

func parseOptionalUUID(raw string) *uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil
	}
	return &id
}
