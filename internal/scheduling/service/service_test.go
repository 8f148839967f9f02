package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	appevents "petcare_backend/internal/events"
	"petcare_backend/internal/scheduling/domain"
	"petcare_backend/internal/scheduling/repository"
	"petcare_backend/internal/scheduling/transport"
	"petcare_backend/platform/apperr"
	"petcare_backend/platform/logger"
)

// The fake below and the real repository must stay interchangeable.
var _ Store = (*repository.Repository)(nil)

type statusChange struct {
	old, new string
	reason   *string
}

// fakeStore is an in-memory Store. The pgx.Tx handle is ignored; WithTx just
// runs the function.
type fakeStore struct {
	quote *repository.Quote

	appointments []repository.Appointment
	created      []repository.NewAppointment
	deleted      int64

	invoice       *repository.Invoice
	invoiceCalls  int
	statusChanges []statusChange
	auditActions  []string

	transportServiceID uuid.UUID
}

func (f *fakeStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	return fn(ctx, nil)
}

func (f *fakeStore) GetQuoteForUpdate(ctx context.Context, tx pgx.Tx, quoteID uuid.UUID) (*repository.Quote, error) {
	if f.quote == nil || f.quote.ID != quoteID {
		return nil, repository.ErrNotFound
	}
	q := *f.quote
	return &q, nil
}

func (f *fakeStore) UpdateQuoteStatus(ctx context.Context, tx pgx.Tx, quoteID uuid.UUID, oldStatus, newStatus string, changedBy uuid.UUID, reason *string) error {
	f.statusChanges = append(f.statusChanges, statusChange{old: oldStatus, new: newStatus, reason: reason})
	f.quote.Status = newStatus
	return nil
}

func (f *fakeStore) UpdateQuoteMetadata(ctx context.Context, tx pgx.Tx, quoteID uuid.UUID, metadata []byte) error {
	f.quote.Metadata = metadata
	return nil
}

func (f *fakeStore) ListAppointmentsByQuote(ctx context.Context, tx pgx.Tx, quoteID uuid.UUID) ([]repository.Appointment, error) {
	return append([]repository.Appointment(nil), f.appointments...), nil
}

func (f *fakeStore) DeleteAppointmentsByQuote(ctx context.Context, tx pgx.Tx, quoteID uuid.UUID) (int64, error) {
	n := int64(len(f.appointments))
	f.deleted += n
	f.appointments = nil
	return n, nil
}

func (f *fakeStore) CreateAppointment(ctx context.Context, tx pgx.Tx, in repository.NewAppointment) error {
	f.created = append(f.created, in)
	qid := in.QuoteID
	f.appointments = append(f.appointments, repository.Appointment{
		ID:          in.ID,
		QuoteID:     &qid,
		CustomerID:  in.CustomerID,
		PetID:       in.PetID,
		StartAt:     in.StartAt,
		Status:      in.Status,
		Category:    in.Category,
		PerformerID: in.PerformerID,
		Pricing:     in.Pricing,
		LegType:     in.LegType,
	})
	return nil
}

func (f *fakeStore) FindOrCreateInvoice(ctx context.Context, tx pgx.Tx, quoteID uuid.UUID, amount float64, dueDate time.Time) (*repository.Invoice, error) {
	f.invoiceCalls++
	if f.invoice == nil {
		f.invoice = &repository.Invoice{ID: uuid.New(), QuoteID: quoteID, Amount: amount, Status: "PENDENTE", DueDate: dueDate}
	}
	return f.invoice, nil
}

func (f *fakeStore) EnsureTransportService(ctx context.Context, tx pgx.Tx) (uuid.UUID, error) {
	if f.transportServiceID == uuid.Nil {
		f.transportServiceID = uuid.New()
	}
	return f.transportServiceID, nil
}

func (f *fakeStore) RecordAuditEvent(ctx context.Context, tx pgx.Tx, entityType string, entityID uuid.UUID, action string, performedBy uuid.UUID, reason *string) error {
	f.auditActions = append(f.auditActions, action)
	return nil
}

type fakeNotifier struct {
	calls int
	err   error
}

func (f *fakeNotifier) NotifyUser(ctx context.Context, userID uuid.UUID, title, message, category string) error {
	f.calls++
	return f.err
}

type schedCfg struct{}

func (schedCfg) GetScheduleTxTimeout() time.Duration { return time.Minute }
func (schedCfg) GetInvoiceDueDays() int              { return 7 }

func newTestService(store *fakeStore, notifier *fakeNotifier) *Service {
	log := logger.New("test")
	return New(store, notifier, appevents.NewInMemoryBus(log), log, schedCfg{})
}

func testQuote(qt domain.QuoteType, topology *domain.TransportType) *repository.Quote {
	userID := uuid.New()
	petID := uuid.New()
	serviceID := uuid.New()
	return &repository.Quote{
		ID:            uuid.New(),
		SeqID:         42,
		CustomerID:    uuid.New(),
		PetID:         &petID,
		Type:          qt,
		TransportType: topology,
		Status:        domain.StatusSolicitado,
		TotalAmount:   250,
		Items: []repository.QuoteItem{
			{ID: uuid.New(), Description: "Banho e tosa", Quantity: 1, Price: 120, ServiceID: &serviceID},
			{ID: uuid.New(), Description: "Hidratação", Quantity: 1, Price: 80, ServiceID: &serviceID},
		},
		Customer: repository.QuoteCustomer{ID: uuid.New(), UserID: &userID, Name: "Ana"},
		Pet:      &repository.QuotePet{ID: petID, Name: "Thor"},
	}
}

func roundTripOccurrence() transport.OccurrenceRequest {
	return transport.OccurrenceRequest{
		SpaAt:        "2026-09-10T13:00:00.000Z",
		LevaAt:       "2026-09-10T12:00:00.000Z",
		TrazAt:       "2026-09-10T16:00:00.000Z",
		LevaDriverID: uuid.NewString(),
		TrazDriverID: uuid.NewString(),
	}
}

func errCode(t *testing.T, err error) string {
	t.Helper()
	if err == nil {
		t.Fatalf("expected typed error, got nil")
	}
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperr.Error, got %T: %v", err, err)
	}
	return appErr.Code
}

func TestApproveAndScheduleRoundTripCreatesThreeAppointments(t *testing.T) {
	topo := domain.TransportRoundTrip
	store := &fakeStore{quote: testQuote(domain.QuoteTypeSpaTransport, &topo)}
	notifier := &fakeNotifier{}
	svc := newTestService(store, notifier)

	res, err := svc.ApproveAndSchedule(context.Background(), uuid.New(), store.quote.ID, "", transport.ApproveAndScheduleRequest{
		Occurrences: []transport.OccurrenceRequest{roundTripOccurrence()},
	})
	if err != nil {
		t.Fatalf("ApproveAndSchedule: %v", err)
	}
	if res.Replayed {
		t.Fatalf("first call must not be a replay")
	}
	if len(res.Appointments) != 3 {
		t.Fatalf("expected 3 appointments (SPA + 2 legs), got %d", len(res.Appointments))
	}
	if res.QuoteStatus != domain.StatusAgendado {
		t.Fatalf("expected status %s, got %s", domain.StatusAgendado, res.QuoteStatus)
	}

	var spa, legs int
	for _, a := range store.created {
		switch a.Category {
		case domain.CategorySpa:
			spa++
		case domain.CategoryLogistica:
			legs++
			if a.LegType == nil {
				t.Fatalf("logistics appointment missing leg type")
			}
			if len(a.ServiceIDs) != 1 || a.ServiceIDs[0] != store.transportServiceID {
				t.Fatalf("logistics appointment not linked to the transport service")
			}
		}
	}
	if spa != 1 || legs != 2 {
		t.Fatalf("expected 1 SPA and 2 legs, got %d/%d", spa, legs)
	}

	// SOLICITADO -> APROVADO -> AGENDADO with history rows for both hops.
	if len(store.statusChanges) != 2 ||
		store.statusChanges[0].new != domain.StatusAprovado ||
		store.statusChanges[1].new != domain.StatusAgendado {
		t.Fatalf("unexpected status transitions: %+v", store.statusChanges)
	}
	if store.invoice == nil {
		t.Fatalf("expected an invoice to be created")
	}
	if len(store.auditActions) != 1 || store.auditActions[0] != auditActionApprove {
		t.Fatalf("unexpected audit actions: %v", store.auditActions)
	}

	meta, err := domain.ParseQuoteMetadata(store.quote.Metadata)
	if err != nil {
		t.Fatalf("parse stored metadata: %v", err)
	}
	if meta.Schedule == nil || meta.Schedule.Hash == "" || meta.Schedule.Mode != modeApprove {
		t.Fatalf("idempotency record not persisted: %+v", meta.Schedule)
	}
}

func TestScheduleReplayReturnsExistingAppointments(t *testing.T) {
	topo := domain.TransportRoundTrip
	store := &fakeStore{quote: testQuote(domain.QuoteTypeSpaTransport, &topo)}
	store.quote.Status = domain.StatusAprovado
	svc := newTestService(store, &fakeNotifier{})

	occ := roundTripOccurrence()
	req := transport.ScheduleRequest{Occurrences: []transport.OccurrenceRequest{occ}}
	actor := uuid.New()

	first, err := svc.ScheduleFromWizard(context.Background(), actor, store.quote.ID, "key-1", req)
	if err != nil {
		t.Fatalf("first schedule: %v", err)
	}

	second, err := svc.ScheduleFromWizard(context.Background(), actor, store.quote.ID, "key-1", req)
	if err != nil {
		t.Fatalf("replay schedule: %v", err)
	}
	if !second.Replayed {
		t.Fatalf("identical request must be recognized as a replay")
	}
	if len(second.Appointments) != len(first.Appointments) {
		t.Fatalf("replay changed the appointment set: %d vs %d", len(second.Appointments), len(first.Appointments))
	}
	if store.deleted != 0 {
		t.Fatalf("replay must not delete appointments, deleted %d", store.deleted)
	}
	if store.invoiceCalls != 1 {
		t.Fatalf("replay must not re-touch the invoice, calls=%d", store.invoiceCalls)
	}
}

func TestScheduleMismatchedKeyRebuilds(t *testing.T) {
	topo := domain.TransportRoundTrip
	store := &fakeStore{quote: testQuote(domain.QuoteTypeSpaTransport, &topo)}
	store.quote.Status = domain.StatusAprovado
	svc := newTestService(store, &fakeNotifier{})

	req := transport.ScheduleRequest{Occurrences: []transport.OccurrenceRequest{roundTripOccurrence()}}
	actor := uuid.New()

	if _, err := svc.ScheduleFromWizard(context.Background(), actor, store.quote.ID, "key-1", req); err != nil {
		t.Fatalf("first schedule: %v", err)
	}
	res, err := svc.ScheduleFromWizard(context.Background(), actor, store.quote.ID, "key-2", req)
	if err != nil {
		t.Fatalf("second schedule: %v", err)
	}
	if res.Replayed {
		t.Fatalf("same payload under a different idempotency key is not a replay")
	}
	if store.deleted != 3 {
		t.Fatalf("expected the 3 prior appointments to be destroyed, deleted=%d", store.deleted)
	}
}

func TestScheduleChangedOccurrencesRebuilds(t *testing.T) {
	topo := domain.TransportRoundTrip
	store := &fakeStore{quote: testQuote(domain.QuoteTypeSpaTransport, &topo)}
	store.quote.Status = domain.StatusAprovado
	svc := newTestService(store, &fakeNotifier{})
	actor := uuid.New()

	if _, err := svc.ScheduleFromWizard(context.Background(), actor, store.quote.ID, "", transport.ScheduleRequest{
		Occurrences: []transport.OccurrenceRequest{roundTripOccurrence()},
	}); err != nil {
		t.Fatalf("first schedule: %v", err)
	}

	changed := roundTripOccurrence()
	changed.SpaAt = "2026-09-11T13:00:00.000Z"
	res, err := svc.ScheduleFromWizard(context.Background(), actor, store.quote.ID, "", transport.ScheduleRequest{
		Occurrences: []transport.OccurrenceRequest{changed},
	})
	if err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if res.Replayed {
		t.Fatalf("changed occurrences must rebuild, not replay")
	}
	if store.deleted == 0 {
		t.Fatalf("expected prior appointments to be destroyed")
	}
	if len(store.appointments) != 3 {
		t.Fatalf("expected a fresh set of 3 appointments, got %d", len(store.appointments))
	}
}

func TestScheduleQuoteNotFound(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, &fakeNotifier{})

	_, err := svc.ScheduleFromWizard(context.Background(), uuid.New(), uuid.New(), "", transport.ScheduleRequest{
		Occurrences: []transport.OccurrenceRequest{roundTripOccurrence()},
	})
	if code := errCode(t, err); code != CodeQuoteNotFound {
		t.Fatalf("expected %s, got %s", CodeQuoteNotFound, code)
	}
}

func TestScheduleClosedQuoteRejected(t *testing.T) {
	store := &fakeStore{quote: testQuote(domain.QuoteTypeSpa, nil)}
	store.quote.Status = domain.StatusEncerrado
	svc := newTestService(store, &fakeNotifier{})

	occ := transport.OccurrenceRequest{SpaAt: "2026-09-10T13:00:00.000Z"}
	_, err := svc.ScheduleFromWizard(context.Background(), uuid.New(), store.quote.ID, "", transport.ScheduleRequest{
		Occurrences: []transport.OccurrenceRequest{occ},
	})
	if code := errCode(t, err); code != CodeQuoteClosed {
		t.Fatalf("expected %s, got %s", CodeQuoteClosed, code)
	}
}

func TestScheduleMissingPetRejected(t *testing.T) {
	store := &fakeStore{quote: testQuote(domain.QuoteTypeSpa, nil)}
	store.quote.Pet = nil
	svc := newTestService(store, &fakeNotifier{})

	occ := transport.OccurrenceRequest{SpaAt: "2026-09-10T13:00:00.000Z"}
	_, err := svc.ScheduleFromWizard(context.Background(), uuid.New(), store.quote.ID, "", transport.ScheduleRequest{
		Occurrences: []transport.OccurrenceRequest{occ},
	})
	if code := errCode(t, err); code != CodeMissingPet {
		t.Fatalf("expected %s, got %s", CodeMissingPet, code)
	}
}

func TestScheduleValidationErrorsCarryRowMessages(t *testing.T) {
	topo := domain.TransportRoundTrip
	store := &fakeStore{quote: testQuote(domain.QuoteTypeSpaTransport, &topo)}
	store.quote.Status = domain.StatusAprovado
	svc := newTestService(store, &fakeNotifier{})

	occ := roundTripOccurrence()
	occ.LevaDriverID = ""
	_, err := svc.ScheduleFromWizard(context.Background(), uuid.New(), store.quote.ID, "", transport.ScheduleRequest{
		Occurrences: []transport.OccurrenceRequest{occ},
	})
	if code := errCode(t, err); code != CodeValidationError {
		t.Fatalf("expected %s, got %s", CodeValidationError, code)
	}
	var appErr *apperr.Error
	errors.As(err, &appErr)
	msgs, ok := appErr.Details.([]string)
	if !ok || len(msgs) != 1 || !strings.Contains(msgs[0], "Motorista") || !strings.Contains(msgs[0], "Linha 1") {
		t.Fatalf("expected a row-numbered driver message, got %#v", appErr.Details)
	}
	if len(store.created) != 0 {
		t.Fatalf("validation failure must create nothing")
	}
}

func TestNotifierFailureDoesNotFailScheduling(t *testing.T) {
	store := &fakeStore{quote: testQuote(domain.QuoteTypeSpa, nil)}
	store.quote.Status = domain.StatusAprovado
	notifier := &fakeNotifier{err: errors.New("smtp down")}
	svc := newTestService(store, notifier)

	occ := transport.OccurrenceRequest{SpaAt: "2026-09-10T13:00:00.000Z"}
	res, err := svc.ScheduleFromWizard(context.Background(), uuid.New(), store.quote.ID, "", transport.ScheduleRequest{
		Occurrences: []transport.OccurrenceRequest{occ},
	})
	if err != nil {
		t.Fatalf("notifier failure leaked into the scheduling result: %v", err)
	}
	if notifier.calls != 1 {
		t.Fatalf("expected one notification attempt, got %d", notifier.calls)
	}
	if len(res.Appointments) != 1 {
		t.Fatalf("expected 1 appointment, got %d", len(res.Appointments))
	}
}

func TestApproveAndScheduleSingleMode(t *testing.T) {
	store := &fakeStore{quote: testQuote(domain.QuoteTypeSpa, nil)}
	svc := newTestService(store, &fakeNotifier{})
	actor := uuid.New()

	res, err := svc.ApproveAndSchedule(context.Background(), actor, store.quote.ID, "", transport.ApproveAndScheduleRequest{
		ScheduledAt: "2026-09-12T10:00:00.000Z",
	})
	if err != nil {
		t.Fatalf("single-mode approve: %v", err)
	}
	if len(res.Appointments) != 1 || res.Appointments[0].Category != domain.CategorySpa {
		t.Fatalf("expected a single SPA appointment, got %+v", res.Appointments)
	}

	// Second call is idempotent purely on the AGENDADO status.
	res2, err := svc.ApproveAndSchedule(context.Background(), actor, store.quote.ID, "", transport.ApproveAndScheduleRequest{
		ScheduledAt: "2026-09-12T10:00:00.000Z",
	})
	if err != nil {
		t.Fatalf("single-mode replay: %v", err)
	}
	if !res2.Replayed {
		t.Fatalf("single-mode second call on AGENDADO quote must be a replay")
	}
}

func TestRecurringTransportSplitsPriceAcrossOccurrences(t *testing.T) {
	topo := domain.TransportPickUp
	store := &fakeStore{quote: testQuote(domain.QuoteTypeTransport, &topo)}
	store.quote.Status = domain.StatusAprovado
	store.quote.IsRecurring = true

	snap := domain.TransportSnapshot{
		Largada: &domain.LegQuote{Price: 10},
		Leva:    &domain.LegQuote{Price: 20},
		Retorno: &domain.LegQuote{Price: 10},
		Total:   40,
	}
	raw, err := domain.QuoteMetadata{Transport: &snap}.Encode()
	if err != nil {
		t.Fatalf("encode metadata: %v", err)
	}
	store.quote.Metadata = raw

	svc := newTestService(store, &fakeNotifier{})
	driver := uuid.NewString()
	occs := []transport.OccurrenceRequest{
		{LevaAt: "2026-09-10T09:00:00.000Z", LevaDriverID: driver},
		{LevaAt: "2026-09-17T09:00:00.000Z", LevaDriverID: driver},
	}

	res, err := svc.ScheduleFromWizard(context.Background(), uuid.New(), store.quote.ID, "", transport.ScheduleRequest{Occurrences: occs})
	if err != nil {
		t.Fatalf("schedule recurring transport: %v", err)
	}
	if len(res.Appointments) != 2 {
		t.Fatalf("expected one pickup per occurrence, got %d", len(res.Appointments))
	}

	for _, a := range store.created {
		var pricing domain.AppointmentPricing
		if err := json.Unmarshal(a.Pricing, &pricing); err != nil {
			t.Fatalf("decode pricing snapshot: %v", err)
		}
		if pricing.Transport == nil {
			t.Fatalf("logistics appointment missing transport allocation")
		}
		// Full round cost 40, split across 2 occurrences.
		if pricing.Transport.Price != 20 {
			t.Fatalf("expected per-occurrence price 20, got %v", pricing.Transport.Price)
		}
		if pricing.Transport.Occurrences != 2 {
			t.Fatalf("expected occurrence count 2, got %d", pricing.Transport.Occurrences)
		}
	}
}

func TestUndoScheduleRevertsToApproved(t *testing.T) {
	store := &fakeStore{quote: testQuote(domain.QuoteTypeSpa, nil)}
	store.quote.Status = domain.StatusAprovado
	svc := newTestService(store, &fakeNotifier{})
	actor := uuid.New()

	occ := transport.OccurrenceRequest{SpaAt: "2026-09-10T13:00:00.000Z"}
	if _, err := svc.ScheduleFromWizard(context.Background(), actor, store.quote.ID, "", transport.ScheduleRequest{
		Occurrences: []transport.OccurrenceRequest{occ},
	}); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	res, err := svc.UndoSchedule(context.Background(), actor, store.quote.ID, transport.UndoScheduleRequest{Reason: "Cliente remarcou"})
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	if res.QuoteStatus != domain.StatusAprovado {
		t.Fatalf("expected status %s after undo, got %s", domain.StatusAprovado, res.QuoteStatus)
	}
	if res.Removed != 1 || len(store.appointments) != 0 {
		t.Fatalf("expected every appointment removed, removed=%d remaining=%d", res.Removed, len(store.appointments))
	}

	last := store.statusChanges[len(store.statusChanges)-1]
	if last.new != domain.StatusAprovado || last.reason == nil || *last.reason != "Cliente remarcou" {
		t.Fatalf("undo must record the reason in the status history: %+v", last)
	}
	if store.invoice == nil {
		t.Fatalf("undo must not touch the invoice")
	}
}

func TestUndoScheduleRequiresReason(t *testing.T) {
	store := &fakeStore{quote: testQuote(domain.QuoteTypeSpa, nil)}
	svc := newTestService(store, &fakeNotifier{})

	_, err := svc.UndoSchedule(context.Background(), uuid.New(), store.quote.ID, transport.UndoScheduleRequest{Reason: "   "})
	if code := errCode(t, err); code != CodeMissingReason {
		t.Fatalf("expected %s, got %s", CodeMissingReason, code)
	}
}

func TestUndoScheduleRequiresScheduledStatus(t *testing.T) {
	store := &fakeStore{quote: testQuote(domain.QuoteTypeSpa, nil)}
	store.quote.Status = domain.StatusAprovado
	svc := newTestService(store, &fakeNotifier{})

	_, err := svc.UndoSchedule(context.Background(), uuid.New(), store.quote.ID, transport.UndoScheduleRequest{Reason: "engano"})
	if code := errCode(t, err); code != CodeInvalidStatus {
		t.Fatalf("expected %s, got %s", CodeInvalidStatus, code)
	}
}
