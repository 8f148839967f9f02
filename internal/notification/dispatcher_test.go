package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"petcare_backend/internal/notification/inapp"
	"petcare_backend/internal/notification/outbox"
	"petcare_backend/platform/logger"
)

type fakeInApp struct {
	created   []inapp.CreateParams
	createErr error
	email     string
	hasEmail  bool
	lookupErr error
}

func (f *fakeInApp) Create(ctx context.Context, p inapp.CreateParams) (inapp.Notification, error) {
	if f.createErr != nil {
		return inapp.Notification{}, f.createErr
	}
	f.created = append(f.created, p)
	return inapp.Notification{ID: uuid.New(), UserID: p.UserID, Title: p.Title, Content: p.Content}, nil
}

func (f *fakeInApp) EmailForUser(ctx context.Context, userID uuid.UUID) (string, bool, error) {
	return f.email, f.hasEmail, f.lookupErr
}

type fakeOutbox struct {
	enqueued   []string
	enqueueErr error
}

func (f *fakeOutbox) Enqueue(ctx context.Context, channel, recipient, subject, body string) (uuid.UUID, error) {
	if f.enqueueErr != nil {
		return uuid.Nil, f.enqueueErr
	}
	f.enqueued = append(f.enqueued, recipient)
	return uuid.New(), nil
}

func TestNotifyUserWritesInAppAndEnqueuesEmail(t *testing.T) {
	inappStore := &fakeInApp{email: "ana@example.com", hasEmail: true}
	outboxStore := &fakeOutbox{}
	d := NewDispatcher(inappStore, outboxStore, logger.New("test"))

	err := d.NotifyUser(context.Background(), uuid.New(), "Agendamento confirmado", "Seu orçamento #42 foi agendado.", "AGENDAMENTO")
	if err != nil {
		t.Fatalf("NotifyUser: %v", err)
	}
	if len(inappStore.created) != 1 {
		t.Fatalf("expected 1 in-app notification, got %d", len(inappStore.created))
	}
	if len(outboxStore.enqueued) != 1 || outboxStore.enqueued[0] != "ana@example.com" {
		t.Fatalf("expected email enqueued for ana@example.com, got %v", outboxStore.enqueued)
	}
}

func TestNotifyUserSkipsEmailWithoutAddress(t *testing.T) {
	inappStore := &fakeInApp{hasEmail: false}
	outboxStore := &fakeOutbox{}
	d := NewDispatcher(inappStore, outboxStore, logger.New("test"))

	if err := d.NotifyUser(context.Background(), uuid.New(), "t", "m", "info"); err != nil {
		t.Fatalf("NotifyUser: %v", err)
	}
	if len(outboxStore.enqueued) != 0 {
		t.Fatalf("no email should be enqueued without an address")
	}
}

func TestNotifyUserFailsOnlyOnInAppError(t *testing.T) {
	inappStore := &fakeInApp{createErr: errors.New("db down")}
	d := NewDispatcher(inappStore, &fakeOutbox{}, logger.New("test"))

	if err := d.NotifyUser(context.Background(), uuid.New(), "t", "m", "info"); err == nil {
		t.Fatalf("in-app failure must propagate")
	}

	inappStore = &fakeInApp{email: "x@y.z", hasEmail: true}
	outboxStore := &fakeOutbox{enqueueErr: errors.New("redis down")}
	d = NewDispatcher(inappStore, outboxStore, logger.New("test"))

	if err := d.NotifyUser(context.Background(), uuid.New(), "t", "m", "info"); err != nil {
		t.Fatalf("outbox failure must be swallowed, got %v", err)
	}
}

// Compile-time interface checks against the real repositories.
var (
	_ InAppStore  = (*inapp.Repository)(nil)
	_ OutboxStore = (*outbox.Repository)(nil)
)
