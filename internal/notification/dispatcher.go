// Package notification delivers user-facing messages: always as an in-app
// notification, and additionally through the email outbox when the user has
// a reachable address. Dispatch is best-effort by contract; callers treat
// failures as log-and-continue.
package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"petcare_backend/internal/notification/inapp"
	"petcare_backend/internal/notification/outbox"
	"petcare_backend/platform/logger"
)

// InAppStore is the persistence surface the dispatcher needs.
type InAppStore interface {
	Create(ctx context.Context, p inapp.CreateParams) (inapp.Notification, error)
	EmailForUser(ctx context.Context, userID uuid.UUID) (string, bool, error)
}

// OutboxStore enqueues messages for asynchronous channel delivery.
type OutboxStore interface {
	Enqueue(ctx context.Context, channel, recipient, subject, body string) (uuid.UUID, error)
}

// Dispatcher fans one logical notification out to the available channels.
type Dispatcher struct {
	inapp  InAppStore
	outbox OutboxStore // nil disables channel delivery
	log    *logger.Logger
}

func NewDispatcher(inappStore InAppStore, outboxStore OutboxStore, log *logger.Logger) *Dispatcher {
	return &Dispatcher{inapp: inappStore, outbox: outboxStore, log: log}
}

// NotifyUser records an in-app notification and, when the user has a linked
// email address, enqueues an outbox row for the email channel. Only the
// in-app write can fail the call; channel enqueue problems are logged.
func (d *Dispatcher) NotifyUser(ctx context.Context, userID uuid.UUID, title, message, category string) error {
	if _, err := d.inapp.Create(ctx, inapp.CreateParams{
		UserID:   userID,
		Title:    title,
		Content:  message,
		Category: category,
	}); err != nil {
		return fmt.Errorf("create in-app notification: %w", err)
	}

	if d.outbox == nil {
		return nil
	}

	addr, ok, err := d.inapp.EmailForUser(ctx, userID)
	if err != nil {
		d.log.Warn("email lookup failed", "user_id", userID.String(), "error", err)
		return nil
	}
	if !ok {
		return nil
	}

	if _, err := d.outbox.Enqueue(ctx, outbox.ChannelEmail, addr, title, message); err != nil {
		d.log.Warn("outbox enqueue failed", "user_id", userID.String(), "error", err)
	}
	return nil
}
