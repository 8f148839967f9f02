package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"petcare_backend/internal/scheduling/repository"
)

// Store is the persistence port of the scheduling orchestrators. It is
// satisfied by *repository.Repository; tests plug in a fake that ignores the
// pgx.Tx handle.
type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error

	GetQuoteForUpdate(ctx context.Context, tx pgx.Tx, quoteID uuid.UUID) (*repository.Quote, error)
	UpdateQuoteStatus(ctx context.Context, tx pgx.Tx, quoteID uuid.UUID, oldStatus, newStatus string, changedBy uuid.UUID, reason *string) error
	UpdateQuoteMetadata(ctx context.Context, tx pgx.Tx, quoteID uuid.UUID, metadata []byte) error

	ListAppointmentsByQuote(ctx context.Context, tx pgx.Tx, quoteID uuid.UUID) ([]repository.Appointment, error)
	DeleteAppointmentsByQuote(ctx context.Context, tx pgx.Tx, quoteID uuid.UUID) (int64, error)
	CreateAppointment(ctx context.Context, tx pgx.Tx, in repository.NewAppointment) error

	FindOrCreateInvoice(ctx context.Context, tx pgx.Tx, quoteID uuid.UUID, amount float64, dueDate time.Time) (*repository.Invoice, error)

	EnsureTransportService(ctx context.Context, tx pgx.Tx) (uuid.UUID, error)
	RecordAuditEvent(ctx context.Context, tx pgx.Tx, entityType string, entityID uuid.UUID, action string, performedBy uuid.UUID, reason *string) error
}

// Notifier delivers a best-effort message to a platform user. Failures are
// logged and swallowed; scheduling never rolls back over a notification.
type Notifier interface {
	NotifyUser(ctx context.Context, userID uuid.UUID, title, message, category string) error
}
