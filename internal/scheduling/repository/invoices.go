package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Invoice struct {
	ID      uuid.UUID
	QuoteID uuid.UUID
	Amount  float64
	Status  string
	DueDate time.Time
}

// FindOrCreateInvoice returns the invoice bound to a quote, creating a
// pending one when none exists yet. Scheduling the same quote twice must
// not mint a second invoice.
func (r *Repository) FindOrCreateInvoice(ctx context.Context, tx pgx.Tx, quoteID uuid.UUID, amount float64, dueDate time.Time) (*Invoice, error) {
	var inv Invoice
	err := tx.QueryRow(ctx, `
		SELECT id, quote_id, amount, status, due_date
		FROM invoices
		WHERE quote_id = $1 AND deleted_at IS NULL
	`, quoteID).Scan(&inv.ID, &inv.QuoteID, &inv.Amount, &inv.Status, &inv.DueDate)
	if err == nil {
		return &inv, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	inv = Invoice{ID: uuid.New(), QuoteID: quoteID, Amount: amount, Status: "PENDENTE", DueDate: dueDate}
	_, err = tx.Exec(ctx, `
		INSERT INTO invoices (id, quote_id, amount, status, due_date)
		VALUES ($1, $2, $3, $4, $5)
	`, inv.ID, inv.QuoteID, inv.Amount, inv.Status, inv.DueDate)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
