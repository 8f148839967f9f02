// Package repository provides invoice persistence.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("fatura não encontrada")

const (
	StatusPending = "PENDENTE"
	StatusPaid    = "PAGO"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Invoice struct {
	ID          uuid.UUID
	QuoteID     uuid.UUID
	QuoteSeqID  int64
	CustomerID  uuid.UUID
	Customer    string
	TotalAmount float64
	Status      string
	DueDate     time.Time
	CreatedAt   time.Time
}

// FindOrCreate returns the quote's invoice, creating a pending one when
// none exists. One invoice per quote.
func (r *Repository) FindOrCreate(ctx context.Context, quoteID uuid.UUID, amount float64, dueDate time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO invoices (id, quote_id, amount, status, due_date)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (quote_id) DO NOTHING
	`, uuid.New(), quoteID, amount, StatusPending, dueDate)
	return err
}

func (r *Repository) FindByQuote(ctx context.Context, quoteID uuid.UUID) (*Invoice, error) {
	var inv Invoice
	err := r.pool.QueryRow(ctx, `
		SELECT i.id, i.quote_id, q.seq_id, q.customer_id, c.name,
		       i.amount, i.status, i.due_date, i.created_at
		FROM invoices i
		JOIN quotes q ON q.id = i.quote_id
		JOIN customers c ON c.id = q.customer_id
		WHERE i.quote_id = $1 AND i.deleted_at IS NULL
	`, quoteID).Scan(
		&inv.ID, &inv.QuoteID, &inv.QuoteSeqID, &inv.CustomerID, &inv.Customer,
		&inv.TotalAmount, &inv.Status, &inv.DueDate, &inv.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *Repository) ListPending(ctx context.Context) ([]Invoice, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT i.id, i.quote_id, q.seq_id, q.customer_id, c.name,
		       i.amount, i.status, i.due_date, i.created_at
		FROM invoices i
		JOIN quotes q ON q.id = i.quote_id
		JOIN customers c ON c.id = q.customer_id
		WHERE i.status = $1 AND i.deleted_at IS NULL
		ORDER BY i.due_date ASC
	`, StatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Invoice, 0)
	for rows.Next() {
		var inv Invoice
		if err := rows.Scan(
			&inv.ID, &inv.QuoteID, &inv.QuoteSeqID, &inv.CustomerID, &inv.Customer,
			&inv.TotalAmount, &inv.Status, &inv.DueDate, &inv.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, inv)
	}
	return items, rows.Err()
}

// MarkPaid settles a pending invoice.
func (r *Repository) MarkPaid(ctx context.Context, id uuid.UUID) error {
	ct, err := r.pool.Exec(ctx, `
		UPDATE invoices SET status = $2
		WHERE id = $1 AND status = $3 AND deleted_at IS NULL
	`, id, StatusPaid, StatusPending)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDeleteByQuote removes the quote's pending invoice. Paid invoices
// are kept for the books.
func (r *Repository) SoftDeleteByQuote(ctx context.Context, quoteID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE invoices SET deleted_at = now()
		WHERE quote_id = $1 AND status = $2 AND deleted_at IS NULL
	`, quoteID, StatusPending)
	return err
}
