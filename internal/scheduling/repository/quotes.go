package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"petcare_backend/internal/scheduling/domain"
)

type Quote struct {
	ID            uuid.UUID
	SeqID         int64
	CustomerID    uuid.UUID
	PetID         *uuid.UUID
	Type          domain.QuoteType
	TransportType *domain.TransportType
	Status        string
	TotalAmount   float64
	IsRecurring   bool
	Metadata      []byte
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Items    []QuoteItem
	Customer QuoteCustomer
	Pet      *QuotePet
}

type QuoteItem struct {
	ID          uuid.UUID
	Description string
	Quantity    int
	Price       float64
	Discount    float64
	ServiceID   *uuid.UUID
}

type QuoteCustomer struct {
	ID     uuid.UUID
	UserID *uuid.UUID
	Name   string
	Email  *string
	Phone  *string
}

type QuotePet struct {
	ID   uuid.UUID
	Name string
}

// GetQuoteForUpdate loads a quote with its items, customer and pet while
// holding a row lock on the quote for the remainder of the transaction.
// Concurrent schedule attempts on the same quote serialize here.
func (r *Repository) GetQuoteForUpdate(ctx context.Context, tx pgx.Tx, quoteID uuid.UUID) (*Quote, error) {
	var q Quote
	err := tx.QueryRow(ctx, `
		SELECT id, seq_id, customer_id, pet_id, type, transport_type, status,
		       total_amount, is_recurring, metadata, created_at, updated_at
		FROM quotes
		WHERE id = $1 AND deleted_at IS NULL
		FOR UPDATE
	`, quoteID).Scan(
		&q.ID, &q.SeqID, &q.CustomerID, &q.PetID, &q.Type, &q.TransportType,
		&q.Status, &q.TotalAmount, &q.IsRecurring, &q.Metadata, &q.CreatedAt, &q.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT id, description, quantity, price, discount, service_id
		FROM quote_items
		WHERE quote_id = $1
		ORDER BY sort_order ASC, id ASC
	`, quoteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var it QuoteItem
		if err := rows.Scan(&it.ID, &it.Description, &it.Quantity, &it.Price, &it.Discount, &it.ServiceID); err != nil {
			return nil, err
		}
		q.Items = append(q.Items, it)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	err = tx.QueryRow(ctx, `
		SELECT id, user_id, name, email, phone
		FROM customers
		WHERE id = $1
	`, q.CustomerID).Scan(&q.Customer.ID, &q.Customer.UserID, &q.Customer.Name, &q.Customer.Email, &q.Customer.Phone)
	if err != nil {
		return nil, err
	}

	if q.PetID != nil {
		var p QuotePet
		err = tx.QueryRow(ctx, `SELECT id, name FROM pets WHERE id = $1`, *q.PetID).Scan(&p.ID, &p.Name)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		if err == nil {
			q.Pet = &p
		}
	}

	return &q, nil
}

// UpdateQuoteStatus changes the status and appends a history row in one go.
func (r *Repository) UpdateQuoteStatus(ctx context.Context, tx pgx.Tx, quoteID uuid.UUID, oldStatus, newStatus string, changedBy uuid.UUID, reason *string) error {
	ct, err := tx.Exec(ctx, `
		UPDATE quotes SET status = $2, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`, quoteID, newStatus)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO quote_status_history (id, quote_id, old_status, new_status, changed_by, reason)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.New(), quoteID, oldStatus, newStatus, changedBy, reason)
	return err
}

// UpdateQuoteMetadata overwrites the metadata blob for a quote.
func (r *Repository) UpdateQuoteMetadata(ctx context.Context, tx pgx.Tx, quoteID uuid.UUID, metadata []byte) error {
	ct, err := tx.Exec(ctx, `
		UPDATE quotes SET metadata = $2, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`, quoteID, metadata)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
