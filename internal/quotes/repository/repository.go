package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"petcare_backend/internal/scheduling/domain"
)

var ErrNotFound = errors.New("orçamento não encontrado")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

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

	Items         []Item
	CustomerName  string
	CustomerPhone *string
	PetName       *string
}

type Item struct {
	ID          uuid.UUID
	Description string
	Quantity    int
	Price       float64
	Discount    float64
	ServiceID   *uuid.UUID
}

type StatusHistoryEntry struct {
	OldStatus string
	NewStatus string
	ChangedBy *uuid.UUID
	Reason    *string
	CreatedAt time.Time
}

// Dependencies summarizes what hangs off a quote before destructive actions.
type Dependencies struct {
	Appointments int
	HasInvoice   bool
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Quote, error) {
	var q Quote
	err := r.pool.QueryRow(ctx, `
		SELECT q.id, q.seq_id, q.customer_id, q.pet_id, q.type, q.transport_type,
		       q.status, q.total_amount, q.is_recurring, q.metadata,
		       q.created_at, q.updated_at, c.name, c.phone, p.name
		FROM quotes q
		JOIN customers c ON c.id = q.customer_id
		LEFT JOIN pets p ON p.id = q.pet_id
		WHERE q.id = $1 AND q.deleted_at IS NULL
	`, id).Scan(
		&q.ID, &q.SeqID, &q.CustomerID, &q.PetID, &q.Type, &q.TransportType,
		&q.Status, &q.TotalAmount, &q.IsRecurring, &q.Metadata,
		&q.CreatedAt, &q.UpdatedAt, &q.CustomerName, &q.CustomerPhone, &q.PetName,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, description, quantity, price, discount, service_id
		FROM quote_items
		WHERE quote_id = $1
		ORDER BY sort_order ASC, id ASC
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Description, &it.Quantity, &it.Price, &it.Discount, &it.ServiceID); err != nil {
			return nil, err
		}
		q.Items = append(q.Items, it)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return &q, nil
}

// UpdateStatus changes the status and appends a history row.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, oldStatus, newStatus string, changedBy uuid.UUID, reason *string) error {
	ct, err := r.pool.Exec(ctx, `
		UPDATE quotes SET status = $2, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL AND status = $3
	`, id, newStatus, oldStatus)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO quote_status_history (id, quote_id, old_status, new_status, changed_by, reason)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.New(), id, oldStatus, newStatus, changedBy, reason)
	return err
}

func (r *Repository) ListStatusHistory(ctx context.Context, id uuid.UUID) ([]StatusHistoryEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT old_status, new_status, changed_by, reason, created_at
		FROM quote_status_history
		WHERE quote_id = $1
		ORDER BY created_at ASC
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]StatusHistoryEntry, 0)
	for rows.Next() {
		var e StatusHistoryEntry
		if err := rows.Scan(&e.OldStatus, &e.NewStatus, &e.ChangedBy, &e.Reason, &e.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

func (r *Repository) GetDependencies(ctx context.Context, id uuid.UUID) (Dependencies, error) {
	var deps Dependencies
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM appointments WHERE quote_id = $1 AND deleted_at IS NULL),
			EXISTS(SELECT 1 FROM invoices WHERE quote_id = $1 AND deleted_at IS NULL)
	`, id).Scan(&deps.Appointments, &deps.HasInvoice)
	return deps, err
}
