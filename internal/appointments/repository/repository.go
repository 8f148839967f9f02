package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("agendamento não encontrado")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Appointment struct {
	ID          uuid.UUID
	QuoteID     *uuid.UUID
	CustomerID  uuid.UUID
	PetID       *uuid.UUID
	StartAt     time.Time
	Status      string
	Category    string
	PerformerID *uuid.UUID
	Pricing     []byte
	LegType     *string
	PetName     *string
}

// ReminderInfo is the slice of appointment state the reminder task needs.
type ReminderInfo struct {
	StartAt        time.Time
	Status         string
	CustomerUserID *uuid.UUID
	PetName        *string
}

const baseSelect = `
	SELECT a.id, a.quote_id, a.customer_id, a.pet_id, a.start_at, a.status,
	       a.category, a.performer_id, a.pricing, t.leg_type, p.name
	FROM appointments a
	LEFT JOIN transport_legs t ON t.appointment_id = a.id
	LEFT JOIN pets p ON p.id = a.pet_id
`

func scanAppointment(row pgx.Row) (Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.QuoteID, &a.CustomerID, &a.PetID, &a.StartAt,
		&a.Status, &a.Category, &a.PerformerID, &a.Pricing, &a.LegType, &a.PetName)
	return a, err
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Appointment, error) {
	a, err := scanAppointment(r.pool.QueryRow(ctx, baseSelect+`
		WHERE a.id = $1 AND a.deleted_at IS NULL
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Appointment{}, ErrNotFound
	}
	return a, err
}

func (r *Repository) ListByQuote(ctx context.Context, quoteID uuid.UUID) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, baseSelect+`
		WHERE a.quote_id = $1 AND a.deleted_at IS NULL
		ORDER BY a.start_at ASC
	`, quoteID)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

// ListUpcoming returns confirmed appointments inside a time window, used by
// the staff agenda.
func (r *Repository) ListUpcoming(ctx context.Context, from, to time.Time) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, baseSelect+`
		WHERE a.start_at >= $1 AND a.start_at < $2 AND a.deleted_at IS NULL
		ORDER BY a.start_at ASC
	`, from, to)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func collect(rows pgx.Rows) ([]Appointment, error) {
	defer rows.Close()
	items := make([]Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

// GetReminderInfo loads the minimum needed to decide whether a reminder is
// still worth sending.
func (r *Repository) GetReminderInfo(ctx context.Context, id uuid.UUID) (ReminderInfo, error) {
	var info ReminderInfo
	err := r.pool.QueryRow(ctx, `
		SELECT a.start_at, a.status, c.user_id, p.name
		FROM appointments a
		JOIN customers c ON c.id = a.customer_id
		LEFT JOIN pets p ON p.id = a.pet_id
		WHERE a.id = $1 AND a.deleted_at IS NULL
	`, id).Scan(&info.StartAt, &info.Status, &info.CustomerUserID, &info.PetName)
	if errors.Is(err, pgx.ErrNoRows) {
		return ReminderInfo{}, ErrNotFound
	}
	return info, err
}
