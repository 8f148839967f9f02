package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

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
}

type NewAppointment struct {
	ID          uuid.UUID
	QuoteID     uuid.UUID
	CustomerID  uuid.UUID
	PetID       *uuid.UUID
	StartAt     time.Time
	Status      string
	Category    string
	PerformerID *uuid.UUID
	Pricing     []byte
	ServiceIDs  []uuid.UUID
	LegType     *string
}

// ListAppointmentsByQuote returns the live appointments attached to a quote,
// joined with their transport leg when one exists.
func (r *Repository) ListAppointmentsByQuote(ctx context.Context, tx pgx.Tx, quoteID uuid.UUID) ([]Appointment, error) {
	rows, err := tx.Query(ctx, `
		SELECT a.id, a.quote_id, a.customer_id, a.pet_id, a.start_at, a.status,
		       a.category, a.performer_id, a.pricing, t.leg_type
		FROM appointments a
		LEFT JOIN transport_legs t ON t.appointment_id = a.id
		WHERE a.quote_id = $1 AND a.deleted_at IS NULL
		ORDER BY a.start_at ASC
	`, quoteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Appointment, 0)
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(&a.ID, &a.QuoteID, &a.CustomerID, &a.PetID, &a.StartAt,
			&a.Status, &a.Category, &a.PerformerID, &a.Pricing, &a.LegType); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

// DeleteAppointmentsByQuote removes every appointment hanging off a quote.
// Transport legs and service joins go with them via ON DELETE CASCADE. Used
// by the rebuild path and by undo.
func (r *Repository) DeleteAppointmentsByQuote(ctx context.Context, tx pgx.Tx, quoteID uuid.UUID) (int64, error) {
	ct, err := tx.Exec(ctx, `DELETE FROM appointments WHERE quote_id = $1`, quoteID)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

// CreateAppointment inserts an appointment with its service links and, for
// logistics appointments, a transport leg row.
func (r *Repository) CreateAppointment(ctx context.Context, tx pgx.Tx, in NewAppointment) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO appointments (id, quote_id, customer_id, pet_id, start_at, status, category, performer_id, pricing)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, in.ID, in.QuoteID, in.CustomerID, in.PetID, in.StartAt, in.Status, in.Category, in.PerformerID, in.Pricing)
	if err != nil {
		return err
	}

	for _, sid := range in.ServiceIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO appointment_services (appointment_id, service_id)
			VALUES ($1, $2) ON CONFLICT DO NOTHING
		`, in.ID, sid); err != nil {
			return err
		}
	}

	if in.LegType != nil {
		if _, err := tx.Exec(ctx, `
			INSERT INTO transport_legs (id, appointment_id, leg_type)
			VALUES ($1, $2, $3)
		`, uuid.New(), in.ID, *in.LegType); err != nil {
			return err
		}
	}
	return nil
}
