package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const transportServiceName = "Leva e Traz"

// EnsureTransportService returns the id of the catalog service used for
// logistics appointments, creating it on first use.
func (r *Repository) EnsureTransportService(ctx context.Context, tx pgx.Tx) (uuid.UUID, error) {
	var id uuid.UUID
	err := tx.QueryRow(ctx, `SELECT id FROM services WHERE name = $1`, transportServiceName).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, err
	}

	id = uuid.New()
	_, err = tx.Exec(ctx, `
		INSERT INTO services (id, name, base_price, active)
		VALUES ($1, $2, 0, TRUE)
		ON CONFLICT (name) DO UPDATE SET active = TRUE
		RETURNING id
	`, id, transportServiceName)
	if err != nil {
		return uuid.Nil, err
	}
	// ON CONFLICT may have kept an existing row; read back the real id.
	if err := tx.QueryRow(ctx, `SELECT id FROM services WHERE name = $1`, transportServiceName).Scan(&id); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// RecordAuditEvent appends an immutable audit row inside the transaction.
func (r *Repository) RecordAuditEvent(ctx context.Context, tx pgx.Tx, entityType string, entityID uuid.UUID, action string, performedBy uuid.UUID, reason *string) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO audit_events (id, entity_type, entity_id, action, performed_by, reason)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.New(), entityType, entityID, action, performedBy, reason)
	return err
}
