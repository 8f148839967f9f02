// Package repository provides service catalog persistence.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Service struct {
	ID        uuid.UUID
	Name      string
	BasePrice float64
	Active    bool
	CreatedAt time.Time
}

func (r *Repository) ListActive(ctx context.Context) ([]Service, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, base_price, active, created_at
		FROM services
		WHERE active = TRUE
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Service, 0)
	for rows.Next() {
		var s Service
		if err := rows.Scan(&s.ID, &s.Name, &s.BasePrice, &s.Active, &s.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

// Upsert creates or reprices a catalog entry by its unique name.
func (r *Repository) Upsert(ctx context.Context, name string, basePrice float64) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		INSERT INTO services (id, name, base_price)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET base_price = EXCLUDED.base_price, active = TRUE
		RETURNING id
	`, uuid.New(), name, basePrice).Scan(&id)
	return id, err
}

// Deactivate hides a service from the catalog without breaking quote
// item references.
func (r *Repository) Deactivate(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE services SET active = FALSE WHERE id = $1`, id)
	return err
}
