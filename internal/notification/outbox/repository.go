// Package outbox stores pending outbound notifications so delivery can be
// retried independently of the request that produced them.
package outbox

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	ChannelEmail = "EMAIL"

	StatusPending    = "PENDENTE"
	StatusProcessing = "PROCESSANDO"
	StatusSent       = "ENVIADO"
	StatusFailed     = "FALHOU"

	maxAttempts = 5
)

var ErrNotFound = errors.New("outbox record not found")

type Record struct {
	ID        uuid.UUID
	Channel   string
	Recipient string
	Subject   string
	Body      string
	Status    string
	Attempts  int
	LastError *string
	CreatedAt time.Time
	SentAt    *time.Time
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Enqueue(ctx context.Context, channel, recipient, subject, body string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notification_outbox (id, channel, recipient, subject, body, status)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, channel, recipient, subject, body, StatusPending)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// ClaimPending atomically moves up to limit pending records into PROCESSANDO
// and returns them. SKIP LOCKED keeps concurrent dispatchers from claiming
// the same rows.
func (r *Repository) ClaimPending(ctx context.Context, limit int) ([]Record, error) {
	if limit < 1 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		UPDATE notification_outbox
		SET status = $1, attempts = attempts + 1
		WHERE id IN (
			SELECT id FROM notification_outbox
			WHERE status = $2
			ORDER BY created_at ASC
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, channel, recipient, subject, body, status, attempts, last_error, created_at, sent_at
	`, StatusProcessing, StatusPending, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Record, 0, limit)
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Channel, &rec.Recipient, &rec.Subject, &rec.Body,
			&rec.Status, &rec.Attempts, &rec.LastError, &rec.CreatedAt, &rec.SentAt); err != nil {
			return nil, err
		}
		items = append(items, rec)
	}
	return items, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Record, error) {
	var rec Record
	err := r.pool.QueryRow(ctx, `
		SELECT id, channel, recipient, subject, body, status, attempts, last_error, created_at, sent_at
		FROM notification_outbox
		WHERE id = $1
	`, id).Scan(&rec.ID, &rec.Channel, &rec.Recipient, &rec.Subject, &rec.Body,
		&rec.Status, &rec.Attempts, &rec.LastError, &rec.CreatedAt, &rec.SentAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return rec, err
}

func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE notification_outbox SET status = $1, sent_at = now(), last_error = NULL
		WHERE id = $2
	`, StatusSent, id)
	return err
}

// MarkFailed records a delivery failure. Records under the attempt cap go
// back to PENDENTE for another claim cycle; the rest land in FALHOU.
func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID, cause string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE notification_outbox
		SET status = CASE WHEN attempts >= $1 THEN $2 ELSE $3 END,
		    last_error = $4
		WHERE id = $5
	`, maxAttempts, StatusFailed, StatusPending, cause, id)
	return err
}
