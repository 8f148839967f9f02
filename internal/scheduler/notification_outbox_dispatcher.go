package scheduler

import (
	"context"
	"fmt"
	"time"

	"petcare_backend/internal/notification/outbox"
	"petcare_backend/platform/config"
	"petcare_backend/platform/logger"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NotificationOutboxDispatcher polls the outbox and turns claimed records
// into asynq delivery tasks.
type NotificationOutboxDispatcher struct {
	client *asynq.Client
	queue  string
	repo   *outbox.Repository
	log    *logger.Logger
}

func NewNotificationOutboxDispatcher(cfg config.SchedulerConfig, pool *pgxpool.Pool, log *logger.Logger) (*NotificationOutboxDispatcher, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	return &NotificationOutboxDispatcher{
		client: asynq.NewClient(opt),
		queue:  queue,
		repo:   outbox.New(pool),
		log:    log,
	}, nil
}

func (d *NotificationOutboxDispatcher) Close() error {
	if d == nil || d.client == nil {
		return nil
	}
	return d.client.Close()
}

func (d *NotificationOutboxDispatcher) Run(ctx context.Context) {
	if d == nil || d.client == nil || d.repo == nil {
		return
	}

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		records, err := d.repo.ClaimPending(ctx, 50)
		if err != nil {
			d.log.Warn("outbox claim failed", "error", err)
			continue
		}

		for _, rec := range records {
			task, err := NewNotificationOutboxDueTask(NotificationOutboxDuePayload{
				OutboxID: rec.ID.String(),
			})
			if err != nil {
				d.log.Warn("outbox task build failed", "outbox_id", rec.ID.String(), "error", err)
				continue
			}
			if _, err := d.client.EnqueueContext(ctx, task, asynq.Queue(d.queue)); err != nil {
				d.log.Warn("outbox task enqueue failed", "outbox_id", rec.ID.String(), "error", err)
				// Put the record back so the next cycle retries it.
				if markErr := d.repo.MarkFailed(ctx, rec.ID, err.Error()); markErr != nil {
					d.log.Warn("outbox mark failed", "outbox_id", rec.ID.String(), "error", markErr)
				}
			}
		}
	}
}
