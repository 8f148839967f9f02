package scheduler

import (
	"context"
	"fmt"

	apptrepo "petcare_backend/internal/appointments/repository"
	"petcare_backend/internal/notification/email"
	"petcare_backend/internal/notification/outbox"
	"petcare_backend/internal/scheduling/domain"
	"petcare_backend/platform/config"
	"petcare_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Notifier delivers reminder messages to users.
type Notifier interface {
	NotifyUser(ctx context.Context, userID uuid.UUID, title, message, category string) error
}

type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	appts    *apptrepo.Repository
	outbox   *outbox.Repository
	sender   email.Sender
	notifier Notifier
	log      *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, pool *pgxpool.Pool, notifier Notifier, sender email.Sender, log *logger.Logger) (*Worker, error) {
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

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:   server,
		mux:      mux,
		appts:    apptrepo.New(pool),
		outbox:   outbox.New(pool),
		sender:   sender,
		notifier: notifier,
		log:      log,
	}

	mux.HandleFunc(TaskAppointmentReminder, w.handleAppointmentReminder)
	mux.HandleFunc(TaskNotificationOutboxDue, w.handleNotificationOutboxDue)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

// handleAppointmentReminder fires the day-before reminder. Appointments that
// were rebuilt or cancelled since enqueue time are silently skipped.
func (w *Worker) handleAppointmentReminder(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseAppointmentReminderPayload(task)
	if err != nil {
		return err
	}

	apptID, err := uuid.Parse(payload.AppointmentID)
	if err != nil {
		return err
	}

	info, err := w.appts.GetReminderInfo(ctx, apptID)
	if err != nil {
		if err == apptrepo.ErrNotFound {
			return nil
		}
		return err
	}

	if info.Status != domain.AppointmentConfirmado || info.CustomerUserID == nil {
		return nil
	}

	if w.notifier == nil {
		return nil
	}

	petName := "seu pet"
	if info.PetName != nil && *info.PetName != "" {
		petName = *info.PetName
	}
	msg := fmt.Sprintf("Lembrete: o atendimento de %s está marcado para %s.",
		petName, info.StartAt.Format("02/01/2006 15:04"))

	if err := w.notifier.NotifyUser(ctx, *info.CustomerUserID, "Lembrete de agendamento", msg, "LEMBRETE"); err != nil {
		w.log.NotificationError(info.CustomerUserID.String(), err)
	}
	return nil
}

// handleNotificationOutboxDue delivers one claimed outbox record through its
// channel. Failures are recorded on the row; the claim cycle retries them.
func (w *Worker) handleNotificationOutboxDue(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseNotificationOutboxDuePayload(task)
	if err != nil {
		return err
	}

	outboxID, err := uuid.Parse(payload.OutboxID)
	if err != nil {
		return err
	}

	rec, err := w.outbox.GetByID(ctx, outboxID)
	if err != nil {
		if err == outbox.ErrNotFound {
			return nil
		}
		return err
	}
	if rec.Status != outbox.StatusProcessing {
		return nil
	}

	if rec.Channel != outbox.ChannelEmail {
		return w.outbox.MarkFailed(ctx, rec.ID, fmt.Sprintf("unknown channel %q", rec.Channel))
	}
	if w.sender == nil {
		return w.outbox.MarkFailed(ctx, rec.ID, "email delivery disabled")
	}

	if err := w.sender.Send(ctx, rec.Recipient, rec.Subject, rec.Body); err != nil {
		w.log.Warn("outbox delivery failed", "outbox_id", rec.ID.String(), "error", err)
		return w.outbox.MarkFailed(ctx, rec.ID, err.Error())
	}
	return w.outbox.MarkSent(ctx, rec.ID)
}
