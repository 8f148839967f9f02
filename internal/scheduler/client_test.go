package scheduler

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
)

type testSchedulerConfig struct {
	redisURL string
}

func (c testSchedulerConfig) GetRedisURL() string       { return c.redisURL }
func (c testSchedulerConfig) GetRedisTLSInsecure() bool { return false }
func (c testSchedulerConfig) GetAsynqQueueName() string { return "default" }
func (c testSchedulerConfig) GetAsynqConcurrency() int  { return 1 }

func TestScheduleAppointmentReminderEnqueues(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(testSchedulerConfig{redisURL: "redis://" + mr.Addr()})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	err = client.ScheduleAppointmentReminder(context.Background(), AppointmentReminderPayload{
		AppointmentID: uuid.NewString(),
		QuoteID:       uuid.NewString(),
	}, time.Now().Add(24*time.Hour))
	if err != nil {
		t.Fatalf("ScheduleAppointmentReminder: %v", err)
	}

	var found bool
	for _, key := range mr.Keys() {
		if strings.Contains(key, "scheduled") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected the task in the scheduled set, keys: %v", mr.Keys())
	}
}

func TestNewClientRequiresRedisURL(t *testing.T) {
	if _, err := NewClient(testSchedulerConfig{}); err == nil {
		t.Fatalf("expected an error without a redis url")
	}
}

func TestReminderPayloadRoundTrip(t *testing.T) {
	in := AppointmentReminderPayload{AppointmentID: uuid.NewString(), QuoteID: uuid.NewString()}
	task, err := NewAppointmentReminderTask(in)
	if err != nil {
		t.Fatalf("NewAppointmentReminderTask: %v", err)
	}
	out, err := ParseAppointmentReminderPayload(task)
	if err != nil {
		t.Fatalf("ParseAppointmentReminderPayload: %v", err)
	}
	if out != in {
		t.Fatalf("payload mismatch: %+v vs %+v", out, in)
	}
}
