package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"barberhive/models"
	"barberhive/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const (
	TypeBookingEvent = "booking:event"
	QueueDefault     = "default"
	maxEventRetries  = 5
)

// EventKey identifies one booking event. Status changes only move forward, so
// a booking never sees the same target status twice.
func EventKey(event models.BookingEvent) string {
	return fmt.Sprintf("%s:%s:%s", event.Type, event.BookingID, event.ToStatus)
}

// NewBookingEventTask builds the queue task for a booking event. The task id
// is the event key so a duplicate publish is rejected by the queue.
func NewBookingEventTask(event models.BookingEvent) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(event)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeBookingEvent, b)
	opts := []asynq.Option{
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(maxEventRetries),
		asynq.TaskID(EventKey(event)),
		asynq.Timeout(30 * time.Second),
	}
	return task, opts, nil
}

// ParseBookingEvent decodes a task payload written by NewBookingEventTask.
func ParseBookingEvent(task *asynq.Task) (models.BookingEvent, error) {
	var event models.BookingEvent
	if err := json.Unmarshal(task.Payload(), &event); err != nil {
		return event, fmt.Errorf("invalid booking event payload: %w", err)
	}
	if event.Type == "" || event.ShopID == "" || event.BookingID == "" {
		return event, fmt.Errorf("incomplete booking event payload")
	}
	return event, nil
}

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// AsynqPublisher hands booking events to the background worker.
type AsynqPublisher struct {
	client enqueuer
}

func NewAsynqPublisher(client *asynq.Client) *AsynqPublisher {
	return &AsynqPublisher{client: client}
}

func (p *AsynqPublisher) PublishBookingEvent(ctx context.Context, event models.BookingEvent) error {
	task, opts, err := NewBookingEventTask(event)
	if err != nil {
		return fmt.Errorf("failed to build booking event task: %w", err)
	}
	info, err := p.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
			utils.GetLogger().Debug("booking event already queued", zap.String("key", EventKey(event)))
			return nil
		}
		return fmt.Errorf("failed to enqueue booking event: %w", err)
	}
	utils.GetLogger().Debug("booking event queued",
		zap.String("taskID", info.ID), zap.String("type", event.Type), zap.String("bookingID", event.BookingID))
	return nil
}
