package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"barberhive/config"
	historyRepo "barberhive/database/repository/history"
	"barberhive/models"
	"barberhive/services/tasks"
	"barberhive/utils"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// HistoryAppender records shop activity.
type HistoryAppender interface {
	Append(ctx context.Context, entry *models.HistoryEntry) error
}

// BookingCounter keeps the per-shop booking total.
type BookingCounter interface {
	IncrementBookingCount(ctx context.Context, id string, delta int64) error
}

// BookingNotifier pushes booking activity to the shop owner.
type BookingNotifier interface {
	NotifyBookingEvent(ctx context.Context, event models.BookingEvent) error
}

// QueueRedisOpt is the connection the publisher and the worker share.
func QueueRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// InitBookingEventWorker runs the booking event consumer in background. The
// returned server must be shut down on exit.
func InitBookingEventWorker(history HistoryAppender, counter BookingCounter, notifier BookingNotifier) *asynq.Server {
	concurrency := config.AppConfig.WorkerConcurrency
	if concurrency <= 0 {
		concurrency = 10
	}

	srv := asynq.NewServer(
		QueueRedisOpt(),
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				tasks.QueueDefault: 1,
			},
			Logger: utils.GetLogger().Sugar(),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeBookingEvent, HandleBookingEvent(history, counter, notifier))

	go monitorQueueConnection()

	go func() {
		logger := utils.GetLogger()
		logger.Info("starting booking event worker", zap.Int("concurrency", concurrency))
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Run(mux)
			if err == nil {
				break
			}
			logger.Error("booking event worker failed to start",
				zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
			if attempts == maxAttempts {
				logger.Fatal("booking event worker: max retry attempts reached")
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()

	return srv
}

// HandleBookingEvent writes each booking event to the shop's history, and for
// new bookings bumps the shop's booking total and notifies the owner. A
// redelivered event is recognized by its history id and not counted or
// pushed twice. counter and notifier may be nil.
func HandleBookingEvent(history HistoryAppender, counter BookingCounter, notifier BookingNotifier) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		logger := utils.GetLogger()
		event, err := tasks.ParseBookingEvent(task)
		if err != nil {
			logger.Error("dropping booking event", zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}

		entry := HistoryEntryFor(event)
		if err := history.Append(ctx, entry); err != nil {
			if errors.Is(err, historyRepo.ErrEntryExists) {
				logger.Debug("booking event already recorded", zap.String("historyID", entry.ID))
				return nil
			}
			return err
		}

		if event.Type == models.EventBookingCreated && counter != nil {
			if err := counter.IncrementBookingCount(ctx, event.ShopID, 1); err != nil {
				// The entry is in; a retry would stop at the duplicate check.
				logger.Warn("failed to bump booking total", zap.String("shopID", event.ShopID), zap.Error(err))
			}
		}
		if notifier != nil {
			if err := notifier.NotifyBookingEvent(ctx, event); err != nil {
				logger.Warn("failed to notify shop owner", zap.String("shopID", event.ShopID), zap.Error(err))
			}
		}

		logger.Debug("booking event recorded",
			zap.String("type", event.Type), zap.String("shopID", event.ShopID), zap.String("bookingID", event.BookingID))
		return nil
	}
}

// HistoryEntryFor renders a booking event as a history line. The id derives
// from the event key so redeliveries collide.
func HistoryEntryFor(event models.BookingEvent) *models.HistoryEntry {
	var desc string
	switch event.Type {
	case models.EventBookingCreated:
		desc = fmt.Sprintf("%s booked %s on %s at %s", event.ClientName, event.Service, event.Date, event.StartTime)
	case models.EventBookingStatusChanged:
		desc = fmt.Sprintf("Booking for %s on %s at %s moved from %s to %s",
			event.ClientName, event.Date, event.StartTime, event.FromStatus, event.ToStatus)
	default:
		desc = event.Type
	}
	occurred := event.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now()
	}
	return &models.HistoryEntry{
		ID:          uuid.NewSHA1(uuid.NameSpaceOID, []byte(tasks.EventKey(event))).String(),
		ShopID:      event.ShopID,
		Type:        event.Type,
		Description: desc,
		BookingID:   event.BookingID,
		Actor:       event.Actor,
		OccurredAt:  occurred.UTC(),
	}
}

// monitorQueueConnection pings the queue's Redis periodically to surface
// outages in the logs.
func monitorQueueConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})

	ctx := context.Background()
	for {
		if err := client.Ping(ctx).Err(); err != nil {
			utils.GetLogger().Warn("queue redis connection lost", zap.Error(err))
		}
		time.Sleep(10 * time.Second)
	}
}
