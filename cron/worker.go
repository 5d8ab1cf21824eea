package cron

import (
	"context"
	"log"
	"time"

	"consultly/config"
	"consultly/services/booking"
	"consultly/services/tasks"

	"github.com/hibiken/asynq"
)

// RedisQueueOpt returns the asynq connection options for the sync queue.
func RedisQueueOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// InitSyncWorker runs the background sync worker. Calendar pushes, CRM
// pushes and confirmation notifications all flow through this queue, so
// task failures are observable and the backlog is bounded by Redis rather
// than by detached goroutines.
func InitSyncWorker(svc *booking.DefaultBookingService) {
	srv := asynq.NewServer(
		RedisQueueOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeCalendarSync, handleSyncTask(svc.HandleCalendarSync))
	mux.HandleFunc(tasks.TypeCrmSync, handleSyncTask(svc.HandleCrmSync))
	mux.HandleFunc(tasks.TypeConfirmation, handleSyncTask(svc.HandleConfirmation))

	// Start async worker with retry logic
	go func() {
		log.Println("[SyncWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[SyncWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[SyncWorker] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

func handleSyncTask(handler func(context.Context, tasks.SyncPayload) error) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		payload, err := tasks.ParsePayload(task)
		if err != nil {
			log.Printf("[SyncWorker] invalid payload for %s: %v", task.Type(), err)
			return err
		}
		return handler(ctx, payload)
	}
}
