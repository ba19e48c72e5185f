package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"campusbook/config"
	notificationRepo "campusbook/database/repository/notification"
	"campusbook/models"
	"campusbook/services/notification"
	"campusbook/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

// InitPushWorker runs the async push delivery worker in background.
func InitPushWorker(notifSvc notification.NotificationService, ledger notificationRepo.NotificationRepository) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSendPush, handlePushTask(notifSvc, ledger))

	// Start Redis health monitor
	go monitorRedisConnection()

	// Start async worker with retry logic
	go func() {
		log.Println("[PushWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[PushWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[PushWorker] max retry attempts reached, exiting")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

func handlePushTask(notifSvc notification.NotificationService, ledger notificationRepo.NotificationRepository) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.PushPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[PushWorker] invalid payload: %v", err)
			return err
		}

		if err := notifSvc.SendPush(ctx, p.UserID, p.Title, p.Body, p.Data); err != nil {
			// Delivery is at-most-once: the ledger entry upstream stays in
			// place and this task is not retried.
			log.Printf("[PushWorker] failed to deliver push for notification %s: %v", p.NotificationID, err)
			return nil
		}

		if err := ledger.MarkSent(p.NotificationID, time.Now()); err != nil {
			log.Printf("[PushWorker] failed to mark notification %s sent: %v", p.NotificationID, err)
		}
		return nil
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[PushWorker] redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
