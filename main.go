package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campusbook/config"
	"campusbook/cron"
	"campusbook/database"
	bookingRepoPkg "campusbook/database/repository/booking"
	notificationRepoPkg "campusbook/database/repository/notification"
	slotRepoPkg "campusbook/database/repository/slot"
	userRepoPkg "campusbook/database/repository/user"
	"campusbook/handlers"
	"campusbook/routes"
	"campusbook/services/booking"
	"campusbook/services/notification"
	"campusbook/services/realtime"
	"campusbook/services/reminder"
	"campusbook/services/slot"
	"campusbook/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitEventsClient()
	utils.FirebaseInit()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	// repositories.
	slotRepo := slotRepoPkg.NewMongoSlotRepo()
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()
	notifRepo := notificationRepoPkg.NewMongoNotificationRepo()
	userRepo := userRepoPkg.NewMongoUserRepo()

	// Push delivery queue client.
	pushQueue := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	})
	defer pushQueue.Close()

	eventBus := realtime.NewBus(utils.GetEventsClient())
	clock := utils.SystemClock{}

	// services.
	notificationService := notification.NewDefaultNotificationService(
		notifRepo,
		userRepo,
		eventBus,
		pushQueue,
		clock,
	)

	bookingService := &booking.DefaultBookingService{
		Slots:          slotRepo,
		Bookings:       bookingRepo,
		Notification:   notificationService,
		Events:         eventBus,
		Clock:          clock,
		HeavyThreshold: config.AppConfig.HeavyDayThreshold,
	}

	slotService := &slot.DefaultSlotService{
		Slots:        slotRepo,
		Bookings:     bookingRepo,
		Notification: notificationService,
		Events:       eventBus,
		Clock:        clock,
	}

	// Reminder scheduler, tuned from config.
	scheduler := reminder.NewScheduler(bookingRepo, notifRepo, notificationService, clock)
	if v := config.AppConfig.ReminderScanSeconds; v > 0 {
		scheduler.Interval = time.Duration(v) * time.Second
	}
	if v := config.AppConfig.ReminderHorizonHours; v > 0 {
		scheduler.Horizon = time.Duration(v) * time.Hour
	}
	if v := config.AppConfig.HeavyDayThreshold; v > 0 {
		scheduler.HeavyThreshold = v
	}
	scheduler.Start()

	// Background push delivery worker.
	cron.InitPushWorker(notificationService, notifRepo)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		SlotService:         slotService,
		BookingService:      bookingService,
		NotificationService: notificationService,
		Notifications:       notifRepo,
		Users:               userRepo,
	}

	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	go func() {
		logger.Sugar().Infof("Starting server on %s...", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("Server shutdown error: %v", err)
	}
	logger.Info("Server exited")
}
