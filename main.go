package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"consultly/config"
	"consultly/cron"
	"consultly/database"
	bookingRepo "consultly/database/repository/booking"
	"consultly/handlers"
	"consultly/middleware"
	"consultly/routes"
	"consultly/services/availability"
	"consultly/services/booking"
	"consultly/services/cache"
	"consultly/services/calendar"
	"consultly/services/crm"
	"consultly/services/notification"
	"consultly/services/resilience"
	"consultly/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	database.InitDB()
	utils.InitCache()

	ctx := context.Background()

	// Repositories.
	repo := bookingRepo.NewMongoBookingRepo()
	if err := repo.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to create booking indexes: %v", err)
	}

	// Providers: one explicitly constructed client per downstream system.
	calendarProvider, err := calendar.NewGoogleProvider(ctx,
		config.AppConfig.CalendarCredentials,
		config.AppConfig.CalendarID,
		config.AppConfig.BusinessHours.Timezone,
		config.AppConfig.CalendarEnabled,
	)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize calendar provider: %v", err)
	}
	crmProvider := crm.NewHTTPProvider(
		config.AppConfig.CrmBaseURL,
		config.AppConfig.CrmToken,
		config.AppConfig.CrmEnabled,
	)
	notifier := notification.NewWebhookSender(config.AppConfig.NotifyWebhookURL, logger)

	// Resilience: one breaker per provider, one shared retry policy.
	retrier := resilience.NewRetrier(resilience.RetryConfigFromApp(config.AppConfig.Resilience), logger)
	calendarBreaker := resilience.NewCircuitBreaker(resilience.BreakerConfigFromApp(config.AppConfig.Resilience))
	crmBreaker := resilience.NewCircuitBreaker(resilience.BreakerConfigFromApp(config.AppConfig.Resilience))

	cacheStore := cache.NewRedisStore(utils.GetCacheClient(), logger)

	engine := availability.NewEngine(
		calendarProvider, repo, cacheStore,
		calendarBreaker, retrier,
		config.AppConfig.BusinessHours, logger,
	)

	taskClient := asynq.NewClient(cron.RedisQueueOpt())
	defer taskClient.Close()

	bookingService := booking.NewDefaultBookingService(booking.DefaultBookingService{
		Repo:            repo,
		Engine:          engine,
		Cache:           cacheStore,
		Tasks:           taskClient,
		Calendar:        calendarProvider,
		Crm:             crmProvider,
		Notifier:        notifier,
		Rules:           config.AppConfig.FrequencyRules,
		CalendarBreaker: calendarBreaker,
		CrmBreaker:      crmBreaker,
		Retrier:         retrier,
		Logger:          logger,
	})

	cron.InitSyncWorker(bookingService)
	utils.StartHealthMonitor(utils.GetCacheClient(), database.MongoClient)

	// HTTP surface.
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	bookingHandler := handlers.NewBookingHandler(bookingService, logger)
	healthHandler := &handlers.HealthHandler{
		CalendarBreaker: calendarBreaker,
		CrmBreaker:      crmBreaker,
	}
	routes.RegisterRoutes(router, bookingHandler, healthHandler)

	srv := &http.Server{
		Addr:    ":" + config.AppConfig.AppPort,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", zap.String("port", config.AppConfig.AppPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	if err := database.CloseDB(shutdownCtx); err != nil {
		logger.Error("mongo disconnect failed", zap.Error(err))
	}
}
