package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"barberhive/config"
	"barberhive/cron"
	"barberhive/database"
	bookingRepo "barberhive/database/repository/booking"
	historyRepo "barberhive/database/repository/history"
	shopRepo "barberhive/database/repository/shop"
	"barberhive/handlers"
	"barberhive/middleware"
	"barberhive/routes"
	"barberhive/services/booking"
	"barberhive/services/notification"
	"barberhive/services/shop"
	"barberhive/services/tasks"
	"barberhive/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	cfg := config.AppConfig

	database.InitDB()
	utils.InitRedis()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// repositories.
	db := database.DB()
	mongoShops := shopRepo.NewMongoShopRepo(db)
	bookings := bookingRepo.NewMongoBookingRepo(db)
	history := historyRepo.NewMongoHistoryRepo(db)

	indexers := []interface {
		EnsureIndexes(ctx context.Context) error
	}{mongoShops, bookings, history}
	for _, r := range indexers {
		if err := r.EnsureIndexes(ctx); err != nil {
			logger.Fatal("main: failed to ensure indexes", zap.Error(err))
		}
	}

	shops := shopRepo.NewCachedShopRepo(mongoShops, utils.GetCacheClient(), cfg.ShopCacheTTL)
	locker := utils.NewRedisShopLocker(utils.GetLockClient(), cfg.BookingLockTTL, cfg.BookingLockWait)

	// background queue.
	queueClient := asynq.NewClient(cron.QueueRedisOpt())
	defer queueClient.Close()
	publisher := tasks.NewAsynqPublisher(queueClient)

	// services.
	shopService := shop.NewShopService(shops, history, locker, shop.Options{
		TrialDays:         cfg.TrialDays,
		PaidPeriodDays:    cfg.PaidPeriodDays,
		EnforcePlanExpiry: cfg.EnforcePlanExpiry,
		TokenTTL:          cfg.OwnerTokenTTL,
	})
	bookingService := booking.NewBookingService(shopService, bookings, locker, publisher, utils.Location())
	bookingService.HorizonDays = cfg.BookingHorizonDays

	// firebase sign-in and owner push are optional.
	var firebase middleware.FirebaseVerifier
	var notifier cron.BookingNotifier
	fbClients, err := utils.FirebaseInit(context.Background())
	switch {
	case err != nil:
		logger.Warn("main: firebase disabled", zap.Error(err))
	case fbClients != nil:
		firebase = fbClients.Auth
		notifications, err := notification.NewDefaultNotificationService(fbClients.Messaging, shops)
		if err != nil {
			logger.Fatal("main: failed to init notification service", zap.Error(err))
		}
		notifier = notifications
	}
	worker := cron.InitBookingEventWorker(history, shops, notifier)

	utils.StartHealthMonitor([]*redis.Client{utils.GetCacheClient(), utils.GetLockClient()}, database.MongoClient)

	limiter := middleware.NewRateLimiter(cfg.MaxRequestsPerMin)
	stopJanitor := make(chan struct{})
	limiter.StartJanitor(time.Minute, stopJanitor)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger())

	handlerBundle := &handlers.HandlerBundle{
		Public:      handlers.NewPublicHandler(shopService, bookingService),
		Shop:        handlers.NewShopHandler(shopService, bookingService),
		Admin:       handlers.NewAdminHandler(shopService, bookingService),
		OwnerAuth:   middleware.OwnerAuthMiddleware(shopService, firebase),
		AdminAuth:   middleware.AdminAuthMiddleware(cfg.AdminToken),
		RateLimiter: limiter.Middleware(),
	}
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("starting server", zap.String("addr", srv.Addr), zap.String("timezone", utils.Location().String()))
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("main: server failed to start", zap.Error(err))
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("main: server is shutting down...")
	close(stopJanitor)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	worker.Shutdown()
	if err := database.Close(shutdownCtx); err != nil {
		logger.Warn("main: mongo disconnect failed", zap.Error(err))
	}

	logger.Info("main: server stopped gracefully")
	_ = logger.Sync()
}
