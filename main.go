package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"dentflow/config"
	"dentflow/cron"
	"dentflow/database"
	appointmentTypeRepo "dentflow/database/repository/appointmenttype"
	providerRepo "dentflow/database/repository/provider"
	schedulerRepo "dentflow/database/repository/scheduler"
	"dentflow/handlers"
	"dentflow/metrics"
	"dentflow/middleware"
	"dentflow/routes"
	"dentflow/services/booking"
	"dentflow/services/notification"
	"dentflow/services/provider"
	"dentflow/services/tasks"
	"dentflow/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	shutdownTracing, err := utils.InitTracing(config.AppConfig.TracingExporter, nil)
	if err != nil {
		logger.Fatal("main: failed to initialise tracing", zap.Error(err))
	}

	database.InitDB()
	utils.InitRedis()
	if err := middleware.RegisterValidators(); err != nil {
		logger.Fatal("main: failed to register validators", zap.Error(err))
	}

	// repositories.
	apptRepo := schedulerRepo.NewMongoSchedulerRepo()
	provRepo := providerRepo.NewMongoProviderRepo()
	typeRepo := appointmentTypeRepo.NewMongoAppointmentTypeRepo()

	idxCtx, idxCancel := context.WithTimeout(context.Background(), 30*time.Second)
	for name, ensure := range map[string]func(context.Context) error{
		"appointments":      apptRepo.EnsureIndexes,
		"providers":         provRepo.EnsureIndexes,
		"appointment_types": typeRepo.EnsureIndexes,
	} {
		if err := ensure(idxCtx); err != nil {
			logger.Fatal("main: failed to ensure indexes", zap.String("collection", name), zap.Error(err))
		}
	}
	idxCancel()

	// task queue.
	queueClient := asynq.NewClient(cron.RedisOpt())
	worker := cron.InitNotificationWorker(cron.WorkerDeps{
		Appointments: apptRepo,
		Providers:    provRepo,
		Notifier:     notification.LogNotifier{},
	})

	// services.
	schedulingService := &booking.DefaultSchedulingService{
		Appointments: apptRepo,
		Providers:    provRepo,
		Types:        typeRepo,
		Locker:       utils.NewRedisScheduleLocker(utils.GetLockClient(), config.AppConfig.ScheduleLockTTL),
		Events:       tasks.NewAsynqPublisher(queueClient),
		Metrics:      metrics.NewSchedulingMetrics(nil),
		Options: booking.Options{
			SlotStep:        time.Duration(config.AppConfig.SlotStepMinutes) * time.Minute,
			CandidateLimit:  config.AppConfig.SlotCandidateLimit,
			DefaultTimezone: config.AppConfig.DefaultTimezone,
			ReminderLead:    config.AppConfig.ReminderLeadTime,
		},
	}
	providerService := &provider.DefaultProviderService{
		Repo:            provRepo,
		Types:           typeRepo,
		DefaultTimezone: config.AppConfig.DefaultTimezone,
	}

	handlerBundle := &handlers.HandlerBundle{
		Scheduling: &handlers.SchedulingHandler{Service: schedulingService},
		Providers:  &handlers.ProviderHandler{Service: providerService},
		Session:    &handlers.SessionHandler{Revocations: utils.GetLockClient()},
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))
	routes.RegisterRoutes(router, handlerBundle, utils.GetLockClient())

	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	utils.StartHealthMonitor(monitorCtx, 30*time.Second, utils.GetLockClient(), database.MongoClient)

	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	stopMonitor()
	worker.Shutdown()
	if err := queueClient.Close(); err != nil {
		logger.Warn("main: failed to close task queue client", zap.Error(err))
	}
	if err := database.Disconnect(ctx); err != nil {
		logger.Warn("main: failed to disconnect from MongoDB", zap.Error(err))
	}
	if err := shutdownTracing(ctx); err != nil {
		logger.Warn("main: failed to flush traces", zap.Error(err))
	}

	logger.Sugar().Info("main: server stopped gracefully")
	_ = logger.Sync()
}
