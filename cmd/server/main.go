package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/accounts"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/api"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/audit"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/cache"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/config"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/db"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/events"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/logging"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/services"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/store"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/store/memory"
	"github.com/expotoworld/expotoworld/backend/booking-service/internal/workflow"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := logging.New(cfg.Server.AppEnv)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Booking Service starting",
		zap.String("git_sha", os.Getenv("GIT_SHA")),
		zap.String("build_time", os.Getenv("BUILD_TIME")),
		zap.String("env", cfg.Server.AppEnv))

	ctx := context.Background()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		logger.Warn("AWS config unavailable, AWS integrations disabled", zap.Error(err))
		awsCfg = aws.Config{}
	}
	awsReady := err == nil

	st, err := openStore(ctx, cfg, awsCfg, awsReady, logger)
	if err != nil {
		logger.Fatal("Failed to open store", zap.Error(err))
	}
	defer st.Close()

	// Read cache
	var readCache cache.Cache
	if cfg.Redis.Enabled {
		rc, err := cache.NewRedisCache(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
		if err != nil {
			logger.Warn("Redis unavailable, using in-process cache", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
			readCache = cache.NewMemory(cfg.Redis.TTL)
		} else {
			defer rc.Close()
			readCache = rc
		}
	} else {
		readCache = cache.NewMemory(cfg.Redis.TTL)
	}

	// Domain event stream
	var publisher events.Publisher = events.Nop{}
	if cfg.Kafka.Enabled {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
	}
	defer publisher.Close()

	// Notifications
	var (
		emailSender services.EmailSender = services.LogSender{Logger: logger}
		smsSender   services.SMSSender   = services.LogSender{Logger: logger}
	)
	if cfg.Notifications.Enabled && awsReady {
		emailSender = services.NewEmailService(awsCfg, cfg.Notifications.FromEmail, cfg.Notifications.ReplyTo)
		smsSender = services.NewSmsService(awsCfg)
	}
	metrics := &services.Metrics{}
	dispatcher := services.NewDispatcher(services.DispatcherConfig{
		QueueSize:   cfg.Notifications.QueueSize,
		Workers:     cfg.Notifications.Workers,
		MaxAttempts: cfg.Notifications.MaxAttempts,
		BaseBackoff: cfg.Notifications.BaseBackoff,
	}, emailSender, smsSender, st, metrics, logger)
	dispatcher.Start()
	notifier := services.NewNotifier(dispatcher, cfg.Notifications.OpsMailbox, logger)

	var reporter *services.MetricsReporter
	if cfg.Metrics.Enabled && awsReady {
		reporter = services.NewMetricsReporter(cloudwatch.NewFromConfig(awsCfg), cfg.Metrics.Namespace, metrics, cfg.Metrics.Interval, logger)
		reporter.Start()
	}

	// Audit trail
	var archive audit.Archiver
	if awsReady && cfg.Audit.Bucket != "" {
		archive = audit.NewS3Archive(awsCfg, cfg.Audit.Bucket)
	}
	trail := audit.NewTrail(logger, archive, cfg.Audit.Prefix, cfg.Audit.BatchSize, cfg.Audit.FlushInterval)
	trail.Start()

	engine := workflow.New(workflow.Deps{
		Store:    st,
		Notifier: notifier,
		Cache:    readCache,
		Events:   publisher,
		Audit:    trail,
		Logger:   logger,
	})
	accountSvc := accounts.NewService(st, trail, logger)

	// Set Gin mode based on environment
	if cfg.Server.GinMode != "" {
		gin.SetMode(cfg.Server.GinMode)
	} else if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	handler := api.NewHandler(engine, accountSvc, st, logger, cfg.Server.RequestTimeout)
	router := api.NewRouter(handler, cfg.JWT.Secret, logger, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting booking service", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down booking service...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	// Drain background workers after the last request has finished
	dispatcher.Stop()
	if reporter != nil {
		reporter.Stop()
	}
	trail.Stop()
	logger.Info("Booking service stopped")
}

// openStore picks the persistence backend from STORE_DRIVER
func openStore(ctx context.Context, cfg *config.Config, awsCfg aws.Config, awsReady bool, logger *zap.Logger) (store.Store, error) {
	if cfg.Database.Driver == "memory" {
		logger.Warn("Using in-memory store, data is lost on restart")
		return memory.New(), nil
	}

	var sm config.SecretsAPI
	if awsReady {
		sm = secretsmanager.NewFromConfig(awsCfg)
	}
	secretCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	dsn, err := cfg.ResolveDatabaseURL(secretCtx, sm)
	if err != nil {
		return nil, err
	}
	return db.NewDatabaseWithRetry(dsn, cfg.Database.MaxRetries, cfg.Database.InitialDelay, logger)
}
