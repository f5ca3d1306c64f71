package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/14harshaldhote/trackpro/internal/cache"
	"github.com/14harshaldhote/trackpro/internal/config"
	"github.com/14harshaldhote/trackpro/internal/database"
	"github.com/14harshaldhote/trackpro/internal/logger"
	"github.com/14harshaldhote/trackpro/internal/queue"
	"github.com/14harshaldhote/trackpro/internal/services/insights"
	"github.com/14harshaldhote/trackpro/internal/services/provision"
	"github.com/14harshaldhote/trackpro/internal/services/streak"
	"github.com/14harshaldhote/trackpro/internal/telemetry"
	"github.com/14harshaldhote/trackpro/internal/workers"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.WorkerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger)
	}()

	zapLogger.Info("starting_worker",
		zap.Bool("debug_mode", debugMode),
		zap.Duration("provision_interval", cfg.ProvisionInterval),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.OTELEnabled {
		tp, err := telemetry.InitTracer(ctx, "trackpro-worker", cfg.OTELEndpoint)
		if err != nil {
			zapLogger.Fatal("failed_to_init_tracing", zap.Error(err))
		}
		defer func() {
			if err := telemetry.Shutdown(context.Background(), tp); err != nil {
				zapLogger.Warn("tracer_shutdown_failed", zap.Error(err))
			}
		}()
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database", zap.Error(err))
		}
	}()

	if err := db.EnsureSchema(ctx); err != nil {
		zapLogger.Fatal("failed_to_ensure_schema", zap.Error(err))
	}
	zapLogger.Info("connected_to_database")

	var cacheClient cache.Cache = cache.Noop{}
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedisCache(cfg.RedisURL)
		if err != nil {
			zapLogger.Fatal("failed_to_connect_redis", zap.Error(err))
		}
		cacheClient = redisCache
		zapLogger.Info("connected_to_redis")
	} else {
		zapLogger.Warn("redis_not_configured_caching_disabled")
	}
	defer func() {
		if err := cacheClient.Close(); err != nil {
			zapLogger.Warn("failed_to_close_cache", zap.Error(err))
		}
	}()

	jobQueue := connectQueue(cfg.RabbitMQURL, zapLogger)
	defer func() {
		if err := jobQueue.Close(); err != nil {
			zapLogger.Warn("failed_to_close_rabbitmq", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_rabbitmq", zap.Int("prefetch", cfg.RabbitMQPrefetch))

	trackerRepo := database.NewTrackerRepository(db)
	templateRepo := database.NewTemplateRepository(db)
	instanceRepo := database.NewInstanceRepository(db)
	taskRepo := database.NewTaskRepository(db)
	noteRepo := database.NewNoteRepository(db)
	prefRepo := database.NewPreferenceRepository(db)

	provisioner := provision.NewService(trackerRepo, templateRepo, instanceRepo, prefRepo, cacheClient, zapLogger)
	streakEngine := streak.NewEngine(trackerRepo, instanceRepo, taskRepo, prefRepo, zapLogger)
	insightEngine := insights.NewEngine(trackerRepo, taskRepo, noteRepo, streakEngine, cacheClient, cfg.CacheTTL, zapLogger)

	processor := workers.NewProcessor(provisioner, insightEngine, jobQueue, zapLogger)
	scheduler := workers.NewScheduler(trackerRepo, jobQueue, cfg.ProvisionInterval, zapLogger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	msgChan, errChan, err := jobQueue.Consume(ctx, cfg.RabbitMQPrefetch)
	if err != nil {
		zapLogger.Fatal("failed_to_start_consuming", zap.Error(err))
	}

	go scheduler.Run(ctx)

	zapLogger.Info("worker_started")

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgChan:
				if !ok {
					zapLogger.Info("message_channel_closed")
					return
				}
				processor.HandleMessage(ctx, msg)
			}
		}
	}()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-errChan:
				if !ok {
					return
				}
				zapLogger.Error("queue_error", zap.Error(err))
			}
		}
	}()

	<-sigChan
	zapLogger.Info("shutdown_signal_received")
	cancel()
	zapLogger.Info("worker_stopped")
}

// connectQueue retries the broker connection with backoff; brokers often
// come up after the worker in compose environments.
func connectQueue(amqpURL string, zapLogger *zap.Logger) *queue.RabbitMQQueue {
	backoff := time.Second
	for {
		jobQueue, err := queue.NewRabbitMQQueue(amqpURL)
		if err == nil {
			return jobQueue
		}
		zapLogger.Warn("rabbitmq_connect_failed_retrying",
			zap.Error(err),
			zap.Duration("backoff", backoff))
		time.Sleep(backoff)
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}
