package main

import (
	"context"
	"log"
	"time"

	"wardrobeapi/config"
	"wardrobeapi/services"
	"wardrobeapi/tasks"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func newLogger(cfg *config.Config) *zap.Logger {
	var logger *zap.Logger
	var err error
	if cfg.IsLocal() {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("zap: %s", err)
	}
	return logger
}

func initSentry(cfg *config.Config) error {
	return sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.Sentry.DSN,
		Environment:      cfg.App.Env,
		Release:          cfg.Sentry.Release,
		Debug:            false,
		TracesSampleRate: 1.0,
	})
}

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("config: %s", err)
	}
	logger := newLogger(cfg)
	defer logger.Sync()

	if err := initSentry(cfg); err != nil {
		log.Fatalf("sentry.Init: %s", err)
	}
	defer sentry.Recover()
	defer sentry.Flush(2 * time.Second)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.Queue.BrokerAddress},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				tasks.QueueStorage: 10,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("[Queue] task failed", zap.String("type", task.Type()), zap.Error(err))
			}),
		},
	)
	awsService := services.NewAWSService(cfg.R2)
	if err := awsService.InitPresignClient(context.Background()); err != nil {
		logger.Fatal("[Queue] Failed to initialize AWS provider: S3", zap.Error(err))
	}

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeDeleteImage, func(ctx context.Context, t *asynq.Task) error {
		return tasks.HandleDeleteImageTask(ctx, t, awsService, cfg.R2.BucketName, logger)
	})

	logger.Info("starting worker", zap.String("env", cfg.App.Env), zap.String("broker", cfg.Queue.BrokerAddress))
	if err := srv.Run(mux); err != nil {
		logger.Fatal("worker stopped", zap.Error(err))
	}
}
