package main

import (
	"context"
	"log"
	"time"

	"wardrobeapi/config"
	"wardrobeapi/controllers"
	"wardrobeapi/dbhelper"
	"wardrobeapi/services"
	"wardrobeapi/storage"
	"wardrobeapi/tasks"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4/middleware"
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

func newItemStore(cfg *config.Config, logger *zap.Logger) storage.ItemStore {
	if cfg.Storage.Driver == "memory" {
		logger.Warn("using in-memory item store, data is lost on restart")
		return storage.NewMemoryItemStore()
	}
	db, err := dbhelper.SetupDB(cfg.DB)
	if err != nil {
		logger.Fatal("database setup failed", zap.Error(err))
	}
	return storage.NewGormItemStore(db)
}

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("config: %s", err)
	}
	logger := newLogger(cfg)
	defer logger.Sync()

	err = sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.Sentry.DSN,
		Environment:      cfg.App.Env,
		Release:          cfg.Sentry.Release,
		Debug:            false,
		TracesSampleRate: 1.0,
	})
	if err != nil {
		log.Fatalf("sentry.Init: %s", err)
	}
	defer sentry.Recover()
	defer sentry.Flush(2 * time.Second)

	store := newItemStore(cfg, logger)

	awsService := services.NewAWSService(cfg.R2)
	urlCache, err := services.NewURLCacheService(awsService, cfg.R2.BucketName, cfg.R2.PublicBaseURL, logger)
	if err != nil {
		logger.Fatal("Failed to initialize URL cache service", zap.Error(err))
	}

	generator, err := services.NewOutfitGenerator(context.Background(), cfg.LLM, logger)
	if err != nil {
		logger.Fatal("Failed to initialize outfit generator", zap.Error(err))
	}
	recommender := services.NewRecommender(generator, services.DefaultRandom, cfg.LLM.Timeout, logger)

	asynqClient := tasks.NewClient(cfg.Queue.BrokerAddress)
	defer asynqClient.Close()

	e := controllers.SetupServer(cfg, store, awsService, urlCache, recommender, asynqClient, logger)
	e.Debug = cfg.IsLocal()
	e.Use(middleware.Logger())
	e.Use(sentryecho.New(sentryecho.Options{Repanic: true}))

	logger.Info("starting api", zap.String("port", cfg.App.Port), zap.String("llm_provider", cfg.LLM.Provider))
	e.Logger.Fatal(e.Start(":" + cfg.App.Port))
}
