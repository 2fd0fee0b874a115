// Package main is the entry point for the newsletter-analytics API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"newsletter-analytics/internal/app/service"
	"newsletter-analytics/internal/config"
	"newsletter-analytics/internal/domain"
	"newsletter-analytics/internal/extract"
	"newsletter-analytics/internal/infra/postgres"
	"newsletter-analytics/internal/infra/postgres/migrations"
	"newsletter-analytics/internal/infra/provider/registry"
	rediscache "newsletter-analytics/internal/infra/redis"
	"newsletter-analytics/internal/job"
	"newsletter-analytics/internal/logger"
	"newsletter-analytics/internal/report"
	"newsletter-analytics/internal/transport/httpserver"
	"newsletter-analytics/internal/validator"
	"newsletter-analytics/pkg/locker"
)

func main() {
	cfg, err := config.Load(os.Getenv("ANALYTICS_CONFIG"))
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, err := logger.New(
		logger.Config{
			Level:   cfg.Logger.Level,
			Format:  cfg.Logger.Format,
			Output:  cfg.Logger.Output,
			Service: cfg.App.Name,
		},
		logger.SentryConfig{
			Enabled:     cfg.Sentry.Enabled,
			DSN:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
			SampleRate:  cfg.Sentry.SampleRate,
		},
	)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Close() }()

	log.Info("starting newsletter-analytics",
		zap.String("env", cfg.App.Env),
		zap.Int("port", cfg.App.Port),
	)

	db, err := postgres.NewConnection(
		postgres.Config{
			DSN:          cfg.Database.DSN(),
			MaxOpenConns: cfg.Database.MaxOpenConns,
			MaxIdleConns: cfg.Database.MaxIdleConns,
			MaxLifetime:  cfg.Database.MaxLifetime,
		},
		log.Logger,
	)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() { _ = postgres.Close(db) }()

	if err := migrations.Run(db); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}
	log.Info("database migrations completed")

	repo := postgres.NewRepository(db)

	redisClient := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    []string{cfg.Redis.Addr()},
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatal("failed to connect to Redis", zap.Error(err))
	}
	defer func() { _ = redisClient.Close() }()
	log.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr()))

	var cache domain.Cache
	if cfg.Cache.Enabled {
		cache = rediscache.NewCache(redisClient, log.Logger, cfg.Cache.KeyPrefix)
		log.Info("document cache enabled",
			zap.Duration("document_ttl", cfg.Cache.DocumentTTL),
			zap.String("key_prefix", cfg.Cache.KeyPrefix),
		)
	} else {
		log.Info("document cache disabled")
	}

	clients := registry.NewClients(cfg.Provider, cache, cfg.Cache.DocumentTTL, log.Logger)
	distLocker := locker.NewRedisLocker(redisClient, log.Logger, locker.WithKeyPrefix(cfg.Cache.KeyPrefix))

	analysisSvc := service.NewAnalysisService(
		service.Sources{
			Feed:        clients.Feed,
			Pages:       clients.Pages,
			HomePages:   clients.HomePages,
			Subscribers: clients.Subscribers,
		},
		extract.NewExtractor(log.Logger),
		repo,
		distLocker,
		service.AnalysisConfig{
			Workers:      cfg.Analysis.Workers,
			RequestDelay: cfg.Analysis.RequestDelay,
			DefaultLimit: cfg.Analysis.DefaultLimit,
			MaxLimit:     cfg.Analysis.MaxLimit,
			TopN:         cfg.Analysis.TopN,
			LockTTL:      cfg.Analysis.LockTTL,
		},
		log.Logger,
	)

	reports := report.NewXLSXWriter(cfg.Report.OutputDir, log.Logger)

	server, err := httpserver.NewServer(
		httpserver.ServerConfig{
			Port:            cfg.App.Port,
			BodyLimit:       1024 * 1024, // 1MB
			Debug:           cfg.App.Debug,
			AnalysisTimeout: cfg.Analysis.Timeout,
			AllowOrigins:    cfg.App.AllowOrigins,
		},
		analysisSvc,
		reports,
		validator.New(),
		log.Logger,
		func(ctx context.Context) error { return postgres.HealthCheck(ctx, db) },
		func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	)
	if err != nil {
		log.Fatal("failed to create HTTP server", zap.Error(err))
	}

	var scheduler *job.RefreshScheduler
	if cfg.Schedule.Enabled && len(cfg.Schedule.Publications) > 0 {
		scheduler = job.NewRefreshScheduler(
			analysisSvc,
			reports,
			job.RefreshConfig{
				Publications: cfg.Schedule.Publications,
				Interval:     cfg.Schedule.Interval,
				Timeout:      cfg.Schedule.Timeout,
			},
			log.Logger,
			distLocker,
		)
		scheduler.Start(cfg.Schedule.OnStartup)
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("shutdown signal received")

		if scheduler != nil {
			scheduler.Stop()
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Error("server shutdown error", zap.Error(err))
		}
	}()

	if err := server.Start(cfg.App.Port); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
