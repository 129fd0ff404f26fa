package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/auctionhub/auctionhub-backend/internal/auctions"
	"github.com/auctionhub/auctionhub-backend/internal/bidding"
	"github.com/auctionhub/auctionhub-backend/internal/broadcast"
	"github.com/auctionhub/auctionhub-backend/internal/budget"
	"github.com/auctionhub/auctionhub-backend/internal/engine"
	"github.com/auctionhub/auctionhub-backend/internal/scheduler"
	"github.com/auctionhub/auctionhub-backend/internal/timer"
	"github.com/auctionhub/auctionhub-backend/pkg/config"
	"github.com/auctionhub/auctionhub-backend/pkg/db"
	"github.com/auctionhub/auctionhub-backend/pkg/logger"
	"github.com/auctionhub/auctionhub-backend/pkg/metrics"
	"github.com/auctionhub/auctionhub-backend/pkg/migrate"
	"github.com/auctionhub/auctionhub-backend/pkg/outbox"
	"github.com/auctionhub/auctionhub-backend/pkg/redis"
)

const lockKeyFormat = "ah:scheduler-worker:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "scheduler-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "scheduler-worker"

	logg = logger.New(logger.Options{
		ServiceName: "scheduler-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	jobMetrics := metrics.NewJobMetrics(registry)

	auctionsRepo := auctions.NewRepository(dbClient.DB())
	bidRepo := bidding.NewRepository(dbClient.DB())
	outboxRepo := outbox.NewRepository(dbClient.DB())

	budgetService, err := budget.NewService(budget.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create budget service", err)
		os.Exit(1)
	}
	biddingService, err := bidding.NewService(bidRepo, budgetService, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create bidding service", err)
		os.Exit(1)
	}
	auctionsService, err := auctions.NewService(auctionsRepo, cfg.Auction)
	if err != nil {
		logg.Error(context.Background(), "failed to create auctions service", err)
		os.Exit(1)
	}
	realtime, err := broadcast.NewPublisher(redisClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create broadcast publisher", err)
		os.Exit(1)
	}

	eng, err := engine.NewEngine(engine.Deps{
		Config:    cfg.Auction,
		Logger:    logg,
		Tx:        dbClient,
		Events:    auctionsRepo,
		Bids:      bidRepo,
		Bidding:   biddingService,
		Budgets:   budgetService,
		Timers:    timer.NewCoordinator(),
		Outbox:    outbox.NewService(outboxRepo, logg),
		Broadcast: realtime,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auction engine", err)
		os.Exit(1)
	}
	defer eng.Stop()

	startJob, err := scheduler.NewStartDueAuctionsJob(scheduler.StartDueAuctionsJobParams{
		Logger:  logg,
		Finder:  auctionsService,
		Starter: eng,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create start-due job", err)
		os.Exit(1)
	}
	retentionJob, err := scheduler.NewOutboxRetentionJob(scheduler.OutboxRetentionJobParams{
		Logger:     logg,
		DB:         dbClient,
		Repository: outboxRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create outbox retention job", err)
		os.Exit(1)
	}

	lock, err := scheduler.NewRedisLock(redisClient, lockKey(cfg.App.Env), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create scheduler lock", err)
		os.Exit(1)
	}

	service, err := scheduler.NewService(scheduler.ServiceParams{
		Logger:   logg,
		Registry: scheduler.NewRegistry(startJob, retentionJob),
		Lock:     lock,
		Metrics:  jobMetrics,
		Interval: cfg.Scheduler.PollInterval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create scheduler service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting scheduler worker")

	metricsServer := &http.Server{
		Addr:    ":" + cfg.Scheduler.MetricsPort,
		Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "metrics server stopped unexpectedly", err)
		}
	}()
	defer func() {
		if err := metricsServer.Close(); err != nil {
			logg.Error(ctx, "error closing metrics server", err)
		}
	}()

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "scheduler worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "scheduler worker shutting down gracefully")
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
