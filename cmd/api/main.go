package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/auctionhub/auctionhub-backend/api/routes"
	"github.com/auctionhub/auctionhub-backend/internal/auctions"
	"github.com/auctionhub/auctionhub-backend/internal/bidding"
	"github.com/auctionhub/auctionhub-backend/internal/broadcast"
	"github.com/auctionhub/auctionhub-backend/internal/budget"
	"github.com/auctionhub/auctionhub-backend/internal/engine"
	"github.com/auctionhub/auctionhub-backend/internal/timer"
	"github.com/auctionhub/auctionhub-backend/pkg/config"
	"github.com/auctionhub/auctionhub-backend/pkg/db"
	"github.com/auctionhub/auctionhub-backend/pkg/logger"
	"github.com/auctionhub/auctionhub-backend/pkg/metrics"
	"github.com/auctionhub/auctionhub-backend/pkg/migrate"
	"github.com/auctionhub/auctionhub-backend/pkg/outbox"
	"github.com/auctionhub/auctionhub-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	engineMetrics := metrics.NewEngineMetrics(registry)

	auctionsRepo := auctions.NewRepository(dbClient.DB())
	bidRepo := bidding.NewRepository(dbClient.DB())
	budgetRepo := budget.NewRepository(dbClient.DB())

	budgetService, err := budget.NewService(budgetRepo)
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
		Outbox:    outbox.NewService(outbox.NewRepository(dbClient.DB()), logg),
		Broadcast: realtime,
		Metrics:   engineMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auction engine", err)
		os.Exit(1)
	}
	defer eng.Stop()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:   cfg,
			Logger:   logg,
			DBPinger: dbClient,
			Redis:    redisClient,
			Registry: registry,
			Auctions: auctionsService,
			Bidding:  biddingService,
			Budgets:  budgetService,
			Engine:   eng,
		}),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(timeoutCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}

	logg.Info(ctx, "api server stopped")
}
