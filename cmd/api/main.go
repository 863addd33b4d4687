package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dorozco/marketpulse-backend/api/routes"
	"github.com/dorozco/marketpulse-backend/internal/analytics"
	"github.com/dorozco/marketpulse-backend/internal/liveops"
	"github.com/dorozco/marketpulse-backend/internal/notifications"
	"github.com/dorozco/marketpulse-backend/pkg/config"
	"github.com/dorozco/marketpulse-backend/pkg/db"
	"github.com/dorozco/marketpulse-backend/pkg/logger"
	"github.com/dorozco/marketpulse-backend/pkg/metrics"
	"github.com/dorozco/marketpulse-backend/pkg/migrate"
	"github.com/dorozco/marketpulse-backend/pkg/pubsub"
	"github.com/dorozco/marketpulse-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	err = migrate.MaybeRunDev(ctx, cfg, logg, dbClient)
	requireResource(ctx, logg, "dev migrations", err)

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	liveOpsMetrics := metrics.NewLiveOpsMetrics(registry)

	bus := liveops.NewBus()

	source, err := liveops.NewQuerySource(dbClient.DB(), cfg.LiveOps.ActivityWindow)
	requireResource(ctx, logg, "liveops source", err)

	scheduler, err := liveops.NewScheduler(liveops.SchedulerParams{
		Logger:       logg,
		Source:       source,
		Bus:          bus,
		Metrics:      liveOpsMetrics,
		TickInterval: cfg.LiveOps.TickInterval,
		TickTimeout:  cfg.LiveOps.TickTimeout,
	})
	requireResource(ctx, logg, "liveops scheduler", err)
	defer scheduler.Close()

	analyticsService, err := analytics.NewService(
		analytics.NewRepository(dbClient.DB()),
		analytics.NewReportCache(cfg.LiveOps.CacheTTL),
		cfg.LiveOps.TopProducts,
	)
	requireResource(ctx, logg, "analytics service", err)

	notificationsService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()), bus)
	requireResource(ctx, logg, "notifications service", err)

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	if cfg.PubSub.OrdersSubscription != "" {
		pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
		requireResource(ctx, logg, "pubsub", err)
		defer func() {
			if err := pubsubClient.Close(); err != nil {
				logg.Error(ctx, "error closing pubsub", err)
			}
		}()

		consumer, err := notifications.NewConsumer(notificationsService, pubsubClient.OrdersSubscription(), logg)
		requireResource(ctx, logg, "order events consumer", err)

		go func() {
			if err := consumer.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				logg.Error(runCtx, "order events consumer stopped", err)
			}
		}()
	}

	handler := routes.NewRouter(routes.Deps{
		Config:        cfg,
		Logger:        logg,
		DB:            dbClient,
		Redis:         redisClient,
		Scheduler:     scheduler,
		Bus:           bus,
		LiveOps:       liveOpsMetrics,
		Analytics:     analyticsService,
		Notifications: notificationsService,
		Registry:      registry,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	serveCtx := logg.WithFields(runCtx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(serveCtx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(serveCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		logg.Info(serveCtx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(serveCtx, "api server shutdown failed", err)
		}
	}

	scheduler.Close()
	logg.Info(serveCtx, "api server stopped")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
