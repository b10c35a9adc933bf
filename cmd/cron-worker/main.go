package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/haani-backend/api/controllers"
	"github.com/angelmondragon/haani-backend/internal/cron"
	"github.com/angelmondragon/haani-backend/internal/finance"
	"github.com/angelmondragon/haani-backend/internal/notifications"
	"github.com/angelmondragon/haani-backend/pkg/config"
	"github.com/angelmondragon/haani-backend/pkg/db"
	"github.com/angelmondragon/haani-backend/pkg/env"
	"github.com/angelmondragon/haani-backend/pkg/instance"
	"github.com/angelmondragon/haani-backend/pkg/logger"
	"github.com/angelmondragon/haani-backend/pkg/metrics"
	"github.com/angelmondragon/haani-backend/pkg/migrate"
	"github.com/angelmondragon/haani-backend/pkg/pubsub"
	"github.com/angelmondragon/haani-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
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

	var lock cron.Lock = cron.NewLocalLock()
	if redis.Configured(cfg.Redis) {
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
		if lock, err = cron.NewRedisLock(redisClient, cfg.Finance.LockTTL); err != nil {
			logg.Error(context.Background(), "failed to create cron lock", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "redis not configured; run a single cron-worker replica")
	}

	var publisher notifications.Publisher
	if cfg.PubSub.Enabled(cfg.GCP) {
		psClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap pubsub", err)
			os.Exit(1)
		}
		defer func() {
			if err := psClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing pubsub", err)
			}
		}()
		publisher = psClient
	}

	components, err := finance.New(finance.Params{
		Config:     cfg,
		Logger:     logg,
		DB:         dbClient,
		Publisher:  publisher,
		Registerer: prometheus.DefaultRegisterer,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to wire finance services", err)
		os.Exit(1)
	}

	registry, err := buildRegistry(cfg, logg, components)
	if err != nil {
		logg.Error(context.Background(), "failed to register cron jobs", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"instance":    instance.ID(),
	})

	metricsServer := &http.Server{
		Addr:              ":" + env.Get("PORT", cfg.App.Port),
		Handler:           opsRouter(cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "metrics server stopped", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func buildRegistry(cfg *config.Config, logg *logger.Logger, components *finance.Components) (*cron.Registry, error) {
	referralJob, err := cron.NewReferralDiscountJob(components.Referrals)
	if err != nil {
		return nil, err
	}
	safetyJob, err := cron.NewSafetyWindowJob(components.SafetyWindow)
	if err != nil {
		return nil, err
	}
	cleanupJob, err := cron.NewNotificationCleanupJob(cron.NotificationCleanupJobParams{
		Logger:     logg,
		Repository: components.Notifications,
		Retention:  cfg.Finance.ReadRetention,
	})
	if err != nil {
		return nil, err
	}

	registry := cron.NewRegistry()
	registry.Register(cfg.Finance.DiscountSchedule, referralJob)
	registry.Register(cfg.Finance.SafetySchedule, safetyJob)
	registry.Register(cfg.Finance.CleanupSchedule, cleanupJob)
	return registry, nil
}

func opsRouter(cfg *config.Config) http.Handler {
	r := chi.NewRouter()
	r.Get("/health/live", controllers.HealthLive(cfg))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}
