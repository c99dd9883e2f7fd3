package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/coursehive/coursehive-backend/api/routes"
	"github.com/coursehive/coursehive-backend/internal/courses"
	"github.com/coursehive/coursehive-backend/internal/purchases"
	"github.com/coursehive/coursehive-backend/pkg/cloudinary"
	"github.com/coursehive/coursehive-backend/pkg/config"
	"github.com/coursehive/coursehive-backend/pkg/db"
	"github.com/coursehive/coursehive-backend/pkg/logger"
	"github.com/coursehive/coursehive-backend/pkg/metrics"
	"github.com/coursehive/coursehive-backend/pkg/migrate"
	"github.com/coursehive/coursehive-backend/pkg/redis"
	"github.com/coursehive/coursehive-backend/pkg/stripe"
)

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

	stripeClient, err := stripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap stripe", err)
		os.Exit(1)
	}

	cloudinaryClient, err := cloudinary.NewClient(context.Background(), cfg.Cloudinary, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap cloudinary", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	purchaseMetrics := metrics.NewPurchaseMetrics(registry)

	courseService, err := courses.NewService(
		courses.NewRepository(dbClient.DB()),
		dbClient,
		cloudinaryClient,
		logg,
		cfg.Media.MaxUploadBytes(),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create course service", err)
		os.Exit(1)
	}

	purchaseService, err := purchases.NewService(
		purchases.NewRepository(dbClient.DB()),
		dbClient,
		purchases.NewStripeClient(stripeClient),
		courseService,
		logg,
		purchaseMetrics,
		stripeClient.Currency(),
		stripeClient.Timeout(),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create purchase service", err)
		os.Exit(1)
	}

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
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, courseService, purchaseService, registry),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
