package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/rsmaster/o2c-backend/api/routes"
	checkoutpkg "github.com/rsmaster/o2c-backend/internal/checkout"
	"github.com/rsmaster/o2c-backend/internal/consumer"
	"github.com/rsmaster/o2c-backend/pkg/config"
	"github.com/rsmaster/o2c-backend/pkg/db"
	"github.com/rsmaster/o2c-backend/pkg/events"
	"github.com/rsmaster/o2c-backend/pkg/inbox"
	"github.com/rsmaster/o2c-backend/pkg/kafka"
	"github.com/rsmaster/o2c-backend/pkg/logger"
	"github.com/rsmaster/o2c-backend/pkg/migrate"
	"github.com/rsmaster/o2c-backend/pkg/outbox"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "checkout-service"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "checkout-service"

	logg = logger.New(logger.Options{
		ServiceName: "checkout-service",
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

	if err := kafka.EnsureDefaultTopics(context.Background(), cfg.Kafka); err != nil {
		logg.Error(context.Background(), "failed to ensure kafka topics", err)
		os.Exit(1)
	}

	producer, err := kafka.NewProducer(cfg.Kafka)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap kafka producer", err)
		os.Exit(1)
	}
	defer producer.Close()

	repo := checkoutpkg.NewRepository(dbClient.DB())
	emitter := outbox.NewEmitter(outbox.NewRepository(dbClient.DB()))
	handler := checkoutpkg.NewHandler(repo, dbClient, emitter, inbox.NewGuard("checkout-service"), logg)

	consumerClient, err := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.CheckoutGroup, events.TopicOrderEvents)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap kafka consumer", err)
		os.Exit(1)
	}
	defer consumerClient.Close()

	runner := consumer.NewRunner("checkout-service", consumerClient, consumer.NewDLQPublisher(producer), cfg.Consumer, logg)
	runner.On(events.TopicOrderEvents, handler)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": "checkout-service",
	})

	server := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: routes.NewWorkerRouter(cfg, logg, dbClient),
	}

	go func() {
		logg.Info(ctx, "starting checkout health endpoint on "+server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "checkout health endpoint stopped unexpectedly", err)
			stop()
		}
	}()

	logg.Info(ctx, "starting checkout consumer")
	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "checkout consumer stopped unexpectedly", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(ctx, "error shutting down checkout health endpoint", err)
	}

	logg.Info(ctx, "checkout service shutting down gracefully")
}
