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
	"github.com/rsmaster/o2c-backend/internal/consumer"
	"github.com/rsmaster/o2c-backend/internal/order"
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
	logg := logger.New(logger.Options{ServiceName: "order-service"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "order-service"

	logg = logger.New(logger.Options{
		ServiceName: "order-service",
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

	repo := order.NewRepository(dbClient.DB())
	emitter := outbox.NewEmitter(outbox.NewRepository(dbClient.DB()))

	orderSvc, err := order.NewService(repo, dbClient, emitter)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	handler := order.NewHandler(repo, dbClient, inbox.NewGuard("order-service"), logg)

	consumerClient, err := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.OrderGroup, events.TopicCheckoutEvents)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap kafka consumer", err)
		os.Exit(1)
	}
	defer consumerClient.Close()

	runner := consumer.NewRunner("order-service", consumerClient, consumer.NewDLQPublisher(producer), cfg.Consumer, logg)
	runner.On(events.TopicCheckoutEvents, handler)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": "order-service",
	})

	server := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: routes.NewOrderRouter(cfg, logg, dbClient, orderSvc),
	}

	go func() {
		logg.Info(ctx, "starting order api on "+server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "order api stopped unexpectedly", err)
			stop()
		}
	}()

	logg.Info(ctx, "starting order consumer")
	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "order consumer stopped unexpectedly", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(ctx, "error shutting down order api", err)
	}

	logg.Info(ctx, "order service shutting down gracefully")
}
