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
	"github.com/rsmaster/o2c-backend/internal/provider"
	"github.com/rsmaster/o2c-backend/pkg/config"
	"github.com/rsmaster/o2c-backend/pkg/logger"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "payment-provider"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "payment-provider"

	logg = logger.New(logger.Options{
		ServiceName: "payment-provider",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	svc := provider.NewService(cfg.Provider, logg)
	worker := provider.NewWorker(svc, logg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": "payment-provider",
	})

	server := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: routes.NewProviderRouter(cfg, logg, svc),
	}

	go func() {
		logg.Info(ctx, "starting provider api on "+server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "provider api stopped unexpectedly", err)
			stop()
		}
	}()

	logg.Info(ctx, "starting provider callback worker")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "provider callback worker stopped unexpectedly", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(ctx, "error shutting down provider api", err)
	}

	logg.Info(ctx, "payment provider shutting down gracefully")
}
