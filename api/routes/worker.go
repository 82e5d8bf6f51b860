package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rsmaster/o2c-backend/api/controllers"
	"github.com/rsmaster/o2c-backend/api/middleware"
	"github.com/rsmaster/o2c-backend/pkg/config"
	"github.com/rsmaster/o2c-backend/pkg/db"
	"github.com/rsmaster/o2c-backend/pkg/logger"
	"github.com/rsmaster/o2c-backend/pkg/metrics"
)

// NewWorkerRouter is the minimal HTTP surface for headless binaries: health
// probes and the metrics scrape endpoint. Used by the checkout consumer and
// the outbox publisher.
func NewWorkerRouter(cfg *config.Config, logg *logger.Logger, dbP db.Pinger) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP))
	})
	r.Handle("/metrics", metrics.Handler())

	return r
}
