package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rsmaster/o2c-backend/api/controllers"
	"github.com/rsmaster/o2c-backend/api/middleware"
	"github.com/rsmaster/o2c-backend/internal/order"
	"github.com/rsmaster/o2c-backend/pkg/config"
	"github.com/rsmaster/o2c-backend/pkg/db"
	"github.com/rsmaster/o2c-backend/pkg/logger"
	"github.com/rsmaster/o2c-backend/pkg/metrics"
)

// NewOrderRouter wires the order service's HTTP surface.
func NewOrderRouter(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, orderSvc order.Service) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.Correlation(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP))
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", controllers.CreateOrder(orderSvc, logg))
		r.Get("/{orderId}", controllers.GetOrder(orderSvc, logg))
	})

	return r
}
