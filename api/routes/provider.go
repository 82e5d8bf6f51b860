package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rsmaster/o2c-backend/api/controllers"
	"github.com/rsmaster/o2c-backend/api/middleware"
	"github.com/rsmaster/o2c-backend/internal/provider"
	"github.com/rsmaster/o2c-backend/pkg/config"
	"github.com/rsmaster/o2c-backend/pkg/logger"
	"github.com/rsmaster/o2c-backend/pkg/metrics"
)

// NewProviderRouter wires the mock settlement gateway's HTTP surface.
func NewProviderRouter(cfg *config.Config, logg *logger.Logger, providerSvc *provider.Service) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.Correlation(logg),
		middleware.Logging(logg),
	)

	r.Get("/health/live", controllers.HealthLive(cfg))
	r.Handle("/metrics", metrics.Handler())

	r.Post("/provider/payments", controllers.AcceptProviderPayment(providerSvc, logg))

	return r
}
