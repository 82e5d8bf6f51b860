package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rsmaster/o2c-backend/api/controllers"
	"github.com/rsmaster/o2c-backend/api/middleware"
	"github.com/rsmaster/o2c-backend/internal/payment"
	"github.com/rsmaster/o2c-backend/pkg/config"
	"github.com/rsmaster/o2c-backend/pkg/db"
	"github.com/rsmaster/o2c-backend/pkg/logger"
	"github.com/rsmaster/o2c-backend/pkg/metrics"
)

// NewPaymentRouter wires the payment service's HTTP surface: reads, the
// manual retry endpoint and the provider webhook receiver.
func NewPaymentRouter(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, paymentSvc payment.Service, retrySvc *payment.RetryService, webhookSvc *payment.WebhookService) http.Handler {
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

	r.Route("/payments", func(r chi.Router) {
		r.Get("/{orderId}", controllers.GetPayment(paymentSvc, logg))
		r.Post("/{orderId}/retry", controllers.RetryPayment(retrySvc, logg))
	})

	r.Post("/webhooks/provider/payments", controllers.ProviderWebhook(webhookSvc, logg))

	return r
}
