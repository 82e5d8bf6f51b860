package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/rsmaster/o2c-backend/api/responses"
	"github.com/rsmaster/o2c-backend/api/validators"
	"github.com/rsmaster/o2c-backend/internal/provider"
	"github.com/rsmaster/o2c-backend/pkg/correlation"
	"github.com/rsmaster/o2c-backend/pkg/logger"
)

// AcceptProviderPayment is the mock gateway's intake: it accepts the request
// and schedules the asynchronous webhook callback.
func AcceptProviderPayment(svc *provider.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req provider.PaymentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		correlationID := ""
		if id, ok := correlation.FromContext(r.Context()); ok {
			correlationID = id.String()
		}

		acceptance, err := svc.Accept(r.Context(), req, correlationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// Raw body, no envelope: callers integrate with this endpoint as if
		// it were a third-party API.
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		if err := json.NewEncoder(w).Encode(acceptance); err != nil {
			logg.Error(r.Context(), "encode provider acceptance", err)
		}
	}
}
