package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rsmaster/o2c-backend/api/responses"
	"github.com/rsmaster/o2c-backend/api/validators"
	"github.com/rsmaster/o2c-backend/internal/payment"
	pkgerrors "github.com/rsmaster/o2c-backend/pkg/errors"
	"github.com/rsmaster/o2c-backend/pkg/logger"
)

type retryRequestBody struct {
	OrderID        string `json:"orderId" validate:"required,uuid"`
	RetryRequestID string `json:"retryRequestId" validate:"required,uuid"`
}

// GetPayment returns the payment and its attempts for one order.
func GetPayment(svc payment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		row, attempts, err := svc.GetByOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"payment":  row,
			"attempts": attempts,
		})
	}
}

// RetryPayment requests a fresh settlement for a stuck payment. The first
// call per retry id answers 202 ACCEPTED; repeats answer 200 ALREADY_ACCEPTED.
func RetryPayment(svc *payment.RetryService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pathOrderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		var body retryRequestBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		bodyOrderID, err := uuid.Parse(body.OrderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id in body"))
			return
		}
		if bodyOrderID != pathOrderID {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order id in path and body must match"))
			return
		}
		retryRequestID, err := uuid.Parse(body.RetryRequestID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid retry request id"))
			return
		}

		outcome, err := svc.Request(r.Context(), payment.RetryInput{
			OrderID:        pathOrderID,
			RetryRequestID: retryRequestID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := http.StatusAccepted
		if outcome == payment.RetryAlreadyAccepted {
			status = http.StatusOK
		}
		responses.WriteSuccessStatus(w, status, map[string]string{
			"status":         string(outcome),
			"retryRequestId": retryRequestID.String(),
		})
	}
}

// ProviderWebhook receives settlement callbacks. It always answers 202 so
// the provider never loops on redelivery; failures surface in logs only.
func ProviderWebhook(svc *payment.WebhookService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input payment.WebhookInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			logg.Error(r.Context(), "webhook body rejected", err)
			responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]string{"status": "ACCEPTED"})
			return
		}

		if err := svc.Apply(r.Context(), input); err != nil {
			logg.Error(r.Context(), "webhook apply failed", err)
		}
		responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]string{"status": "ACCEPTED"})
	}
}
