// Package provider is the mock settlement gateway. It accepts payment
// requests immediately and settles them later through a webhook callback,
// mimicking an asynchronous external processor.
package provider

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rsmaster/o2c-backend/pkg/config"
	pkgerrors "github.com/rsmaster/o2c-backend/pkg/errors"
	"github.com/rsmaster/o2c-backend/pkg/logger"
)

const failCurrency = "FAIL"

// PaymentRequest is an inbound settlement request.
type PaymentRequest struct {
	PaymentID string          `json:"paymentId" validate:"required"`
	AttemptID string          `json:"attemptId" validate:"required"`
	Amount    decimal.Decimal `json:"amount" validate:"required"`
	Currency  string          `json:"currency" validate:"required"`
}

// Acceptance is returned synchronously; the outcome follows by webhook.
type Acceptance struct {
	ProviderPaymentID string `json:"providerPaymentId"`
	Status            string `json:"status"`
}

type callbackTask struct {
	providerPaymentID string
	currency          string
	correlationID     string
}

// Service queues accepted payments for asynchronous settlement. The queue is
// a bounded channel and enqueue blocks when it is full, so a flood of
// requests slows callers down instead of dropping callbacks.
type Service struct {
	cfg   config.ProviderConfig
	queue chan callbackTask
	log   *logger.Logger
}

func NewService(cfg config.ProviderConfig, log *logger.Logger) *Service {
	return &Service{
		cfg:   cfg,
		queue: make(chan callbackTask, cfg.QueueSize),
		log:   log,
	}
}

// Accept validates the request, assigns a provider payment id and queues the
// callback.
func (s *Service) Accept(ctx context.Context, req PaymentRequest, correlationID string) (Acceptance, error) {
	if req.PaymentID == "" || req.AttemptID == "" {
		return Acceptance{}, pkgerrors.New(pkgerrors.CodeValidation, "payment id and attempt id required")
	}
	if req.Currency == "" {
		return Acceptance{}, pkgerrors.New(pkgerrors.CodeValidation, "currency required")
	}

	task := callbackTask{
		providerPaymentID: uuid.NewString(),
		currency:          req.Currency,
		correlationID:     correlationID,
	}

	select {
	case s.queue <- task:
	case <-ctx.Done():
		return Acceptance{}, pkgerrors.Wrap(pkgerrors.CodeDependency, ctx.Err(), "enqueue callback")
	}

	return Acceptance{ProviderPaymentID: task.providerPaymentID, Status: "ACCEPTED"}, nil
}

func (s *Service) outcomeFor(currency string) (status, reason string) {
	if strings.EqualFold(currency, failCurrency) {
		return "FAILED", "Forced FAIL for testing"
	}
	return "SUCCEEDED", ""
}
