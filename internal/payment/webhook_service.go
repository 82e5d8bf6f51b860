package payment

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rsmaster/o2c-backend/pkg/correlation"
	"github.com/rsmaster/o2c-backend/pkg/enums"
	pkgerrors "github.com/rsmaster/o2c-backend/pkg/errors"
	"github.com/rsmaster/o2c-backend/pkg/events"
	"github.com/rsmaster/o2c-backend/pkg/logger"
)

// WebhookInput is the provider's settlement callback.
type WebhookInput struct {
	ProviderPaymentID string `json:"providerPaymentId" validate:"required"`
	Status            string `json:"status" validate:"required"`
	Reason            string `json:"reason"`
}

// WebhookService applies provider callbacks to payment state. Every path is
// a no-op except the first callback for a pending attempt; the receiver
// always answers 202 so the provider never retries into an error loop.
type WebhookService struct {
	repo   Repository
	tx     txRunner
	outbox outboxEmitter
	log    *logger.Logger
}

func NewWebhookService(repo Repository, tx txRunner, outbox outboxEmitter, log *logger.Logger) *WebhookService {
	return &WebhookService{repo: repo, tx: tx, outbox: outbox, log: log}
}

// Apply processes one callback.
func (s *WebhookService) Apply(ctx context.Context, input WebhookInput) error {
	status, err := enums.ParsePaymentStatus(input.Status)
	if err != nil {
		s.log.Warn(ctx, "webhook with unknown status "+input.Status)
		return nil
	}
	if !status.IsTerminal() {
		s.log.Warn(ctx, "webhook with non-terminal status "+input.Status)
		return nil
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		attempt, err := repo.FindAttemptByProviderPaymentID(ctx, input.ProviderPaymentID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				s.log.Warn(ctx, "webhook for unknown provider payment "+input.ProviderPaymentID)
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load attempt")
		}
		if attempt.Status.IsTerminal() {
			s.log.Info(ctx, "duplicate webhook for settled attempt")
			return nil
		}

		if err := repo.UpdateAttemptStatus(ctx, attempt.ID, status.String(), input.Reason); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "settle attempt")
		}

		payment, err := repo.FindByID(ctx, attempt.PaymentID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
		}
		if payment.Status.IsTerminal() {
			// A newer attempt already settled the payment.
			return nil
		}

		if err := repo.UpdateStatus(ctx, payment.ID, status.String(), input.Reason); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "settle payment")
		}

		var correlationID *uuid.UUID
		if id, ok := correlation.FromContext(ctx); ok {
			correlationID = &id
		}
		env, err := buildOutcomeEvent(payment, status, input.Reason, nil, correlationID)
		if err != nil {
			return err
		}
		return s.outbox.Emit(tx, events.AggregatePayment, payment.ID.String(), env)
	})
}
