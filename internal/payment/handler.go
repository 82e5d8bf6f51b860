// Package payment settles completed checkouts. Settlement is either inline,
// decided by the currency rule, or delegated to an external provider whose
// outcome arrives later through a webhook.
package payment

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rsmaster/o2c-backend/pkg/db/models"
	"github.com/rsmaster/o2c-backend/pkg/enums"
	pkgerrors "github.com/rsmaster/o2c-backend/pkg/errors"
	"github.com/rsmaster/o2c-backend/pkg/events"
	"github.com/rsmaster/o2c-backend/pkg/logger"
)

const failCurrency = "FAIL"

const forcedFailReason = "Forced FAIL for testing"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(tx *gorm.DB, aggregateType, aggregateID string, env events.Envelope) error
}

type inboxGuard interface {
	TryMarkProcessed(tx *gorm.DB, messageID uuid.UUID) (bool, error)
}

// Handler applies PaymentRequested events.
type Handler struct {
	repo            Repository
	tx              txRunner
	outbox          outboxEmitter
	inbox           inboxGuard
	provider        ProviderClient
	providerEnabled bool
	log             *logger.Logger
}

func NewHandler(repo Repository, tx txRunner, outbox outboxEmitter, inbox inboxGuard, provider ProviderClient, providerEnabled bool, log *logger.Logger) *Handler {
	return &Handler{
		repo:            repo,
		tx:              tx,
		outbox:          outbox,
		inbox:           inbox,
		provider:        provider,
		providerEnabled: providerEnabled,
		log:             log,
	}
}

func (h *Handler) Handle(ctx context.Context, env events.Envelope) error {
	if env.EventType != events.TypePaymentRequested {
		h.log.Warn(ctx, "ignoring unexpected event type "+env.EventType)
		return nil
	}

	var payload events.PaymentRequested
	if err := env.DecodePayload(&payload); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode payment requested")
	}
	checkoutID, err := uuid.Parse(payload.CheckoutID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parse checkout id")
	}
	orderID, err := uuid.Parse(payload.OrderID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parse order id")
	}

	var attempt *models.PaymentAttempt
	var payment *models.Payment

	err = h.tx.WithTx(ctx, func(tx *gorm.DB) error {
		already, err := h.inbox.TryMarkProcessed(tx, env.MessageID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "inbox mark processed")
		}
		if already {
			h.log.Info(ctx, "duplicate delivery, skipping")
			return nil
		}

		repo := h.repo.WithTx(tx)
		payment, err = h.findOrCreatePayment(ctx, repo, checkoutID, orderID, payload)
		if err != nil {
			return err
		}
		if payment.Status.IsTerminal() {
			// A fresh request for a settled payment is a manual retry. The
			// payment re-enters PENDING and settles again with a new attempt;
			// redeliveries of an old request never get here, the inbox
			// already dropped them.
			if err := repo.UpdateStatus(ctx, payment.ID, enums.PaymentStatusPending.String(), ""); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reopen payment")
			}
			payment.Status = enums.PaymentStatusPending
		}

		attempt, err = h.openAttempt(ctx, repo, payment.ID)
		if err != nil {
			return err
		}

		if !h.providerEnabled {
			return h.settleInline(ctx, tx, repo, payment, attempt, env)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if h.providerEnabled && attempt != nil && payment != nil {
		h.submitToProvider(ctx, payment, attempt)
	}
	return nil
}

func (h *Handler) findOrCreatePayment(ctx context.Context, repo Repository, checkoutID, orderID uuid.UUID, payload events.PaymentRequested) (*models.Payment, error) {
	row := &models.Payment{
		ID:         uuid.New(),
		CheckoutID: checkoutID,
		OrderID:    orderID,
		CustomerID: payload.CustomerID,
		Amount:     payload.Amount,
		Currency:   payload.Currency,
		Status:     enums.PaymentStatusPending,
	}
	created, err := repo.CreateIfAbsent(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment")
	}
	if created {
		return row, nil
	}
	existing, err := repo.FindByCheckoutID(ctx, checkoutID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
	}
	return existing, nil
}

// openAttempt claims the next attempt slot. When a concurrent settle takes
// the computed number, the max is recomputed once and the insert retried.
func (h *Handler) openAttempt(ctx context.Context, repo Repository, paymentID uuid.UUID) (*models.PaymentAttempt, error) {
	provider := enums.PaymentProviderMock
	if h.providerEnabled {
		provider = enums.PaymentProviderExternal
	}

	for try := 0; try < 2; try++ {
		max, err := repo.MaxAttemptNo(ctx, paymentID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "max attempt no")
		}
		attempt := &models.PaymentAttempt{
			ID:        uuid.New(),
			PaymentID: paymentID,
			AttemptNo: max + 1,
			Provider:  provider,
			Status:    enums.PaymentStatusPending,
		}
		created, err := repo.CreateAttempt(ctx, attempt)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment attempt")
		}
		if created {
			return attempt, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeConflict, "attempt slot contention")
}

func (h *Handler) settleInline(ctx context.Context, tx *gorm.DB, repo Repository, payment *models.Payment, attempt *models.PaymentAttempt, cause events.Envelope) error {
	status := enums.PaymentStatusSucceeded
	reason := ""
	if strings.EqualFold(payment.Currency, failCurrency) {
		status = enums.PaymentStatusFailed
		reason = forcedFailReason
	}

	if err := repo.UpdateAttemptStatus(ctx, attempt.ID, status.String(), reason); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "settle attempt")
	}
	if err := repo.UpdateStatus(ctx, payment.ID, status.String(), reason); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "settle payment")
	}

	env, err := buildOutcomeEvent(payment, status, reason, &cause, nil)
	if err != nil {
		return err
	}
	return h.outbox.Emit(tx, events.AggregatePayment, payment.ID.String(), env)
}

// submitToProvider runs after the attempt is committed. A failed submission
// leaves the attempt PENDING; the manual retry endpoint recovers it.
func (h *Handler) submitToProvider(ctx context.Context, payment *models.Payment, attempt *models.PaymentAttempt) {
	resp, err := h.provider.Submit(ctx, SubmitRequest{
		PaymentID: payment.ID.String(),
		AttemptID: attempt.ID.String(),
		Amount:    payment.Amount,
		Currency:  payment.Currency,
	})
	if err != nil {
		h.log.Error(ctx, "provider submit failed, attempt stays pending", err)
		return
	}

	if err := h.repo.SetAttemptProviderPaymentID(ctx, attempt.ID, resp.ProviderPaymentID); err != nil {
		h.log.Error(ctx, "persist provider payment id failed", err)
	}
}
