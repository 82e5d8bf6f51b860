// Package checkout runs the checkout step of the order saga. It consumes
// OrderCreated, decides the checkout outcome and stages the follow-up events
// in the same transaction as the state change.
package checkout

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

// failCurrency is the sentinel that forces a checkout failure end to end.
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

// Handler applies OrderCreated events: it opens a checkout, settles its
// outcome and emits CheckoutCompleted plus PaymentRequested on success, or
// CheckoutFailed on failure.
type Handler struct {
	repo   Repository
	tx     txRunner
	outbox outboxEmitter
	inbox  inboxGuard
	log    *logger.Logger
}

func NewHandler(repo Repository, tx txRunner, outbox outboxEmitter, inbox inboxGuard, log *logger.Logger) *Handler {
	return &Handler{repo: repo, tx: tx, outbox: outbox, inbox: inbox, log: log}
}

func (h *Handler) Handle(ctx context.Context, env events.Envelope) error {
	if env.EventType != events.TypeOrderCreated {
		h.log.Warn(ctx, "ignoring unexpected event type "+env.EventType)
		return nil
	}

	var payload events.OrderCreated
	if err := env.DecodePayload(&payload); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode order created")
	}
	orderID, err := uuid.Parse(payload.OrderID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parse order id")
	}

	return h.tx.WithTx(ctx, func(tx *gorm.DB) error {
		already, err := h.inbox.TryMarkProcessed(tx, env.MessageID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "inbox mark processed")
		}
		if already {
			h.log.Info(ctx, "duplicate delivery, skipping")
			return nil
		}

		repo := h.repo.WithTx(tx)
		row := &models.Checkout{
			ID:         uuid.New(),
			OrderID:    orderID,
			CustomerID: payload.CustomerID,
			Amount:     payload.Total.Amount,
			Currency:   payload.Total.Currency,
			Status:     enums.CheckoutStatusPending,
		}
		created, err := repo.CreateIfAbsent(ctx, row)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout")
		}
		if !created {
			// A checkout already exists for this order; another delivery of
			// the same order won the race.
			return nil
		}

		if strings.EqualFold(payload.Total.Currency, failCurrency) {
			return h.fail(ctx, tx, repo, row, env)
		}
		return h.complete(ctx, tx, repo, row, env)
	})
}

func (h *Handler) complete(ctx context.Context, tx *gorm.DB, repo Repository, row *models.Checkout, cause events.Envelope) error {
	if err := repo.UpdateStatus(ctx, row.ID, enums.CheckoutStatusCompleted.String(), ""); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete checkout")
	}

	completed, err := events.Follow(cause, events.TypeCheckoutCompleted, events.ProducerCheckoutService, row.OrderID.String(), events.CheckoutCompleted{
		CheckoutID: row.ID.String(),
		OrderID:    row.OrderID.String(),
		CustomerID: row.CustomerID,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build checkout completed event")
	}
	if err := h.outbox.Emit(tx, events.AggregateCheckout, row.ID.String(), completed); err != nil {
		return err
	}

	requested, err := events.Follow(cause, events.TypePaymentRequested, events.ProducerCheckoutService, row.OrderID.String(), events.PaymentRequested{
		CheckoutID: row.ID.String(),
		OrderID:    row.OrderID.String(),
		CustomerID: row.CustomerID,
		Amount:     row.Amount,
		Currency:   row.Currency,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build payment requested event")
	}
	return h.outbox.Emit(tx, events.AggregateCheckout, row.ID.String(), requested)
}

func (h *Handler) fail(ctx context.Context, tx *gorm.DB, repo Repository, row *models.Checkout, cause events.Envelope) error {
	if err := repo.UpdateStatus(ctx, row.ID, enums.CheckoutStatusFailed.String(), forcedFailReason); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fail checkout")
	}

	failed, err := events.Follow(cause, events.TypeCheckoutFailed, events.ProducerCheckoutService, row.OrderID.String(), events.CheckoutFailed{
		CheckoutID: row.ID.String(),
		OrderID:    row.OrderID.String(),
		Reason:     forcedFailReason,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build checkout failed event")
	}
	return h.outbox.Emit(tx, events.AggregateCheckout, row.ID.String(), failed)
}
