package order

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rsmaster/o2c-backend/pkg/enums"
	pkgerrors "github.com/rsmaster/o2c-backend/pkg/errors"
	"github.com/rsmaster/o2c-backend/pkg/events"
	"github.com/rsmaster/o2c-backend/pkg/logger"
)

type inboxGuard interface {
	TryMarkProcessed(tx *gorm.DB, messageID uuid.UUID) (bool, error)
}

// Handler applies checkout events to order state: CheckoutCompleted confirms
// the order, CheckoutFailed fails it. It emits nothing.
type Handler struct {
	repo  Repository
	tx    txRunner
	inbox inboxGuard
	log   *logger.Logger
}

func NewHandler(repo Repository, tx txRunner, inbox inboxGuard, log *logger.Logger) *Handler {
	return &Handler{repo: repo, tx: tx, inbox: inbox, log: log}
}

func (h *Handler) Handle(ctx context.Context, env events.Envelope) error {
	switch env.EventType {
	case events.TypeCheckoutCompleted:
		var payload events.CheckoutCompleted
		if err := env.DecodePayload(&payload); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode checkout completed")
		}
		return h.applyCheckoutOutcome(ctx, env, payload.OrderID, enums.OrderStatusConfirmed, "")

	case events.TypeCheckoutFailed:
		var payload events.CheckoutFailed
		if err := env.DecodePayload(&payload); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode checkout failed")
		}
		return h.applyCheckoutOutcome(ctx, env, payload.OrderID, enums.OrderStatusFailed, payload.Reason)

	default:
		h.log.Warn(ctx, "ignoring unexpected event type "+env.EventType)
		return nil
	}
}

func (h *Handler) applyCheckoutOutcome(ctx context.Context, env events.Envelope, orderID string, status enums.OrderStatus, reason string) error {
	id, err := uuid.Parse(orderID)
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
		current, err := repo.FindByID(ctx, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found for checkout event")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		// Only a CREATED order moves; later checkout events for a settled
		// order are no-ops.
		if current.Status != enums.OrderStatusCreated {
			return nil
		}

		if err := repo.UpdateStatus(ctx, id, status.String(), reason); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		return nil
	})
}
