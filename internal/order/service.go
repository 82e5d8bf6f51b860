package order

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rsmaster/o2c-backend/pkg/correlation"
	"github.com/rsmaster/o2c-backend/pkg/db/models"
	"github.com/rsmaster/o2c-backend/pkg/enums"
	pkgerrors "github.com/rsmaster/o2c-backend/pkg/errors"
	"github.com/rsmaster/o2c-backend/pkg/events"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(tx *gorm.DB, aggregateType, aggregateID string, env events.Envelope) error
}

// Service defines order operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxEmitter
}

// NewService builds an order service with the required dependencies.
func NewService(repo Repository, tx txRunner, outbox outboxEmitter) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if outbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "outbox emitter required")
	}
	return &service{repo: repo, tx: tx, outbox: outbox}, nil
}

// Create opens an order and stages OrderCreated in the same transaction.
func (s *service) Create(ctx context.Context, input CreateInput) (*models.Order, error) {
	if input.CustomerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if input.Currency == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "currency required")
	}
	if input.Amount.IsNegative() || input.Amount.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	correlationID, ok := correlation.FromContext(ctx)
	if !ok {
		correlationID = uuid.New()
	}

	row := &models.Order{
		ID:            uuid.New(),
		CustomerID:    input.CustomerID,
		Amount:        input.Amount,
		Currency:      input.Currency,
		Status:        enums.OrderStatusCreated,
		CorrelationID: correlationID,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.WithTx(tx).Create(ctx, row); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		env, err := events.New(correlationID, events.TypeOrderCreated, events.ProducerOrderService, row.ID.String(), events.OrderCreated{
			OrderID:    row.ID.String(),
			CustomerID: row.CustomerID,
			Total:      events.Money{Amount: row.Amount, Currency: row.Currency},
			Status:     row.Status.String(),
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build order created event")
		}
		return s.outbox.Emit(tx, events.AggregateOrder, row.ID.String(), env)
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// Get loads one order by id.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return row, nil
}
