package payment

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rsmaster/o2c-backend/pkg/db/models"
	pkgerrors "github.com/rsmaster/o2c-backend/pkg/errors"
)

// Service exposes payment reads.
type Service interface {
	GetByOrder(ctx context.Context, orderID uuid.UUID) (*models.Payment, []models.PaymentAttempt, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payment repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetByOrder(ctx context.Context, orderID uuid.UUID) (*models.Payment, []models.PaymentAttempt, error) {
	if orderID == uuid.Nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	payment, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "no payment for order")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
	}
	attempts, err := s.repo.ListAttempts(ctx, payment.ID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list attempts")
	}
	return payment, attempts, nil
}
