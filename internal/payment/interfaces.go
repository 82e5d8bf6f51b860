package payment

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rsmaster/o2c-backend/pkg/db/models"
)

// Repository describes payment persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateIfAbsent(ctx context.Context, payment *models.Payment) (created bool, err error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Payment, error)
	FindByCheckoutID(ctx context.Context, checkoutID uuid.UUID) (*models.Payment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, failReason string) error

	MaxAttemptNo(ctx context.Context, paymentID uuid.UUID) (int, error)
	CreateAttempt(ctx context.Context, attempt *models.PaymentAttempt) (created bool, err error)
	FindAttemptByProviderPaymentID(ctx context.Context, providerPaymentID string) (*models.PaymentAttempt, error)
	SetAttemptProviderPaymentID(ctx context.Context, attemptID uuid.UUID, providerPaymentID string) error
	UpdateAttemptStatus(ctx context.Context, attemptID uuid.UUID, status string, failReason string) error

	CreateRetryRequest(ctx context.Context, req *models.PaymentRetryRequest) error
	ListAttempts(ctx context.Context, paymentID uuid.UUID) ([]models.PaymentAttempt, error)
}
