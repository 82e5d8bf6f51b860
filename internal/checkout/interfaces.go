package checkout

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rsmaster/o2c-backend/pkg/db/models"
)

// Repository describes checkout persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateIfAbsent(ctx context.Context, checkout *models.Checkout) (created bool, err error)
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Checkout, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, failReason string) error
}
