package order

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rsmaster/o2c-backend/pkg/db/models"
)

// Repository describes order persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, failReason string) error
}
