package checkout

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rsmaster/o2c-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a checkout repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// CreateIfAbsent inserts the checkout unless one already exists for the same
// order. Reports whether this call created the row.
func (r *repository) CreateIfAbsent(ctx context.Context, checkout *models.Checkout) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}},
			DoNothing: true,
		}).
		Create(checkout)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Checkout, error) {
	var checkout models.Checkout
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&checkout).Error
	if err != nil {
		return nil, err
	}
	return &checkout, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, failReason string) error {
	updates := map[string]any{"status": status}
	if failReason != "" {
		updates["fail_reason"] = failReason
	}
	return r.db.WithContext(ctx).
		Model(&models.Checkout{}).
		Where("id = ?", id).
		Updates(updates).Error
}
