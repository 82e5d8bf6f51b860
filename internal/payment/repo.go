package payment

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

// NewRepository builds a payment repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// CreateIfAbsent inserts the payment unless one already exists for the same
// checkout. Reports whether this call created the row.
func (r *repository) CreateIfAbsent(ctx context.Context, payment *models.Payment) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "checkout_id"}},
			DoNothing: true,
		}).
		Create(payment)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) FindByCheckoutID(ctx context.Context, checkoutID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Where("checkout_id = ?", checkoutID).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// UpdateStatus writes the status and fail reason together; a settle to
// SUCCEEDED clears any reason left by an earlier failed attempt.
func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, failReason string) error {
	return r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "fail_reason": failReason}).Error
}

func (r *repository) MaxAttemptNo(ctx context.Context, paymentID uuid.UUID) (int, error) {
	var max *int
	err := r.db.WithContext(ctx).
		Model(&models.PaymentAttempt{}).
		Select("MAX(attempt_no)").
		Where("payment_id = ?", paymentID).
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

// CreateAttempt inserts the attempt unless its (payment, attempt_no) slot is
// taken. Reports whether this call created the row; callers recompute the
// attempt number and retry once on false.
func (r *repository) CreateAttempt(ctx context.Context, attempt *models.PaymentAttempt) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "payment_id"}, {Name: "attempt_no"}},
			DoNothing: true,
		}).
		Create(attempt)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) FindAttemptByProviderPaymentID(ctx context.Context, providerPaymentID string) (*models.PaymentAttempt, error) {
	var attempt models.PaymentAttempt
	err := r.db.WithContext(ctx).
		Where("provider_payment_id = ?", providerPaymentID).
		First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *repository) SetAttemptProviderPaymentID(ctx context.Context, attemptID uuid.UUID, providerPaymentID string) error {
	return r.db.WithContext(ctx).
		Model(&models.PaymentAttempt{}).
		Where("id = ?", attemptID).
		Update("provider_payment_id", providerPaymentID).Error
}

func (r *repository) UpdateAttemptStatus(ctx context.Context, attemptID uuid.UUID, status string, failReason string) error {
	updates := map[string]any{"status": status}
	if failReason != "" {
		updates["fail_reason"] = failReason
	}
	return r.db.WithContext(ctx).
		Model(&models.PaymentAttempt{}).
		Where("id = ?", attemptID).
		Updates(updates).Error
}

func (r *repository) CreateRetryRequest(ctx context.Context, req *models.PaymentRetryRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *repository) ListAttempts(ctx context.Context, paymentID uuid.UUID) ([]models.PaymentAttempt, error) {
	var attempts []models.PaymentAttempt
	err := r.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		Order("attempt_no ASC").
		Find(&attempts).Error
	if err != nil {
		return nil, err
	}
	return attempts, nil
}
