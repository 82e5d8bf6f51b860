package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rsmaster/o2c-backend/pkg/enums"
)

// PaymentAttempt records one settlement try against a provider. AttemptNo is
// monotonic per payment and unique, which keeps concurrent settles from
// writing the same attempt twice.
type PaymentAttempt struct {
	ID        uuid.UUID                 `gorm:"type:uuid;primaryKey" json:"id"`
	PaymentID uuid.UUID                 `gorm:"type:uuid;not null;uniqueIndex:idx_payment_attempt_no" json:"payment_id"`
	AttemptNo int                       `gorm:"not null;uniqueIndex:idx_payment_attempt_no" json:"attempt_no"`
	Provider  enums.PaymentProviderName `gorm:"type:varchar(16);not null" json:"provider"`
	// ProviderPaymentID is set once the external provider accepts the
	// attempt; webhooks are matched back through it.
	ProviderPaymentID *string             `gorm:"type:varchar(64);uniqueIndex" json:"provider_payment_id,omitempty"`
	Status            enums.PaymentStatus `gorm:"type:varchar(16);not null" json:"status"`
	FailReason        string              `gorm:"type:text" json:"fail_reason,omitempty"`
	CreatedAt         time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PaymentAttempt) TableName() string { return "payment_attempts" }
