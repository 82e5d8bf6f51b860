package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rsmaster/o2c-backend/pkg/enums"
)

// Payment is the settlement aggregate for one checkout. A payment is found
// or created by checkout id, so redelivered PaymentRequested events attach
// to the existing row instead of minting a new one.
type Payment struct {
	ID         uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	CheckoutID uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex" json:"checkout_id"`
	OrderID    uuid.UUID           `gorm:"type:uuid;not null;index" json:"order_id"`
	CustomerID string              `gorm:"type:varchar(64);not null" json:"customer_id"`
	Amount     decimal.Decimal     `gorm:"type:numeric(19,4);not null" json:"amount"`
	Currency   string              `gorm:"type:varchar(8);not null" json:"currency"`
	Status     enums.PaymentStatus `gorm:"type:varchar(16);not null" json:"status"`
	FailReason string              `gorm:"type:text" json:"fail_reason,omitempty"`
	CreatedAt  time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time           `gorm:"autoUpdateTime" json:"updated_at"`

	Attempts []PaymentAttempt `gorm:"foreignKey:PaymentID" json:"attempts,omitempty"`
}

func (Payment) TableName() string { return "payments" }
