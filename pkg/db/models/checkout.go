package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rsmaster/o2c-backend/pkg/enums"
)

// Checkout tracks the checkout step of an order saga. One checkout per
// order; replays of the same OrderCreated event must not create a second row.
type Checkout struct {
	ID         uuid.UUID            `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID    uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex" json:"order_id"`
	CustomerID string               `gorm:"type:varchar(64);not null" json:"customer_id"`
	Amount     decimal.Decimal      `gorm:"type:numeric(19,4);not null" json:"amount"`
	Currency   string               `gorm:"type:varchar(8);not null" json:"currency"`
	Status     enums.CheckoutStatus `gorm:"type:varchar(16);not null" json:"status"`
	FailReason string               `gorm:"type:text" json:"fail_reason,omitempty"`
	CreatedAt  time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time            `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Checkout) TableName() string { return "checkouts" }
