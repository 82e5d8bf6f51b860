package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rsmaster/o2c-backend/pkg/enums"
)

// Order is the order aggregate. Status moves CREATED -> CONFIRMED or
// CREATED -> FAILED, driven by checkout events.
type Order struct {
	ID            uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerID    string            `gorm:"type:varchar(64);not null;index" json:"customer_id"`
	Amount        decimal.Decimal   `gorm:"type:numeric(19,4);not null" json:"amount"`
	Currency      string            `gorm:"type:varchar(8);not null" json:"currency"`
	Status        enums.OrderStatus `gorm:"type:varchar(16);not null" json:"status"`
	FailReason    string            `gorm:"type:text" json:"fail_reason,omitempty"`
	CorrelationID uuid.UUID         `gorm:"type:uuid;not null" json:"correlation_id"`
	CreatedAt     time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Order) TableName() string { return "orders" }
