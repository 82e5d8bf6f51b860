package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentRetryRequest is the idempotency fence for the manual retry endpoint.
// The first request for a (payment, client retry id) pair wins and publishes;
// duplicates see the existing row and publish nothing.
type PaymentRetryRequest struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PaymentID uuid.UUID `gorm:"type:uuid;not null;index" json:"payment_id"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null" json:"order_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (PaymentRetryRequest) TableName() string { return "payment_retry_requests" }
