package order

import "github.com/shopspring/decimal"

// CreateInput carries the fields needed to open a new order.
type CreateInput struct {
	CustomerID string          `json:"customerId" validate:"required,max=64"`
	Amount     decimal.Decimal `json:"amount" validate:"required"`
	Currency   string          `json:"currency" validate:"required,min=3,max=8"`
}
