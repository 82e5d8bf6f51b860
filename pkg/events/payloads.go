package events

import "github.com/shopspring/decimal"

// Money carries an amount in a named currency.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// OrderCreated announces a new order aggregate.
type OrderCreated struct {
	OrderID    string `json:"orderId"`
	CustomerID string `json:"customerId"`
	Total      Money  `json:"total"`
	Status     string `json:"status"`
}

// CheckoutCompleted announces that a checkout finished successfully.
type CheckoutCompleted struct {
	CheckoutID string `json:"checkoutId"`
	OrderID    string `json:"orderId"`
	CustomerID string `json:"customerId"`
}

// CheckoutFailed announces that a checkout failed with a reason.
type CheckoutFailed struct {
	CheckoutID string `json:"checkoutId"`
	OrderID    string `json:"orderId"`
	Reason     string `json:"reason"`
}

// PaymentRequested asks the payment service to settle a completed checkout.
type PaymentRequested struct {
	CheckoutID string          `json:"checkoutId"`
	OrderID    string          `json:"orderId"`
	CustomerID string          `json:"customerId"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
}

// PaymentCompleted announces a settled payment.
type PaymentCompleted struct {
	PaymentID  string          `json:"paymentId"`
	CheckoutID string          `json:"checkoutId"`
	OrderID    string          `json:"orderId"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
}

// PaymentFailed announces a terminally failed payment.
type PaymentFailed struct {
	PaymentID  string `json:"paymentId"`
	CheckoutID string `json:"checkoutId"`
	OrderID    string `json:"orderId"`
	Reason     string `json:"reason"`
}
