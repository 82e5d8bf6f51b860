package events

// Event type tags carried in the envelope.
const (
	TypeOrderCreated      = "OrderCreated"
	TypeCheckoutCompleted = "CheckoutCompleted"
	TypeCheckoutFailed    = "CheckoutFailed"
	TypePaymentRequested  = "PaymentRequested"
	TypePaymentCompleted  = "PaymentCompleted"
	TypePaymentFailed     = "PaymentFailed"
)

// Producer names stamped on emitted envelopes.
const (
	ProducerOrderService    = "order-service"
	ProducerCheckoutService = "checkout-service"
	ProducerPaymentService  = "payment-service"
)

// Aggregate types recorded on outbox rows.
const (
	AggregateOrder    = "Order"
	AggregateCheckout = "Checkout"
	AggregatePayment  = "Payment"
)
