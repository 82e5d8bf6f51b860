package enums

// CheckoutStatus tracks the lifecycle of a checkout aggregate. A checkout
// leaves PENDING exactly once.
type CheckoutStatus string

const (
	CheckoutStatusPending   CheckoutStatus = "PENDING"
	CheckoutStatusCompleted CheckoutStatus = "COMPLETED"
	CheckoutStatusFailed    CheckoutStatus = "FAILED"
)

var validCheckoutStatuses = []CheckoutStatus{
	CheckoutStatusPending,
	CheckoutStatusCompleted,
	CheckoutStatusFailed,
}

// String implements fmt.Stringer.
func (c CheckoutStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CheckoutStatus.
func (c CheckoutStatus) IsValid() bool {
	for _, candidate := range validCheckoutStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the checkout reached a final state.
func (c CheckoutStatus) IsTerminal() bool {
	return c == CheckoutStatusCompleted || c == CheckoutStatusFailed
}
