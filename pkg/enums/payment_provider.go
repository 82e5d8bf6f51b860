package enums

// PaymentProviderName identifies the settlement backend of a payment.
type PaymentProviderName string

const (
	PaymentProviderMock     PaymentProviderName = "MOCK"
	PaymentProviderExternal PaymentProviderName = "EXTERNAL"
)

// String implements fmt.Stringer.
func (p PaymentProviderName) String() string {
	return string(p)
}
