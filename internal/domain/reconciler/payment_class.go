package reconciler

// PaymentClass says whether a payment counts as money paid or as a discount.
type PaymentClass int

const (
	// PaymentClassDiscounted covers gift cards, reward cards and any tender
	// not in the paid set.
	PaymentClassDiscounted PaymentClass = iota
	// PaymentClassPaid covers card and PayPal tenders.
	PaymentClassPaid
)

func (c PaymentClass) String() string {
	if c == PaymentClassPaid {
		return "paid"
	}
	return "discounted"
}

var paidPaymentTypes = map[string]struct{}{
	"Credit Card":               {},
	"PayPal":                    {},
	"Private Label Credit Card": {},
}

// PaymentClassOf classifies a PaymentTypeId. Matching is exact.
func PaymentClassOf(paymentTypeID string) PaymentClass {
	if _, ok := paidPaymentTypes[paymentTypeID]; ok {
		return PaymentClassPaid
	}
	return PaymentClassDiscounted
}

// PaidPaymentTypes returns a copy of the payment type IDs classed as paid.
func PaidPaymentTypes() []string {
	out := make([]string, 0, len(paidPaymentTypes))
	for id := range paidPaymentTypes {
		out = append(out, id)
	}
	return out
}
