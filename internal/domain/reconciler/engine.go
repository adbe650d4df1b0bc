// Package reconciler reconciles what an order owes against what was
// authorized on it.
//
// The engine is a pure function over one order: it sums merchandise,
// charges and taxes into the amount owed, sums payments into the authorized
// amount (split into paid and discounted tenders), and reports the signed
// difference rounded to cents. A negative difference is an authorization
// mismatch.
package reconciler

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// NoPaymentTypes is rendered when an order carries no typed payments.
const NoPaymentTypes = "-"

// MissingOrderID is used when the document has no OrderId.
const MissingOrderID = "N/A"

// Result is the reconciliation of a single order. All amounts are rounded
// to cents.
type Result struct {
	PlacedOn         time.Time
	OrderID          string
	Site             string
	TotalAmount      float64
	AmountOwed       float64
	AuthorizedAmount float64
	PaidAmount       float64
	DiscountedAmount float64
	Difference       float64
	PaymentTypeIDs   string
}

// IsMismatch reports whether the authorized amount falls short of the amount owed.
func (r Result) IsMismatch() bool {
	return r.Difference < 0
}

// SiteFor maps the envelope country to a site code.
func SiteFor(country string) string {
	if country == "USA" {
		return "US"
	}
	return "CA"
}

// Reconcile computes the reconciliation result for one order.
func Reconcile(order Order) Result {
	var (
		totalAmount   float64
		amountOwed    float64
		paidAmount    float64
		discounted    float64
		paymentTypes  []string
		seenPayTypeID = make(map[string]struct{})
	)

	doc := order.Document

	// Order-level charges and taxes count toward the amount owed but not
	// toward totalAmount, unlike line-level charges below. This mirrors the
	// upstream business logic and may be a defect there; keep it as is.
	for _, charge := range doc.ChargeDetails {
		amountOwed += charge.ChargeTotal.Float()
	}
	for _, tax := range doc.TaxDetails {
		amountOwed += tax.TaxAmount.Float()
	}

	for _, line := range doc.Lines {
		if line.UnitPrice.Present() {
			lineTotal := line.UnitPrice.Float() * float64(line.Quantity.Int())
			totalAmount += lineTotal
			amountOwed += lineTotal
		}
		for _, charge := range line.ChargeDetails {
			amt := charge.ChargeTotal.Float()
			totalAmount += amt
			amountOwed += amt
		}
		for _, tax := range line.TaxDetails {
			amountOwed += tax.TaxAmount.Float()
		}
	}

	for _, group := range doc.Payments {
		for _, payment := range group.Methods {
			id := string(payment.PaymentType.PaymentTypeID)
			if id == "" {
				continue
			}
			if _, ok := seenPayTypeID[id]; !ok {
				seenPayTypeID[id] = struct{}{}
				paymentTypes = append(paymentTypes, id)
			}

			switch PaymentClassOf(id) {
			case PaymentClassPaid:
				paidAmount += payment.Amount.Float()
			default:
				discounted += payment.Amount.Float()
			}
		}
	}

	authorized := paidAmount + discounted

	orderID := string(doc.OrderID)
	if orderID == "" {
		orderID = MissingOrderID
	}

	paymentTypeIDs := NoPaymentTypes
	if len(paymentTypes) > 0 {
		paymentTypeIDs = strings.Join(paymentTypes, ",")
	}

	return Result{
		PlacedOn:         order.CapturedDate,
		OrderID:          orderID,
		Site:             SiteFor(order.Country),
		TotalAmount:      Round2(totalAmount),
		AmountOwed:       Round2(amountOwed),
		AuthorizedAmount: Round2(authorized),
		PaidAmount:       Round2(paidAmount),
		DiscountedAmount: Round2(discounted),
		Difference:       Round2(authorized - amountOwed),
		PaymentTypeIDs:   paymentTypeIDs,
	}
}

// Round2 rounds to cents, half away from zero.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
