package report

import (
	"encoding/json"
	"time"

	"github.com/eshaffer321/orderrecon/internal/domain/reconciler"
)

// ISOLayout renders UTC timestamps with millisecond precision.
const ISOLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatISO formats t in UTC using ISOLayout.
func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

// ISOTime is a timestamp that marshals with ISOLayout.
type ISOTime time.Time

// Time returns the underlying time.
func (t ISOTime) Time() time.Time { return time.Time(t) }

func (t ISOTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(FormatISO(time.Time(t)))
}

func (t *ISOTime) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return err
	}
	*t = ISOTime(parsed.UTC())
	return nil
}

// MismatchRow is one under-authorized order as sent to the dashboard.
type MismatchRow struct {
	PlacedOn         ISOTime `json:"placed_On"`
	OrderID          string  `json:"orderId"`
	Site             string  `json:"site"`
	TotalAmount      float64 `json:"price_without_tax"`
	AmountOwed       float64 `json:"UP_TAX_SHIPPING"`
	AuthorizedAmount float64 `json:"amtPaid"`
	Difference       float64 `json:"difference"`
	PaidAmount       float64 `json:"paid_CC_PAYPAL"`
	DiscountedAmount float64 `json:"GC_REWARDCARD_amt"`
	PaymentTypeIDs   string  `json:"paymentCount"`
}

// Totals sums the monetary columns of the report rows.
type Totals struct {
	TotalAmount      float64 `json:"totalPriceWithoutTax"`
	AmountOwed       float64 `json:"totalTaxShipping"`
	AuthorizedAmount float64 `json:"totalAmountPaid"`
	Difference       float64 `json:"totalDifference"`
	PaidAmount       float64 `json:"totalCCPaypal"`
	DiscountedAmount float64 `json:"totalGCRewardCard"`
	Count            int     `json:"count"`
}

// MismatchReport is the set of under-authorized orders in a window.
type MismatchReport struct {
	Window      Window
	Rows        []MismatchRow
	Totals      Totals
	Scanned     int
	Skipped     int
	GeneratedAt time.Time
}

// BuildMismatchReport keeps the results with a negative difference, in
// input order, and totals them.
func BuildMismatchReport(results []reconciler.Result) MismatchReport {
	rows := []MismatchRow{}
	var t Totals
	for _, r := range results {
		if !r.IsMismatch() {
			continue
		}
		rows = append(rows, rowFromResult(r))
		t.TotalAmount += r.TotalAmount
		t.AmountOwed += r.AmountOwed
		t.AuthorizedAmount += r.AuthorizedAmount
		t.Difference += r.Difference
		t.PaidAmount += r.PaidAmount
		t.DiscountedAmount += r.DiscountedAmount
	}

	t.TotalAmount = reconciler.Round2(t.TotalAmount)
	t.AmountOwed = reconciler.Round2(t.AmountOwed)
	t.AuthorizedAmount = reconciler.Round2(t.AuthorizedAmount)
	t.Difference = reconciler.Round2(t.Difference)
	t.PaidAmount = reconciler.Round2(t.PaidAmount)
	t.DiscountedAmount = reconciler.Round2(t.DiscountedAmount)
	t.Count = len(rows)

	return MismatchReport{Rows: rows, Totals: t, Scanned: len(results)}
}

func rowFromResult(r reconciler.Result) MismatchRow {
	return MismatchRow{
		PlacedOn:         ISOTime(r.PlacedOn),
		OrderID:          r.OrderID,
		Site:             r.Site,
		TotalAmount:      r.TotalAmount,
		AmountOwed:       r.AmountOwed,
		AuthorizedAmount: r.AuthorizedAmount,
		Difference:       r.Difference,
		PaidAmount:       r.PaidAmount,
		DiscountedAmount: r.DiscountedAmount,
		PaymentTypeIDs:   r.PaymentTypeIDs,
	}
}
