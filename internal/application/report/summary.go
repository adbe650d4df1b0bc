package report

import (
	"sort"
	"time"
)

// TotalRow labels the synthetic trailing row of the payment summary.
const TotalRow = "TOTAL"

// Region is a country queried by the payment summary.
type Region struct {
	Country string // value stored on the order
	Site    string // column label
}

// SummaryRegions are the fixed regions of the payment summary.
var SummaryRegions = []Region{
	{Country: "USA", Site: "US"},
	{Country: "CA", Site: "CA"},
}

// PaymentSummaryRow counts payment groups of one method per region.
type PaymentSummaryRow struct {
	Method string `json:"method"`
	US     int    `json:"US"`
	CA     int    `json:"CA"`
	Total  int    `json:"TOTAL"`
}

// PaymentSummary is the payment method breakdown for a window.
type PaymentSummary struct {
	Window      Window
	Rows        []PaymentSummaryRow
	GeneratedAt time.Time
}

// BuildPaymentSummary merges per-country counts, keyed by stored country,
// into one row per method sorted by method name, followed by a TOTAL row.
func BuildPaymentSummary(counts map[string]map[string]int) []PaymentSummaryRow {
	methods := map[string]bool{}
	for _, byMethod := range counts {
		for method := range byMethod {
			methods[method] = true
		}
	}

	names := make([]string, 0, len(methods))
	for m := range methods {
		names = append(names, m)
	}
	sort.Strings(names)

	rows := make([]PaymentSummaryRow, 0, len(names)+1)
	total := PaymentSummaryRow{Method: TotalRow}
	for _, m := range names {
		row := PaymentSummaryRow{
			Method: m,
			US:     counts["USA"][m],
			CA:     counts["CA"][m],
		}
		row.Total = row.US + row.CA
		total.US += row.US
		total.CA += row.CA
		total.Total += row.Total
		rows = append(rows, row)
	}
	return append(rows, total)
}
