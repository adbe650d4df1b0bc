package export

import (
	"bytes"

	"github.com/xuri/excelize/v2"

	"github.com/eshaffer321/orderrecon/internal/application/report"
)

const (
	mismatchSheet = "mismatches"
	totalsSheet   = "totals"
	summarySheet  = "payment-summary"
)

// MismatchXLSX renders the mismatch report with one row per order and a
// totals sheet.
func MismatchXLSX(rep *report.MismatchReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", mismatchSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(totalsSheet); err != nil {
		return nil, err
	}

	if err := writeRow(f, mismatchSheet, 1, toCells(mismatchHeaders)); err != nil {
		return nil, err
	}
	for i, r := range rep.Rows {
		cells := []interface{}{
			r.PlacedOn.Time().UTC().Format(timestampLayout),
			r.OrderID,
			r.Site,
			r.TotalAmount,
			r.AmountOwed,
			r.AuthorizedAmount,
			r.Difference,
			r.PaidAmount,
			r.DiscountedAmount,
			r.PaymentTypeIDs,
		}
		if err := writeRow(f, mismatchSheet, i+2, cells); err != nil {
			return nil, err
		}
	}

	t := rep.Totals
	totals := [][]interface{}{
		{"Window Start", rep.Window.Start.UTC().Format(timestampLayout)},
		{"Window End", rep.Window.End.UTC().Format(timestampLayout)},
		{"Mismatches", t.Count},
		{"Price Without Tax", t.TotalAmount},
		{"Tax & Shipping", t.AmountOwed},
		{"Amount Paid", t.AuthorizedAmount},
		{"Difference", t.Difference},
		{"CC / PayPal", t.PaidAmount},
		{"GC / Reward Card", t.DiscountedAmount},
	}
	for i, cells := range totals {
		if err := writeRow(f, totalsSheet, i+1, cells); err != nil {
			return nil, err
		}
	}

	return write(f)
}

// PaymentSummaryXLSX renders the payment summary table.
func PaymentSummaryXLSX(summary *report.PaymentSummary) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if err := writeRow(f, summarySheet, 1, toCells(summaryHeaders)); err != nil {
		return nil, err
	}
	for i, r := range summary.Rows {
		if err := writeRow(f, summarySheet, i+2, []interface{}{r.Method, r.US, r.CA, r.Total}); err != nil {
			return nil, err
		}
	}

	return write(f)
}

func writeRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &cells)
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

func write(f *excelize.File) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
