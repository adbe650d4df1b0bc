package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/eshaffer321/orderrecon/internal/application/report"
)

var mismatchWidths = []float64{34, 30, 12, 26, 26, 24, 24, 24, 28, 45}

// MismatchPDF renders the mismatch report as a landscape table.
func MismatchPDF(rep *report.MismatchReport) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Authorization Mismatch Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Window: %s to %s",
		rep.Window.Start.UTC().Format(timestampLayout), rep.Window.End.UTC().Format(timestampLayout)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", rep.GeneratedAt.UTC().Format(timestampLayout)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Mismatches: %d", rep.Totals.Count))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 8)
	for i, h := range mismatchHeaders {
		pdf.CellFormat(mismatchWidths[i], 6, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, r := range rep.Rows {
		cells := []string{
			r.PlacedOn.Time().UTC().Format(timestampLayout),
			r.OrderID,
			r.Site,
			money(r.TotalAmount),
			money(r.AmountOwed),
			money(r.AuthorizedAmount),
			money(r.Difference),
			money(r.PaidAmount),
			money(r.DiscountedAmount),
			r.PaymentTypeIDs,
		}
		for i, c := range cells {
			align := "R"
			if i < 3 || i == len(cells)-1 {
				align = "L"
			}
			pdf.CellFormat(mismatchWidths[i], 6, c, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	t := rep.Totals
	pdf.SetFont("Arial", "B", 8)
	totals := []string{"TOTAL", "", "", money(t.TotalAmount), money(t.AmountOwed), money(t.AuthorizedAmount),
		money(t.Difference), money(t.PaidAmount), money(t.DiscountedAmount), fmt.Sprintf("%d orders", t.Count)}
	for i, c := range totals {
		pdf.CellFormat(mismatchWidths[i], 6, c, "1", 0, "R", false, 0, "")
	}
	pdf.Ln(-1)

	return output(pdf)
}

// PaymentSummaryPDF renders the payment summary table.
func PaymentSummaryPDF(summary *report.PaymentSummary) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Payment Summary")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Last %d hours, generated %s",
		summary.Window.Hours, summary.GeneratedAt.UTC().Format(timestampLayout)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(70, 6, summaryHeaders[0], "1", 0, "C", false, 0, "")
	for _, h := range summaryHeaders[1:] {
		pdf.CellFormat(30, 6, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	for _, r := range summary.Rows {
		style := ""
		if r.Method == report.TotalRow {
			style = "B"
		}
		pdf.SetFont("Arial", style, 10)
		pdf.CellFormat(70, 6, r.Method, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%d", r.US), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%d", r.CA), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%d", r.Total), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	return output(pdf)
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
