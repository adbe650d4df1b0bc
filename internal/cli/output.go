package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/eshaffer321/orderrecon/internal/api/dto"
	"github.com/eshaffer321/orderrecon/internal/application/report"
	"github.com/eshaffer321/orderrecon/internal/export"
)

// WriteMismatchReport renders rep to w in the given output format.
func WriteMismatchReport(w io.Writer, rep *report.MismatchReport, format string) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, dto.NewMismatchReportResponse(rep))
	case OutputXLSX:
		return writeBytes(w, export.MismatchXLSX, rep)
	case OutputPDF:
		return writeBytes(w, export.MismatchPDF, rep)
	default:
		return printMismatchTable(w, rep)
	}
}

// WritePaymentSummary renders summary to w in the given output format.
func WritePaymentSummary(w io.Writer, summary *report.PaymentSummary, format string) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, dto.NewPaymentSummaryResponse(summary))
	case OutputXLSX:
		return writeBytes(w, export.PaymentSummaryXLSX, summary)
	case OutputPDF:
		return writeBytes(w, export.PaymentSummaryPDF, summary)
	default:
		return printSummaryTable(w, summary)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeBytes[T any](w io.Writer, render func(T) ([]byte, error), v T) error {
	data, err := render(v)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// printHeader prints the report header line.
func printHeader(w io.Writer, title string, win report.Window) {
	fmt.Fprintf(w, "%s: %s .. %s (%d hours)\n\n",
		title, report.FormatISO(win.Start), report.FormatISO(win.End), win.Hours)
}

func printMismatchTable(w io.Writer, rep *report.MismatchReport) error {
	printHeader(w, "Authorization mismatches", rep.Window)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Placed On\tOrder ID\tSite\tPrice\tOwed\tAuthorized\tDifference\tPayments\t")
	for _, row := range rep.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%.2f\t%.2f\t%.2f\t%s\t\n",
			row.PlacedOn.Time().UTC().Format("2006-01-02 15:04"),
			row.OrderID, row.Site,
			row.TotalAmount, row.AmountOwed, row.AuthorizedAmount, row.Difference,
			row.PaymentTypeIDs)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w, strings.Repeat("-", 60))
	fmt.Fprintf(w, "Summary: Mismatches=%d Scanned=%d Skipped=%d Difference=%.2f\n",
		rep.Totals.Count, rep.Scanned, rep.Skipped, rep.Totals.Difference)
	return nil
}

func printSummaryTable(w io.Writer, summary *report.PaymentSummary) error {
	printHeader(w, "Payment methods", summary.Window)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Method\tUS\tCA\tTOTAL")
	for _, row := range summary.Rows {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", row.Method, row.US, row.CA, row.Total)
	}
	return tw.Flush()
}
