package cli

import (
	"context"
	"io"

	"github.com/eshaffer321/orderrecon/internal/application/report"
)

// RunReport builds the report named by flags and writes it to w.
func RunReport(ctx context.Context, svc *report.Service, flags ReportFlags, defaultHours int, w io.Writer) error {
	hours := flags.Hours
	if hours == 0 || (hours < 0 && flags.HasRange()) {
		hours = defaultHours
	}

	if flags.Summary {
		summary, err := svc.PaymentSummary(ctx, hours)
		if err != nil {
			return err
		}
		return WritePaymentSummary(w, summary, flags.Format)
	}

	win, err := report.ResolveWindow(svc.Now(), hours, flags.Start, flags.End)
	if err != nil {
		return err
	}
	rep, err := svc.MismatchReport(ctx, win)
	if err != nil {
		return err
	}
	return WriteMismatchReport(w, rep, flags.Format)
}
