package dto

import (
	"time"

	"github.com/eshaffer321/orderrecon/internal/application/report"
)

const isoLayout = report.ISOLayout

// usLocaleLayout matches the dashboard's en-US date rendering.
const usLocaleLayout = "1/2/2006, 3:04:05 PM"

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Store     string `json:"store,omitempty"`
	Timestamp string `json:"timestamp"`
}

// TimeRange is the window a report covered.
type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// MismatchReportResponse is returned by the mismatch report endpoint.
type MismatchReportResponse struct {
	Success           bool                 `json:"success"`
	Hours             int                  `json:"hours"`
	AuthMismatchCount int                  `json:"authMismatchCount"`
	Data              []report.MismatchRow `json:"data"`
	Totals            report.Totals        `json:"totals"`
	LastUpdated       string               `json:"lastUpdated"`
	TimeRange         TimeRange            `json:"timeRange"`
}

// PaymentSummaryResponse is returned by the payment summary endpoint.
type PaymentSummaryResponse struct {
	Success     bool                       `json:"success"`
	Hours       int                        `json:"hours"`
	TableData   []report.PaymentSummaryRow `json:"tableData"`
	LastUpdated string                     `json:"lastUpdated"`
}

// NewHealthResponse creates a healthy response.
func NewHealthResponse(now time.Time) HealthResponse {
	return HealthResponse{
		Status:    "ok",
		Timestamp: now.UTC().Format(time.RFC3339),
	}
}

// NewMismatchReportResponse converts a report to its response body.
func NewMismatchReportResponse(rep *report.MismatchReport) MismatchReportResponse {
	rows := rep.Rows
	if rows == nil {
		rows = []report.MismatchRow{}
	}
	return MismatchReportResponse{
		Success:           true,
		Hours:             rep.Window.Hours,
		AuthMismatchCount: len(rows),
		Data:              rows,
		Totals:            rep.Totals,
		LastUpdated:       rep.GeneratedAt.UTC().Format(isoLayout),
		TimeRange: TimeRange{
			Start: rep.Window.Start.UTC().Format(isoLayout),
			End:   rep.Window.End.UTC().Format(isoLayout),
		},
	}
}

// NewPaymentSummaryResponse converts a summary to its response body.
func NewPaymentSummaryResponse(summary *report.PaymentSummary) PaymentSummaryResponse {
	rows := summary.Rows
	if rows == nil {
		rows = []report.PaymentSummaryRow{}
	}
	return PaymentSummaryResponse{
		Success:     true,
		Hours:       summary.Window.Hours,
		TableData:   rows,
		LastUpdated: summary.GeneratedAt.UTC().Format(usLocaleLayout),
	}
}
