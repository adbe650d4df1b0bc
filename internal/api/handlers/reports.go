package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/eshaffer321/orderrecon/internal/api/dto"
	"github.com/eshaffer321/orderrecon/internal/application/report"
	"github.com/eshaffer321/orderrecon/internal/export"
	"github.com/eshaffer321/orderrecon/internal/observability/metrics"
)

// ReportsHandler serves the mismatch report and the payment summary.
type ReportsHandler struct {
	*Base
	service      *report.Service
	defaultHours int
}

// NewReportsHandler creates a reports handler.
func NewReportsHandler(base *Base, service *report.Service, defaultHours int) *ReportsHandler {
	if defaultHours < 1 {
		defaultHours = report.DefaultHours
	}
	return &ReportsHandler{Base: base, service: service, defaultHours: defaultHours}
}

// MismatchReport handles GET /api/mismatch-report.
func (h *ReportsHandler) MismatchReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.mismatch(r)
	if err != nil {
		h.WriteFailure(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, dto.NewMismatchReportResponse(rep))
}

// PaymentSummary handles GET /api/payment-summary.
func (h *ReportsHandler) PaymentSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.paymentSummary(r)
	if err != nil {
		h.WriteFailure(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, dto.NewPaymentSummaryResponse(summary))
}

// ExportMismatchReport handles GET /api/mismatch-report/export.
func (h *ReportsHandler) ExportMismatchReport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		h.WriteFailure(w, r, err)
		return
	}

	rep, err := h.mismatch(r)
	if err != nil {
		h.WriteFailure(w, r, err)
		return
	}

	h.writeExport(w, r, metrics.ReportMismatch, "mismatch-report", format, rep.GeneratedAt, func() ([]byte, error) {
		if format == export.FormatPDF {
			return export.MismatchPDF(rep)
		}
		return export.MismatchXLSX(rep)
	})
}

// ExportPaymentSummary handles GET /api/payment-summary/export.
func (h *ReportsHandler) ExportPaymentSummary(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		h.WriteFailure(w, r, err)
		return
	}

	summary, err := h.paymentSummary(r)
	if err != nil {
		h.WriteFailure(w, r, err)
		return
	}

	h.writeExport(w, r, metrics.ReportPaymentSummary, "payment-summary", format, summary.GeneratedAt, func() ([]byte, error) {
		if format == export.FormatPDF {
			return export.PaymentSummaryPDF(summary)
		}
		return export.PaymentSummaryXLSX(summary)
	})
}

func (h *ReportsHandler) mismatch(r *http.Request) (*report.MismatchReport, error) {
	req, err := ReadWindowRequest(r)
	if err != nil {
		return nil, err
	}
	// An explicit range makes hours irrelevant, so a bad value is only an
	// error when the window falls back to it.
	hours, err := report.ParseHours(r.URL.Query().Get("hours"), h.defaultHours)
	if err != nil {
		if !req.HasRange() {
			return nil, err
		}
		hours = h.defaultHours
	}
	window, err := report.ResolveWindow(h.service.Now(), hours, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	return h.service.MismatchReport(r.Context(), window)
}

func (h *ReportsHandler) paymentSummary(r *http.Request) (*report.PaymentSummary, error) {
	hours, err := report.ParseHours(r.URL.Query().Get("hours"), h.defaultHours)
	if err != nil {
		return nil, err
	}
	return h.service.PaymentSummary(r.Context(), hours)
}

func (h *ReportsHandler) writeExport(w http.ResponseWriter, r *http.Request, reportName, filePrefix string, format export.Format, generated time.Time, render func() ([]byte, error)) {
	start := time.Now()
	data, err := render()
	if err != nil {
		metrics.ObserveExport(reportName, string(format), metrics.ResultError, time.Since(start))
		h.WriteFailure(w, r, fmt.Errorf("render %s export: %w", format, err))
		return
	}
	metrics.ObserveExport(reportName, string(format), metrics.ResultSuccess, time.Since(start))

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename(filePrefix, format, generated)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
