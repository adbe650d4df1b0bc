package metrics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "orderrecon_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once
	gaugeOnce    sync.Once

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec

	reportTotal   *prometheus.CounterVec
	reportLatency *prometheus.HistogramVec

	ordersScanned   prometheus.Counter
	ordersSkipped   prometheus.Counter
	mismatchesFound prometheus.Counter

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec
)

// Init registers the service metrics with the default registry.
// Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "Total HTTP requests by route, method and status",
			},
			[]string{"route", "method", "status"},
		)
		httpLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		)

		reportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_total",
				Help: "Total report runs by report and result",
			},
			[]string{"report", "result"},
		)
		reportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_latency_seconds",
				Help:    "Report latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"report", "result"},
		)

		ordersScanned = prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "orders_scanned_total",
			Help: "Orders read from the store for reconciliation",
		})
		ordersSkipped = prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "orders_skipped_total",
			Help: "Orders skipped because their document could not be parsed",
		})
		mismatchesFound = prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "mismatches_found_total",
			Help: "Orders reported with an authorization shortfall",
		})

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total report exports by report, format and result",
			},
			[]string{"report", "format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Report export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"report", "format"},
		)

		prometheus.MustRegister(
			httpRequests,
			httpLatency,
			reportTotal,
			reportLatency,
			ordersScanned,
			ordersSkipped,
			mismatchesFound,
			exportTotal,
			exportLatency,
		)
	})
}

// RegisterOrderCount exposes the number of stored orders as a gauge.
// Only the first call registers.
func RegisterOrderCount(count func(ctx context.Context) (int, error), logger *slog.Logger) {
	if count == nil {
		return
	}
	gaugeOnce.Do(func() {
		prometheus.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: metricPrefix + "orders_stored",
				Help: "Orders held in the local order store",
			},
			func() float64 {
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				n, err := count(ctx)
				if err != nil {
					if logger != nil {
						logger.Warn("metrics query failed", slog.String("error", err.Error()))
					}
					return 0
				}
				return float64(n)
			},
		))
	})
}

// ObserveHTTPRequest records one served request.
func ObserveHTTPRequest(route, method string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	if httpRequests != nil {
		httpRequests.WithLabelValues(route, method, statusLabel(status)).Inc()
	}
	if httpLatency != nil {
		httpLatency.WithLabelValues(route, method).Observe(duration.Seconds())
	}
}

// ObserveReport records report latency and result.
func ObserveReport(report, result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if reportTotal != nil {
		reportTotal.WithLabelValues(report, result).Inc()
	}
	if reportLatency != nil {
		reportLatency.WithLabelValues(report, result).Observe(duration.Seconds())
	}
}

// AddOrdersScanned adds to the scanned, skipped and mismatch counters.
func AddOrdersScanned(scanned, skipped, mismatches int) {
	if ordersScanned != nil && scanned > 0 {
		ordersScanned.Add(float64(scanned))
	}
	if ordersSkipped != nil && skipped > 0 {
		ordersSkipped.Add(float64(skipped))
	}
	if mismatchesFound != nil && mismatches > 0 {
		mismatchesFound.Add(float64(mismatches))
	}
}

// ObserveExport records export latency and result.
func ObserveExport(report, format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(report, format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(report, format).Observe(duration.Seconds())
	}
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError

	ReportMismatch       = "mismatch"
	ReportPaymentSummary = "payment_summary"
)
