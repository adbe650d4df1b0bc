package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/eshaffer321/orderrecon/internal/domain/reconciler"
	"github.com/eshaffer321/orderrecon/internal/infrastructure/storage"
	"github.com/eshaffer321/orderrecon/internal/observability/metrics"
)

// Service runs the reports against an order store.
type Service struct {
	store  storage.OrderStore
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a report service.
func NewService(store storage.OrderStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  store,
		logger: logger.With("component", "report"),
		now:    time.Now,
	}
}

// WithClock replaces the clock used for windows and timestamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Now returns the service clock's current time in UTC.
func (s *Service) Now() time.Time {
	return s.now().UTC()
}

// MismatchReport reconciles the reportable orders captured in w and
// returns those whose authorization falls short.
func (s *Service) MismatchReport(ctx context.Context, w Window) (report *MismatchReport, err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveReport(metrics.ReportMismatch, resultLabel(err), time.Since(start))
	}()

	sess, err := s.store.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailure, err)
	}
	defer s.release(sess)

	records, err := sess.FindOrders(ctx, storage.OrderQuery{
		CapturedFrom: w.Start,
		CapturedTo:   w.End,
		States:       storage.ReportableStates,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailure, err)
	}

	results := make([]reconciler.Result, 0, len(records))
	skipped := 0
	for _, rec := range records {
		order, err := toOrder(rec)
		if err != nil {
			var parseErr *reconciler.DocumentParseError
			if !errors.As(err, &parseErr) {
				return nil, err
			}
			skipped++
			s.logger.Warn("skipping order with unreadable document",
				slog.String("order", rec.Key()),
				slog.String("error", err.Error()),
			)
			continue
		}
		results = append(results, reconciler.Reconcile(order))
	}

	built := BuildMismatchReport(results)
	built.Window = w
	built.Scanned = len(records)
	built.Skipped = skipped
	built.GeneratedAt = s.Now()

	metrics.AddOrdersScanned(len(records), skipped, built.Totals.Count)
	s.logger.Info("mismatch report built",
		slog.Int("orders", len(records)),
		slog.Int("skipped", skipped),
		slog.Int("mismatches", built.Totals.Count),
		slog.String("start", FormatISO(w.Start)),
		slog.String("end", FormatISO(w.End)),
	)

	return &built, nil
}

// PaymentSummary counts payment groups per method and region for orders
// updated in the last hours.
func (s *Service) PaymentSummary(ctx context.Context, hours int) (summary *PaymentSummary, err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveReport(metrics.ReportPaymentSummary, resultLabel(err), time.Since(start))
	}()

	if hours < 1 {
		return nil, fmt.Errorf("%w: hours must be at least 1, got %d", ErrInvalidInput, hours)
	}
	w := LastHours(s.Now(), hours)

	sess, err := s.store.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailure, err)
	}
	defer s.release(sess)

	counts := make(map[string]map[string]int, len(SummaryRegions))
	for _, region := range SummaryRegions {
		byMethod, err := sess.CountPaymentGroups(ctx, storage.PaymentGroupQuery{
			UpdatedFrom: w.Start,
			UpdatedTo:   w.End,
			Country:     region.Country,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrQueryFailure, region.Country, err)
		}
		counts[region.Country] = byMethod
	}

	rows := BuildPaymentSummary(counts)
	s.logger.Info("payment summary built",
		slog.Int("hours", hours),
		slog.Int("methods", len(rows)-1),
	)

	return &PaymentSummary{Window: w, Rows: rows, GeneratedAt: s.Now()}, nil
}

func (s *Service) release(sess storage.OrderSession) {
	if err := sess.Release(); err != nil {
		s.logger.Warn("failed to release order store session", slog.String("error", err.Error()))
	}
}

// toOrder parses the stored document of rec.
func toOrder(rec storage.OrderRecord) (reconciler.Order, error) {
	raw, err := rec.DocumentJSON()
	if err != nil {
		return reconciler.Order{}, &reconciler.DocumentParseError{OrderKey: rec.Key(), Err: err}
	}
	doc, err := reconciler.ParseDocument(raw)
	if err != nil {
		var parseErr *reconciler.DocumentParseError
		if errors.As(err, &parseErr) {
			parseErr.OrderKey = rec.Key()
		}
		return reconciler.Order{}, err
	}
	return reconciler.Order{
		CapturedDate: rec.CapturedDate,
		State:        rec.State,
		Country:      rec.Country,
		Document:     doc,
	}, nil
}

func resultLabel(err error) string {
	if err != nil {
		return metrics.ResultError
	}
	return metrics.ResultSuccess
}
