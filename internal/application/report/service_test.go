package report

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/orderrecon/internal/infrastructure/storage"
)

var now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(store storage.OrderStore) *Service {
	return NewService(store, nil).WithClock(func() time.Time { return now })
}

func order(id, state string, captured time.Time, doc string) storage.OrderRecord {
	return storage.OrderRecord{
		ID:           id,
		Country:      "USA",
		State:        state,
		CapturedDate: captured,
		UpdatedAt:    captured,
		Document:     json.RawMessage(doc),
	}
}

const underpaidDoc = `{
	"OrderId": "EB-1",
	"OrderTaxDetail": [{"TaxAmount": 5}],
	"OrderLine": [{"UnitPrice": 10, "Quantity": 2}],
	"Payment": [{"PaymentMethod": [{"Amount": 20, "PaymentType": {"PaymentTypeId": "Credit Card"}}]}]
}`

const paidDoc = `{
	"OrderId": "EB-2",
	"OrderTaxDetail": [{"TaxAmount": 5}],
	"OrderLine": [{"UnitPrice": 10, "Quantity": 2}],
	"Payment": [{"PaymentMethod": [{"Amount": 25, "PaymentType": {"PaymentTypeId": "Credit Card"}}]}]
}`

func TestService_MismatchReport(t *testing.T) {
	store := storage.NewMockOrderStore(
		order("1", "SUBMITTED_TO_MAO", now.Add(-time.Hour), underpaidDoc),
		order("2", "ORDER_ON_HOLD", now.Add(-2*time.Hour), paidDoc),
		order("3", "SHIPPED", now.Add(-time.Hour), underpaidDoc),
	)
	svc := newTestService(store)
	w := LastHours(now, 6)

	rep, err := svc.MismatchReport(context.Background(), w)
	require.NoError(t, err)

	require.Len(t, rep.Rows, 1)
	row := rep.Rows[0]
	assert.Equal(t, "EB-1", row.OrderID)
	assert.Equal(t, "US", row.Site)
	assert.Equal(t, 25.0, row.AmountOwed)
	assert.Equal(t, 20.0, row.AuthorizedAmount)
	assert.Equal(t, -5.0, row.Difference)
	assert.Equal(t, -5.0, rep.Totals.Difference)
	assert.Equal(t, 1, rep.Totals.Count)
	assert.Equal(t, 2, rep.Scanned)
	assert.Equal(t, w, rep.Window)
	assert.Equal(t, now, rep.GeneratedAt)

	require.NotNil(t, store.LastOrderQuery)
	assert.Equal(t, storage.ReportableStates, store.LastOrderQuery.States)
	assert.Equal(t, w.Start, store.LastOrderQuery.CapturedFrom)
	assert.Equal(t, 0, store.Outstanding())
}

func TestService_MismatchReport_SkipsUnreadableDocuments(t *testing.T) {
	stringDoc, err := json.Marshal(underpaidDoc)
	require.NoError(t, err)

	store := storage.NewMockOrderStore(
		order("bad-json", "SUBMITTED_TO_MAO", now.Add(-3*time.Hour), `{"OrderLine": {`),
		order("null", "SUBMITTED_TO_MAO", now.Add(-3*time.Hour), `null`),
		order("shape", "SUBMITTED_TO_MAO", now.Add(-3*time.Hour), `{"OrderLine": "x"}`),
		storage.OrderRecord{ID: "string", Country: "CA", State: "ORDER_ON_HOLD", CapturedDate: now.Add(-time.Hour), Document: stringDoc},
	)
	svc := newTestService(store)

	rep, err := svc.MismatchReport(context.Background(), LastHours(now, 6))
	require.NoError(t, err)

	assert.Equal(t, 4, rep.Scanned)
	assert.Equal(t, 3, rep.Skipped)
	require.Len(t, rep.Rows, 1)
	assert.Equal(t, "CA", rep.Rows[0].Site)
	assert.Equal(t, 0, store.Outstanding())
}

func TestService_MismatchReport_Empty(t *testing.T) {
	svc := newTestService(storage.NewMockOrderStore())

	rep, err := svc.MismatchReport(context.Background(), LastHours(now, 6))
	require.NoError(t, err)

	assert.Empty(t, rep.Rows)
	assert.NotNil(t, rep.Rows)
	assert.Equal(t, Totals{}, rep.Totals)
}

func TestService_MismatchReport_StoreFailures(t *testing.T) {
	store := storage.NewMockOrderStore()
	store.AcquireErr = errors.New("connection refused")
	svc := newTestService(store)

	_, err := svc.MismatchReport(context.Background(), LastHours(now, 6))
	assert.ErrorIs(t, err, ErrQueryFailure)
	assert.Contains(t, err.Error(), "connection refused")

	store.AcquireErr = nil
	store.FindErr = errors.New("cursor killed")
	_, err = svc.MismatchReport(context.Background(), LastHours(now, 6))
	assert.ErrorIs(t, err, ErrQueryFailure)
	assert.Equal(t, 0, store.Outstanding(), "session must be released on failure")
}

func TestService_PaymentSummary(t *testing.T) {
	us := func(id string, types ...string) storage.OrderRecord {
		rec := order(id, "SHIPPED", now.Add(-time.Hour), `{}`)
		for _, ty := range types {
			rec.PaymentGroups = append(rec.PaymentGroups, storage.PaymentGroup{Type: ty})
		}
		return rec
	}
	ca := func(id string, types ...string) storage.OrderRecord {
		rec := us(id, types...)
		rec.Country = "CA"
		return rec
	}
	old := us("old", "CreditCard")
	old.UpdatedAt = now.Add(-48 * time.Hour)

	store := storage.NewMockOrderStore(
		us("u1", "CreditCard", "CreditCard"),
		us("u2", "CreditCard"),
		ca("c1", "CreditCard", "GiftCard"),
		ca("c2", "CreditCard"),
		old,
	)
	svc := newTestService(store)

	summary, err := svc.PaymentSummary(context.Background(), 6)
	require.NoError(t, err)

	assert.Equal(t, []PaymentSummaryRow{
		{Method: "CreditCard", US: 3, CA: 2, Total: 5},
		{Method: "GiftCard", US: 0, CA: 1, Total: 1},
		{Method: TotalRow, US: 3, CA: 3, Total: 6},
	}, summary.Rows)
	assert.Equal(t, 6, summary.Window.Hours)
	assert.Equal(t, now, summary.Window.End)
	assert.Equal(t, 1, store.AcquireCalls, "both regions share one session")
	assert.Equal(t, 0, store.Outstanding())
}

func TestService_PaymentSummary_Errors(t *testing.T) {
	store := storage.NewMockOrderStore()
	svc := newTestService(store)

	_, err := svc.PaymentSummary(context.Background(), 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, 0, store.AcquireCalls)

	store.CountErr = errors.New("aggregate failed")
	_, err = svc.PaymentSummary(context.Background(), 6)
	assert.ErrorIs(t, err, ErrQueryFailure)
	assert.Equal(t, 0, store.Outstanding())
}
