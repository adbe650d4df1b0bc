package storage

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	tmpDB := createTempDB(t)
	t.Cleanup(func() { os.Remove(tmpDB) })

	store, err := NewStorage(tmpDB)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestStorage_FindOrders_FiltersWindowAndState(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	orders := []OrderRecord{
		{ID: "in-1", Country: "USA", State: "SUBMITTED_TO_MAO", CapturedDate: base.Add(-30 * time.Minute), UpdatedAt: base, Document: json.RawMessage(`{"OrderId":"in-1"}`)},
		{ID: "in-2", Country: "CA", State: "ORDER_ON_HOLD", CapturedDate: base.Add(-2 * time.Hour), UpdatedAt: base, Document: json.RawMessage(`{"OrderId":"in-2"}`)},
		{ID: "wrong-state", Country: "USA", State: "SHIPPED", CapturedDate: base.Add(-time.Hour), UpdatedAt: base, Document: json.RawMessage(`{}`)},
		{ID: "too-old", Country: "USA", State: "SUBMITTED_TO_MAO", CapturedDate: base.Add(-5 * time.Hour), UpdatedAt: base, Document: json.RawMessage(`{}`)},
		{ID: "at-end", Country: "USA", State: "SUBMITTED_TO_MAO", CapturedDate: base, UpdatedAt: base, Document: json.RawMessage(`{}`)},
	}
	for i := range orders {
		require.NoError(t, store.SaveOrder(ctx, &orders[i]))
	}

	sess, err := store.Acquire(ctx)
	require.NoError(t, err)
	defer sess.Release()

	got, err := sess.FindOrders(ctx, OrderQuery{
		CapturedFrom: base.Add(-4 * time.Hour),
		CapturedTo:   base,
		States:       ReportableStates,
	})
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Oldest capture first.
	assert.Equal(t, "in-2", got[0].ID)
	assert.Equal(t, "in-1", got[1].ID)
	assert.Equal(t, "CA", got[0].Country)
	assert.Equal(t, base.Add(-2*time.Hour), got[0].CapturedDate)
	assert.JSONEq(t, `{"OrderId":"in-2"}`, string(got[0].Document))
}

func TestStorage_FindOrders_NoStates(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	sess, err := store.Acquire(ctx)
	require.NoError(t, err)
	defer sess.Release()

	got, err := sess.FindOrders(ctx, OrderQuery{CapturedFrom: base.Add(-time.Hour), CapturedTo: base})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStorage_SaveOrder_UnwrapsStringDocument(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	raw, err := json.Marshal(`{"OrderId":"S-1","OrderLine":[]}`)
	require.NoError(t, err)

	rec := &OrderRecord{ID: "S-1", Country: "USA", State: "ORDER_ON_HOLD", CapturedDate: base.Add(-time.Minute), UpdatedAt: base, Document: raw}
	require.NoError(t, store.SaveOrder(ctx, rec))

	sess, err := store.Acquire(ctx)
	require.NoError(t, err)
	defer sess.Release()

	got, err := sess.FindOrders(ctx, OrderQuery{CapturedFrom: base.Add(-time.Hour), CapturedTo: base, States: ReportableStates})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.JSONEq(t, `{"OrderId":"S-1","OrderLine":[]}`, string(got[0].Document))
}

func TestStorage_SaveOrder_AssignsID(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	rec := &OrderRecord{Country: "USA", State: "SUBMITTED_TO_MAO", CapturedDate: base, UpdatedAt: base, Document: json.RawMessage(`{}`)}
	require.NoError(t, store.SaveOrder(ctx, rec))

	_, err := uuid.Parse(rec.ID)
	assert.NoError(t, err, "generated id should be a uuid")

	n, err := store.CountOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStorage_SaveOrder_ReplacesPaymentGroups(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	rec := &OrderRecord{
		ID: "R-1", Country: "USA", State: "SUBMITTED_TO_MAO", CapturedDate: base, UpdatedAt: base.Add(-time.Minute),
		Document:      json.RawMessage(`{}`),
		PaymentGroups: []PaymentGroup{{Type: "CREDIT_CARD"}, {Type: "GIFT_CARD"}},
	}
	require.NoError(t, store.SaveOrder(ctx, rec))

	rec.PaymentGroups = []PaymentGroup{{Type: "PAYPAL"}}
	require.NoError(t, store.SaveOrder(ctx, rec))

	n, err := store.CountOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	sess, err := store.Acquire(ctx)
	require.NoError(t, err)
	defer sess.Release()

	counts, err := sess.CountPaymentGroups(ctx, PaymentGroupQuery{UpdatedFrom: base.Add(-time.Hour), UpdatedTo: base, Country: "USA"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"PAYPAL": 1}, counts)
}

func TestStorage_CountPaymentGroups(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	orders := []OrderRecord{
		{ID: "u1", Country: "USA", State: "SHIPPED", UpdatedAt: base.Add(-10 * time.Minute), PaymentGroups: []PaymentGroup{{Type: "CREDIT_CARD"}, {Type: "GIFT_CARD"}}},
		{ID: "u2", Country: "USA", State: "SHIPPED", UpdatedAt: base.Add(-20 * time.Minute), PaymentGroups: []PaymentGroup{{Type: "CREDIT_CARD"}, {}}},
		{ID: "c1", Country: "CA", State: "SHIPPED", UpdatedAt: base.Add(-10 * time.Minute), PaymentGroups: []PaymentGroup{{Type: "CREDIT_CARD"}}},
		{ID: "old", Country: "USA", State: "SHIPPED", UpdatedAt: base.Add(-2 * time.Hour), PaymentGroups: []PaymentGroup{{Type: "CREDIT_CARD"}}},
	}
	for i := range orders {
		orders[i].CapturedDate = base
		orders[i].Document = json.RawMessage(`{}`)
		require.NoError(t, store.SaveOrder(ctx, &orders[i]))
	}

	sess, err := store.Acquire(ctx)
	require.NoError(t, err)
	defer sess.Release()

	q := PaymentGroupQuery{UpdatedFrom: base.Add(-time.Hour), UpdatedTo: base}

	q.Country = "USA"
	us, err := sess.CountPaymentGroups(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"CREDIT_CARD": 2, "GIFT_CARD": 1, UnknownPaymentGroupType: 1}, us)

	q.Country = "CA"
	ca, err := sess.CountPaymentGroups(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"CREDIT_CARD": 1}, ca)

	q.Country = "MX"
	mx, err := sess.CountPaymentGroups(ctx, q)
	require.NoError(t, err)
	assert.Empty(t, mx)
}

func TestStorage_AcquireAfterClose(t *testing.T) {
	tmpDB := createTempDB(t)
	defer os.Remove(tmpDB)

	store, err := NewStorage(tmpDB)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = store.Acquire(context.Background())
	assert.Error(t, err)
}

func TestOrderRecord_DocumentJSON(t *testing.T) {
	rec := OrderRecord{Document: json.RawMessage(` {"a":1} `)}
	doc, err := rec.DocumentJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(doc))

	rec.Document = json.RawMessage(`"{\"a\":2}"`)
	doc, err = rec.DocumentJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"a":2}`, string(doc))

	rec.Document = json.RawMessage(`"unterminated`)
	_, err = rec.DocumentJSON()
	assert.Error(t, err)

	assert.Equal(t, "<unknown>", OrderRecord{}.Key())
	assert.Equal(t, "x", OrderRecord{ID: "x"}.Key())
}
