package storage

import (
	"context"
	"time"
)

// OrderStore is the order store gateway used by the reports.
// Implementations exist for SQLite and MongoDB; tests use MockOrderStore.
type OrderStore interface {
	// Acquire opens a session scoped to one report request.
	// Callers must Release it on every exit path.
	Acquire(ctx context.Context) (OrderSession, error)

	// Close releases the underlying connection pool or client.
	Close() error
}

// OrderSession is a request-scoped handle on the store.
type OrderSession interface {
	// FindOrders returns orders captured inside the query window whose
	// state is one of the requested states, projected to the fields the
	// reconciliation needs.
	FindOrders(ctx context.Context, q OrderQuery) ([]OrderRecord, error)

	// CountPaymentGroups unwinds the payment groups of the orders updated
	// inside the window for one country and counts them by type.
	CountPaymentGroups(ctx context.Context, q PaymentGroupQuery) (map[string]int, error)

	// Release returns the session's resources.
	Release() error
}

// OrderQuery filters orders for the mismatch report.
type OrderQuery struct {
	CapturedFrom time.Time // inclusive
	CapturedTo   time.Time // exclusive
	States       []string
}

// PaymentGroupQuery filters orders for the payment summary.
type PaymentGroupQuery struct {
	UpdatedFrom time.Time // inclusive
	UpdatedTo   time.Time // exclusive
	Country     string
}

// ReportableStates are the order states the mismatch report looks at.
var ReportableStates = []string{"SUBMITTED_TO_MAO", "ORDER_ON_HOLD"}

// UnknownPaymentGroupType labels payment groups stored without a type.
const UnknownPaymentGroupType = "UNKNOWN"
