package storage

import (
	"context"
	"sort"
	"sync"
)

// MockOrderStore is an in-memory implementation of OrderStore for testing.
// It applies the same filters as the real stores to the records it holds.
type MockOrderStore struct {
	mu      sync.Mutex
	records []OrderRecord

	// Hooks for test assertions
	AcquireCalls          int
	ReleaseCalls          int
	Closed                bool
	LastOrderQuery        *OrderQuery
	LastPaymentGroupQuery *PaymentGroupQuery

	// Error injection for testing error paths
	AcquireErr error
	FindErr    error
	CountErr   error
}

// Compile-time check that MockOrderStore implements OrderStore
var _ OrderStore = (*MockOrderStore)(nil)

// NewMockOrderStore creates a mock store seeded with records.
func NewMockOrderStore(records ...OrderRecord) *MockOrderStore {
	return &MockOrderStore{records: append([]OrderRecord(nil), records...)}
}

// Add appends records to the mock store.
func (m *MockOrderStore) Add(records ...OrderRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, records...)
}

// Outstanding reports sessions acquired but not yet released.
func (m *MockOrderStore) Outstanding() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.AcquireCalls - m.ReleaseCalls
}

func (m *MockOrderStore) Acquire(ctx context.Context) (OrderSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AcquireErr != nil {
		return nil, m.AcquireErr
	}
	m.AcquireCalls++
	return &mockSession{store: m}, nil
}

func (m *MockOrderStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

type mockSession struct {
	store    *MockOrderStore
	released bool
}

func (s *mockSession) Release() error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if !s.released {
		s.released = true
		s.store.ReleaseCalls++
	}
	return nil
}

func (s *mockSession) FindOrders(ctx context.Context, q OrderQuery) ([]OrderRecord, error) {
	m := s.store
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastOrderQuery = &q
	if m.FindErr != nil {
		return nil, m.FindErr
	}

	states := make(map[string]bool, len(q.States))
	for _, st := range q.States {
		states[st] = true
	}

	out := []OrderRecord{}
	for _, r := range m.records {
		if r.CapturedDate.Before(q.CapturedFrom) || !r.CapturedDate.Before(q.CapturedTo) {
			continue
		}
		if !states[r.State] {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CapturedDate.Equal(out[j].CapturedDate) {
			return out[i].ID < out[j].ID
		}
		return out[i].CapturedDate.Before(out[j].CapturedDate)
	})
	return out, nil
}

func (s *mockSession) CountPaymentGroups(ctx context.Context, q PaymentGroupQuery) (map[string]int, error) {
	m := s.store
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastPaymentGroupQuery = &q
	if m.CountErr != nil {
		return nil, m.CountErr
	}

	counts := map[string]int{}
	for _, r := range m.records {
		if r.Country != q.Country {
			continue
		}
		if r.UpdatedAt.Before(q.UpdatedFrom) || !r.UpdatedAt.Before(q.UpdatedTo) {
			continue
		}
		for _, pg := range r.PaymentGroups {
			key := pg.Type
			if key == "" {
				key = UnknownPaymentGroupType
			}
			counts[key]++
		}
	}
	return counts, nil
}
