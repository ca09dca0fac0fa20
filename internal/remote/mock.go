package remote

import (
	"context"
	"sync"
)

var _ Client = (*MockClient)(nil)

// MockClient records every call and delegates to an in-memory client unless
// the matching Func hook is set. It is safe for concurrent use.
type MockClient struct {
	mu      sync.Mutex
	backing *Memory

	ProbeFunc  func(ctx context.Context) error
	SelectFunc func(ctx context.Context, table Table, q Query) ([]Row, error)
	InsertFunc func(ctx context.Context, table Table, row Row) (Row, error)
	UpdateFunc func(ctx context.Context, table Table, where Filter, patch Row) ([]Row, error)
	DeleteFunc func(ctx context.Context, table Table, where Filter) (int64, error)

	Calls []Call
}

// Call is one recorded operation.
type Call struct {
	Op    string
	Table Table
}

// NewMock creates a mock backed by a fresh Memory client.
func NewMock() *MockClient {
	return &MockClient{backing: NewMemory()}
}

// Backing exposes the delegate so tests can seed rows directly.
func (m *MockClient) Backing() *Memory {
	return m.backing
}

// CallCount returns the number of recorded calls, optionally restricted to one op.
func (m *MockClient) CallCount(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if op == "" {
		return len(m.Calls)
	}
	n := 0
	for _, c := range m.Calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Reset clears all call records.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = nil
}

func (m *MockClient) record(op string, table Table) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, Call{Op: op, Table: table})
}

func (m *MockClient) Probe(ctx context.Context) error {
	m.record("probe", TableRoster)
	if m.ProbeFunc != nil {
		return m.ProbeFunc(ctx)
	}
	return m.backing.Probe(ctx)
}

func (m *MockClient) Select(ctx context.Context, table Table, q Query) ([]Row, error) {
	m.record("select", table)
	if m.SelectFunc != nil {
		return m.SelectFunc(ctx, table, q)
	}
	return m.backing.Select(ctx, table, q)
}

func (m *MockClient) Insert(ctx context.Context, table Table, row Row) (Row, error) {
	m.record("insert", table)
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, table, row)
	}
	return m.backing.Insert(ctx, table, row)
}

func (m *MockClient) Update(ctx context.Context, table Table, where Filter, patch Row) ([]Row, error) {
	m.record("update", table)
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, table, where, patch)
	}
	return m.backing.Update(ctx, table, where, patch)
}

func (m *MockClient) Delete(ctx context.Context, table Table, where Filter) (int64, error) {
	m.record("delete", table)
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, table, where)
	}
	return m.backing.Delete(ctx, table, where)
}
