package remote

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

var _ Client = (*Memory)(nil)

// Memory is a process-local Client. It backs the offline mode and tests; its
// contents are lost when the process exits.
type Memory struct {
	mu     sync.Mutex
	tables map[Table]*memTable
}

type memTable struct {
	nextID int64
	rows   []Row
}

// NewMemory returns an empty in-memory client with every table provisioned.
func NewMemory() *Memory {
	m := &Memory{tables: make(map[Table]*memTable, len(schema))}
	for table := range schema {
		m.tables[table] = &memTable{nextID: 1}
	}
	return m
}

func (m *Memory) Probe(ctx context.Context) error {
	return ctx.Err()
}

func (m *Memory) Select(ctx context.Context, table Table, q Query) ([]Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, kinds, err := m.table(table)
	if err != nil {
		return nil, newError("select", table, err)
	}
	if err := checkFilter(kinds, q.Where); err != nil {
		return nil, newError("select", table, err)
	}
	for _, o := range q.OrderBy {
		if _, ok := kinds[o.Column]; !ok {
			return nil, newError("select", table, fmt.Errorf("%w: %s", ErrUnknownColumn, o.Column))
		}
	}

	out := make([]Row, 0)
	for _, row := range t.rows {
		if matches(row, q.Where) {
			out = append(out, row.Clone())
		}
	}
	if len(q.OrderBy) > 0 {
		sort.SliceStable(out, func(i, j int) bool {
			for _, o := range q.OrderBy {
				c := compareValues(out[i][o.Column], out[j][o.Column])
				if c == 0 {
					continue
				}
				if o.Desc {
					return c > 0
				}
				return c < 0
			}
			return false
		})
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *Memory) Insert(ctx context.Context, table Table, row Row) (Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, kinds, err := m.table(table)
	if err != nil {
		return nil, newError("insert", table, err)
	}
	stored := make(Row, len(row)+1)
	for col, v := range row {
		if _, ok := kinds[col]; !ok {
			return nil, newError("insert", table, fmt.Errorf("%w: %s", ErrUnknownColumn, col))
		}
		stored[col] = v
	}
	stored["id"] = t.nextID
	t.nextID++
	t.rows = append(t.rows, stored)
	return stored.Clone(), nil
}

func (m *Memory) Update(ctx context.Context, table Table, where Filter, patch Row) ([]Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, kinds, err := m.table(table)
	if err != nil {
		return nil, newError("update", table, err)
	}
	if err := checkFilter(kinds, where); err != nil {
		return nil, newError("update", table, err)
	}
	for col := range patch {
		if _, ok := kinds[col]; !ok {
			return nil, newError("update", table, fmt.Errorf("%w: %s", ErrUnknownColumn, col))
		}
	}

	out := make([]Row, 0)
	for i, row := range t.rows {
		if !matches(row, where) {
			continue
		}
		updated := row.Clone()
		for col, v := range patch {
			if col == "id" {
				continue
			}
			updated[col] = v
		}
		t.rows[i] = updated
		out = append(out, updated.Clone())
	}
	return out, nil
}

func (m *Memory) Delete(ctx context.Context, table Table, where Filter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, kinds, err := m.table(table)
	if err != nil {
		return 0, newError("delete", table, err)
	}
	if err := checkFilter(kinds, where); err != nil {
		return 0, newError("delete", table, err)
	}

	kept := t.rows[:0]
	var n int64
	for _, row := range t.rows {
		if matches(row, where) {
			n++
			continue
		}
		kept = append(kept, row)
	}
	t.rows = kept
	return n, nil
}

func (m *Memory) table(table Table) (*memTable, map[string]columnKind, error) {
	kinds, err := columnsOf(table)
	if err != nil {
		return nil, nil, err
	}
	return m.tables[table], kinds, nil
}

func checkFilter(kinds map[string]columnKind, f Filter) error {
	for _, cond := range f {
		if _, ok := kinds[cond.Column]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownColumn, cond.Column)
		}
	}
	return nil
}

func matches(row Row, f Filter) bool {
	for _, cond := range f {
		if compareValues(row[cond.Column], cond.Value) != 0 {
			return false
		}
	}
	return true
}

// compareValues orders nil first, then numbers and booleans numerically, then
// everything else by its string form.
func compareValues(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}
	sa, sb := fmt.Sprint(a), fmt.Sprint(b)
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	}
	return 0
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}
