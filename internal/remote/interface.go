package remote

import "context"

// Client performs row-level operations against the club's table-store.
// Every failure is returned as an *Error carrying a classified Kind.
type Client interface {
	// Probe is a cheap existence read used to decide whether the backend is usable.
	Probe(ctx context.Context) error
	Select(ctx context.Context, table Table, q Query) ([]Row, error)
	// Insert returns the created row, including its generated id.
	Insert(ctx context.Context, table Table, row Row) (Row, error)
	// Update applies patch to every row matching where and returns the updated rows.
	Update(ctx context.Context, table Table, where Filter, patch Row) ([]Row, error)
	Delete(ctx context.Context, table Table, where Filter) (int64, error)
}
