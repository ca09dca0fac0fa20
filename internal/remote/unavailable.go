package remote

import "context"

var _ Client = unavailable{}

// unavailable stands in for a backend that could not be opened at all.
type unavailable struct {
	cause error
}

// Unavailable returns a Client whose every operation fails with cause, so
// startup takes the same probe-failure path as an unreachable backend.
func Unavailable(cause error) Client {
	return unavailable{cause: cause}
}

func (u unavailable) Probe(ctx context.Context) error {
	return newError("probe", TableRoster, u.cause)
}

func (u unavailable) Select(ctx context.Context, table Table, q Query) ([]Row, error) {
	return nil, newError("select", table, u.cause)
}

func (u unavailable) Insert(ctx context.Context, table Table, row Row) (Row, error) {
	return nil, newError("insert", table, u.cause)
}

func (u unavailable) Update(ctx context.Context, table Table, where Filter, patch Row) ([]Row, error) {
	return nil, newError("update", table, u.cause)
}

func (u unavailable) Delete(ctx context.Context, table Table, where Filter) (int64, error) {
	return 0, newError("delete", table, u.cause)
}
