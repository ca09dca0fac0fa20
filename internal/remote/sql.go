package remote

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/database"
)

var _ Client = (*sqlClient)(nil)

type sqlClient struct {
	db      *sql.DB
	dialect database.Dialect
}

// NewSQL returns a Client backed by a database/sql connection.
func NewSQL(db *sql.DB, dialect database.Dialect) Client {
	return &sqlClient{db: db, dialect: dialect}
}

func (c *sqlClient) Probe(ctx context.Context) error {
	var id int64
	err := c.db.QueryRowContext(ctx, "SELECT id FROM "+string(TableRoster)+" LIMIT 1").Scan(&id)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return newError("probe", TableRoster, err)
	}
	return nil
}

func (c *sqlClient) Select(ctx context.Context, table Table, q Query) ([]Row, error) {
	kinds, err := columnsOf(table)
	if err != nil {
		return nil, newError("select", table, err)
	}

	var b strings.Builder
	b.WriteString("SELECT * FROM ")
	b.WriteString(string(table))
	where, args, err := c.whereClause(kinds, q.Where, 1)
	if err != nil {
		return nil, newError("select", table, err)
	}
	b.WriteString(where)
	if len(q.OrderBy) > 0 {
		parts := make([]string, 0, len(q.OrderBy))
		for _, o := range q.OrderBy {
			if _, ok := kinds[o.Column]; !ok {
				return nil, newError("select", table, fmt.Errorf("%w: %s", ErrUnknownColumn, o.Column))
			}
			dir := "ASC"
			if o.Desc {
				dir = "DESC"
			}
			parts = append(parts, o.Column+" "+dir)
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(parts, ", "))
	}
	if q.Limit > 0 {
		b.WriteString(" LIMIT " + strconv.Itoa(q.Limit))
	}

	log.Debug("Executing select", "table", table, "query", b.String())
	rows, err := c.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, newError("select", table, err)
	}
	out, err := scanRows(rows, kinds)
	if err != nil {
		return nil, newError("select", table, err)
	}
	return out, nil
}

func (c *sqlClient) Insert(ctx context.Context, table Table, row Row) (Row, error) {
	kinds, err := columnsOf(table)
	if err != nil {
		return nil, newError("insert", table, err)
	}
	cols := writableColumns(row)
	if len(cols) == 0 {
		return nil, newError("insert", table, errors.New("no columns to insert"))
	}

	placeholders := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, col := range cols {
		kind, ok := kinds[col]
		if !ok {
			return nil, newError("insert", table, fmt.Errorf("%w: %s", ErrUnknownColumn, col))
		}
		if args[i], err = encodeValue(kind, row[col]); err != nil {
			return nil, newError("insert", table, err)
		}
		placeholders[i] = c.placeholder(i + 1)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		table, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, newError("insert", table, err)
	}
	out, err := scanRows(rows, kinds)
	if err != nil {
		return nil, newError("insert", table, err)
	}
	if len(out) != 1 {
		return nil, newError("insert", table, fmt.Errorf("expected one returned row, got %d", len(out)))
	}
	return out[0], nil
}

func (c *sqlClient) Update(ctx context.Context, table Table, where Filter, patch Row) ([]Row, error) {
	kinds, err := columnsOf(table)
	if err != nil {
		return nil, newError("update", table, err)
	}
	cols := writableColumns(patch)
	if len(cols) == 0 {
		return nil, newError("update", table, errors.New("empty patch"))
	}

	sets := make([]string, len(cols))
	args := make([]any, 0, len(cols)+len(where))
	for i, col := range cols {
		kind, ok := kinds[col]
		if !ok {
			return nil, newError("update", table, fmt.Errorf("%w: %s", ErrUnknownColumn, col))
		}
		v, err := encodeValue(kind, patch[col])
		if err != nil {
			return nil, newError("update", table, err)
		}
		args = append(args, v)
		sets[i] = col + " = " + c.placeholder(i+1)
	}
	whereSQL, whereArgs, err := c.whereClause(kinds, where, len(cols)+1)
	if err != nil {
		return nil, newError("update", table, err)
	}
	args = append(args, whereArgs...)

	query := fmt.Sprintf("UPDATE %s SET %s%s RETURNING *", table, strings.Join(sets, ", "), whereSQL)
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, newError("update", table, err)
	}
	out, err := scanRows(rows, kinds)
	if err != nil {
		return nil, newError("update", table, err)
	}
	return out, nil
}

func (c *sqlClient) Delete(ctx context.Context, table Table, where Filter) (int64, error) {
	kinds, err := columnsOf(table)
	if err != nil {
		return 0, newError("delete", table, err)
	}
	whereSQL, args, err := c.whereClause(kinds, where, 1)
	if err != nil {
		return 0, newError("delete", table, err)
	}
	res, err := c.db.ExecContext(ctx, "DELETE FROM "+string(table)+whereSQL, args...)
	if err != nil {
		return 0, newError("delete", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, newError("delete", table, err)
	}
	return n, nil
}

func (c *sqlClient) placeholder(n int) string {
	if c.dialect == database.DialectPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

func (c *sqlClient) whereClause(kinds map[string]columnKind, f Filter, start int) (string, []any, error) {
	if len(f) == 0 {
		return "", nil, nil
	}
	parts := make([]string, len(f))
	args := make([]any, len(f))
	for i, cond := range f {
		if _, ok := kinds[cond.Column]; !ok {
			return "", nil, fmt.Errorf("%w: %s", ErrUnknownColumn, cond.Column)
		}
		parts[i] = cond.Column + " = " + c.placeholder(start+i)
		args[i] = cond.Value
	}
	return " WHERE " + strings.Join(parts, " AND "), args, nil
}

func columnsOf(table Table) (map[string]columnKind, error) {
	kinds, ok := schema[table]
	if !ok {
		return nil, fmt.Errorf("no such table: %s", table)
	}
	return kinds, nil
}

// writableColumns returns the row's columns in a stable order. Ids are always
// generated by the backend and never written.
func writableColumns(row Row) []string {
	cols := make([]string, 0, len(row))
	for col := range row {
		if col == "id" {
			continue
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

func encodeValue(kind columnKind, v any) (any, error) {
	if kind != kindJSON || v == nil {
		return v, nil
	}
	switch t := v.(type) {
	case string:
		return t, nil
	case []byte:
		return string(t), nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode json column: %w", err)
	}
	return string(raw), nil
}

func scanRows(rows *sql.Rows, kinds map[string]columnKind) ([]Row, error) {
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := make([]Row, 0)
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(Row, len(cols))
		for i, col := range cols {
			row[col] = decodeValue(kinds[col], vals[i])
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func decodeValue(kind columnKind, v any) any {
	if b, ok := v.([]byte); ok {
		v = string(b)
	}
	if kind != kindJSON {
		return v
	}
	s, ok := v.(string)
	if !ok {
		return v
	}
	var decoded any
	if err := json.Unmarshal([]byte(s), &decoded); err != nil {
		log.Warn("Column holds invalid json, keeping raw text", "error", err)
		return s
	}
	return decoded
}
