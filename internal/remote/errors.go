package remote

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Kind classifies a backend failure for the operator.
type Kind string

const (
	KindMissingSchema      Kind = "missing_schema"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindOther              Kind = "other"
)

// ErrUnknownColumn is returned when a row or filter names a column outside the schema.
var ErrUnknownColumn = errors.New("unknown column")

// Error is the failure returned by every Client operation.
type Error struct {
	Kind  Kind
	Op    string
	Table Table
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Table, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Reason is the human-readable message shown when an operation fails.
func (e *Error) Reason() string {
	switch e.Kind {
	case KindMissingSchema:
		return "The backend tables are missing. Run the schema migrations before using the app."
	case KindInvalidCredentials:
		return "The backend rejected our credentials. Check the database configuration."
	default:
		return fmt.Sprintf("Error during %s on %s: %v", e.Op, e.Table, e.Err)
	}
}

// KindOf returns the classified kind of err, or "" when err is not a backend error.
func KindOf(err error) Kind {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Kind
	}
	return ""
}

// ReasonOf returns the operator message for err. Errors that did not come
// from the backend keep their own text.
func ReasonOf(err error) string {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Reason()
	}
	return err.Error()
}

// IsMissingSchema reports whether err means the table is not provisioned.
func IsMissingSchema(err error) bool {
	return KindOf(err) == KindMissingSchema
}

func newError(op string, table Table, err error) *Error {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr
	}
	return &Error{Kind: classify(err), Op: op, Table: table, Err: err}
}

func classify(err error) Kind {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "42P01":
			return KindMissingSchema
		case "28P01", "28000":
			return KindInvalidCredentials
		}
		return KindOther
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "no such table"),
		strings.Contains(msg, "relation") && strings.Contains(msg, "does not exist"):
		return KindMissingSchema
	case strings.Contains(msg, "invalid api key"),
		strings.Contains(msg, "unauthorized"),
		strings.Contains(msg, "authentication failed"):
		return KindInvalidCredentials
	}
	return KindOther
}
