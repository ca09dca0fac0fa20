package remote

// Row is the loosely typed shape a backend returns for one record.
type Row map[string]any

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

type Table string

const (
	TableRoster     Table = "roster_members"
	TableMatches    Table = "matches"
	TableSessions   Table = "training_sessions"
	TableAttendance Table = "training_attendance_records"
	TableRoles      Table = "player_role_assignments"
	TableNews       Table = "news_links"
)

// Cond is a single column equality.
type Cond struct {
	Column string
	Value  any
}

// Filter is a conjunction of equalities. An empty filter matches every row.
type Filter []Cond

// Eq builds a one-condition filter.
func Eq(column string, value any) Filter {
	return Filter{{Column: column, Value: value}}
}

// And appends another equality to the filter.
func (f Filter) And(column string, value any) Filter {
	out := make(Filter, len(f), len(f)+1)
	copy(out, f)
	return append(out, Cond{Column: column, Value: value})
}

type Order struct {
	Column string
	Desc   bool
}

// Query describes a read. Limit <= 0 means no limit.
type Query struct {
	Where   Filter
	OrderBy []Order
	Limit   int
}

type columnKind int

const (
	kindScalar columnKind = iota
	// kindJSON columns hold lists or objects serialised as JSON text.
	kindJSON
)

// schema is the fixed set of tables and columns the clients accept.
var schema = map[Table]map[string]columnKind{
	TableRoster: {
		"id": kindScalar, "first_name": kindScalar, "last_name": kindScalar,
		"birth_date": kindScalar, "license_number": kindScalar, "position": kindScalar,
		"team": kindScalar, "is_captain": kindScalar, "last_attendance": kindScalar,
	},
	TableMatches: {
		"id": kindScalar, "date": kindScalar, "time": kindScalar, "opponent": kindScalar,
		"championship": kindScalar, "championship_full": kindScalar, "team": kindScalar,
		"location": kindScalar, "status": kindScalar, "kit_assignment": kindScalar,
		"referee_assignment": kindScalar, "scorer_assignment": kindScalar,
		"selected_players": kindJSON, "our_score": kindScalar, "opponent_score": kindScalar,
		"comments": kindScalar,
	},
	TableSessions: {
		"id": kindScalar, "date": kindScalar, "time": kindScalar, "type": kindScalar,
		"theme": kindScalar, "location": kindScalar, "team": kindScalar,
		"status": kindScalar, "description": kindScalar,
	},
	TableAttendance: {
		"id": kindScalar, "training_id": kindScalar, "date": kindScalar, "attendances": kindJSON,
	},
	TableRoles: {
		"id": kindScalar, "member_id": kindScalar, "role_type": kindScalar,
		"match_id": kindScalar, "assigned_at": kindScalar,
	},
	TableNews: {
		"id": kindScalar, "title": kindScalar, "url": kindScalar, "type": kindScalar,
		"display_order": kindScalar, "is_active": kindScalar, "created_at": kindScalar,
	},
}

// Tables lists every collection in a stable order.
func Tables() []Table {
	return []Table{TableRoster, TableMatches, TableSessions, TableAttendance, TableRoles, TableNews}
}
