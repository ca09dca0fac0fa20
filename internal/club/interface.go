package club

import "context"

// Every store owns one collection. Reads return copies of the local mirror;
// writes validate first, then call the backend, then update the mirror from
// the row the backend returned. A failed write leaves the mirror untouched.

type RosterStore interface {
	Fetch(ctx context.Context) ([]RosterMember, error)
	// Load replaces the mirror with a fresh fetch. A failed fetch keeps it.
	Load(ctx context.Context) error
	Replace(members []RosterMember)
	List() []RosterMember
	Get(id int64) (RosterMember, bool)
	Add(ctx context.Context, m RosterMember) (RosterMember, error)
	Update(ctx context.Context, m RosterMember) (RosterMember, error)
	Delete(ctx context.Context, id int64, confirmed bool) error
	UpdateAttendanceShortcut(ctx context.Context, id int64, status AttendanceStatus) (RosterMember, error)
}

type TrainingStore interface {
	FetchSessions(ctx context.Context) ([]TrainingSession, error)
	FetchRecords(ctx context.Context) ([]AttendanceRecord, error)
	Load(ctx context.Context) error
	Replace(sessions []TrainingSession, records []AttendanceRecord)
	Sessions() []TrainingSession
	Session(id int64) (TrainingSession, bool)
	Records() []AttendanceRecord
	Record(sessionID int64) (AttendanceRecord, bool)
	Add(ctx context.Context, s TrainingSession) (TrainingSession, error)
	Update(ctx context.Context, s TrainingSession) (TrainingSession, error)
	// Delete removes the session together with its attendance record.
	Delete(ctx context.Context, id int64, confirmed bool) error
	// SaveAttendance replaces the session's whole call sheet and marks it completed.
	SaveAttendance(ctx context.Context, sessionID int64, entries []AttendanceEntry) (AttendanceRecord, error)
}

type MatchStore interface {
	Fetch(ctx context.Context) ([]Match, error)
	Load(ctx context.Context) error
	Replace(matches []Match)
	List() []Match
	Get(id int64) (Match, bool)
	Add(ctx context.Context, m Match) (Match, error)
	Update(ctx context.Context, m Match) (Match, error)
	Delete(ctx context.Context, id int64, confirmed bool) error
	UpdatePlayers(ctx context.Context, id int64, players []int64) (Match, error)
	SelectPlayer(ctx context.Context, id, memberID int64) (Match, error)
	UnselectPlayer(ctx context.Context, id, memberID int64) (Match, error)
	// UpdateScore records the final score and marks the match completed.
	UpdateScore(ctx context.Context, id int64, score Score) (Match, error)
	SetStatus(ctx context.Context, id int64, status MatchStatus) (Match, error)
}

type RoleStore interface {
	Fetch(ctx context.Context) ([]RoleAssignment, error)
	Load(ctx context.Context) error
	Replace(roles []RoleAssignment)
	List() []RoleAssignment
	ForMember(memberID int64) []RoleAssignment
	ForMatch(matchID int64) []RoleAssignment
	// Assign returns the existing assignment, and created=false, when the
	// triple is already assigned.
	Assign(ctx context.Context, memberID int64, role RoleType, matchID int64) (a RoleAssignment, created bool, err error)
	Remove(ctx context.Context, id int64, confirmed bool) error
}

type NewsStore interface {
	Fetch(ctx context.Context) ([]NewsLink, error)
	Load(ctx context.Context) error
	Replace(links []NewsLink)
	Active() []NewsLink
	Add(ctx context.Context, l NewsLink) (NewsLink, error)
	// Remove deactivates the link; inactive links are never read back.
	Remove(ctx context.Context, id int64, confirmed bool) error
	// Save deactivates every active link, then inserts the valid subset of links in order.
	Save(ctx context.Context, links []NewsLink) ([]NewsLink, error)
}
