package club

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/mauv0809/courtside/internal/remote"
)

// The mapper translates backend rows into domain entities and back. Every
// function is pure and total: unknown or missing values fall back to the
// documented defaults instead of failing.

func RosterMemberFromRow(row remote.Row) RosterMember {
	return RosterMember{
		ID:             asInt64(row["id"]),
		FirstName:      asString(row["first_name"]),
		LastName:       asString(row["last_name"]),
		BirthDate:      asString(row["birth_date"]),
		LicenseNumber:  asString(row["license_number"]),
		Position:       Position(asString(row["position"])),
		Team:           Team(asString(row["team"])),
		IsCaptain:      asBool(row["is_captain"]),
		LastAttendance: AttendanceStatus(asString(row["last_attendance"])),
	}
}

func RosterMemberToRow(m RosterMember) remote.Row {
	return remote.Row{
		"id":              m.ID,
		"first_name":      m.FirstName,
		"last_name":       m.LastName,
		"birth_date":      optional(m.BirthDate),
		"license_number":  optional(m.LicenseNumber),
		"position":        string(m.Position),
		"team":            string(m.Team),
		"is_captain":      m.IsCaptain,
		"last_attendance": optional(string(m.LastAttendance)),
	}
}

func TrainingSessionFromRow(row remote.Row) TrainingSession {
	s := TrainingSession{
		ID:          asInt64(row["id"]),
		Date:        asDate(row["date"]),
		Time:        asString(row["time"]),
		Type:        asString(row["type"]),
		Theme:       asString(row["theme"]),
		Location:    asString(row["location"]),
		Team:        Team(asString(row["team"])),
		Status:      SessionStatus(asString(row["status"])),
		Description: asString(row["description"]),
	}
	if s.Type == "" {
		s.Type = DefaultSessionType
	}
	if s.Team == "" {
		s.Team = TeamAll
	}
	if s.Status == "" {
		s.Status = SessionUpcoming
	}
	return s
}

func TrainingSessionToRow(s TrainingSession) remote.Row {
	return remote.Row{
		"id":          s.ID,
		"date":        s.Date,
		"time":        s.Time,
		"type":        s.Type,
		"theme":       s.Theme,
		"location":    optional(s.Location),
		"team":        string(s.Team),
		"status":      string(s.Status),
		"description": optional(s.Description),
	}
}

func AttendanceRecordFromRow(row remote.Row) AttendanceRecord {
	return AttendanceRecord{
		ID:         asInt64(row["id"]),
		TrainingID: asInt64(row["training_id"]),
		Date:       asDate(row["date"]),
		Entries:    asEntries(row["attendances"]),
	}
}

func AttendanceRecordToRow(r AttendanceRecord) remote.Row {
	entries := make([]map[string]any, len(r.Entries))
	for i, e := range r.Entries {
		entries[i] = map[string]any{"memberId": e.MemberID, "status": string(e.Status)}
	}
	return remote.Row{
		"id":          r.ID,
		"training_id": r.TrainingID,
		"date":        r.Date,
		"attendances": entries,
	}
}

func MatchFromRow(row remote.Row) Match {
	m := Match{
		ID:                asInt64(row["id"]),
		Date:              asDate(row["date"]),
		Time:              asString(row["time"]),
		Opponent:          asString(row["opponent"]),
		Championship:      asString(row["championship"]),
		ChampionshipFull:  asString(row["championship_full"]),
		Team:              Team(asString(row["team"])),
		Location:          asString(row["location"]),
		Status:            MatchStatus(asString(row["status"])),
		KitAssignment:     asString(row["kit_assignment"]),
		RefereeAssignment: asString(row["referee_assignment"]),
		ScorerAssignment:  asString(row["scorer_assignment"]),
		SelectedPlayers:   asIDList(row["selected_players"]),
		Comments:          asString(row["comments"]),
	}
	if m.ChampionshipFull == "" {
		m.ChampionshipFull = m.Championship
	}
	if m.Team == "" {
		m.Team = TeamAll
	}
	if m.Status == "" {
		m.Status = MatchUpcoming
	}
	ours, okOurs := asOptInt(row["our_score"])
	theirs, okTheirs := asOptInt(row["opponent_score"])
	if okOurs && okTheirs {
		m.Score = &Score{Ours: ours, Theirs: theirs}
	}
	return m
}

func MatchToRow(m Match) remote.Row {
	selected := make([]int64, len(m.SelectedPlayers))
	copy(selected, m.SelectedPlayers)
	row := remote.Row{
		"id":                 m.ID,
		"date":               m.Date,
		"time":               m.Time,
		"opponent":           m.Opponent,
		"championship":       optional(m.Championship),
		"championship_full":  optional(m.ChampionshipFull),
		"team":               string(m.Team),
		"location":           m.Location,
		"status":             string(m.Status),
		"kit_assignment":     optional(m.KitAssignment),
		"referee_assignment": optional(m.RefereeAssignment),
		"scorer_assignment":  optional(m.ScorerAssignment),
		"selected_players":   selected,
		"our_score":          nil,
		"opponent_score":     nil,
		"comments":           m.Comments,
	}
	if m.Score != nil {
		row["our_score"] = int64(m.Score.Ours)
		row["opponent_score"] = int64(m.Score.Theirs)
	}
	return row
}

func RoleAssignmentFromRow(row remote.Row) RoleAssignment {
	return RoleAssignment{
		ID:         asInt64(row["id"]),
		MemberID:   asInt64(row["member_id"]),
		RoleType:   RoleType(asString(row["role_type"])),
		MatchID:    asInt64(row["match_id"]),
		AssignedAt: asTime(row["assigned_at"]),
	}
}

func RoleAssignmentToRow(r RoleAssignment) remote.Row {
	return remote.Row{
		"id":          r.ID,
		"member_id":   r.MemberID,
		"role_type":   string(r.RoleType),
		"match_id":    r.MatchID,
		"assigned_at": formatTime(r.AssignedAt),
	}
}

func NewsLinkFromRow(row remote.Row) NewsLink {
	l := NewsLink{
		ID:           asInt64(row["id"]),
		Title:        asString(row["title"]),
		URL:          asString(row["url"]),
		Type:         LinkType(asString(row["type"])),
		DisplayOrder: int(asInt64(row["display_order"])),
		IsActive:     true,
		CreatedAt:    asTime(row["created_at"]),
	}
	if v, ok := row["is_active"]; ok && v != nil {
		l.IsActive = asBool(v)
	}
	if l.Type == "" {
		l.Type = LinkWeb
	}
	return l
}

func NewsLinkToRow(l NewsLink) remote.Row {
	return remote.Row{
		"id":            l.ID,
		"title":         l.Title,
		"url":           l.URL,
		"type":          string(l.Type),
		"display_order": int64(l.DisplayOrder),
		"is_active":     l.IsActive,
		"created_at":    formatTime(l.CreatedAt),
	}
}

// withoutID drops the id column so a row can be used as an insert or patch.
func withoutID(row remote.Row) remote.Row {
	delete(row, "id")
	return row
}

func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}

// asDate keeps only the calendar day of date-like values.
func asDate(v any) string {
	if t, ok := v.(time.Time); ok {
		return t.Format(time.DateOnly)
	}
	s := asString(v)
	if len(s) > len(time.DateOnly) && s[len(time.DateOnly)] == 'T' {
		return s[:len(time.DateOnly)]
	}
	return s
}

func asInt64(v any) int64 {
	n, _ := toInt64(v)
	return n
}

func asOptInt(v any) (int, bool) {
	n, ok := toInt64(v)
	return int(n), ok
}

func toInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int32:
		return int64(t), true
	case int64:
		return t, true
	case float64:
		return int64(t), true
	case json.Number:
		n, err := t.Int64()
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		return n, err == nil
	case []byte:
		return toInt64(string(t))
	}
	return 0, false
}

func asBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, _ := strconv.ParseBool(t)
		return b
	case []byte:
		b, _ := strconv.ParseBool(string(t))
		return b
	}
	n, ok := toInt64(v)
	return ok && n != 0
}

var timeLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02 15:04:05.999999-07:00", time.DateOnly}

func asTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t.UTC()
	case nil:
		return time.Time{}
	}
	s := asString(v)
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed.UTC()
		}
	}
	return time.Time{}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func asIDList(v any) []int64 {
	out := make([]int64, 0)
	switch t := v.(type) {
	case []int64:
		return append(out, t...)
	case []any:
		for _, item := range t {
			if n, ok := toInt64(item); ok {
				out = append(out, n)
			}
		}
	case []int:
		for _, n := range t {
			out = append(out, int64(n))
		}
	case string, []byte:
		var decoded []any
		if err := json.Unmarshal([]byte(asString(t)), &decoded); err == nil {
			return asIDList(decoded)
		}
	}
	return out
}

// asEntries keeps the first entry of each member; a record never lists a
// member twice.
func asEntries(v any) []AttendanceEntry {
	entries := decodeEntries(v)
	seen := make(map[int64]struct{}, len(entries))
	out := entries[:0]
	for _, e := range entries {
		if _, dup := seen[e.MemberID]; dup {
			continue
		}
		seen[e.MemberID] = struct{}{}
		out = append(out, e)
	}
	return out
}

func decodeEntries(v any) []AttendanceEntry {
	out := make([]AttendanceEntry, 0)
	switch t := v.(type) {
	case []AttendanceEntry:
		return append(out, t...)
	case []map[string]any:
		for _, item := range t {
			out = appendEntry(out, item)
		}
	case []any:
		for _, item := range t {
			if m, ok := item.(map[string]any); ok {
				out = appendEntry(out, m)
			}
		}
	case string, []byte:
		var decoded []any
		if err := json.Unmarshal([]byte(asString(t)), &decoded); err == nil {
			return decodeEntries(decoded)
		}
	}
	return out
}

func appendEntry(out []AttendanceEntry, m map[string]any) []AttendanceEntry {
	var id int64
	var ok bool
	for _, key := range []string{"memberId", "member_id", "studentId"} {
		if id, ok = toInt64(m[key]); ok {
			break
		}
	}
	if !ok {
		return out
	}
	return append(out, AttendanceEntry{MemberID: id, Status: AttendanceStatus(asString(m["status"]))})
}
