package attendance

import (
	"math"
	"sort"

	"github.com/mauv0809/courtside/internal/club"
)

// View resolves attendance against the current roster and sessions. Entries
// for deleted members and records for deleted sessions are dropped once, at
// construction, so every aggregate below sees the same filtered data.
type View struct {
	roster   []club.RosterMember
	members  map[int64]club.RosterMember
	sessions []club.TrainingSession
	valid    map[int64][]club.AttendanceEntry
}

// NewView builds the valid-reference view. The inputs are not retained.
func NewView(roster []club.RosterMember, sessions []club.TrainingSession, records []club.AttendanceRecord) *View {
	v := &View{
		roster:   append([]club.RosterMember(nil), roster...),
		members:  make(map[int64]club.RosterMember, len(roster)),
		sessions: append([]club.TrainingSession(nil), sessions...),
		valid:    make(map[int64][]club.AttendanceEntry, len(records)),
	}
	for _, m := range roster {
		v.members[m.ID] = m
	}
	known := make(map[int64]struct{}, len(sessions))
	for _, s := range sessions {
		known[s.ID] = struct{}{}
	}
	for _, r := range records {
		if _, ok := known[r.TrainingID]; !ok {
			continue
		}
		entries := make([]club.AttendanceEntry, 0, len(r.Entries))
		for _, e := range r.Entries {
			if _, ok := v.members[e.MemberID]; ok {
				entries = append(entries, e)
			}
		}
		v.valid[r.TrainingID] = entries
	}
	return v
}

func (v *View) Roster() []club.RosterMember {
	return append([]club.RosterMember(nil), v.roster...)
}

func (v *View) Sessions() []club.TrainingSession {
	return append([]club.TrainingSession(nil), v.sessions...)
}

// Member resolves id against the current roster.
func (v *View) Member(id int64) (club.RosterMember, bool) {
	m, ok := v.members[id]
	return m, ok
}

// Members returns the roster members inside team scope, in roster order.
func (v *View) Members(team club.Team) []club.RosterMember {
	out := make([]club.RosterMember, 0, len(v.roster))
	for _, m := range v.roster {
		if team.Includes(m.Team) {
			out = append(out, m)
		}
	}
	return out
}

// ValidEntries returns the session's entries whose member still exists.
func (v *View) ValidEntries(sessionID int64) []club.AttendanceEntry {
	return append([]club.AttendanceEntry{}, v.valid[sessionID]...)
}

// Statuses returns the valid entries of a session keyed by member.
func (v *View) Statuses(sessionID int64) map[int64]club.AttendanceStatus {
	out := make(map[int64]club.AttendanceStatus, len(v.valid[sessionID]))
	for _, e := range v.valid[sessionID] {
		out[e.MemberID] = e.Status
	}
	return out
}

func (v *View) SessionStats(sessionID int64) SessionStats {
	var stats SessionStats
	for _, e := range v.valid[sessionID] {
		stats.Total++
		if e.Status == club.StatusPresent {
			stats.Present++
		}
	}
	return stats
}

// StatusCounts counts the session's valid entries per status.
func (v *View) StatusCounts(sessionID int64) map[club.AttendanceStatus]int {
	counts := make(map[club.AttendanceStatus]int, len(club.AttendanceStatuses))
	for _, s := range club.AttendanceStatuses {
		counts[s] = 0
	}
	for _, e := range v.valid[sessionID] {
		counts[e.Status]++
	}
	return counts
}

// GroupByStatus puts every member inside team scope in exactly one bucket:
// the status found in statuses, or NotSet. Members keep roster order within
// a bucket. Entries in statuses for members outside the scope are ignored.
func (v *View) GroupByStatus(team club.Team, statuses map[int64]club.AttendanceStatus) Groups {
	groups := make(Groups, len(club.AttendanceStatuses)+1)
	for _, s := range club.AttendanceStatuses {
		groups[s] = []club.RosterMember{}
	}
	groups[NotSet] = []club.RosterMember{}
	for _, m := range v.Members(team) {
		status, ok := statuses[m.ID]
		if !ok || !status.Valid() {
			status = NotSet
		}
		groups[status] = append(groups[status], m)
	}
	return groups
}

// MemberRate is the share of the member's recorded sessions where they were
// present, as a rounded percentage. A member with no recorded session gets 100.
func (v *View) MemberRate(memberID int64) int {
	var present, total int
	for _, entries := range v.valid {
		for _, e := range entries {
			if e.MemberID != memberID {
				continue
			}
			total++
			if e.Status == club.StatusPresent {
				present++
			}
		}
	}
	if total == 0 {
		return 100
	}
	return percent(present, total)
}

// AverageAttendance pools every valid entry of every record. It is 0 when
// nothing has been recorded.
func (v *View) AverageAttendance() int {
	var present, total int
	for _, entries := range v.valid {
		for _, e := range entries {
			total++
			if e.Status == club.StatusPresent {
				present++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return percent(present, total)
}

// LastCompleted returns the newest completed session whose record still has
// at least one valid entry.
func (v *View) LastCompleted() Snapshot {
	completed := make([]club.TrainingSession, 0, len(v.sessions))
	for _, s := range v.sessions {
		if s.Completed() {
			completed = append(completed, s)
		}
	}
	sort.SliceStable(completed, func(i, j int) bool {
		if completed[i].Date != completed[j].Date {
			return completed[i].Date > completed[j].Date
		}
		return completed[i].Time > completed[j].Time
	})
	for _, s := range completed {
		if len(v.valid[s.ID]) == 0 {
			continue
		}
		return Snapshot{
			HasData: true,
			Session: s,
			Stats:   v.SessionStats(s.ID),
			Counts:  v.StatusCounts(s.ID),
		}
	}
	return Snapshot{}
}

func percent(part, whole int) int {
	return int(math.Round(100 * float64(part) / float64(whole)))
}
