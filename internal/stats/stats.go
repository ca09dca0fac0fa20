// Package stats derives the dashboard figures. Every function reads through
// an attendance.View, so entries, roles and selections that point at deleted
// members never count.
package stats

import (
	"math"
	"sort"

	"github.com/mauv0809/courtside/internal/attendance"
	"github.com/mauv0809/courtside/internal/club"
)

// inScope reports whether an item scoped to item shows up under filter.
// Items scoped to every team show up under any filter.
func inScope(filter, item club.Team) bool {
	return filter == "" || filter == club.TeamAll || item == club.TeamAll || item == filter
}

func mean(values []int) int {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return int(math.Round(float64(sum) / float64(len(values))))
}

// ValidRoles drops assignments whose member or match no longer exists.
func ValidRoles(v *attendance.View, roles []club.RoleAssignment, matches []club.Match) []club.RoleAssignment {
	known := make(map[int64]struct{}, len(matches))
	for _, m := range matches {
		known[m.ID] = struct{}{}
	}
	out := make([]club.RoleAssignment, 0, len(roles))
	for _, r := range roles {
		if _, ok := v.Member(r.MemberID); !ok {
			continue
		}
		if _, ok := known[r.MatchID]; !ok {
			continue
		}
		out = append(out, r)
	}
	return out
}

// ScoreWarnings lists completed matches that still have no score.
func ScoreWarnings(matches []club.Match) []club.Match {
	out := make([]club.Match, 0)
	for _, m := range matches {
		if m.Status == club.MatchCompleted && !m.HasScore() {
			out = append(out, m)
		}
	}
	return out
}

// BuildDashboard computes the summary for team; the empty team means all.
func BuildDashboard(v *attendance.View, team club.Team, matches []club.Match, roles []club.RoleAssignment) Dashboard {
	if team == "" {
		team = club.TeamAll
	}
	d := Dashboard{
		Team:              team,
		AverageAttendance: v.AverageAttendance(),
		LastSession:       v.LastCompleted(),
	}

	members := v.Members(team)
	d.MemberCount = len(members)
	rates := make([]int, len(members))
	for i, m := range members {
		rates[i] = v.MemberRate(m.ID)
	}
	d.MeanMemberRate = mean(rates)

	for _, s := range v.Sessions() {
		if inScope(team, s.Team) {
			d.TrainingCount++
		}
	}

	scoped := make([]club.Match, 0, len(matches))
	for _, m := range matches {
		if !inScope(team, m.Team) {
			continue
		}
		scoped = append(scoped, m)
		if m.HasScore() {
			d.MatchesWithScore++
		}
	}
	d.ScoreWarnings = ScoreWarnings(scoped)
	d.RoleCount = len(ValidRoles(v, roles, matches))
	return d
}

// Player computes the stats of one member. It is false when the member no
// longer exists.
func Player(v *attendance.View, memberID int64, matches []club.Match, roles []club.RoleAssignment) (PlayerStats, bool) {
	m, ok := v.Member(memberID)
	if !ok {
		return PlayerStats{}, false
	}
	ps := PlayerStats{
		Member:         m,
		AttendanceRate: v.MemberRate(memberID),
		Roles:          make(map[club.RoleType]int),
	}
	for _, match := range matches {
		if match.Status == club.MatchCompleted && match.IsSelected(memberID) {
			ps.MatchesPlayed++
		}
	}
	for _, r := range ValidRoles(v, roles, matches) {
		if r.MemberID == memberID {
			ps.Roles[r.RoleType]++
		}
	}
	// Ties go to the role listed first.
	best := 0
	for _, rt := range club.RoleTypes {
		if n := ps.Roles[rt]; n > best {
			best = n
			ps.MostFrequentRole = rt
		}
	}
	return ps, true
}

func resultOf(score club.Score) Result {
	switch {
	case score.Ours > score.Theirs:
		return ResultWin
	case score.Ours < score.Theirs:
		return ResultLoss
	default:
		return ResultDraw
	}
}

// oneDecimal rounds to the tenth.
func oneDecimal(x float64) float64 {
	return math.Round(x*10) / 10
}

// Team computes the results of team over its scored completed matches.
// Matches scoped to every team count for each team.
func Team(v *attendance.View, team club.Team, matches []club.Match, roles []club.RoleAssignment) TeamStats {
	ts := TeamStats{Team: team, Streak: Streak{Result: ResultNone}}
	scored := make([]club.Match, 0, len(matches))
	for _, m := range matches {
		if !inScope(team, m.Team) || m.Status != club.MatchCompleted || !m.HasScore() {
			continue
		}
		scored = append(scored, m)
		ts.PointsFor += m.Score.Ours
		ts.PointsAgainst += m.Score.Theirs
		switch resultOf(*m.Score) {
		case ResultWin:
			ts.Wins++
		case ResultLoss:
			ts.Losses++
		default:
			ts.Draws++
		}
	}
	ts.Played = len(scored)
	if ts.Played > 0 {
		ts.WinRate = int(math.Round(float64(ts.Wins) * 100 / float64(ts.Played)))
		ts.AveragePointsFor = oneDecimal(float64(ts.PointsFor) / float64(ts.Played))
		ts.AveragePointsAgainst = oneDecimal(float64(ts.PointsAgainst) / float64(ts.Played))
		ts.Streak = streak(scored)
	}

	members := v.Members(team)
	rates := make([]int, len(members))
	for i, m := range members {
		rates[i] = v.MemberRate(m.ID)
	}
	ts.MeanAttendance = mean(rates)
	ts.MostEngaged = mostEngaged(members, ValidRoles(v, roles, matches))
	return ts
}

// streak counts how many of the latest results repeat the most recent one.
func streak(scored []club.Match) Streak {
	latest := append([]club.Match(nil), scored...)
	sort.SliceStable(latest, func(i, j int) bool {
		if latest[i].Date != latest[j].Date {
			return latest[i].Date > latest[j].Date
		}
		return latest[i].Time > latest[j].Time
	})
	s := Streak{Result: resultOf(*latest[0].Score)}
	for _, m := range latest {
		if resultOf(*m.Score) != s.Result {
			break
		}
		s.Count++
	}
	return s
}

// mostEngaged picks the non-captain member holding the most roles other than
// captain duty. Ties go to the member listed first; nil when nobody has one.
func mostEngaged(members []club.RosterMember, roles []club.RoleAssignment) *Engagement {
	var best *Engagement
	for _, m := range members {
		if m.IsCaptain {
			continue
		}
		held := make([]club.RoleAssignment, 0)
		for _, r := range roles {
			if r.MemberID == m.ID && r.RoleType != club.RoleCaptainDuty {
				held = append(held, r)
			}
		}
		if len(held) == 0 || (best != nil && len(held) <= best.RoleCount) {
			continue
		}
		best = &Engagement{Member: m, RoleCount: len(held), Roles: held}
	}
	return best
}

// Teams computes Team for both squads.
func Teams(v *attendance.View, matches []club.Match, roles []club.RoleAssignment) []TeamStats {
	return []TeamStats{Team(v, club.TeamTwo, matches, roles), Team(v, club.TeamThree, matches, roles)}
}
