package stats

import (
	"github.com/mauv0809/courtside/internal/attendance"
	"github.com/mauv0809/courtside/internal/club"
)

// Dashboard is the club summary for one team filter.
type Dashboard struct {
	Team              club.Team           `json:"team"`
	MemberCount       int                 `json:"member_count"`
	TrainingCount     int                 `json:"training_count"`
	MatchesWithScore  int                 `json:"matches_with_score"`
	MeanMemberRate    int                 `json:"mean_member_rate"`
	RoleCount         int                 `json:"role_count"`
	AverageAttendance int                 `json:"average_attendance"`
	LastSession       attendance.Snapshot `json:"last_session"`
	ScoreWarnings     []club.Match        `json:"score_warnings"`
}

// PlayerStats summarizes one roster member.
type PlayerStats struct {
	Member           club.RosterMember     `json:"member"`
	AttendanceRate   int                   `json:"attendance_rate"`
	MatchesPlayed    int                   `json:"matches_played"`
	Roles            map[club.RoleType]int `json:"roles"`
	MostFrequentRole club.RoleType         `json:"most_frequent_role,omitempty"`
}

// TeamStats summarizes the results of one team.
type TeamStats struct {
	Team           club.Team `json:"team"`
	Played         int       `json:"played"`
	Wins           int       `json:"wins"`
	Losses         int       `json:"losses"`
	Draws          int       `json:"draws"`
	PointsFor      int       `json:"points_for"`
	PointsAgainst  int       `json:"points_against"`
	MeanAttendance int       `json:"mean_attendance"`
	// WinRate is the percentage of wins over played matches.
	WinRate              int         `json:"win_rate"`
	AveragePointsFor     float64     `json:"average_points_for"`
	AveragePointsAgainst float64     `json:"average_points_against"`
	Streak               Streak      `json:"streak"`
	MostEngaged          *Engagement `json:"most_engaged,omitempty"`
}

type Result string

const (
	ResultNone Result = "none"
	ResultWin  Result = "win"
	ResultLoss Result = "loss"
	ResultDraw Result = "draw"
)

// Streak is the run of identical results ending with the latest match.
type Streak struct {
	Result Result `json:"result"`
	Count  int    `json:"count"`
}

// Engagement is the member of a team carrying the most match duties.
type Engagement struct {
	Member    club.RosterMember     `json:"member"`
	RoleCount int                   `json:"role_count"`
	Roles     []club.RoleAssignment `json:"roles"`
}
