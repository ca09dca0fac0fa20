package club

import (
	"strings"
	"time"
)

// Position is a player's court position.
type Position string

const (
	PositionPointGuard    Position = "point-guard"
	PositionShootingGuard Position = "shooting-guard"
	PositionSmallForward  Position = "small-forward"
	PositionPowerForward  Position = "power-forward"
	PositionCenter        Position = "center"
)

// Positions lists every position in lineup order.
var Positions = []Position{PositionPointGuard, PositionShootingGuard, PositionSmallForward, PositionPowerForward, PositionCenter}

func (p Position) Valid() bool {
	for _, v := range Positions {
		if p == v {
			return true
		}
	}
	return false
}

// Team identifies one of the club's two squads, or every squad when used as a scope.
type Team string

const (
	TeamTwo   Team = "2"
	TeamThree Team = "3"
	TeamAll   Team = "all"
)

// ValidMember reports whether a roster member can belong to t.
func (t Team) ValidMember() bool {
	return t == TeamTwo || t == TeamThree
}

// ValidScope reports whether t can scope a session, a match or a filter.
func (t Team) ValidScope() bool {
	return t == TeamAll || t.ValidMember()
}

// Includes reports whether a member of team member falls inside scope t.
// The empty scope behaves like TeamAll.
func (t Team) Includes(member Team) bool {
	return t == "" || t == TeamAll || t == member
}

// AttendanceStatus is the status recorded for one member at one session.
type AttendanceStatus string

const (
	StatusPresent      AttendanceStatus = "present"
	StatusAbsent       AttendanceStatus = "absent"
	StatusAbsentWarned AttendanceStatus = "absent-warned"
	StatusInjured      AttendanceStatus = "injured"
	StatusExcused      AttendanceStatus = "excused"
	StatusStage        AttendanceStatus = "stage"
)

// AttendanceStatuses lists every status in display order.
var AttendanceStatuses = []AttendanceStatus{StatusPresent, StatusAbsent, StatusAbsentWarned, StatusInjured, StatusExcused, StatusStage}

func (s AttendanceStatus) Valid() bool {
	for _, v := range AttendanceStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type SessionStatus string

const (
	SessionUpcoming  SessionStatus = "upcoming"
	SessionCompleted SessionStatus = "completed"
)

type MatchStatus string

const (
	MatchUpcoming  MatchStatus = "upcoming"
	MatchCompleted MatchStatus = "completed"
	MatchCancelled MatchStatus = "cancelled"
)

func (s MatchStatus) Valid() bool {
	return s == MatchUpcoming || s == MatchCompleted || s == MatchCancelled
}

// RoleType is a non-playing duty handed to a member for one match.
type RoleType string

const (
	RoleKitManager     RoleType = "kit_manager"
	RoleRefereeLiaison RoleType = "referee_liaison"
	RoleScorer         RoleType = "scorer"
	RoleMatchCoach     RoleType = "match_coach"
	RoleCaptainDuty    RoleType = "captain_duty"
)

var RoleTypes = []RoleType{RoleKitManager, RoleRefereeLiaison, RoleScorer, RoleMatchCoach, RoleCaptainDuty}

func (r RoleType) Valid() bool {
	for _, v := range RoleTypes {
		if r == v {
			return true
		}
	}
	return false
}

type LinkType string

const (
	LinkWeb       LinkType = "web"
	LinkInstagram LinkType = "instagram"
)

func (l LinkType) Valid() bool {
	return l == LinkWeb || l == LinkInstagram
}

// MaxSelectedPlayers caps a match selection.
const MaxSelectedPlayers = 10

// DefaultSessionType is used when a session row carries no type.
const DefaultSessionType = "training"

// RosterMember is a player tracked by the club.
type RosterMember struct {
	ID            int64    `json:"id"`
	FirstName     string   `json:"first_name"`
	LastName      string   `json:"last_name"`
	BirthDate     string   `json:"birth_date,omitempty"`
	LicenseNumber string   `json:"license_number,omitempty"`
	Position      Position `json:"position"`
	Team          Team     `json:"team"`
	IsCaptain     bool     `json:"is_captain"`
	// LastAttendance is a denormalized shortcut, not the attendance history.
	LastAttendance AttendanceStatus `json:"last_attendance,omitempty"`
}

func (m RosterMember) FullName() string {
	return strings.TrimSpace(m.FirstName + " " + m.LastName)
}

// TrainingSession is one scheduled training event.
type TrainingSession struct {
	ID          int64         `json:"id"`
	Date        string        `json:"date"`
	Time        string        `json:"time"`
	Type        string        `json:"type"`
	Theme       string        `json:"theme"`
	Location    string        `json:"location,omitempty"`
	Team        Team          `json:"team"`
	Status      SessionStatus `json:"status"`
	Description string        `json:"description,omitempty"`
}

func (s TrainingSession) Completed() bool {
	return s.Status == SessionCompleted
}

// AttendanceEntry is the status recorded for one member.
type AttendanceEntry struct {
	MemberID int64            `json:"member_id" msgpack:"member_id"`
	Status   AttendanceStatus `json:"status" msgpack:"status"`
}

// AttendanceRecord holds the whole call sheet of one session.
type AttendanceRecord struct {
	ID         int64             `json:"id"`
	TrainingID int64             `json:"training_id"`
	Date       string            `json:"date"`
	Entries    []AttendanceEntry `json:"attendances"`
}

// Score is a final result. A match either has both halves or none.
type Score struct {
	Ours   int `json:"our_score"`
	Theirs int `json:"opponent_score"`
}

type Match struct {
	ID                int64       `json:"id"`
	Date              string      `json:"date"`
	Time              string      `json:"time"`
	Opponent          string      `json:"opponent"`
	Championship      string      `json:"championship,omitempty"`
	ChampionshipFull  string      `json:"championship_full,omitempty"`
	Team              Team        `json:"team"`
	Location          string      `json:"location"`
	Status            MatchStatus `json:"status"`
	KitAssignment     string      `json:"kit_assignment,omitempty"`
	RefereeAssignment string      `json:"referee_assignment,omitempty"`
	ScorerAssignment  string      `json:"scorer_assignment,omitempty"`
	SelectedPlayers   []int64     `json:"selected_players"`
	Score             *Score      `json:"score,omitempty"`
	Comments          string      `json:"comments"`
}

func (m Match) HasScore() bool {
	return m.Score != nil
}

// IsSelected reports whether memberID is part of the match selection.
func (m Match) IsSelected(memberID int64) bool {
	for _, id := range m.SelectedPlayers {
		if id == memberID {
			return true
		}
	}
	return false
}

type RoleAssignment struct {
	ID         int64     `json:"id"`
	MemberID   int64     `json:"member_id"`
	RoleType   RoleType  `json:"role_type"`
	MatchID    int64     `json:"match_id"`
	AssignedAt time.Time `json:"assigned_at"`
}

type NewsLink struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	URL          string    `json:"url"`
	Type         LinkType  `json:"type"`
	DisplayOrder int       `json:"display_order"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}
