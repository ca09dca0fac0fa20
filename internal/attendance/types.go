package attendance

import (
	"errors"

	"github.com/mauv0809/courtside/internal/club"
)

// NotSet is the bucket for members without a recorded status.
const NotSet club.AttendanceStatus = "not-set"

// ErrWrongState is returned when a call operation does not fit the call's state.
var ErrWrongState = errors.New("call is not in the expected state")

// SessionStats counts valid entries only. Total is the number of entries,
// not the roster size.
type SessionStats struct {
	Present int `json:"present"`
	Total   int `json:"total"`
}

// Groups partitions a roster by status. Every status plus NotSet is always
// present as a key.
type Groups map[club.AttendanceStatus][]club.RosterMember

// Snapshot summarizes the most recent completed session with data.
// HasData is false when no completed session qualifies.
type Snapshot struct {
	HasData bool                          `json:"has_data"`
	Session club.TrainingSession          `json:"session"`
	Stats   SessionStats                  `json:"stats"`
	Counts  map[club.AttendanceStatus]int `json:"counts"`
}

// State is the lifecycle of one call.
type State string

const (
	NotStarted State = "not-started"
	InProgress State = "in-progress"
	Validated  State = "validated"
)

// Mode is how the operator walks the roster during a call.
type Mode string

const (
	Sequential Mode = "sequential"
	Free       Mode = "free"
)

func (m Mode) Valid() bool {
	return m == Sequential || m == Free
}
