package pubsub

import (
	"context"
	"sync"

	"cloud.google.com/go/pubsub"
	"github.com/mauv0809/courtside/internal/club"
)

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub. It doubles
// as the topic name.
type EventType string

const (
	EventAttendanceValidated EventType = "attendance-validated"
	EventMatchCompleted      EventType = "match-completed"
)

// Events lists every topic the app publishes to.
var Events = []EventType{EventAttendanceValidated, EventMatchCompleted}

func (e EventType) Valid() bool {
	return e == EventAttendanceValidated || e == EventMatchCompleted
}

// NamedEntry is an attendance entry with the member name resolved at
// publish time, so consumers need no roster lookup.
type NamedEntry struct {
	MemberID int64                 `msgpack:"member_id"`
	Name     string                `msgpack:"name"`
	Status   club.AttendanceStatus `msgpack:"status"`
}

// AttendanceValidated is published after a call is saved.
type AttendanceValidated struct {
	SessionID int64        `msgpack:"session_id"`
	Date      string       `msgpack:"date"`
	Time      string       `msgpack:"time"`
	Theme     string       `msgpack:"theme"`
	Team      club.Team    `msgpack:"team"`
	Entries   []NamedEntry `msgpack:"entries"`
	Present   int          `msgpack:"present"`
	Total     int          `msgpack:"total"`
	Edit      bool         `msgpack:"edit"`
}

// MatchCompleted is published after a final score is recorded.
type MatchCompleted struct {
	MatchID       int64     `msgpack:"match_id"`
	Date          string    `msgpack:"date"`
	Opponent      string    `msgpack:"opponent"`
	Championship  string    `msgpack:"championship"`
	Team          club.Team `msgpack:"team"`
	Location      string    `msgpack:"location"`
	OurScore      int       `msgpack:"our_score"`
	OpponentScore int       `msgpack:"opponent_score"`
	Players       []string  `msgpack:"players"`
}

// Handler consumes the raw payload of one event.
type Handler func(ctx context.Context, data []byte) error

// Loopback delivers messages in-process, synchronously, to the handler
// subscribed to the topic.
type Loopback struct {
	mu       sync.RWMutex
	handlers map[EventType]Handler
}
