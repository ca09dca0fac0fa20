package app

import (
	"sync"
	"time"

	"github.com/mauv0809/courtside/internal/attendance"
	"github.com/mauv0809/courtside/internal/club"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/pubsub"
	"github.com/mauv0809/courtside/internal/remote"
)

// Mode is where the app stands with its backend.
type Mode string

const (
	Connecting   Mode = "connecting"
	Online       Mode = "online"
	OfflineLocal Mode = "offline-local"
)

// Stores groups one store per collection, all over the same client.
type Stores struct {
	Roster    club.RosterStore
	Trainings club.TrainingStore
	Matches   club.MatchStore
	Roles     club.RoleStore
	News      club.NewsStore
}

// Status is the startup outcome and the size of every collection.
type Status struct {
	Mode      Mode           `json:"mode"`
	Reason    string         `json:"reason,omitempty"`
	StartedAt time.Time      `json:"started_at"`
	Counts    map[string]int `json:"counts"`
	OpenCalls []int64        `json:"open_calls"`
}

// App owns the application state: the stores, the backend mode and the
// calls in progress, at most one per session.
type App struct {
	mu sync.RWMutex

	backend      remote.Client
	metrics      metrics.Metrics
	pubsub       pubsub.PubSubClient
	probeTimeout time.Duration

	mode      Mode
	reason    string
	startedAt time.Time
	stores    Stores

	callsMu sync.Mutex
	calls   map[int64]*attendance.Call
}
