package club

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/remote"
)

// store holds what every collection store shares: the backend client,
// metrics and the in-flight guard. Each concrete store adds its own items
// under mu.
type store struct {
	collection remote.Table
	client     remote.Client
	metrics    metrics.Metrics
	now        func() time.Time

	mu sync.RWMutex

	flightMu sync.Mutex
	inFlight map[string]struct{}
}

func newStore(collection remote.Table, client remote.Client, m metrics.Metrics) *store {
	return &store{
		collection: collection,
		client:     client,
		metrics:    m,
		now:        time.Now,
		inFlight:   make(map[string]struct{}),
	}
}

// begin marks op as pending and returns the function that clears it. A second
// begin for the same op before it is cleared fails with ErrInFlight.
func (s *store) begin(op string, id ...int64) (func(), error) {
	key := op
	for _, v := range id {
		key += fmt.Sprintf(":%d", v)
	}
	s.flightMu.Lock()
	defer s.flightMu.Unlock()
	if _, busy := s.inFlight[key]; busy {
		log.Warn("Rejected duplicate submission", "collection", s.collection, "op", key)
		return nil, fmt.Errorf("%s %s: %w", s.collection, key, ErrInFlight)
	}
	s.inFlight[key] = struct{}{}
	return func() {
		s.flightMu.Lock()
		delete(s.inFlight, key)
		s.flightMu.Unlock()
	}, nil
}

func (s *store) rejected(op string, err error) error {
	s.metrics.IncValidationFailures(string(s.collection))
	log.Warn("Rejected invalid input", "collection", s.collection, "op", op, "error", err)
	return err
}

func (s *store) failed(op string, err error) error {
	kind := remote.KindOf(err)
	if kind == "" {
		kind = remote.KindOther
	}
	s.metrics.IncStoreFailures(string(s.collection), string(kind))
	log.Error("Backend operation failed", "collection", s.collection, "op", op, "kind", kind, "error", err)
	return err
}

func (s *store) written(op string, id int64) {
	s.metrics.IncStoreWrites(string(s.collection))
	log.Info("Backend write succeeded", "collection", s.collection, "op", op, "id", id)
}

// confirm enforces the explicit confirmation every delete requires.
func (s *store) confirm(op string, confirmed bool) error {
	if confirmed {
		return nil
	}
	return s.rejected(op, fmt.Errorf("%s %s: %w", op, s.collection, ErrNotConfirmed))
}

// single returns the one row an update-by-id is expected to touch.
func single(rows []remote.Row, id int64) (remote.Row, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("id %d: %w", id, ErrNotFound)
	}
	return rows[0], nil
}

func byID(id int64) remote.Filter {
	return remote.Eq("id", id)
}

func validDate(field, value string) error {
	if value == "" {
		return invalid(field, "is required")
	}
	if _, err := time.Parse(time.DateOnly, value); err != nil {
		return invalid(field, "must be a YYYY-MM-DD date, got %q", value)
	}
	return nil
}

func validClock(field, value string) error {
	if value == "" {
		return invalid(field, "is required")
	}
	if _, err := time.Parse("15:04", value); err != nil {
		if _, err := time.Parse("15:04:05", value); err != nil {
			return invalid(field, "must be an HH:MM time, got %q", value)
		}
	}
	return nil
}
