package club

import (
	"context"
	"fmt"
	"strings"

	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/remote"
)

type rosterStore struct {
	*store
	members []RosterMember
}

// NewRosterStore creates a new RosterStore.
func NewRosterStore(client remote.Client, m metrics.Metrics) RosterStore {
	return &rosterStore{store: newStore(remote.TableRoster, client, m)}
}

func (s *rosterStore) Fetch(ctx context.Context) ([]RosterMember, error) {
	rows, err := s.client.Select(ctx, s.collection, remote.Query{
		OrderBy: []remote.Order{{Column: "last_name"}, {Column: "first_name"}},
	})
	if err != nil {
		return nil, s.failed("fetch", err)
	}
	members := make([]RosterMember, len(rows))
	for i, row := range rows {
		members[i] = RosterMemberFromRow(row)
	}
	sortRoster(members)
	return members, nil
}

func (s *rosterStore) Replace(members []RosterMember) {
	cp := append([]RosterMember(nil), members...)
	sortRoster(cp)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members = cp
}

func (s *rosterStore) Load(ctx context.Context) error {
	members, err := s.Fetch(ctx)
	if err != nil {
		return err
	}
	s.Replace(members)
	return nil
}

func (s *rosterStore) List() []RosterMember {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]RosterMember(nil), s.members...)
}

func (s *rosterStore) Get(id int64) (RosterMember, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.members {
		if m.ID == id {
			return m, true
		}
	}
	return RosterMember{}, false
}

func validateMember(m RosterMember) error {
	if strings.TrimSpace(m.FirstName) == "" {
		return invalid("first_name", "is required")
	}
	if strings.TrimSpace(m.LastName) == "" {
		return invalid("last_name", "is required")
	}
	if !m.Position.Valid() {
		return invalid("position", "unknown position %q", m.Position)
	}
	if !m.Team.ValidMember() {
		return invalid("team", "must be %q or %q, got %q", TeamTwo, TeamThree, m.Team)
	}
	if m.BirthDate != "" {
		if err := validDate("birth_date", m.BirthDate); err != nil {
			return err
		}
	}
	if m.LastAttendance != "" && !m.LastAttendance.Valid() {
		return invalid("last_attendance", "unknown status %q", m.LastAttendance)
	}
	return nil
}

// Add inserts a new member. New members start with a present shortcut status.
func (s *rosterStore) Add(ctx context.Context, m RosterMember) (RosterMember, error) {
	m.FirstName = strings.TrimSpace(m.FirstName)
	m.LastName = strings.TrimSpace(m.LastName)
	m.LastAttendance = StatusPresent
	if err := validateMember(m); err != nil {
		return RosterMember{}, s.rejected("add", err)
	}
	done, err := s.begin("add")
	if err != nil {
		return RosterMember{}, err
	}
	defer done()

	row, err := s.client.Insert(ctx, s.collection, withoutID(RosterMemberToRow(m)))
	if err != nil {
		return RosterMember{}, s.failed("add", err)
	}
	created := RosterMemberFromRow(row)
	s.written("add", created.ID)

	s.mu.Lock()
	s.members = append(s.members, created)
	sortRoster(s.members)
	s.mu.Unlock()
	return created, nil
}

func (s *rosterStore) Update(ctx context.Context, m RosterMember) (RosterMember, error) {
	m.FirstName = strings.TrimSpace(m.FirstName)
	m.LastName = strings.TrimSpace(m.LastName)
	if err := validateMember(m); err != nil {
		return RosterMember{}, s.rejected("update", err)
	}
	existing, ok := s.Get(m.ID)
	if !ok {
		return RosterMember{}, s.rejected("update", fmt.Errorf("roster member %d: %w", m.ID, ErrNotFound))
	}
	// The shortcut has its own operation; an update without one keeps it.
	if m.LastAttendance == "" {
		m.LastAttendance = existing.LastAttendance
	}
	return s.patch(ctx, "update", m.ID, withoutID(RosterMemberToRow(m)))
}

// UpdateAttendanceShortcut only touches the denormalized last-attendance field.
func (s *rosterStore) UpdateAttendanceShortcut(ctx context.Context, id int64, status AttendanceStatus) (RosterMember, error) {
	if !status.Valid() {
		return RosterMember{}, s.rejected("attendance-shortcut", invalid("last_attendance", "unknown status %q", status))
	}
	if _, ok := s.Get(id); !ok {
		return RosterMember{}, s.rejected("attendance-shortcut", fmt.Errorf("roster member %d: %w", id, ErrNotFound))
	}
	return s.patch(ctx, "attendance-shortcut", id, remote.Row{"last_attendance": string(status)})
}

func (s *rosterStore) patch(ctx context.Context, op string, id int64, patch remote.Row) (RosterMember, error) {
	done, err := s.begin(op, id)
	if err != nil {
		return RosterMember{}, err
	}
	defer done()

	rows, err := s.client.Update(ctx, s.collection, byID(id), patch)
	if err != nil {
		return RosterMember{}, s.failed(op, err)
	}
	row, err := single(rows, id)
	if err != nil {
		return RosterMember{}, s.failed(op, err)
	}
	updated := RosterMemberFromRow(row)
	s.written(op, id)

	s.mu.Lock()
	for i := range s.members {
		if s.members[i].ID == id {
			s.members[i] = updated
		}
	}
	sortRoster(s.members)
	s.mu.Unlock()
	return updated, nil
}

// Delete removes the member only. Attendance entries, selections and role
// assignments that reference it become stale and are filtered by readers.
func (s *rosterStore) Delete(ctx context.Context, id int64, confirmed bool) error {
	if err := s.confirm("delete", confirmed); err != nil {
		return err
	}
	done, err := s.begin("delete", id)
	if err != nil {
		return err
	}
	defer done()

	if _, err := s.client.Delete(ctx, s.collection, byID(id)); err != nil {
		return s.failed("delete", err)
	}
	s.written("delete", id)

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.members[:0]
	for _, m := range s.members {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	s.members = kept
	return nil
}
