package club

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/remote"
)

type roleStore struct {
	*store
	roles []RoleAssignment
}

// NewRoleStore creates a new RoleStore.
func NewRoleStore(client remote.Client, m metrics.Metrics) RoleStore {
	return &roleStore{store: newStore(remote.TableRoles, client, m)}
}

// Fetch reads every assignment. A backend without the roles table yields an
// empty list rather than an error.
func (s *roleStore) Fetch(ctx context.Context) ([]RoleAssignment, error) {
	rows, err := s.client.Select(ctx, s.collection, remote.Query{
		OrderBy: []remote.Order{{Column: "assigned_at", Desc: true}},
	})
	if remote.IsMissingSchema(err) {
		log.Warn("Role assignments table is missing, starting with no roles")
		return []RoleAssignment{}, nil
	}
	if err != nil {
		return nil, s.failed("fetch", err)
	}
	roles := make([]RoleAssignment, len(rows))
	for i, row := range rows {
		roles[i] = RoleAssignmentFromRow(row)
	}
	sortRoles(roles)
	return roles, nil
}

func (s *roleStore) Replace(roles []RoleAssignment) {
	cp := append([]RoleAssignment(nil), roles...)
	sortRoles(cp)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles = cp
}

func (s *roleStore) Load(ctx context.Context) error {
	roles, err := s.Fetch(ctx)
	if err != nil {
		return err
	}
	s.Replace(roles)
	return nil
}

func (s *roleStore) List() []RoleAssignment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]RoleAssignment(nil), s.roles...)
}

func (s *roleStore) ForMember(memberID int64) []RoleAssignment {
	return s.filter(func(r RoleAssignment) bool { return r.MemberID == memberID })
}

func (s *roleStore) ForMatch(matchID int64) []RoleAssignment {
	return s.filter(func(r RoleAssignment) bool { return r.MatchID == matchID })
}

func (s *roleStore) filter(keep func(RoleAssignment) bool) []RoleAssignment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]RoleAssignment, 0)
	for _, r := range s.roles {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// Assign checks the backend for the triple before inserting. The check and
// the insert are not atomic; two clients racing can still both insert.
func (s *roleStore) Assign(ctx context.Context, memberID int64, role RoleType, matchID int64) (RoleAssignment, bool, error) {
	if memberID <= 0 {
		return RoleAssignment{}, false, s.rejected("assign", invalid("member_id", "is required"))
	}
	if matchID <= 0 {
		return RoleAssignment{}, false, s.rejected("assign", invalid("match_id", "is required"))
	}
	if !role.Valid() {
		return RoleAssignment{}, false, s.rejected("assign", invalid("role_type", "unknown role %q", role))
	}
	done, err := s.begin(fmt.Sprintf("assign:%s", role), memberID, matchID)
	if err != nil {
		return RoleAssignment{}, false, err
	}
	defer done()

	existing, err := s.client.Select(ctx, s.collection, remote.Query{
		Where: remote.Eq("member_id", memberID).And("role_type", string(role)).And("match_id", matchID),
		Limit: 1,
	})
	if err != nil {
		return RoleAssignment{}, false, s.failed("assign", err)
	}
	if len(existing) > 0 {
		found := RoleAssignmentFromRow(existing[0])
		log.Info("Role already assigned", "memberID", memberID, "role", role, "matchID", matchID, "id", found.ID)
		s.upsertLocal(found)
		return found, false, nil
	}

	row, err := s.client.Insert(ctx, s.collection, withoutID(RoleAssignmentToRow(RoleAssignment{
		MemberID:   memberID,
		RoleType:   role,
		MatchID:    matchID,
		AssignedAt: s.now().UTC(),
	})))
	if err != nil {
		return RoleAssignment{}, false, s.failed("assign", err)
	}
	created := RoleAssignmentFromRow(row)
	s.written("assign", created.ID)
	s.upsertLocal(created)
	return created, true, nil
}

func (s *roleStore) upsertLocal(a RoleAssignment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.roles {
		if s.roles[i].ID == a.ID {
			s.roles[i] = a
			return
		}
	}
	s.roles = append(s.roles, a)
	sortRoles(s.roles)
}

func (s *roleStore) Remove(ctx context.Context, id int64, confirmed bool) error {
	if err := s.confirm("remove", confirmed); err != nil {
		return err
	}
	done, err := s.begin("remove", id)
	if err != nil {
		return err
	}
	defer done()

	if _, err := s.client.Delete(ctx, s.collection, byID(id)); err != nil {
		return s.failed("remove", err)
	}
	s.written("remove", id)

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.roles[:0]
	for _, r := range s.roles {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	s.roles = kept
	return nil
}
