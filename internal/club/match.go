package club

import (
	"context"
	"fmt"
	"strings"

	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/remote"
)

type matchStore struct {
	*store
	matches []Match
}

// NewMatchStore creates a new MatchStore.
func NewMatchStore(client remote.Client, m metrics.Metrics) MatchStore {
	return &matchStore{store: newStore(remote.TableMatches, client, m)}
}

func (s *matchStore) Fetch(ctx context.Context) ([]Match, error) {
	rows, err := s.client.Select(ctx, s.collection, remote.Query{
		OrderBy: []remote.Order{{Column: "date", Desc: true}, {Column: "time", Desc: true}},
	})
	if err != nil {
		return nil, s.failed("fetch", err)
	}
	matches := make([]Match, len(rows))
	for i, row := range rows {
		matches[i] = MatchFromRow(row)
	}
	sortMatches(matches)
	return matches, nil
}

func (s *matchStore) Replace(matches []Match) {
	cp := append([]Match(nil), matches...)
	sortMatches(cp)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches = cp
}

func (s *matchStore) Load(ctx context.Context) error {
	matches, err := s.Fetch(ctx)
	if err != nil {
		return err
	}
	s.Replace(matches)
	return nil
}

func (s *matchStore) List() []Match {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Match(nil), s.matches...)
}

func (s *matchStore) Get(id int64) (Match, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.matches {
		if m.ID == id {
			return m, true
		}
	}
	return Match{}, false
}

func validateMatch(m Match) error {
	if strings.TrimSpace(m.Opponent) == "" {
		return invalid("opponent", "is required")
	}
	if err := validDate("date", m.Date); err != nil {
		return err
	}
	if err := validClock("time", m.Time); err != nil {
		return err
	}
	if strings.TrimSpace(m.Location) == "" {
		return invalid("location", "is required")
	}
	if !m.Team.ValidScope() {
		return invalid("team", "unknown team scope %q", m.Team)
	}
	if !m.Status.Valid() {
		return invalid("status", "unknown status %q", m.Status)
	}
	if err := validateSelection(m.SelectedPlayers); err != nil {
		return err
	}
	if m.Score != nil {
		return validateScore(*m.Score)
	}
	return nil
}

func validateSelection(players []int64) error {
	if len(players) > MaxSelectedPlayers {
		return invalid("selected_players", "at most %d players can be selected, got %d", MaxSelectedPlayers, len(players))
	}
	seen := make(map[int64]struct{}, len(players))
	for _, id := range players {
		if id <= 0 {
			return invalid("selected_players", "invalid member id %d", id)
		}
		if _, dup := seen[id]; dup {
			return invalid("selected_players", "member %d is selected twice", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

func validateScore(score Score) error {
	if score.Ours < 0 || score.Theirs < 0 {
		return invalid("score", "scores cannot be negative")
	}
	return nil
}

func (s *matchStore) Add(ctx context.Context, m Match) (Match, error) {
	if m.Team == "" {
		m.Team = TeamAll
	}
	if m.Status == "" {
		m.Status = MatchUpcoming
	}
	if m.ChampionshipFull == "" {
		m.ChampionshipFull = m.Championship
	}
	if m.SelectedPlayers == nil {
		m.SelectedPlayers = []int64{}
	}
	if err := validateMatch(m); err != nil {
		return Match{}, s.rejected("add", err)
	}
	done, err := s.begin("add")
	if err != nil {
		return Match{}, err
	}
	defer done()

	row, err := s.client.Insert(ctx, s.collection, withoutID(MatchToRow(m)))
	if err != nil {
		return Match{}, s.failed("add", err)
	}
	created := MatchFromRow(row)
	s.written("add", created.ID)

	s.mu.Lock()
	s.matches = append(s.matches, created)
	sortMatches(s.matches)
	s.mu.Unlock()
	return created, nil
}

func (s *matchStore) Update(ctx context.Context, m Match) (Match, error) {
	existing, ok := s.Get(m.ID)
	if !ok {
		return Match{}, s.rejected("update", fmt.Errorf("match %d: %w", m.ID, ErrNotFound))
	}
	// Omitted selection, score and status keep their stored values.
	if m.SelectedPlayers == nil {
		m.SelectedPlayers = existing.SelectedPlayers
	}
	if m.Score == nil {
		m.Score = existing.Score
	}
	if m.Status == "" {
		m.Status = existing.Status
	}
	if err := validateMatch(m); err != nil {
		return Match{}, s.rejected("update", err)
	}
	return s.patch(ctx, "update", m.ID, withoutID(MatchToRow(m)))
}

// UpdatePlayers replaces the whole selection.
func (s *matchStore) UpdatePlayers(ctx context.Context, id int64, players []int64) (Match, error) {
	if _, ok := s.Get(id); !ok {
		return Match{}, s.rejected("update-players", fmt.Errorf("match %d: %w", id, ErrNotFound))
	}
	if err := validateSelection(players); err != nil {
		return Match{}, s.rejected("update-players", err)
	}
	return s.patch(ctx, "update-players", id, remote.Row{"selected_players": append([]int64{}, players...)})
}

// SelectPlayer adds one member to the selection, refusing an eleventh player.
func (s *matchStore) SelectPlayer(ctx context.Context, id, memberID int64) (Match, error) {
	m, ok := s.Get(id)
	if !ok {
		return Match{}, s.rejected("update-players", fmt.Errorf("match %d: %w", id, ErrNotFound))
	}
	if m.IsSelected(memberID) {
		return Match{}, s.rejected("update-players", invalid("selected_players", "member %d is already selected", memberID))
	}
	return s.UpdatePlayers(ctx, id, append(append([]int64{}, m.SelectedPlayers...), memberID))
}

func (s *matchStore) UnselectPlayer(ctx context.Context, id, memberID int64) (Match, error) {
	m, ok := s.Get(id)
	if !ok {
		return Match{}, s.rejected("update-players", fmt.Errorf("match %d: %w", id, ErrNotFound))
	}
	players := make([]int64, 0, len(m.SelectedPlayers))
	for _, p := range m.SelectedPlayers {
		if p != memberID {
			players = append(players, p)
		}
	}
	return s.UpdatePlayers(ctx, id, players)
}

func (s *matchStore) UpdateScore(ctx context.Context, id int64, score Score) (Match, error) {
	if _, ok := s.Get(id); !ok {
		return Match{}, s.rejected("update-score", fmt.Errorf("match %d: %w", id, ErrNotFound))
	}
	if err := validateScore(score); err != nil {
		return Match{}, s.rejected("update-score", err)
	}
	return s.patch(ctx, "update-score", id, remote.Row{
		"our_score":      int64(score.Ours),
		"opponent_score": int64(score.Theirs),
		"status":         string(MatchCompleted),
	})
}

// SetStatus changes the status alone; completing without a score is allowed.
func (s *matchStore) SetStatus(ctx context.Context, id int64, status MatchStatus) (Match, error) {
	if !status.Valid() {
		return Match{}, s.rejected("set-status", invalid("status", "unknown status %q", status))
	}
	if _, ok := s.Get(id); !ok {
		return Match{}, s.rejected("set-status", fmt.Errorf("match %d: %w", id, ErrNotFound))
	}
	return s.patch(ctx, "set-status", id, remote.Row{"status": string(status)})
}

func (s *matchStore) patch(ctx context.Context, op string, id int64, patch remote.Row) (Match, error) {
	done, err := s.begin(op, id)
	if err != nil {
		return Match{}, err
	}
	defer done()

	rows, err := s.client.Update(ctx, s.collection, byID(id), patch)
	if err != nil {
		return Match{}, s.failed(op, err)
	}
	row, err := single(rows, id)
	if err != nil {
		return Match{}, s.failed(op, err)
	}
	updated := MatchFromRow(row)
	s.written(op, id)

	s.mu.Lock()
	for i := range s.matches {
		if s.matches[i].ID == id {
			s.matches[i] = updated
		}
	}
	sortMatches(s.matches)
	s.mu.Unlock()
	return updated, nil
}

func (s *matchStore) Delete(ctx context.Context, id int64, confirmed bool) error {
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
	kept := s.matches[:0]
	for _, m := range s.matches {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	s.matches = kept
	return nil
}
