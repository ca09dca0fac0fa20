package app

import (
	"context"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/attendance"
	"github.com/mauv0809/courtside/internal/club"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/pubsub"
	"github.com/mauv0809/courtside/internal/remote"
	"github.com/mauv0809/courtside/internal/stats"
	"golang.org/x/sync/errgroup"
)

// NewStores builds every store over client.
func NewStores(client remote.Client, m metrics.Metrics) Stores {
	return Stores{
		Roster:    club.NewRosterStore(client, m),
		Trainings: club.NewTrainingStore(client, m),
		Matches:   club.NewMatchStore(client, m),
		Roles:     club.NewRoleStore(client, m),
		News:      club.NewNewsStore(client, m),
	}
}

// New creates the app in Connecting mode. Nothing touches the backend until Start.
func New(backend remote.Client, m metrics.Metrics, ps pubsub.PubSubClient, probeTimeout time.Duration) *App {
	if probeTimeout <= 0 {
		probeTimeout = 5 * time.Second
	}
	return &App{
		backend:      backend,
		metrics:      m,
		pubsub:       ps,
		probeTimeout: probeTimeout,
		mode:         Connecting,
		stores:       NewStores(backend, m),
		calls:        make(map[int64]*attendance.Call),
	}
}

// Start probes the backend and loads every collection. It never fails: an
// unreachable backend or a failed load leaves the app in OfflineLocal with
// empty in-memory stores.
func (a *App) Start(ctx context.Context) Mode {
	start := time.Now()
	defer func() {
		a.metrics.SetStartupTime(time.Since(start).Seconds())
	}()

	probeCtx, cancel := context.WithTimeout(ctx, a.probeTimeout)
	err := a.backend.Probe(probeCtx)
	cancel()
	if err != nil {
		log.Warn("Backend probe failed", "error", err)
		return a.goOffline(err)
	}

	stores := NewStores(a.backend, a.metrics)
	var (
		roster   []club.RosterMember
		sessions []club.TrainingSession
		records  []club.AttendanceRecord
		matches  []club.Match
		roles    []club.RoleAssignment
		news     []club.NewsLink
	)
	fetchStart := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { roster, err = stores.Roster.Fetch(gctx); return })
	g.Go(func() (err error) { sessions, err = stores.Trainings.FetchSessions(gctx); return })
	g.Go(func() (err error) { records, err = stores.Trainings.FetchRecords(gctx); return })
	g.Go(func() (err error) { matches, err = stores.Matches.Fetch(gctx); return })
	g.Go(func() (err error) { roles, err = stores.Roles.Fetch(gctx); return })
	g.Go(func() (err error) { news, err = stores.News.Fetch(gctx); return })
	if err := g.Wait(); err != nil {
		log.Error("Initial load failed, nothing was kept", "error", err)
		return a.goOffline(err)
	}
	a.metrics.ObserveStartupFetchDuration(time.Since(fetchStart).Seconds())

	stores.Roster.Replace(roster)
	stores.Trainings.Replace(sessions, records)
	stores.Matches.Replace(matches)
	stores.Roles.Replace(roles)
	stores.News.Replace(news)

	a.mu.Lock()
	a.stores = stores
	a.mode = Online
	a.reason = ""
	a.startedAt = time.Now()
	a.mu.Unlock()
	a.resetCalls()

	a.metrics.SetOfflineMode(false)
	log.Info("Backend online", "members", len(roster), "sessions", len(sessions), "matches", len(matches),
		"roles", len(roles), "news", len(news))
	return Online
}

// goOffline swaps every store for an empty in-memory one. Writes made from
// here on are kept only for the life of the process.
func (a *App) goOffline(cause error) Mode {
	a.mu.Lock()
	a.stores = NewStores(remote.NewMemory(), a.metrics)
	a.mode = OfflineLocal
	a.reason = remote.ReasonOf(cause)
	a.startedAt = time.Now()
	a.mu.Unlock()
	a.resetCalls()

	a.metrics.SetOfflineMode(true)
	log.Warn("Running in local-only mode, changes will not be persisted", "reason", a.reason)
	return OfflineLocal
}

// Refresh reloads every collection from the backend. It does nothing in
// OfflineLocal. A collection whose load fails keeps its current contents.
func (a *App) Refresh(ctx context.Context) error {
	if a.Mode() != Online {
		return nil
	}
	s := a.Stores()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.Roster.Load(gctx) })
	g.Go(func() error { return s.Trainings.Load(gctx) })
	g.Go(func() error { return s.Matches.Load(gctx) })
	g.Go(func() error { return s.Roles.Load(gctx) })
	g.Go(func() error { return s.News.Load(gctx) })
	if err := g.Wait(); err != nil {
		log.Error("Refresh failed", "error", err)
		return err
	}
	log.Info("Refreshed all collections")
	return nil
}

func (a *App) resetCalls() {
	a.callsMu.Lock()
	a.calls = make(map[int64]*attendance.Call)
	a.callsMu.Unlock()
}

func (a *App) Mode() Mode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mode
}

// Stores returns the current stores. Callers must not keep them across a
// Start, which replaces them.
func (a *App) Stores() Stores {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stores
}

func (a *App) Status() Status {
	a.mu.RLock()
	st := Status{
		Mode:      a.mode,
		Reason:    a.reason,
		StartedAt: a.startedAt,
	}
	s := a.stores
	a.mu.RUnlock()

	st.Counts = map[string]int{
		string(remote.TableRoster):     len(s.Roster.List()),
		string(remote.TableSessions):   len(s.Trainings.Sessions()),
		string(remote.TableAttendance): len(s.Trainings.Records()),
		string(remote.TableMatches):    len(s.Matches.List()),
		string(remote.TableRoles):      len(s.Roles.List()),
		string(remote.TableNews):       len(s.News.Active()),
	}

	a.callsMu.Lock()
	st.OpenCalls = make([]int64, 0, len(a.calls))
	for id := range a.calls {
		st.OpenCalls = append(st.OpenCalls, id)
	}
	a.callsMu.Unlock()
	sort.Slice(st.OpenCalls, func(i, j int) bool { return st.OpenCalls[i] < st.OpenCalls[j] })
	return st
}

// View builds the valid-reference view over the current stores.
func (a *App) View() *attendance.View {
	s := a.Stores()
	return attendance.NewView(s.Roster.List(), s.Trainings.Sessions(), s.Trainings.Records())
}

func (a *App) Dashboard(team club.Team) stats.Dashboard {
	s := a.Stores()
	return stats.BuildDashboard(a.View(), team, s.Matches.List(), s.Roles.List())
}

func (a *App) PlayerStats(memberID int64) (stats.PlayerStats, bool) {
	s := a.Stores()
	return stats.Player(a.View(), memberID, s.Matches.List(), s.Roles.List())
}

func (a *App) TeamStats() []stats.TeamStats {
	s := a.Stores()
	return stats.Teams(a.View(), s.Matches.List(), s.Roles.List())
}

// RecordScore stores the final score, which also completes the match, then
// announces the result.
func (a *App) RecordScore(ctx context.Context, matchID int64, score club.Score) (club.Match, error) {
	m, err := a.Stores().Matches.UpdateScore(ctx, matchID, score)
	if err != nil {
		return club.Match{}, err
	}
	v := a.View()
	players := make([]string, 0, len(m.SelectedPlayers))
	for _, id := range m.SelectedPlayers {
		if member, ok := v.Member(id); ok {
			players = append(players, member.FullName())
		}
	}
	a.publish(ctx, pubsub.EventMatchCompleted, pubsub.MatchCompleted{
		MatchID:       m.ID,
		Date:          m.Date,
		Opponent:      m.Opponent,
		Championship:  m.ChampionshipFull,
		Team:          m.Team,
		Location:      m.Location,
		OurScore:      score.Ours,
		OpponentScore: score.Theirs,
		Players:       players,
	})
	return m, nil
}

// publish never fails the caller: the write it announces is already stored.
func (a *App) publish(ctx context.Context, topic pubsub.EventType, data any) {
	if a.pubsub == nil {
		return
	}
	if err := a.pubsub.SendMessage(ctx, topic, data); err != nil {
		log.Error("Failed to publish event", "topic", topic, "error", err)
	}
}
