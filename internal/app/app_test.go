package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mauv0809/courtside/internal/app"
	"github.com/mauv0809/courtside/internal/attendance"
	"github.com/mauv0809/courtside/internal/club"
	"github.com/mauv0809/courtside/internal/database"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/pubsub"
	"github.com/mauv0809/courtside/internal/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates a temporary in-memory SQLite database for testing.
func setupTestDB(t *testing.T) (remote.Client, func()) {
	t.Helper()

	db, dialect, teardown, err := database.InitDB(database.Options{DBName: ":memory:"})
	require.NoError(t, err)
	return remote.NewSQL(db, dialect), teardown
}

func seed(t *testing.T, client remote.Client) {
	t.Helper()
	ctx := context.Background()
	stores := app.NewStores(client, metrics.NewMock())
	_, err := stores.Roster.Add(ctx, club.RosterMember{FirstName: "Ada", LastName: "Alpha", Position: club.PositionCenter, Team: club.TeamTwo})
	require.NoError(t, err)
	_, err = stores.Roster.Add(ctx, club.RosterMember{FirstName: "Ben", LastName: "Bravo", Position: club.PositionPointGuard, Team: club.TeamTwo})
	require.NoError(t, err)
	_, err = stores.Trainings.Add(ctx, club.TrainingSession{Date: "2025-01-10", Time: "18:30", Theme: "Shooting"})
	require.NoError(t, err)
	_, err = stores.Matches.Add(ctx, club.Match{Opponent: "Lyon", Date: "2025-03-01", Time: "20:30", Location: "Home", Team: club.TeamTwo})
	require.NoError(t, err)
}

func TestStartOnline(t *testing.T) {
	client, teardown := setupTestDB(t)
	defer teardown()
	seed(t, client)

	m := metrics.NewMock()
	a := app.New(client, m, pubsub.NewMock(), time.Second)
	assert.Equal(t, app.Connecting, a.Mode())

	assert.Equal(t, app.Online, a.Start(context.Background()))
	assert.False(t, m.Offline())
	assert.Equal(t, 1, m.FetchDurations())

	st := a.Status()
	assert.Equal(t, app.Online, st.Mode)
	assert.Equal(t, 2, st.Counts[string(remote.TableRoster)])
	assert.Equal(t, 1, st.Counts[string(remote.TableSessions)])
	assert.Equal(t, 1, st.Counts[string(remote.TableMatches)])
	assert.Equal(t, 0, st.Counts[string(remote.TableNews)])
	assert.Equal(t, "Alpha", a.Stores().Roster.List()[0].LastName)
}

func TestStartOfflineWhenProbeFails(t *testing.T) {
	client := remote.NewMock()
	client.ProbeFunc = func(ctx context.Context) error {
		return &remote.Error{Kind: remote.KindInvalidCredentials, Op: "probe", Table: remote.TableRoster, Err: errors.New("Invalid API key")}
	}
	m := metrics.NewMock()
	a := app.New(client, m, pubsub.NewMock(), time.Second)

	assert.Equal(t, app.OfflineLocal, a.Start(context.Background()))
	assert.True(t, m.Offline())
	assert.Contains(t, a.Status().Reason, "credentials")
	assert.Zero(t, client.CallCount("select"), "no fetch after a failed probe")

	t.Run("writes still succeed locally", func(t *testing.T) {
		created, err := a.Stores().Roster.Add(context.Background(), club.RosterMember{FirstName: "Ada", LastName: "Alpha", Position: club.PositionCenter, Team: club.TeamTwo})
		require.NoError(t, err)
		assert.NotZero(t, created.ID)
		assert.Len(t, a.Stores().Roster.List(), 1)
		assert.Zero(t, client.CallCount("insert"), "the unreachable backend is never written")
	})
}

func TestStartFallsBackWhenOneFetchFails(t *testing.T) {
	client := remote.NewMock()
	seed(t, client.Backing())
	client.SelectFunc = func(ctx context.Context, table remote.Table, q remote.Query) ([]remote.Row, error) {
		if table == remote.TableMatches {
			return nil, errors.New("connection reset by peer")
		}
		return client.Backing().Select(ctx, table, q)
	}
	a := app.New(client, metrics.NewMock(), pubsub.NewMock(), time.Second)

	assert.Equal(t, app.OfflineLocal, a.Start(context.Background()))
	assert.Empty(t, a.Stores().Roster.List(), "collections are never partially populated")
	assert.Contains(t, a.Status().Reason, "connection reset")
}

func TestStartTreatsMissingOptionalTablesAsEmpty(t *testing.T) {
	client := remote.NewMock()
	seed(t, client.Backing())
	client.SelectFunc = func(ctx context.Context, table remote.Table, q remote.Query) ([]remote.Row, error) {
		if table == remote.TableRoles || table == remote.TableNews {
			return nil, &remote.Error{Kind: remote.KindMissingSchema, Op: "select", Table: table, Err: errors.New("no such table")}
		}
		return client.Backing().Select(ctx, table, q)
	}
	a := app.New(client, metrics.NewMock(), pubsub.NewMock(), time.Second)

	assert.Equal(t, app.Online, a.Start(context.Background()))
	assert.Len(t, a.Stores().Roster.List(), 2)
}

func TestCallScenario(t *testing.T) {
	client, teardown := setupTestDB(t)
	defer teardown()
	seed(t, client)
	m := metrics.NewMock()
	ps := pubsub.NewMock()
	a := app.New(client, m, ps, time.Second)
	require.Equal(t, app.Online, a.Start(context.Background()))

	roster := a.Stores().Roster.List()
	require.Len(t, roster, 2)
	ada, ben := roster[0], roster[1]
	session := a.Stores().Trainings.Sessions()[0]

	call, err := a.StartCall(session.ID)
	require.NoError(t, err)
	again, err := a.StartCall(session.ID)
	require.NoError(t, err)
	assert.Same(t, call, again, "one call per session")

	_, err = a.AssignInCall(session.ID, ada.ID, club.StatusPresent)
	require.NoError(t, err)

	record, err := a.ValidateCall(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, []club.AttendanceEntry{
		{MemberID: ada.ID, Status: club.StatusPresent},
		{MemberID: ben.ID, Status: club.StatusAbsent},
	}, record.Entries)

	got, ok := a.Stores().Trainings.Session(session.ID)
	require.True(t, ok)
	assert.Equal(t, club.SessionCompleted, got.Status)
	assert.Equal(t, attendance.SessionStats{Present: 1, Total: 2}, a.View().SessionStats(session.ID))
	assert.Equal(t, 1, m.CallsValidated())

	_, err = a.Call(session.ID)
	assert.ErrorIs(t, err, club.ErrNotFound, "a validated call is closed")

	sent := ps.Sent(pubsub.EventAttendanceValidated)
	require.Len(t, sent, 1)
	summary := sent[0].Data.(pubsub.AttendanceValidated)
	assert.Equal(t, 1, summary.Present)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, "Ada Alpha", summary.Entries[0].Name)

	t.Run("a completed session cannot be called again", func(t *testing.T) {
		_, err := a.StartCall(session.ID)
		assert.ErrorIs(t, err, attendance.ErrWrongState)
	})

	t.Run("edit keeps explicit entries only", func(t *testing.T) {
		edit, err := a.EditCall(session.ID)
		require.NoError(t, err)
		assert.True(t, edit.IsEdit())
		_, err = a.AssignInCall(session.ID, ben.ID, club.StatusInjured)
		require.NoError(t, err)

		record, err := a.ValidateCall(context.Background(), session.ID)
		require.NoError(t, err)
		assert.Equal(t, []club.AttendanceEntry{
			{MemberID: ada.ID, Status: club.StatusPresent},
			{MemberID: ben.ID, Status: club.StatusInjured},
		}, record.Entries)
		assert.True(t, ps.Sent(pubsub.EventAttendanceValidated)[1].Data.(pubsub.AttendanceValidated).Edit)
	})
}

func TestValidateCallFollowsRosterChanges(t *testing.T) {
	client, teardown := setupTestDB(t)
	defer teardown()
	seed(t, client)
	a := app.New(client, metrics.NewMock(), pubsub.NewMock(), time.Second)
	require.Equal(t, app.Online, a.Start(context.Background()))
	ctx := context.Background()

	roster := a.Stores().Roster.List()
	ada, ben := roster[0], roster[1]
	session := a.Stores().Trainings.Sessions()[0]

	_, err := a.StartCall(session.ID)
	require.NoError(t, err)
	_, err = a.AssignInCall(session.ID, ada.ID, club.StatusPresent)
	require.NoError(t, err)
	_, err = a.AssignInCall(session.ID, ben.ID, club.StatusExcused)
	require.NoError(t, err)

	require.NoError(t, a.Stores().Roster.Delete(ctx, ben.ID, true))
	cleo, err := a.Stores().Roster.Add(ctx, club.RosterMember{FirstName: "Cleo", LastName: "Charlie", Position: club.PositionSmallForward, Team: club.TeamTwo})
	require.NoError(t, err)

	record, err := a.ValidateCall(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, []club.AttendanceEntry{
		{MemberID: ada.ID, Status: club.StatusPresent},
		{MemberID: cleo.ID, Status: club.StatusAbsent},
	}, record.Entries)
}

func TestCancelCall(t *testing.T) {
	client := remote.NewMock()
	seed(t, client.Backing())
	a := app.New(client, metrics.NewMock(), pubsub.NewMock(), time.Second)
	require.Equal(t, app.Online, a.Start(context.Background()))
	session := a.Stores().Trainings.Sessions()[0]

	_, err := a.StartCall(session.ID)
	require.NoError(t, err)
	_, err = a.AssignInCall(session.ID, a.Stores().Roster.List()[0].ID, club.StatusPresent)
	require.NoError(t, err)
	client.Reset()

	require.NoError(t, a.CancelCall(session.ID))
	assert.Zero(t, client.CallCount(""), "cancelling never reaches the backend")
	assert.Empty(t, a.Status().OpenCalls)

	got, _ := a.Stores().Trainings.Session(session.ID)
	assert.Equal(t, club.SessionUpcoming, got.Status)

	assert.ErrorIs(t, a.CancelCall(session.ID), club.ErrNotFound)
}

func TestValidateFailureKeepsCallOpen(t *testing.T) {
	client := remote.NewMock()
	seed(t, client.Backing())
	a := app.New(client, metrics.NewMock(), pubsub.NewMock(), time.Second)
	require.Equal(t, app.Online, a.Start(context.Background()))
	session := a.Stores().Trainings.Sessions()[0]

	_, err := a.StartCall(session.ID)
	require.NoError(t, err)
	client.InsertFunc = func(ctx context.Context, table remote.Table, row remote.Row) (remote.Row, error) {
		return nil, errors.New("timeout")
	}

	_, err = a.ValidateCall(context.Background(), session.ID)
	require.Error(t, err)
	call, err := a.Call(session.ID)
	require.NoError(t, err)
	assert.Equal(t, attendance.InProgress, call.State())
}

func TestRecordScorePublishesResult(t *testing.T) {
	client := remote.NewMock()
	seed(t, client.Backing())
	ps := pubsub.NewMock()
	a := app.New(client, metrics.NewMock(), ps, time.Second)
	require.Equal(t, app.Online, a.Start(context.Background()))

	match := a.Stores().Matches.List()[0]
	ada := a.Stores().Roster.List()[0]
	_, err := a.Stores().Matches.SelectPlayer(context.Background(), match.ID, ada.ID)
	require.NoError(t, err)
	_, err = a.Stores().Matches.SelectPlayer(context.Background(), match.ID, 999)
	require.NoError(t, err)

	scored, err := a.RecordScore(context.Background(), match.ID, club.Score{Ours: 71, Theirs: 64})
	require.NoError(t, err)
	assert.Equal(t, club.MatchCompleted, scored.Status)

	sent := ps.Sent(pubsub.EventMatchCompleted)
	require.Len(t, sent, 1)
	result := sent[0].Data.(pubsub.MatchCompleted)
	assert.Equal(t, 71, result.OurScore)
	assert.Equal(t, []string{"Ada Alpha"}, result.Players, "deleted members are left out")

	t.Run("a publish failure does not fail the write", func(t *testing.T) {
		ps.SendMessageFunc = func(topic pubsub.EventType, data any) error { return errors.New("broker down") }
		_, err := a.RecordScore(context.Background(), match.ID, club.Score{Ours: 72, Theirs: 64})
		assert.NoError(t, err)
	})
}

func TestDashboardThroughApp(t *testing.T) {
	client := remote.NewMock()
	seed(t, client.Backing())
	a := app.New(client, metrics.NewMock(), pubsub.NewMock(), time.Second)
	require.Equal(t, app.Online, a.Start(context.Background()))

	d := a.Dashboard(club.TeamTwo)
	assert.Equal(t, 2, d.MemberCount)
	assert.Equal(t, 1, d.TrainingCount)
	assert.Equal(t, 100, d.MeanMemberRate)
	assert.False(t, d.LastSession.HasData)

	ps, ok := a.PlayerStats(a.Stores().Roster.List()[0].ID)
	require.True(t, ok)
	assert.Equal(t, 100, ps.AttendanceRate)
	assert.Len(t, a.TeamStats(), 2)
}

func TestRefresh(t *testing.T) {
	client := remote.NewMock()
	a := app.New(client, metrics.NewMock(), pubsub.NewMock(), time.Second)
	require.Equal(t, app.Online, a.Start(context.Background()))
	assert.Empty(t, a.Stores().Roster.List())

	// Rows written by someone else show up after a refresh.
	seed(t, client.Backing())
	require.NoError(t, a.Refresh(context.Background()))
	assert.Len(t, a.Stores().Roster.List(), 2)
	assert.Len(t, a.Stores().Matches.List(), 1)
}
