package club_test

import (
	"context"
	"errors"
	"testing"

	"github.com/mauv0809/courtside/internal/club"
	"github.com/mauv0809/courtside/internal/database"
	"github.com/mauv0809/courtside/internal/metrics"
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

func missingTable(table remote.Table) error {
	return &remote.Error{Kind: remote.KindMissingSchema, Op: "test", Table: table, Err: errors.New("no such table")}
}

func lea() club.RosterMember {
	return club.RosterMember{FirstName: "Lea", LastName: "Martin", Position: club.PositionCenter, Team: club.TeamTwo}
}

func TestRosterAddAndList(t *testing.T) {
	client, teardown := setupTestDB(t)
	defer teardown()
	m := metrics.NewMock()
	store := club.NewRosterStore(client, m)
	ctx := context.Background()

	created, err := store.Add(ctx, club.RosterMember{FirstName: " Zoe ", LastName: "Zidane", Position: club.PositionPointGuard, Team: club.TeamThree})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Zoe", created.FirstName)
	assert.Equal(t, club.StatusPresent, created.LastAttendance, "new members start present")

	_, err = store.Add(ctx, lea())
	require.NoError(t, err)

	list := store.List()
	require.Len(t, list, 2)
	assert.Equal(t, "Martin", list[0].LastName, "roster is sorted by last name")
	assert.Equal(t, 2, m.StoreWrites(string(remote.TableRoster)))

	fetched, err := store.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, list, fetched, "the local mirror matches the backend")
}

func TestRosterValidationSkipsBackend(t *testing.T) {
	testCases := []struct {
		name   string
		member club.RosterMember
		field  string
	}{
		{"missing first name", club.RosterMember{LastName: "x", Position: club.PositionCenter, Team: club.TeamTwo}, "first_name"},
		{"missing last name", club.RosterMember{FirstName: "x", Position: club.PositionCenter, Team: club.TeamTwo}, "last_name"},
		{"bad position", club.RosterMember{FirstName: "x", LastName: "y", Position: "goalie", Team: club.TeamTwo}, "position"},
		{"scope is not a team", club.RosterMember{FirstName: "x", LastName: "y", Position: club.PositionCenter, Team: club.TeamAll}, "team"},
		{"bad birth date", club.RosterMember{FirstName: "x", LastName: "y", Position: club.PositionCenter, Team: club.TeamTwo, BirthDate: "12/04/2008"}, "birth_date"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client := remote.NewMock()
			m := metrics.NewMock()
			store := club.NewRosterStore(client, m)

			_, err := store.Add(context.Background(), tc.member)
			require.Error(t, err)
			assert.ErrorIs(t, err, club.ErrValidation)
			var verr *club.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
			assert.Zero(t, client.CallCount(""), "validation must not reach the backend")
			assert.Equal(t, 1, m.ValidationFailures(string(remote.TableRoster)))
		})
	}
}

func TestRosterFailureLeavesStateUntouched(t *testing.T) {
	client := remote.NewMock()
	m := metrics.NewMock()
	store := club.NewRosterStore(client, m)
	ctx := context.Background()

	created, err := store.Add(ctx, lea())
	require.NoError(t, err)

	client.UpdateFunc = func(ctx context.Context, table remote.Table, where remote.Filter, patch remote.Row) ([]remote.Row, error) {
		return nil, missingTable(table)
	}
	client.DeleteFunc = func(ctx context.Context, table remote.Table, where remote.Filter) (int64, error) {
		return 0, &remote.Error{Kind: remote.KindInvalidCredentials, Op: "delete", Table: table, Err: errors.New("Invalid API key")}
	}

	edited := created
	edited.FirstName = "Leana"
	_, err = store.Update(ctx, edited)
	require.Error(t, err)
	assert.True(t, remote.IsMissingSchema(err))

	err = store.Delete(ctx, created.ID, true)
	require.Error(t, err)
	assert.Equal(t, remote.KindInvalidCredentials, remote.KindOf(err))

	got, ok := store.Get(created.ID)
	require.True(t, ok)
	assert.Equal(t, "Lea", got.FirstName)
	assert.Equal(t, 1, m.StoreFailures(string(remote.TableRoster), string(remote.KindMissingSchema)))
}

func TestRosterDeleteRequiresConfirmation(t *testing.T) {
	client := remote.NewMock()
	store := club.NewRosterStore(client, metrics.NewMock())
	ctx := context.Background()

	created, err := store.Add(ctx, lea())
	require.NoError(t, err)
	client.Reset()

	err = store.Delete(ctx, created.ID, false)
	assert.ErrorIs(t, err, club.ErrNotConfirmed)
	assert.Zero(t, client.CallCount("delete"))
	assert.Len(t, store.List(), 1)

	require.NoError(t, store.Delete(ctx, created.ID, true))
	assert.Empty(t, store.List())
}

func TestRosterAttendanceShortcut(t *testing.T) {
	client, teardown := setupTestDB(t)
	defer teardown()
	store := club.NewRosterStore(client, metrics.NewMock())
	ctx := context.Background()

	created, err := store.Add(ctx, lea())
	require.NoError(t, err)

	updated, err := store.UpdateAttendanceShortcut(ctx, created.ID, club.StatusInjured)
	require.NoError(t, err)
	assert.Equal(t, club.StatusInjured, updated.LastAttendance)
	assert.Equal(t, "Lea", updated.FirstName, "other fields come back from the backend row")

	edit := lea()
	edit.ID = created.ID
	edit.LastName = "Durand"
	edited, err := store.Update(ctx, edit)
	require.NoError(t, err)
	assert.Equal(t, club.StatusInjured, edited.LastAttendance, "an update without the shortcut keeps it")

	_, err = store.UpdateAttendanceShortcut(ctx, created.ID, "sleeping")
	assert.ErrorIs(t, err, club.ErrValidation)

	_, err = store.UpdateAttendanceShortcut(ctx, 999, club.StatusPresent)
	assert.ErrorIs(t, err, club.ErrNotFound)
}

func TestRosterRejectsDuplicateSubmission(t *testing.T) {
	client := remote.NewMock()
	store := club.NewRosterStore(client, metrics.NewMock())

	entered := make(chan struct{})
	release := make(chan struct{})
	client.InsertFunc = func(ctx context.Context, table remote.Table, row remote.Row) (remote.Row, error) {
		close(entered)
		<-release
		return client.Backing().Insert(ctx, table, row)
	}

	errs := make(chan error, 1)
	go func() {
		_, err := store.Add(context.Background(), lea())
		errs <- err
	}()
	<-entered

	_, err := store.Add(context.Background(), lea())
	assert.ErrorIs(t, err, club.ErrInFlight)

	close(release)
	require.NoError(t, <-errs)
	assert.Len(t, store.List(), 1)
}

func TestRosterLoad(t *testing.T) {
	client := remote.NewMock()
	ctx := context.Background()
	writer := club.NewRosterStore(client, metrics.NewMock())
	_, err := writer.Add(ctx, lea())
	require.NoError(t, err)

	store := club.NewRosterStore(client, metrics.NewMock())
	assert.Empty(t, store.List())
	require.NoError(t, store.Load(ctx))
	assert.Len(t, store.List(), 1)

	t.Run("a failed load keeps the mirror", func(t *testing.T) {
		client.SelectFunc = func(ctx context.Context, table remote.Table, q remote.Query) ([]remote.Row, error) {
			return nil, errors.New("connection reset by peer")
		}
		assert.Error(t, store.Load(ctx))
		assert.Len(t, store.List(), 1)
	})
}
