package http

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mauv0809/courtside/internal/app"
	"github.com/mauv0809/courtside/internal/club"
	"github.com/mauv0809/courtside/internal/config"
	"github.com/mauv0809/courtside/internal/database"
	"github.com/mauv0809/courtside/internal/http/handlers"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/notifier"
	"github.com/mauv0809/courtside/internal/processor"
	"github.com/mauv0809/courtside/internal/pubsub"
	"github.com/mauv0809/courtside/internal/remote"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

const testCoachPassword = "whistle"

type testServer struct {
	*Server
	notifier *notifier.Mock
	metrics  *metrics.Service
}

// setupTestServer wires the whole stack over the given backend with an
// in-process event loop, and starts the app.
func setupTestServer(t *testing.T, backend remote.Client) *testServer {
	t.Helper()

	reg := prometheus.NewRegistry()
	metricsSvc := metrics.NewService(reg)
	notifierMock := notifier.NewMock()
	loopback := pubsub.NewLoopback()
	proc := processor.New(notifierMock, metricsSvc, loopback)
	proc.Subscribe(loopback)

	a := app.New(backend, metricsSvc, loopback, time.Second)
	a.Start(context.Background())

	cfg := config.Config{CoachPassword: testCoachPassword}
	server := NewServer(a, metrics.NewMetricsHandler(reg), cfg, proc)
	return &testServer{Server: server, notifier: notifierMock, metrics: metricsSvc}
}

// setupTestDB creates a temporary in-memory SQLite database for testing.
func setupTestDB(t *testing.T) (remote.Client, func()) {
	t.Helper()

	db, dialect, teardown, err := database.InitDB(database.Options{DBName: ":memory:"})
	require.NoError(t, err)
	return remote.NewSQL(db, dialect), teardown
}

func (s *testServer) do(t *testing.T, method, target string, body any, coach bool) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, target, &buf)
	require.NoError(t, err)
	if coach {
		req.Header.Set(CoachHeader, testCoachPassword)
	}
	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func (s *testServer) addMember(t *testing.T, first, last string) club.RosterMember {
	t.Helper()
	rr := s.do(t, "POST", "/roster", club.RosterMember{FirstName: first, LastName: last, Position: club.PositionCenter, Team: club.TeamTwo}, true)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decodeBody[club.RosterMember](t, rr)
}

func TestHealthCheckHandler(t *testing.T) {
	backend, teardown := setupTestDB(t)
	defer teardown()
	server := setupTestServer(t, backend)

	rr := server.do(t, "GET", "/health", nil, false)
	assert.Equal(t, http.StatusOK, rr.Code, "handler returned wrong status code")
	assert.Equal(t, "OK!", rr.Body.String(), "handler returned unexpected body")
	assert.NotEmpty(t, rr.Header().Get(RequestIDHeader))
}

func TestStatusHandler(t *testing.T) {
	backend, teardown := setupTestDB(t)
	defer teardown()
	server := setupTestServer(t, backend)
	server.addMember(t, "Ada", "Alpha")

	rr := server.do(t, "GET", "/status", nil, false)
	require.Equal(t, http.StatusOK, rr.Code)
	st := decodeBody[app.Status](t, rr)
	assert.Equal(t, app.Online, st.Mode)
	assert.Equal(t, 1, st.Counts["roster_members"])
}

func TestCoachGate(t *testing.T) {
	backend, teardown := setupTestDB(t)
	defer teardown()
	server := setupTestServer(t, backend)
	member := club.RosterMember{FirstName: "Ada", LastName: "Alpha", Position: club.PositionCenter, Team: club.TeamTwo}

	t.Run("missing password", func(t *testing.T) {
		rr := server.do(t, "POST", "/roster", member, false)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, json.NewEncoder(&buf).Encode(member))
		req := httptest.NewRequest("POST", "/roster", &buf)
		req.Header.Set(CoachHeader, "nope")
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("reads stay open", func(t *testing.T) {
		rr := server.do(t, "GET", "/roster", nil, false)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, decodeBody[[]club.RosterMember](t, rr), "nothing was written")
	})

	t.Run("request id is kept", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/roster", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)
		assert.Equal(t, "abc-123", rr.Header().Get(RequestIDHeader))
	})
}

func TestRosterHandlers(t *testing.T) {
	backend, teardown := setupTestDB(t)
	defer teardown()
	server := setupTestServer(t, backend)

	ada := server.addMember(t, "Ada", "Alpha")
	assert.Equal(t, club.StatusPresent, ada.LastAttendance)

	t.Run("validation error names the field", func(t *testing.T) {
		rr := server.do(t, "POST", "/roster", club.RosterMember{LastName: "Alpha", Position: club.PositionCenter, Team: club.TeamTwo}, true)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "first_name", decodeBody[handlers.ErrorResponse](t, rr).Field)
	})

	t.Run("update", func(t *testing.T) {
		ada.IsCaptain = true
		rr := server.do(t, "PUT", fmt.Sprintf("/roster/%d", ada.ID), ada, true)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.True(t, decodeBody[club.RosterMember](t, rr).IsCaptain)
	})

	t.Run("team filter", func(t *testing.T) {
		rr := server.do(t, "GET", "/roster?team=3", nil, false)
		assert.Empty(t, decodeBody[[]club.RosterMember](t, rr))
		rr = server.do(t, "GET", "/roster?team=2", nil, false)
		assert.Len(t, decodeBody[[]club.RosterMember](t, rr), 1)
	})

	t.Run("unknown member", func(t *testing.T) {
		rr := server.do(t, "GET", "/roster/999", nil, false)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("delete needs confirmation", func(t *testing.T) {
		rr := server.do(t, "DELETE", fmt.Sprintf("/roster/%d", ada.ID), nil, true)
		assert.Equal(t, http.StatusPreconditionFailed, rr.Code)

		rr = server.do(t, "DELETE", fmt.Sprintf("/roster/%d?confirm=true", ada.ID), nil, true)
		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Empty(t, server.App.Stores().Roster.List())
	})
}

func TestCallWorkflowHandlers(t *testing.T) {
	backend, teardown := setupTestDB(t)
	defer teardown()
	server := setupTestServer(t, backend)

	ada := server.addMember(t, "Ada", "Alpha")
	ben := server.addMember(t, "Ben", "Bravo")
	rr := server.do(t, "POST", "/trainings", club.TrainingSession{Date: "2025-01-10", Time: "18:30", Theme: "Shooting"}, true)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	session := decodeBody[club.TrainingSession](t, rr)
	callURL := fmt.Sprintf("/trainings/%d/call", session.ID)

	rr = server.do(t, "POST", callURL, nil, true)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	view := decodeBody[handlers.CallView](t, rr)
	assert.Len(t, view.Members, 2)
	require.NotNil(t, view.Current)
	assert.Equal(t, ada.ID, view.Current.ID)

	rr = server.do(t, "PUT", callURL+"/assignments", map[string]any{"member_id": ada.ID, "status": club.StatusPresent}, true)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	view = decodeBody[handlers.CallView](t, rr)
	require.NotNil(t, view.Current)
	assert.Equal(t, ben.ID, view.Current.ID, "assigning the current member advances")

	t.Run("unknown status is rejected", func(t *testing.T) {
		rr := server.do(t, "PUT", callURL+"/assignments", map[string]any{"member_id": ben.ID, "status": "late"}, true)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	rr = server.do(t, "POST", callURL+"/validate?dry_run=true", nil, true)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	record := decodeBody[club.AttendanceRecord](t, rr)
	assert.Equal(t, []club.AttendanceEntry{
		{MemberID: ada.ID, Status: club.StatusPresent},
		{MemberID: ben.ID, Status: club.StatusAbsent},
	}, record.Entries)

	rr = server.do(t, "GET", fmt.Sprintf("/trainings/%d", session.ID), nil, false)
	require.Equal(t, http.StatusOK, rr.Code)
	detail := decodeBody[handlers.SessionDetail](t, rr)
	assert.Equal(t, club.SessionCompleted, detail.Session.Status)
	assert.Equal(t, 1, detail.Stats.Present)
	assert.Equal(t, 2, detail.Stats.Total)
	assert.Equal(t, []string{"Ben Bravo"}, detail.Groups[club.StatusAbsent])

	summaries := server.notifier.AttendanceSummaries()
	require.Len(t, summaries, 1, "the loopback delivers the event in-process")
	assert.True(t, summaries[0].DryRun)
	assert.Equal(t, 1, summaries[0].Summary.Present)

	t.Run("a completed session cannot start a new call", func(t *testing.T) {
		rr := server.do(t, "POST", callURL, nil, true)
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("no open call", func(t *testing.T) {
		rr := server.do(t, "GET", callURL, nil, true)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("edit and cancel", func(t *testing.T) {
		rr := server.do(t, "POST", callURL+"/edit", nil, true)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.True(t, decodeBody[handlers.CallView](t, rr).Edit)

		rr = server.do(t, "DELETE", callURL, nil, true)
		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Len(t, server.notifier.AttendanceSummaries(), 1)
	})
}

func TestMatchHandlers(t *testing.T) {
	backend, teardown := setupTestDB(t)
	defer teardown()
	server := setupTestServer(t, backend)
	ada := server.addMember(t, "Ada", "Alpha")

	rr := server.do(t, "POST", "/matches", club.Match{Opponent: "Lyon", Date: "2025-03-01", Time: "20:30", Location: "Home", Team: club.TeamTwo}, true)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	match := decodeBody[club.Match](t, rr)
	matchURL := fmt.Sprintf("/matches/%d", match.ID)

	rr = server.do(t, "POST", fmt.Sprintf("%s/players/%d", matchURL, ada.ID), nil, true)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, []int64{ada.ID}, decodeBody[club.Match](t, rr).SelectedPlayers)

	rr = server.do(t, "PUT", matchURL+"/score", club.Score{Ours: 71, Theirs: 64}, true)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	scored := decodeBody[club.Match](t, rr)
	assert.Equal(t, club.MatchCompleted, scored.Status)

	results := server.notifier.MatchResults()
	require.Len(t, results, 1)
	assert.Equal(t, []string{"Ada Alpha"}, results[0].Result.Players)

	t.Run("unknown status", func(t *testing.T) {
		rr := server.do(t, "PUT", matchURL+"/status", map[string]string{"status": "postponed"}, true)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("team stats", func(t *testing.T) {
		rr := server.do(t, "GET", "/stats/teams", nil, false)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"wins":1`)
	})
}

func TestDeletedMembersLeaveSelectionsAndRoles(t *testing.T) {
	backend, teardown := setupTestDB(t)
	defer teardown()
	server := setupTestServer(t, backend)

	members := make([]club.RosterMember, 11)
	for i := range members {
		members[i] = server.addMember(t, fmt.Sprintf("Player%d", i), "Test")
	}
	rr := server.do(t, "POST", "/matches", club.Match{Opponent: "Lyon", Date: "2025-03-01", Time: "20:30", Location: "Home", Team: club.TeamTwo}, true)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	match := decodeBody[club.Match](t, rr)
	matchURL := fmt.Sprintf("/matches/%d", match.ID)

	selected := make([]int64, 0, 10)
	for _, m := range members[:10] {
		selected = append(selected, m.ID)
	}
	rr = server.do(t, "PUT", matchURL+"/players", map[string][]int64{"selected_players": selected}, true)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	gone := members[0]
	rr = server.do(t, "POST", "/roles", club.RoleAssignment{MemberID: gone.ID, RoleType: club.RoleScorer, MatchID: match.ID}, true)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	rr = server.do(t, "DELETE", fmt.Sprintf("/roster/%d?confirm=true", gone.ID), nil, true)
	require.Equal(t, http.StatusNoContent, rr.Code, rr.Body.String())

	t.Run("roles are hidden", func(t *testing.T) {
		for _, target := range []string{"/roles", fmt.Sprintf("/roles?match=%d", match.ID), fmt.Sprintf("/roles?member=%d", gone.ID)} {
			rr := server.do(t, "GET", target, nil, false)
			require.Equal(t, http.StatusOK, rr.Code)
			assert.Empty(t, decodeBody[[]club.RoleAssignment](t, rr), target)
		}
	})

	t.Run("selection is filtered", func(t *testing.T) {
		rr := server.do(t, "GET", matchURL, nil, false)
		require.Equal(t, http.StatusOK, rr.Code)
		got := decodeBody[club.Match](t, rr)
		assert.Len(t, got.SelectedPlayers, 9)
		assert.NotContains(t, got.SelectedPlayers, gone.ID)
	})

	t.Run("deleted member frees a place", func(t *testing.T) {
		rr := server.do(t, "POST", fmt.Sprintf("%s/players/%d", matchURL, members[10].ID), nil, true)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		got := decodeBody[club.Match](t, rr)
		assert.Len(t, got.SelectedPlayers, 10)
		assert.Contains(t, got.SelectedPlayers, members[10].ID)
		assert.NotContains(t, got.SelectedPlayers, gone.ID)
	})

	t.Run("cap still holds for live members", func(t *testing.T) {
		extra := server.addMember(t, "Late", "Comer")
		rr := server.do(t, "POST", fmt.Sprintf("%s/players/%d", matchURL, extra.ID), nil, true)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "selected_players", decodeBody[handlers.ErrorResponse](t, rr).Field)
	})

	t.Run("unknown member", func(t *testing.T) {
		rr := server.do(t, "POST", fmt.Sprintf("%s/players/%d", matchURL, gone.ID), nil, true)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestBackendFailureIsBadGateway(t *testing.T) {
	backend := remote.NewMock()
	server := setupTestServer(t, backend)
	backend.InsertFunc = func(ctx context.Context, table remote.Table, row remote.Row) (remote.Row, error) {
		return nil, &remote.Error{Kind: remote.KindMissingSchema, Op: "insert", Table: table, Err: errors.New("no such table")}
	}

	rr := server.do(t, "POST", "/roster", club.RosterMember{FirstName: "Ada", LastName: "Alpha", Position: club.PositionCenter, Team: club.TeamTwo}, true)
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	resp := decodeBody[handlers.ErrorResponse](t, rr)
	assert.Equal(t, string(remote.KindMissingSchema), resp.Kind)
	assert.Contains(t, resp.Error, "migrations")
}

func TestEventHandler(t *testing.T) {
	backend, teardown := setupTestDB(t)
	defer teardown()
	server := setupTestServer(t, backend)

	push := func(t *testing.T, topic string, payload any) *httptest.ResponseRecorder {
		t.Helper()
		data, err := msgpack.Marshal(payload)
		require.NoError(t, err)
		var msg handlers.PushMessage
		msg.Subscription = "projects/club/subscriptions/" + topic
		msg.Message.Data = base64.StdEncoding.EncodeToString(data)
		return server.do(t, "POST", "/events/"+topic+"?dry_run=true", msg, false)
	}

	t.Run("match completed", func(t *testing.T) {
		rr := push(t, string(pubsub.EventMatchCompleted), pubsub.MatchCompleted{MatchID: 7, Opponent: "Lyon", OurScore: 71, OpponentScore: 64})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		results := server.notifier.MatchResults()
		require.Len(t, results, 1)
		assert.Equal(t, int64(7), results[0].Result.MatchID)
		assert.True(t, results[0].DryRun)
	})

	t.Run("unknown topic", func(t *testing.T) {
		rr := push(t, "booking-created", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("invalid base64", func(t *testing.T) {
		rr := server.do(t, "POST", "/events/match-completed", map[string]any{"message": map[string]string{"data": "%%%"}}, false)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("notifier failure asks for redelivery", func(t *testing.T) {
		server.notifier.SendAttendanceSummaryFunc = func(summary pubsub.AttendanceValidated, dryRun bool) error {
			return errors.New("slack is down")
		}
		rr := push(t, string(pubsub.EventAttendanceValidated), pubsub.AttendanceValidated{SessionID: 1})
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}
