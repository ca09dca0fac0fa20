package handlers

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/app"
	"github.com/mauv0809/courtside/internal/club"
)

func ListMatchesHandler(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, a.Matches())
	}
}

func GetMatchHandler(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			badRequest(w, "invalid match id %q", r.PathValue("id"))
			return
		}
		m, found := a.Match(id)
		if !found {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "match not found"})
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

func AddMatchHandler(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var m club.Match
		if !decode(w, r, &m) {
			return
		}
		created, err := a.Stores().Matches.Add(r.Context(), m)
		if err != nil {
			writeError(w, err)
			return
		}
		log.Info("Added match", "matchID", created.ID, "opponent", created.Opponent)
		writeJSON(w, http.StatusCreated, created)
	}
}

func UpdateMatchHandler(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			badRequest(w, "invalid match id %q", r.PathValue("id"))
			return
		}
		var m club.Match
		if !decode(w, r, &m) {
			return
		}
		m.ID = id
		updated, err := a.Stores().Matches.Update(r.Context(), m)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func DeleteMatchHandler(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			badRequest(w, "invalid match id %q", r.PathValue("id"))
			return
		}
		if err := a.Stores().Matches.Delete(r.Context(), id, confirmed(r)); err != nil {
			writeError(w, err)
			return
		}
		log.Info("Deleted match", "matchID", id)
		w.WriteHeader(http.StatusNoContent)
	}
}

// SetPlayersHandler replaces the whole selection.
func SetPlayersHandler(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			badRequest(w, "invalid match id %q", r.PathValue("id"))
			return
		}
		var body struct {
			Players []int64 `json:"selected_players"`
		}
		if !decode(w, r, &body) {
			return
		}
		updated, err := a.Stores().Matches.UpdatePlayers(r.Context(), id, body.Players)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

// TogglePlayerHandler selects the member, or unselects it when remove is set.
func TogglePlayerHandler(a *app.App, remove bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			badRequest(w, "invalid match id %q", r.PathValue("id"))
			return
		}
		memberID, ok := pathID(r, "memberID")
		if !ok {
			badRequest(w, "invalid member id %q", r.PathValue("memberID"))
			return
		}
		var (
			updated club.Match
			err     error
		)
		if remove {
			updated, err = a.UnselectPlayer(r.Context(), id, memberID)
		} else {
			updated, err = a.SelectPlayer(r.Context(), id, memberID)
		}
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func ScoreHandler(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			badRequest(w, "invalid match id %q", r.PathValue("id"))
			return
		}
		var score club.Score
		if !decode(w, r, &score) {
			return
		}
		updated, err := a.RecordScore(r.Context(), id, score)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func MatchStatusHandler(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			badRequest(w, "invalid match id %q", r.PathValue("id"))
			return
		}
		var body struct {
			Status club.MatchStatus `json:"status"`
		}
		if !decode(w, r, &body) {
			return
		}
		updated, err := a.Stores().Matches.SetStatus(r.Context(), id, body.Status)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}
