package handlers

import (
	"net/http"

	"github.com/mauv0809/courtside/internal/app"
	"github.com/mauv0809/courtside/internal/club"
)

func DashboardHandler(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		team := club.Team(r.URL.Query().Get("team"))
		if team != "" && !team.ValidScope() {
			badRequest(w, "unknown team %q", team)
			return
		}
		writeJSON(w, http.StatusOK, a.Dashboard(team))
	}
}

func PlayerStatsHandler(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			badRequest(w, "invalid member id %q", r.PathValue("id"))
			return
		}
		ps, found := a.PlayerStats(id)
		if !found {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "member not found"})
			return
		}
		writeJSON(w, http.StatusOK, ps)
	}
}

func TeamStatsHandler(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, a.TeamStats())
	}
}
