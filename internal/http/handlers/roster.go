package handlers

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/app"
	"github.com/mauv0809/courtside/internal/club"
)

func ListRosterHandler(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		team := club.Team(r.URL.Query().Get("team"))
		members := a.Stores().Roster.List()
		if team != "" && team != club.TeamAll {
			scoped := make([]club.RosterMember, 0, len(members))
			for _, m := range members {
				if team.Includes(m.Team) {
					scoped = append(scoped, m)
				}
			}
			members = scoped
		}
		writeJSON(w, http.StatusOK, members)
	}
}

func GetMemberHandler(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			badRequest(w, "invalid member id %q", r.PathValue("id"))
			return
		}
		m, found := a.Stores().Roster.Get(id)
		if !found {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "member not found"})
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

func AddMemberHandler(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var m club.RosterMember
		if !decode(w, r, &m) {
			return
		}
		created, err := a.Stores().Roster.Add(r.Context(), m)
		if err != nil {
			writeError(w, err)
			return
		}
		log.Info("Added roster member", "memberID", created.ID)
		writeJSON(w, http.StatusCreated, created)
	}
}

func UpdateMemberHandler(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			badRequest(w, "invalid member id %q", r.PathValue("id"))
			return
		}
		var m club.RosterMember
		if !decode(w, r, &m) {
			return
		}
		m.ID = id
		updated, err := a.Stores().Roster.Update(r.Context(), m)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

// AttendanceShortcutHandler stores a member's last known status without
// touching any session.
func AttendanceShortcutHandler(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			badRequest(w, "invalid member id %q", r.PathValue("id"))
			return
		}
		var body struct {
			Status club.AttendanceStatus `json:"status"`
		}
		if !decode(w, r, &body) {
			return
		}
		updated, err := a.Stores().Roster.UpdateAttendanceShortcut(r.Context(), id, body.Status)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func DeleteMemberHandler(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			badRequest(w, "invalid member id %q", r.PathValue("id"))
			return
		}
		if err := a.Stores().Roster.Delete(r.Context(), id, confirmed(r)); err != nil {
			writeError(w, err)
			return
		}
		log.Info("Deleted roster member", "memberID", id)
		w.WriteHeader(http.StatusNoContent)
	}
}
