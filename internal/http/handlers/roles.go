package handlers

import (
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/app"
	"github.com/mauv0809/courtside/internal/club"
)

// ListRolesHandler filters by ?member= or ?match= when given. Assignments of
// deleted members or matches are never listed.
func ListRolesHandler(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("member") != "":
			id, err := strconv.ParseInt(q.Get("member"), 10, 64)
			if err != nil {
				badRequest(w, "invalid member id %q", q.Get("member"))
				return
			}
			writeJSON(w, http.StatusOK, a.MemberRoles(id))
		case q.Get("match") != "":
			id, err := strconv.ParseInt(q.Get("match"), 10, 64)
			if err != nil {
				badRequest(w, "invalid match id %q", q.Get("match"))
				return
			}
			writeJSON(w, http.StatusOK, a.MatchRoles(id))
		default:
			writeJSON(w, http.StatusOK, a.Roles())
		}
	}
}

func AssignRoleHandler(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body club.RoleAssignment
		if !decode(w, r, &body) {
			return
		}
		assigned, created, err := a.Stores().Roles.Assign(r.Context(), body.MemberID, body.RoleType, body.MatchID)
		if err != nil {
			writeError(w, err)
			return
		}
		status := http.StatusOK
		if created {
			status = http.StatusCreated
			log.Info("Assigned role", "memberID", assigned.MemberID, "role", assigned.RoleType, "matchID", assigned.MatchID)
		}
		writeJSON(w, status, assigned)
	}
}

func RemoveRoleHandler(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			badRequest(w, "invalid role id %q", r.PathValue("id"))
			return
		}
		if err := a.Stores().Roles.Remove(r.Context(), id, confirmed(r)); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
