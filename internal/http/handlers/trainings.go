package handlers

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/app"
	"github.com/mauv0809/courtside/internal/attendance"
	"github.com/mauv0809/courtside/internal/club"
)

// SessionDetail is a session with its call sheet, restricted to members
// that still exist.
type SessionDetail struct {
	Session club.TrainingSession               `json:"session"`
	Entries []club.AttendanceEntry             `json:"attendances"`
	Stats   attendance.SessionStats            `json:"stats"`
	Counts  map[club.AttendanceStatus]int      `json:"counts"`
	Groups  map[club.AttendanceStatus][]string `json:"groups"`
}

func ListTrainingsHandler(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, a.Stores().Trainings.Sessions())
	}
}

func GetTrainingHandler(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			badRequest(w, "invalid session id %q", r.PathValue("id"))
			return
		}
		s, found := a.Stores().Trainings.Session(id)
		if !found {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "training session not found"})
			return
		}

		v := a.View()
		detail := SessionDetail{
			Session: s,
			Entries: v.ValidEntries(id),
			Stats:   v.SessionStats(id),
			Counts:  v.StatusCounts(id),
			Groups:  make(map[club.AttendanceStatus][]string),
		}
		if detail.Entries == nil {
			detail.Entries = []club.AttendanceEntry{}
		}
		for status, members := range v.GroupByStatus(s.Team, v.Statuses(id)) {
			names := make([]string, 0, len(members))
			for _, m := range members {
				names = append(names, m.FullName())
			}
			detail.Groups[status] = names
		}
		writeJSON(w, http.StatusOK, detail)
	}
}

func AddTrainingHandler(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var s club.TrainingSession
		if !decode(w, r, &s) {
			return
		}
		created, err := a.Stores().Trainings.Add(r.Context(), s)
		if err != nil {
			writeError(w, err)
			return
		}
		log.Info("Added training session", "sessionID", created.ID, "date", created.Date)
		writeJSON(w, http.StatusCreated, created)
	}
}

func UpdateTrainingHandler(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			badRequest(w, "invalid session id %q", r.PathValue("id"))
			return
		}
		var s club.TrainingSession
		if !decode(w, r, &s) {
			return
		}
		s.ID = id
		updated, err := a.Stores().Trainings.Update(r.Context(), s)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func DeleteTrainingHandler(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			badRequest(w, "invalid session id %q", r.PathValue("id"))
			return
		}
		if err := a.Stores().Trainings.Delete(r.Context(), id, confirmed(r)); err != nil {
			writeError(w, err)
			return
		}
		log.Info("Deleted training session", "sessionID", id)
		w.WriteHeader(http.StatusNoContent)
	}
}
