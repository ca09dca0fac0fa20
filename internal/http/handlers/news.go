package handlers

import (
	"net/http"

	"github.com/mauv0809/courtside/internal/app"
	"github.com/mauv0809/courtside/internal/club"
)

func ListNewsHandler(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, a.Stores().News.Active())
	}
}

func AddNewsHandler(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var l club.NewsLink
		if !decode(w, r, &l) {
			return
		}
		created, err := a.Stores().News.Add(r.Context(), l)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

// SaveNewsHandler replaces the whole active list. Invalid links are skipped.
func SaveNewsHandler(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var links []club.NewsLink
		if !decode(w, r, &links) {
			return
		}
		saved, err := a.Stores().News.Save(r.Context(), links)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, saved)
	}
}

func RemoveNewsHandler(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			badRequest(w, "invalid link id %q", r.PathValue("id"))
			return
		}
		if err := a.Stores().News.Remove(r.Context(), id, confirmed(r)); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
