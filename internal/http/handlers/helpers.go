package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/attendance"
	"github.com/mauv0809/courtside/internal/club"
	"github.com/mauv0809/courtside/internal/remote"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
	Kind  string `json:"kind,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to write response", "error", err)
	}
}

// StatusOf maps a store or call error to its HTTP status.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, club.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, club.ErrNotConfirmed):
		return http.StatusPreconditionFailed
	case errors.Is(err, club.ErrInFlight), errors.Is(err, attendance.ErrWrongState):
		return http.StatusConflict
	case errors.Is(err, club.ErrNotFound):
		return http.StatusNotFound
	case remote.KindOf(err) != "":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := StatusOf(err)
	resp := ErrorResponse{Error: err.Error()}

	var verr *club.ValidationError
	if errors.As(err, &verr) {
		resp.Field = verr.Field
		resp.Error = verr.Message
	}
	if kind := remote.KindOf(err); kind != "" {
		resp.Kind = string(kind)
		resp.Error = remote.ReasonOf(err)
	}
	if status >= http.StatusInternalServerError {
		log.Error("Request failed", "status", status, "error", err)
	} else {
		log.Debug("Request rejected", "status", status, "error", err)
	}
	writeJSON(w, status, resp)
}

func badRequest(w http.ResponseWriter, format string, args ...any) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf(format, args...)})
}

// pathID parses the named path value as a positive id.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	return id, err == nil && id > 0
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		badRequest(w, "invalid JSON body: %v", err)
		return false
	}
	return true
}

// confirmed reads the delete confirmation from the query string.
func confirmed(r *http.Request) bool {
	return r.URL.Query().Get("confirm") == "true"
}
