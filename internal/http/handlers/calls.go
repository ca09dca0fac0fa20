package handlers

import (
	"net/http"

	"github.com/mauv0809/courtside/internal/app"
	"github.com/mauv0809/courtside/internal/attendance"
	"github.com/mauv0809/courtside/internal/club"
)

// CallView is the JSON shape of an open call.
type CallView struct {
	SessionID int64                           `json:"session_id"`
	State     attendance.State                `json:"state"`
	Mode      attendance.Mode                 `json:"mode"`
	Edit      bool                            `json:"edit"`
	Members   []club.RosterMember             `json:"members"`
	Current   *club.RosterMember              `json:"current,omitempty"`
	Index     int                             `json:"index"`
	Statuses  map[int64]club.AttendanceStatus `json:"statuses"`
	Entries   []club.AttendanceEntry          `json:"attendances"`
}

func viewOf(c *attendance.Call) CallView {
	v := CallView{
		SessionID: c.SessionID(),
		State:     c.State(),
		Mode:      c.Mode(),
		Edit:      c.IsEdit(),
		Members:   c.Members(),
		Statuses:  c.Statuses(),
		Entries:   c.Entries(),
		Index:     -1,
	}
	if m, i, ok := c.Current(); ok {
		v.Current = &m
		v.Index = i
	}
	return v
}

// callHandler resolves the session id and runs op against the app.
func callHandler(op func(id int64) (*attendance.Call, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			badRequest(w, "invalid session id %q", r.PathValue("id"))
			return
		}
		c, err := op(id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, viewOf(c))
	}
}

func StartCallHandler(a *app.App) http.HandlerFunc {
	return callHandler(func(id int64) (*attendance.Call, error) {
		return a.StartCall(id)
	})
}

// EditCallHandler reopens the saved call of a completed session.
func EditCallHandler(a *app.App) http.HandlerFunc {
	return callHandler(func(id int64) (*attendance.Call, error) {
		return a.EditCall(id)
	})
}

func GetCallHandler(a *app.App) http.HandlerFunc {
	return callHandler(func(id int64) (*attendance.Call, error) {
		return a.Call(id)
	})
}

func AssignHandler(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			badRequest(w, "invalid session id %q", r.PathValue("id"))
			return
		}
		var body struct {
			MemberID int64                 `json:"member_id"`
			Status   club.AttendanceStatus `json:"status"`
		}
		if !decode(w, r, &body) {
			return
		}
		c, err := a.AssignInCall(id, body.MemberID, body.Status)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, viewOf(c))
	}
}

func SetModeHandler(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			badRequest(w, "invalid session id %q", r.PathValue("id"))
			return
		}
		var body struct {
			Mode attendance.Mode `json:"mode"`
		}
		if !decode(w, r, &body) {
			return
		}
		c, err := a.Call(id)
		if err != nil {
			writeError(w, err)
			return
		}
		if err := c.SetMode(body.Mode); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, viewOf(c))
	}
}

// StepHandler moves the sequential cursor forward, or back when back is set.
func StepHandler(a *app.App, back bool) http.HandlerFunc {
	return callHandler(func(id int64) (*attendance.Call, error) {
		c, err := a.Call(id)
		if err != nil {
			return nil, err
		}
		if back {
			c.Previous()
		} else {
			c.Next()
		}
		return c, nil
	})
}

func ValidateCallHandler(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			badRequest(w, "invalid session id %q", r.PathValue("id"))
			return
		}
		record, err := a.ValidateCall(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, record)
	}
}

func CancelCallHandler(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			badRequest(w, "invalid session id %q", r.PathValue("id"))
			return
		}
		if err := a.CancelCall(id); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
