package app

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/attendance"
	"github.com/mauv0809/courtside/internal/club"
	"github.com/mauv0809/courtside/internal/pubsub"
)

func (a *App) session(sessionID int64) (club.TrainingSession, error) {
	s, ok := a.Stores().Trainings.Session(sessionID)
	if !ok {
		return club.TrainingSession{}, fmt.Errorf("training session %d: %w", sessionID, club.ErrNotFound)
	}
	return s, nil
}

// StartCall opens the call of an upcoming session. An open call for the
// session is returned as is.
func (a *App) StartCall(sessionID int64) (*attendance.Call, error) {
	s, err := a.session(sessionID)
	if err != nil {
		return nil, err
	}
	if s.Completed() {
		return nil, fmt.Errorf("session %d is already completed, edit its call instead: %w", sessionID, attendance.ErrWrongState)
	}

	a.callsMu.Lock()
	defer a.callsMu.Unlock()
	if c, ok := a.calls[sessionID]; ok {
		return c, nil
	}
	c := attendance.NewCall(s, a.View())
	if err := c.Start(); err != nil {
		return nil, err
	}
	a.calls[sessionID] = c
	return c, nil
}

// EditCall reopens the call of a completed session with its saved entries.
func (a *App) EditCall(sessionID int64) (*attendance.Call, error) {
	s, err := a.session(sessionID)
	if err != nil {
		return nil, err
	}
	if !s.Completed() {
		return nil, fmt.Errorf("session %d has no validated call yet: %w", sessionID, attendance.ErrWrongState)
	}

	a.callsMu.Lock()
	defer a.callsMu.Unlock()
	if c, ok := a.calls[sessionID]; ok {
		return c, nil
	}
	c := attendance.EditCall(s, a.View())
	a.calls[sessionID] = c
	return c, nil
}

// Call returns the open call of a session, resynced with the current roster.
func (a *App) Call(sessionID int64) (*attendance.Call, error) {
	a.callsMu.Lock()
	c, ok := a.calls[sessionID]
	a.callsMu.Unlock()
	if !ok {
		return nil, fmt.Errorf("no open call for session %d: %w", sessionID, club.ErrNotFound)
	}
	c.Resync(a.View())
	return c, nil
}

func (a *App) AssignInCall(sessionID, memberID int64, status club.AttendanceStatus) (*attendance.Call, error) {
	c, err := a.Call(sessionID)
	if err != nil {
		return nil, err
	}
	if err := c.Assign(memberID, status); err != nil {
		return nil, err
	}
	return c, nil
}

// ValidateCall saves the call in one write, which also completes the
// session, closes the call and announces the result. On failure the call
// stays open with its assignments.
func (a *App) ValidateCall(ctx context.Context, sessionID int64) (club.AttendanceRecord, error) {
	c, err := a.Call(sessionID)
	if err != nil {
		return club.AttendanceRecord{}, err
	}
	trainings := a.Stores().Trainings

	var record club.AttendanceRecord
	entries, err := c.Validate(ctx, func(ctx context.Context, entries []club.AttendanceEntry) error {
		var err error
		record, err = trainings.SaveAttendance(ctx, sessionID, entries)
		return err
	})
	if err != nil {
		return club.AttendanceRecord{}, err
	}

	a.callsMu.Lock()
	delete(a.calls, sessionID)
	a.callsMu.Unlock()
	a.metrics.IncCallsValidated()

	v := a.View()
	s, _ := trainings.Session(sessionID)
	stats := v.SessionStats(sessionID)
	named := make([]pubsub.NamedEntry, 0, len(entries))
	for _, e := range v.ValidEntries(sessionID) {
		m, _ := v.Member(e.MemberID)
		named = append(named, pubsub.NamedEntry{MemberID: e.MemberID, Name: m.FullName(), Status: e.Status})
	}
	a.publish(ctx, pubsub.EventAttendanceValidated, pubsub.AttendanceValidated{
		SessionID: sessionID,
		Date:      s.Date,
		Time:      s.Time,
		Theme:     s.Theme,
		Team:      s.Team,
		Entries:   named,
		Present:   stats.Present,
		Total:     stats.Total,
		Edit:      c.IsEdit(),
	})
	log.Info("Attendance saved", "sessionID", sessionID, "present", stats.Present, "total", stats.Total)
	return record, nil
}

// CancelCall drops an open call without saving anything.
func (a *App) CancelCall(sessionID int64) error {
	c, err := a.Call(sessionID)
	if err != nil {
		return err
	}
	if err := c.Cancel(); err != nil {
		return err
	}
	a.callsMu.Lock()
	delete(a.calls, sessionID)
	a.callsMu.Unlock()
	return nil
}
