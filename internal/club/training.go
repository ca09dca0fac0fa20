package club

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/remote"
)

type trainingStore struct {
	*store
	records  remote.Table
	sessions []TrainingSession
	// keyed by session id
	attendance map[int64]AttendanceRecord
}

// NewTrainingStore creates a TrainingStore covering sessions and their attendance records.
func NewTrainingStore(client remote.Client, m metrics.Metrics) TrainingStore {
	return &trainingStore{
		store:      newStore(remote.TableSessions, client, m),
		records:    remote.TableAttendance,
		attendance: make(map[int64]AttendanceRecord),
	}
}

func (s *trainingStore) FetchSessions(ctx context.Context) ([]TrainingSession, error) {
	rows, err := s.client.Select(ctx, s.collection, remote.Query{
		OrderBy: []remote.Order{{Column: "date", Desc: true}, {Column: "time", Desc: true}},
	})
	if err != nil {
		return nil, s.failed("fetch", err)
	}
	sessions := make([]TrainingSession, len(rows))
	for i, row := range rows {
		sessions[i] = TrainingSessionFromRow(row)
	}
	sortSessions(sessions)
	return sessions, nil
}

func (s *trainingStore) FetchRecords(ctx context.Context) ([]AttendanceRecord, error) {
	rows, err := s.client.Select(ctx, s.records, remote.Query{
		OrderBy: []remote.Order{{Column: "date", Desc: true}},
	})
	if err != nil {
		return nil, s.failed("fetch-attendance", err)
	}
	records := make([]AttendanceRecord, len(rows))
	for i, row := range rows {
		records[i] = AttendanceRecordFromRow(row)
	}
	return records, nil
}

func (s *trainingStore) Replace(sessions []TrainingSession, records []AttendanceRecord) {
	cp := append([]TrainingSession(nil), sessions...)
	sortSessions(cp)
	byTraining := make(map[int64]AttendanceRecord, len(records))
	for _, r := range records {
		// At most one record per session; the first one read wins.
		if _, dup := byTraining[r.TrainingID]; !dup {
			byTraining[r.TrainingID] = r
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = cp
	s.attendance = byTraining
}

// Load refreshes sessions and records together; either fetch failing keeps both.
func (s *trainingStore) Load(ctx context.Context) error {
	sessions, err := s.FetchSessions(ctx)
	if err != nil {
		return err
	}
	records, err := s.FetchRecords(ctx)
	if err != nil {
		return err
	}
	s.Replace(sessions, records)
	return nil
}

func (s *trainingStore) Sessions() []TrainingSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]TrainingSession(nil), s.sessions...)
}

func (s *trainingStore) Session(id int64) (TrainingSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sess := range s.sessions {
		if sess.ID == id {
			return sess, true
		}
	}
	return TrainingSession{}, false
}

func (s *trainingStore) Records() []AttendanceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]AttendanceRecord, 0, len(s.attendance))
	for _, sess := range s.sessions {
		if r, ok := s.attendance[sess.ID]; ok {
			out = append(out, r)
		}
	}
	return out
}

func (s *trainingStore) Record(sessionID int64) (AttendanceRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.attendance[sessionID]
	return r, ok
}

func validateSession(sess TrainingSession) error {
	if err := validDate("date", sess.Date); err != nil {
		return err
	}
	if err := validClock("time", sess.Time); err != nil {
		return err
	}
	if strings.TrimSpace(sess.Theme) == "" {
		return invalid("theme", "is required")
	}
	if !sess.Team.ValidScope() {
		return invalid("team", "unknown team scope %q", sess.Team)
	}
	return nil
}

// Add schedules a new upcoming session.
func (s *trainingStore) Add(ctx context.Context, sess TrainingSession) (TrainingSession, error) {
	if sess.Type == "" {
		sess.Type = DefaultSessionType
	}
	if sess.Team == "" {
		sess.Team = TeamAll
	}
	sess.Status = SessionUpcoming
	if err := validateSession(sess); err != nil {
		return TrainingSession{}, s.rejected("add", err)
	}
	done, err := s.begin("add")
	if err != nil {
		return TrainingSession{}, err
	}
	defer done()

	row, err := s.client.Insert(ctx, s.collection, withoutID(TrainingSessionToRow(sess)))
	if err != nil {
		return TrainingSession{}, s.failed("add", err)
	}
	created := TrainingSessionFromRow(row)
	s.written("add", created.ID)

	s.mu.Lock()
	s.sessions = append(s.sessions, created)
	sortSessions(s.sessions)
	s.mu.Unlock()
	return created, nil
}

// Update edits the session details. The status is not editable here: a
// session only becomes completed through SaveAttendance.
func (s *trainingStore) Update(ctx context.Context, sess TrainingSession) (TrainingSession, error) {
	existing, ok := s.Session(sess.ID)
	if !ok {
		return TrainingSession{}, s.rejected("update", fmt.Errorf("training session %d: %w", sess.ID, ErrNotFound))
	}
	if sess.Type == "" {
		sess.Type = existing.Type
	}
	if sess.Team == "" {
		sess.Team = existing.Team
	}
	sess.Status = existing.Status
	if err := validateSession(sess); err != nil {
		return TrainingSession{}, s.rejected("update", err)
	}
	return s.patch(ctx, "update", sess.ID, withoutID(TrainingSessionToRow(sess)))
}

func (s *trainingStore) patch(ctx context.Context, op string, id int64, patch remote.Row) (TrainingSession, error) {
	done, err := s.begin(op, id)
	if err != nil {
		return TrainingSession{}, err
	}
	defer done()
	return s.patchLocked(ctx, op, id, patch)
}

// patchLocked runs the update without taking the in-flight guard; the caller holds it.
func (s *trainingStore) patchLocked(ctx context.Context, op string, id int64, patch remote.Row) (TrainingSession, error) {
	rows, err := s.client.Update(ctx, s.collection, byID(id), patch)
	if err != nil {
		return TrainingSession{}, s.failed(op, err)
	}
	row, err := single(rows, id)
	if err != nil {
		return TrainingSession{}, s.failed(op, err)
	}
	updated := TrainingSessionFromRow(row)
	s.written(op, id)

	s.mu.Lock()
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			s.sessions[i] = updated
		}
	}
	sortSessions(s.sessions)
	s.mu.Unlock()
	return updated, nil
}

func (s *trainingStore) Delete(ctx context.Context, id int64, confirmed bool) error {
	if err := s.confirm("delete", confirmed); err != nil {
		return err
	}
	done, err := s.begin("delete", id)
	if err != nil {
		return err
	}
	defer done()

	if _, err := s.client.Delete(ctx, s.records, remote.Eq("training_id", id)); err != nil {
		return s.failed("delete-attendance", err)
	}
	// The record is gone from the backend whatever happens next.
	s.mu.Lock()
	delete(s.attendance, id)
	s.mu.Unlock()

	if _, err := s.client.Delete(ctx, s.collection, byID(id)); err != nil {
		return s.failed("delete", err)
	}
	s.written("delete", id)

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.sessions[:0]
	for _, sess := range s.sessions {
		if sess.ID != id {
			kept = append(kept, sess)
		}
	}
	s.sessions = kept
	return nil
}

func validateEntries(entries []AttendanceEntry) error {
	seen := make(map[int64]struct{}, len(entries))
	for _, e := range entries {
		if e.MemberID <= 0 {
			return invalid("attendances", "invalid member id %d", e.MemberID)
		}
		if !e.Status.Valid() {
			return invalid("attendances", "unknown status %q for member %d", e.Status, e.MemberID)
		}
		if _, dup := seen[e.MemberID]; dup {
			return invalid("attendances", "member %d appears more than once", e.MemberID)
		}
		seen[e.MemberID] = struct{}{}
	}
	return nil
}

// SaveAttendance overwrites the session's record with entries, creating it if
// needed, then marks the session completed.
func (s *trainingStore) SaveAttendance(ctx context.Context, sessionID int64, entries []AttendanceEntry) (AttendanceRecord, error) {
	if _, ok := s.Session(sessionID); !ok {
		return AttendanceRecord{}, s.rejected("save-attendance", fmt.Errorf("training session %d: %w", sessionID, ErrNotFound))
	}
	if err := validateEntries(entries); err != nil {
		return AttendanceRecord{}, s.rejected("save-attendance", err)
	}
	done, err := s.begin("save-attendance", sessionID)
	if err != nil {
		return AttendanceRecord{}, err
	}
	defer done()

	record := AttendanceRecord{
		TrainingID: sessionID,
		Date:       s.now().Format(time.DateOnly),
		Entries:    append([]AttendanceEntry(nil), entries...),
	}
	row := withoutID(AttendanceRecordToRow(record))

	existing, err := s.client.Select(ctx, s.records, remote.Query{Where: remote.Eq("training_id", sessionID), Limit: 1})
	if err != nil {
		return AttendanceRecord{}, s.failed("save-attendance", err)
	}
	var saved remote.Row
	if len(existing) > 0 {
		id := asInt64(existing[0]["id"])
		rows, err := s.client.Update(ctx, s.records, byID(id), remote.Row{
			"attendances": row["attendances"],
			"date":        row["date"],
		})
		if err != nil {
			return AttendanceRecord{}, s.failed("save-attendance", err)
		}
		if saved, err = single(rows, id); err != nil {
			return AttendanceRecord{}, s.failed("save-attendance", err)
		}
	} else {
		if saved, err = s.client.Insert(ctx, s.records, row); err != nil {
			return AttendanceRecord{}, s.failed("save-attendance", err)
		}
	}
	record = AttendanceRecordFromRow(saved)
	s.metrics.IncStoreWrites(string(s.records))

	s.mu.Lock()
	s.attendance[sessionID] = record
	s.mu.Unlock()

	if _, err := s.patchLocked(ctx, "complete", sessionID, remote.Row{"status": string(SessionCompleted)}); err != nil {
		return record, err
	}
	return record, nil
}
