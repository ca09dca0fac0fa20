package notifier

import (
	"sync"

	"github.com/mauv0809/courtside/internal/pubsub"
)

var _ Notifier = (*Mock)(nil)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies
	SendAttendanceSummaryFunc func(summary pubsub.AttendanceValidated, dryRun bool) error
	SendMatchResultFunc       func(result pubsub.MatchCompleted, dryRun bool) error

	// Call records
	SendAttendanceSummaryCalls []AttendanceSummaryCall
	SendMatchResultCalls       []MatchResultCall
}

type AttendanceSummaryCall struct {
	Summary pubsub.AttendanceValidated
	DryRun  bool
}

type MatchResultCall struct {
	Result pubsub.MatchCompleted
	DryRun bool
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendAttendanceSummaryCalls = nil
	m.SendMatchResultCalls = nil
}

func (m *Mock) SendAttendanceSummary(summary pubsub.AttendanceValidated, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendAttendanceSummaryCalls = append(m.SendAttendanceSummaryCalls, AttendanceSummaryCall{Summary: summary, DryRun: dryRun})
	if m.SendAttendanceSummaryFunc != nil {
		return m.SendAttendanceSummaryFunc(summary, dryRun)
	}
	return nil
}

func (m *Mock) SendMatchResult(result pubsub.MatchCompleted, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendMatchResultCalls = append(m.SendMatchResultCalls, MatchResultCall{Result: result, DryRun: dryRun})
	if m.SendMatchResultFunc != nil {
		return m.SendMatchResultFunc(result, dryRun)
	}
	return nil
}

// AttendanceSummaries returns a copy of the recorded attendance summaries.
func (m *Mock) AttendanceSummaries() []AttendanceSummaryCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]AttendanceSummaryCall(nil), m.SendAttendanceSummaryCalls...)
}

// MatchResults returns a copy of the recorded match results.
func (m *Mock) MatchResults() []MatchResultCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MatchResultCall(nil), m.SendMatchResultCalls...)
}
