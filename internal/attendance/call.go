package attendance

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/club"
)

// SaveFunc persists the entries of a validated call.
type SaveFunc func(ctx context.Context, entries []club.AttendanceEntry) error

// Call is the check-in workflow of one training session. Sequential and free
// mode share the same status map, so switching never loses an assignment.
type Call struct {
	mu sync.Mutex

	session  club.TrainingSession
	members  []club.RosterMember
	statuses map[int64]club.AttendanceStatus
	state    State
	mode     Mode
	index    int
	edit     bool
}

// NewCall prepares a call over the members of v inside the session's team
// scope. The call starts in NotStarted. The member list is a snapshot; Resync
// refreshes it.
func NewCall(session club.TrainingSession, v *View) *Call {
	return &Call{
		session:  session,
		members:  v.Members(session.Team),
		statuses: make(map[int64]club.AttendanceStatus),
		state:    NotStarted,
		mode:     Sequential,
	}
}

// EditCall opens an already validated session with its valid entries
// preloaded. Members that have an entry but are no longer in the session's
// scope stay editable. Validating an edit saves the explicit entries only.
func EditCall(session club.TrainingSession, v *View) *Call {
	statuses := v.Statuses(session.ID)
	return &Call{
		session:  session,
		members:  editMembers(session, v, statuses),
		statuses: statuses,
		state:    InProgress,
		mode:     Free,
		edit:     true,
	}
}

// editMembers is the session's scope plus anyone outside it who already has
// an entry.
func editMembers(session club.TrainingSession, v *View, statuses map[int64]club.AttendanceStatus) []club.RosterMember {
	members := v.Members(session.Team)
	inScope := make(map[int64]struct{}, len(members))
	for _, m := range members {
		inScope[m.ID] = struct{}{}
	}
	for _, m := range v.Roster() {
		if _, ok := inScope[m.ID]; ok {
			continue
		}
		if _, ok := statuses[m.ID]; ok {
			members = append(members, m)
		}
	}
	return members
}

// Resync lines the call up with the roster of v. Deleted members leave the
// call along with their assignment, and members added to the scope join it
// unassigned, so a first call defaults them to absent. The sequential pointer
// stays on the same member when that member is still there.
func (c *Call) Resync(v *View) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id := range c.statuses {
		if _, ok := v.Member(id); !ok {
			delete(c.statuses, id)
		}
	}
	current := int64(-1)
	if c.index < len(c.members) {
		current = c.members[c.index].ID
	}
	if c.edit {
		c.members = editMembers(c.session, v, c.statuses)
	} else {
		c.members = v.Members(c.session.Team)
	}
	if c.index > len(c.members) {
		c.index = len(c.members)
	}
	for i, m := range c.members {
		if m.ID == current {
			c.index = i
			break
		}
	}
}

// Start moves a fresh call to InProgress in sequential mode on the first member.
func (c *Call) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != NotStarted {
		return fmt.Errorf("start call for session %d in state %s: %w", c.session.ID, c.state, ErrWrongState)
	}
	c.state = InProgress
	c.mode = Sequential
	c.index = 0
	c.statuses = make(map[int64]club.AttendanceStatus)
	if len(c.members) == 0 {
		c.mode = Free
	}
	log.Info("Call started", "sessionID", c.session.ID, "members", len(c.members))
	return nil
}

func (c *Call) SessionID() int64 {
	return c.session.ID
}

func (c *Call) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Call) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// IsEdit reports whether the call reopened a validated session.
func (c *Call) IsEdit() bool {
	return c.edit
}

func (c *Call) Members() []club.RosterMember {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]club.RosterMember(nil), c.members...)
}

// Statuses returns a copy of the assignments made so far.
func (c *Call) Statuses() map[int64]club.AttendanceStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[int64]club.AttendanceStatus, len(c.statuses))
	for id, s := range c.statuses {
		out[id] = s
	}
	return out
}

// Current returns the member under the sequential pointer. It is false in
// free mode and once the pointer has passed the last member.
func (c *Call) Current() (club.RosterMember, int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != InProgress || c.mode != Sequential || c.index >= len(c.members) {
		return club.RosterMember{}, c.index, false
	}
	return c.members[c.index], c.index, true
}

func (c *Call) SetMode(m Mode) error {
	if !m.Valid() {
		return &club.ValidationError{Field: "mode", Message: fmt.Sprintf("unknown call mode %q", m)}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != InProgress {
		return fmt.Errorf("set mode on session %d in state %s: %w", c.session.ID, c.state, ErrWrongState)
	}
	c.mode = m
	if m == Sequential && c.index >= len(c.members) {
		c.index = 0
	}
	return nil
}

// Next moves the sequential pointer forward. It reports false at the last member.
func (c *Call) Next() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != InProgress || c.index+1 >= len(c.members) {
		return false
	}
	c.index++
	return true
}

// Previous moves the sequential pointer back. It reports false at the first member.
func (c *Call) Previous() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != InProgress || c.index == 0 {
		return false
	}
	if c.index > len(c.members) {
		c.index = len(c.members)
	}
	c.index--
	return true
}

// Assign records a status for one member of the call. In sequential mode an
// assignment to the current member advances the pointer; past the last member
// the call switches to free mode.
func (c *Call) Assign(memberID int64, status club.AttendanceStatus) error {
	if !status.Valid() {
		return &club.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", status)}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != InProgress {
		return fmt.Errorf("assign on session %d in state %s: %w", c.session.ID, c.state, ErrWrongState)
	}
	pos := -1
	for i, m := range c.members {
		if m.ID == memberID {
			pos = i
			break
		}
	}
	if pos < 0 {
		return &club.ValidationError{Field: "member_id", Message: fmt.Sprintf("member %d is not part of this call", memberID)}
	}
	c.statuses[memberID] = status

	if c.mode == Sequential && pos == c.index {
		c.index++
		if c.index >= len(c.members) {
			c.mode = Free
		}
	}
	return nil
}

// Entries computes what validating would save. A first call fills every
// unset member with absent; an edit keeps only the explicit entries.
func (c *Call) Entries() []club.AttendanceEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entriesLocked()
}

func (c *Call) entriesLocked() []club.AttendanceEntry {
	entries := make([]club.AttendanceEntry, 0, len(c.members))
	for _, m := range c.members {
		status, ok := c.statuses[m.ID]
		if !ok {
			if c.edit {
				continue
			}
			status = club.StatusAbsent
		}
		entries = append(entries, club.AttendanceEntry{MemberID: m.ID, Status: status})
	}
	return entries
}

// Validate saves the call as one atomic write. The call only becomes
// Validated when save succeeds; on failure it stays in progress untouched.
func (c *Call) Validate(ctx context.Context, save SaveFunc) ([]club.AttendanceEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != InProgress {
		return nil, fmt.Errorf("validate session %d in state %s: %w", c.session.ID, c.state, ErrWrongState)
	}
	entries := c.entriesLocked()
	if err := save(ctx, entries); err != nil {
		return nil, err
	}
	c.state = Validated
	log.Info("Call validated", "sessionID", c.session.ID, "entries", len(entries), "edit", c.edit)
	return entries, nil
}

// Cancel abandons an in-progress call. Nothing has been persisted, so the
// partial map is simply dropped.
func (c *Call) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != InProgress {
		return fmt.Errorf("cancel session %d in state %s: %w", c.session.ID, c.state, ErrWrongState)
	}
	c.statuses = make(map[int64]club.AttendanceStatus)
	c.state = NotStarted
	c.mode = Sequential
	c.index = 0
	log.Info("Call cancelled", "sessionID", c.session.ID)
	return nil
}
