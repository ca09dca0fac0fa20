package metrics

import "sync"

var _ Metrics = (*Mock)(nil)

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                 sync.Mutex
	storeWrites        map[string]int
	storeFailures      map[string]int
	validationFailures map[string]int
	callsValidated     int
	eventsProcessed    map[string]int
	slackNotifSent     int
	slackNotifFailed   int
	fetchDurations     []float64
	startupTime        float64
	offline            bool
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		storeWrites:        make(map[string]int),
		storeFailures:      make(map[string]int),
		validationFailures: make(map[string]int),
		eventsProcessed:    make(map[string]int),
	}
}

func (m *Mock) IncStoreWrites(collection string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.storeWrites[collection]++
}

func (m *Mock) IncStoreFailures(collection, kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.storeFailures[collection+"/"+kind]++
}

func (m *Mock) IncValidationFailures(collection string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.validationFailures[collection]++
}

func (m *Mock) IncCallsValidated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callsValidated++
}

func (m *Mock) IncEventsProcessed(event string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventsProcessed[event]++
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) ObserveStartupFetchDuration(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchDurations = append(m.fetchDurations, seconds)
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

func (m *Mock) SetOfflineMode(offline bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offline = offline
}

// StoreWrites returns the number of successful writes recorded for collection.
func (m *Mock) StoreWrites(collection string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.storeWrites[collection]
}

// StoreFailures returns the number of failures recorded for collection and kind.
func (m *Mock) StoreFailures(collection, kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.storeFailures[collection+"/"+kind]
}

func (m *Mock) ValidationFailures(collection string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.validationFailures[collection]
}

func (m *Mock) CallsValidated() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callsValidated
}

func (m *Mock) EventsProcessed(event string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.eventsProcessed[event]
}

// SlackNotifSent returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailed returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}

func (m *Mock) Offline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.offline
}

func (m *Mock) FetchDurations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.fetchDurations)
}
