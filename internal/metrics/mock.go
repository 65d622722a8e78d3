package metrics

import "sync"

var _ Metrics = (*Mock)(nil)

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu               sync.Mutex
	reportsSubmitted int
	reportsRejected  int
	warnings         int
	edits            map[string]int
	rebuildDurations []float64
	slackNotifSent   int
	slackNotifFailed int
	startupTime      float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		edits:            map[string]int{},
		rebuildDurations: make([]float64, 0),
	}
}

func (m *Mock) IncReportsSubmitted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reportsSubmitted++
}

func (m *Mock) IncReportsRejected() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reportsRejected++
}

func (m *Mock) AddWarnings(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warnings += n
}

func (m *Mock) IncEdits(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edits[kind]++
}

func (m *Mock) ObserveRebuildDuration(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rebuildDurations = append(m.rebuildDurations, seconds)
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

func (m *Mock) SetStartupTime(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = seconds
}

// ReportsSubmitted returns the number of times IncReportsSubmitted was called.
func (m *Mock) ReportsSubmitted() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reportsSubmitted
}

// ReportsRejected returns the number of times IncReportsRejected was called.
func (m *Mock) ReportsRejected() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reportsRejected
}

// Warnings returns the sum passed to AddWarnings.
func (m *Mock) Warnings() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.warnings
}

// Edits returns how many edits of kind were counted.
func (m *Mock) Edits(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.edits[kind]
}

// Rebuilds returns the number of rebuild durations observed.
func (m *Mock) Rebuilds() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rebuildDurations)
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
