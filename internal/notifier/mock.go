package notifier

import (
	"context"
	"sync"

	"github.com/mauv0809/league-reporter/internal/game"
	"github.com/mauv0809/league-reporter/internal/pubsub"
	"github.com/mauv0809/league-reporter/internal/standings"
	"github.com/mauv0809/league-reporter/internal/stats"
)

var _ Notifier = (*Mock)(nil)

// Mock is a mock implementation of the Notifier interface for testing.
// Format methods return the value they were given so tests can inspect it.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	SendChangeFunc func(ev pubsub.GamesChanged, dryRun bool) error

	// Call records
	SendChangeCalls []struct {
		Event  pubsub.GamesChanged
		DryRun bool
	}
	LastResponse any
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendChangeCalls = nil
	m.LastResponse = nil
}

func (m *Mock) SendChange(_ context.Context, ev pubsub.GamesChanged, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendChangeCalls = append(m.SendChangeCalls, struct {
		Event  pubsub.GamesChanged
		DryRun bool
	}{ev, dryRun})
	if m.SendChangeFunc != nil {
		return m.SendChangeFunc(ev, dryRun)
	}
	return nil
}

func (m *Mock) record(v any) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastResponse = v
	return v, nil
}

func (m *Mock) FormatSubmissionResponse(g *game.Game) (any, error) {
	return m.record(g)
}

func (m *Mock) FormatGameResponse(g *game.Game) (any, error) {
	return m.record(g)
}

func (m *Mock) FormatMatchdayResponse(_ int, games []game.Game) (any, error) {
	return m.record(games)
}

func (m *Mock) FormatLeaderboardResponse(_ string, entries []stats.Entry, _ bool) (any, error) {
	return m.record(entries)
}

func (m *Mock) FormatStandingsResponse(_ game.Division, rows []standings.Row) (any, error) {
	return m.record(rows)
}

func (m *Mock) FormatTeamsResponse(teams map[game.Division][]string) (any, error) {
	return m.record(teams)
}

func (m *Mock) FormatWarningsResponse(games []game.Game) (any, error) {
	return m.record(games)
}

func (m *Mock) FormatTextResponse(text string) (any, error) {
	return m.record(text)
}
