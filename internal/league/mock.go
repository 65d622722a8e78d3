package league

import (
	"sync"

	"github.com/mauv0809/league-reporter/internal/game"
	"github.com/mauv0809/league-reporter/internal/standings"
	"github.com/mauv0809/league-reporter/internal/stats"
)

var _ Store = (*MockStore)(nil)

// MockStore is a mock implementation of the Store interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	SaveGameFunc            func(g *game.Game) error
	GetGameFunc             func(matchday int, teams ...string) (*game.Game, error)
	ListGamesFunc           func() ([]game.Game, error)
	ListMatchdayFunc        func(matchday int) ([]game.Game, error)
	DeleteGameFunc          func(matchday int, team string) error
	GamesWithWarningsFunc   func() ([]game.Game, error)
	TeamsFunc               func() (map[game.Division][]string, error)
	TeamsByDivisionFunc     func(div game.Division) ([]string, error)
	DivisionOfFunc          func(team string) (game.Division, error)
	UpsertTeamsFunc         func(div game.Division, names []string) error
	MalusFunc               func(div game.Division) (map[string]int, error)
	AddMalusFunc            func(team string, points int) (int, error)
	ReplacePlayerTotalsFunc func(totals map[string]*stats.PlayerTotals) error
	PlayerTotalsFunc        func() (map[string]*stats.PlayerTotals, error)
	ReplaceStandingsFunc    func(div game.Division, rows []standings.Row) error
	StandingsFunc           func(div game.Division) ([]standings.Row, error)

	// Call records
	SaveGameCalls   []game.Game
	DeleteGameCalls []struct {
		Matchday int
		Team     string
	}
	AddMalusCalls []struct {
		Team   string
		Points int
	}
	ReplacePlayerTotalsCalls []map[string]*stats.PlayerTotals
	ReplaceStandingsCalls    []struct {
		Division game.Division
		Rows     []standings.Row
	}
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

func (m *MockStore) SaveGame(g *game.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveGameCalls = append(m.SaveGameCalls, *g)
	if m.SaveGameFunc != nil {
		return m.SaveGameFunc(g)
	}
	return nil
}

func (m *MockStore) GetGame(matchday int, teams ...string) (*game.Game, error) {
	if m.GetGameFunc != nil {
		return m.GetGameFunc(matchday, teams...)
	}
	return nil, ErrGameNotFound
}

func (m *MockStore) ListGames() ([]game.Game, error) {
	if m.ListGamesFunc != nil {
		return m.ListGamesFunc()
	}
	return nil, nil
}

func (m *MockStore) ListMatchday(matchday int) ([]game.Game, error) {
	if m.ListMatchdayFunc != nil {
		return m.ListMatchdayFunc(matchday)
	}
	return nil, nil
}

func (m *MockStore) DeleteGame(matchday int, team string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteGameCalls = append(m.DeleteGameCalls, struct {
		Matchday int
		Team     string
	}{matchday, team})
	if m.DeleteGameFunc != nil {
		return m.DeleteGameFunc(matchday, team)
	}
	return nil
}

func (m *MockStore) GamesWithWarnings() ([]game.Game, error) {
	if m.GamesWithWarningsFunc != nil {
		return m.GamesWithWarningsFunc()
	}
	return nil, nil
}

func (m *MockStore) Teams() (map[game.Division][]string, error) {
	if m.TeamsFunc != nil {
		return m.TeamsFunc()
	}
	return map[game.Division][]string{}, nil
}

func (m *MockStore) TeamsByDivision(div game.Division) ([]string, error) {
	if m.TeamsByDivisionFunc != nil {
		return m.TeamsByDivisionFunc(div)
	}
	return nil, nil
}

func (m *MockStore) DivisionOf(team string) (game.Division, error) {
	if m.DivisionOfFunc != nil {
		return m.DivisionOfFunc(team)
	}
	return 0, ErrUnknownTeam
}

func (m *MockStore) UpsertTeams(div game.Division, names []string) error {
	if m.UpsertTeamsFunc != nil {
		return m.UpsertTeamsFunc(div, names)
	}
	return nil
}

func (m *MockStore) Malus(div game.Division) (map[string]int, error) {
	if m.MalusFunc != nil {
		return m.MalusFunc(div)
	}
	return map[string]int{}, nil
}

func (m *MockStore) AddMalus(team string, points int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddMalusCalls = append(m.AddMalusCalls, struct {
		Team   string
		Points int
	}{team, points})
	if m.AddMalusFunc != nil {
		return m.AddMalusFunc(team, points)
	}
	return points, nil
}

func (m *MockStore) ReplacePlayerTotals(totals map[string]*stats.PlayerTotals) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReplacePlayerTotalsCalls = append(m.ReplacePlayerTotalsCalls, totals)
	if m.ReplacePlayerTotalsFunc != nil {
		return m.ReplacePlayerTotalsFunc(totals)
	}
	return nil
}

func (m *MockStore) PlayerTotals() (map[string]*stats.PlayerTotals, error) {
	if m.PlayerTotalsFunc != nil {
		return m.PlayerTotalsFunc()
	}
	return map[string]*stats.PlayerTotals{}, nil
}

func (m *MockStore) ReplaceStandings(div game.Division, rows []standings.Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReplaceStandingsCalls = append(m.ReplaceStandingsCalls, struct {
		Division game.Division
		Rows     []standings.Row
	}{div, rows})
	if m.ReplaceStandingsFunc != nil {
		return m.ReplaceStandingsFunc(div, rows)
	}
	return nil
}

func (m *MockStore) Standings(div game.Division) ([]standings.Row, error) {
	if m.StandingsFunc != nil {
		return m.StandingsFunc(div)
	}
	return nil, nil
}
