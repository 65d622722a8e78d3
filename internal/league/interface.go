package league

import (
	"github.com/mauv0809/league-reporter/internal/game"
	"github.com/mauv0809/league-reporter/internal/standings"
	"github.com/mauv0809/league-reporter/internal/stats"
)

// Store persists the game corpus, the team and malus registries and the
// tables derived from the corpus.
type Store interface {
	SaveGame(g *game.Game) error
	GetGame(matchday int, teams ...string) (*game.Game, error)
	ListGames() ([]game.Game, error)
	ListMatchday(matchday int) ([]game.Game, error)
	DeleteGame(matchday int, team string) error
	GamesWithWarnings() ([]game.Game, error)

	Teams() (map[game.Division][]string, error)
	TeamsByDivision(div game.Division) ([]string, error)
	DivisionOf(team string) (game.Division, error)
	UpsertTeams(div game.Division, names []string) error
	Malus(div game.Division) (map[string]int, error)
	AddMalus(team string, points int) (int, error)

	ReplacePlayerTotals(totals map[string]*stats.PlayerTotals) error
	PlayerTotals() (map[string]*stats.PlayerTotals, error)
	ReplaceStandings(div game.Division, rows []standings.Row) error
	Standings(div game.Division) ([]standings.Row, error)
}
