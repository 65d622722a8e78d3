package processor

import (
	"github.com/mauv0809/league-reporter/internal/game"
	"github.com/mauv0809/league-reporter/internal/standings"
	"github.com/mauv0809/league-reporter/internal/stats"
)

// Game returns the single game of matchday involving every team.
func (p *Processor) Game(matchday int, teams ...string) (*game.Game, error) {
	return p.store.GetGame(matchday, teams...)
}

func (p *Processor) Matchday(matchday int) ([]game.Game, error) {
	return p.store.ListMatchday(matchday)
}

func (p *Processor) Games() ([]game.Game, error) {
	return p.store.ListGames()
}

// Warnings lists the games saved with warnings.
func (p *Processor) Warnings() ([]game.Game, error) {
	return p.store.GamesWithWarnings()
}

// Leaderboard ranks players by the stat behind key.
func (p *Processor) Leaderboard(key string, division *game.Division) ([]stats.Entry, error) {
	totals, err := p.store.PlayerTotals()
	if err != nil {
		return nil, err
	}
	return stats.SortBy(totals, key, division)
}

// RatioLeaderboard ranks players by the stat behind key per minute played.
// A minMinutes below zero uses the configured threshold.
func (p *Processor) RatioLeaderboard(key string, division *game.Division, minMinutes int) ([]stats.Entry, error) {
	entries, err := p.Leaderboard(key, division)
	if err != nil {
		return nil, err
	}
	if minMinutes < 0 {
		minMinutes = p.cfg.RatioMinMinutes
	}
	return stats.SortByRatio(entries, minMinutes), nil
}

func (p *Processor) PlayerTotals() (map[string]*stats.PlayerTotals, error) {
	return p.store.PlayerTotals()
}

func (p *Processor) Standings(division game.Division) ([]standings.Row, error) {
	return p.store.Standings(division)
}

func (p *Processor) Teams() (map[game.Division][]string, error) {
	return p.store.Teams()
}
