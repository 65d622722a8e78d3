package league

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/league-reporter/internal/game"
	"github.com/mauv0809/league-reporter/internal/standings"
	"github.com/mauv0809/league-reporter/internal/stats"
)

// ReplacePlayerTotals swaps the whole player table in one transaction.
func (s *store) ReplacePlayerTotals(totals map[string]*stats.PlayerTotals) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM player_totals"); err != nil {
		tx.Rollback()
		return err
	}
	stmt, err := tx.Prepare(`
		INSERT INTO player_totals (name, division, time_played, scorers, assisters, saves, cs, own_goals)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, p := range totals {
		if _, err := stmt.Exec(p.Name, int(p.Division), p.Time, p.Goals, p.Assists, p.Saves, p.CleanSheets, p.OwnGoals); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to store totals for %q: %w", p.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	log.Debug("Replaced player totals", "players", len(totals))
	return nil
}

func (s *store) PlayerTotals() (map[string]*stats.PlayerTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT name, division, time_played, scorers, assisters, saves, cs, own_goals
		FROM player_totals`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := map[string]*stats.PlayerTotals{}
	for rows.Next() {
		var p stats.PlayerTotals
		var div int
		if err := rows.Scan(&p.Name, &div, &p.Time, &p.Goals, &p.Assists, &p.Saves, &p.CleanSheets, &p.OwnGoals); err != nil {
			return nil, err
		}
		p.Division = game.Division(div)
		totals[p.Name] = &p
	}
	return totals, rows.Err()
}

// ReplaceStandings swaps one division's table in one transaction.
func (s *store) ReplaceStandings(div game.Division, rows []standings.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM standings WHERE division = ?", int(div)); err != nil {
		tx.Rollback()
		return err
	}
	stmt, err := tx.Prepare(`
		INSERT INTO standings (division, team, games_played, wins, draws, losses, goals_for, goals_against, malus)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.Exec(int(div), r.Team, r.GamesPlayed, r.Wins, r.Draws, r.Losses, r.GoalsFor, r.GoalsAgainst, r.Malus); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to store standings for %q: %w", r.Team, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	log.Debug("Replaced standings", "division", div, "teams", len(rows))
	return nil
}

// Standings returns the stored table of div, sorted.
func (s *store) Standings(div game.Division) ([]standings.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT team, games_played, wins, draws, losses, goals_for, goals_against, malus
		FROM standings WHERE division = ?`, int(div))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var table []standings.Row
	for rows.Next() {
		r := standings.Row{Division: div}
		if err := rows.Scan(&r.Team, &r.GamesPlayed, &r.Wins, &r.Draws, &r.Losses, &r.GoalsFor, &r.GoalsAgainst, &r.Malus); err != nil {
			return nil, err
		}
		table = append(table, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	standings.Sort(table)
	return table, nil
}
