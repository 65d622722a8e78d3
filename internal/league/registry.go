package league

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/league-reporter/internal/game"
)

// Teams returns every registered team grouped by division, in registry order.
func (s *store) Teams() (map[game.Division][]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT name, division FROM teams ORDER BY division, position, name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := map[game.Division][]string{}
	for rows.Next() {
		var name string
		var div int
		if err := rows.Scan(&name, &div); err != nil {
			return nil, err
		}
		teams[game.Division(div)] = append(teams[game.Division(div)], name)
	}
	return teams, rows.Err()
}

func (s *store) TeamsByDivision(div game.Division) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT name FROM teams WHERE division = ? ORDER BY position, name", int(div))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *store) DivisionOf(team string) (game.Division, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var div int
	err := s.db.QueryRow("SELECT division FROM teams WHERE name = ?", normalize(team)).Scan(&div)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s", ErrUnknownTeam, team)
	}
	if err != nil {
		return 0, err
	}
	return game.Division(div), nil
}

// UpsertTeams registers names in div, keeping the given order. Teams already
// registered elsewhere move to div.
func (s *store) UpsertTeams(div game.Division, names []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`
		INSERT INTO teams (name, division, position) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			division = excluded.division,
			position = excluded.position;
	`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i, name := range names {
		if _, err := stmt.Exec(normalize(name), int(div), i); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to register team %q: %w", name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	log.Info("Registered teams", "division", div, "count", len(names))
	return nil
}

// Malus returns the point penalties of the teams in div that have one.
func (s *store) Malus(div game.Division) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT m.team, m.points FROM malus m
		JOIN teams t ON t.name = m.team
		WHERE t.division = ?`, int(div))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	malus := map[string]int{}
	for rows.Next() {
		var team string
		var points int
		if err := rows.Scan(&team, &points); err != nil {
			return nil, err
		}
		malus[team] = points
	}
	return malus, rows.Err()
}

// AddMalus adds points to the team's penalty and returns the new total.
func (s *store) AddMalus(team string, points int) (int, error) {
	team = normalize(team)
	if _, err := s.DivisionOf(team); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var total int
	err := s.db.QueryRow(`
		INSERT INTO malus (team, points) VALUES (?, ?)
		ON CONFLICT(team) DO UPDATE SET points = points + excluded.points
		RETURNING points;
	`, team, points).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to add malus for %q: %w", team, err)
	}
	log.Info("Added malus", "team", team, "points", points, "total", total)
	return total, nil
}

func normalize(team string) string {
	return strings.ToLower(strings.TrimSpace(team))
}
