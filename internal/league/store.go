package league

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/league-reporter/internal/game"
)

// New creates a new Store.
func New(db *sql.DB) Store {
	return &store{
		db: db,
	}
}

const gameColumns = `id, matchday, division, title, home_team, home_goals, away_team, away_goals,
	team1_json, team2_json, recordings_json, refs_json, warnings_json, created_at, updated_at`

// SaveGame inserts the game or replaces the stored game with the same id. A
// game without an id takes over the id of the game already stored under its
// matchday and title, so a resubmitted report overwrites the old one.
func (s *store) SaveGame(g *game.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if g.Rejected() {
		return fmt.Errorf("refusing to save game with errors: %s", strings.Join(g.Errors, "; "))
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if g.ID == "" {
		var existingID string
		var created int64
		err := tx.QueryRow("SELECT id, created_at FROM games WHERE matchday = ? AND title = ?", g.Matchday, g.Title).Scan(&existingID, &created)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			g.ID = uuid.New().String()
		case err != nil:
			tx.Rollback()
			return err
		default:
			g.ID = existingID
			g.CreatedAt = time.Unix(created, 0).UTC()
		}
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now
	}
	g.UpdatedAt = now

	blobs, err := marshalBlobs(g)
	if err != nil {
		tx.Rollback()
		return err
	}

	_, err = tx.Exec(`
		INSERT INTO games (`+gameColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			matchday = excluded.matchday,
			division = excluded.division,
			title = excluded.title,
			home_team = excluded.home_team,
			home_goals = excluded.home_goals,
			away_team = excluded.away_team,
			away_goals = excluded.away_goals,
			team1_json = excluded.team1_json,
			team2_json = excluded.team2_json,
			recordings_json = excluded.recordings_json,
			refs_json = excluded.refs_json,
			warnings_json = excluded.warnings_json,
			updated_at = excluded.updated_at;
	`, g.ID, g.Matchday, int(g.Division), g.Title,
		g.Score.Home.Team, g.Score.Home.Goals, g.Score.Away.Team, g.Score.Away.Goals,
		blobs[0], blobs[1], blobs[2], blobs[3], blobs[4],
		g.CreatedAt.Unix(), g.UpdatedAt.Unix())
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to save game %q: %w", g.Title, err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	log.Debug("Saved game", "id", g.ID, "matchday", g.Matchday, "title", g.Title)
	return nil
}

func marshalBlobs(g *game.Game) ([5][]byte, error) {
	var out [5][]byte
	for i, v := range []any{g.Team1, g.Team2, g.Recordings, g.MessageRefs, g.Warnings} {
		b, err := json.Marshal(v)
		if err != nil {
			return out, err
		}
		out[i] = b
	}
	return out, nil
}

// GetGame finds the single game of a matchday involving every given team.
func (s *store) GetGame(matchday int, teams ...string) (*game.Game, error) {
	games, err := s.ListMatchday(matchday)
	if err != nil {
		return nil, err
	}
	var found []game.Game
	for _, g := range games {
		if involvesAll(g.Score, teams) {
			found = append(found, g)
		}
	}
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: matchday %d, %s", ErrGameNotFound, matchday, strings.Join(teams, ", "))
	case 1:
		return &found[0], nil
	default:
		return nil, fmt.Errorf("%w: matchday %d, %s", ErrAmbiguousGame, matchday, strings.Join(teams, ", "))
	}
}

func involvesAll(score game.Score, teams []string) bool {
	for _, t := range teams {
		if !score.Involves(strings.ToLower(strings.TrimSpace(t))) {
			return false
		}
	}
	return true
}

// ListGames returns every stored game ordered by matchday and title. Rows
// that can not be decoded are logged and skipped.
func (s *store) ListGames() ([]game.Game, error) {
	return s.queryGames("SELECT " + gameColumns + " FROM games ORDER BY matchday, title")
}

func (s *store) ListMatchday(matchday int) ([]game.Game, error) {
	return s.queryGames("SELECT "+gameColumns+" FROM games WHERE matchday = ? ORDER BY title", matchday)
}

func (s *store) GamesWithWarnings() ([]game.Game, error) {
	games, err := s.ListGames()
	if err != nil {
		return nil, err
	}
	var out []game.Game
	for _, g := range games {
		if len(g.Warnings) > 0 {
			out = append(out, g)
		}
	}
	return out, nil
}

// DeleteGame removes the single game of the matchday involving team.
func (s *store) DeleteGame(matchday int, team string) error {
	g, err := s.GetGame(matchday, team)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.Exec("DELETE FROM games WHERE id = ?", g.ID); err != nil {
		return fmt.Errorf("failed to delete game %q: %w", g.Title, err)
	}
	log.Info("Deleted game", "matchday", matchday, "title", g.Title)
	return nil
}

func (s *store) queryGames(query string, args ...any) ([]game.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var games []game.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			log.Error("Failed to scan game row", "error", err)
			continue
		}
		games = append(games, *g)
	}
	return games, rows.Err()
}

func scanGame(sc scanner) (*game.Game, error) {
	var g game.Game
	var div int
	var team1, team2 string
	var recordings, refs, warnings sql.NullString
	var created, updated int64
	err := sc.Scan(&g.ID, &g.Matchday, &div, &g.Title,
		&g.Score.Home.Team, &g.Score.Home.Goals, &g.Score.Away.Team, &g.Score.Away.Goals,
		&team1, &team2, &recordings, &refs, &warnings, &created, &updated)
	if err != nil {
		return nil, err
	}
	g.Division = game.Division(div)
	g.CreatedAt = time.Unix(created, 0).UTC()
	g.UpdatedAt = time.Unix(updated, 0).UTC()

	if err := json.Unmarshal([]byte(team1), &g.Team1); err != nil {
		return nil, fmt.Errorf("game %s: team1: %w", g.ID, err)
	}
	if err := json.Unmarshal([]byte(team2), &g.Team2); err != nil {
		return nil, fmt.Errorf("game %s: team2: %w", g.ID, err)
	}
	for _, col := range []struct {
		raw  sql.NullString
		dest any
	}{{recordings, &g.Recordings}, {refs, &g.MessageRefs}, {warnings, &g.Warnings}} {
		if !col.raw.Valid || col.raw.String == "" {
			continue
		}
		if err := json.Unmarshal([]byte(col.raw.String), col.dest); err != nil {
			return nil, fmt.Errorf("game %s: %w", g.ID, err)
		}
	}
	return &g, nil
}
