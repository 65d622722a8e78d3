// Package standings folds game scores into per-division league tables.
package standings

import (
	"sort"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/league-reporter/internal/game"
)

// Row is one team's line in a division table.
type Row struct {
	Team         string        `json:"team"`
	Division     game.Division `json:"div"`
	GamesPlayed  int           `json:"games_played"`
	Wins         int           `json:"wins"`
	Draws        int           `json:"draws"`
	Losses       int           `json:"losses"`
	GoalsFor     int           `json:"goals_for"`
	GoalsAgainst int           `json:"goals_against"`
	Malus        int           `json:"malus"`
}

// Points is three per win and one per draw, less the malus.
func (r Row) Points() int {
	return 3*r.Wins + r.Draws - r.Malus
}

func (r Row) GoalsDiff() int {
	return r.GoalsFor - r.GoalsAgainst
}

func (r *Row) record(scored, conceded int) {
	r.GamesPlayed++
	r.GoalsFor += scored
	r.GoalsAgainst += conceded
	switch {
	case scored > conceded:
		r.Wins++
	case scored < conceded:
		r.Losses++
	default:
		r.Draws++
	}
}

// Compute builds the table of one division: a row for every registered team,
// folded over the division's games. Games naming a team outside the registry
// are skipped. The result is sorted.
func Compute(division game.Division, teams []string, malus map[string]int, games []game.Game) []Row {
	rows := make(map[string]*Row, len(teams))
	for _, team := range teams {
		rows[team] = &Row{Team: team, Division: division, Malus: malus[team]}
	}

	for _, g := range games {
		if g.Division != division {
			continue
		}
		home, okHome := rows[g.Score.Home.Team]
		away, okAway := rows[g.Score.Away.Team]
		if !okHome || !okAway {
			log.Warn("Skipping game with unregistered team", "division", division, "matchday", g.Matchday, "title", g.Title)
			continue
		}
		home.record(g.Score.Home.Goals, g.Score.Away.Goals)
		away.record(g.Score.Away.Goals, g.Score.Home.Goals)
	}

	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		out = append(out, *r)
	}
	Sort(out)
	return out
}

// Sort orders rows by points, goal difference, goals for, goals against,
// wins and name, all descending.
func Sort(rows []Row) {
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Points() != b.Points() {
			return a.Points() > b.Points()
		}
		if a.GoalsDiff() != b.GoalsDiff() {
			return a.GoalsDiff() > b.GoalsDiff()
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		if a.GoalsAgainst != b.GoalsAgainst {
			return a.GoalsAgainst > b.GoalsAgainst
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		return a.Team > b.Team
	})
}
