package game

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownStat    = errors.New("unknown stat")
	ErrNegativeStat   = errors.New("stat can not be negative")
	ErrTeamNotInGame  = errors.New("team is not part of this game")
	ErrPlayerNotFound = errors.New("player is not in the game")
)

// editableStats are the names admins may use when correcting a game.
// Time is derived from the score-card and is not editable.
var editableStats = map[string]Stat{
	"goals":     StatGoals,
	"goal":      StatGoals,
	"assists":   StatAssists,
	"assist":    StatAssists,
	"saves":     StatSaves,
	"save":      StatSaves,
	"cs":        StatCleanSheets,
	"own goals": StatOwnGoals,
	"own goal":  StatOwnGoals,
	"og":        StatOwnGoals,
}

// ParseStatName resolves an admin-facing stat name.
func ParseStatName(name string) (Stat, error) {
	s, ok := editableStats[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("%w %q, must be one of goals, assists, saves, cs, own goals", ErrUnknownStat, name)
	}
	return s, nil
}

// SetScore rewrites the score and title. Both teams must already be part of the game.
func (g *Game) SetScore(team1, team2 string, goals1, goals2 int) error {
	team1, team2 = strings.ToLower(team1), strings.ToLower(team2)
	for _, t := range []string{team1, team2} {
		if !g.Score.Involves(t) {
			return fmt.Errorf("%w: %s is not a valid team for the match %s", ErrTeamNotInGame, t, g.Title)
		}
	}
	if team1 == team2 {
		return fmt.Errorf("%w: both sides are %s", ErrTeamNotInGame, team1)
	}
	g.Score = Score{Home: Side{Team: team1, Goals: goals1}, Away: Side{Team: team2, Goals: goals2}}
	g.Title = g.Score.Title()
	return nil
}

// SetStat overwrites one player's value for a stat. A player missing from
// both rosters is added to team1 and a warning is recorded.
func (g *Game) SetStat(player string, value int, stat Stat) error {
	if value < 0 {
		return fmt.Errorf("%w: %s given %d for %s", ErrNegativeStat, player, value, stat)
	}
	player = strings.ToLower(player)
	sheet := g.RosterOf(player)
	if sheet == nil {
		g.Warn("%s %d %s was added to the game in team 1 whereas %s was not in at first.", player, value, stat, player)
		sheet = &g.Team1
	}
	sheet.Column(stat)[player] = value
	return nil
}

// MergePlayer folds an alias into the canonical player name on the alias's
// team, summing every stat, and removes the alias.
func (g *Game) MergePlayer(alias, canonical string) error {
	alias, canonical = strings.ToLower(alias), strings.ToLower(canonical)
	sheet := g.RosterOf(alias)
	if sheet == nil {
		return fmt.Errorf("%w: %s", ErrPlayerNotFound, alias)
	}
	if alias == canonical {
		return nil
	}
	for _, s := range Stats {
		col := sheet.Column(s)
		if v, ok := col[alias]; ok {
			col[canonical] += v
			delete(col, alias)
		}
	}
	return nil
}

// SetRecordings replaces the recording links.
func (g *Game) SetRecordings(links []string) {
	g.Recordings = append([]string(nil), links...)
	if len(links) == 0 {
		g.Warn("Missing recs when the game was edited")
	}
}
