// Package stats folds the game corpus into per-player totals and ranks them.
package stats

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mauv0809/league-reporter/internal/game"
)

var ErrUnknownKey = errors.New("unknown leaderboard key")

// Keys maps leaderboard keys to the stat they rank.
var Keys = map[string]game.Stat{
	"time":    game.StatTime,
	"goals":   game.StatGoals,
	"assists": game.StatAssists,
	"saves":   game.StatSaves,
	"cs":      game.StatCleanSheets,
	"og":      game.StatOwnGoals,
}

// PlayerTotals is one player's sum over every game with team data.
type PlayerTotals struct {
	Name        string        `json:"name"`
	Division    game.Division `json:"div"`
	Time        int           `json:"time_played"`
	Goals       int           `json:"scorers"`
	Assists     int           `json:"assisters"`
	Saves       int           `json:"saves"`
	CleanSheets int           `json:"cs"`
	OwnGoals    int           `json:"own_goals"`
}

// Value returns the total for one stat.
func (p *PlayerTotals) Value(s game.Stat) int {
	switch s {
	case game.StatTime:
		return p.Time
	case game.StatGoals:
		return p.Goals
	case game.StatAssists:
		return p.Assists
	case game.StatSaves:
		return p.Saves
	case game.StatCleanSheets:
		return p.CleanSheets
	case game.StatOwnGoals:
		return p.OwnGoals
	}
	return 0
}

func (p *PlayerTotals) add(s game.Stat, n int) {
	switch s {
	case game.StatTime:
		p.Time += n
	case game.StatGoals:
		p.Goals += n
	case game.StatAssists:
		p.Assists += n
	case game.StatSaves:
		p.Saves += n
	case game.StatCleanSheets:
		p.CleanSheets += n
	case game.StatOwnGoals:
		p.OwnGoals += n
	}
}

// Aggregate sums every game having data for both teams. A player's division
// is the division of the first game they appear in, ordered by matchday and
// then title, so the result does not depend on the order of games.
func Aggregate(games []game.Game) map[string]*PlayerTotals {
	ordered := make([]game.Game, len(games))
	copy(ordered, games)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Matchday != ordered[j].Matchday {
			return ordered[i].Matchday < ordered[j].Matchday
		}
		return ordered[i].Title < ordered[j].Title
	})

	totals := map[string]*PlayerTotals{}
	for i := range ordered {
		g := &ordered[i]
		if !g.HasTeamData() {
			continue
		}
		for _, sheet := range []*game.TeamSheet{&g.Team1, &g.Team2} {
			for _, s := range game.Stats {
				for name, n := range sheet.Column(s) {
					p, ok := totals[name]
					if !ok {
						p = &PlayerTotals{Name: name, Division: g.Division}
						totals[name] = p
					}
					p.add(s, n)
				}
			}
		}
	}
	return totals
}

// Entry is one leaderboard line.
type Entry struct {
	Player string  `json:"player"`
	Value  int     `json:"value"`
	Time   int     `json:"time_played"`
	Ratio  float64 `json:"ratio,omitempty"`
}

// Minutes is the whole number of minutes played.
func (e Entry) Minutes() int {
	return e.Time / 60
}

// SortBy ranks players by the stat behind key, highest first. With a
// division only that division's players with a positive value appear. Ties
// keep name order.
func SortBy(players map[string]*PlayerTotals, key string, division *game.Division) ([]Entry, error) {
	stat, ok := Keys[strings.ToLower(key)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	names := make([]string, 0, len(players))
	for name := range players {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		p := players[name]
		value := p.Value(stat)
		if division != nil && (p.Division != *division || value <= 0) {
			continue
		}
		entries = append(entries, Entry{Player: name, Value: value, Time: p.Time})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Value > entries[j].Value
	})
	return entries, nil
}

// SortByRatio re-ranks entries by value per whole minute played, keeping
// only players with at least minMinutes. Players with under a minute are
// ranked by their raw value.
func SortByRatio(entries []Entry, minMinutes int) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Minutes() < minMinutes {
			continue
		}
		e.Ratio = float64(e.Value)
		if m := e.Minutes(); m != 0 {
			e.Ratio = float64(e.Value) / float64(m)
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Ratio > out[j].Ratio
	})
	return out
}
