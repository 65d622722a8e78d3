package game

import (
	"fmt"
	"sort"
	"time"
)

// Division identifies the league grouping a team plays in.
type Division int

func (d Division) String() string {
	return fmt.Sprintf("div%d", int(d))
}

// Stat is one of the per-player categories tracked on a score-card.
type Stat string

const (
	StatTime        Stat = "time_played"
	StatGoals       Stat = "scorers"
	StatAssists     Stat = "assisters"
	StatCleanSheets Stat = "cs"
	StatSaves       Stat = "saves"
	StatOwnGoals    Stat = "own_goals"
)

// Stats lists every category in display order.
var Stats = []Stat{StatTime, StatGoals, StatAssists, StatCleanSheets, StatSaves, StatOwnGoals}

// StatCodes maps the unit letters used on score-cards to their category.
var StatCodes = map[string]Stat{
	"m":  StatTime,
	"g":  StatGoals,
	"cs": StatCleanSheets,
	"s":  StatSaves,
	"a":  StatAssists,
	"og": StatOwnGoals,
}

// Code returns the score-card unit letter for the stat.
func (s Stat) Code() string {
	for code, stat := range StatCodes {
		if stat == s {
			return code
		}
	}
	return ""
}

// TeamSheet holds one team's stats, keyed by lower-cased player name.
type TeamSheet struct {
	TimePlayed  map[string]int `json:"time_played" msgpack:"time_played"`
	Scorers     map[string]int `json:"scorers" msgpack:"scorers"`
	Assisters   map[string]int `json:"assisters" msgpack:"assisters"`
	CleanSheets map[string]int `json:"cs" msgpack:"cs"`
	Saves       map[string]int `json:"saves" msgpack:"saves"`
	OwnGoals    map[string]int `json:"own_goals" msgpack:"own_goals"`
}

// NewTeamSheet returns a sheet with every column allocated.
func NewTeamSheet() TeamSheet {
	return TeamSheet{
		TimePlayed:  map[string]int{},
		Scorers:     map[string]int{},
		Assisters:   map[string]int{},
		CleanSheets: map[string]int{},
		Saves:       map[string]int{},
		OwnGoals:    map[string]int{},
	}
}

// Column returns the map backing the given stat, allocating it if needed.
func (t *TeamSheet) Column(s Stat) map[string]int {
	var col *map[string]int
	switch s {
	case StatTime:
		col = &t.TimePlayed
	case StatGoals:
		col = &t.Scorers
	case StatAssists:
		col = &t.Assisters
	case StatCleanSheets:
		col = &t.CleanSheets
	case StatSaves:
		col = &t.Saves
	case StatOwnGoals:
		col = &t.OwnGoals
	default:
		return nil
	}
	if *col == nil {
		*col = map[string]int{}
	}
	return *col
}

// Has reports whether the player has any entry on this sheet.
func (t *TeamSheet) Has(player string) bool {
	for _, s := range Stats {
		if _, ok := t.Column(s)[player]; ok {
			return true
		}
	}
	return false
}

// Empty reports whether no player has any entry.
func (t *TeamSheet) Empty() bool {
	return len(t.Players()) == 0
}

// Players returns every player named on the sheet, sorted.
func (t *TeamSheet) Players() []string {
	seen := map[string]struct{}{}
	for _, s := range Stats {
		for name := range t.Column(s) {
			seen[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Half is the parsed content of one half's score-card.
type Half struct {
	Team1 TeamSheet
	Team2 TeamSheet
}

// Side is one team's entry in a score.
type Side struct {
	Team  string `json:"team" msgpack:"team"`
	Goals int    `json:"goals" msgpack:"goals"`
}

// Score is the final result of a game, in the order the report listed it.
type Score struct {
	Home Side `json:"home" msgpack:"home"`
	Away Side `json:"away" msgpack:"away"`
}

// Title renders the score the way it is shown to players, e.g. "alpha 4 - 2 beta".
func (s Score) Title() string {
	return fmt.Sprintf("%s %d - %d %s", s.Home.Team, s.Home.Goals, s.Away.Goals, s.Away.Team)
}

// Involves reports whether team is one of the two sides.
func (s Score) Involves(team string) bool {
	return s.Home.Team == team || s.Away.Team == team
}

// MessageRef points at the chat message a half report was read from.
type MessageRef struct {
	ChannelID string `json:"channel_id" msgpack:"channel_id"`
	MessageID string `json:"message_id" msgpack:"message_id"`
}

// Game is the canonical record of one match.
type Game struct {
	ID          string       `json:"id" msgpack:"id"`
	Matchday    int          `json:"matchday" msgpack:"matchday"`
	Division    Division     `json:"div" msgpack:"div"`
	Title       string       `json:"title" msgpack:"title"`
	Score       Score        `json:"score" msgpack:"score"`
	Team1       TeamSheet    `json:"team1" msgpack:"team1"`
	Team2       TeamSheet    `json:"team2" msgpack:"team2"`
	Recordings  []string     `json:"recs" msgpack:"recs"`
	MessageRefs []MessageRef `json:"discord_infos" msgpack:"discord_infos"`
	Warnings    []string     `json:"warnings" msgpack:"warnings"`
	Errors      []string     `json:"errors,omitempty" msgpack:"-"`
	CreatedAt   time.Time    `json:"created_at" msgpack:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" msgpack:"updated_at"`
}

// Warn attaches a warning that is persisted with the game.
func (g *Game) Warn(format string, args ...any) {
	g.Warnings = append(g.Warnings, fmt.Sprintf(format, args...))
}

// Fail records a hard error; a game with errors is never persisted.
func (g *Game) Fail(format string, args ...any) {
	g.Errors = append(g.Errors, fmt.Sprintf(format, args...))
}

// Rejected reports whether the game carries hard errors.
func (g *Game) Rejected() bool {
	return len(g.Errors) > 0
}

// HasTeamData reports whether both team sheets carry stats.
func (g *Game) HasTeamData() bool {
	return !g.Team1.Empty() && !g.Team2.Empty()
}

// Sheet returns the sheet for team index 1 or 2.
func (g *Game) Sheet(i int) *TeamSheet {
	if i == 2 {
		return &g.Team2
	}
	return &g.Team1
}

// RosterOf returns the sheet the player is on, judged by time played, or nil.
func (g *Game) RosterOf(player string) *TeamSheet {
	if _, ok := g.Team1.Column(StatTime)[player]; ok {
		return &g.Team1
	}
	if _, ok := g.Team2.Column(StatTime)[player]; ok {
		return &g.Team2
	}
	return nil
}
