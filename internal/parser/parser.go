// Package parser turns a half's raw score-card text into per-team stat sheets.
//
// A score-card lists one player per line, quoted and bolded by the match bot:
//
//	> **anddy:** 7m 2g 1a
//	> **[og] raiden:** 1g
//	SEPARATOR
//	> **bla:** 6m30sec 12s 1cs
//
// Lines before SEPARATOR belong to the team listed first in that half.
package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mauv0809/league-reporter/internal/game"
)

const (
	// Separator is the line splitting the two rosters of a half.
	Separator = "SEPARATOR"
	// MinPlayers is the smallest distinct roster accepted as a real match.
	MinPlayers = 8
	// MaxSeconds caps a single half's time for one player.
	MaxSeconds = 420

	ownGoalMarker = "[og]"
	lineMarker    = ">"
	nameDelimiter = ":**"
)

var (
	ErrEmpty         = errors.New("report is empty")
	ErrNoSeparator   = errors.New("report has no " + Separator + " line")
	ErrTooFewPlayers = errors.New("not enough players for a valid report")
)

// ParseError describes why a half could not be used.
type ParseError struct {
	Reason error
	Detail string
}

func (e *ParseError) Error() string {
	if e.Detail == "" {
		return e.Reason.Error()
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
}

func (e *ParseError) Unwrap() error {
	return e.Reason
}

var (
	countToken = regexp.MustCompile(`^(\d+)([a-z]+)$`)
	timeToken  = regexp.MustCompile(`^(?:(\d+)m)?(?:(\d+)sec)?$`)
)

type playerLine struct {
	name    string
	tokens  []string
	ownGoal bool
}

// ParseHalf parses one half. switchedSides is false for the first half and
// true for the second, where the roster listed first is team2's.
func ParseHalf(text string, switchedSides bool) (*game.Half, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &ParseError{Reason: ErrEmpty}
	}

	var lines []playerLine
	separator := -1
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case line == Separator:
			if separator < 0 {
				separator = len(lines)
			}
		case strings.HasPrefix(line, lineMarker):
			if pl, ok := splitPlayerLine(line); ok {
				lines = append(lines, pl)
			}
		}
	}
	if separator < 0 {
		return nil, &ParseError{Reason: ErrNoSeparator}
	}

	// Own-goal lines are listed under the team that benefited, so they do
	// not decide which team the player belongs to.
	team1 := map[string]bool{}
	for i, pl := range lines {
		if pl.ownGoal {
			continue
		}
		if (i < separator) != switchedSides {
			team1[pl.name] = true
		}
	}

	var order []string
	type tokenSet struct {
		tokens  []string
		ownGoal []bool
	}
	byPlayer := map[string]*tokenSet{}
	for _, pl := range lines {
		ts, ok := byPlayer[pl.name]
		if !ok {
			ts = &tokenSet{}
			byPlayer[pl.name] = ts
			order = append(order, pl.name)
		}
		for _, tok := range pl.tokens {
			ts.tokens = append(ts.tokens, tok)
			ts.ownGoal = append(ts.ownGoal, pl.ownGoal)
		}
	}

	if len(order) < MinPlayers {
		return nil, &ParseError{Reason: ErrTooFewPlayers, Detail: fmt.Sprintf("found %d", len(order))}
	}

	half := &game.Half{Team1: game.NewTeamSheet(), Team2: game.NewTeamSheet()}
	for _, name := range order {
		sheet := &half.Team2
		if team1[name] {
			sheet = &half.Team1
		}
		ts := byPlayer[name]
		for i, tok := range ts.tokens {
			stat, value, ok := parseToken(tok, ts.ownGoal[i])
			if !ok {
				continue
			}
			sheet.Column(stat)[name] = value
		}
	}
	return half, nil
}

// splitPlayerLine extracts the player name and stat tokens from a marker line.
func splitPlayerLine(line string) (playerLine, bool) {
	rest := strings.TrimSpace(strings.TrimPrefix(line, lineMarker))
	rest = strings.TrimPrefix(rest, "**")
	idx := strings.Index(rest, nameDelimiter)
	if idx < 0 {
		return playerLine{}, false
	}
	pl := playerLine{
		name: strings.ToLower(strings.TrimSpace(rest[:idx])),
	}
	stats := strings.ToLower(strings.TrimSpace(rest[idx+len(nameDelimiter):]))

	if strings.HasPrefix(pl.name, ownGoalMarker) {
		pl.ownGoal = true
		pl.name = strings.TrimSpace(strings.TrimPrefix(pl.name, ownGoalMarker))
	}
	if strings.HasPrefix(stats, ownGoalMarker) {
		pl.ownGoal = true
		stats = strings.TrimSpace(strings.TrimPrefix(stats, ownGoalMarker))
	}
	if pl.name == "" {
		return playerLine{}, false
	}
	pl.tokens = strings.Fields(stats)
	return pl, true
}

// parseToken converts one token into a stat and its value. Tokens that do not
// fit the score-card grammar are reported as not ok and dropped by the caller.
func parseToken(tok string, ownGoal bool) (game.Stat, int, bool) {
	if isTime(tok) {
		secs, ok := Seconds(tok)
		if !ok {
			return "", 0, false
		}
		return game.StatTime, secs, true
	}

	m := countToken.FindStringSubmatch(tok)
	if m == nil {
		return "", 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return "", 0, false
	}
	code := m[2]
	if ownGoal && code == "g" {
		code = "og"
	}
	stat, ok := game.StatCodes[code]
	if !ok || stat == game.StatTime {
		return "", 0, false
	}
	return stat, n, true
}

func isTime(tok string) bool {
	return strings.Contains(tok, "m") || strings.Contains(tok, "sec")
}

// Seconds converts a time token such as "7m", "3m30sec" or "45sec" into
// seconds, capped at MaxSeconds.
func Seconds(tok string) (int, bool) {
	m := timeToken.FindStringSubmatch(tok)
	if m == nil || (m[1] == "" && m[2] == "") {
		return 0, false
	}
	total := 0
	if m[1] != "" {
		mins, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, false
		}
		total += mins * 60
	}
	if m[2] != "" {
		secs, err := strconv.Atoi(m[2])
		if err != nil {
			return 0, false
		}
		total += secs
	}
	return min(total, MaxSeconds), true
}
