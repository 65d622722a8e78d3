// Package legacy reads game records written by the previous generation of
// the league bot: one JSON file per game, stored as results/<matchday>/<title>.json.
package legacy

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/league-reporter/internal/game"
)

var ErrUnknownScore = errors.New("game has no usable score")

var titlePattern = regexp.MustCompile(`^(.+?) (\d+) - (\d+) (.+)$`)

// sheet is a team block as the old bot wrote it, with "own goals" spelled
// with a space.
type sheet struct {
	TimePlayed  map[string]int `json:"time_played"`
	Scorers     map[string]int `json:"scorers"`
	Assisters   map[string]int `json:"assisters"`
	CleanSheets map[string]int `json:"cs"`
	Saves       map[string]int `json:"saves"`
	OwnGoals    map[string]int `json:"own goals"`
}

func (s sheet) teamSheet() game.TeamSheet {
	t := game.TeamSheet{
		TimePlayed:  s.TimePlayed,
		Scorers:     s.Scorers,
		Assisters:   s.Assisters,
		CleanSheets: s.CleanSheets,
		Saves:       s.Saves,
		OwnGoals:    s.OwnGoals,
	}
	for _, stat := range game.Stats {
		t.Column(stat)
	}
	return t
}

type record struct {
	Matchday     int      `json:"matchday"`
	Division     int      `json:"div"`
	Title        string   `json:"title"`
	Team1        sheet    `json:"team1"`
	Team2        sheet    `json:"team2"`
	Recordings   []string `json:"recs"`
	DiscordInfos []struct {
		ChannelID json.Number `json:"channel_id"`
		MessageID json.Number `json:"message_id"`
	} `json:"discord_infos"`
	Warnings []string `json:"warnings"`
}

// Decode converts one legacy record. The score side order is taken from the
// title, since the stored score object does not keep it reliably.
func Decode(data []byte) (*game.Game, error) {
	var rec record
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("invalid legacy record: %w", err)
	}

	m := titlePattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(rec.Title)))
	if m == nil || rec.Division == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScore, rec.Title)
	}
	hg, _ := strconv.Atoi(m[2])
	ag, _ := strconv.Atoi(m[3])

	g := &game.Game{
		Matchday:   rec.Matchday,
		Division:   game.Division(rec.Division),
		Score:      game.Score{Home: game.Side{Team: m[1], Goals: hg}, Away: game.Side{Team: m[4], Goals: ag}},
		Team1:      rec.Team1.teamSheet(),
		Team2:      rec.Team2.teamSheet(),
		Recordings: rec.Recordings,
		Warnings:   rec.Warnings,
	}
	g.Title = g.Score.Title()
	for _, info := range rec.DiscordInfos {
		g.MessageRefs = append(g.MessageRefs, game.MessageRef{ChannelID: info.ChannelID.String(), MessageID: info.MessageID.String()})
	}
	return g, nil
}

// ReadDir decodes every .json record below root. Records that can not be
// decoded are logged and skipped.
func ReadDir(fsys fs.FS, root string) ([]*game.Game, error) {
	var games []*game.Game
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".json" {
			return nil
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		g, err := Decode(data)
		if err != nil {
			log.Warn("Skipping legacy record", "file", p, "error", err)
			return nil
		}
		games = append(games, g)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(games, func(i, j int) bool {
		if games[i].Matchday != games[j].Matchday {
			return games[i].Matchday < games[j].Matchday
		}
		return games[i].Title < games[j].Title
	})
	return games, nil
}
