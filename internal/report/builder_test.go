package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/mauv0809/league-reporter/internal/game"
	"github.com/mauv0809/league-reporter/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var registry = Registry{
	"alpha":    1,
	"beta":     1,
	"fc alpha": 2,
	"gamma":    2,
}

func sideLines(prefix string, n int, extra map[int]string) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("> **%s%d:** 7m %s", prefix, i, extra[i])
	}
	return lines
}

func halfCard(first, second []string) string {
	return strings.Join(first, "\n") + "\n" + parser.Separator + "\n" + strings.Join(second, "\n")
}

// halves keyed by message id; the second half lists beta first.
func fakeSource(halves map[string]string) HalfSource {
	return func(_ context.Context, ref game.MessageRef) (string, error) {
		text, ok := halves[ref.MessageID]
		if !ok {
			return "", errors.New("message not found")
		}
		return text, nil
	}
}

func validHalves() map[string]string {
	return map[string]string{
		"p1712345678123456": halfCard(
			sideLines("a", 5, map[int]string{0: "2g 1a"}),
			sideLines("b", 5, map[int]string{1: "1g 3s"}),
		),
		"333": halfCard(
			sideLines("b", 5, map[int]string{1: "1g"}),
			sideLines("a", 5, map[int]string{0: "1g"}),
		),
	}
}

const validReport = `Matchday 3
**Alpha 4 - 2 Beta**
https://league.slack.com/archives/C0123ABC/p1712345678123456
<https://discord.com/channels/111/222/333>
rec: https://www.thehax.pl/r/abc123`

func TestBuild_EndToEnd(t *testing.T) {
	b := NewBuilder(registry, "")
	g := b.Build(context.Background(), validReport, fakeSource(validHalves()))

	require.False(t, g.Rejected(), "errors: %v", g.Errors)
	assert.Empty(t, g.Warnings)
	assert.Equal(t, 3, g.Matchday)
	assert.Equal(t, game.Division(1), g.Division)
	assert.Equal(t, "alpha 4 - 2 beta", g.Title)
	assert.Equal(t, []string{"https://www.thehax.pl/r/abc123"}, g.Recordings)
	assert.Equal(t, []game.MessageRef{
		{ChannelID: "C0123ABC", MessageID: "p1712345678123456"},
		{ChannelID: "222", MessageID: "333"},
	}, g.MessageRefs)

	assert.Equal(t, 840, g.Team1.TimePlayed["a0"])
	assert.Equal(t, 3, g.Team1.Scorers["a0"])
	assert.Equal(t, 1, g.Team1.Assisters["a0"])
	assert.Equal(t, 2, g.Team2.Scorers["b1"])
	assert.Equal(t, 3, g.Team2.Saves["b1"])
	assert.False(t, g.Team1.Has("b0"))
}

func TestBuild_Disposition(t *testing.T) {
	tests := []struct {
		name         string
		report       string
		wantErr      string
		wantWarnings []string
	}{
		{
			name:    "missing matchday",
			report:  strings.Replace(validReport, "Matchday 3", "md three", 1),
			wantErr: "matchday is missing or incorrect",
		},
		{
			name:    "unregistered team",
			report:  strings.Replace(validReport, "Beta", "Delta", 1),
			wantErr: "can not find 2 registered teams",
		},
		{
			name:    "goals without separator",
			report:  strings.Replace(validReport, "**Alpha 4 - 2 Beta**", "alpha 12 beta", 1),
			wantErr: "can not find 2 registered teams",
		},
		{
			name:    "teams from two divisions",
			report:  strings.Replace(validReport, "Beta", "Gamma", 1),
			wantErr: "alpha (div1) and gamma (div2) do not play in the same division",
		},
		{
			name:         "no recording",
			report:       strings.Replace(validReport, "rec: https://www.thehax.pl/r/abc123", "", 1),
			wantWarnings: []string{"could not find the recording, is it hosted on thehax?"},
		},
		{
			name:         "one half link",
			report:       strings.Replace(validReport, "<https://discord.com/channels/111/222/333>", "", 1),
			wantWarnings: []string{"missing 1 half report link(s)"},
		},
		{
			name:    "unreadable half",
			report:  strings.Replace(validReport, "/333>", "/404>", 1),
			wantErr: "half 2: could not read the report message",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewBuilder(registry, "").Build(context.Background(), tt.report, fakeSource(validHalves()))
			if tt.wantErr != "" {
				require.True(t, g.Rejected())
				assert.Contains(t, strings.Join(g.Errors, "\n"), tt.wantErr)
				return
			}
			require.False(t, g.Rejected(), "errors: %v", g.Errors)
			assert.Equal(t, tt.wantWarnings, g.Warnings)
		})
	}
}

func TestBuild_InvalidHalfIsAnError(t *testing.T) {
	halves := validHalves()
	halves["333"] = halfCard(sideLines("b", 3, nil), sideLines("a", 3, nil))

	g := NewBuilder(registry, "").Build(context.Background(), validReport, fakeSource(halves))
	require.True(t, g.Rejected())
	assert.Contains(t, g.Errors[0], "half 2")
}

func TestScore_LongestTeamNameWins(t *testing.T) {
	b := NewBuilder(registry, "")
	score, ok := b.score([]string{"fc alpha 1:0 gamma"})
	require.True(t, ok)
	assert.Equal(t, game.Side{Team: "fc alpha", Goals: 1}, score.Home)
	assert.Equal(t, game.Side{Team: "gamma", Goals: 0}, score.Away)

	_, ok = b.score([]string{"alpha 1 - 0 alpha"})
	assert.False(t, ok, "a team can not play itself")
}

func TestScore_LineShapes(t *testing.T) {
	b := NewBuilder(registry, "")
	tests := []struct {
		line string
		want game.Score
		ok   bool
	}{
		{line: "alpha 4 - 2 beta", want: game.Score{Home: game.Side{Team: "alpha", Goals: 4}, Away: game.Side{Team: "beta", Goals: 2}}, ok: true},
		{line: "alpha 4-2 beta", want: game.Score{Home: game.Side{Team: "alpha", Goals: 4}, Away: game.Side{Team: "beta", Goals: 2}}, ok: true},
		{line: "alpha 4 2 beta", want: game.Score{Home: game.Side{Team: "alpha", Goals: 4}, Away: game.Side{Team: "beta", Goals: 2}}, ok: true},
		{line: "final score: alpha 4 - 2 beta", want: game.Score{Home: game.Side{Team: "alpha", Goals: 4}, Away: game.Side{Team: "beta", Goals: 2}}, ok: true},
		{line: "alpha 12 beta"},
		{line: "alpha 12-beta"},
		{line: "betalpha 1 - 0 beta"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			score, ok := b.score([]string{tt.line})
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, score)
		})
	}
}

func TestMatchday(t *testing.T) {
	tests := []struct {
		lines []string
		want  int
		ok    bool
	}{
		{lines: []string{"alpha 1-0 beta", "matchday 12"}, want: 12, ok: true},
		{lines: []string{"matchday 4 (replay of 2)"}, want: 4, ok: true},
		{lines: []string{"matchday"}, ok: false},
		{lines: []string{"md 4"}, ok: false},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.lines, "|"), func(t *testing.T) {
			got, ok := Matchday(tt.lines)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCleanLink(t *testing.T) {
	assert.Equal(t, "https://thehax.pl/r/1", CleanLink("recording: https://thehax.pl/r/1"))
	assert.Equal(t, "https://thehax.pl/r/1", CleanLink("<https://thehax.pl/r/1> second half"))
	assert.Equal(t, "https://thehax.pl/r/2", CleanLink("thehax.pl/r/2"))
}

func TestMergeHalves_Commutative(t *testing.T) {
	a := &game.Half{Team1: game.NewTeamSheet(), Team2: game.NewTeamSheet()}
	a.Team1.TimePlayed["x"] = 420
	a.Team1.Scorers["x"] = 1
	a.Team2.Saves["y"] = 4

	b := &game.Half{Team1: game.NewTeamSheet(), Team2: game.NewTeamSheet()}
	b.Team1.TimePlayed["x"] = 200
	b.Team1.TimePlayed["z"] = 100
	b.Team2.Saves["y"] = 1

	ab := MergeHalves(a, b)
	ba := MergeHalves(b, a)
	assert.Equal(t, ab, ba)
	assert.Equal(t, 620, ab.Team1.TimePlayed["x"])
	assert.Equal(t, 100, ab.Team1.TimePlayed["z"])
	assert.Equal(t, 1, ab.Team1.Scorers["x"])
	assert.Equal(t, 5, ab.Team2.Saves["y"])
}
