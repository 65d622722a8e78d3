package export_test

import (
	"bytes"
	"testing"

	"github.com/mauv0809/league-reporter/internal/export"
	"github.com/mauv0809/league-reporter/internal/game"
	"github.com/mauv0809/league-reporter/internal/standings"
	"github.com/mauv0809/league-reporter/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWrite(t *testing.T) {
	tables := map[game.Division][]standings.Row{
		2: {{Team: "omega", Division: 2}},
		1: {
			{Team: "alpha", Division: 1, GamesPlayed: 1, Wins: 1, GoalsFor: 4, GoalsAgainst: 2},
			{Team: "beta", Division: 1, GamesPlayed: 1, Losses: 1, GoalsFor: 2, GoalsAgainst: 4, Malus: 1},
		},
	}
	players := map[string]*stats.PlayerTotals{
		"anddy":  {Name: "anddy", Division: 1, Time: 840, Goals: 2, Assists: 1},
		"raiden": {Name: "raiden", Division: 1, Time: 840, Goals: 3},
	}

	var buf bytes.Buffer
	require.NoError(t, export.Write(&buf, tables, players))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"div1 standings", "div2 standings", "players"}, f.GetSheetList())

	rows, err := f.GetRows(export.StandingsSheet(1))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"#", "Team", "GP", "W", "D", "L", "GF", "GA", "GD", "Malus", "Pts"}, rows[0])
	assert.Equal(t, []string{"1", "alpha", "1", "1", "0", "0", "4", "2", "2", "0", "3"}, rows[1])
	assert.Equal(t, []string{"2", "beta", "1", "0", "0", "1", "2", "4", "-2", "1", "-1"}, rows[2])

	rows, err = f.GetRows(export.PlayersSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "raiden", rows[1][0], "players are ranked by goals")
	assert.Equal(t, []string{"anddy", "div1", "14", "2", "1", "0", "0", "0"}, rows[2])
}

func TestWrite_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.Write(&buf, nil, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"players"}, f.GetSheetList())
}
