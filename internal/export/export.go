// Package export renders the league tables as an XLSX workbook.
package export

import (
	"fmt"
	"io"
	"sort"

	"github.com/mauv0809/league-reporter/internal/game"
	"github.com/mauv0809/league-reporter/internal/standings"
	"github.com/mauv0809/league-reporter/internal/stats"
	"github.com/xuri/excelize/v2"
)

// PlayersSheet is the name of the sheet holding player totals.
const PlayersSheet = "players"

var (
	standingsHeader = []any{"#", "Team", "GP", "W", "D", "L", "GF", "GA", "GD", "Malus", "Pts"}
	playersHeader   = []any{"Player", "Division", "Minutes", "Goals", "Assists", "Saves", "CS", "OG"}
)

// StandingsSheet names the sheet of a division's table.
func StandingsSheet(div game.Division) string {
	return div.String() + " standings"
}

// Write renders one sheet per division table followed by a sheet of player
// totals ranked by goals, and writes the workbook to w.
func Write(w io.Writer, tables map[game.Division][]standings.Row, players map[string]*stats.PlayerTotals) error {
	f := excelize.NewFile()
	defer f.Close()

	divs := make([]game.Division, 0, len(tables))
	for d := range tables {
		divs = append(divs, d)
	}
	sort.Slice(divs, func(i, j int) bool { return divs[i] < divs[j] })

	for _, d := range divs {
		rows := make([][]any, 0, len(tables[d])+1)
		rows = append(rows, standingsHeader)
		for i, r := range tables[d] {
			rows = append(rows, []any{i + 1, r.Team, r.GamesPlayed, r.Wins, r.Draws, r.Losses, r.GoalsFor, r.GoalsAgainst, r.GoalsDiff(), r.Malus, r.Points()})
		}
		if err := writeSheet(f, StandingsSheet(d), rows); err != nil {
			return err
		}
	}

	entries, err := stats.SortBy(players, "goals", nil)
	if err != nil {
		return err
	}
	rows := make([][]any, 0, len(entries)+1)
	rows = append(rows, playersHeader)
	for _, e := range entries {
		p := players[e.Player]
		rows = append(rows, []any{p.Name, p.Division.String(), p.Time / 60, p.Goals, p.Assists, p.Saves, p.CleanSheets, p.OwnGoals})
	}
	if err := writeSheet(f, PlayersSheet, rows); err != nil {
		return err
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, name string, rows [][]any) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", name, err)
	}
	for idx, row := range rows {
		axis, err := excelize.CoordinatesToCellName(1, idx+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, axis, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %q: %w", idx+1, name, err)
		}
	}
	return nil
}
