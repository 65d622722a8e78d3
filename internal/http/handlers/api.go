package handlers

import (
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/league-reporter/internal/export"
	"github.com/mauv0809/league-reporter/internal/game"
	"github.com/mauv0809/league-reporter/internal/metrics"
	"github.com/mauv0809/league-reporter/internal/processor"
	"github.com/mauv0809/league-reporter/internal/standings"
)

// ListGamesHandler returns every stored game, or one matchday's with ?matchday=N.
func ListGamesHandler(proc *processor.Processor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			games []game.Game
			err   error
		)
		if mdText := r.URL.Query().Get("matchday"); mdText != "" {
			md, perr := parseMatchday(mdText)
			if perr != nil {
				http.Error(w, perr.Error(), http.StatusBadRequest)
				return
			}
			games, err = proc.Matchday(md)
		} else {
			games, err = proc.Games()
		}
		if err != nil {
			http.Error(w, "Failed to get games", http.StatusInternalServerError)
			log.Error("Failed to get games from store", "error", err)
			return
		}
		respondJSON(w, games)
	}
}

// ListPlayersHandler returns the player totals, or a leaderboard with
// ?stat=goals[&div=1][&ratio=true][&min=14].
func ListPlayersHandler(proc *processor.Processor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		key := q.Get("stat")
		if key == "" {
			totals, err := proc.PlayerTotals()
			if err != nil {
				http.Error(w, "Failed to get players", http.StatusInternalServerError)
				log.Error("Failed to get player totals from store", "error", err)
				return
			}
			respondJSON(w, totals)
			return
		}

		var div *game.Division
		if d := q.Get("div"); d != "" {
			parsed, ok := parseDivision(d)
			if !ok {
				http.Error(w, "Invalid division", http.StatusBadRequest)
				return
			}
			div = &parsed
		}
		if q.Get("ratio") != "true" {
			entries, err := proc.Leaderboard(key, div)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			respondJSON(w, entries)
			return
		}
		minMinutes := -1
		if m := q.Get("min"); m != "" {
			parsed, err := strconv.Atoi(m)
			if err != nil || parsed < 0 {
				http.Error(w, "Invalid min", http.StatusBadRequest)
				return
			}
			minMinutes = parsed
		}
		entries, err := proc.RatioLeaderboard(key, div, minMinutes)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		respondJSON(w, entries)
	}
}

// StandingsHandler returns one division's table with ?div=N, otherwise every
// table keyed by division.
func StandingsHandler(proc *processor.Processor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d := r.URL.Query().Get("div"); d != "" {
			div, ok := parseDivision(d)
			if !ok {
				http.Error(w, "Invalid division", http.StatusBadRequest)
				return
			}
			rows, err := proc.Standings(div)
			if err != nil {
				http.Error(w, "Failed to get standings", http.StatusInternalServerError)
				log.Error("Failed to get standings from store", "error", err)
				return
			}
			respondJSON(w, rows)
			return
		}

		tables, err := allStandings(proc)
		if err != nil {
			http.Error(w, "Failed to get standings", http.StatusInternalServerError)
			log.Error("Failed to get standings from store", "error", err)
			return
		}
		out := make(map[string][]standings.Row, len(tables))
		for d, rows := range tables {
			out[d.String()] = rows
		}
		respondJSON(w, out)
	}
}

// ExportHandler serves the league tables as an XLSX workbook.
func ExportHandler(proc *processor.Processor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tables, err := allStandings(proc)
		if err != nil {
			http.Error(w, "Failed to get standings", http.StatusInternalServerError)
			log.Error("Failed to get standings from store", "error", err)
			return
		}
		totals, err := proc.PlayerTotals()
		if err != nil {
			http.Error(w, "Failed to get players", http.StatusInternalServerError)
			log.Error("Failed to get player totals from store", "error", err)
			return
		}

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="league.xlsx"`)
		if err := export.Write(w, tables, totals); err != nil {
			log.Error("Failed to export workbook", "error", err)
			http.Error(w, "Failed to export workbook", http.StatusInternalServerError)
		}
	}
}

// CountersHandler returns the lifetime counters kept in the database.
func CountersHandler(store metrics.MetricsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counters, err := store.GetAll()
		if err != nil {
			http.Error(w, "Failed to get counters", http.StatusInternalServerError)
			log.Error("Failed to get counters", "error", err)
			return
		}
		respondJSON(w, counters)
	}
}

func allStandings(proc *processor.Processor) (map[game.Division][]standings.Row, error) {
	teams, err := proc.Teams()
	if err != nil {
		return nil, err
	}
	tables := make(map[game.Division][]standings.Row, len(teams))
	for d := range teams {
		rows, err := proc.Standings(d)
		if err != nil {
			return nil, err
		}
		tables[d] = rows
	}
	return tables, nil
}
