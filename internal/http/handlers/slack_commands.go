package handlers

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/league-reporter/internal/game"
	"github.com/mauv0809/league-reporter/internal/notifier"
	"github.com/mauv0809/league-reporter/internal/processor"
	"github.com/mauv0809/league-reporter/internal/stats"
	"github.com/slack-go/slack"
)

var leaderboardTitles = map[string]string{
	"time":    "Time played",
	"goals":   "Goals",
	"assists": "Assists",
	"saves":   "Saves",
	"cs":      "Clean sheets",
	"og":      "Own goals",
}

// ReportCommandHandler submits a match report: /report followed by the report text.
func ReportCommandHandler(proc *processor.Processor, n notifier.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		text, err := commandText(r)
		if err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		if text == "" {
			respondText(w, n, "Paste the match report after the command: matchday, score line, recording and both half report links.")
			return
		}

		log.Info("Received match report", "user", r.FormValue("user_name"))
		g, err := proc.Submit(r.Context(), text, IsDryRunFromContext(r))
		if err != nil {
			log.Error("Failed to submit report", "error", err)
			respondText(w, n, "Error: %v", err)
			return
		}
		msg, err := n.FormatSubmissionResponse(g)
		respondFormatted(w, msg, err)
	}
}

// GameCommandHandler shows one game: "<matchday> <team>[ + <team>]".
func GameCommandHandler(proc *processor.Processor, n notifier.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		text, err := commandText(r)
		if err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		mdText, rest, _ := strings.Cut(text, " ")
		md, err := parseMatchday(mdText)
		if err != nil || strings.TrimSpace(rest) == "" {
			respondText(w, n, "Usage: /game <matchday> <team>[ + <other team>]")
			return
		}
		var teams []string
		for _, t := range strings.Split(rest, "+") {
			if t = strings.TrimSpace(t); t != "" {
				teams = append(teams, t)
			}
		}

		g, err := proc.Game(md, teams...)
		if err != nil {
			respondText(w, n, "Error: %v", err)
			return
		}
		msg, err := n.FormatGameResponse(g)
		respondFormatted(w, msg, err)
	}
}

// MatchdayCommandHandler lists the games of a matchday.
func MatchdayCommandHandler(proc *processor.Processor, n notifier.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		text, err := commandText(r)
		if err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		md, err := parseMatchday(text)
		if err != nil {
			respondText(w, n, "Usage: /matchday <matchday>")
			return
		}
		games, err := proc.Matchday(md)
		if err != nil {
			log.Error("Failed to list matchday", "error", err, "matchday", md)
			respondText(w, n, "Error: %v", err)
			return
		}
		msg, err := n.FormatMatchdayResponse(md, games)
		respondFormatted(w, msg, err)
	}
}

// LeaderboardCommandHandler ranks players: "<stat> [div]".
func LeaderboardCommandHandler(proc *processor.Processor, n notifier.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		text, err := commandText(r)
		if err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		args := strings.Fields(text)
		if len(args) == 0 || len(args) > 2 {
			respondText(w, n, "Usage: /leaderboard <%s> [div]", strings.Join(statKeys(), "|"))
			return
		}
		var div *game.Division
		if len(args) == 2 {
			d, ok := parseDivision(args[1])
			if !ok {
				respondText(w, n, "%q is not a division", args[1])
				return
			}
			div = &d
		}

		entries, err := proc.Leaderboard(args[0], div)
		if err != nil {
			respondText(w, n, "Error: %v", err)
			return
		}
		msg, err := n.FormatLeaderboardResponse(leaderboardTitle(args[0], div, ""), entries, false)
		respondFormatted(w, msg, err)
	}
}

// RatioCommandHandler ranks players by stat per minute: "<stat> [div] [min-minutes]".
func RatioCommandHandler(proc *processor.Processor, n notifier.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		text, err := commandText(r)
		if err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		args := strings.Fields(text)
		if len(args) == 0 || len(args) > 3 {
			respondText(w, n, "Usage: /ratio <%s> [div] [min-minutes]", strings.Join(statKeys(), "|"))
			return
		}
		var div *game.Division
		if len(args) >= 2 {
			d, ok := parseDivision(args[1])
			if !ok {
				respondText(w, n, "%q is not a division", args[1])
				return
			}
			div = &d
		}
		minMinutes := -1
		if len(args) == 3 {
			minMinutes, err = strconv.Atoi(args[2])
			if err != nil || minMinutes < 0 {
				respondText(w, n, "%q is not a number of minutes", args[2])
				return
			}
		}

		entries, err := proc.RatioLeaderboard(args[0], div, minMinutes)
		if err != nil {
			respondText(w, n, "Error: %v", err)
			return
		}
		msg, err := n.FormatLeaderboardResponse(leaderboardTitle(args[0], div, "per minute"), entries, true)
		respondFormatted(w, msg, err)
	}
}

// StandingsCommandHandler shows one division's table, or every table.
func StandingsCommandHandler(proc *processor.Processor, n notifier.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		text, err := commandText(r)
		if err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		divs, ok := divisionsFor(proc, text)
		if !ok {
			respondText(w, n, "Usage: /standings [div]")
			return
		}

		combined := slack.NewBlockMessage()
		for _, d := range divs {
			rows, err := proc.Standings(d)
			if err != nil {
				log.Error("Failed to load standings", "error", err, "division", d)
				respondText(w, n, "Error: %v", err)
				return
			}
			msg, err := n.FormatStandingsResponse(d, rows)
			if err != nil {
				respondFormatted(w, nil, err)
				return
			}
			slackMsg, ok := msg.(slack.Message)
			if !ok {
				respondFormatted(w, msg, nil)
				return
			}
			combined.Blocks.BlockSet = append(combined.Blocks.BlockSet, slackMsg.Blocks.BlockSet...)
		}
		respondWithSlackMsg(w, combined)
	}
}

// TeamsCommandHandler lists the registered teams, optionally of one division.
func TeamsCommandHandler(proc *processor.Processor, n notifier.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		text, err := commandText(r)
		if err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		teams, err := proc.Teams()
		if err != nil {
			log.Error("Failed to load teams", "error", err)
			respondText(w, n, "Error: %v", err)
			return
		}
		if text != "" {
			d, ok := parseDivision(text)
			if !ok {
				respondText(w, n, "Usage: /teams [div]")
				return
			}
			teams = map[game.Division][]string{d: teams[d]}
		}
		msg, err := n.FormatTeamsResponse(teams)
		respondFormatted(w, msg, err)
	}
}

// WarningsCommandHandler lists the games saved with warnings.
func WarningsCommandHandler(proc *processor.Processor, n notifier.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		games, err := proc.Warnings()
		if err != nil {
			log.Error("Failed to load warnings", "error", err)
			respondText(w, n, "Error: %v", err)
			return
		}
		msg, err := n.FormatWarningsResponse(games)
		respondFormatted(w, msg, err)
	}
}

// EditCommandHandler changes a stored game. The first line selects the
// edit, following lines carry one change each:
//
//	score <matchday> <team1> <goals1> <goals2> <team2>
//	stat <matchday> <team>
//	  <player> <value> <stat>
//	nick <matchday> <team>
//	  <alias> = <player>
//	rec <matchday> <team> <link>...
func EditCommandHandler(proc *processor.Processor, n notifier.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		text, err := commandText(r)
		if err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		first, rest, _ := strings.Cut(text, "\n")
		args, err := splitArgs(first)
		if err != nil || len(args) < 3 {
			respondText(w, n, "Usage: /edit score|stat|nick|rec <matchday> <team> ...")
			return
		}
		md, err := parseMatchday(args[1])
		if err != nil {
			respondText(w, n, "Error: %v", err)
			return
		}
		lines := nonEmptyLines(rest)
		ctx := r.Context()

		var (
			g       *game.Game
			summary []string
		)
		switch strings.ToLower(args[0]) {
		case "score":
			if len(args) != 6 {
				respondText(w, n, "Usage: /edit score <matchday> <team1> <goals1> <goals2> <team2>")
				return
			}
			g1, err1 := strconv.Atoi(args[3])
			g2, err2 := strconv.Atoi(args[4])
			if err1 != nil || err2 != nil {
				respondText(w, n, "Goals must be numbers")
				return
			}
			g, err = proc.EditScore(ctx, md, args[2], args[5], g1, g2)
		case "stat", "stats":
			if len(lines) == 0 {
				respondText(w, n, "Put one `<player> <value> <stat>` per line after the first one")
				return
			}
			edits := make([]processor.StatEdit, 0, len(lines))
			for _, line := range lines {
				player, value, statName, perr := parseStatLine(line)
				if perr != nil {
					respondText(w, n, "Error: %v, no edit was applied", perr)
					return
				}
				edits = append(edits, processor.StatEdit{Player: player, Value: value, Stat: statName})
				summary = append(summary, edits[len(edits)-1].String())
			}
			g, err = proc.ApplyStatEdits(ctx, md, args[2], edits)
		case "nick", "nicks", "nickname":
			if len(lines) == 0 {
				respondText(w, n, "Put one `<alias> = <player>` per line after the first one")
				return
			}
			edits := make([]processor.NicknameEdit, 0, len(lines))
			for _, line := range lines {
				alias, canonical, ok := strings.Cut(line, "=")
				if !ok {
					respondText(w, n, "Error: could not understand %q, no edit was applied", line)
					return
				}
				edits = append(edits, processor.NicknameEdit{Alias: strings.TrimSpace(alias), Canonical: strings.TrimSpace(canonical)})
				summary = append(summary, edits[len(edits)-1].String())
			}
			g, err = proc.ApplyNicknameEdits(ctx, md, args[2], edits)
		case "rec", "recs":
			g, err = proc.EditRecordings(ctx, md, args[2], args[3:])
		default:
			respondText(w, n, "Unknown edit %q, use score, stat, nick or rec", args[0])
			return
		}
		if err != nil {
			log.Warn("Edit failed", "error", err, "edit", args[0], "matchday", md)
			respondText(w, n, "Error: %v, no edit was applied", err)
			return
		}

		log.Info("Game edited", "edit", args[0], "title", g.Title, "user", r.FormValue("user_name"))
		if len(summary) > 0 {
			respondText(w, n, "%s: edited\n%s", g.Title, strings.Join(summary, "\n"))
			return
		}
		msg, err := n.FormatGameResponse(g)
		respondFormatted(w, msg, err)
	}
}

// DeleteCommandHandler removes a game: "<matchday> <team>".
func DeleteCommandHandler(proc *processor.Processor, n notifier.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		text, err := commandText(r)
		if err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		mdText, team, _ := strings.Cut(text, " ")
		md, err := parseMatchday(mdText)
		team = strings.Trim(strings.TrimSpace(team), `"`)
		if err != nil || team == "" {
			respondText(w, n, "Usage: /delete <matchday> <team>")
			return
		}
		g, err := proc.DeleteGame(r.Context(), md, team)
		if err != nil {
			respondText(w, n, "Error: %v", err)
			return
		}
		respondText(w, n, "%s was deleted from the db", g.Title)
	}
}

// MalusCommandHandler penalises a team: "<team> [points]", one point by default.
func MalusCommandHandler(proc *processor.Processor, n notifier.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		text, err := commandText(r)
		if err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		args, err := splitArgs(text)
		if err != nil {
			respondText(w, n, "Usage: /malus <team> [points]")
			return
		}
		points := 1
		if len(args) > 1 {
			if p, err := strconv.Atoi(args[len(args)-1]); err == nil {
				points = p
				args = args[:len(args)-1]
			}
		}
		team := strings.Join(args, " ")
		if team == "" {
			respondText(w, n, "Usage: /malus <team> [points]")
			return
		}
		total, err := proc.AddMalus(r.Context(), team, points)
		if err != nil {
			respondText(w, n, "Error: %v", err)
			return
		}
		respondText(w, n, "%d malus point(s) added to %s, %d in total", points, team, total)
	}
}

// parseStatLine reads "<player> <value> <stat>"; the player and the stat
// name may contain spaces ("tha sup 1 cs", "anddy 2 own goals").
func parseStatLine(line string) (string, int, string, error) {
	fields := strings.Fields(line)
	for i := 1; i < len(fields)-1; i++ {
		value, err := strconv.Atoi(fields[i])
		if err != nil {
			continue
		}
		return strings.Join(fields[:i], " "), value, strings.Join(fields[i+1:], " "), nil
	}
	return "", 0, "", fmt.Errorf("could not understand %q, use <player> <value> <stat>", line)
}

func nonEmptyLines(s string) []string {
	var lines []string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// divisionsFor resolves the optional division argument to the divisions to show.
func divisionsFor(proc *processor.Processor, text string) ([]game.Division, bool) {
	if text != "" {
		d, ok := parseDivision(text)
		if !ok {
			return nil, false
		}
		return []game.Division{d}, true
	}
	teams, err := proc.Teams()
	if err != nil {
		log.Error("Failed to load teams", "error", err)
		return nil, false
	}
	divs := make([]game.Division, 0, len(teams))
	for d := range teams {
		divs = append(divs, d)
	}
	sort.Slice(divs, func(i, j int) bool { return divs[i] < divs[j] })
	return divs, true
}

func statKeys() []string {
	keys := make([]string, 0, len(stats.Keys))
	for k := range stats.Keys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func leaderboardTitle(key string, div *game.Division, suffix string) string {
	title, ok := leaderboardTitles[strings.ToLower(key)]
	if !ok {
		title = key
	}
	if suffix != "" {
		title += " " + suffix
	}
	if div != nil {
		title += " " + div.String()
	}
	return title
}
