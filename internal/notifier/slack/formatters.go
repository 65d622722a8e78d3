package slack

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mauv0809/league-reporter/internal/game"
	"github.com/mauv0809/league-reporter/internal/pubsub"
	"github.com/mauv0809/league-reporter/internal/standings"
	"github.com/mauv0809/league-reporter/internal/stats"
	"github.com/slack-go/slack"
)

func header(text string) slack.Block {
	return slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", text, true, false))
}

func section(text string) slack.Block {
	return slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", text, false, false), nil, nil)
}

func contextBlock(lines ...string) slack.Block {
	elements := make([]slack.MixedElement, 0, len(lines))
	for _, l := range lines {
		elements = append(elements, slack.NewTextBlockObject("mrkdwn", l, false, false))
	}
	return slack.NewContextBlock("", elements...)
}

// divisionName renders a division with its conference name when one is configured.
func (s *Notifier) divisionName(div game.Division) string {
	if name, ok := s.divisions[div]; ok && name != "" {
		return fmt.Sprintf("%s (%s)", div, name)
	}
	return div.String()
}

func medal(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	}
	return ""
}

// playerLine renders a player's stats in score-card notation, e.g. "anddy 14:00 2g 1a".
func playerLine(sheet *game.TeamSheet, player string) string {
	parts := []string{player}
	for _, st := range game.Stats {
		v, ok := sheet.Column(st)[player]
		if !ok {
			continue
		}
		if st == game.StatTime {
			parts = append(parts, fmt.Sprintf("%d:%02d", v/60, v%60))
			continue
		}
		if v != 0 {
			parts = append(parts, fmt.Sprintf("%d%s", v, st.Code()))
		}
	}
	return strings.Join(parts, " ")
}

func sheetText(team string, sheet *game.TeamSheet) string {
	lines := []string{fmt.Sprintf("*%s*", team)}
	players := sheet.Players()
	if len(players) == 0 {
		lines = append(lines, "_no stats_")
	}
	for _, p := range players {
		lines = append(lines, "• "+playerLine(sheet, p))
	}
	return strings.Join(lines, "\n")
}

func (s *Notifier) formatGame(g *game.Game) slack.Message {
	blocks := []slack.Block{
		header(fmt.Sprintf("⚽ %s", g.Title)),
		contextBlock(fmt.Sprintf("Matchday %d | %s", g.Matchday, s.divisionName(g.Division))),
		slack.NewSectionBlock(nil, []*slack.TextBlockObject{
			slack.NewTextBlockObject("mrkdwn", sheetText(g.Score.Home.Team, &g.Team1), false, false),
			slack.NewTextBlockObject("mrkdwn", sheetText(g.Score.Away.Team, &g.Team2), false, false),
		}, nil),
	}
	if len(g.Recordings) > 0 {
		blocks = append(blocks, contextBlock("🎥 "+strings.Join(g.Recordings, " ")))
	}
	if len(g.Warnings) > 0 {
		blocks = append(blocks, section("⚠️ "+strings.Join(g.Warnings, "\n⚠️ ")))
	}
	return slack.NewBlockMessage(blocks...)
}

// formatSubmission answers a report: the errors when it was rejected, the
// saved game otherwise.
func (s *Notifier) formatSubmission(g *game.Game) slack.Message {
	if g.Rejected() {
		blocks := []slack.Block{header("❌ Report rejected")}
		for _, e := range g.Errors {
			blocks = append(blocks, section("• "+e))
		}
		for _, w := range g.Warnings {
			blocks = append(blocks, contextBlock("⚠️ "+w))
		}
		return slack.NewBlockMessage(blocks...)
	}
	msg := s.formatGame(g)
	msg.Blocks.BlockSet = append([]slack.Block{section("✅ Report saved")}, msg.Blocks.BlockSet...)
	return msg
}

func (s *Notifier) formatMatchday(matchday int, games []game.Game) slack.Message {
	blocks := []slack.Block{header(fmt.Sprintf("📅 Matchday %d", matchday))}
	if len(games) == 0 {
		blocks = append(blocks, section("No games reported yet."))
		return slack.NewBlockMessage(blocks...)
	}
	byDiv := map[game.Division][]string{}
	for _, g := range games {
		line := g.Title
		if len(g.Warnings) > 0 {
			line += " ⚠️"
		}
		byDiv[g.Division] = append(byDiv[g.Division], line)
	}
	divs := make([]game.Division, 0, len(byDiv))
	for d := range byDiv {
		divs = append(divs, d)
	}
	sort.Slice(divs, func(i, j int) bool { return divs[i] < divs[j] })
	for _, d := range divs {
		blocks = append(blocks, section(fmt.Sprintf("*%s*\n%s", s.divisionName(d), strings.Join(byDiv[d], "\n"))))
	}
	return slack.NewBlockMessage(blocks...)
}

func (s *Notifier) formatLeaderboard(title string, entries []stats.Entry, ratio bool) slack.Message {
	blocks := []slack.Block{header(fmt.Sprintf("🏆 %s 🏆", title))}
	if len(entries) == 0 {
		blocks = append(blocks, section("No players found."))
		return slack.NewBlockMessage(blocks...)
	}

	lines := make([]string, 0, len(entries))
	for i, e := range entries {
		rank := i + 1
		value := fmt.Sprintf("%d", e.Value)
		if ratio {
			value = fmt.Sprintf("%.2f", e.Ratio)
		}
		lines = append(lines, fmt.Sprintf("%d. %s *%s* %s (%d min)", rank, medal(rank), e.Player, value, e.Minutes()))
	}
	// Section text is capped by Slack, so long boards are split.
	for start := 0; start < len(lines); start += 25 {
		end := min(start+25, len(lines))
		blocks = append(blocks, section(strings.Join(lines[start:end], "\n")))
	}
	return slack.NewBlockMessage(blocks...)
}

func (s *Notifier) formatStandings(div game.Division, rows []standings.Row) slack.Message {
	blocks := []slack.Block{header(fmt.Sprintf("📊 Standings %s", s.divisionName(div)))}
	if len(rows) == 0 {
		blocks = append(blocks, section("No teams registered."))
		return slack.NewBlockMessage(blocks...)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-3s %-16s %3s %3s %3s %3s %4s %4s\n", "#", "Team", "GP", "W", "D", "L", "GD", "Pts")
	for i, r := range rows {
		team := r.Team
		if r.Malus > 0 {
			team += "*"
		}
		fmt.Fprintf(&b, "%-3d %-16s %3d %3d %3d %3d %+4d %4d\n", i+1, team, r.GamesPlayed, r.Wins, r.Draws, r.Losses, r.GoalsDiff(), r.Points())
	}
	blocks = append(blocks, section("```"+b.String()+"```"))

	var malus []string
	for _, r := range rows {
		if r.Malus > 0 {
			malus = append(malus, fmt.Sprintf("%s -%d", r.Team, r.Malus))
		}
	}
	if len(malus) > 0 {
		blocks = append(blocks, contextBlock("* malus: "+strings.Join(malus, ", ")))
	}
	return slack.NewBlockMessage(blocks...)
}

func (s *Notifier) formatTeams(teams map[game.Division][]string) slack.Message {
	blocks := []slack.Block{header("👥 Registered teams")}
	divs := make([]game.Division, 0, len(teams))
	for d := range teams {
		divs = append(divs, d)
	}
	sort.Slice(divs, func(i, j int) bool { return divs[i] < divs[j] })
	for _, d := range divs {
		blocks = append(blocks, section(fmt.Sprintf("*%s*\n%s", s.divisionName(d), strings.Join(teams[d], ", "))))
	}
	if len(divs) == 0 {
		blocks = append(blocks, section("No teams registered."))
	}
	return slack.NewBlockMessage(blocks...)
}

func (s *Notifier) formatWarnings(games []game.Game) slack.Message {
	blocks := []slack.Block{header("⚠️ Games with warnings")}
	if len(games) == 0 {
		blocks = append(blocks, section("All games are clean."))
		return slack.NewBlockMessage(blocks...)
	}
	for _, g := range games {
		blocks = append(blocks, section(fmt.Sprintf("*Matchday %d: %s*\n• %s", g.Matchday, g.Title, strings.Join(g.Warnings, "\n• "))))
	}
	return slack.NewBlockMessage(blocks...)
}

func (s *Notifier) formatChange(ev pubsub.GamesChanged) slack.Message {
	var text string
	switch ev.Kind {
	case pubsub.ChangeSubmitted:
		text = fmt.Sprintf("✅ New report for matchday %d: *%s*", ev.Matchday, ev.Title)
	case pubsub.ChangeEdited:
		text = fmt.Sprintf("✏️ Matchday %d: *%s* was edited (%s)", ev.Matchday, ev.Title, ev.Detail)
	case pubsub.ChangeDeleted:
		text = fmt.Sprintf("🗑️ Matchday %d: *%s* was deleted", ev.Matchday, ev.Title)
	case pubsub.ChangeMalus:
		text = fmt.Sprintf("🚫 %s", ev.Detail)
	default:
		text = fmt.Sprintf("League tables updated (%s)", ev.Kind)
	}
	blocks := []slack.Block{section(text)}
	if len(ev.Warnings) > 0 {
		blocks = append(blocks, contextBlock("⚠️ "+strings.Join(ev.Warnings, " | ")))
	}
	return slack.NewBlockMessage(blocks...)
}
