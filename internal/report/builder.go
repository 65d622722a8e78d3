// Package report assembles a canonical game from a submitted match report.
package report

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/league-reporter/internal/game"
	"github.com/mauv0809/league-reporter/internal/parser"
)

// DefaultRecordingHost is the marker identifying recording links.
const DefaultRecordingHost = "thehax"

// chatLinkMarkers identify links to the messages holding half reports.
var chatLinkMarkers = []string{"slack.com/archives/", "discord.com/channels/"}

var (
	firstNumber  = regexp.MustCompile(`\d+`)
	scoreBetween = regexp.MustCompile(`^\s+(\d+)\s*(?:[-:]|\s)\s*(\d+)\s+`)
)

// HalfSource fetches the raw score-card text a message reference points at.
type HalfSource func(ctx context.Context, ref game.MessageRef) (string, error)

// Registry maps every known team name (lower-case) to its division.
type Registry map[string]game.Division

// Builder turns report text into a game.
type Builder struct {
	registry      Registry
	byLength      []string
	recordingHost string
}

// NewBuilder creates a Builder for the given team registry.
func NewBuilder(registry Registry, recordingHost string) *Builder {
	if recordingHost == "" {
		recordingHost = DefaultRecordingHost
	}
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	// Longest names first so "fc alpha" is not read as "fc".
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	return &Builder{registry: registry, byLength: names, recordingHost: strings.ToLower(recordingHost)}
}

// Build extracts the report metadata, fetches and parses both halves and
// merges them. The returned game carries its errors and warnings; callers
// must not persist it when Rejected reports true.
func (b *Builder) Build(ctx context.Context, text string, fetch HalfSource) *game.Game {
	g := &game.Game{Team1: game.NewTeamSheet(), Team2: game.NewTeamSheet()}

	var raw, lower []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		raw = append(raw, line)
		lower = append(lower, strings.ToLower(line))
	}

	g.Recordings = b.recordings(lower)
	if len(g.Recordings) == 0 {
		g.Warn("could not find the recording, is it hosted on %s?", b.recordingHost)
	}

	matchday, ok := Matchday(lower)
	if !ok {
		g.Fail("matchday is missing or incorrect, use the format: matchday N")
	}
	g.Matchday = matchday

	score, ok := b.score(lower)
	if ok {
		g.Score = score
		g.Title = score.Title()
		g.Division = b.registry[score.Home.Team]
		if away := b.registry[score.Away.Team]; away != g.Division {
			g.Fail("%s (%s) and %s (%s) do not play in the same division", score.Home.Team, g.Division, score.Away.Team, away)
		}
	} else {
		g.Fail("can not find 2 registered teams in the score line")
	}

	g.MessageRefs = MessageRefs(raw)
	switch n := len(g.MessageRefs); {
	case n < 2:
		g.Warn("missing %d half report link(s)", 2-n)
	case n > 2:
		g.Warn("found %d half report links, only the first 2 are used", n)
		g.MessageRefs = g.MessageRefs[:2]
	}

	if g.Rejected() {
		return g
	}

	halves := make([]*game.Half, 0, len(g.MessageRefs))
	for i, ref := range g.MessageRefs {
		body, err := fetch(ctx, ref)
		if err != nil {
			log.Warn("Failed to fetch half report", "half", i+1, "channel", ref.ChannelID, "message", ref.MessageID, "error", err)
			g.Fail("half %d: could not read the report message: %v", i+1, err)
			continue
		}
		half, err := parser.ParseHalf(body, i != 0)
		if err != nil {
			g.Fail("half %d: not a valid report message: %v", i+1, err)
			continue
		}
		halves = append(halves, half)
	}
	if g.Rejected() {
		return g
	}

	merged := MergeHalves(halves...)
	g.Team1, g.Team2 = merged.Team1, merged.Team2
	return g
}

// Matchday returns the first number on the first line mentioning "matchday".
func Matchday(lines []string) (int, bool) {
	for _, line := range lines {
		if !strings.Contains(line, "matchday") {
			continue
		}
		n, err := strconv.Atoi(firstNumber.FindString(line))
		if err != nil || n <= 0 {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// score finds the first line holding "<team> <n> - <m> <team>" with both
// teams in the registry. The home team may be preceded by other words; the
// away team must end the line.
func (b *Builder) score(lines []string) (game.Score, bool) {
	for _, line := range lines {
		line = strings.TrimSpace(strings.ReplaceAll(line, "*", ""))
		best := game.Score{}
		bestAt := -1
		for _, home := range b.byLength {
			for from := 0; from < len(line); {
				i := strings.Index(line[from:], home)
				if i < 0 {
					break
				}
				at := from + i
				from = at + 1
				if bestAt >= 0 && at >= bestAt {
					break
				}
				if at > 0 && isWordByte(line[at-1]) {
					continue
				}
				if score, ok := b.scoreAfter(home, line[at+len(home):]); ok {
					best, bestAt = score, at
					break
				}
			}
		}
		if bestAt >= 0 {
			return best, true
		}
	}
	return game.Score{}, false
}

func (b *Builder) scoreAfter(home, rest string) (game.Score, bool) {
	m := scoreBetween.FindStringSubmatchIndex(rest)
	if m == nil {
		return game.Score{}, false
	}
	away := strings.TrimSpace(rest[m[1]:])
	if _, ok := b.registry[away]; !ok || away == home {
		return game.Score{}, false
	}
	g1, _ := strconv.Atoi(rest[m[2]:m[3]])
	g2, _ := strconv.Atoi(rest[m[4]:m[5]])
	return game.Score{
		Home: game.Side{Team: home, Goals: g1},
		Away: game.Side{Team: away, Goals: g2},
	}, true
}

func isWordByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_'
}

func (b *Builder) recordings(lines []string) []string {
	var recs []string
	for _, line := range lines {
		if strings.Contains(line, b.recordingHost) {
			recs = append(recs, CleanLink(line))
		}
	}
	return recs
}

// CleanLink trims a line down to the link it carries, starting at its protocol.
func CleanLink(line string) string {
	const scheme = "https://"
	parts := strings.Split(line, scheme)
	link := strings.TrimSpace(parts[len(parts)-1])
	if i := strings.IndexAny(link, " \t"); i >= 0 {
		link = link[:i]
	}
	return scheme + strings.Trim(link, "<>|")
}

// MessageRefs collects (channel, message) pairs from chat permalinks, read
// from the last two path segments of each link. Lines keep their original
// case since chat ids are case sensitive.
func MessageRefs(lines []string) []game.MessageRef {
	var refs []game.MessageRef
	for _, line := range lines {
		lowered := strings.ToLower(line)
		matched := false
		for _, marker := range chatLinkMarkers {
			if strings.Contains(lowered, marker) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		ref, ok := refFromLink(CleanLink(line))
		if !ok {
			log.Debug("Ignoring malformed chat link", "line", line)
			continue
		}
		refs = append(refs, ref)
	}
	return refs
}

func refFromLink(link string) (game.MessageRef, bool) {
	u, err := url.Parse(link)
	if err != nil {
		return game.MessageRef{}, false
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 2 {
		return game.MessageRef{}, false
	}
	ref := game.MessageRef{
		ChannelID: segments[len(segments)-2],
		MessageID: segments[len(segments)-1],
	}
	if ref.ChannelID == "" || ref.MessageID == "" {
		return game.MessageRef{}, false
	}
	return ref, true
}

// MergeHalves sums halves per team, per stat and per player. Players present
// in only one half keep that half's value.
func MergeHalves(halves ...*game.Half) game.Half {
	out := game.Half{Team1: game.NewTeamSheet(), Team2: game.NewTeamSheet()}
	for _, h := range halves {
		if h == nil {
			continue
		}
		for _, s := range game.Stats {
			addColumn(out.Team1.Column(s), h.Team1.Column(s))
			addColumn(out.Team2.Column(s), h.Team2.Column(s))
		}
	}
	return out
}

func addColumn(dst, src map[string]int) {
	for player, n := range src {
		dst[player] += n
	}
}

// Summary describes the outcome for logs.
func Summary(g *game.Game) string {
	return fmt.Sprintf("md%d %q (%d errors, %d warnings)", g.Matchday, g.Title, len(g.Errors), len(g.Warnings))
}
