package notifier

import (
	"context"

	"github.com/mauv0809/league-reporter/internal/game"
	"github.com/mauv0809/league-reporter/internal/pubsub"
	"github.com/mauv0809/league-reporter/internal/standings"
	"github.com/mauv0809/league-reporter/internal/stats"
)

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// Posts a corpus change to the league channel
	SendChange(ctx context.Context, ev pubsub.GamesChanged, dryRun bool) error

	// For formatting responses for slash commands
	FormatSubmissionResponse(g *game.Game) (any, error)
	FormatGameResponse(g *game.Game) (any, error)
	FormatMatchdayResponse(matchday int, games []game.Game) (any, error)
	FormatLeaderboardResponse(title string, entries []stats.Entry, ratio bool) (any, error)
	FormatStandingsResponse(div game.Division, rows []standings.Row) (any, error)
	FormatTeamsResponse(teams map[game.Division][]string) (any, error)
	FormatWarningsResponse(games []game.Game) (any, error)
	FormatTextResponse(text string) (any, error)
}
