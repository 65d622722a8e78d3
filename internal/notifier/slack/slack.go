package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/league-reporter/internal/game"
	"github.com/mauv0809/league-reporter/internal/metrics"
	"github.com/mauv0809/league-reporter/internal/notifier"
	"github.com/mauv0809/league-reporter/internal/pubsub"
	"github.com/mauv0809/league-reporter/internal/standings"
	"github.com/mauv0809/league-reporter/internal/stats"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier posts league changes to a Slack channel and formats slash
// command responses.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
	divisions map[game.Division]string
}

// NewNotifier creates a new Notifier. divisions holds optional display
// names, e.g. 1 -> "western".
func NewNotifier(token, channelID string, metrics metrics.Metrics, divisions map[game.Division]string) *Notifier {
	return NewNotifierWithAPI(slack.New(token), channelID, metrics, divisions)
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics, divisions map[game.Division]string) *Notifier {
	if divisions == nil {
		divisions = map[game.Division]string{}
	}
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
		divisions: divisions,
	}
}

func (s *Notifier) sendMessage(ctx context.Context, message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}
	if s.api == nil || s.channelID == "" {
		log.Warn("Slack client or channel ID is not configured. Skipping notification.")
		return "", "", nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", s.channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

// SendChange tells the league channel about a change to the game corpus.
func (s *Notifier) SendChange(ctx context.Context, ev pubsub.GamesChanged, dryRun bool) error {
	_, _, err := s.sendMessage(ctx, s.formatChange(ev), dryRun)
	return err
}

func (s *Notifier) FormatSubmissionResponse(g *game.Game) (any, error) {
	return s.formatSubmission(g), nil
}

func (s *Notifier) FormatGameResponse(g *game.Game) (any, error) {
	return s.formatGame(g), nil
}

func (s *Notifier) FormatMatchdayResponse(matchday int, games []game.Game) (any, error) {
	return s.formatMatchday(matchday, games), nil
}

// FormatLeaderboardResponse formats a leaderboard; with ratio the value per
// minute is shown instead of the raw total.
func (s *Notifier) FormatLeaderboardResponse(title string, entries []stats.Entry, ratio bool) (any, error) {
	return s.formatLeaderboard(title, entries, ratio), nil
}

func (s *Notifier) FormatStandingsResponse(div game.Division, rows []standings.Row) (any, error) {
	return s.formatStandings(div, rows), nil
}

func (s *Notifier) FormatTeamsResponse(teams map[game.Division][]string) (any, error) {
	return s.formatTeams(teams), nil
}

func (s *Notifier) FormatWarningsResponse(games []game.Game) (any, error) {
	return s.formatWarnings(games), nil
}

// FormatTextResponse wraps plain text, used for confirmations and errors.
func (s *Notifier) FormatTextResponse(text string) (any, error) {
	return slack.NewBlockMessage(section(text)), nil
}
