package slack

import (
	"context"
	"errors"
	"testing"

	"github.com/mauv0809/league-reporter/internal/game"
	"github.com/mauv0809/league-reporter/internal/metrics"
	"github.com/mauv0809/league-reporter/internal/pubsub"
	"github.com/mauv0809/league-reporter/internal/standings"
	"github.com/mauv0809/league-reporter/internal/stats"
	slackapi "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSlackAPI is a mock implementation of the parts of the slack.Client that we use.
type mockSlackAPI struct {
	postMessageContextFunc func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

func (m *mockSlackAPI) PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
	if m.postMessageContextFunc != nil {
		return m.postMessageContextFunc(ctx, channelID, options...)
	}
	return "C12345", "123456789.12345", nil
}

func sampleGame() *game.Game {
	g := &game.Game{
		Matchday: 3,
		Division: 1,
		Score:    game.Score{Home: game.Side{Team: "alpha", Goals: 4}, Away: game.Side{Team: "beta", Goals: 2}},
		Team1:    game.NewTeamSheet(),
		Team2:    game.NewTeamSheet(),
	}
	g.Title = g.Score.Title()
	g.Team1.TimePlayed["anddy"] = 840
	g.Team1.Scorers["anddy"] = 2
	g.Team1.Assisters["anddy"] = 1
	g.Team2.TimePlayed["raiden"] = 425
	g.Recordings = []string{"https://thehax.pl/r/1"}
	return g
}

func TestSendMessage_DryRun(t *testing.T) {
	metrics := metrics.NewMock()
	// Pass nil for the api, as it shouldn't be called in dry-run mode.
	notifier := NewNotifierWithAPI(nil, "C123", metrics, nil)

	_, _, err := notifier.sendMessage(context.Background(), slackapi.NewBlockMessage(), true)
	require.NoError(t, err)
	assert.Equal(t, 0, metrics.SlackNotifSent())
}

func TestSendMessage_Failure(t *testing.T) {
	expectedErr := errors.New("slack API is down")
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			return "", "", expectedErr
		},
	}
	metrics := metrics.NewMock()
	notifier := NewNotifierWithAPI(api, "C123", metrics, nil)

	_, _, err := notifier.sendMessage(context.Background(), slackapi.NewBlockMessage(), false)
	require.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
	assert.Equal(t, 0, metrics.SlackNotifSent())
	assert.Equal(t, 1, metrics.SlackNotifFailed())
}

func TestSendChange(t *testing.T) {
	postMessageCalled := false
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			assert.Equal(t, "C123", channelID)
			return "C123", "ts123", nil
		},
	}
	metrics := metrics.NewMock()
	notifier := NewNotifierWithAPI(api, "C123", metrics, nil)

	err := notifier.SendChange(context.Background(), pubsub.GamesChanged{Kind: pubsub.ChangeSubmitted, Matchday: 3, Title: "alpha 4 - 2 beta"}, false)
	require.NoError(t, err)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called")
	assert.Equal(t, 1, metrics.SlackNotifSent())
}

func TestFormatChange(t *testing.T) {
	notifier := NewNotifierWithAPI(nil, "C123", metrics.NewMock(), nil)

	tests := []struct {
		name string
		ev   pubsub.GamesChanged
		want string
	}{
		{"submitted", pubsub.GamesChanged{Kind: pubsub.ChangeSubmitted, Matchday: 3, Title: "alpha 4 - 2 beta"}, "New report for matchday 3: *alpha 4 - 2 beta*"},
		{"edited", pubsub.GamesChanged{Kind: pubsub.ChangeEdited, Matchday: 3, Title: "alpha 4 - 2 beta", Detail: "score"}, "was edited (score)"},
		{"deleted", pubsub.GamesChanged{Kind: pubsub.ChangeDeleted, Matchday: 3, Title: "alpha 4 - 2 beta"}, "was deleted"},
		{"malus", pubsub.GamesChanged{Kind: pubsub.ChangeMalus, Detail: "beta now has 2 malus point(s)"}, "beta now has 2 malus point(s)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := notifier.formatChange(tt.ev)
			require.NotEmpty(t, msg.Blocks.BlockSet)
			sec, ok := msg.Blocks.BlockSet[0].(*slackapi.SectionBlock)
			require.True(t, ok)
			assert.Contains(t, sec.Text.Text, tt.want)
		})
	}

	withWarnings := notifier.formatChange(pubsub.GamesChanged{Kind: pubsub.ChangeSubmitted, Warnings: []string{"missing 1 half report link(s)"}})
	require.Len(t, withWarnings.Blocks.BlockSet, 2)
	_, ok := withWarnings.Blocks.BlockSet[1].(*slackapi.ContextBlock)
	assert.True(t, ok)
}

func TestFormatGame(t *testing.T) {
	notifier := NewNotifierWithAPI(nil, "C123", metrics.NewMock(), map[game.Division]string{1: "western"})
	g := sampleGame()
	g.Warn("could not find the recording, is it hosted on thehax?")

	msg := notifier.formatGame(g)
	require.Len(t, msg.Blocks.BlockSet, 5)

	head, ok := msg.Blocks.BlockSet[0].(*slackapi.HeaderBlock)
	require.True(t, ok)
	assert.Contains(t, head.Text.Text, "alpha 4 - 2 beta")

	ctx, ok := msg.Blocks.BlockSet[1].(*slackapi.ContextBlock)
	require.True(t, ok)
	text := ctx.ContextElements.Elements[0].(*slackapi.TextBlockObject)
	assert.Equal(t, "Matchday 3 | div1 (western)", text.Text)

	teams, ok := msg.Blocks.BlockSet[2].(*slackapi.SectionBlock)
	require.True(t, ok)
	require.Len(t, teams.Fields, 2)
	assert.Equal(t, "*alpha*\n• anddy 14:00 2g 1a", teams.Fields[0].Text)
	assert.Equal(t, "*beta*\n• raiden 7:05", teams.Fields[1].Text)

	warn, ok := msg.Blocks.BlockSet[4].(*slackapi.SectionBlock)
	require.True(t, ok)
	assert.Contains(t, warn.Text.Text, "hosted on thehax")
}

func TestFormatSubmission(t *testing.T) {
	notifier := NewNotifierWithAPI(nil, "C123", metrics.NewMock(), nil)

	t.Run("saved", func(t *testing.T) {
		msg := notifier.formatSubmission(sampleGame())
		sec, ok := msg.Blocks.BlockSet[0].(*slackapi.SectionBlock)
		require.True(t, ok)
		assert.Contains(t, sec.Text.Text, "Report saved")
	})

	t.Run("rejected", func(t *testing.T) {
		g := &game.Game{}
		g.Fail("matchday is missing or incorrect, use the format: matchday N")
		g.Fail("can not find 2 registered teams in the score line")

		msg := notifier.formatSubmission(g)
		require.Len(t, msg.Blocks.BlockSet, 3)
		head := msg.Blocks.BlockSet[0].(*slackapi.HeaderBlock)
		assert.Contains(t, head.Text.Text, "Report rejected")
		sec := msg.Blocks.BlockSet[2].(*slackapi.SectionBlock)
		assert.Contains(t, sec.Text.Text, "registered teams")
	})
}

func TestFormatLeaderboard(t *testing.T) {
	notifier := NewNotifierWithAPI(nil, "C123", metrics.NewMock(), nil)

	t.Run("empty", func(t *testing.T) {
		msg := notifier.formatLeaderboard("Goals", nil, false)
		require.Len(t, msg.Blocks.BlockSet, 2)
		sec := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
		assert.Equal(t, "No players found.", sec.Text.Text)
	})

	t.Run("ratio", func(t *testing.T) {
		entries := []stats.Entry{
			{Player: "anddy", Value: 5, Time: 60, Ratio: 5},
			{Player: "raiden", Value: 10, Time: 600, Ratio: 1},
		}
		msg := notifier.formatLeaderboard("Goals per minute", entries, true)
		require.Len(t, msg.Blocks.BlockSet, 2)
		sec := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
		assert.Equal(t, "1. 🥇 *anddy* 5.00 (1 min)\n2. 🥈 *raiden* 1.00 (10 min)", sec.Text.Text)
	})

	t.Run("long boards are split", func(t *testing.T) {
		entries := make([]stats.Entry, 30)
		for i := range entries {
			entries[i] = stats.Entry{Player: "p", Value: 30 - i}
		}
		msg := notifier.formatLeaderboard("Goals", entries, false)
		assert.Len(t, msg.Blocks.BlockSet, 3)
	})
}

func TestFormatStandings(t *testing.T) {
	notifier := NewNotifierWithAPI(nil, "C123", metrics.NewMock(), nil)
	rows := []standings.Row{
		{Team: "alpha", Division: 1, GamesPlayed: 1, Wins: 1, GoalsFor: 4, GoalsAgainst: 2},
		{Team: "beta", Division: 1, GamesPlayed: 1, Losses: 1, GoalsFor: 2, GoalsAgainst: 4, Malus: 1},
	}

	msg := notifier.formatStandings(1, rows)
	require.Len(t, msg.Blocks.BlockSet, 3)
	table := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
	assert.Contains(t, table.Text.Text, "alpha")
	assert.Contains(t, table.Text.Text, "beta*")
	assert.Contains(t, table.Text.Text, "+2")
	malus := msg.Blocks.BlockSet[2].(*slackapi.ContextBlock)
	assert.Equal(t, "* malus: beta -1", malus.ContextElements.Elements[0].(*slackapi.TextBlockObject).Text)
}

func TestFormatTeamsAndWarnings(t *testing.T) {
	notifier := NewNotifierWithAPI(nil, "C123", metrics.NewMock(), map[game.Division]string{2: "eastern"})

	msg := notifier.formatTeams(map[game.Division][]string{2: {"omega", "sigma"}, 1: {"alpha", "beta"}})
	require.Len(t, msg.Blocks.BlockSet, 3)
	assert.Equal(t, "*div1*\nalpha, beta", msg.Blocks.BlockSet[1].(*slackapi.SectionBlock).Text.Text)
	assert.Equal(t, "*div2 (eastern)*\nomega, sigma", msg.Blocks.BlockSet[2].(*slackapi.SectionBlock).Text.Text)

	clean := notifier.formatWarnings(nil)
	assert.Equal(t, "All games are clean.", clean.Blocks.BlockSet[1].(*slackapi.SectionBlock).Text.Text)

	g := sampleGame()
	g.Warn("missing 1 half report link(s)")
	warned := notifier.formatWarnings([]game.Game{*g})
	assert.Equal(t, "*Matchday 3: alpha 4 - 2 beta*\n• missing 1 half report link(s)", warned.Blocks.BlockSet[1].(*slackapi.SectionBlock).Text.Text)
}
