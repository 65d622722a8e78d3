package slack

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/league-reporter/internal/game"
	"github.com/slack-go/slack"
)

var (
	ErrUnsupportedRef  = errors.New("message reference is not a slack permalink")
	ErrMessageNotFound = errors.New("message not found")
)

// Separator splits the two team score-cards of a half report.
const Separator = "SEPARATOR"

// historyAPI is the subset of the slack-go client the fetcher needs.
type historyAPI interface {
	GetConversationHistoryContext(ctx context.Context, params *slack.GetConversationHistoryParameters) (*slack.GetConversationHistoryResponse, error)
}

// Fetcher reads half reports posted in slack channels.
type Fetcher struct {
	api historyAPI
}

// NewFetcher creates a fetcher authenticated with a bot token.
func NewFetcher(token string) *Fetcher {
	return &Fetcher{api: slack.New(token)}
}

// NewFetcherWithAPI creates a fetcher with a custom API client. Used for testing.
func NewFetcherWithAPI(api *slack.Client) *Fetcher {
	return &Fetcher{api: api}
}

// FetchHalf returns the raw text of the half report ref points to. A report
// posted by the stats bot carries one attachment field per team; those are
// joined around the separator line. Plain messages are returned as is.
func (f *Fetcher) FetchHalf(ctx context.Context, ref game.MessageRef) (string, error) {
	ts, err := Timestamp(ref.MessageID)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(ref.ChannelID, "C") && !strings.HasPrefix(ref.ChannelID, "G") {
		return "", fmt.Errorf("%w: channel %q", ErrUnsupportedRef, ref.ChannelID)
	}

	resp, err := f.api.GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
		ChannelID: ref.ChannelID,
		Latest:    ts,
		Inclusive: true,
		Limit:     1,
	})
	if err != nil {
		log.Error("Failed to read slack history", "error", err, "channel", ref.ChannelID, "ts", ts)
		return "", fmt.Errorf("failed to read message %s: %w", ts, err)
	}
	if len(resp.Messages) == 0 || resp.Messages[0].Timestamp != ts {
		return "", fmt.Errorf("%w: %s in %s", ErrMessageNotFound, ts, ref.ChannelID)
	}

	msg := resp.Messages[0]
	for _, a := range msg.Attachments {
		if len(a.Fields) >= 2 {
			return a.Fields[0].Value + "\n" + Separator + "\n" + a.Fields[1].Value, nil
		}
	}
	return msg.Text, nil
}

// Timestamp converts the message id of a permalink (p1712345678123456) into
// the API timestamp form (1712345678.123456). Timestamps already in API form
// are returned unchanged.
func Timestamp(id string) (string, error) {
	if strings.Contains(id, ".") {
		return id, nil
	}
	digits := strings.TrimPrefix(id, "p")
	if digits == id || len(digits) <= 6 || strings.Trim(digits, "0123456789") != "" {
		return "", fmt.Errorf("%w: message id %q", ErrUnsupportedRef, id)
	}
	return digits[:len(digits)-6] + "." + digits[len(digits)-6:], nil
}
