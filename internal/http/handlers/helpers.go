package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/shlex"
	"github.com/mauv0809/league-reporter/internal/game"
	"github.com/mauv0809/league-reporter/internal/notifier"
	"github.com/slack-go/slack"
)

// ContextKey is a custom type to avoid key collisions in context.
type ContextKey string

const (
	DryRunKey ContextKey = "dryRun"
)

// IsDryRunFromContext is a helper to safely retrieve the dry_run flag from the request context.
func IsDryRunFromContext(r *http.Request) bool {
	dryRun, ok := r.Context().Value(DryRunKey).(bool)
	return ok && dryRun
}

// respondWithSlackMsg is a helper to format and write a Slack message as an HTTP response.
func respondWithSlackMsg(w http.ResponseWriter, msg slack.Message) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		log.Error("Failed to encode slack message to JSON", "error", err)
	}
}

// respondFormatted writes the result of one of the notifier's Format methods.
func respondFormatted(w http.ResponseWriter, msg any, err error) {
	if err != nil {
		http.Error(w, "Failed to format response", http.StatusInternalServerError)
		log.Error("Failed to format response", "error", err)
		return
	}
	slackMsg, ok := msg.(slack.Message)
	if !ok {
		http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
		log.Error("Failed to cast message to slack.Message")
		return
	}
	respondWithSlackMsg(w, slackMsg)
}

// respondText answers a slash command with a plain message. Slack only shows
// replies to successful requests, so user errors are answered this way too.
func respondText(w http.ResponseWriter, n notifier.Notifier, format string, args ...any) {
	msg, err := n.FormatTextResponse(fmt.Sprintf(format, args...))
	respondFormatted(w, msg, err)
}

func respondJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to write response", "error", err)
	}
}

// commandText returns the trimmed text of a slash command.
func commandText(r *http.Request) (string, error) {
	if err := r.ParseForm(); err != nil {
		return "", err
	}
	return strings.TrimSpace(r.FormValue("text")), nil
}

// splitArgs splits command text the way a shell would, so team names with
// spaces can be passed as "balls be snakin".
func splitArgs(s string) ([]string, error) {
	args, err := shlex.Split(s)
	if err != nil {
		return nil, fmt.Errorf("could not split %q: %w", s, err)
	}
	return args, nil
}

// parseDivision accepts "2" or "div2".
func parseDivision(s string) (game.Division, bool) {
	n, err := strconv.Atoi(strings.TrimPrefix(strings.ToLower(s), "div"))
	if err != nil || n <= 0 {
		return 0, false
	}
	return game.Division(n), true
}

func parseMatchday(s string) (int, error) {
	md, err := strconv.Atoi(s)
	if err != nil || md <= 0 {
		return 0, fmt.Errorf("%q is not a matchday", s)
	}
	return md, nil
}
