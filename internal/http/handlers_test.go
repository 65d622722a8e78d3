package http

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/mauv0809/league-reporter/internal/config"
	"github.com/mauv0809/league-reporter/internal/database"
	"github.com/mauv0809/league-reporter/internal/game"
	"github.com/mauv0809/league-reporter/internal/league"
	"github.com/mauv0809/league-reporter/internal/metrics"
	notifierslack "github.com/mauv0809/league-reporter/internal/notifier/slack"
	"github.com/mauv0809/league-reporter/internal/parser"
	"github.com/mauv0809/league-reporter/internal/processor"
	"github.com/mauv0809/league-reporter/internal/pubsub"
	"github.com/mauv0809/league-reporter/internal/standings"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const (
	testSlackSigningSecret = "test-signing-secret"
	adminUserID            = "UADMIN"
)

type testServer struct {
	*Server
	halves map[string]string
	store  league.Store
	pubsub *pubsub.MockPubSubClient
}

// setupTestServer initializes a new server with an in-memory database, two
// registered divisions and half reports served from memory.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	t.Cleanup(teardown)

	store := league.New(db)
	require.NoError(t, store.UpsertTeams(1, []string{"alpha", "beta", "gamma"}))
	require.NoError(t, store.UpsertTeams(2, []string{"omega", "sigma"}))

	ts := &testServer{halves: map[string]string{}, store: store, pubsub: pubsub.NewMock("TEST")}
	fetch := func(_ context.Context, ref game.MessageRef) (string, error) {
		text, ok := ts.halves[ref.MessageID]
		if !ok {
			return "", errors.New("message not found")
		}
		return text, nil
	}

	cfg := config.Config{Slack: config.SlackConfig{
		SigningSecret: testSlackSigningSecret,
		AdminUserIDs:  map[string]bool{adminUserID: true},
	}}
	reg := prometheus.NewRegistry()
	metricsSvc := metrics.NewService(reg)
	metricsStore := metrics.New(db)
	notifier := notifierslack.NewNotifierWithAPI(nil, "", metricsSvc, nil)
	proc := processor.New(store, fetch, notifier, metricsSvc.WithStore(metricsStore), ts.pubsub, processor.Config{})

	ts.Server = NewServer(proc, metricsSvc, metrics.NewMetricsHandler(reg), metricsStore, cfg, notifier, ts.pubsub)
	return ts
}

func scoreCard(prefix string, goals int) string {
	lines := make([]string, 5)
	for i := range lines {
		lines[i] = fmt.Sprintf("> **%s%d:** 7m", prefix, i)
	}
	if goals > 0 {
		lines[0] += fmt.Sprintf(" %dg", goals)
	}
	return strings.Join(lines, "\n")
}

// reportFor registers both halves of a game and returns its report text.
func (ts *testServer) reportFor(matchday int, home string, hg, ag int, away string) string {
	id := fmt.Sprintf("%d-%s-%s", matchday, home, away)
	ts.halves[id+"-1"] = scoreCard(home, hg) + "\n" + parser.Separator + "\n" + scoreCard(away, ag)
	ts.halves[id+"-2"] = scoreCard(away, 0) + "\n" + parser.Separator + "\n" + scoreCard(home, 0)
	return fmt.Sprintf("matchday %d\n%s %d - %d %s\n<https://league.slack.com/archives/C1/%s-1>\n<https://league.slack.com/archives/C1/%s-2>\nhttps://thehax.pl/r/%s",
		matchday, home, hg, ag, away, id, id, id)
}

// createSlackCommandRequest creates an http.Request suitable for testing Slack slash commands,
// including the necessary signature and timestamp headers for verification.
func createSlackCommandRequest(t *testing.T, targetURL string, form url.Values, signingSecret string) *http.Request {
	t.Helper()

	bodyBytes := []byte(form.Encode())
	req, err := http.NewRequest("POST", targetURL, bytes.NewReader(bodyBytes))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	timestamp := time.Now().Unix()
	req.Header.Set("X-Slack-Request-Timestamp", strconv.FormatInt(timestamp, 10))

	baseString := fmt.Sprintf("v0:%d:%s", timestamp, string(bodyBytes))
	h := hmac.New(sha256.New, []byte(signingSecret))
	h.Write([]byte(baseString))
	req.Header.Set("X-Slack-Signature", "v0="+hex.EncodeToString(h.Sum(nil)))
	return req
}

func (ts *testServer) command(t *testing.T, name, user, text string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{}
	form.Set("text", text)
	form.Set("user_id", user)
	form.Set("user_name", "tester")
	req := createSlackCommandRequest(t, "/slack/command/"+name, form, testSlackSigningSecret)
	rr := httptest.NewRecorder()
	ts.Router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	return rr
}

func (ts *testServer) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", target, nil)
	rr := httptest.NewRecorder()
	ts.Router.ServeHTTP(rr, req)
	return rr
}

func TestHealthCheckHandler(t *testing.T) {
	ts := setupTestServer(t)

	rr := ts.get(t, "/health")
	assert.Equal(t, http.StatusOK, rr.Code, "handler returned wrong status code")
	assert.Equal(t, "OK!", rr.Body.String(), "handler returned unexpected body")
}

func TestSlackSignatureVerification(t *testing.T) {
	ts := setupTestServer(t)
	form := url.Values{}
	form.Set("text", "goals")

	tests := []struct {
		name   string
		tamper func(req *http.Request)
	}{
		{"invalid signature", func(req *http.Request) { req.Header.Set("X-Slack-Signature", "v0=invalid-signature") }},
		{"missing signature", func(req *http.Request) { req.Header.Del("X-Slack-Signature") }},
		{"outdated timestamp", func(req *http.Request) {
			req.Header.Set("X-Slack-Request-Timestamp", strconv.FormatInt(time.Now().Add(-6*time.Minute).Unix(), 10))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := createSlackCommandRequest(t, "/slack/command/leaderboard", form, testSlackSigningSecret)
			tt.tamper(req)
			rr := httptest.NewRecorder()
			ts.Router.ServeHTTP(rr, req)
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
		})
	}

	t.Run("wrong secret", func(t *testing.T) {
		req := createSlackCommandRequest(t, "/slack/command/leaderboard", form, "other-secret")
		rr := httptest.NewRecorder()
		ts.Router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestReportCommand(t *testing.T) {
	ts := setupTestServer(t)

	t.Run("saves the game", func(t *testing.T) {
		rr := ts.command(t, "report", "U1", ts.reportFor(3, "alpha", 4, 2, "beta"))
		assert.Contains(t, rr.Body.String(), "Report saved")
		assert.Contains(t, rr.Body.String(), "alpha 4 - 2 beta")

		games, err := ts.store.ListGames()
		require.NoError(t, err)
		require.Len(t, games, 1)
	})

	t.Run("rejects an unknown team", func(t *testing.T) {
		report := strings.Replace(ts.reportFor(4, "gamma", 1, 0, "beta"), "gamma 1", "delta 1", 1)
		rr := ts.command(t, "report", "U1", report)
		assert.Contains(t, rr.Body.String(), "Report rejected")
		assert.Contains(t, rr.Body.String(), "can not find 2 registered teams in the score line")
	})

	t.Run("dry run saves nothing", func(t *testing.T) {
		form := url.Values{}
		form.Set("text", ts.reportFor(5, "omega", 1, 1, "sigma"))
		req := createSlackCommandRequest(t, "/slack/command/report?dry_run=true", form, testSlackSigningSecret)
		rr := httptest.NewRecorder()
		ts.Router.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)

		games, err := ts.store.ListMatchday(5)
		require.NoError(t, err)
		assert.Empty(t, games)
	})

	t.Run("empty report shows usage", func(t *testing.T) {
		rr := ts.command(t, "report", "U1", "")
		assert.Contains(t, rr.Body.String(), "Paste the match report")
	})
}

func TestQueryCommands(t *testing.T) {
	ts := setupTestServer(t)
	ts.command(t, "report", "U1", ts.reportFor(1, "alpha", 3, 0, "beta"))
	ts.command(t, "report", "U1", ts.reportFor(1, "omega", 0, 2, "sigma"))

	tests := []struct {
		name    string
		command string
		text    string
		want    []string
	}{
		{"game by one team", "game", "1 alpha", []string{"alpha 3 - 0 beta", "alpha0"}},
		{"game by both teams", "game", "1 beta + alpha", []string{"alpha 3 - 0 beta"}},
		{"game not found", "game", "2 alpha", []string{"Error: "}},
		{"game usage", "game", "alpha", []string{"Usage: /game"}},
		{"matchday", "matchday", "1", []string{"Matchday 1", "alpha 3 - 0 beta", "omega 0 - 2 sigma"}},
		{"leaderboard", "leaderboard", "goals", []string{"Goals", "alpha0", "sigma0"}},
		{"leaderboard by division", "leaderboard", "goals div2", []string{"Goals div2", "sigma0"}},
		{"leaderboard unknown stat", "leaderboard", "tackles", []string{"Error: "}},
		{"ratio", "ratio", "goals 1 0", []string{"Goals per minute div1", "alpha0"}},
		{"standings of one division", "standings", "2", []string{"Standings div2", "sigma"}},
		{"standings of every division", "standings", "", []string{"Standings div1", "Standings div2"}},
		{"teams", "teams", "", []string{"alpha, beta, gamma", "omega, sigma"}},
		{"warnings", "warnings", "", []string{"All games are clean."}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.command(t, tt.command, "U1", tt.text)
			for _, want := range tt.want {
				assert.Contains(t, rr.Body.String(), want)
			}
		})
	}

	t.Run("leaderboard by division leaves the other out", func(t *testing.T) {
		rr := ts.command(t, "leaderboard", "U1", "goals div2")
		assert.NotContains(t, rr.Body.String(), "alpha0")
	})
}

func TestAdminCommands(t *testing.T) {
	ts := setupTestServer(t)
	ts.command(t, "report", "U1", ts.reportFor(1, "alpha", 3, 0, "beta"))

	t.Run("refuses non admins", func(t *testing.T) {
		for _, cmd := range []string{"edit", "delete", "malus"} {
			rr := ts.command(t, cmd, "U1", "1 alpha")
			assert.Contains(t, rr.Body.String(), "Only league admins can use this command.")
		}
		games, err := ts.store.ListGames()
		require.NoError(t, err)
		assert.Len(t, games, 1)
	})

	t.Run("edit score", func(t *testing.T) {
		rr := ts.command(t, "edit", adminUserID, "score 1 alpha 1 1 beta")
		assert.Contains(t, rr.Body.String(), "alpha 1 - 1 beta")

		g, err := ts.store.GetGame(1, "alpha")
		require.NoError(t, err)
		assert.Equal(t, "alpha 1 - 1 beta", g.Title)
	})

	t.Run("edit stats", func(t *testing.T) {
		rr := ts.command(t, "edit", adminUserID, "stat 1 alpha\nalpha0 1 goals\nbeta1 2 own goals")
		assert.Contains(t, rr.Body.String(), "alpha0 1 goals")

		g, err := ts.store.GetGame(1, "alpha")
		require.NoError(t, err)
		assert.Equal(t, 1, g.Team1.Scorers["alpha0"])
		assert.Equal(t, 2, g.Team2.OwnGoals["beta1"])
	})

	t.Run("edit nicknames", func(t *testing.T) {
		ts.command(t, "edit", adminUserID, "nick 1 alpha\nalpha4 = alpha3")

		g, err := ts.store.GetGame(1, "alpha")
		require.NoError(t, err)
		assert.False(t, g.Team1.Has("alpha4"))
		assert.Equal(t, 1680, g.Team1.TimePlayed["alpha3"])
	})

	t.Run("edit recordings", func(t *testing.T) {
		ts.command(t, "edit", adminUserID, "rec 1 alpha https://thehax.pl/r/a https://thehax.pl/r/b")

		g, err := ts.store.GetGame(1, "alpha")
		require.NoError(t, err)
		assert.Equal(t, []string{"https://thehax.pl/r/a", "https://thehax.pl/r/b"}, g.Recordings)
	})

	t.Run("edit errors are answered", func(t *testing.T) {
		rr := ts.command(t, "edit", adminUserID, "stat 1 alpha\nalpha0 1 tackles")
		assert.Contains(t, rr.Body.String(), "Error: ")
		rr = ts.command(t, "edit", adminUserID, "swap 1 alpha")
		assert.Contains(t, rr.Body.String(), "Unknown edit")
		rr = ts.command(t, "edit", adminUserID, `score 1 "alpha 1 1 beta`)
		assert.Contains(t, rr.Body.String(), "Usage: /edit")
	})

	t.Run("a failing stat line applies nothing", func(t *testing.T) {
		rr := ts.command(t, "edit", adminUserID, "stat 1 alpha\nalpha1 9 goals\nalpha1 -2 saves")
		assert.Contains(t, rr.Body.String(), "no edit was applied")

		g, err := ts.store.GetGame(1, "alpha")
		require.NoError(t, err)
		assert.NotEqual(t, 9, g.Team1.Scorers["alpha1"])
	})

	t.Run("quoted team names", func(t *testing.T) {
		rr := ts.command(t, "edit", adminUserID, `score 1 "alpha" 2 2 "beta"`)
		assert.Contains(t, rr.Body.String(), "alpha 2 - 2 beta")
	})

	t.Run("malus", func(t *testing.T) {
		rr := ts.command(t, "malus", adminUserID, "beta 2")
		assert.Contains(t, rr.Body.String(), "2 malus point(s) added to beta, 2 in total")

		rows, err := ts.store.Standings(1)
		require.NoError(t, err)
		assert.Equal(t, "beta", rows[len(rows)-1].Team)
		assert.Equal(t, -1, rows[len(rows)-1].Points())
	})

	t.Run("delete", func(t *testing.T) {
		rr := ts.command(t, "delete", adminUserID, "1 beta")
		assert.Contains(t, rr.Body.String(), "was deleted from the db")

		games, err := ts.store.ListGames()
		require.NoError(t, err)
		assert.Empty(t, games)
	})
}

func TestAPIHandlers(t *testing.T) {
	ts := setupTestServer(t)
	ts.command(t, "report", "U1", ts.reportFor(1, "alpha", 3, 0, "beta"))
	ts.command(t, "report", "U1", ts.reportFor(2, "gamma", 2, 2, "alpha"))

	t.Run("games", func(t *testing.T) {
		rr := ts.get(t, "/api/games")
		require.Equal(t, http.StatusOK, rr.Code)
		var games []game.Game
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &games))
		assert.Len(t, games, 2)

		rr = ts.get(t, "/api/games?matchday=2")
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &games))
		require.Len(t, games, 1)
		assert.Equal(t, "gamma 2 - 2 alpha", games[0].Title)

		assert.Equal(t, http.StatusBadRequest, ts.get(t, "/api/games?matchday=x").Code)
	})

	t.Run("players", func(t *testing.T) {
		rr := ts.get(t, "/api/players")
		require.Equal(t, http.StatusOK, rr.Code)
		var totals map[string]map[string]any
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &totals))
		assert.Len(t, totals, 15)

		rr = ts.get(t, "/api/players?stat=goals&div=1")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"player":"alpha0"`)

		assert.Equal(t, http.StatusBadRequest, ts.get(t, "/api/players?stat=tackles").Code)
	})

	t.Run("standings", func(t *testing.T) {
		rr := ts.get(t, "/api/standings?div=1")
		require.Equal(t, http.StatusOK, rr.Code)
		var rows []standings.Row
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rows))
		require.Len(t, rows, 3)
		assert.Equal(t, "alpha", rows[0].Team)
		assert.Equal(t, 4, rows[0].Points())

		rr = ts.get(t, "/api/standings")
		var all map[string][]standings.Row
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &all))
		assert.Contains(t, all, "div1")
		assert.Contains(t, all, "div2")
	})

	t.Run("export", func(t *testing.T) {
		rr := ts.get(t, "/api/export.xlsx")
		require.Equal(t, http.StatusOK, rr.Code)
		f, err := excelize.OpenReader(rr.Body)
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, []string{"div1 standings", "div2 standings", "players"}, f.GetSheetList())
	})

	t.Run("counters", func(t *testing.T) {
		rr := ts.get(t, "/api/counters")
		require.Equal(t, http.StatusOK, rr.Code)
		var counters map[string]int
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &counters))
		assert.Equal(t, 2, counters["reports_submitted"])
	})
}

func TestRebuildHandler(t *testing.T) {
	ts := setupTestServer(t)
	ts.command(t, "report", "U1", ts.reportFor(1, "alpha", 3, 0, "beta"))

	req := httptest.NewRequest("POST", "/rebuild", nil)
	rr := httptest.NewRecorder()
	ts.Router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var summary processor.RebuildSummary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &summary))
	assert.Equal(t, processor.RebuildSummary{Games: 1, Players: 10, Divisions: 2}, summary)

	rr = ts.get(t, "/rebuild")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestGamesChangedHandler(t *testing.T) {
	ts := setupTestServer(t)

	push := func(t *testing.T, data string) *httptest.ResponseRecorder {
		body, err := json.Marshal(map[string]any{
			"subscription": "projects/test/subscriptions/games-changed",
			"message":      map[string]any{"data": data},
		})
		require.NoError(t, err)
		req := httptest.NewRequest("POST", "/pubsub/games-changed?dry_run=true", bytes.NewReader(body))
		rr := httptest.NewRecorder()
		ts.Router.ServeHTTP(rr, req)
		return rr
	}

	t.Run("valid event", func(t *testing.T) {
		raw, err := pubsub.Encode(pubsub.GamesChanged{Kind: pubsub.ChangeSubmitted, Matchday: 1, Title: "alpha 3 - 0 beta"})
		require.NoError(t, err)
		rr := push(t, base64.StdEncoding.EncodeToString(raw))
		assert.Equal(t, http.StatusOK, rr.Code)
		body, _ := io.ReadAll(rr.Body)
		assert.Equal(t, "OK", string(body))
		require.Len(t, ts.pubsub.ProcessMessageCalls, 1)
	})

	t.Run("invalid base64", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, push(t, "!!not-base64").Code)
	})

	t.Run("invalid payload", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, push(t, base64.StdEncoding.EncodeToString([]byte{0xc1})).Code)
	})
}
