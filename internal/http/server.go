package http

import (
	"net/http"

	"github.com/mauv0809/league-reporter/internal/config"
	"github.com/mauv0809/league-reporter/internal/http/handlers"
	"github.com/mauv0809/league-reporter/internal/metrics"
	"github.com/mauv0809/league-reporter/internal/notifier"
	"github.com/mauv0809/league-reporter/internal/processor"
	"github.com/mauv0809/league-reporter/internal/pubsub"
)

func NewServer(proc *processor.Processor, metricsSvc metrics.Metrics, metricsHandler http.Handler, metricsStore metrics.MetricsStore, cfg config.Config, notifier notifier.Notifier, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Processor:      proc,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		MetricsStore:   metricsStore,
		Cfg:            cfg,
		Notifier:       notifier,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// Slash commands are additionally verified against the signing secret,
	// and the ones that change stored games are limited to admins.
	slackCmd := func(h http.Handler) http.Handler {
		return Chain(h, paramsMiddleware, slackVerifier(s.Cfg.Slack.SigningSecret))
	}
	adminCmd := func(h http.Handler) http.Handler {
		return Chain(h, paramsMiddleware, slackVerifier(s.Cfg.Slack.SigningSecret), adminOnly(s.Cfg.Slack.AdminUserIDs, s.Notifier))
	}

	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(handlers.HealthCheckHandler(), paramsMiddleware))

	s.Router.Handle("/slack/command/report", slackCmd(handlers.ReportCommandHandler(s.Processor, s.Notifier)))
	s.Router.Handle("/slack/command/game", slackCmd(handlers.GameCommandHandler(s.Processor, s.Notifier)))
	s.Router.Handle("/slack/command/matchday", slackCmd(handlers.MatchdayCommandHandler(s.Processor, s.Notifier)))
	s.Router.Handle("/slack/command/leaderboard", slackCmd(handlers.LeaderboardCommandHandler(s.Processor, s.Notifier)))
	s.Router.Handle("/slack/command/ratio", slackCmd(handlers.RatioCommandHandler(s.Processor, s.Notifier)))
	s.Router.Handle("/slack/command/standings", slackCmd(handlers.StandingsCommandHandler(s.Processor, s.Notifier)))
	s.Router.Handle("/slack/command/teams", slackCmd(handlers.TeamsCommandHandler(s.Processor, s.Notifier)))
	s.Router.Handle("/slack/command/warnings", slackCmd(handlers.WarningsCommandHandler(s.Processor, s.Notifier)))
	s.Router.Handle("/slack/command/edit", adminCmd(handlers.EditCommandHandler(s.Processor, s.Notifier)))
	s.Router.Handle("/slack/command/delete", adminCmd(handlers.DeleteCommandHandler(s.Processor, s.Notifier)))
	s.Router.Handle("/slack/command/malus", adminCmd(handlers.MalusCommandHandler(s.Processor, s.Notifier)))

	s.Router.Handle("POST /rebuild", Chain(handlers.RebuildHandler(s.Processor), paramsMiddleware))
	s.Router.Handle("POST /pubsub/games-changed", Chain(handlers.GamesChangedHandler(s.Processor, s.pubsub), paramsMiddleware))

	s.Router.Handle("GET /api/games", Chain(handlers.ListGamesHandler(s.Processor), paramsMiddleware))
	s.Router.Handle("GET /api/players", Chain(handlers.ListPlayersHandler(s.Processor), paramsMiddleware))
	s.Router.Handle("GET /api/standings", Chain(handlers.StandingsHandler(s.Processor), paramsMiddleware))
	s.Router.Handle("GET /api/export.xlsx", Chain(handlers.ExportHandler(s.Processor), paramsMiddleware))
	if s.MetricsStore != nil {
		s.Router.Handle("GET /api/counters", Chain(handlers.CountersHandler(s.MetricsStore), paramsMiddleware))
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
