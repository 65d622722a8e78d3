package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		ReportsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "league_reports_submitted_total",
			Help: "The total number of match reports accepted and saved.",
		}),
		ReportsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "league_reports_rejected_total",
			Help: "The total number of match reports rejected with errors.",
		}),
		WarningsAttached: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "league_report_warnings_total",
			Help: "The total number of warnings attached to saved games.",
		}),
		Edits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "league_admin_edits_total",
			Help: "The total number of admin edits applied, by kind.",
		}, []string{"kind"}),
		RebuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "league_rebuild_duration_seconds",
			Help:    "The duration of a full recompute of player totals and standings.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "league_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "league_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "league_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.ReportsSubmitted,
		s.ReportsRejected,
		s.WarningsAttached,
		s.Edits,
		s.RebuildDuration,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

// WithStore mirrors the lifetime counters into store.
func (s *Service) WithStore(store MetricsStore) *Service {
	s.store = store
	return s
}

func (s *Service) persist(key string) {
	if s.store != nil {
		s.store.Increment(key)
	}
}

func (s *Service) IncReportsSubmitted() {
	s.ReportsSubmitted.Inc()
	s.persist(KeyReportsSubmitted)
}

func (s *Service) IncReportsRejected() {
	s.ReportsRejected.Inc()
	s.persist(KeyReportsRejected)
}

func (s *Service) AddWarnings(n int) {
	s.WarningsAttached.Add(float64(n))
}

func (s *Service) IncEdits(kind string) {
	s.Edits.WithLabelValues(kind).Inc()
	s.persist(KeyEdits)
}

func (s *Service) ObserveRebuildDuration(seconds float64) {
	s.RebuildDuration.Observe(seconds)
	s.persist(KeyRebuilds)
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) SetStartupTime(seconds float64) {
	s.StartupTimeSeconds.Set(seconds)
}
