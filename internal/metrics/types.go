package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
type Service struct {
	ReportsSubmitted   prometheus.Counter
	ReportsRejected    prometheus.Counter
	WarningsAttached   prometheus.Counter
	Edits              *prometheus.CounterVec
	RebuildDuration    prometheus.Histogram
	SlackNotifSent     prometheus.Counter
	SlackNotifFailed   prometheus.Counter
	StartupTimeSeconds prometheus.Gauge

	// lifetime counters mirrored to the database, optional
	store MetricsStore
}

// Keys of the lifetime counters.
const (
	KeyReportsSubmitted = "reports_submitted"
	KeyReportsRejected  = "reports_rejected"
	KeyEdits            = "edits"
	KeyRebuilds         = "rebuilds"
)
