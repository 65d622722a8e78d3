package http

import (
	"net/http"

	"github.com/mauv0809/league-reporter/internal/config"
	"github.com/mauv0809/league-reporter/internal/metrics"
	"github.com/mauv0809/league-reporter/internal/notifier"
	"github.com/mauv0809/league-reporter/internal/processor"
	"github.com/mauv0809/league-reporter/internal/pubsub"
)

type Server struct {
	Processor      *processor.Processor
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	MetricsStore   metrics.MetricsStore
	Cfg            config.Config
	Notifier       notifier.Notifier
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
}
