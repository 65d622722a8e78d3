package processor

import (
	"errors"
	"fmt"
	"sync"

	"github.com/mauv0809/league-reporter/internal/metrics"
	"github.com/mauv0809/league-reporter/internal/pubsub"
	"github.com/mauv0809/league-reporter/internal/report"
)

var ErrInvalidGame = errors.New("invalid game")

// Config holds the processor settings taken from the environment.
type Config struct {
	RecordingHost string
	// RatioMinMinutes applies when a ratio query names no minimum. Zero
	// admits every player; a negative value means DefaultRatioMinMinutes.
	RatioMinMinutes int
}

// Processor owns every mutation of the game corpus and keeps the derived
// tables in step with it. It holds no state besides its dependencies.
type Processor struct {
	store    Store
	fetch    report.HalfSource
	pubsub   pubsub.PubSubClient
	notifier Notifier
	metrics  metrics.Metrics
	cfg      Config

	// serialises mutations so rebuilds never interleave
	mu sync.Mutex
}

// StatEdit sets one stat of one player, e.g. {"anddy", 2, "goals"}.
type StatEdit struct {
	Player string
	Value  int
	Stat   string
}

func (e StatEdit) String() string {
	return fmt.Sprintf("%s %d %s", e.Player, e.Value, e.Stat)
}

// NicknameEdit folds the stats of Alias into Canonical.
type NicknameEdit struct {
	Alias     string
	Canonical string
}

func (e NicknameEdit) String() string {
	return e.Alias + " -> " + e.Canonical
}

// RebuildSummary describes one full recompute.
type RebuildSummary struct {
	Games     int `json:"games"`
	Skipped   int `json:"skipped"`
	Players   int `json:"players"`
	Divisions int `json:"divisions"`
}
