package processor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/league-reporter/internal/game"
	"github.com/mauv0809/league-reporter/internal/metrics"
	"github.com/mauv0809/league-reporter/internal/pubsub"
	"github.com/mauv0809/league-reporter/internal/report"
	"github.com/mauv0809/league-reporter/internal/standings"
	"github.com/mauv0809/league-reporter/internal/stats"
)

// DefaultRatioMinMinutes is the playing time needed to enter a ratio leaderboard.
const DefaultRatioMinMinutes = 14

// New creates a new Processor. fetch resolves the half reports a match
// report links to.
func New(store Store, fetch report.HalfSource, notifier Notifier, metrics metrics.Metrics, pubsub pubsub.PubSubClient, cfg Config) *Processor {
	if cfg.RecordingHost == "" {
		cfg.RecordingHost = report.DefaultRecordingHost
	}
	if cfg.RatioMinMinutes < 0 {
		cfg.RatioMinMinutes = DefaultRatioMinMinutes
	}
	return &Processor{
		store:    store,
		fetch:    fetch,
		pubsub:   pubsub,
		notifier: notifier,
		metrics:  metrics,
		cfg:      cfg,
	}
}

// Submit builds a game from a match report. A report with errors is returned
// unsaved; the error return is reserved for storage failures. With dryRun
// the game is built but nothing is written.
func (p *Processor) Submit(ctx context.Context, text string, dryRun bool) (*game.Game, error) {
	teams, err := p.store.Teams()
	if err != nil {
		return nil, fmt.Errorf("failed to load team registry: %w", err)
	}
	registry := report.Registry{}
	for div, names := range teams {
		for _, name := range names {
			registry[name] = div
		}
	}

	g := report.NewBuilder(registry, p.cfg.RecordingHost).Build(ctx, text, p.fetch)
	log.Info("Built match report", "report", report.Summary(g), "dryRun", dryRun)
	if g.Rejected() {
		p.metrics.IncReportsRejected()
		return g, nil
	}
	if dryRun {
		return g, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.store.SaveGame(g); err != nil {
		return nil, fmt.Errorf("failed to save game: %w", err)
	}
	p.metrics.IncReportsSubmitted()
	if len(g.Warnings) > 0 {
		p.metrics.AddWarnings(len(g.Warnings))
	}
	if _, err := p.rebuild(); err != nil {
		return g, err
	}
	p.announce(ctx, pubsub.ChangeSubmitted, g, "")
	return g, nil
}

// Rebuild recomputes player totals and standings from the whole corpus.
func (p *Processor) Rebuild(ctx context.Context) (RebuildSummary, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rebuild()
}

// rebuild replaces both derived tables. Games that fail validation are
// skipped with a warning rather than failing the run.
func (p *Processor) rebuild() (RebuildSummary, error) {
	start := time.Now()
	var summary RebuildSummary

	games, err := p.store.ListGames()
	if err != nil {
		return summary, fmt.Errorf("failed to load games: %w", err)
	}
	teams, err := p.store.Teams()
	if err != nil {
		return summary, fmt.Errorf("failed to load team registry: %w", err)
	}

	valid := make([]game.Game, 0, len(games))
	for _, g := range games {
		if err := validate(g, teams); err != nil {
			log.Warn("Skipping stored game", "id", g.ID, "matchday", g.Matchday, "title", g.Title, "error", err)
			summary.Skipped++
			continue
		}
		valid = append(valid, g)
	}
	summary.Games = len(valid)

	totals := stats.Aggregate(valid)
	if err := p.store.ReplacePlayerTotals(totals); err != nil {
		return summary, fmt.Errorf("failed to replace player totals: %w", err)
	}
	summary.Players = len(totals)

	divisions := make([]game.Division, 0, len(teams))
	for div := range teams {
		divisions = append(divisions, div)
	}
	sort.Slice(divisions, func(i, j int) bool { return divisions[i] < divisions[j] })
	for _, div := range divisions {
		malus, err := p.store.Malus(div)
		if err != nil {
			return summary, fmt.Errorf("failed to load malus of %s: %w", div, err)
		}
		rows := standings.Compute(div, teams[div], malus, valid)
		if err := p.store.ReplaceStandings(div, rows); err != nil {
			return summary, fmt.Errorf("failed to replace standings of %s: %w", div, err)
		}
	}
	summary.Divisions = len(divisions)

	elapsed := time.Since(start)
	p.metrics.ObserveRebuildDuration(elapsed.Seconds())
	log.Info("Rebuilt league tables", "games", summary.Games, "skipped", summary.Skipped, "players", summary.Players, "duration", elapsed)
	return summary, nil
}

func validate(g game.Game, teams map[game.Division][]string) error {
	if g.Matchday <= 0 {
		return fmt.Errorf("%w: matchday %d", ErrInvalidGame, g.Matchday)
	}
	registered := map[string]bool{}
	for _, name := range teams[g.Division] {
		registered[name] = true
	}
	for _, side := range []game.Side{g.Score.Home, g.Score.Away} {
		if !registered[side.Team] {
			return fmt.Errorf("%w: %q is not a %s team", ErrInvalidGame, side.Team, g.Division)
		}
		if side.Goals < 0 {
			return fmt.Errorf("%w: negative score for %q", ErrInvalidGame, side.Team)
		}
	}
	return nil
}

// announce publishes the change. When publishing is unavailable the league
// channel is told directly.
func (p *Processor) announce(ctx context.Context, kind pubsub.ChangeKind, g *game.Game, detail string) {
	ev := pubsub.GamesChanged{
		Kind:   kind,
		Detail: detail,
		At:     time.Now().UTC(),
	}
	if g != nil {
		ev.Matchday = g.Matchday
		ev.Title = g.Title
		ev.GameID = g.ID
		ev.Warnings = g.Warnings
	}
	err := p.pubsub.SendMessage(pubsub.EventGamesChanged, ev)
	if err == nil {
		return
	}
	if !errors.Is(err, pubsub.ErrDisabled) {
		log.Warn("Failed to publish change, notifying directly", "error", err, "kind", kind)
	}
	if err := p.notifier.SendChange(ctx, ev, false); err != nil {
		log.Error("Failed to notify change", "error", err, "kind", kind)
	}
}

// HandleGamesChanged reacts to a published change: it recomputes the
// derived tables, which is a no-op when this instance made the change, and
// tells the league channel.
func (p *Processor) HandleGamesChanged(ctx context.Context, ev pubsub.GamesChanged, dryRun bool) error {
	if !dryRun {
		if _, err := p.Rebuild(ctx); err != nil {
			return err
		}
	}
	return p.notifier.SendChange(ctx, ev, dryRun)
}
