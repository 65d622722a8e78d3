package processor

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/league-reporter/internal/game"
	"github.com/mauv0809/league-reporter/internal/pubsub"
)

// edit loads the game of matchday involving teams, applies change and saves
// the result before rebuilding.
func (p *Processor) edit(ctx context.Context, kind string, matchday int, teams []string, change func(g *game.Game) error) (*game.Game, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	g, err := p.store.GetGame(matchday, teams...)
	if err != nil {
		return nil, err
	}
	if err := change(g); err != nil {
		return nil, err
	}
	if err := p.store.SaveGame(g); err != nil {
		return nil, fmt.Errorf("failed to save game: %w", err)
	}
	p.metrics.IncEdits(kind)
	log.Info("Edited game", "kind", kind, "matchday", matchday, "title", g.Title)

	if _, err := p.rebuild(); err != nil {
		return g, err
	}
	p.announce(ctx, pubsub.ChangeEdited, g, kind)
	return g, nil
}

// EditScore rewrites the score of the game between team1 and team2.
func (p *Processor) EditScore(ctx context.Context, matchday int, team1, team2 string, goals1, goals2 int) (*game.Game, error) {
	return p.edit(ctx, "score", matchday, []string{team1, team2}, func(g *game.Game) error {
		return g.SetScore(team1, team2, goals1, goals2)
	})
}

// EditStats sets one stat of a player in the game team played.
func (p *Processor) EditStats(ctx context.Context, matchday int, team, player string, value int, statName string) (*game.Game, error) {
	return p.ApplyStatEdits(ctx, matchday, team, []StatEdit{{Player: player, Value: value, Stat: statName}})
}

// ApplyStatEdits sets every listed stat in the game team played. The game is
// saved only when all edits apply.
func (p *Processor) ApplyStatEdits(ctx context.Context, matchday int, team string, edits []StatEdit) (*game.Game, error) {
	stats := make([]game.Stat, len(edits))
	for i, e := range edits {
		stat, err := game.ParseStatName(e.Stat)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e, err)
		}
		stats[i] = stat
	}
	return p.edit(ctx, "stat", matchday, []string{team}, func(g *game.Game) error {
		for i, e := range edits {
			if err := g.SetStat(e.Player, e.Value, stats[i]); err != nil {
				return fmt.Errorf("%s: %w", e, err)
			}
		}
		return nil
	})
}

// EditNicknames folds alias into canonical in the game team played.
func (p *Processor) EditNicknames(ctx context.Context, matchday int, team, alias, canonical string) (*game.Game, error) {
	return p.ApplyNicknameEdits(ctx, matchday, team, []NicknameEdit{{Alias: alias, Canonical: canonical}})
}

// ApplyNicknameEdits folds every alias in order. The game is saved only when
// all of them apply.
func (p *Processor) ApplyNicknameEdits(ctx context.Context, matchday int, team string, edits []NicknameEdit) (*game.Game, error) {
	return p.edit(ctx, "nickname", matchday, []string{team}, func(g *game.Game) error {
		for _, e := range edits {
			if err := g.MergePlayer(e.Alias, e.Canonical); err != nil {
				return fmt.Errorf("%s: %w", e, err)
			}
		}
		return nil
	})
}

// EditRecordings replaces the recording links of the game team played.
func (p *Processor) EditRecordings(ctx context.Context, matchday int, team string, links []string) (*game.Game, error) {
	return p.edit(ctx, "recordings", matchday, []string{team}, func(g *game.Game) error {
		g.SetRecordings(links)
		return nil
	})
}

// DeleteGame removes the game team played on matchday.
func (p *Processor) DeleteGame(ctx context.Context, matchday int, team string) (*game.Game, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	g, err := p.store.GetGame(matchday, team)
	if err != nil {
		return nil, err
	}
	if err := p.store.DeleteGame(matchday, team); err != nil {
		return nil, err
	}
	p.metrics.IncEdits("delete")
	if _, err := p.rebuild(); err != nil {
		return g, err
	}
	p.announce(ctx, pubsub.ChangeDeleted, g, "")
	return g, nil
}

// AddMalus adds points to a team's penalty and returns the new total.
func (p *Processor) AddMalus(ctx context.Context, team string, points int) (int, error) {
	if points <= 0 {
		return 0, fmt.Errorf("malus must be positive, got %d", points)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	total, err := p.store.AddMalus(team, points)
	if err != nil {
		return 0, err
	}
	p.metrics.IncEdits("malus")
	if _, err := p.rebuild(); err != nil {
		return total, err
	}
	p.announce(ctx, pubsub.ChangeMalus, nil, fmt.Sprintf("%s now has %d malus point(s)", team, total))
	return total, nil
}
