package main

import (
	"fmt"
	"io/fs"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/league-reporter/internal/game"
	"github.com/mauv0809/league-reporter/internal/league"
	"github.com/mauv0809/league-reporter/internal/legacy"
	"gopkg.in/yaml.v3"
)

// Registry is the seed file layout:
//
//	divisions:
//	  - division: 1
//	    name: western
//	    teams: [balls be snakin, champions]
//	    malus:
//	      champions: 1
type Registry struct {
	Divisions []DivisionSeed `yaml:"divisions"`
}

type DivisionSeed struct {
	Division int            `yaml:"division"`
	Name     string         `yaml:"name"`
	Teams    []string       `yaml:"teams"`
	Malus    map[string]int `yaml:"malus"`
}

func ParseRegistry(data []byte) (Registry, error) {
	var r Registry
	if err := yaml.Unmarshal(data, &r); err != nil {
		return r, fmt.Errorf("failed to parse registry: %w", err)
	}
	seen := map[int]bool{}
	for _, d := range r.Divisions {
		if d.Division <= 0 {
			return r, fmt.Errorf("division numbers start at 1, got %d", d.Division)
		}
		if seen[d.Division] {
			return r, fmt.Errorf("division %d is listed twice", d.Division)
		}
		seen[d.Division] = true
		for team, points := range d.Malus {
			if points < 0 {
				return r, fmt.Errorf("malus of %s can not be negative", team)
			}
		}
	}
	return r, nil
}

// Seed writes the teams of every division, then raises each team's malus to
// the seeded value. Seeding twice changes nothing.
func Seed(store league.Store, r Registry) error {
	for _, d := range r.Divisions {
		div := game.Division(d.Division)
		if err := store.UpsertTeams(div, d.Teams); err != nil {
			return fmt.Errorf("failed to register teams of %s: %w", div, err)
		}
		current, err := store.Malus(div)
		if err != nil {
			return err
		}
		for team, want := range d.Malus {
			missing := want - current[team]
			if missing <= 0 {
				continue
			}
			if _, err := store.AddMalus(team, missing); err != nil {
				return fmt.Errorf("failed to add malus to %s: %w", team, err)
			}
		}
		log.Info("Seeded division", "division", div, "name", d.Name, "teams", len(d.Teams))
	}
	return nil
}

// importResults saves every legacy record found in fsys. Games the store
// refuses are logged and skipped.
func importResults(store league.Store, fsys fs.FS) error {
	games, err := legacy.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("failed to read legacy results: %w", err)
	}
	imported := 0
	for _, g := range games {
		if err := store.SaveGame(g); err != nil {
			log.Warn("Skipping legacy game", "title", g.Title, "matchday", g.Matchday, "error", err)
			continue
		}
		imported++
	}
	log.Info("Imported legacy games", "imported", imported, "found", len(games))
	return nil
}
