package config

import "github.com/mauv0809/league-reporter/internal/game"

// Config holds all configuration for the application.
type Config struct {
	DBName    string
	Port      string
	Slack     SlackConfig
	Turso     TursoConfig
	ProjectID string
	League    LeagueConfig
}

type SlackConfig struct {
	Token         string
	ChannelID     string
	SigningSecret string
	// AdminUserIDs may run the commands that change stored games.
	AdminUserIDs map[string]bool
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}

type LeagueConfig struct {
	RecordingHost   string
	RatioMinMinutes int
	DivisionNames   map[game.Division]string
}
