package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/mauv0809/league-reporter/internal/game"
)

const (
	defaultRecordingHost   = "thehax"
	defaultRatioMinMinutes = 14
)

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	cfg, err := FromEnv(os.LookupEnv)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	return cfg
}

// FromEnv builds the configuration from lookup, which is os.LookupEnv
// outside of tests.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	var missing []string
	// A helper function to get a required env var.
	getEnv := func(key string) string {
		if value, ok := lookup(key); ok && value != "" {
			return value
		}
		missing = append(missing, key)
		return ""
	}
	optional := func(key, fallback string) string {
		if value, ok := lookup(key); ok && value != "" {
			return value
		}
		return fallback
	}

	cfg := Config{
		DBName: getEnv("DB_NAME"),
		Port:   getEnv("PORT"),
		Slack: SlackConfig{
			Token:         getEnv("SLACK_BOT_TOKEN"),
			ChannelID:     getEnv("SLACK_CHANNEL_ID"),
			SigningSecret: getEnv("SLACK_SIGNING_SECRET"),
			AdminUserIDs:  parseList(optional("ADMIN_USER_IDS", "")),
		},
		Turso: TursoConfig{
			PrimaryURL: optional("TURSO_PRIMARY_URL", ""),
			AuthToken:  optional("TURSO_AUTH_TOKEN", ""),
		},
		ProjectID: optional("GCP_PROJECT", ""),
		League: LeagueConfig{
			RecordingHost: optional("RECORDING_HOST", defaultRecordingHost),
		},
	}
	if len(missing) > 0 {
		return cfg, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	minutes, err := strconv.Atoi(optional("RATIO_MIN_MINUTES", strconv.Itoa(defaultRatioMinMinutes)))
	if err != nil || minutes < 0 {
		return cfg, fmt.Errorf("RATIO_MIN_MINUTES must be a non-negative integer")
	}
	cfg.League.RatioMinMinutes = minutes

	names, err := ParseDivisionNames(optional("DIVISION_NAMES", ""))
	if err != nil {
		return cfg, err
	}
	cfg.League.DivisionNames = names
	return cfg, nil
}

// ParseDivisionNames reads "1:western,2:eastern".
func ParseDivisionNames(s string) (map[game.Division]string, error) {
	names := map[game.Division]string{}
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		num, name, ok := strings.Cut(pair, ":")
		div, err := strconv.Atoi(strings.TrimSpace(num))
		if !ok || err != nil || div <= 0 {
			return nil, fmt.Errorf("invalid DIVISION_NAMES entry %q, expected <number>:<name>", pair)
		}
		names[game.Division(div)] = strings.TrimSpace(name)
	}
	return names, nil
}

func parseList(s string) map[string]bool {
	set := map[string]bool{}
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			set[item] = true
		}
	}
	return set
}
