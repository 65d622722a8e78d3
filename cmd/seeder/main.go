package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/mauv0809/league-reporter/internal/database"
	"github.com/mauv0809/league-reporter/internal/league"
	"github.com/spf13/cobra"
)

var (
	registryFile string
	resultsDir   string
)

var rootCmd = &cobra.Command{
	Use:   "league-seeder",
	Short: "Seeds the league registries and imports legacy results",
	Long: `Writes the divisions, teams and malus points of a YAML registry file to
the database, and optionally imports a directory of legacy game records.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func init() {
	rootCmd.Flags().StringVar(&registryFile, "registry", "league.yaml", "YAML file holding the divisions, their teams and malus")
	rootCmd.Flags().StringVar(&resultsDir, "results", "", "Directory of legacy game records to import")
}

// Simplified config loading for the script
func loadConfig() (map[string]string, error) {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := make(map[string]string)
	for _, key := range []string{"DB_NAME", "TURSO_PRIMARY_URL", "TURSO_AUTH_TOKEN"} {
		config[key] = os.Getenv(key)
	}
	if config["DB_NAME"] == "" && config["TURSO_PRIMARY_URL"] == "" {
		return nil, fmt.Errorf("set DB_NAME for a local database or TURSO_PRIMARY_URL for a remote one")
	}
	return config, nil
}

func run() error {
	log.Info("Starting database seeder...")
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(registryFile)
	if err != nil {
		return fmt.Errorf("failed to read registry: %w", err)
	}
	registry, err := ParseRegistry(data)
	if err != nil {
		return err
	}

	db, teardown, err := database.InitDB(cfg["DB_NAME"], cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"])
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer teardown()
	store := league.New(db)

	if err := Seed(store, registry); err != nil {
		return fmt.Errorf("failed to seed registry: %w", err)
	}

	if resultsDir != "" {
		if err := importResults(store, os.DirFS(resultsDir)); err != nil {
			return err
		}
	}
	log.Info("Seeding done. Run a rebuild to refresh the league tables.")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error("Seeding failed", "error", err)
		os.Exit(1)
	}
}
