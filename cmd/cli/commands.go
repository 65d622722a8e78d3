package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"

	"github.com/mauv0809/league-reporter/internal/parser"
	"github.com/spf13/cobra"
)

var (
	matchday   int
	division   int
	stat       string
	ratio      bool
	minMinutes int
	outFile    string
	switched   bool
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(countersCmd)
	rootCmd.AddCommand(gamesCmd)
	rootCmd.AddCommand(playersCmd)
	rootCmd.AddCommand(standingsCmd)
	rootCmd.AddCommand(rebuildCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(parseCmd)

	gamesCmd.Flags().IntVar(&matchday, "matchday", 0, "Only list the games of this matchday")
	playersCmd.Flags().StringVar(&stat, "stat", "", "Rank players by this stat (time, goals, assists, saves, cs, og)")
	playersCmd.Flags().IntVar(&division, "div", 0, "Only rank players of this division")
	playersCmd.Flags().BoolVar(&ratio, "ratio", false, "Rank by stat per minute played")
	playersCmd.Flags().IntVar(&minMinutes, "min", -1, "Minutes needed to enter a ratio leaderboard, server default when negative")
	standingsCmd.Flags().IntVar(&division, "div", 0, "Only show this division")
	exportCmd.Flags().StringVarP(&outFile, "out", "o", "league.xlsx", "Where to write the workbook")
	parseCmd.Flags().BoolVar(&switched, "switched", false, "The half was played with sides switched")
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health", nil)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics", nil)
	},
}

var countersCmd = &cobra.Command{
	Use:   "counters",
	Short: "Get the lifetime counters kept in the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/api/counters", nil)
	},
}

var gamesCmd = &cobra.Command{
	Use:   "games",
	Short: "List stored games",
	RunE: func(cmd *cobra.Command, args []string) error {
		q := url.Values{}
		if matchday > 0 {
			q.Set("matchday", strconv.Itoa(matchday))
		}
		return performGetRequest("/api/games", q)
	},
}

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "List player totals or a leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		q := url.Values{}
		if stat != "" {
			q.Set("stat", stat)
		}
		if division > 0 {
			q.Set("div", strconv.Itoa(division))
		}
		if ratio {
			q.Set("ratio", "true")
			if minMinutes >= 0 {
				q.Set("min", strconv.Itoa(minMinutes))
			}
		}
		return performGetRequest("/api/players", q)
	},
}

var standingsCmd = &cobra.Command{
	Use:   "standings",
	Short: "Show the division tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		q := url.Values{}
		if division > 0 {
			q.Set("div", strconv.Itoa(division))
		}
		return performGetRequest("/api/standings", q)
	},
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Recompute player totals and standings from every stored game",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/rebuild", nil, os.Stdout)
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Download the league tables as an XLSX workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Create(outFile)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", outFile, err)
		}
		defer f.Close()
		if err := performRequest(http.MethodGet, "/api/export.xlsx", nil, f); err != nil {
			return err
		}
		fmt.Printf("Workbook written to %s\n", outFile)
		return nil
	},
}

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a half score-card locally and print the stats it holds",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		half, err := parser.ParseHalf(string(text), switched)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(half)
	},
}

func performGetRequest(endpoint string, query url.Values) error {
	return performRequest(http.MethodGet, endpoint, query, os.Stdout)
}

// performRequest calls the server and copies the response body to out.
func performRequest(method, endpoint string, query url.Values, out io.Writer) error {
	if query == nil {
		query = url.Values{}
	}
	if dryRun {
		query.Set("dry_run", "true")
	}
	target := host + endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	fmt.Fprintf(os.Stderr, "Making request to %s\n", target)

	req, err := http.NewRequest(method, target, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	fmt.Fprintf(os.Stderr, "Status Code: %d\n", resp.StatusCode)
	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server answered %d: %s", resp.StatusCode, body)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	return nil
}
