package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"
)

var team string

func init() {
	rosterCmd.Flags().StringVar(&team, "team", "", "Only list members of this team (2 or 3)")
	dashboardCmd.Flags().StringVar(&team, "team", "", "Scope the dashboard to one team (2, 3 or all)")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(rosterCmd)
	rootCmd.AddCommand(trainingsCmd)
	rootCmd.AddCommand(matchesCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(newsCmd)
	rootCmd.AddCommand(metricsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the backend mode and collection sizes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/status")
	},
}

var rosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "List the roster",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest(withTeam("/roster"))
	},
}

var trainingsCmd = &cobra.Command{
	Use:   "trainings [session id]",
	Short: "List training sessions, or show one with its call sheet",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			return performGetRequest("/trainings/" + url.PathEscape(args[0]))
		}
		return performGetRequest("/trainings")
	},
}

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "List matches, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/matches")
	},
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the attendance and match dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest(withTeam("/stats/dashboard"))
	},
}

var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "List the active news links",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/news")
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

func withTeam(endpoint string) string {
	if team == "" {
		return endpoint
	}
	return endpoint + "?team=" + url.QueryEscape(team)
}

func performGetRequest(endpoint string) error {
	target := host + endpoint
	fmt.Printf("Making request to %s\n", target)

	resp, err := http.Get(target)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
