package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var (
	groupByDate bool
	team1Flag   string
	team2Flag   string
	scoreFlag   string
	dateFlag    string
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(playersCmd)
	rootCmd.AddCommand(playerCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(teamsCmd)
	rootCmd.AddCommand(matchesCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(postLeaderboardCmd)
	rootCmd.AddCommand(metricsCmd)

	matchesCmd.Flags().BoolVar(&groupByDate, "by-date", false, "Group matches per day")

	recordCmd.Flags().StringVar(&team1Flag, "team1", "", "Player ids of team 1, e.g. 1,2")
	recordCmd.Flags().StringVar(&team2Flag, "team2", "", "Player ids of team 2, e.g. 3,4")
	recordCmd.Flags().StringVar(&scoreFlag, "score", "", "Points of team 1 and team 2, e.g. 21-15")
	recordCmd.Flags().StringVar(&dateFlag, "date", "", "Match date as YYYY-MM-DD (default today)")
	_ = recordCmd.MarkFlagRequired("team1")
	_ = recordCmd.MarkFlagRequired("team2")
	_ = recordCmd.MarkFlagRequired("score")
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "List all players, highest rating first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/players")
	},
}

var playerCmd = &cobra.Command{
	Use:   "player [id]",
	Short: "Show a single player",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/players/" + url.PathEscape(args[0]))
	},
}

var historyCmd = &cobra.Command{
	Use:   "history [id]",
	Short: "Show the rating history of a player",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/players/" + url.PathEscape(args[0]) + "/history")
	},
}

var registerCmd = &cobra.Command{
	Use:   "register [name]",
	Short: "Register a new player",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/players", map[string]string{"name": strings.Join(args, " ")})
	},
}

var teamsCmd = &cobra.Command{
	Use:   "teams",
	Short: "List all teams that have played",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/teams")
	},
}

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "List recorded matches, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		if groupByDate {
			return performGetRequest("/matches?group=date")
		}
		return performGetRequest("/matches")
	},
}

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record a match result",
	Example: `  ladder-cli record --team1 1,2 --team2 3,4 --score 21-15
  ladder-cli record --team1 1,2 --team2 3,4 --score 18-21 --date 2024-01-11 --dry-run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sub, err := buildSubmission(team1Flag, team2Flag, scoreFlag, dateFlag)
		if err != nil {
			return err
		}
		return performPostRequest("/matches", sub)
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the ranked leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/leaderboard")
	},
}

var postLeaderboardCmd = &cobra.Command{
	Use:   "post-leaderboard",
	Short: "Post the leaderboard to the Slack channel",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/scheduled/leaderboard", nil)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

// submission mirrors the body of POST /matches.
type submission struct {
	Team1       [2]int64 `json:"team1"`
	Team2       [2]int64 `json:"team2"`
	Team1Points int      `json:"team1_points"`
	Team2Points int      `json:"team2_points"`
	Date        string   `json:"date,omitempty"`
}

func buildSubmission(team1, team2, score, date string) (submission, error) {
	var sub submission
	var err error
	if sub.Team1, err = parsePair(team1); err != nil {
		return sub, fmt.Errorf("team1: %w", err)
	}
	if sub.Team2, err = parsePair(team2); err != nil {
		return sub, fmt.Errorf("team2: %w", err)
	}
	if sub.Team1Points, sub.Team2Points, err = parseScore(score); err != nil {
		return sub, err
	}
	sub.Date = date
	return sub, nil
}

// parsePair parses "1,2" into two player ids.
func parsePair(s string) ([2]int64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return [2]int64{}, fmt.Errorf("expected two comma separated player ids, got %q", s)
	}
	var pair [2]int64
	for i, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return [2]int64{}, fmt.Errorf("invalid player id %q", p)
		}
		pair[i] = id
	}
	return pair, nil
}

// parseScore parses "21-15".
func parseScore(s string) (int, int, error) {
	a, b, ok := strings.Cut(s, "-")
	if !ok {
		return 0, 0, fmt.Errorf("expected score like 21-15, got %q", s)
	}
	p1, err1 := strconv.Atoi(strings.TrimSpace(a))
	p2, err2 := strconv.Atoi(strings.TrimSpace(b))
	if err1 != nil || err2 != nil {
		return 0, 0, fmt.Errorf("expected score like 21-15, got %q", s)
	}
	return p1, p2, nil
}

func endpointURL(endpoint string) string {
	u := host + endpoint
	if !dryRun {
		return u
	}
	if strings.Contains(endpoint, "?") {
		return u + "&dry_run=true"
	}
	return u + "?dry_run=true"
}

func performGetRequest(endpoint string) error {
	url := endpointURL(endpoint)
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	return printResponse(resp)
}

func performPostRequest(endpoint string, payload any) error {
	url := endpointURL(endpoint)
	fmt.Printf("Making request to %s\n", url)

	var body io.Reader = http.NoBody
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	resp, err := http.Post(url, "application/json", body)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	return nil
}
