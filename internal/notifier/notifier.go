package notifier

import "github.com/mauv0809/doubles-ladder/internal/ladder"

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For recorded matches
	SendMatchResult(record *ladder.MatchRecord, dryRun bool) error
	// For slash commands and scheduled posts
	SendLeaderboard(players []ladder.Player, dryRun bool) error

	// For formatting responses for slash commands
	FormatLeaderboardResponse(players []ladder.Player) (any, error)
	FormatTeamLeaderboardResponse(teams []ladder.TeamStats) (any, error)
	FormatPlayerStatsResponse(player *ladder.Player, query string) (any, error)
	FormatPlayerNotFoundResponse(query string) (any, error)
}
