package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/doubles-ladder/internal/ladder"
	"github.com/mauv0809/doubles-ladder/internal/metrics"
	"github.com/mauv0809/doubles-ladder/internal/notifier"
	"github.com/mauv0809/doubles-ladder/internal/rating"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", s.channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

func (s *Notifier) SendMatchResult(record *ladder.MatchRecord, dryRun bool) error {
	msg := s.formatMatchResult(record)
	_, _, err := s.sendMessage(msg, dryRun || record.DryRun)
	return err
}

func (s *Notifier) SendLeaderboard(players []ladder.Player, dryRun bool) error {
	msg := s.formatLeaderboard(players)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

// FormatLeaderboardResponse formats a leaderboard message for a slash command response.
func (s *Notifier) FormatLeaderboardResponse(players []ladder.Player) (any, error) {
	return s.formatLeaderboard(players), nil
}

// FormatTeamLeaderboardResponse formats the team standings for a slash command response.
func (s *Notifier) FormatTeamLeaderboardResponse(teams []ladder.TeamStats) (any, error) {
	return s.formatTeamLeaderboard(teams), nil
}

// FormatPlayerStatsResponse formats a player stats message for a slash command response.
func (s *Notifier) FormatPlayerStatsResponse(player *ladder.Player, query string) (any, error) {
	return s.formatPlayerStats(player, query), nil
}

// FormatPlayerNotFoundResponse formats a player not found message for a slash command response.
func (s *Notifier) FormatPlayerNotFoundResponse(query string) (any, error) {
	return s.formatPlayerNotFound(query), nil
}

func medal(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	}
	return ""
}

// formatMatchResult creates the Slack message for a recorded match using Block Kit.
func (s *Notifier) formatMatchResult(record *ladder.MatchRecord) slack.Message {
	blocks := make([]slack.Block, 0)
	m := record.Match
	res := record.Result

	headerText := slack.NewTextBlockObject("plain_text", "🪜 Ladder match recorded 🪜", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", ladder.DateLabel(m.Date), false, false), nil, nil))

	team1, team2 := record.TeamName(rating.TeamOne), record.TeamName(rating.TeamTwo)
	winner, loser := team1, team2
	winnerPoints, loserPoints := m.Team1Points, m.Team2Points
	if res.Winner == rating.TeamTwo {
		winner, loser = team2, team1
		winnerPoints, loserPoints = loserPoints, winnerPoints
	}
	resultText := fmt.Sprintf("Result: %s beat %s %d-%d 🏆", winner, loser, winnerPoints, loserPoints)

	fields := []*slack.TextBlockObject{
		slack.NewTextBlockObject("plain_text", fmt.Sprintf("%s\n• Points: %d\n• Rating: %+.1f each", team1, m.Team1Points, res.Team1Delta), true, false),
		slack.NewTextBlockObject("plain_text", fmt.Sprintf("%s\n• Points: %d\n• Rating: %+.1f each", team2, m.Team2Points, res.Team2Delta), true, false),
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", resultText, true, false), fields, nil))

	contextText := fmt.Sprintf("Win chance %.0f%% vs %.0f%% | Margin factor x%.2f",
		res.Team1Expected*100, res.Team2Expected*100, res.Scaling)
	blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", contextText, true, false)))

	return slack.NewBlockMessage(blocks...)
}

// formatLeaderboard creates a Slack message to display the player leaderboard.
func (s *Notifier) formatLeaderboard(players []ladder.Player) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🏆 Ladder Leaderboard 🏆", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(players) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No players on the ladder yet. Register some and go play!", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	for i, p := range players {
		rank := i + 1
		playerText := fmt.Sprintf("%d. %s %s\n> Rating: %.0f | Match Win %%: %.2f%% (%d/%d) | Points: %d-%d",
			rank,
			medal(rank),
			p.Name,
			p.Rating,
			p.WinPercentage(),
			p.Wins,
			p.MatchesPlayed(),
			p.PointsWon,
			p.PointsLost,
		)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", playerText, true, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatTeamLeaderboard lists teams by wins.
func (s *Notifier) formatTeamLeaderboard(teams []ladder.TeamStats) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🏆 Team Leaderboard 🏆", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(teams) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No teams have played yet.", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	for i, t := range teams {
		rank := i + 1
		teamText := fmt.Sprintf("%d. %s %s\n> *Record*: %d-%d | *Avg rating*: %.0f",
			rank,
			medal(rank),
			t.Name(),
			t.Wins,
			t.Losses,
			t.AverageRating,
		)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", teamText, false, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatPlayerStats creates a Slack message to display a single player's stats.
func (s *Notifier) formatPlayerStats(p *ladder.Player, query string) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := fmt.Sprintf("🏆 Stats for %s 🏆", p.Name)
	blocks = append(blocks, slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", headerText, true, false)))

	playerText := fmt.Sprintf("> *Rating*: %.1f\n> *Match Win %%*: %.2f%% (%d/%d)\n> *Points Won*: %d\n> *Points Lost*: %d",
		p.Rating,
		p.WinPercentage(),
		p.Wins,
		p.MatchesPlayed(),
		p.PointsWon,
		p.PointsLost,
	)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", playerText, false, false), nil, nil))

	return slack.NewBlockMessage(blocks...)
}

// formatPlayerNotFound creates a Slack message for when a player's stats are not found.
func (s *Notifier) formatPlayerNotFound(query string) slack.Message {
	text := fmt.Sprintf("Sorry, I couldn't find a player matching *%s*. Try a different name.", query)
	return slack.NewBlockMessage(
		slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", text, false, false), nil, nil),
	)
}
