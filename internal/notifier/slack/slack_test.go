package slack

import (
	"context"
	"errors"
	"testing"

	"github.com/mauv0809/doubles-ladder/internal/ladder"
	"github.com/mauv0809/doubles-ladder/internal/metrics"
	"github.com/mauv0809/doubles-ladder/internal/rating"
	"github.com/mauv0809/doubles-ladder/internal/team"
	slackapi "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSlackAPI is a mock implementation of the parts of the slack.Client that we use.
type mockSlackAPI struct {
	postMessageContextFunc func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

func (m *mockSlackAPI) PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
	if m.postMessageContextFunc != nil {
		return m.postMessageContextFunc(ctx, channelID, options...)
	}
	return "C12345", "123456789.12345", nil
}

func shutoutRecord() *ladder.MatchRecord {
	return &ladder.MatchRecord{
		Match: ladder.Match{
			ID:          "m1",
			Team1:       team.Key{Low: 1, High: 2},
			Team2:       team.Key{Low: 3, High: 4},
			Date:        "2024-01-11",
			Team1Points: 0,
			Team2Points: 21,
			Winner:      rating.TeamTwo,
		},
		Result: rating.Result{
			Winner:        rating.TeamTwo,
			Team1Expected: 0.5,
			Team2Expected: 0.5,
			Scaling:       2,
			Team1Delta:    -21,
			Team2Delta:    21,
		},
		PlayerNames: map[int64]string{1: "Player A", 2: "Player B", 3: "Player C", 4: "Player D"},
	}
}

func TestSendMessage_DryRun(t *testing.T) {
	metrics := metrics.NewMock()
	// Pass nil for the api, as it shouldn't be called in dry-run mode.
	notifier := NewNotifierWithAPI(nil, "C123", metrics)

	message := slackapi.NewBlockMessage()
	_, _, err := notifier.sendMessage(message, true)
	require.NoError(t, err)
	assert.Equal(t, 0, metrics.SlackNotifSent())
}

func TestSendMessage_Success(t *testing.T) {
	postMessageCalled := false
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			assert.Equal(t, "C123", channelID)
			return "C123", "ts123", nil
		},
	}

	metrics := metrics.NewMock()
	notifier := NewNotifierWithAPI(api, "C123", metrics)

	message := slackapi.NewBlockMessage(slackapi.NewSectionBlock(slackapi.NewTextBlockObject("plain_text", "hello", false, false), nil, nil))
	_, _, err := notifier.sendMessage(message, false)

	require.NoError(t, err)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called")
	assert.Equal(t, 1, metrics.SlackNotifSent())
	assert.Equal(t, 0, metrics.SlackNotifFailed())
}

func TestSendMessage_Failure(t *testing.T) {
	expectedErr := errors.New("slack API is down")
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			return "", "", expectedErr
		},
	}

	metrics := metrics.NewMock()
	notifier := NewNotifierWithAPI(api, "C123", metrics)

	_, _, err := notifier.sendMessage(slackapi.NewBlockMessage(), false)

	require.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
	assert.Equal(t, 0, metrics.SlackNotifSent())
	assert.Equal(t, 1, metrics.SlackNotifFailed())
}

func TestSendMatchResult(t *testing.T) {
	calls := 0
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			calls++
			return "C123", "ts123", nil
		},
	}
	notifier := NewNotifierWithAPI(api, "C123", metrics.NewMock())

	require.NoError(t, notifier.SendMatchResult(shutoutRecord(), false))
	assert.Equal(t, 1, calls)

	dry := shutoutRecord()
	dry.DryRun = true
	require.NoError(t, notifier.SendMatchResult(dry, false))
	assert.Equal(t, 1, calls, "a dry-run record is never posted")
}

func TestFormatMatchResult(t *testing.T) {
	client := &Notifier{channelID: "C123"}
	msg := client.formatMatchResult(shutoutRecord())

	require.Len(t, msg.Blocks.BlockSet, 4)

	header, ok := msg.Blocks.BlockSet[0].(*slackapi.HeaderBlock)
	require.True(t, ok)
	assert.Equal(t, "🪜 Ladder match recorded 🪜", header.Text.Text)

	details, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
	require.True(t, ok)
	assert.Equal(t, "Thursday, 11th Jan 2024", details.Text.Text)

	result, ok := msg.Blocks.BlockSet[2].(*slackapi.SectionBlock)
	require.True(t, ok)
	assert.Equal(t, "Result: Player C & Player D beat Player A & Player B 21-0 🏆", result.Text.Text)
	require.Len(t, result.Fields, 2)
	assert.Equal(t, "Player A & Player B\n• Points: 0\n• Rating: -21.0 each", result.Fields[0].Text)
	assert.Equal(t, "Player C & Player D\n• Points: 21\n• Rating: +21.0 each", result.Fields[1].Text)

	contextBlock, ok := msg.Blocks.BlockSet[3].(*slackapi.ContextBlock)
	require.True(t, ok)
	require.Len(t, contextBlock.ContextElements.Elements, 1)
	element, ok := contextBlock.ContextElements.Elements[0].(*slackapi.TextBlockObject)
	require.True(t, ok)
	assert.Equal(t, "Win chance 50% vs 50% | Margin factor x2.00", element.Text)
}

func TestFormatLeaderboard(t *testing.T) {
	t.Run("displays leaderboard with ratings", func(t *testing.T) {
		players := []ladder.Player{
			{Name: "Player A", Rating: 1242, Wins: 8, Losses: 2, PointsWon: 190, PointsLost: 120},
			{Name: "Player B", Rating: 1210, Wins: 6, Losses: 4},
			{Name: "Player C", Rating: 1180, Wins: 4, Losses: 6},
		}

		client := &Notifier{channelID: "C123"}
		msg := client.formatLeaderboard(players)

		require.Len(t, msg.Blocks.BlockSet, 4, "Expected 4 blocks (header + 3 players)")

		header, ok := msg.Blocks.BlockSet[0].(*slackapi.HeaderBlock)
		require.True(t, ok)
		assert.Equal(t, "🏆 Ladder Leaderboard 🏆", header.Text.Text)

		player1, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
		require.True(t, ok)
		assert.Contains(t, player1.Text.Text, "1. 🥇 Player A")
		assert.Contains(t, player1.Text.Text, "> Rating: 1242 | Match Win %: 80.00% (8/10) | Points: 190-120")

		player3, ok := msg.Blocks.BlockSet[3].(*slackapi.SectionBlock)
		require.True(t, ok)
		assert.Contains(t, player3.Text.Text, "3. 🥉 Player C")
	})

	t.Run("displays message when no players exist", func(t *testing.T) {
		client := &Notifier{channelID: "C123"}
		msg := client.formatLeaderboard([]ladder.Player{})

		require.Len(t, msg.Blocks.BlockSet, 2, "Expected 2 blocks (header + message)")

		message, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
		require.True(t, ok)
		assert.Equal(t, "No players on the ladder yet. Register some and go play!", message.Text.Text)
	})
}

func TestFormatTeamLeaderboard(t *testing.T) {
	client := &Notifier{channelID: "C123"}

	teams := []ladder.TeamStats{
		{Player1Name: "Player A", Player2Name: "Player B", Wins: 3, Losses: 1, AverageRating: 1225.5},
		{Player1Name: "Player C", Player2Name: "Player D", Wins: 1, Losses: 3, AverageRating: 1174.5},
	}
	msg := client.formatTeamLeaderboard(teams)
	require.Len(t, msg.Blocks.BlockSet, 3)

	first, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
	require.True(t, ok)
	assert.Equal(t, "1. 🥇 Player A & Player B\n> *Record*: 3-1 | *Avg rating*: 1226", first.Text.Text)

	empty := client.formatTeamLeaderboard(nil)
	require.Len(t, empty.Blocks.BlockSet, 2)
}

func TestFormatPlayerStats(t *testing.T) {
	client := &Notifier{channelID: "C123"}

	t.Run("formats stats for a found player", func(t *testing.T) {
		p := &ladder.Player{Name: "Morten Voss", Rating: 1234.56, Wins: 8, Losses: 2, PointsWon: 190, PointsLost: 96}

		msg := client.formatPlayerStats(p, "Morten")
		require.Len(t, msg.Blocks.BlockSet, 2)

		header, ok := msg.Blocks.BlockSet[0].(*slackapi.HeaderBlock)
		require.True(t, ok)
		assert.Equal(t, "🏆 Stats for Morten Voss 🏆", header.Text.Text)

		section, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
		require.True(t, ok)
		assert.Contains(t, section.Text.Text, "> *Rating*: 1234.6")
		assert.Contains(t, section.Text.Text, "> *Match Win %*: 80.00% (8/10)")
		assert.Contains(t, section.Text.Text, "> *Points Lost*: 96")
	})

	t.Run("formats message for a player not found", func(t *testing.T) {
		msg := client.formatPlayerNotFound("Unknown Player")
		require.Len(t, msg.Blocks.BlockSet, 1)

		section, ok := msg.Blocks.BlockSet[0].(*slackapi.SectionBlock)
		require.True(t, ok)
		assert.Equal(t, "Sorry, I couldn't find a player matching *Unknown Player*. Try a different name.", section.Text.Text)
	})
}
