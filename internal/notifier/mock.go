package notifier

import (
	"sync"

	"github.com/mauv0809/doubles-ladder/internal/ladder"
)

var _ Notifier = (*Mock)(nil)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies
	SendMatchResultFunc func(record *ladder.MatchRecord, dryRun bool) error

	// Call records
	SendMatchResultCalls []struct {
		Record *ladder.MatchRecord
		DryRun bool
	}
	SendLeaderboardCalls [][]ladder.Player

	// Spies for format functions
	FormatLeaderboardResponseFunc     func(players []ladder.Player) (any, error)
	FormatTeamLeaderboardResponseFunc func(teams []ladder.TeamStats) (any, error)
	FormatPlayerStatsResponseFunc     func(player *ladder.Player, query string) (any, error)
	FormatPlayerNotFoundResponseFunc  func(query string) (any, error)

	// Call records for format functions
	LastLeaderboardResponse     any
	LastTeamLeaderboardResponse any
	LastPlayerStatsResponse     any
	LastPlayerNotFoundResponse  any
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendMatchResultCalls = nil
	m.SendLeaderboardCalls = nil
	m.LastLeaderboardResponse = nil
	m.LastTeamLeaderboardResponse = nil
	m.LastPlayerStatsResponse = nil
	m.LastPlayerNotFoundResponse = nil
}

func (m *Mock) SendMatchResult(record *ladder.MatchRecord, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendMatchResultCalls = append(m.SendMatchResultCalls, struct {
		Record *ladder.MatchRecord
		DryRun bool
	}{record, dryRun})
	if m.SendMatchResultFunc != nil {
		return m.SendMatchResultFunc(record, dryRun)
	}
	return nil
}

func (m *Mock) SendLeaderboard(players []ladder.Player, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendLeaderboardCalls = append(m.SendLeaderboardCalls, players)
	return nil
}

func (m *Mock) FormatLeaderboardResponse(players []ladder.Player) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatLeaderboardResponseFunc != nil {
		resp, err := m.FormatLeaderboardResponseFunc(players)
		m.LastLeaderboardResponse = resp
		return resp, err
	}
	return "formatted_leaderboard", nil
}

func (m *Mock) FormatTeamLeaderboardResponse(teams []ladder.TeamStats) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatTeamLeaderboardResponseFunc != nil {
		resp, err := m.FormatTeamLeaderboardResponseFunc(teams)
		m.LastTeamLeaderboardResponse = resp
		return resp, err
	}
	return "formatted_team_leaderboard", nil
}

func (m *Mock) FormatPlayerStatsResponse(player *ladder.Player, query string) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatPlayerStatsResponseFunc != nil {
		resp, err := m.FormatPlayerStatsResponseFunc(player, query)
		m.LastPlayerStatsResponse = resp
		return resp, err
	}
	return "formatted_player_stats", nil
}

func (m *Mock) FormatPlayerNotFoundResponse(query string) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatPlayerNotFoundResponseFunc != nil {
		resp, err := m.FormatPlayerNotFoundResponseFunc(query)
		m.LastPlayerNotFoundResponse = resp
		return resp, err
	}
	return "formatted_player_not_found", nil
}
