package ladder

import (
	"context"
	"sync"

	"github.com/mauv0809/doubles-ladder/internal/rating"
	"github.com/mauv0809/doubles-ladder/internal/team"
)

// MockStore is a mock implementation of the LadderStore interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	AddPlayerFunc        func(ctx context.Context, name string) (*Player, error)
	GetPlayerFunc        func(ctx context.Context, playerID int64) (*Player, error)
	GetPlayerByNameFunc  func(ctx context.Context, name string) (*Player, error)
	GetAllPlayersFunc    func(ctx context.Context) ([]Player, error)
	GetAllTeamsFunc      func(ctx context.Context) ([]TeamStats, error)
	GetTeamFunc          func(ctx context.Context, key team.Key) (*TeamStats, error)
	GetAllMatchesFunc    func(ctx context.Context) ([]Match, error)
	GetMatchFunc         func(ctx context.Context, matchID string) (*Match, error)
	GetRatingHistoryFunc func(ctx context.Context, playerID int64) ([]RatingChange, error)
	WithTxFunc           func(ctx context.Context, fn func(tx Tx) error) error

	// Tx is handed to fn by WithTx when WithTxFunc is not set.
	Tx *MockTx

	// Call records
	AddPlayerCalls       []string
	GetPlayerByNameCalls []string
	WithTxCalls          int
}

// NewMock creates a new mock store with an empty MockTx.
func NewMock() *MockStore {
	return &MockStore{Tx: NewMockTx()}
}

func (m *MockStore) AddPlayer(ctx context.Context, name string) (*Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddPlayerCalls = append(m.AddPlayerCalls, name)
	if m.AddPlayerFunc != nil {
		return m.AddPlayerFunc(ctx, name)
	}
	return &Player{Name: name, Rating: rating.DefaultRating}, nil
}

func (m *MockStore) GetPlayer(ctx context.Context, playerID int64) (*Player, error) {
	if m.GetPlayerFunc != nil {
		return m.GetPlayerFunc(ctx, playerID)
	}
	return nil, ErrNotFound
}

func (m *MockStore) GetPlayerByName(ctx context.Context, name string) (*Player, error) {
	m.mu.Lock()
	m.GetPlayerByNameCalls = append(m.GetPlayerByNameCalls, name)
	m.mu.Unlock()
	if m.GetPlayerByNameFunc != nil {
		return m.GetPlayerByNameFunc(ctx, name)
	}
	return nil, ErrNotFound
}

func (m *MockStore) GetAllPlayers(ctx context.Context) ([]Player, error) {
	if m.GetAllPlayersFunc != nil {
		return m.GetAllPlayersFunc(ctx)
	}
	return []Player{}, nil
}

func (m *MockStore) GetAllTeams(ctx context.Context) ([]TeamStats, error) {
	if m.GetAllTeamsFunc != nil {
		return m.GetAllTeamsFunc(ctx)
	}
	return []TeamStats{}, nil
}

func (m *MockStore) GetTeam(ctx context.Context, key team.Key) (*TeamStats, error) {
	if m.GetTeamFunc != nil {
		return m.GetTeamFunc(ctx, key)
	}
	return nil, ErrNotFound
}

func (m *MockStore) GetAllMatches(ctx context.Context) ([]Match, error) {
	if m.GetAllMatchesFunc != nil {
		return m.GetAllMatchesFunc(ctx)
	}
	return []Match{}, nil
}

func (m *MockStore) GetMatch(ctx context.Context, matchID string) (*Match, error) {
	if m.GetMatchFunc != nil {
		return m.GetMatchFunc(ctx, matchID)
	}
	return nil, ErrNotFound
}

func (m *MockStore) GetRatingHistory(ctx context.Context, playerID int64) ([]RatingChange, error) {
	if m.GetRatingHistoryFunc != nil {
		return m.GetRatingHistoryFunc(ctx, playerID)
	}
	return []RatingChange{}, nil
}

func (m *MockStore) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	m.mu.Lock()
	m.WithTxCalls++
	m.mu.Unlock()
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, fn)
	}
	return fn(m.Tx)
}

// MockTx is a mock implementation of Tx. Ratings and Names back the lookups when
// the corresponding Func is not set.
type MockTx struct {
	mu sync.Mutex

	Ratings map[int64]float64
	Names   map[int64]string

	EnsureTeamFunc         func(ctx context.Context, key team.Key) (bool, error)
	InsertMatchFunc        func(ctx context.Context, match *Match) error
	ApplyPlayerUpdatesFunc func(ctx context.Context, matchID string, updates []rating.PlayerUpdate) error
	ApplyTeamUpdateFunc    func(ctx context.Context, key team.Key, update rating.TeamUpdate) error

	EnsureTeamCalls         []team.Key
	InsertMatchCalls        []*Match
	ApplyPlayerUpdatesCalls [][]rating.PlayerUpdate
	ApplyTeamUpdateCalls    []struct {
		Key    team.Key
		Update rating.TeamUpdate
	}
}

// NewMockTx creates an empty MockTx.
func NewMockTx() *MockTx {
	return &MockTx{
		Ratings: make(map[int64]float64),
		Names:   make(map[int64]string),
	}
}

func (m *MockTx) EnsureTeam(ctx context.Context, key team.Key) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EnsureTeamCalls = append(m.EnsureTeamCalls, key)
	if m.EnsureTeamFunc != nil {
		return m.EnsureTeamFunc(ctx, key)
	}
	return true, nil
}

func (m *MockTx) PlayerRatings(ctx context.Context, playerIDs []int64) (map[int64]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[int64]float64)
	for _, id := range playerIDs {
		if r, ok := m.Ratings[id]; ok {
			out[id] = r
		}
	}
	return out, nil
}

func (m *MockTx) PlayerNames(ctx context.Context, playerIDs []int64) (map[int64]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[int64]string)
	for _, id := range playerIDs {
		if n, ok := m.Names[id]; ok {
			out[id] = n
		}
	}
	return out, nil
}

func (m *MockTx) InsertMatch(ctx context.Context, match *Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InsertMatchCalls = append(m.InsertMatchCalls, match)
	if m.InsertMatchFunc != nil {
		return m.InsertMatchFunc(ctx, match)
	}
	return nil
}

func (m *MockTx) ApplyPlayerUpdates(ctx context.Context, matchID string, updates []rating.PlayerUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ApplyPlayerUpdatesCalls = append(m.ApplyPlayerUpdatesCalls, updates)
	if m.ApplyPlayerUpdatesFunc != nil {
		return m.ApplyPlayerUpdatesFunc(ctx, matchID, updates)
	}
	return nil
}

func (m *MockTx) ApplyTeamUpdate(ctx context.Context, key team.Key, update rating.TeamUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ApplyTeamUpdateCalls = append(m.ApplyTeamUpdateCalls, struct {
		Key    team.Key
		Update rating.TeamUpdate
	}{key, update})
	if m.ApplyTeamUpdateFunc != nil {
		return m.ApplyTeamUpdateFunc(ctx, key, update)
	}
	return nil
}
