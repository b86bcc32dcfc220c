package ladder

import (
	"context"

	"github.com/mauv0809/doubles-ladder/internal/rating"
	"github.com/mauv0809/doubles-ladder/internal/team"
)

// LadderStore defines the interface for interacting with the ladder's data.
type LadderStore interface {
	AddPlayer(ctx context.Context, name string) (*Player, error)
	GetPlayer(ctx context.Context, playerID int64) (*Player, error)
	GetPlayerByName(ctx context.Context, name string) (*Player, error)
	GetAllPlayers(ctx context.Context) ([]Player, error)
	GetAllTeams(ctx context.Context) ([]TeamStats, error)
	GetTeam(ctx context.Context, key team.Key) (*TeamStats, error)
	GetAllMatches(ctx context.Context) ([]Match, error)
	GetMatch(ctx context.Context, matchID string) (*Match, error)
	GetRatingHistory(ctx context.Context, playerID int64) ([]RatingChange, error)
	// WithTx runs fn in a single transaction. It commits if fn returns nil and
	// rolls back otherwise, so a match is persisted entirely or not at all.
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the transactional view used while recording a match.
type Tx interface {
	team.Store
	rating.RatingLookup
	PlayerNames(ctx context.Context, playerIDs []int64) (map[int64]string, error)
	InsertMatch(ctx context.Context, match *Match) error
	ApplyPlayerUpdates(ctx context.Context, matchID string, updates []rating.PlayerUpdate) error
	ApplyTeamUpdate(ctx context.Context, key team.Key, update rating.TeamUpdate) error
}
