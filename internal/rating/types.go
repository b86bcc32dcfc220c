package rating

import "context"

const (
	// DefaultRating is the rating every newly registered player starts from.
	DefaultRating = 1200.0
	// MaxPoints is the maximum number of points in a game.
	MaxPoints = 21
	// MaxGamePoints bounds the score of either side, leaving room for extended games.
	MaxGamePoints = 30
	// KFactor caps how far a single match can move a team's rating.
	KFactor = 21.0
)

// Winner identifies the winning side of a match.
type Winner int

const (
	NoWinner Winner = 0
	TeamOne  Winner = 1
	TeamTwo  Winner = 2
)

// Pair is the two players of one side, in the order they were submitted.
type Pair [2]int64

// MatchResult is a completed match as submitted by the caller.
type MatchResult struct {
	Team1       Pair `json:"team1" msgpack:"team1"`
	Team2       Pair `json:"team2" msgpack:"team2"`
	Team1Points int  `json:"team1_points" msgpack:"team1_points"`
	Team2Points int  `json:"team2_points" msgpack:"team2_points"`
}

// PlayerUpdate is the set of increments to apply to one player.
type PlayerUpdate struct {
	PlayerID     int64   `json:"player_id" msgpack:"player_id"`
	Side         Winner  `json:"side" msgpack:"side"`
	RatingBefore float64 `json:"rating_before" msgpack:"rating_before"`
	RatingDelta  float64 `json:"rating_delta" msgpack:"rating_delta"`
	PointsWon    int     `json:"points_won" msgpack:"points_won"`
	PointsLost   int     `json:"points_lost" msgpack:"points_lost"`
	Wins         int     `json:"wins" msgpack:"wins"`
	Losses       int     `json:"losses" msgpack:"losses"`
}

// RatingAfter is the player's rating once the update is applied.
func (u PlayerUpdate) RatingAfter() float64 {
	return u.RatingBefore + u.RatingDelta
}

// TeamUpdate is the win/loss increment for one side.
type TeamUpdate struct {
	Side   Winner `json:"side" msgpack:"side"`
	Wins   int    `json:"wins" msgpack:"wins"`
	Losses int    `json:"losses" msgpack:"losses"`
}

// Result holds everything the engine derived from a single match.
type Result struct {
	Winner        Winner         `json:"winner" msgpack:"winner"`
	Team1Average  float64        `json:"team1_average" msgpack:"team1_average"`
	Team2Average  float64        `json:"team2_average" msgpack:"team2_average"`
	Team1Expected float64        `json:"team1_expected" msgpack:"team1_expected"`
	Team2Expected float64        `json:"team2_expected" msgpack:"team2_expected"`
	Scaling       float64        `json:"scaling" msgpack:"scaling"`
	Team1Delta    float64        `json:"team1_delta" msgpack:"team1_delta"`
	Team2Delta    float64        `json:"team2_delta" msgpack:"team2_delta"`
	Players       []PlayerUpdate `json:"players" msgpack:"players"`
	Teams         [2]TeamUpdate  `json:"teams" msgpack:"teams"`
}

// RatingLookup resolves the current rating of each requested player.
// Players that do not exist are simply absent from the returned map.
type RatingLookup interface {
	PlayerRatings(ctx context.Context, playerIDs []int64) (map[int64]float64, error)
}
