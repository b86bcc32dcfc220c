package ladder

import (
	"database/sql"
	"errors"
	"sync"

	"github.com/mauv0809/doubles-ladder/internal/rating"
	"github.com/mauv0809/doubles-ladder/internal/team"
)

var (
	ErrNotFound    = errors.New("requested resource not found")
	ErrInvalidName = errors.New("player name is required")
)

// DateLayout is the format of Match.Date.
const DateLayout = "2006-01-02"

// store handles all database operations for the ladder.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Player is a registered player and their cumulative record.
type Player struct {
	ID         int64   `json:"id" msgpack:"id"`
	Name       string  `json:"name" msgpack:"name"`
	Wins       int     `json:"wins" msgpack:"wins"`
	Losses     int     `json:"losses" msgpack:"losses"`
	Rating     float64 `json:"rating" msgpack:"rating"`
	PointsWon  int     `json:"points_won" msgpack:"points_won"`
	PointsLost int     `json:"points_lost" msgpack:"points_lost"`
	CreatedAt  int64   `json:"created_at" msgpack:"created_at"`
}

// MatchesPlayed is wins plus losses.
func (p Player) MatchesPlayed() int {
	return p.Wins + p.Losses
}

// WinPercentage is 0 for a player without matches.
func (p Player) WinPercentage() float64 {
	if p.MatchesPlayed() == 0 {
		return 0
	}
	return float64(p.Wins) / float64(p.MatchesPlayed()) * 100
}

// TeamStats is a team joined with its players for display.
type TeamStats struct {
	Key           team.Key `json:"key"`
	ID            string   `json:"id"`
	Player1Name   string   `json:"player1_name"`
	Player2Name   string   `json:"player2_name"`
	Wins          int      `json:"wins"`
	Losses        int      `json:"losses"`
	Player1Rating float64  `json:"player1_rating"`
	Player2Rating float64  `json:"player2_rating"`
	AverageRating float64  `json:"average_rating"`
}

// Name is the display name of the team.
func (t TeamStats) Name() string {
	return TeamLabel(t.Player1Name, t.Player2Name)
}

// TeamLabel is the display name of a team, e.g. "Ann & Bo".
func TeamLabel(player1, player2 string) string {
	return player1 + " & " + player2
}

// Match is an immutable recorded match.
type Match struct {
	ID          string        `json:"id" msgpack:"id"`
	Team1       team.Key      `json:"team1" msgpack:"team1"`
	Team2       team.Key      `json:"team2" msgpack:"team2"`
	Date        string        `json:"date" msgpack:"date"`
	Team1Points int           `json:"team1_points" msgpack:"team1_points"`
	Team2Points int           `json:"team2_points" msgpack:"team2_points"`
	Winner      rating.Winner `json:"winner" msgpack:"winner"`
	CreatedAt   int64         `json:"created_at" msgpack:"created_at"`
}

// RatingChange is one player's rating movement caused by one match.
type RatingChange struct {
	MatchID      string  `json:"match_id"`
	PlayerID     int64   `json:"player_id"`
	MatchDate    string  `json:"match_date"`
	RatingBefore float64 `json:"rating_before"`
	RatingAfter  float64 `json:"rating_after"`
	Delta        float64 `json:"delta"`
	CreatedAt    int64   `json:"created_at"`
}

// MatchRecord is a recorded match together with the engine output that was applied.
// It is the payload of the match-recorded event.
type MatchRecord struct {
	Match       Match            `json:"match" msgpack:"match"`
	Result      rating.Result    `json:"result" msgpack:"result"`
	PlayerNames map[int64]string `json:"player_names" msgpack:"player_names"`
	DryRun      bool             `json:"dry_run" msgpack:"dry_run"`
}

// TeamName joins the names of the players of side, in canonical order.
func (r MatchRecord) TeamName(side rating.Winner) string {
	key := r.Match.Team1
	if side == rating.TeamTwo {
		key = r.Match.Team2
	}
	return TeamLabel(r.PlayerNames[key.Low], r.PlayerNames[key.High])
}

// MatchDay groups the matches played on one date.
type MatchDay struct {
	Date    string  `json:"date"`
	Label   string  `json:"label"`
	Matches []Match `json:"matches"`
}
