package rating

import (
	"context"
	"fmt"
	"math"
)

// PlayerIDs returns the four players in submission order, team one first.
func (m MatchResult) PlayerIDs() []int64 {
	return []int64{m.Team1[0], m.Team1[1], m.Team2[0], m.Team2[1]}
}

// Winner determines the winning side strictly from the point totals.
func (m MatchResult) Winner() Winner {
	return DetermineWinner(m.Team1Points, m.Team2Points)
}

// Validate rejects matches that must never reach the ratings.
func (m MatchResult) Validate() error {
	ids := m.PlayerIDs()
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%w: player %d", ErrDuplicatePlayer, id)
		}
		seen[id] = struct{}{}
	}
	if !validPoints(m.Team1Points) || !validPoints(m.Team2Points) {
		return fmt.Errorf("%w: got %d-%d", ErrInvalidPoints, m.Team1Points, m.Team2Points)
	}
	if m.Winner() == NoWinner {
		return fmt.Errorf("%w: %d-%d", ErrTiedMatch, m.Team1Points, m.Team2Points)
	}
	return nil
}

func validPoints(p int) bool {
	return p >= 0 && p <= MaxGamePoints
}

// DetermineWinner returns the side with strictly more points, or NoWinner on a tie.
func DetermineWinner(team1Points, team2Points int) Winner {
	switch {
	case team1Points > team2Points:
		return TeamOne
	case team2Points > team1Points:
		return TeamTwo
	default:
		return NoWinner
	}
}

// ExpectedScore is the logistic probability that a side rated ra beats a side rated rb.
func ExpectedScore(ra, rb float64) float64 {
	return 1 / (1 + math.Pow(10, (rb-ra)/400))
}

// ScalingFactor grows the rating swing with the margin of victory.
func ScalingFactor(team1Points, team2Points int) float64 {
	diff := team1Points - team2Points
	if diff < 0 {
		diff = -diff
	}
	return 1 + float64(diff)/MaxPoints
}

// Delta is the rating change for a side with actual score s and expected score e.
func Delta(s, e, scaling float64) float64 {
	return KFactor * (s - e) * scaling
}

// Apply looks up the pre-match ratings of all four players and computes the result.
func Apply(ctx context.Context, lookup RatingLookup, m MatchResult) (Result, error) {
	if err := m.Validate(); err != nil {
		return Result{}, err
	}
	ratings, err := lookup.PlayerRatings(ctx, m.PlayerIDs())
	if err != nil {
		return Result{}, fmt.Errorf("failed to look up player ratings: %w", err)
	}
	return Compute(m, ratings)
}

// Compute derives every player and team update for m from the pre-match ratings.
// Nothing is computed unless all four ratings are present.
func Compute(m MatchResult, ratings map[int64]float64) (Result, error) {
	if err := m.Validate(); err != nil {
		return Result{}, err
	}
	for _, id := range m.PlayerIDs() {
		if _, ok := ratings[id]; !ok {
			return Result{}, fmt.Errorf("%w: %d", ErrPlayerNotFound, id)
		}
	}

	winner := m.Winner()
	res := Result{
		Winner:       winner,
		Team1Average: (ratings[m.Team1[0]] + ratings[m.Team1[1]]) / 2,
		Team2Average: (ratings[m.Team2[0]] + ratings[m.Team2[1]]) / 2,
		Scaling:      ScalingFactor(m.Team1Points, m.Team2Points),
	}
	res.Team1Expected = ExpectedScore(res.Team1Average, res.Team2Average)
	res.Team2Expected = ExpectedScore(res.Team2Average, res.Team1Average)

	var s1, s2 float64
	if winner == TeamOne {
		s1 = 1
	} else {
		s2 = 1
	}
	res.Team1Delta = Delta(s1, res.Team1Expected, res.Scaling)
	res.Team2Delta = Delta(s2, res.Team2Expected, res.Scaling)

	res.Teams[0] = teamUpdate(TeamOne, winner)
	res.Teams[1] = teamUpdate(TeamTwo, winner)

	res.Players = make([]PlayerUpdate, 0, 4)
	for _, id := range m.Team1 {
		res.Players = append(res.Players, playerUpdate(id, TeamOne, ratings[id], res.Team1Delta, m.Team1Points, m.Team2Points, res.Teams[0]))
	}
	for _, id := range m.Team2 {
		res.Players = append(res.Players, playerUpdate(id, TeamTwo, ratings[id], res.Team2Delta, m.Team2Points, m.Team1Points, res.Teams[1]))
	}
	return res, nil
}

func teamUpdate(side, winner Winner) TeamUpdate {
	if side == winner {
		return TeamUpdate{Side: side, Wins: 1}
	}
	return TeamUpdate{Side: side, Losses: 1}
}

func playerUpdate(id int64, side Winner, before, delta float64, scored, conceded int, team TeamUpdate) PlayerUpdate {
	return PlayerUpdate{
		PlayerID:     id,
		Side:         side,
		RatingBefore: before,
		RatingDelta:  delta,
		PointsWon:    scored,
		PointsLost:   conceded,
		Wins:         team.Wins,
		Losses:       team.Losses,
	}
}
