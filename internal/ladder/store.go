package ladder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/doubles-ladder/internal/rating"
	"github.com/mauv0809/doubles-ladder/internal/team"
)

var _ LadderStore = (*store)(nil)

// New creates a new LadderStore.
func New(db *sql.DB) LadderStore {
	return &store{
		db: db,
	}
}

const playerColumns = "id, name, wins, losses, rating, points_won, points_lost, created_at"

// scanPlayer is a helper function to scan a single player row.
func scanPlayer(scanner interface{ Scan(...any) error }) (*Player, error) {
	var p Player
	err := scanner.Scan(&p.ID, &p.Name, &p.Wins, &p.Losses, &p.Rating, &p.PointsWon, &p.PointsLost, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// AddPlayer registers a new player with the default rating and an empty record.
func (s *store) AddPlayer(ctx context.Context, name string) (*Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().Unix()
	res, err := s.db.ExecContext(ctx, "INSERT INTO players (name, rating, created_at) VALUES (?, ?, ?)", name, rating.DefaultRating, now)
	if err != nil {
		log.Error("Failed to add player", "error", err, "name", name)
		return nil, fmt.Errorf("failed to add player: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read new player id: %w", err)
	}
	log.Info("Registered new player", "playerID", id, "name", name)
	return &Player{ID: id, Name: name, Rating: rating.DefaultRating, CreatedAt: now}, nil
}

func (s *store) GetPlayer(ctx context.Context, playerID int64) (*Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+playerColumns+" FROM players WHERE id = ?", playerID)
	p, err := scanPlayer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: player %d", ErrNotFound, playerID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return p, nil
}

// GetPlayerByName performs a case-insensitive, fuzzy search (e.g., "ann" will match
// "Annika Berg"). The highest rated match wins.
func (s *store) GetPlayerByName(ctx context.Context, name string) (*Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pattern := "%" + strings.TrimSpace(name) + "%"
	row := s.db.QueryRowContext(ctx, `
		SELECT `+playerColumns+`
		FROM players
		WHERE name LIKE ? COLLATE NOCASE
		ORDER BY rating DESC
		LIMIT 1
	`, pattern)
	p, err := scanPlayer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Info("No player found matching pattern", "pattern", pattern)
			return nil, fmt.Errorf("%w: player matching '%s'", ErrNotFound, name)
		}
		log.Error("Failed to query player by name", "error", err, "pattern", pattern)
		return nil, fmt.Errorf("database error: %w", err)
	}
	log.Debug("Found player by name", "player", p.Name)
	return p, nil
}

// GetAllPlayers returns every player, highest rating first.
func (s *store) GetAllPlayers(ctx context.Context) ([]Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT "+playerColumns+" FROM players ORDER BY rating DESC, name")
	if err != nil {
		log.Error("Failed to query all players", "error", err)
		return nil, err
	}
	defer rows.Close()

	players := []Player{}
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, *p)
	}
	return players, rows.Err()
}

const teamQuery = `
	SELECT t.player1_id, t.player2_id, p1.name, p2.name, t.wins, t.losses, p1.rating, p2.rating
	FROM teams t
	JOIN players p1 ON t.player1_id = p1.id
	JOIN players p2 ON t.player2_id = p2.id
`

func scanTeam(scanner interface{ Scan(...any) error }) (*TeamStats, error) {
	var t TeamStats
	err := scanner.Scan(&t.Key.Low, &t.Key.High, &t.Player1Name, &t.Player2Name, &t.Wins, &t.Losses, &t.Player1Rating, &t.Player2Rating)
	if err != nil {
		return nil, err
	}
	t.ID = t.Key.String()
	t.AverageRating = (t.Player1Rating + t.Player2Rating) / 2
	return &t, nil
}

// GetAllTeams returns every team that has played, most wins first.
func (s *store) GetAllTeams(ctx context.Context) ([]TeamStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, teamQuery+" ORDER BY t.wins DESC, t.losses ASC, t.player1_id, t.player2_id")
	if err != nil {
		log.Error("Failed to query all teams", "error", err)
		return nil, err
	}
	defer rows.Close()

	teams := []TeamStats{}
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		teams = append(teams, *t)
	}
	return teams, rows.Err()
}

func (s *store) GetTeam(ctx context.Context, key team.Key) (*TeamStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, teamQuery+" WHERE t.player1_id = ? AND t.player2_id = ?", key.Low, key.High)
	t, err := scanTeam(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: team %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return t, nil
}

const matchColumns = `id, team1_player1_id, team1_player2_id, team2_player1_id, team2_player2_id,
	date, team1_points, team2_points, winner, created_at`

func scanMatch(scanner interface{ Scan(...any) error }) (*Match, error) {
	var m Match
	err := scanner.Scan(
		&m.ID, &m.Team1.Low, &m.Team1.High, &m.Team2.Low, &m.Team2.High,
		&m.Date, &m.Team1Points, &m.Team2Points, &m.Winner, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetAllMatches retrieves all matches, most recent first.
func (s *store) GetAllMatches(ctx context.Context) ([]Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT "+matchColumns+" FROM matches ORDER BY date DESC, created_at DESC")
	if err != nil {
		log.Error("Failed to query all matches", "error", err)
		return nil, err
	}
	defer rows.Close()

	matches := []Match{}
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}

func (s *store) GetMatch(ctx context.Context, matchID string) (*Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, err := scanMatch(s.db.QueryRowContext(ctx, "SELECT "+matchColumns+" FROM matches WHERE id = ?", matchID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: match %s", ErrNotFound, matchID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return m, nil
}

// GetRatingHistory returns the rating changes of a player in the order they happened.
func (s *store) GetRatingHistory(ctx context.Context, playerID int64) ([]RatingChange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exists bool
	if err := s.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM players WHERE id = ?)", playerID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: player %d", ErrNotFound, playerID)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT rc.match_id, rc.player_id, m.date, rc.rating_before, rc.rating_after, rc.delta, rc.created_at
		FROM rating_changes rc
		JOIN matches m ON rc.match_id = m.id
		WHERE rc.player_id = ?
		ORDER BY rc.created_at ASC, rc.rowid ASC
	`, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := []RatingChange{}
	for rows.Next() {
		var rc RatingChange
		if err := rows.Scan(&rc.MatchID, &rc.PlayerID, &rc.MatchDate, &rc.RatingBefore, &rc.RatingAfter, &rc.Delta, &rc.CreatedAt); err != nil {
			return nil, err
		}
		history = append(history, rc)
	}
	return history, rows.Err()
}

// WithTx holds the write lock for the whole transaction.
func (s *store) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(&sqlTx{tx: tx, now: time.Now().Unix()}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error("Failed to roll back transaction", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// placeholders returns "?, ?, ..." for n arguments.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func ToAnySlice[T any](s []T) []any {
	a := make([]any, len(s))
	for i, v := range s {
		a[i] = v
	}
	return a
}
