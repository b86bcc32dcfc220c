package ladder

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/doubles-ladder/internal/rating"
	"github.com/mauv0809/doubles-ladder/internal/team"
)

// sqlTx implements Tx on top of a database transaction.
type sqlTx struct {
	tx  *sql.Tx
	now int64
}

var _ Tx = (*sqlTx)(nil)

func (t *sqlTx) EnsureTeam(ctx context.Context, key team.Key) (bool, error) {
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO teams (player1_id, player2_id, created_at) VALUES (?, ?, ?)
		ON CONFLICT(player1_id, player2_id) DO NOTHING
	`, key.Low, key.High, t.now)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (t *sqlTx) PlayerRatings(ctx context.Context, playerIDs []int64) (map[int64]float64, error) {
	ratings := make(map[int64]float64, len(playerIDs))
	if len(playerIDs) == 0 {
		return ratings, nil
	}
	rows, err := t.tx.QueryContext(ctx, "SELECT id, rating FROM players WHERE id IN ("+placeholders(len(playerIDs))+")", ToAnySlice(playerIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var r float64
		if err := rows.Scan(&id, &r); err != nil {
			return nil, err
		}
		ratings[id] = r
	}
	return ratings, rows.Err()
}

func (t *sqlTx) PlayerNames(ctx context.Context, playerIDs []int64) (map[int64]string, error) {
	names := make(map[int64]string, len(playerIDs))
	if len(playerIDs) == 0 {
		return names, nil
	}
	rows, err := t.tx.QueryContext(ctx, "SELECT id, name FROM players WHERE id IN ("+placeholders(len(playerIDs))+")", ToAnySlice(playerIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}
	return names, rows.Err()
}

func (t *sqlTx) InsertMatch(ctx context.Context, m *Match) error {
	if m.CreatedAt == 0 {
		m.CreatedAt = t.now
	}
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO matches (`+matchColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.Team1.Low, m.Team1.High, m.Team2.Low, m.Team2.High,
		m.Date, m.Team1Points, m.Team2Points, m.Winner, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert match %s: %w", m.ID, err)
	}
	return nil
}

// ApplyPlayerUpdates adds the engine's increments to each player and logs the
// rating change against the match.
func (t *sqlTx) ApplyPlayerUpdates(ctx context.Context, matchID string, updates []rating.PlayerUpdate) error {
	stmt, err := t.tx.PrepareContext(ctx, `
		UPDATE players SET
			rating = rating + ?,
			wins = wins + ?,
			losses = losses + ?,
			points_won = points_won + ?,
			points_lost = points_lost + ?
		WHERE id = ?
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	historyStmt, err := t.tx.PrepareContext(ctx, `
		INSERT INTO rating_changes (match_id, player_id, rating_before, rating_after, delta, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer historyStmt.Close()

	for _, u := range updates {
		res, err := stmt.ExecContext(ctx, u.RatingDelta, u.Wins, u.Losses, u.PointsWon, u.PointsLost, u.PlayerID)
		if err != nil {
			return fmt.Errorf("failed to update player %d: %w", u.PlayerID, err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n != 1 {
			return fmt.Errorf("%w: player %d", ErrNotFound, u.PlayerID)
		}
		if _, err := historyStmt.ExecContext(ctx, matchID, u.PlayerID, u.RatingBefore, u.RatingAfter(), u.RatingDelta, t.now); err != nil {
			return fmt.Errorf("failed to record rating change for player %d: %w", u.PlayerID, err)
		}
		log.Debug("Updated player", "playerID", u.PlayerID, "delta", u.RatingDelta, "matchID", matchID)
	}
	return nil
}

func (t *sqlTx) ApplyTeamUpdate(ctx context.Context, key team.Key, update rating.TeamUpdate) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE teams SET wins = wins + ?, losses = losses + ?
		WHERE player1_id = ? AND player2_id = ?
	`, update.Wins, update.Losses, key.Low, key.High)
	if err != nil {
		return fmt.Errorf("failed to update team %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return fmt.Errorf("%w: team %s", ErrNotFound, key)
	}
	return nil
}
