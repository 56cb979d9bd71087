// internal/history/store.go
//
// Archive of finished games.
// Responsibilities:
//   - Record each finished session once and bump the owner's stats.
//   - Per-player history, per-user stats, and the leaderboard.
//   - Move guest games to an account on signup/login.
//
// Notes:
//   - Stats are kept only for identities with a users row; guests get history only.

package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/robalobadob/wordle/apps/game-session/internal/game"
)

// Game is one finished session as stored in the games table.
type Game struct {
	SessionID  string `json:"sessionId"`
	Outcome    string `json:"outcome"`
	Tries      int    `json:"tries"`
	StartedAt  string `json:"startedAt"`
	FinishedAt string `json:"finishedAt"`
}

// Stats are the counters kept per registered user.
type Stats struct {
	GamesPlayed int `json:"gamesPlayed"`
	Wins        int `json:"wins"`
	Streak      int `json:"streak"`
}

// LBRow is one leaderboard entry.
type LBRow struct {
	Username string `json:"username"`
	Wins     int    `json:"wins"`
	Streak   int    `json:"streak"`
	Played   int    `json:"gamesPlayed"`
}

// Store archives finished games and keeps user stats.
type Store struct{ db *sql.DB }

// NewStore wraps a migrated database handle.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// GameFinished records r and, when the player is a registered user, bumps
// their stats in the same transaction. A session is recorded at most once.
func (s *Store) GameFinished(ctx context.Context, r game.Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO games (session_id, player, outcome, tries, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		string(r.SessionID), string(r.User), string(r.Outcome), r.Tries,
		r.StartedAt.UTC().Format(time.RFC3339), r.FinishedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return tx.Commit()
	}
	if err := bumpStats(ctx, tx, string(r.User), r.Outcome == game.OutcomeWin); err != nil {
		return fmt.Errorf("bump stats: %w", err)
	}
	return tx.Commit()
}

// bumpStats increments games played; updates wins and streak based on result.
// Players without a users row (guests) are left alone.
func bumpStats(ctx context.Context, tx *sql.Tx, userID string, won bool) error {
	var gp, wins, streak int
	err := tx.QueryRowContext(ctx, `SELECT games_played, wins, streak FROM users WHERE id=?`, userID).
		Scan(&gp, &wins, &streak)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}
	gp++
	if won {
		wins++
		streak++
	} else {
		streak = 0
	}
	_, err = tx.ExecContext(ctx, `UPDATE users SET games_played=?, wins=?, streak=? WHERE id=?`, gp, wins, streak, userID)
	return err
}

// Games lists the most recent finished games of player.
func (s *Store) Games(ctx context.Context, player game.Identity, limit int) ([]Game, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, outcome, tries, started_at, finished_at
		FROM games WHERE player=?
		ORDER BY finished_at DESC LIMIT ?`, string(player), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Game{}
	for rows.Next() {
		var g Game
		if err := rows.Scan(&g.SessionID, &g.Outcome, &g.Tries, &g.StartedAt, &g.FinishedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// Stats returns the counters of a registered user.
func (s *Store) Stats(ctx context.Context, userID string) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, `SELECT games_played, wins, streak FROM users WHERE id=?`, userID).
		Scan(&st.GamesPlayed, &st.Wins, &st.Streak)
	return st, err
}

// Claim transfers games played under a guest identity to a registered one.
func (s *Store) Claim(ctx context.Context, from, to game.Identity) error {
	if from == "" || to == "" || from == to {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `UPDATE games SET player=? WHERE player=?`, string(to), string(from))
	return err
}

// Leaderboard ranks registered users by wins, then streak.
func (s *Store) Leaderboard(ctx context.Context, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, wins, streak, games_played
		FROM users
		WHERE games_played > 0
		ORDER BY wins DESC, streak DESC, username ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]LBRow, 0, limit)
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.Username, &r.Wins, &r.Streak, &r.Played); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
