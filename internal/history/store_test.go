package history

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordle/apps/game-session/internal/game"
)

func newTestStore(t *testing.T) (*Store, *sql.DB) {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(db))
	return NewStore(db), db
}

func addUser(t *testing.T, db *sql.DB, id, username string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO users (id, username, password_hash, created_at) VALUES (?,?,?,?)`,
		id, username, "x", time.Now().UTC().Format(time.RFC3339))
	require.NoError(t, err)
}

func result(user game.Identity, session string, o game.Outcome, tries int, finished time.Time) game.Result {
	return game.Result{
		User:       user,
		SessionID:  game.MessageID(session),
		Outcome:    o,
		Tries:      tries,
		StartedAt:  finished.Add(-time.Minute),
		FinishedAt: finished,
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	_, db := newTestStore(t)
	require.NoError(t, Migrate(db))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM _migrations`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestGameFinishedBumpsRegisteredUser(t *testing.T) {
	s, db := newTestStore(t)
	ctx := context.Background()
	addUser(t, db, "u1", "alice")
	t0 := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.GameFinished(ctx, result("u1", "s1", game.OutcomeWin, 3, t0)))
	require.NoError(t, s.GameFinished(ctx, result("u1", "s2", game.OutcomeWin, 2, t0.Add(time.Hour))))

	st, err := s.Stats(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, Stats{GamesPlayed: 2, Wins: 2, Streak: 2}, st)

	require.NoError(t, s.GameFinished(ctx, result("u1", "s3", game.OutcomeLose, 5, t0.Add(2*time.Hour))))
	st, err = s.Stats(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, Stats{GamesPlayed: 3, Wins: 2, Streak: 0}, st)

	games, err := s.Games(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, games, 3)
	assert.Equal(t, "s3", games[0].SessionID)
	assert.Equal(t, "lose", games[0].Outcome)
}

func TestGameFinishedRecordsSessionOnce(t *testing.T) {
	s, db := newTestStore(t)
	ctx := context.Background()
	addUser(t, db, "u1", "alice")
	r := result("u1", "s1", game.OutcomeWin, 1, time.Now())

	require.NoError(t, s.GameFinished(ctx, r))
	require.NoError(t, s.GameFinished(ctx, r))

	st, err := s.Stats(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, st.GamesPlayed)
}

func TestGuestGamesAndClaim(t *testing.T) {
	s, db := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.GameFinished(ctx, result("anon:x", "s1", game.OutcomeLose, 5, time.Now())))
	games, err := s.Games(ctx, "anon:x", 0)
	require.NoError(t, err)
	assert.Len(t, games, 1)

	addUser(t, db, "u1", "alice")
	require.NoError(t, s.Claim(ctx, "anon:x", "u1"))

	games, err = s.Games(ctx, "anon:x", 0)
	require.NoError(t, err)
	assert.Empty(t, games)
	games, err = s.Games(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Len(t, games, 1)
}

func TestLeaderboard(t *testing.T) {
	s, db := newTestStore(t)
	ctx := context.Background()
	addUser(t, db, "u1", "alice")
	addUser(t, db, "u2", "bob")
	addUser(t, db, "u3", "carol")
	now := time.Now()

	require.NoError(t, s.GameFinished(ctx, result("u1", "a", game.OutcomeWin, 2, now)))
	require.NoError(t, s.GameFinished(ctx, result("u2", "b", game.OutcomeWin, 2, now)))
	require.NoError(t, s.GameFinished(ctx, result("u2", "c", game.OutcomeWin, 2, now)))

	rows, err := s.Leaderboard(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "bob", rows[0].Username)
	assert.Equal(t, 2, rows[0].Wins)
	assert.Equal(t, "alice", rows[1].Username)
}
