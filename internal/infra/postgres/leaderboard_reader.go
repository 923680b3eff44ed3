package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"studysync/internal/domain"
)

// LeaderboardReader answers ranking queries with raw SQL over a pgx pool.
// Rank is a full-table comparison, not a maintained index; fine at this
// scale, worth revisiting if the user table grows past a few hundred
// thousand rows.
type LeaderboardReader struct {
	pool *pgxpool.Pool
}

func NewLeaderboardReader(pool *pgxpool.Pool) *LeaderboardReader {
	return &LeaderboardReader{pool: pool}
}

// RankOf counts ranked users strictly ahead: more XP, or the same XP on an
// older account. Teachers are excluded from the ranking.
func (r *LeaderboardReader) RankOf(ctx context.Context, xp int, createdAt time.Time) (int, error) {
	var ahead int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM users
		WHERE role IN ('student', 'admin')
		  AND (COALESCE(xp, 0) > $1 OR (COALESCE(xp, 0) = $1 AND created_at < $2))`,
		xp, createdAt,
	).Scan(&ahead)
	if err != nil {
		return 0, fmt.Errorf("rank query: %w", err)
	}
	return ahead + 1, nil
}

// Top returns the highest-XP ranked users, ties broken by account age.
func (r *LeaderboardReader) Top(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, COALESCE(xp, 0), COALESCE(badges, '{}'), COALESCE(grade, ''), COALESCE(board, '')
		FROM users
		WHERE role IN ('student', 'admin')
		ORDER BY COALESCE(xp, 0) DESC, created_at ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard query: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.LeaderboardEntry, 0, limit)
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Name, &e.XP, &e.Badges, &e.Grade, &e.Board); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
