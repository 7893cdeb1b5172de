package store

import (
	"context"
	"database/sql"

	"github.com/ovrlab/streambot/pkg/errors"
	"go.uber.org/zap"
)

// UserStatsStore tracks per-user activity. Ranking weighs trivia wins ten
// times a chat line.
type UserStatsStore struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewUserStatsStore(pg *Postgres, logger *zap.Logger) *UserStatsStore {
	return &UserStatsStore{db: pg.DB(), logger: logger}
}

func (s *UserStatsStore) AddChat(ctx context.Context, username string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO userstats (username, chats) VALUES ($1, 1)
		 ON CONFLICT (username) DO UPDATE SET chats = userstats.chats + 1`, username)
	if err != nil {
		return errors.NewStoreError("failed to count chat line", "userstats", "upsert", err)
	}
	return nil
}

func (s *UserStatsStore) AddTrivia(ctx context.Context, username string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO userstats (username, trivia) VALUES ($1, 1)
		 ON CONFLICT (username) DO UPDATE SET trivia = userstats.trivia + 1`, username)
	if err != nil {
		return errors.NewStoreError("failed to count trivia win", "userstats", "upsert", err)
	}
	return nil
}

// Top returns the highest scoring users, ignored users excluded.
func (s *UserStatsStore) Top(ctx context.Context, n int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT username FROM userstats WHERE NOT ignored
		 ORDER BY chats + trivia * 10 DESC LIMIT $1`, n)
	if err != nil {
		return nil, errors.NewStoreError("failed to load leaderboard", "userstats", "select", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.NewStoreError("failed to scan leaderboard row", "userstats", "select", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Rank returns the 1-based leaderboard position of a user.
func (s *UserStatsStore) Rank(ctx context.Context, username string) (int, bool, error) {
	var rank int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM userstats WHERE NOT ignored
		 AND chats + trivia * 10 >= (
			SELECT chats + trivia * 10 FROM userstats WHERE NOT ignored AND username = $1
		 )`, username).Scan(&rank)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.NewStoreError("failed to compute rank", "userstats", "select", err)
	}
	if rank < 1 {
		return 0, false, nil
	}
	return rank, true, nil
}

// SetIgnored toggles leaderboard visibility; reports whether a row changed.
func (s *UserStatsStore) SetIgnored(ctx context.Context, username string, ignored bool) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE userstats SET ignored = $1 WHERE username = $2`, ignored, username)
	if err != nil {
		return false, errors.NewStoreError("failed to update ignore status", "userstats", "update", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
