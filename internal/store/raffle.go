package store

import (
	"context"
	"database/sql"

	"github.com/ovrlab/streambot/pkg/errors"
	"go.uber.org/zap"
)

type RaffleStore struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewRaffleStore(pg *Postgres, logger *zap.Logger) *RaffleStore {
	return &RaffleStore{db: pg.DB(), logger: logger}
}

// Enter adds a user to the raffle. Repeat entries are ignored.
func (s *RaffleStore) Enter(ctx context.Context, username string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO raffle (username) VALUES ($1) ON CONFLICT (username) DO NOTHING`, username)
	if err != nil {
		return errors.NewStoreError("failed to save raffle entry", "raffle", "insert", err)
	}
	return nil
}

func (s *RaffleStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM raffle`); err != nil {
		return errors.NewStoreError("failed to clear raffle", "raffle", "delete", err)
	}
	return nil
}

// RandomEntrant draws one entrant at random, ok=false when empty.
func (s *RaffleStore) RandomEntrant(ctx context.Context) (string, bool, error) {
	var username string
	err := s.db.QueryRowContext(ctx,
		`SELECT username FROM raffle ORDER BY RANDOM() LIMIT 1`).Scan(&username)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.NewStoreError("failed to draw raffle winner", "raffle", "select", err)
	}
	return username, true, nil
}
