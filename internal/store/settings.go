package store

import (
	"context"
	"database/sql"

	"github.com/ovrlab/streambot/pkg/errors"
	"go.uber.org/zap"
)

const settingRaffleActive = "raffle_active"

type SettingsStore struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewSettingsStore(pg *Postgres, logger *zap.Logger) *SettingsStore {
	return &SettingsStore{db: pg.DB(), logger: logger}
}

func (s *SettingsStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.NewStoreError("failed to load setting", "settings", "select", err)
	}
	return value, true, nil
}

func (s *SettingsStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, key, value)
	if err != nil {
		return errors.NewStoreError("failed to save setting", "settings", "upsert", err)
	}
	return nil
}

func (s *SettingsStore) RaffleActive(ctx context.Context) (bool, error) {
	value, ok, err := s.Get(ctx, settingRaffleActive)
	if err != nil {
		return false, err
	}
	return ok && value == "1", nil
}

func (s *SettingsStore) SetRaffleActive(ctx context.Context, active bool) error {
	value := "0"
	if active {
		value = "1"
	}
	return s.Set(ctx, settingRaffleActive, value)
}

// AutoShoutout reports whether a user is on the automatic shoutout list.
func (s *SettingsStore) AutoShoutout(ctx context.Context, username string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM autoshoutout WHERE username = $1`, username).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.NewStoreError("failed to check autoshoutout", "autoshoutout", "select", err)
	}
	return true, nil
}
