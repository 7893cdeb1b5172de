package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/ovrlab/streambot/pkg/errors"
	"go.uber.org/zap"
)

type Tip struct {
	ID        int
	CreatedAt time.Time
	Username  string
	Message   string
}

type TipStore struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewTipStore(pg *Postgres, logger *zap.Logger) *TipStore {
	return &TipStore{db: pg.DB(), logger: logger}
}

// Random returns a random tip, or ok=false when the table is empty.
func (s *TipStore) Random(ctx context.Context) (Tip, bool, error) {
	return s.scanOne(s.db.QueryRowContext(ctx,
		`SELECT id, created_at, username, message FROM tips ORDER BY RANDOM() LIMIT 1`))
}

func (s *TipStore) ByID(ctx context.Context, id int) (Tip, bool, error) {
	return s.scanOne(s.db.QueryRowContext(ctx,
		`SELECT id, created_at, username, message FROM tips WHERE id = $1`, id))
}

func (s *TipStore) Add(ctx context.Context, username, message string) (int, error) {
	var id int
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO tips (username, message) VALUES ($1, $2) RETURNING id`,
		username, message).Scan(&id)
	if err != nil {
		return 0, errors.NewStoreError("failed to save tip", "tips", "insert", err)
	}
	return id, nil
}

func (s *TipStore) Update(ctx context.Context, id int, message string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE tips SET message = $1 WHERE id = $2`, message, id)
	if err != nil {
		return false, errors.NewStoreError("failed to update tip", "tips", "update", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (s *TipStore) Delete(ctx context.Context, id int) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tips WHERE id = $1`, id)
	if err != nil {
		return false, errors.NewStoreError("failed to delete tip", "tips", "delete", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (s *TipStore) scanOne(row *sql.Row) (Tip, bool, error) {
	var t Tip
	err := row.Scan(&t.ID, &t.CreatedAt, &t.Username, &t.Message)
	if err == sql.ErrNoRows {
		return Tip{}, false, nil
	}
	if err != nil {
		return Tip{}, false, errors.NewStoreError("failed to load tip", "tips", "select", err)
	}
	return t, true, nil
}
