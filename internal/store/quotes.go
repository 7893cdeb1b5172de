package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/ovrlab/streambot/pkg/errors"
	"go.uber.org/zap"
)

type Quote struct {
	ID        int
	CreatedAt time.Time
	Username  string
	Game      string
	Message   string
}

type QuoteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewQuoteStore(pg *Postgres, logger *zap.Logger) *QuoteStore {
	return &QuoteStore{db: pg.DB(), logger: logger}
}

func (s *QuoteStore) Random(ctx context.Context) (Quote, bool, error) {
	return s.scanOne(s.db.QueryRowContext(ctx,
		`SELECT id, created_at, username, game, message FROM quotes ORDER BY RANDOM() LIMIT 1`))
}

func (s *QuoteStore) ByID(ctx context.Context, id int) (Quote, bool, error) {
	return s.scanOne(s.db.QueryRowContext(ctx,
		`SELECT id, created_at, username, game, message FROM quotes WHERE id = $1`, id))
}

func (s *QuoteStore) Add(ctx context.Context, username, game, message string) (int, error) {
	var id int
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO quotes (username, game, message) VALUES ($1, $2, $3) RETURNING id`,
		username, game, message).Scan(&id)
	if err != nil {
		return 0, errors.NewStoreError("failed to save quote", "quotes", "insert", err)
	}
	return id, nil
}

func (s *QuoteStore) Update(ctx context.Context, id int, message string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE quotes SET message = $1 WHERE id = $2`, message, id)
	if err != nil {
		return false, errors.NewStoreError("failed to update quote", "quotes", "update", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (s *QuoteStore) Delete(ctx context.Context, id int) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM quotes WHERE id = $1`, id)
	if err != nil {
		return false, errors.NewStoreError("failed to delete quote", "quotes", "delete", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (s *QuoteStore) scanOne(row *sql.Row) (Quote, bool, error) {
	var q Quote
	err := row.Scan(&q.ID, &q.CreatedAt, &q.Username, &q.Game, &q.Message)
	if err == sql.ErrNoRows {
		return Quote{}, false, nil
	}
	if err != nil {
		return Quote{}, false, errors.NewStoreError("failed to load quote", "quotes", "select", err)
	}
	return q, true, nil
}
