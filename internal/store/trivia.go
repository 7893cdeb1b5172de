package store

import (
	"context"
	"database/sql"

	"github.com/ovrlab/streambot/pkg/errors"
	"go.uber.org/zap"
)

type TriviaQuestion struct {
	ID       int
	Question string
	Answer   string
	Details  string
}

type TriviaStore struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewTriviaStore(pg *Postgres, logger *zap.Logger) *TriviaStore {
	return &TriviaStore{db: pg.DB(), logger: logger}
}

// Random returns a random unanswered question.
func (s *TriviaStore) Random(ctx context.Context) (TriviaQuestion, bool, error) {
	return s.scanOne(s.db.QueryRowContext(ctx,
		`SELECT id, question, answer, details FROM trivia
		 WHERE answered_by IS NULL ORDER BY RANDOM() LIMIT 1`))
}

func (s *TriviaStore) ByID(ctx context.Context, id int) (TriviaQuestion, bool, error) {
	return s.scanOne(s.db.QueryRowContext(ctx,
		`SELECT id, question, answer, details FROM trivia
		 WHERE answered_by IS NULL AND id = $1`, id))
}

// MarkAnswered records the winner so the question is never re-asked.
func (s *TriviaStore) MarkAnswered(ctx context.Context, id int, username string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE trivia SET answered_by = $1 WHERE id = $2`, username, id)
	if err != nil {
		return errors.NewStoreError("failed to record trivia winner", "trivia", "update", err)
	}
	return nil
}

func (s *TriviaStore) scanOne(row *sql.Row) (TriviaQuestion, bool, error) {
	var q TriviaQuestion
	err := row.Scan(&q.ID, &q.Question, &q.Answer, &q.Details)
	if err == sql.ErrNoRows {
		return TriviaQuestion{}, false, nil
	}
	if err != nil {
		return TriviaQuestion{}, false, errors.NewStoreError("failed to load trivia", "trivia", "select", err)
	}
	return q, true, nil
}
