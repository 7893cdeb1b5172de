package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/ovrlab/streambot/internal/domain"
	"github.com/ovrlab/streambot/pkg/errors"
	"go.uber.org/zap"
)

// TriggerStore loads the trigger definitions the admin panel maintains.
// Aliases are kept as a comma-separated list, timeouts in seconds.
type TriggerStore struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewTriggerStore(pg *Postgres, logger *zap.Logger) *TriggerStore {
	return &TriggerStore{db: pg.DB(), logger: logger}
}

func (s *TriggerStore) LoadAll(ctx context.Context) ([]domain.Trigger, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, level, user_timeout, global_timeout, aliases, command
		 FROM triggers ORDER BY id`)
	if err != nil {
		return nil, errors.NewStoreError("failed to load triggers", "triggers", "select", err)
	}
	defer rows.Close()

	var triggers []domain.Trigger
	for rows.Next() {
		var (
			t             domain.Trigger
			level         int
			userTimeout   int
			globalTimeout int
			aliases       string
		)
		if err := rows.Scan(&t.Key, &level, &userTimeout, &globalTimeout, &aliases, &t.Body); err != nil {
			return nil, errors.NewStoreError("failed to scan trigger row", "triggers", "select", err)
		}
		t.Level = domain.Level(level)
		t.UserCooldown = time.Duration(userTimeout) * time.Second
		t.GlobalCooldown = time.Duration(globalTimeout) * time.Second
		for _, alias := range strings.Split(aliases, ",") {
			alias = strings.TrimSpace(alias)
			if alias != "" {
				t.Aliases = append(t.Aliases, alias)
			}
		}
		triggers = append(triggers, t)
	}
	return triggers, rows.Err()
}
