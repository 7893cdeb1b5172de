package store

import (
	"context"
	"database/sql"

	"github.com/ovrlab/streambot/pkg/errors"
	"go.uber.org/zap"
)

type GiveawayGroup struct {
	ID     int
	Name   string
	Random bool
}

type GiveawayItem struct {
	ID   int
	Name string
	Key  string
}

type GiveawayStore struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewGiveawayStore(pg *Postgres, logger *zap.Logger) *GiveawayStore {
	return &GiveawayStore{db: pg.DB(), logger: logger}
}

func (s *GiveawayStore) GroupByName(ctx context.Context, name string) (GiveawayGroup, bool, error) {
	var g GiveawayGroup
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, random FROM giveaway_groups WHERE name = $1`, name).
		Scan(&g.ID, &g.Name, &g.Random)
	if err == sql.ErrNoRows {
		return GiveawayGroup{}, false, nil
	}
	if err != nil {
		return GiveawayGroup{}, false, errors.NewStoreError("failed to load giveaway group", "giveaway_groups", "select", err)
	}
	return g, true, nil
}

// NextItem picks an unclaimed item from the group, randomly when the group is
// configured that way, otherwise in insertion order.
func (s *GiveawayStore) NextItem(ctx context.Context, group GiveawayGroup) (GiveawayItem, bool, error) {
	query := `SELECT id, name, key FROM giveaway WHERE group_id = $1 AND recipient IS NULL ORDER BY id LIMIT 1`
	if group.Random {
		query = `SELECT id, name, key FROM giveaway WHERE group_id = $1 AND recipient IS NULL ORDER BY RANDOM() LIMIT 1`
	}

	var item GiveawayItem
	err := s.db.QueryRowContext(ctx, query, group.ID).Scan(&item.ID, &item.Name, &item.Key)
	if err == sql.ErrNoRows {
		return GiveawayItem{}, false, nil
	}
	if err != nil {
		return GiveawayItem{}, false, errors.NewStoreError("failed to load giveaway item", "giveaway", "select", err)
	}
	return item, true, nil
}

func (s *GiveawayStore) AssignItem(ctx context.Context, itemID int, recipient string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE giveaway SET recipient = $1 WHERE id = $2`, recipient, itemID)
	if err != nil {
		return errors.NewStoreError("failed to assign giveaway item", "giveaway", "update", err)
	}
	return nil
}
