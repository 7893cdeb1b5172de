package store

import (
	"context"
	"database/sql"

	"github.com/ovrlab/streambot/pkg/errors"
	"go.uber.org/zap"
)

// AlertConfig describes one alert type on the overlay.
type AlertConfig struct {
	Key         string
	Message     string
	Graphic     string
	Sound       string
	Duration    int // seconds
	VideoVolume int
	SoundVolume int
}

// SfxConfig describes one sound effect available to the sfx action.
type SfxConfig struct {
	Key    string
	File   string
	Volume int
}

// CatalogStore loads the alert and sfx catalogs edited by the admin panel.
type CatalogStore struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewCatalogStore(pg *Postgres, logger *zap.Logger) *CatalogStore {
	return &CatalogStore{db: pg.DB(), logger: logger}
}

func (s *CatalogStore) LoadAlerts(ctx context.Context) (map[string]AlertConfig, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, COALESCE(message, ''), COALESCE(graphic, ''), COALESCE(sound, ''),
		        duration, video_volume, sound_volume
		 FROM alerts ORDER BY key`)
	if err != nil {
		return nil, errors.NewStoreError("failed to load alerts", "alerts", "select", err)
	}
	defer rows.Close()

	alerts := make(map[string]AlertConfig)
	for rows.Next() {
		var a AlertConfig
		if err := rows.Scan(&a.Key, &a.Message, &a.Graphic, &a.Sound, &a.Duration, &a.VideoVolume, &a.SoundVolume); err != nil {
			return nil, errors.NewStoreError("failed to scan alert row", "alerts", "select", err)
		}
		alerts[a.Key] = a
	}
	return alerts, rows.Err()
}

func (s *CatalogStore) LoadSfx(ctx context.Context) (map[string]SfxConfig, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, file, volume FROM sfx ORDER BY key`)
	if err != nil {
		return nil, errors.NewStoreError("failed to load sfx", "sfx", "select", err)
	}
	defer rows.Close()

	sfx := make(map[string]SfxConfig)
	for rows.Next() {
		var c SfxConfig
		if err := rows.Scan(&c.Key, &c.File, &c.Volume); err != nil {
			return nil, errors.NewStoreError("failed to scan sfx row", "sfx", "select", err)
		}
		sfx[c.Key] = c
	}
	return sfx, rows.Err()
}
