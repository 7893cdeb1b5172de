// Package store provides the Postgres-backed persistence the bot consumes:
// tips, quotes, raffle entries, trivia, giveaways, user stats, and the
// trigger/alert/sfx catalogs edited by the admin panel.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

type Postgres struct {
	db     *sql.DB
	logger *zap.Logger
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

func NewPostgres(cfg PostgresConfig, logger *zap.Logger) (*Postgres, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	logger.Info("PostgreSQL connected",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
	)

	return &Postgres{
		db:     db,
		logger: logger,
	}, nil
}

func (p *Postgres) DB() *sql.DB {
	return p.db
}

func (p *Postgres) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS triggers (
		id SERIAL PRIMARY KEY,
		key TEXT NOT NULL UNIQUE,
		level INTEGER NOT NULL DEFAULT 0,
		user_timeout INTEGER NOT NULL DEFAULT 0,
		global_timeout INTEGER NOT NULL DEFAULT 0,
		aliases TEXT NOT NULL DEFAULT '',
		command TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS alerts (
		key TEXT PRIMARY KEY,
		message TEXT,
		graphic TEXT,
		sound TEXT,
		duration INTEGER NOT NULL DEFAULT 5,
		video_volume INTEGER NOT NULL DEFAULT 100,
		sound_volume INTEGER NOT NULL DEFAULT 100
	)`,
	`CREATE TABLE IF NOT EXISTS sfx (
		id SERIAL PRIMARY KEY,
		key TEXT NOT NULL UNIQUE,
		file TEXT NOT NULL,
		volume INTEGER NOT NULL DEFAULT 100
	)`,
	`CREATE TABLE IF NOT EXISTS tips (
		id SERIAL PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		username TEXT NOT NULL DEFAULT '',
		message TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS quotes (
		id SERIAL PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		username TEXT NOT NULL,
		game TEXT NOT NULL DEFAULT '',
		message TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS raffle (
		username TEXT PRIMARY KEY,
		tickets INTEGER NOT NULL DEFAULT 1
	)`,
	`CREATE TABLE IF NOT EXISTS trivia (
		id SERIAL PRIMARY KEY,
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		details TEXT NOT NULL DEFAULT '',
		answered_by TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS giveaway_groups (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		random BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS giveaway (
		id SERIAL PRIMARY KEY,
		group_id INTEGER NOT NULL REFERENCES giveaway_groups(id),
		name TEXT NOT NULL,
		key TEXT NOT NULL,
		recipient TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS userstats (
		username TEXT PRIMARY KEY,
		chats INTEGER NOT NULL DEFAULT 0,
		trivia INTEGER NOT NULL DEFAULT 0,
		ignored BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS autoshoutout (
		username TEXT PRIMARY KEY
	)`,
}

var defaultAlerts = map[string]string{
	"cheer":          "${user} cheered ${amount} bits!",
	"follower":       "${user} is now following!",
	"subscription":   "${user} has subscribed!",
	"resub":          "${user} has resubscribed for ${months} months!",
	"subgift":        "${user} gifted a subscription to ${recipient}!",
	"submysterygift": "${user} gifted subscriptions to ${subcount} lucky viewers!",
	"raid":           "${user} raided the channel with ${viewers} viewers!",
	"rafflewinner":   "${user} won the raffle!",
	"shoutout":       "Welcome, ${user}!",
	"trivia":         "${message}",
}

// InitSchema creates missing tables and seeds the default alert rows.
func (p *Postgres) InitSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema init failed: %w", err)
		}
	}

	for key, message := range defaultAlerts {
		_, err := p.db.ExecContext(ctx,
			`INSERT INTO alerts (key, message) VALUES ($1, $2) ON CONFLICT (key) DO NOTHING`,
			key, message)
		if err != nil {
			return fmt.Errorf("alert seed failed: %w", err)
		}
	}

	p.logger.Info("database schema ready")
	return nil
}
