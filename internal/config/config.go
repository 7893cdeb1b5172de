package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Twitch   TwitchConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	HTTP     HTTPConfig
	Overlay  OverlayConfig
	Timers   TimersConfig
	Logging  LoggingConfig
	Bot      BotConfig
}

type TwitchConfig struct {
	Username      string
	OAuth         string
	Channel       string
	ClientID      string
	ClientSecret  string
	BroadcasterID string
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type HTTPConfig struct {
	Host string
	Port int
}

type OverlayConfig struct {
	QueueGap time.Duration
}

type TimersConfig struct {
	Messages     []string
	Interval     time.Duration
	MinChatLines int
	PollInterval time.Duration
}

type LoggingConfig struct {
	Level string
	File  string
}

type BotConfig struct {
	Prefix                    string
	BroadcasterBypassCooldown bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Twitch: TwitchConfig{
			Username:      getEnv("TWITCH_BOT_USERNAME", ""),
			OAuth:         getEnv("TWITCH_OAUTH_TOKEN", ""),
			Channel:       getEnv("TWITCH_CHANNEL", ""),
			ClientID:      getEnv("TWITCH_CLIENT_ID", ""),
			ClientSecret:  getEnv("TWITCH_CLIENT_SECRET", ""),
			BroadcasterID: getEnv("TWITCH_BROADCASTER_ID", ""),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "streambot"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Database: getEnv("POSTGRES_DB", "streambot"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		HTTP: HTTPConfig{
			Host: getEnv("HTTP_HOST", "0.0.0.0"),
			Port: getEnvInt("HTTP_PORT", 8080),
		},
		Overlay: OverlayConfig{
			QueueGap: time.Duration(getEnvInt("OVERLAY_QUEUE_GAP_MS", 1000)) * time.Millisecond,
		},
		Timers: TimersConfig{
			Messages:     parseCommaSeparated(getEnv("TIMER_MESSAGES", "")),
			Interval:     time.Duration(getEnvInt("TIMER_INTERVAL_SECONDS", 900)) * time.Second,
			MinChatLines: getEnvInt("TIMER_MIN_CHAT_LINES", 3),
			PollInterval: time.Duration(getEnvInt("LIVE_POLL_SECONDS", 60)) * time.Second,
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", "logs/bot.log"),
		},
		Bot: BotConfig{
			Prefix:                    getEnv("BOT_PREFIX", "!"),
			BroadcasterBypassCooldown: getEnvBool("BROADCASTER_BYPASS_COOLDOWN", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Twitch.Username == "" {
		return fmt.Errorf("TWITCH_BOT_USERNAME is required")
	}
	if c.Twitch.OAuth == "" {
		return fmt.Errorf("TWITCH_OAUTH_TOKEN is required")
	}
	if c.Twitch.Channel == "" {
		return fmt.Errorf("TWITCH_CHANNEL is required")
	}
	if c.Twitch.ClientID == "" || c.Twitch.ClientSecret == "" {
		return fmt.Errorf("TWITCH_CLIENT_ID and TWITCH_CLIENT_SECRET are required")
	}
	if c.Twitch.BroadcasterID == "" {
		return fmt.Errorf("TWITCH_BROADCASTER_ID is required")
	}
	if c.Bot.Prefix == "" {
		return fmt.Errorf("BOT_PREFIX must not be empty")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func parseCommaSeparated(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
