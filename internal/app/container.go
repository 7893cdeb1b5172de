package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/ovrlab/streambot/internal/chat"
	"github.com/ovrlab/streambot/internal/clock"
	"github.com/ovrlab/streambot/internal/command"
	"github.com/ovrlab/streambot/internal/config"
	"github.com/ovrlab/streambot/internal/domain"
	"github.com/ovrlab/streambot/internal/macro"
	"github.com/ovrlab/streambot/internal/overlay"
	"github.com/ovrlab/streambot/internal/service"
	"github.com/ovrlab/streambot/internal/store"
	"github.com/ovrlab/streambot/internal/telemetry"
	"github.com/ovrlab/streambot/internal/trigger"
	"go.uber.org/zap"
)

// Container bundles the assembled runtime components.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	Bot      *chat.Bot
	Timers   *chat.Timers
	Hub      *overlay.Hub
	Registry *trigger.Registry

	closers []func()
}

// Close releases infrastructure resources in reverse construction order.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

// Build assembles all infrastructure services and wires the message pipeline.
// All heavy-weight initialization (DB/cache/catalog loading) happens here.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	telemetry.Init()

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	// Cache and database
	cacheSvc, err := service.NewCache(service.CacheConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache service: %w", err)
	}
	closers = append(closers, func() {
		_ = cacheSvc.Close()
	})

	pg, err := store.NewPostgres(store.PostgresConfig{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		Database: cfg.Postgres.Database,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres service: %w", err)
	}
	closers = append(closers, func() {
		_ = pg.Close()
	})
	if err := pg.InitSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	// Stores
	tips := store.NewTipStore(pg, logger)
	quotes := store.NewQuoteStore(pg, logger)
	raffle := store.NewRaffleStore(pg, logger)
	trivia := store.NewTriviaStore(pg, logger)
	giveaways := store.NewGiveawayStore(pg, logger)
	stats := store.NewUserStatsStore(pg, logger)
	settings := store.NewSettingsStore(pg, logger)
	triggers := store.NewTriggerStore(pg, logger)
	catalogs := store.NewCatalogStore(pg, logger)

	helix := service.NewHelix(service.HelixConfig{
		ClientID:     cfg.Twitch.ClientID,
		ClientSecret: cfg.Twitch.ClientSecret,
	}, cacheSvc, logger)

	// Overlay pipeline
	hub := overlay.NewHub(logger)
	queue := overlay.NewQueue(hub, clock.System(), cfg.Overlay.QueueGap, logger)
	hub.OnPlaybackDone(queue.PlaybackDone)
	sender := overlay.NewSender(queue, logger)

	alertCatalog, err := catalogs.LoadAlerts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load alert catalog: %w", err)
	}
	sfxCatalog, err := catalogs.LoadSfx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load sfx catalog: %w", err)
	}
	sender.SetCatalogs(alertCatalog, sfxCatalog)

	// Trigger registry
	registry := trigger.NewRegistry()
	loaded, err := triggers.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load triggers: %w", err)
	}
	if err := registry.Replace(loaded); err != nil {
		return nil, fmt.Errorf("failed to build trigger registry: %w", err)
	}
	if telemetry.TriggersLoaded != nil {
		telemetry.TriggersLoaded.Set(float64(registry.Len()))
	}
	logger.Info("trigger registry loaded", zap.Int("triggers", registry.Len()))

	bot := chat.NewBot(chat.BotConfig{
		Username: cfg.Twitch.Username,
		OAuth:    cfg.Twitch.OAuth,
		Channel:  cfg.Twitch.Channel,
	}, sender, logger)

	var timers *chat.Timers

	actions := command.NewActions(&command.Dependencies{
		Tips:          tips,
		Quotes:        quotes,
		Raffle:        raffle,
		Trivia:        trivia,
		Giveaways:     giveaways,
		Stats:         stats,
		Settings:      settings,
		Helix:         helix,
		Overlay:       sender,
		Chat:          bot,
		IsLive:        func() bool { return timers != nil && timers.Live() },
		BroadcasterID: cfg.Twitch.BroadcasterID,
		Logger:        logger,
	})

	resolver := macro.NewResolver(logger)
	registerMacros(resolver, helix, cfg.Twitch.BroadcasterID)

	dispatcher := chat.NewDispatcher(chat.DispatcherConfig{
		Registry: registry,
		Gate:     trigger.NewCooldownGate(clock.System(), cfg.Bot.BroadcasterBypassCooldown),
		Resolver: resolver,
		Actions:  actions,
		Chat:     bot,
		Stats:    stats,
		Shoutout: settings,
		BotName:  cfg.Twitch.Username,
		Prefix:   cfg.Bot.Prefix,
		Logger:   logger,
	})
	bot.AttachDispatcher(dispatcher)

	timers = chat.NewTimers(chat.TimersConfig{
		Messages:      cfg.Timers.Messages,
		Interval:      cfg.Timers.Interval,
		MinChatLines:  int64(cfg.Timers.MinChatLines),
		PollInterval:  cfg.Timers.PollInterval,
		BroadcasterID: cfg.Twitch.BroadcasterID,
	}, dispatcher, bot, helix, logger)

	return &Container{
		Config:   cfg,
		Logger:   logger,
		Bot:      bot,
		Timers:   timers,
		Hub:      hub,
		Registry: registry,
		closers:  closers,
	}, nil
}

// registerMacros installs the named macros trigger bodies can reference.
func registerMacros(resolver *macro.Resolver, helix *service.Helix, broadcasterID string) {
	resolver.Register("user", func(ctx context.Context, arg string) (string, error) {
		inv := domain.InvocationFromContext(ctx)
		if inv == nil {
			return "", fmt.Errorf("no invocation in context")
		}
		return inv.DisplayName, nil
	})
	resolver.Register("channel", func(ctx context.Context, arg string) (string, error) {
		if arg != "" {
			return strings.ToLower(arg), nil
		}
		inv := domain.InvocationFromContext(ctx)
		if inv == nil {
			return "", fmt.Errorf("no invocation in context")
		}
		return inv.Channel, nil
	})
	resolver.Register("game", func(ctx context.Context, arg string) (string, error) {
		id := broadcasterID
		if arg != "" {
			user, ok, err := helix.UserByName(ctx, strings.ToLower(arg))
			if err != nil {
				return "", err
			}
			if !ok {
				return "", fmt.Errorf("unknown user %q", arg)
			}
			id = user.ID
		}
		return helix.ChannelGame(ctx, id)
	})
}
