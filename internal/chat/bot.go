package chat

import (
	"context"
	"strconv"

	twitch "github.com/gempir/go-twitch-irc/v4"
	"github.com/ovrlab/streambot/internal/command"
	"github.com/ovrlab/streambot/internal/domain"
	"go.uber.org/zap"
)

// Bot owns the IRC connection. Incoming messages are turned into invocations
// and handed to the dispatcher on their own goroutine; subscription, raid and
// cheer notices go straight to the overlay.
type Bot struct {
	client     *twitch.Client
	channel    string
	dispatcher *Dispatcher
	overlay    command.OverlaySender
	logger     *zap.Logger
}

type BotConfig struct {
	Username string
	OAuth    string
	Channel  string
}

func NewBot(cfg BotConfig, overlay command.OverlaySender, logger *zap.Logger) *Bot {
	return &Bot{
		client:  twitch.NewClient(cfg.Username, cfg.OAuth),
		channel: cfg.Channel,
		overlay: overlay,
		logger:  logger,
	}
}

// AttachDispatcher wires the message pipeline. The bot and the dispatcher
// reference each other, so the dispatcher is attached after construction.
func (b *Bot) AttachDispatcher(d *Dispatcher) {
	b.dispatcher = d
}

// Say posts a message to the joined channel.
func (b *Bot) Say(message string) {
	b.client.Say(b.channel, message)
}

// Whisper sends a private message through the chat connection.
func (b *Bot) Whisper(username, message string) {
	b.client.Say(b.channel, "/w "+username+" "+message)
}

// Run connects and blocks until the context is cancelled or the connection
// fails.
func (b *Bot) Run(ctx context.Context) error {
	b.client.OnConnect(func() {
		b.logger.Info("connected to chat", zap.String("channel", b.channel))
	})

	b.client.OnPrivateMessage(func(msg twitch.PrivateMessage) {
		signals := domain.RoleSignals{
			IsBroadcaster: msg.User.Badges["broadcaster"] > 0,
			IsModerator:   msg.User.Badges["moderator"] > 0,
			IsSubscriber:  msg.User.Badges["subscriber"] > 0 || msg.User.Badges["founder"] > 0,
			IsVIP:         msg.User.Badges["vip"] > 0,
		}
		if msg.Bits > 0 {
			b.overlay.SendAlert("cheer", map[string]string{
				"user":   msg.User.DisplayName,
				"amount": strconv.Itoa(msg.Bits),
			})
		}
		if b.dispatcher == nil {
			return
		}
		inv := domain.NewInvocation(msg.Channel, msg.User.Name, msg.User.DisplayName, msg.Message, signals)
		go b.dispatcher.Handle(ctx, inv)
	})

	b.client.OnUserNoticeMessage(func(msg twitch.UserNoticeMessage) {
		b.handleUserNotice(msg)
	})

	go func() {
		<-ctx.Done()
		if err := b.client.Disconnect(); err != nil {
			b.logger.Warn("chat disconnect", zap.Error(err))
		}
	}()

	b.client.Join(b.channel)
	return b.client.Connect()
}

// handleUserNotice maps subscription and raid notices onto overlay alerts.
func (b *Bot) handleUserNotice(msg twitch.UserNoticeMessage) {
	user := msg.User.DisplayName
	switch msg.MsgID {
	case "sub":
		b.overlay.SendAlert("subscription", map[string]string{"user": user})
	case "resub":
		b.overlay.SendAlert("resub", map[string]string{
			"user":   user,
			"months": msg.MsgParams["msg-param-cumulative-months"],
		})
	case "subgift":
		b.overlay.SendAlert("subgift", map[string]string{
			"user":      user,
			"recipient": msg.MsgParams["msg-param-recipient-display-name"],
		})
	case "submysterygift":
		b.overlay.SendAlert("submysterygift", map[string]string{
			"user":   user,
			"amount": msg.MsgParams["msg-param-mass-gift-count"],
		})
	case "raid":
		b.overlay.SendAlert("raid", map[string]string{
			"user":    msg.MsgParams["msg-param-displayName"],
			"viewers": msg.MsgParams["msg-param-viewerCount"],
		})
	}
}
