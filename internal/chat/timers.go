package chat

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/ovrlab/streambot/internal/command"
	"go.uber.org/zap"
)

// LiveChecker reports whether a channel is currently broadcasting.
type LiveChecker interface {
	StreamLive(ctx context.Context, broadcasterID string) (bool, error)
}

// Timers posts rotating messages while the stream is live and chat is active
// enough, and tracks the live flag the rest of the bot reads.
type Timers struct {
	messages      []string
	interval      time.Duration
	minLines      int64
	pollInterval  time.Duration
	broadcasterID string

	dispatcher *Dispatcher
	chat       command.ChatSender
	helix      LiveChecker
	logger     *zap.Logger

	live     atomic.Bool
	next     int
	lastPost time.Time
}

type TimersConfig struct {
	Messages      []string
	Interval      time.Duration
	MinChatLines  int64
	PollInterval  time.Duration
	BroadcasterID string
}

func NewTimers(cfg TimersConfig, dispatcher *Dispatcher, chat command.ChatSender, helix LiveChecker, logger *zap.Logger) *Timers {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Minute
	}
	return &Timers{
		messages:      cfg.Messages,
		interval:      cfg.Interval,
		minLines:      cfg.MinChatLines,
		pollInterval:  cfg.PollInterval,
		broadcasterID: cfg.BroadcasterID,
		dispatcher:    dispatcher,
		chat:          chat,
		helix:         helix,
		logger:        logger,
	}
}

// Live reports the last observed stream state.
func (t *Timers) Live() bool { return t.live.Load() }

// Run polls the stream state and posts rotating messages until the context is
// cancelled.
func (t *Timers) Run(ctx context.Context) {
	t.poll(ctx)
	t.lastPost = time.Now()

	liveTicker := time.NewTicker(t.pollInterval)
	defer liveTicker.Stop()
	messageTicker := time.NewTicker(time.Second)
	defer messageTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-liveTicker.C:
			t.poll(ctx)
		case <-messageTicker.C:
			t.maybePost()
		}
	}
}

func (t *Timers) poll(ctx context.Context) {
	live, err := t.helix.StreamLive(ctx, t.broadcasterID)
	if err != nil {
		t.logger.Warn("failed to poll stream state", zap.Error(err))
		return
	}
	if live != t.live.Swap(live) {
		t.logger.Info("stream state changed", zap.Bool("live", live))
	}
}

func (t *Timers) maybePost() {
	if len(t.messages) == 0 || t.interval <= 0 || !t.live.Load() {
		return
	}
	if time.Since(t.lastPost) < t.interval {
		return
	}
	if t.dispatcher.Lines() < t.minLines {
		return
	}
	t.chat.Say(t.messages[t.next])
	t.next = (t.next + 1) % len(t.messages)
	t.dispatcher.ResetLines()
	t.lastPost = time.Now()
}
