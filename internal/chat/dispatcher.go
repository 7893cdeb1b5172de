// Package chat connects the chat platform to the trigger pipeline: it matches
// incoming lines against the registry, gates them through cooldowns and
// permission levels, expands the trigger body and runs the resulting action.
package chat

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/ovrlab/streambot/internal/command"
	"github.com/ovrlab/streambot/internal/domain"
	"github.com/ovrlab/streambot/internal/macro"
	"github.com/ovrlab/streambot/internal/telemetry"
	"github.com/ovrlab/streambot/internal/trigger"
	"github.com/ovrlab/streambot/internal/util"
	"github.com/ovrlab/streambot/pkg/errors"
	"go.uber.org/zap"
)

// ActionRunner executes one resolved action.
type ActionRunner interface {
	Dispatch(ctx context.Context, inv *domain.Invocation, kind domain.ActionKind, args []string) (string, error)
}

// QuestionAnswerer handles free-form questions addressed to the bot by name.
// Nil disables the feature.
type QuestionAnswerer interface {
	Answer(ctx context.Context, username, question string) (string, error)
}

// StatsRecorder tracks per-user chat activity.
type StatsRecorder interface {
	AddChat(ctx context.Context, username string) error
}

// ShoutoutChecker reports whether a user gets an automatic shoutout on their
// first message of the session.
type ShoutoutChecker interface {
	AutoShoutout(ctx context.Context, username string) (bool, error)
}

// Dispatcher runs the resolution pipeline for one chat line at a time. Handle
// is safe for concurrent use; callers typically invoke it in a goroutine per
// message.
type Dispatcher struct {
	registry *trigger.Registry
	gate     *trigger.CooldownGate
	resolver *macro.Resolver
	actions  ActionRunner
	chat     command.ChatSender
	stats    StatsRecorder
	shoutout ShoutoutChecker
	answerer QuestionAnswerer
	botName  string
	prefix   string
	logger   *zap.Logger

	lines atomic.Int64

	mu      sync.Mutex
	greeted map[string]bool
}

type DispatcherConfig struct {
	Registry *trigger.Registry
	Gate     *trigger.CooldownGate
	Resolver *macro.Resolver
	Actions  ActionRunner
	Chat     command.ChatSender
	Stats    StatsRecorder
	Shoutout ShoutoutChecker
	Answerer QuestionAnswerer
	BotName  string
	Prefix   string
	Logger   *zap.Logger
}

func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	return &Dispatcher{
		registry: cfg.Registry,
		gate:     cfg.Gate,
		resolver: cfg.Resolver,
		actions:  cfg.Actions,
		chat:     cfg.Chat,
		stats:    cfg.Stats,
		shoutout: cfg.Shoutout,
		answerer: cfg.Answerer,
		botName:  cfg.BotName,
		prefix:   cfg.Prefix,
		logger:   cfg.Logger,
		greeted:  make(map[string]bool),
	}
}

// Lines reports how many chat lines have been handled since the last Reset.
func (d *Dispatcher) Lines() int64 { return d.lines.Load() }

// ResetLines zeroes the chat line counter. The timer loop calls this after
// posting a rotating message.
func (d *Dispatcher) ResetLines() { d.lines.Store(0) }

// Handle processes one chat line end to end. It never panics and never blocks
// the caller on chat output.
func (d *Dispatcher) Handle(ctx context.Context, inv *domain.Invocation) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("panic while handling chat line",
				zap.Any("panic", r),
				zap.String("user", inv.Username),
				zap.String("message", inv.Message))
		}
	}()

	if strings.EqualFold(inv.Username, d.botName) {
		return
	}
	if telemetry.ChatLines != nil {
		telemetry.ChatLines.Inc()
	}
	d.lines.Add(1)

	user := util.Normalize(inv.Username)
	if d.stats != nil {
		if err := d.stats.AddChat(ctx, user); err != nil {
			d.logger.Warn("failed to record chat activity", zap.String("user", user), zap.Error(err))
		}
	}
	d.maybeAutoShoutout(ctx, inv)

	message := strings.TrimSpace(inv.Message)
	if d.tryAnswerQuestion(ctx, inv, message) {
		return
	}
	if !strings.HasPrefix(message, d.prefix) {
		return
	}

	trig, alias, ok := d.registry.Lookup(message[len(d.prefix):])
	if !ok {
		return
	}
	if telemetry.CommandsMatched != nil {
		telemetry.CommandsMatched.Inc()
	}

	// Cooldown gate runs before the permission check, and nothing is
	// committed until the action has succeeded.
	if !d.gate.Admit(trig, user, inv.Signals) {
		telemetry.CountRejection("cooldown")
		return
	}
	if domain.EvaluateLevel(inv.Signals) < trig.Level {
		telemetry.CountRejection("level")
		return
	}

	rest := strings.TrimSpace(message[len(d.prefix)+len(alias):])
	args := append([]string{alias}, macro.Tokens(rest)...)
	inv.MatchedAlias = alias
	inv.Args = args

	resolved := d.resolver.Resolve(domain.WithInvocation(ctx, inv), trig.Body, args)
	tokens := macro.Tokens(resolved)
	if len(tokens) == 0 {
		telemetry.CountRejection("empty_body")
		return
	}
	kind, ok := domain.ParseActionKind(tokens[0])
	if !ok {
		d.logger.Warn("trigger resolved to unknown action",
			zap.String("trigger", trig.Key),
			zap.String("action", tokens[0]))
		telemetry.CountRejection("unknown_action")
		return
	}

	reply, err := d.actions.Dispatch(ctx, inv, kind, tokens[1:])
	if err != nil {
		if verr, isValidation := errors.AsValidation(err); isValidation {
			if verr.Reply != "" {
				d.chat.Say(verr.Reply)
			}
			telemetry.CountRejection("validation")
			return
		}
		d.logger.Error("action failed",
			zap.String("trigger", trig.Key),
			zap.String("action", string(kind)),
			zap.String("user", user),
			zap.Error(err))
		if telemetry.CommandsFailed != nil {
			telemetry.CommandsFailed.Inc()
		}
		return
	}
	if reply != "" {
		d.chat.Say(reply)
	}
	d.gate.Commit(trig, user)
	telemetry.CountExecution(string(kind))
}

// tryAnswerQuestion handles "@botname <question>" lines. Returns true when the
// line was consumed.
func (d *Dispatcher) tryAnswerQuestion(ctx context.Context, inv *domain.Invocation, message string) bool {
	if d.answerer == nil || d.botName == "" {
		return false
	}
	mention := "@" + strings.ToLower(d.botName)
	if !strings.HasPrefix(strings.ToLower(message), mention) {
		return false
	}
	question := strings.TrimSpace(message[len(mention):])
	if question == "" {
		return true
	}
	answer, err := d.answerer.Answer(ctx, inv.Username, question)
	if err != nil {
		d.logger.Warn("question answering failed", zap.String("user", inv.Username), zap.Error(err))
		return true
	}
	if answer != "" {
		d.chat.Say("@" + inv.DisplayName + " " + answer)
	}
	return true
}

// maybeAutoShoutout runs the shoutout action once per session for users with
// the autoshoutout flag set, and for subscribers and VIPs on their first
// message. The broadcaster never gets greeted.
func (d *Dispatcher) maybeAutoShoutout(ctx context.Context, inv *domain.Invocation) {
	if d.shoutout == nil || inv.Signals.IsBroadcaster {
		return
	}
	user := util.Normalize(inv.Username)

	d.mu.Lock()
	seen := d.greeted[user]
	d.greeted[user] = true
	d.mu.Unlock()
	if seen {
		return
	}

	flagged, err := d.shoutout.AutoShoutout(ctx, user)
	if err != nil {
		d.logger.Warn("failed to check autoshoutout flag", zap.String("user", user), zap.Error(err))
		return
	}
	if !flagged && !inv.Signals.IsSubscriber && !inv.Signals.IsVIP {
		return
	}
	reply, err := d.actions.Dispatch(ctx, inv, domain.ActionShoutout, []string{user})
	if err != nil {
		d.logger.Warn("autoshoutout failed", zap.String("user", user), zap.Error(err))
		return
	}
	if reply != "" {
		d.chat.Say(reply)
	}
}
