package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ovrlab/streambot/internal/clock"
	"github.com/ovrlab/streambot/internal/domain"
	"github.com/ovrlab/streambot/internal/macro"
	"github.com/ovrlab/streambot/internal/trigger"
	"github.com/ovrlab/streambot/pkg/errors"
	"go.uber.org/zap"
)

type recordedCall struct {
	kind domain.ActionKind
	args []string
}

type fakeRunner struct {
	mu    sync.Mutex
	calls []recordedCall
	reply func(kind domain.ActionKind, args []string) (string, error)
}

func (f *fakeRunner) Dispatch(ctx context.Context, inv *domain.Invocation, kind domain.ActionKind, args []string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, recordedCall{kind: kind, args: args})
	f.mu.Unlock()
	if f.reply != nil {
		return f.reply(kind, args)
	}
	return "", nil
}

func (f *fakeRunner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type sayRecorder struct {
	mu   sync.Mutex
	said []string
}

func (s *sayRecorder) Say(message string) {
	s.mu.Lock()
	s.said = append(s.said, message)
	s.mu.Unlock()
}
func (s *sayRecorder) Whisper(username, message string) {}

type fixture struct {
	dispatcher *Dispatcher
	runner     *fakeRunner
	chat       *sayRecorder
	clk        *clock.Fake
}

func newFixture(t *testing.T, triggers ...domain.Trigger) *fixture {
	t.Helper()
	registry := trigger.NewRegistry()
	if err := registry.Replace(triggers); err != nil {
		t.Fatalf("seed registry: %v", err)
	}
	clk := clock.NewFake()
	runner := &fakeRunner{}
	chat := &sayRecorder{}
	d := NewDispatcher(DispatcherConfig{
		Registry: registry,
		Gate:     trigger.NewCooldownGate(clk, true),
		Resolver: macro.NewResolver(zap.NewNop()),
		Actions:  runner,
		Chat:     chat,
		BotName:  "streambot",
		Prefix:   "!",
		Logger:   zap.NewNop(),
	})
	return &fixture{dispatcher: d, runner: runner, chat: chat, clk: clk}
}

func line(username, message string, signals domain.RoleSignals) *domain.Invocation {
	inv := domain.NewInvocation("testchannel", username, username, message, signals)
	return inv
}

func TestHandleRunsMatchedTrigger(t *testing.T) {
	f := newFixture(t, domain.Trigger{
		Key:     "hello",
		Aliases: []string{"hello"},
		Body:    "say Hello ${1:}!",
	})
	f.runner.reply = func(kind domain.ActionKind, args []string) (string, error) {
		return "Hello big world!", nil
	}

	f.dispatcher.Handle(context.Background(), line("alice", "!hello big world", domain.RoleSignals{}))

	if f.runner.callCount() != 1 {
		t.Fatalf("runner calls = %d, want 1", f.runner.callCount())
	}
	call := f.runner.calls[0]
	if call.kind != domain.ActionSay {
		t.Errorf("kind = %q, want say", call.kind)
	}
	if len(call.args) != 3 || call.args[0] != "Hello" || call.args[1] != "big" || call.args[2] != "world!" {
		t.Errorf("args = %v", call.args)
	}
	if len(f.chat.said) != 1 || f.chat.said[0] != "Hello big world!" {
		t.Errorf("said = %v", f.chat.said)
	}
}

func TestHandleIgnoresUnprefixedAndOwnLines(t *testing.T) {
	f := newFixture(t, domain.Trigger{Key: "hello", Aliases: []string{"hello"}, Body: "say hi"})

	f.dispatcher.Handle(context.Background(), line("alice", "hello there", domain.RoleSignals{}))
	f.dispatcher.Handle(context.Background(), line("streambot", "!hello", domain.RoleSignals{}))

	if f.runner.callCount() != 0 {
		t.Errorf("runner calls = %d, want 0", f.runner.callCount())
	}
}

func TestHandleEnforcesLevel(t *testing.T) {
	f := newFixture(t, domain.Trigger{
		Key:     "ban",
		Aliases: []string{"ban"},
		Level:   domain.LevelModerator,
		Body:    "say banned",
	})

	f.dispatcher.Handle(context.Background(), line("pleb", "!ban someone", domain.RoleSignals{}))
	if f.runner.callCount() != 0 {
		t.Fatal("non-moderator should be rejected")
	}

	f.dispatcher.Handle(context.Background(), line("mod", "!ban someone", domain.RoleSignals{IsModerator: true}))
	if f.runner.callCount() != 1 {
		t.Fatal("moderator should pass the level check")
	}
}

func TestHandleCommitsCooldownOnlyOnSuccess(t *testing.T) {
	trig := domain.Trigger{
		Key:          "greet",
		Aliases:      []string{"greet"},
		UserCooldown: 30 * time.Second,
		Body:         "say hi",
	}
	f := newFixture(t, trig)

	fail := true
	f.runner.reply = func(kind domain.ActionKind, args []string) (string, error) {
		if fail {
			return "", errors.NewValidationError("nope", "alice try again")
		}
		return "hi", nil
	}

	ctx := context.Background()
	f.dispatcher.Handle(ctx, line("alice", "!greet", domain.RoleSignals{}))
	if len(f.chat.said) != 1 || f.chat.said[0] != "alice try again" {
		t.Fatalf("said = %v, want rejection reply", f.chat.said)
	}

	// The rejection must not have started the cooldown.
	fail = false
	f.dispatcher.Handle(ctx, line("alice", "!greet", domain.RoleSignals{}))
	if f.runner.callCount() != 2 {
		t.Fatal("retry after rejection should reach the action")
	}

	// The success did start it.
	f.dispatcher.Handle(ctx, line("alice", "!greet", domain.RoleSignals{}))
	if f.runner.callCount() != 2 {
		t.Fatal("cooldown should block the third call")
	}

	f.clk.Advance(31 * time.Second)
	f.dispatcher.Handle(ctx, line("alice", "!greet", domain.RoleSignals{}))
	if f.runner.callCount() != 3 {
		t.Fatal("cooldown should expire after 31s")
	}
}

func TestHandlePrefersLongestAlias(t *testing.T) {
	f := newFixture(t,
		domain.Trigger{Key: "so", Aliases: []string{"so"}, Body: "say short"},
		domain.Trigger{Key: "shoutout", Aliases: []string{"shoutout"}, Body: "say long"},
	)
	f.runner.reply = func(kind domain.ActionKind, args []string) (string, error) {
		return args[0], nil
	}

	f.dispatcher.Handle(context.Background(), line("alice", "!shoutout friendo", domain.RoleSignals{}))
	if len(f.chat.said) != 1 || f.chat.said[0] != "long" {
		t.Errorf("said = %v, want the longer alias to win", f.chat.said)
	}
}

func TestHandleSkipsUnknownAction(t *testing.T) {
	f := newFixture(t, domain.Trigger{Key: "odd", Aliases: []string{"odd"}, Body: "frobnicate everything"})

	f.dispatcher.Handle(context.Background(), line("alice", "!odd", domain.RoleSignals{}))
	if f.runner.callCount() != 0 {
		t.Error("unknown action token should not reach the runner")
	}
}

type fakeAnswerer struct {
	question string
}

func (f *fakeAnswerer) Answer(ctx context.Context, username, question string) (string, error) {
	f.question = question
	return "42", nil
}

func TestHandleAnswersMentions(t *testing.T) {
	f := newFixture(t, domain.Trigger{Key: "hello", Aliases: []string{"hello"}, Body: "say hi"})
	answerer := &fakeAnswerer{}
	f.dispatcher.answerer = answerer

	f.dispatcher.Handle(context.Background(), line("alice", "@StreamBot what is the answer?", domain.RoleSignals{}))

	if answerer.question != "what is the answer?" {
		t.Errorf("question = %q", answerer.question)
	}
	if len(f.chat.said) != 1 || f.chat.said[0] != "@alice 42" {
		t.Errorf("said = %v", f.chat.said)
	}
	if f.runner.callCount() != 0 {
		t.Error("mention lines should not hit the trigger pipeline")
	}
}

type fakeShoutoutChecker struct {
	enabled map[string]bool
	checks  int
}

func (f *fakeShoutoutChecker) AutoShoutout(ctx context.Context, username string) (bool, error) {
	f.checks++
	return f.enabled[username], nil
}

func TestHandleAutoShoutoutOncePerSession(t *testing.T) {
	f := newFixture(t, domain.Trigger{Key: "hello", Aliases: []string{"hello"}, Body: "say hi"})
	f.dispatcher.shoutout = &fakeShoutoutChecker{enabled: map[string]bool{"friendo": true}}

	f.dispatcher.Handle(context.Background(), line("friendo", "hey everyone", domain.RoleSignals{}))
	if f.runner.callCount() != 1 || f.runner.calls[0].kind != domain.ActionShoutout {
		t.Fatalf("first line should trigger a shoutout, calls=%v", f.runner.calls)
	}

	f.dispatcher.Handle(context.Background(), line("friendo", "hey again", domain.RoleSignals{}))
	if f.runner.callCount() != 1 {
		t.Error("shoutout should fire only once per session")
	}
}

func TestHandleAutoShoutoutGreetsSubscribersAndVIPs(t *testing.T) {
	f := newFixture(t, domain.Trigger{Key: "hello", Aliases: []string{"hello"}, Body: "say hi"})
	f.dispatcher.shoutout = &fakeShoutoutChecker{enabled: map[string]bool{}}

	f.dispatcher.Handle(context.Background(), line("subfan", "hi chat", domain.RoleSignals{IsSubscriber: true}))
	if f.runner.callCount() != 1 || f.runner.calls[0].kind != domain.ActionShoutout {
		t.Fatalf("subscriber's first line should trigger a shoutout, calls=%v", f.runner.calls)
	}

	f.dispatcher.Handle(context.Background(), line("vipfan", "hello", domain.RoleSignals{IsVIP: true}))
	if f.runner.callCount() != 2 {
		t.Fatal("VIP's first line should trigger a shoutout")
	}

	f.dispatcher.Handle(context.Background(), line("rando", "hello", domain.RoleSignals{}))
	if f.runner.callCount() != 2 {
		t.Error("unflagged viewer should not be greeted")
	}

	f.dispatcher.Handle(context.Background(), line("streamer", "hello", domain.RoleSignals{IsBroadcaster: true}))
	if f.runner.callCount() != 2 {
		t.Error("broadcaster should never be greeted")
	}
}
