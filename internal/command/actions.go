// Package command implements the fixed table of built-in actions a resolved
// trigger body can invoke. Dispatch switches exhaustively over the closed
// ActionKind set; each action returns at most one outbound chat line.
package command

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/ovrlab/streambot/internal/domain"
	"github.com/ovrlab/streambot/internal/service"
	"github.com/ovrlab/streambot/internal/store"
	"go.uber.org/zap"
)

// ChatSender posts messages back to the chat platform.
type ChatSender interface {
	Say(message string)
	Whisper(username, message string)
}

// OverlaySender pushes presentation events toward the overlay queue.
type OverlaySender interface {
	SendAlert(alertType string, params map[string]string)
	SendSfx(key string) bool
	SendTts(text string)
	SendTrivia(text string)
}

// HelixAPI resolves external users and follow relationships.
type HelixAPI interface {
	UserByName(ctx context.Context, login string) (service.HelixUser, bool, error)
	FollowDate(ctx context.Context, fromID, toID string) (time.Time, bool, error)
	ChannelGame(ctx context.Context, broadcasterID string) (string, error)
}

type TipRepo interface {
	Random(ctx context.Context) (store.Tip, bool, error)
	ByID(ctx context.Context, id int) (store.Tip, bool, error)
	Add(ctx context.Context, username, message string) (int, error)
	Update(ctx context.Context, id int, message string) (bool, error)
	Delete(ctx context.Context, id int) (bool, error)
}

type QuoteRepo interface {
	Random(ctx context.Context) (store.Quote, bool, error)
	ByID(ctx context.Context, id int) (store.Quote, bool, error)
	Add(ctx context.Context, username, game, message string) (int, error)
	Update(ctx context.Context, id int, message string) (bool, error)
	Delete(ctx context.Context, id int) (bool, error)
}

type RaffleRepo interface {
	Enter(ctx context.Context, username string) error
	Clear(ctx context.Context) error
	RandomEntrant(ctx context.Context) (string, bool, error)
}

type TriviaRepo interface {
	Random(ctx context.Context) (store.TriviaQuestion, bool, error)
	ByID(ctx context.Context, id int) (store.TriviaQuestion, bool, error)
	MarkAnswered(ctx context.Context, id int, username string) error
}

type GiveawayRepo interface {
	GroupByName(ctx context.Context, name string) (store.GiveawayGroup, bool, error)
	NextItem(ctx context.Context, group store.GiveawayGroup) (store.GiveawayItem, bool, error)
	AssignItem(ctx context.Context, itemID int, recipient string) error
}

type StatsRepo interface {
	AddTrivia(ctx context.Context, username string) error
	Top(ctx context.Context, n int) ([]string, error)
	Rank(ctx context.Context, username string) (int, bool, error)
	SetIgnored(ctx context.Context, username string, ignored bool) (bool, error)
}

type SettingsRepo interface {
	RaffleActive(ctx context.Context) (bool, error)
	SetRaffleActive(ctx context.Context, active bool) error
}

// Dependencies bundles everything the action table needs. IsLive reports
// whether the channel is currently streaming; BroadcasterID is the channel
// owner's platform user id.
type Dependencies struct {
	Tips          TipRepo
	Quotes        QuoteRepo
	Raffle        RaffleRepo
	Trivia        TriviaRepo
	Giveaways     GiveawayRepo
	Stats         StatsRepo
	Settings      SettingsRepo
	Helix         HelixAPI
	Overlay       OverlaySender
	Chat          ChatSender
	IsLive        func() bool
	BroadcasterID string
	Logger        *zap.Logger
}

// Actions is the closed action table.
type Actions struct {
	deps *Dependencies

	triviaMu      sync.Mutex
	currentTrivia *store.TriviaQuestion
}

func NewActions(deps *Dependencies) *Actions {
	return &Actions{deps: deps}
}

// Dispatch runs one action. The returned string is the outbound chat line, if
// any. A *errors.ValidationError signals a user-visible rejection; the caller
// relays its Reply and must not commit cooldowns.
func (a *Actions) Dispatch(ctx context.Context, inv *domain.Invocation, kind domain.ActionKind, args []string) (string, error) {
	switch kind {
	case domain.ActionSay:
		return a.say(args)
	case domain.ActionWhisper:
		return a.whisper(args)
	case domain.ActionSfx:
		return a.sfx(args)
	case domain.ActionTts:
		return a.tts(args)
	case domain.ActionTip:
		return a.tip(ctx, inv, args)
	case domain.ActionAddTip:
		return a.addTip(ctx, inv, args)
	case domain.ActionEditTip:
		return a.editTip(ctx, args)
	case domain.ActionDeleteTip:
		return a.deleteTip(ctx, args)
	case domain.ActionQuote:
		return a.quote(ctx, inv, args)
	case domain.ActionAddQuote:
		return a.addQuote(ctx, inv, args)
	case domain.ActionEditQuote:
		return a.editQuote(ctx, args)
	case domain.ActionDeleteQuote:
		return a.deleteQuote(ctx, args)
	case domain.ActionRaffle:
		return a.raffle(ctx, inv, args)
	case domain.ActionStartRaffle:
		return a.startRaffle(ctx, args)
	case domain.ActionEndRaffle:
		return a.endRaffle(ctx, args)
	case domain.ActionShoutout:
		return a.shoutout(ctx, args)
	case domain.ActionFollowage:
		return a.followage(ctx, inv, args)
	case domain.ActionTrivia:
		return a.trivia(ctx, inv, args)
	case domain.ActionAnswerTrivia:
		return a.answerTrivia(ctx, inv, args)
	case domain.ActionGiveaway:
		return a.giveaway(ctx, inv, args)
	case domain.ActionLeaderboard:
		return a.leaderboard(ctx, args)
	case domain.ActionRank:
		return a.rank(ctx, inv, args)
	case domain.ActionIgnore:
		return a.ignore(ctx, inv, args)
	}
	return "", nil
}

// parseID reports the numeric argument at args[0], if present.
func parseID(args []string) (int, bool) {
	if len(args) == 0 {
		return 0, false
	}
	id, err := strconv.Atoi(args[0])
	if err != nil || id < 0 {
		return 0, false
	}
	return id, true
}
