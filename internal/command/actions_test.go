package command

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ovrlab/streambot/internal/domain"
	"github.com/ovrlab/streambot/internal/service"
	"github.com/ovrlab/streambot/internal/store"
	"github.com/ovrlab/streambot/pkg/errors"
	"go.uber.org/zap"
)

type fakeChat struct {
	whispers []string
}

func (f *fakeChat) Say(message string) {}
func (f *fakeChat) Whisper(username, message string) {
	f.whispers = append(f.whispers, username+": "+message)
}

type fakeOverlay struct {
	alerts []string
	sfx    map[string]bool
	tts    []string
	trivia []string
}

func (f *fakeOverlay) SendAlert(alertType string, params map[string]string) {
	f.alerts = append(f.alerts, alertType+"/"+params["user"])
}
func (f *fakeOverlay) SendSfx(key string) bool { return f.sfx[key] }
func (f *fakeOverlay) SendTts(text string)     { f.tts = append(f.tts, text) }
func (f *fakeOverlay) SendTrivia(text string)  { f.trivia = append(f.trivia, text) }

type fakeHelix struct {
	users      map[string]service.HelixUser
	followDate time.Time
	following  bool
	game       string
}

func (f *fakeHelix) UserByName(ctx context.Context, login string) (service.HelixUser, bool, error) {
	u, ok := f.users[login]
	return u, ok, nil
}
func (f *fakeHelix) FollowDate(ctx context.Context, fromID, toID string) (time.Time, bool, error) {
	return f.followDate, f.following, nil
}
func (f *fakeHelix) ChannelGame(ctx context.Context, broadcasterID string) (string, error) {
	return f.game, nil
}

type fakeTips struct {
	rows   map[int]store.Tip
	nextID int
}

func (f *fakeTips) Random(ctx context.Context) (store.Tip, bool, error) {
	for _, row := range f.rows {
		return row, true, nil
	}
	return store.Tip{}, false, nil
}
func (f *fakeTips) ByID(ctx context.Context, id int) (store.Tip, bool, error) {
	row, ok := f.rows[id]
	return row, ok, nil
}
func (f *fakeTips) Add(ctx context.Context, username, message string) (int, error) {
	f.nextID++
	f.rows[f.nextID] = store.Tip{ID: f.nextID, Username: username, Message: message}
	return f.nextID, nil
}
func (f *fakeTips) Update(ctx context.Context, id int, message string) (bool, error) {
	row, ok := f.rows[id]
	if ok {
		row.Message = message
		f.rows[id] = row
	}
	return ok, nil
}
func (f *fakeTips) Delete(ctx context.Context, id int) (bool, error) {
	_, ok := f.rows[id]
	delete(f.rows, id)
	return ok, nil
}

type fakeSettings struct {
	raffle bool
}

func (f *fakeSettings) RaffleActive(ctx context.Context) (bool, error) { return f.raffle, nil }
func (f *fakeSettings) SetRaffleActive(ctx context.Context, active bool) error {
	f.raffle = active
	return nil
}

type fakeRaffle struct {
	entrants []string
}

func (f *fakeRaffle) Enter(ctx context.Context, username string) error {
	f.entrants = append(f.entrants, username)
	return nil
}
func (f *fakeRaffle) Clear(ctx context.Context) error {
	f.entrants = nil
	return nil
}
func (f *fakeRaffle) RandomEntrant(ctx context.Context) (string, bool, error) {
	if len(f.entrants) == 0 {
		return "", false, nil
	}
	return f.entrants[0], true, nil
}

type fakeTrivia struct {
	rows     map[int]store.TriviaQuestion
	answered map[int]string
}

func (f *fakeTrivia) Random(ctx context.Context) (store.TriviaQuestion, bool, error) {
	for id, row := range f.rows {
		if _, done := f.answered[id]; !done {
			return row, true, nil
		}
	}
	return store.TriviaQuestion{}, false, nil
}
func (f *fakeTrivia) ByID(ctx context.Context, id int) (store.TriviaQuestion, bool, error) {
	row, ok := f.rows[id]
	return row, ok, nil
}
func (f *fakeTrivia) MarkAnswered(ctx context.Context, id int, username string) error {
	f.answered[id] = username
	return nil
}

type fakeGiveaways struct {
	groups   map[string]store.GiveawayGroup
	items    map[int][]store.GiveawayItem
	assigned map[int]string
}

func (f *fakeGiveaways) GroupByName(ctx context.Context, name string) (store.GiveawayGroup, bool, error) {
	g, ok := f.groups[name]
	return g, ok, nil
}
func (f *fakeGiveaways) NextItem(ctx context.Context, group store.GiveawayGroup) (store.GiveawayItem, bool, error) {
	for _, item := range f.items[group.ID] {
		if _, taken := f.assigned[item.ID]; !taken {
			return item, true, nil
		}
	}
	return store.GiveawayItem{}, false, nil
}
func (f *fakeGiveaways) AssignItem(ctx context.Context, itemID int, recipient string) error {
	f.assigned[itemID] = recipient
	return nil
}

type fakeStats struct {
	trivia  map[string]int
	ignored map[string]bool
	lastTop int
}

func (f *fakeStats) AddTrivia(ctx context.Context, username string) error {
	f.trivia[username]++
	return nil
}
func (f *fakeStats) Top(ctx context.Context, n int) ([]string, error) {
	f.lastTop = n
	return []string{"alice", "bob"}, nil
}
func (f *fakeStats) Rank(ctx context.Context, username string) (int, bool, error) {
	if username == "alice" {
		return 1, true, nil
	}
	return 0, false, nil
}
func (f *fakeStats) SetIgnored(ctx context.Context, username string, ignored bool) (bool, error) {
	if username == "ghost" {
		return false, nil
	}
	f.ignored[username] = ignored
	return true, nil
}

type harness struct {
	actions  *Actions
	chat     *fakeChat
	overlay  *fakeOverlay
	settings *fakeSettings
	raffle   *fakeRaffle
	trivia   *fakeTrivia
	tips     *fakeTips
	stats    *fakeStats
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	chat := &fakeChat{}
	overlay := &fakeOverlay{sfx: map[string]bool{"horn": true}}
	settings := &fakeSettings{}
	raffle := &fakeRaffle{}
	stats := &fakeStats{trivia: map[string]int{}, ignored: map[string]bool{}}
	tips := &fakeTips{rows: map[int]store.Tip{}}
	trivia := &fakeTrivia{
		rows: map[int]store.TriviaQuestion{
			7: {ID: 7, Question: "Capital of France?", Answer: "Paris", Details: "The city of light."},
		},
		answered: map[int]string{},
	}
	deps := &Dependencies{
		Tips:     tips,
		Raffle:   raffle,
		Trivia:   trivia,
		Settings: settings,
		Giveaways: &fakeGiveaways{
			groups:   map[string]store.GiveawayGroup{"steam keys": {ID: 1, Name: "steam keys"}},
			items:    map[int][]store.GiveawayItem{1: {{ID: 10, Name: "Cool Game", Key: "ABC-123"}}},
			assigned: map[int]string{},
		},
		Stats: stats,
		Helix: &fakeHelix{
			users: map[string]service.HelixUser{
				"friendo": {ID: "42", Login: "friendo", DisplayName: "Friendo", ProfileImageURL: "https://img/friendo.png"},
			},
			following:  true,
			followDate: time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC),
		},
		Overlay:       overlay,
		Chat:          chat,
		IsLive:        func() bool { return true },
		BroadcasterID: "1",
		Logger:        zap.NewNop(),
	}
	return &harness{
		actions:  NewActions(deps),
		chat:     chat,
		overlay:  overlay,
		settings: settings,
		raffle:   raffle,
		trivia:   trivia,
		tips:     tips,
		stats:    stats,
	}
}

func inv(username string) *domain.Invocation {
	display := strings.ToUpper(username[:1]) + username[1:]
	return &domain.Invocation{Channel: "testchannel", Username: username, DisplayName: display}
}

func TestAddTipRejectsShortMessage(t *testing.T) {
	h := newHarness(t)
	_, err := h.actions.Dispatch(context.Background(), inv("alice"), domain.ActionAddTip, []string{"x"})
	verr, ok := errors.AsValidation(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	want := "alice Your tip message is too short (2 characters min, yours was 1)"
	if verr.Reply != want {
		t.Errorf("reply = %q, want %q", verr.Reply, want)
	}
	if len(h.tips.rows) != 0 {
		t.Error("short tip should not be stored")
	}
}

func TestAddTipThenFetchByID(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	reply, err := h.actions.Dispatch(ctx, inv("alice"), domain.ActionAddTip, []string{"stay", "hydrated"})
	if err != nil {
		t.Fatalf("addtip: %v", err)
	}
	if reply != "Tip #1 has been added to the list" {
		t.Errorf("addtip reply = %q", reply)
	}
	reply, err = h.actions.Dispatch(ctx, inv("bob"), domain.ActionTip, []string{"1"})
	if err != nil {
		t.Fatalf("tip: %v", err)
	}
	if reply != "TIP #1: stay hydrated" {
		t.Errorf("tip reply = %q", reply)
	}
}

func TestTipWhenEmpty(t *testing.T) {
	h := newHarness(t)
	reply, err := h.actions.Dispatch(context.Background(), inv("bob"), domain.ActionTip, nil)
	if err != nil {
		t.Fatalf("tip: %v", err)
	}
	if reply != "Sorry, bob, we're all out of tips!" {
		t.Errorf("reply = %q", reply)
	}
}

func TestRaffleLifecycle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.actions.Dispatch(ctx, inv("alice"), domain.ActionRaffle, []string{"entered!"})
	if _, ok := errors.AsValidation(err); !ok {
		t.Fatalf("raffle while inactive should reject, got %v", err)
	}

	if _, err := h.actions.Dispatch(ctx, inv("mod"), domain.ActionStartRaffle, []string{"Raffle", "open!"}); err != nil {
		t.Fatalf("startraffle: %v", err)
	}
	if !h.settings.raffle {
		t.Fatal("raffle should be active")
	}

	reply, err := h.actions.Dispatch(ctx, inv("alice"), domain.ActionRaffle, []string{"You", "are", "in!"})
	if err != nil {
		t.Fatalf("raffle: %v", err)
	}
	if reply != "You are in!" {
		t.Errorf("raffle reply = %q", reply)
	}

	reply, err = h.actions.Dispatch(ctx, inv("mod"), domain.ActionEndRaffle, []string{"The", "winner", "is", "${winner}!"})
	if err != nil {
		t.Fatalf("endraffle: %v", err)
	}
	if reply != "The winner is alice!" {
		t.Errorf("endraffle reply = %q", reply)
	}
	if h.settings.raffle {
		t.Error("raffle should be closed after endraffle")
	}
	if len(h.overlay.alerts) != 1 || h.overlay.alerts[0] != "rafflewinner/alice" {
		t.Errorf("alerts = %v", h.overlay.alerts)
	}
}

func TestTriviaAnswerFlow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	reply, err := h.actions.Dispatch(ctx, inv("mod"), domain.ActionTrivia, []string{"7"})
	if err != nil {
		t.Fatalf("trivia: %v", err)
	}
	if !strings.Contains(reply, "Capital of France?") {
		t.Errorf("trivia reply = %q", reply)
	}

	// Wrong guess stays silent.
	reply, err = h.actions.Dispatch(ctx, inv("bob"), domain.ActionAnswerTrivia, []string{"London"})
	if err != nil || reply != "" {
		t.Fatalf("wrong guess: reply=%q err=%v", reply, err)
	}

	// Matching on prefix, case-insensitive.
	reply, err = h.actions.Dispatch(ctx, inv("alice"), domain.ActionAnswerTrivia, []string{"paris", "obviously"})
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if !strings.Contains(reply, "That's correct, Alice!") {
		t.Errorf("answer reply = %q", reply)
	}
	if h.trivia.answered[7] != "alice" {
		t.Error("question should be marked answered by alice")
	}

	// A second correct answer finds no open question.
	reply, err = h.actions.Dispatch(ctx, inv("bob"), domain.ActionAnswerTrivia, []string{"paris"})
	if err != nil || reply != "" {
		t.Fatalf("late answer: reply=%q err=%v", reply, err)
	}
}

func TestGiveawayAssignsAndWhispers(t *testing.T) {
	h := newHarness(t)
	reply, err := h.actions.Dispatch(context.Background(), inv("mod"), domain.ActionGiveaway, []string{"steam", "keys", "Friendo"})
	if err != nil {
		t.Fatalf("giveaway: %v", err)
	}
	if reply != "@Friendo check your whispers for your key for Cool Game!" {
		t.Errorf("reply = %q", reply)
	}
	if len(h.chat.whispers) != 1 || h.chat.whispers[0] != "friendo: Here is your key for Cool Game: ABC-123" {
		t.Errorf("whispers = %v", h.chat.whispers)
	}
}

func TestShoutoutSendsAlert(t *testing.T) {
	h := newHarness(t)
	reply, err := h.actions.Dispatch(context.Background(), inv("mod"), domain.ActionShoutout, []string{"Friendo", "Go", "follow!"})
	if err != nil {
		t.Fatalf("shoutout: %v", err)
	}
	if reply != "Go follow!" {
		t.Errorf("reply = %q", reply)
	}
	if len(h.overlay.alerts) != 1 || h.overlay.alerts[0] != "shoutout/Friendo" {
		t.Errorf("alerts = %v", h.overlay.alerts)
	}
}

func TestSfxRejectsUnknownKey(t *testing.T) {
	h := newHarness(t)
	if _, err := h.actions.Dispatch(context.Background(), inv("alice"), domain.ActionSfx, []string{"horn"}); err != nil {
		t.Fatalf("known sfx: %v", err)
	}
	_, err := h.actions.Dispatch(context.Background(), inv("alice"), domain.ActionSfx, []string{"nope"})
	if _, ok := errors.AsValidation(err); !ok {
		t.Fatalf("unknown sfx should reject, got %v", err)
	}
}

func TestWhisperTakesLastArgAsTarget(t *testing.T) {
	h := newHarness(t)
	if _, err := h.actions.Dispatch(context.Background(), inv("mod"), domain.ActionWhisper, []string{"hello", "there", "friendo"}); err != nil {
		t.Fatalf("whisper: %v", err)
	}
	if len(h.chat.whispers) != 1 || h.chat.whispers[0] != "friendo: hello there" {
		t.Errorf("whispers = %v", h.chat.whispers)
	}
}

func TestLeaderboardClampsCount(t *testing.T) {
	h := newHarness(t)

	reply, err := h.actions.Dispatch(context.Background(), inv("alice"), domain.ActionLeaderboard, []string{"3"})
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if h.stats.lastTop != 5 {
		t.Errorf("requested count = %d, want 5 floor", h.stats.lastTop)
	}
	if reply != "/me Top 5 users: alice, bob." {
		t.Errorf("reply = %q", reply)
	}

	if _, err := h.actions.Dispatch(context.Background(), inv("alice"), domain.ActionLeaderboard, []string{"99"}); err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if h.stats.lastTop != 25 {
		t.Errorf("requested count = %d, want 25 ceiling", h.stats.lastTop)
	}
}

func TestFollowage(t *testing.T) {
	h := newHarness(t)
	reply, err := h.actions.Dispatch(context.Background(), inv("friendo"), domain.ActionFollowage, nil)
	if err != nil {
		t.Fatalf("followage: %v", err)
	}
	if reply != "Friendo has been following since April 1, 2023" {
		t.Errorf("reply = %q", reply)
	}
}
