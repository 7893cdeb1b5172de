package domain

import "strings"

// ActionKind identifies a built-in action a resolved trigger body can invoke.
// The set is closed; Dispatch switches over it exhaustively.
type ActionKind string

const (
	ActionSay          ActionKind = "say"
	ActionWhisper      ActionKind = "whisper"
	ActionSfx          ActionKind = "sfx"
	ActionTip          ActionKind = "tip"
	ActionAddTip       ActionKind = "addtip"
	ActionEditTip      ActionKind = "edittip"
	ActionDeleteTip    ActionKind = "deletetip"
	ActionQuote        ActionKind = "quote"
	ActionAddQuote     ActionKind = "addquote"
	ActionEditQuote    ActionKind = "editquote"
	ActionDeleteQuote  ActionKind = "deletequote"
	ActionRaffle       ActionKind = "raffle"
	ActionStartRaffle  ActionKind = "startraffle"
	ActionEndRaffle    ActionKind = "endraffle"
	ActionShoutout     ActionKind = "shoutout"
	ActionTrivia       ActionKind = "trivia"
	ActionAnswerTrivia ActionKind = "answertrivia"
	ActionFollowage    ActionKind = "followage"
	ActionGiveaway     ActionKind = "giveaway"
	ActionLeaderboard  ActionKind = "leaderboard"
	ActionRank         ActionKind = "rank"
	ActionIgnore       ActionKind = "ignore"
	ActionTts          ActionKind = "tts"
)

func (a ActionKind) String() string {
	return string(a)
}

func (a ActionKind) IsValid() bool {
	switch a {
	case ActionSay, ActionWhisper, ActionSfx,
		ActionTip, ActionAddTip, ActionEditTip, ActionDeleteTip,
		ActionQuote, ActionAddQuote, ActionEditQuote, ActionDeleteQuote,
		ActionRaffle, ActionStartRaffle, ActionEndRaffle,
		ActionShoutout, ActionTrivia, ActionAnswerTrivia, ActionFollowage,
		ActionGiveaway, ActionLeaderboard, ActionRank, ActionIgnore, ActionTts:
		return true
	default:
		return false
	}
}

// ParseActionKind maps a resolved token to an ActionKind. Matching is
// case-insensitive; unknown tokens report ok=false.
func ParseActionKind(token string) (ActionKind, bool) {
	kind := ActionKind(strings.ToLower(token))
	if !kind.IsValid() {
		return "", false
	}
	return kind, true
}
