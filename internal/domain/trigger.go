package domain

import "time"

// Level is the ordinal trust level required to run a trigger.
type Level int

const (
	LevelEveryone    Level = 0
	LevelSubscriber  Level = 1
	LevelModerator   Level = 2
	LevelBroadcaster Level = 3
)

func (l Level) String() string {
	switch l {
	case LevelBroadcaster:
		return "broadcaster"
	case LevelModerator:
		return "moderator"
	case LevelSubscriber:
		return "subscriber"
	default:
		return "everyone"
	}
}

// RoleSignals carries the caller metadata attached to a chat line. VIP does
// not factor into permission levels; it only affects the session greeting.
type RoleSignals struct {
	IsBroadcaster bool
	IsModerator   bool
	IsSubscriber  bool
	IsVIP         bool
}

// EvaluateLevel maps role signals to the highest level satisfied. Signals are
// checked in priority order; there is no combination logic.
func EvaluateLevel(s RoleSignals) Level {
	switch {
	case s.IsBroadcaster:
		return LevelBroadcaster
	case s.IsModerator:
		return LevelModerator
	case s.IsSubscriber:
		return LevelSubscriber
	default:
		return LevelEveryone
	}
}

// Trigger is a registered chat command. Trigger values are immutable once
// loaded; admin mutations replace the whole registry snapshot.
type Trigger struct {
	Key            string
	Aliases        []string
	Level          Level
	UserCooldown   time.Duration
	GlobalCooldown time.Duration
	Body           string
}

// Names returns the key plus all aliases.
func (t Trigger) Names() []string {
	names := make([]string, 0, len(t.Aliases)+1)
	names = append(names, t.Key)
	names = append(names, t.Aliases...)
	return names
}
