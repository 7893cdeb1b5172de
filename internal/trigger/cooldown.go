package trigger

import (
	"sync"
	"time"

	"github.com/ovrlab/streambot/internal/clock"
	"github.com/ovrlab/streambot/internal/domain"
)

// throttleState tracks when a trigger may fire again. The per-user map is
// never pruned; its cardinality is bounded by the set of users who have run
// the command.
type throttleState struct {
	globalUntil time.Time
	userUntil   map[string]time.Time
}

// CooldownGate enforces minimum time between invocations of a trigger, both
// globally and per calling user. State advances only on Commit, so an
// invocation that fails validation can be retried immediately.
type CooldownGate struct {
	mu                sync.Mutex
	clk               clock.Clock
	broadcasterBypass bool
	state             map[string]*throttleState
}

func NewCooldownGate(clk clock.Clock, broadcasterBypass bool) *CooldownGate {
	return &CooldownGate{
		clk:               clk,
		broadcasterBypass: broadcasterBypass,
		state:             make(map[string]*throttleState),
	}
}

// Admit reports whether the trigger may fire now for the given user.
func (g *CooldownGate) Admit(trig domain.Trigger, user string, signals domain.RoleSignals) bool {
	if g.broadcasterBypass && signals.IsBroadcaster {
		return true
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	st, ok := g.state[trig.Key]
	if !ok {
		return true
	}

	now := g.clk.Now()
	if now.Before(st.globalUntil) {
		return false
	}
	if until, ok := st.userUntil[user]; ok && now.Before(until) {
		return false
	}
	return true
}

// Commit records a successful invocation, advancing both cooldown scopes.
func (g *CooldownGate) Commit(trig domain.Trigger, user string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	st, ok := g.state[trig.Key]
	if !ok {
		st = &throttleState{userUntil: make(map[string]time.Time)}
		g.state[trig.Key] = st
	}

	now := g.clk.Now()
	st.globalUntil = now.Add(trig.GlobalCooldown)
	st.userUntil[user] = now.Add(trig.UserCooldown)
}
