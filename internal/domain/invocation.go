package domain

import (
	"context"
	"time"
)

// Invocation is one processed chat line. Args[0] is the matched alias token;
// the remaining entries are the whitespace-split tokens after it.
type Invocation struct {
	Channel      string
	Username     string
	DisplayName  string
	Signals      RoleSignals
	Message      string
	MatchedAlias string
	Args         []string
	Timestamp    time.Time
}

func NewInvocation(channel, username, displayName, message string, signals RoleSignals) *Invocation {
	return &Invocation{
		Channel:     channel,
		Username:    username,
		DisplayName: displayName,
		Signals:     signals,
		Message:     message,
		Timestamp:   time.Now(),
	}
}

type invocationKey struct{}

// WithInvocation embeds the invocation in the context so macro resolvers can
// reach the sender and channel.
func WithInvocation(ctx context.Context, inv *Invocation) context.Context {
	return context.WithValue(ctx, invocationKey{}, inv)
}

// InvocationFromContext returns the embedded invocation, or nil.
func InvocationFromContext(ctx context.Context) *Invocation {
	inv, _ := ctx.Value(invocationKey{}).(*Invocation)
	return inv
}
