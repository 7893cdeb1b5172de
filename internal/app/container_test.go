package app

import (
	"context"
	"testing"

	"github.com/ovrlab/streambot/internal/domain"
	"github.com/ovrlab/streambot/internal/macro"
	"go.uber.org/zap"
)

func TestChannelMacroLowercasesArgument(t *testing.T) {
	resolver := macro.NewResolver(zap.NewNop())
	registerMacros(resolver, nil, "")

	inv := domain.NewInvocation("testchannel", "alice", "Alice", "!hi", domain.RoleSignals{})
	ctx := domain.WithInvocation(context.Background(), inv)

	if got := resolver.Resolve(ctx, "say ${channel}", nil); got != "say testchannel" {
		t.Errorf("bare channel macro = %q", got)
	}
	if got := resolver.Resolve(ctx, "say ${channel SomeStreamer}", nil); got != "say somestreamer" {
		t.Errorf("channel macro with arg = %q", got)
	}
}

func TestUserMacroUsesDisplayName(t *testing.T) {
	resolver := macro.NewResolver(zap.NewNop())
	registerMacros(resolver, nil, "")

	inv := domain.NewInvocation("testchannel", "alice", "Alice", "!hi", domain.RoleSignals{})
	ctx := domain.WithInvocation(context.Background(), inv)

	if got := resolver.Resolve(ctx, "say hi ${user}", nil); got != "say hi Alice" {
		t.Errorf("user macro = %q", got)
	}
}
