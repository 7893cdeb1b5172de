package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/ovrlab/streambot/internal/domain"
	"github.com/ovrlab/streambot/pkg/errors"
)

const (
	leaderboardMin = 5
	leaderboardMax = 25
)

func (a *Actions) leaderboard(ctx context.Context, args []string) (string, error) {
	// Requested counts clamp to the 5..25 range.
	count := leaderboardMin
	if id, numeric := parseID(args); numeric {
		count = id
	}
	if count < leaderboardMin {
		count = leaderboardMin
	}
	if count > leaderboardMax {
		count = leaderboardMax
	}
	top, err := a.deps.Stats.Top(ctx, count)
	if err != nil {
		return "", errors.NewStoreError("failed to fetch leaderboard", "userstats", "select", err)
	}
	if len(top) == 0 {
		return "/me Nobody has chatted yet!", nil
	}
	return fmt.Sprintf("/me Top %d users: %s.", count, strings.Join(top, ", ")), nil
}

func (a *Actions) rank(ctx context.Context, inv *domain.Invocation, args []string) (string, error) {
	target := inv.Username
	explicit := len(args) > 0 && args[0] != ""
	if explicit {
		target = args[0]
	}
	pos, ok, err := a.deps.Stats.Rank(ctx, strings.ToLower(target))
	if err != nil {
		return "", errors.NewStoreError("failed to fetch rank", "userstats", "select", err)
	}
	if !ok {
		return "", nil
	}
	if explicit {
		return fmt.Sprintf("/me User %s is ranked #%d.", target, pos), nil
	}
	return fmt.Sprintf("@%s You are ranked #%d.", inv.DisplayName, pos), nil
}

// ignore toggles whether a user counts toward the leaderboard. Second argument
// "0" clears the flag, anything else sets it.
func (a *Actions) ignore(ctx context.Context, inv *domain.Invocation, args []string) (string, error) {
	if len(args) < 2 {
		return "", errors.NewValidationError("ignore needs a target user and a value", "")
	}
	target := strings.ToLower(args[0])
	value := args[1] != "0"
	changed, err := a.deps.Stats.SetIgnored(ctx, target, value)
	if err != nil {
		return "", errors.NewStoreError("failed to update ignore flag", "userstats", "update", err)
	}
	if !changed {
		return "", errors.NewValidationError("unknown user for ignore", "")
	}
	state := "ignored"
	if !value {
		state = "not ignored"
	}
	return fmt.Sprintf("@%s Set %s's stats status to %s.", inv.DisplayName, target, state), nil
}
