package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/ovrlab/streambot/internal/domain"
	"github.com/ovrlab/streambot/pkg/errors"
)

// giveaway hands out the next item from a named group. The last argument names
// the recipient, the rest name the group.
func (a *Actions) giveaway(ctx context.Context, inv *domain.Invocation, args []string) (string, error) {
	if len(args) < 2 {
		return "", errors.NewValidationError("giveaway needs a group name and a target user", "")
	}
	target := args[len(args)-1]
	groupName := strings.Join(args[:len(args)-1], " ")

	group, ok, err := a.deps.Giveaways.GroupByName(ctx, groupName)
	if err != nil {
		return "", errors.NewStoreError("failed to look up giveaway group", "giveaway_groups", "select", err)
	}
	if !ok {
		return "", errors.NewValidationError("unknown giveaway group",
			fmt.Sprintf("@%s There is no giveaway named %s", inv.DisplayName, groupName))
	}

	item, ok, err := a.deps.Giveaways.NextItem(ctx, group)
	if err != nil {
		return "", errors.NewStoreError("failed to pick giveaway item", "giveaway", "select", err)
	}
	if !ok {
		return "", errors.NewValidationError("giveaway group exhausted",
			fmt.Sprintf("@%s oops, it looks like we are all out of items for %s. :(", inv.DisplayName, groupName))
	}

	user, ok, err := a.deps.Helix.UserByName(ctx, strings.ToLower(target))
	if err != nil {
		return "", errors.NewServiceError("failed to look up giveaway recipient", "helix", "UserByName", err)
	}
	if !ok {
		return "", errors.NewValidationError("unknown giveaway recipient",
			fmt.Sprintf("@%s we could not find a user named %s.", inv.DisplayName, target))
	}

	if err := a.deps.Giveaways.AssignItem(ctx, item.ID, user.Login); err != nil {
		return "", errors.NewStoreError("failed to assign giveaway item", "giveaway", "update", err)
	}
	a.deps.Chat.Whisper(user.Login, fmt.Sprintf("Here is your key for %s: %s", item.Name, item.Key))
	return fmt.Sprintf("@%s check your whispers for your key for %s!", user.DisplayName, item.Name), nil
}
