package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/ovrlab/streambot/internal/domain"
	"github.com/ovrlab/streambot/pkg/errors"
)

func (a *Actions) shoutout(ctx context.Context, args []string) (string, error) {
	if len(args) == 0 {
		return "", errors.NewValidationError("shoutout needs a target user", "")
	}
	target, ok, err := a.deps.Helix.UserByName(ctx, strings.ToLower(args[0]))
	if err != nil {
		return "", errors.NewServiceError("failed to look up shoutout target", "helix", "UserByName", err)
	}
	if !ok {
		return "", errors.NewValidationError("unknown user for shoutout", "")
	}
	a.deps.Overlay.SendAlert("shoutout", map[string]string{
		"user":  target.DisplayName,
		"image": target.ProfileImageURL,
	})
	if len(args) > 1 {
		return strings.Join(args[1:], " "), nil
	}
	return "", nil
}

func (a *Actions) followage(ctx context.Context, inv *domain.Invocation, args []string) (string, error) {
	targetName := inv.Username
	if len(args) > 0 && args[0] != "" {
		targetName = args[0]
	}
	target, ok, err := a.deps.Helix.UserByName(ctx, strings.ToLower(targetName))
	if err != nil {
		return "", errors.NewServiceError("failed to look up user", "helix", "UserByName", err)
	}
	if !ok {
		return fmt.Sprintf("Sorry, I don't know who %s is", targetName), nil
	}
	since, following, err := a.deps.Helix.FollowDate(ctx, target.ID, a.deps.BroadcasterID)
	if err != nil {
		return "", errors.NewServiceError("failed to look up follow date", "helix", "FollowDate", err)
	}
	if !following {
		return fmt.Sprintf("%s is not following the channel", target.DisplayName), nil
	}
	return fmt.Sprintf("%s has been following since %s", target.DisplayName, since.Format("January 2, 2006")), nil
}
