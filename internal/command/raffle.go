package command

import (
	"context"
	"strings"

	"github.com/ovrlab/streambot/internal/domain"
	"github.com/ovrlab/streambot/pkg/errors"
)

func (a *Actions) raffle(ctx context.Context, inv *domain.Invocation, args []string) (string, error) {
	active, err := a.deps.Settings.RaffleActive(ctx)
	if err != nil {
		return "", errors.NewStoreError("failed to read raffle state", "settings", "select", err)
	}
	if !active {
		return "", errors.NewValidationError("no raffle is running", "")
	}
	if err := a.deps.Raffle.Enter(ctx, inv.Username); err != nil {
		return "", errors.NewStoreError("failed to enter raffle", "raffle", "insert", err)
	}
	return strings.Join(args, " "), nil
}

func (a *Actions) startRaffle(ctx context.Context, args []string) (string, error) {
	active, err := a.deps.Settings.RaffleActive(ctx)
	if err != nil {
		return "", errors.NewStoreError("failed to read raffle state", "settings", "select", err)
	}
	if active {
		return "", errors.NewValidationError("a raffle is already running", "")
	}
	if err := a.deps.Raffle.Clear(ctx); err != nil {
		return "", errors.NewStoreError("failed to clear raffle entries", "raffle", "delete", err)
	}
	if err := a.deps.Settings.SetRaffleActive(ctx, true); err != nil {
		return "", errors.NewStoreError("failed to open raffle", "settings", "update", err)
	}
	return strings.Join(args, " "), nil
}

func (a *Actions) endRaffle(ctx context.Context, args []string) (string, error) {
	active, err := a.deps.Settings.RaffleActive(ctx)
	if err != nil {
		return "", errors.NewStoreError("failed to read raffle state", "settings", "select", err)
	}
	if !active {
		return "", errors.NewValidationError("no raffle is running", "")
	}
	if err := a.deps.Settings.SetRaffleActive(ctx, false); err != nil {
		return "", errors.NewStoreError("failed to close raffle", "settings", "update", err)
	}
	winner, ok, err := a.deps.Raffle.RandomEntrant(ctx)
	if err != nil {
		return "", errors.NewStoreError("failed to draw raffle winner", "raffle", "select", err)
	}
	if !ok {
		return "", errors.NewValidationError("the raffle had no entrants", "")
	}
	a.deps.Overlay.SendAlert("rafflewinner", map[string]string{"user": winner})
	// Trigger bodies reference the winner as ${winner}; the macro pass leaves
	// unknown names untouched so the placeholder survives until here.
	return strings.ReplaceAll(strings.Join(args, " "), "${winner}", winner), nil
}
