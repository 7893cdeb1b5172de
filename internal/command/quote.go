package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/ovrlab/streambot/internal/domain"
	"github.com/ovrlab/streambot/internal/store"
	"github.com/ovrlab/streambot/pkg/errors"
	"go.uber.org/zap"
)

// formatQuote renders a stored quote with its game and date tag. Messages that
// do not already carry quotation marks get wrapped in them.
func formatQuote(row store.Quote) string {
	message := row.Message
	if !strings.HasPrefix(message, `"`) {
		message = fmt.Sprintf("%q", message)
	}
	date := row.CreatedAt.Format("1/2/2006")
	tag := fmt.Sprintf("[%s]", date)
	if row.Game != "" {
		tag = fmt.Sprintf("[%s] [%s]", row.Game, date)
	}
	return fmt.Sprintf("Quote #%d: %s %s", row.ID, message, tag)
}

func (a *Actions) quote(ctx context.Context, inv *domain.Invocation, args []string) (string, error) {
	var (
		row store.Quote
		ok  bool
		err error
	)
	if id, numeric := parseID(args); numeric {
		row, ok, err = a.deps.Quotes.ByID(ctx, id)
	} else {
		row, ok, err = a.deps.Quotes.Random(ctx)
	}
	if err != nil {
		return "", errors.NewStoreError("failed to fetch quote", "quotes", "select", err)
	}
	if !ok {
		return fmt.Sprintf("Sorry, %s, we're all out of quotes!", inv.Username), nil
	}
	return formatQuote(row), nil
}

func (a *Actions) addQuote(ctx context.Context, inv *domain.Invocation, args []string) (string, error) {
	if !a.deps.IsLive() {
		return "", errors.NewValidationError("channel offline",
			fmt.Sprintf("%s You can only add a quote when the channel is live", inv.Username))
	}
	message := strings.Join(args, " ")
	if len(message) < 2 {
		return "", errors.NewValidationError("quote message too short",
			fmt.Sprintf("%s Your quote message is too short (2 characters min, yours was %d)", inv.Username, len(message)))
	}
	game, err := a.deps.Helix.ChannelGame(ctx, a.deps.BroadcasterID)
	if err != nil {
		a.deps.Logger.Warn("could not resolve current game for quote", zap.Error(err))
		game = ""
	}
	id, err := a.deps.Quotes.Add(ctx, inv.Username, game, message)
	if err != nil {
		return "", errors.NewStoreError("failed to add quote", "quotes", "insert", err)
	}
	return fmt.Sprintf("Quote #%d has been added!", id), nil
}

func (a *Actions) editQuote(ctx context.Context, args []string) (string, error) {
	id, numeric := parseID(args)
	if !numeric || len(args) < 2 {
		return "", errors.NewValidationError("editquote needs an id and a message", "")
	}
	changed, err := a.deps.Quotes.Update(ctx, id, strings.Join(args[1:], " "))
	if err != nil {
		return "", errors.NewStoreError("failed to edit quote", "quotes", "update", err)
	}
	if !changed {
		return "", errors.NewValidationError("quote not found", "")
	}
	return fmt.Sprintf("Quote #%d has been edited!", id), nil
}

func (a *Actions) deleteQuote(ctx context.Context, args []string) (string, error) {
	id, numeric := parseID(args)
	if !numeric {
		return "", errors.NewValidationError("deletequote needs an id", "")
	}
	changed, err := a.deps.Quotes.Delete(ctx, id)
	if err != nil {
		return "", errors.NewStoreError("failed to delete quote", "quotes", "delete", err)
	}
	if !changed {
		return "", errors.NewValidationError("quote not found", "")
	}
	return fmt.Sprintf("Quote #%d has been deleted!", id), nil
}
