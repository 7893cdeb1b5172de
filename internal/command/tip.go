package command

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ovrlab/streambot/internal/domain"
	"github.com/ovrlab/streambot/internal/store"
	"github.com/ovrlab/streambot/pkg/errors"
)

const (
	tipMinLength = 2
	tipMaxLength = 80
)

func (a *Actions) tip(ctx context.Context, inv *domain.Invocation, args []string) (string, error) {
	var (
		row store.Tip
		ok  bool
		err error
	)
	if id, numeric := parseID(args); numeric {
		row, ok, err = a.deps.Tips.ByID(ctx, id)
	} else {
		row, ok, err = a.deps.Tips.Random(ctx)
	}
	if err != nil {
		return "", errors.NewStoreError("failed to fetch tip", "tips", "select", err)
	}
	if !ok {
		return fmt.Sprintf("Sorry, %s, we're all out of tips!", inv.Username), nil
	}
	return fmt.Sprintf("TIP #%d: %s", row.ID, row.Message), nil
}

func (a *Actions) addTip(ctx context.Context, inv *domain.Invocation, args []string) (string, error) {
	message := strings.Join(args, " ")
	length := utf8.RuneCountInString(message)
	if length < tipMinLength {
		return "", errors.NewValidationError("tip message too short",
			fmt.Sprintf("%s Your tip message is too short (%d characters min, yours was %d)", inv.Username, tipMinLength, length))
	}
	if length > tipMaxLength {
		return "", errors.NewValidationError("tip message too long",
			fmt.Sprintf("%s Your tip message is too long (%d characters max, yours was %d)", inv.Username, tipMaxLength, length))
	}
	id, err := a.deps.Tips.Add(ctx, inv.Username, message)
	if err != nil {
		return "", errors.NewStoreError("failed to add tip", "tips", "insert", err)
	}
	return fmt.Sprintf("Tip #%d has been added to the list", id), nil
}

func (a *Actions) editTip(ctx context.Context, args []string) (string, error) {
	id, numeric := parseID(args)
	if !numeric || len(args) < 2 {
		return "", errors.NewValidationError("edittip needs an id and a message", "")
	}
	changed, err := a.deps.Tips.Update(ctx, id, strings.Join(args[1:], " "))
	if err != nil {
		return "", errors.NewStoreError("failed to edit tip", "tips", "update", err)
	}
	if !changed {
		return "", errors.NewValidationError("tip not found", "")
	}
	return fmt.Sprintf("Tip #%d has been edited!", id), nil
}

func (a *Actions) deleteTip(ctx context.Context, args []string) (string, error) {
	id, numeric := parseID(args)
	if !numeric {
		return "", errors.NewValidationError("deletetip needs an id", "")
	}
	changed, err := a.deps.Tips.Delete(ctx, id)
	if err != nil {
		return "", errors.NewStoreError("failed to delete tip", "tips", "delete", err)
	}
	if !changed {
		return "", errors.NewValidationError("tip not found", "")
	}
	return fmt.Sprintf("Tip #%d has been deleted!", id), nil
}
