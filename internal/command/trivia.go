package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/ovrlab/streambot/internal/domain"
	"github.com/ovrlab/streambot/internal/store"
	"github.com/ovrlab/streambot/pkg/errors"
)

func (a *Actions) trivia(ctx context.Context, inv *domain.Invocation, args []string) (string, error) {
	var (
		row store.TriviaQuestion
		ok  bool
		err error
	)
	if id, numeric := parseID(args); numeric {
		row, ok, err = a.deps.Trivia.ByID(ctx, id)
	} else {
		row, ok, err = a.deps.Trivia.Random(ctx)
	}
	if err != nil {
		return "", errors.NewStoreError("failed to fetch trivia question", "trivia", "select", err)
	}
	if !ok {
		return fmt.Sprintf("Sorry, %s, we're all out of trivia!", inv.Username), nil
	}

	a.triviaMu.Lock()
	a.currentTrivia = &row
	a.triviaMu.Unlock()

	a.deps.Overlay.SendTrivia(row.Question)
	return fmt.Sprintf("/me Trivia time! Answer this question correctly in chat for some chat points: %s", row.Question), nil
}

func (a *Actions) answerTrivia(ctx context.Context, inv *domain.Invocation, args []string) (string, error) {
	if len(args) == 0 {
		return "", nil
	}

	a.triviaMu.Lock()
	current := a.currentTrivia
	a.triviaMu.Unlock()
	if current == nil {
		return "", nil
	}

	answer := strings.ToLower(current.Answer)
	guess := strings.ToLower(strings.Join(args, " "))
	if len(guess) > len(answer) {
		guess = guess[:len(answer)]
	}
	if guess != answer {
		return "", nil
	}

	a.triviaMu.Lock()
	if a.currentTrivia == nil || a.currentTrivia.ID != current.ID {
		a.triviaMu.Unlock()
		return "", nil
	}
	a.currentTrivia = nil
	a.triviaMu.Unlock()

	if err := a.deps.Trivia.MarkAnswered(ctx, current.ID, inv.Username); err != nil {
		return "", errors.NewStoreError("failed to mark trivia answered", "trivia", "update", err)
	}
	if err := a.deps.Stats.AddTrivia(ctx, inv.Username); err != nil {
		return "", errors.NewStoreError("failed to record trivia win", "userstats", "update", err)
	}
	a.deps.Overlay.SendTrivia(fmt.Sprintf("%s answered correctly! %s", inv.DisplayName, current.Details))
	return fmt.Sprintf("/me That's correct, %s! %s", inv.DisplayName, current.Details), nil
}
