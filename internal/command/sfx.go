package command

import (
	"strings"

	"github.com/ovrlab/streambot/pkg/errors"
)

func (a *Actions) sfx(args []string) (string, error) {
	if len(args) == 0 {
		return "", errors.NewValidationError("sfx needs a sound key", "")
	}
	if !a.deps.Overlay.SendSfx(args[0]) {
		return "", errors.NewValidationError("unknown sound key", "")
	}
	return "", nil
}

func (a *Actions) tts(args []string) (string, error) {
	a.deps.Overlay.SendTts(strings.Join(args, " "))
	return "", nil
}
