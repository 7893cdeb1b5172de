package command

import (
	"strings"

	"github.com/ovrlab/streambot/pkg/errors"
)

func (a *Actions) say(args []string) (string, error) {
	return strings.Join(args, " "), nil
}

// whisper sends a private message. The last argument names the recipient, the
// rest form the message body.
func (a *Actions) whisper(args []string) (string, error) {
	if len(args) < 2 {
		return "", errors.NewValidationError("whisper needs a message and a target user", "")
	}
	target := args[len(args)-1]
	a.deps.Chat.Whisper(target, strings.Join(args[:len(args)-1], " "))
	return "", nil
}
