package dialog

import (
	"errors"
	"strings"
)

// ErrNotCommand is returned for message text that does not start with the
// command prefix.
var ErrNotCommand = errors.New("message is not a command")

// Command is a parsed chat command.
type Command struct {
	Name string   // keyword without "/", lowercased
	Args []string // positional argument tokens
	Raw  string   // original full text
}

// ParseCommand splits raw message text into a command keyword and argument
// tokens. The leading "/" is stripped from the keyword, as is an optional
// "@botName" suffix (Telegram appends it in group chats). Keywords are
// matched case-insensitively.
func ParseCommand(text, botName string) (*Command, error) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return nil, ErrNotCommand
	}

	parts := strings.Fields(text)
	if len(parts) == 0 || parts[0] == "/" {
		return nil, ErrNotCommand
	}

	name := strings.TrimPrefix(parts[0], "/")
	if at := strings.LastIndex(name, "@"); at >= 0 {
		suffix := name[at+1:]
		if botName != "" && strings.EqualFold(suffix, botName) {
			name = name[:at]
		}
	}
	name = strings.ToLower(name)
	if name == "" {
		return nil, ErrNotCommand
	}

	var args []string
	if len(parts) > 1 {
		args = parts[1:]
	}

	return &Command{
		Name: name,
		Args: args,
		Raw:  text,
	}, nil
}
