package core

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultMaxMessageRunes bounds message text after trimming.
const DefaultMaxMessageRunes = 500

// Command is an action requested by a client. The set of implementations is
// closed; every command is validated by the hub before any router sees it.
type Command interface {
	// Name is the label used for logs and metrics.
	Name() string
	validate(maxRunes int) (Command, *CoreError)
}

// JoinCommand binds the connection to a room.
type JoinCommand struct {
	Username string
	Room     string
}

// SendBroadcastCommand posts a message to a room.
type SendBroadcastCommand struct {
	Username string
	Room     string
	Text     string
}

// SendDirectCommand sends a private message to a single user.
type SendDirectCommand struct {
	Username  string
	Recipient string
	Text      string
}

// TypingCommand starts or stops a typing indicator. Recipient targets a
// private thread; otherwise Room is used.
type TypingCommand struct {
	Username  string
	Room      string
	Recipient string
	Stop      bool
}

func (JoinCommand) Name() string          { return "join" }
func (SendBroadcastCommand) Name() string { return "message" }
func (SendDirectCommand) Name() string    { return "direct_message" }

func (c TypingCommand) Name() string {
	if c.Stop {
		return "typing_stop"
	}
	return "typing"
}

func (c JoinCommand) validate(int) (Command, *CoreError) {
	c.Username = strings.TrimSpace(c.Username)
	if c.Username == "" || strings.TrimSpace(c.Room) == "" {
		return nil, validationError("username and room are required")
	}
	return c, nil
}

func (c SendBroadcastCommand) validate(maxRunes int) (Command, *CoreError) {
	c.Username = strings.TrimSpace(c.Username)
	if c.Username == "" || strings.TrimSpace(c.Room) == "" {
		return nil, validationError("invalid message data")
	}
	text, cerr := validateText(c.Text, maxRunes)
	if cerr != nil {
		return nil, cerr
	}
	c.Text = text
	return c, nil
}

func (c SendDirectCommand) validate(maxRunes int) (Command, *CoreError) {
	c.Username = strings.TrimSpace(c.Username)
	c.Recipient = strings.TrimSpace(c.Recipient)
	if c.Username == "" || c.Recipient == "" {
		return nil, validationError("invalid private message data")
	}
	text, cerr := validateText(c.Text, maxRunes)
	if cerr != nil {
		return nil, cerr
	}
	c.Text = text
	return c, nil
}

func (c TypingCommand) validate(int) (Command, *CoreError) {
	c.Username = strings.TrimSpace(c.Username)
	c.Recipient = strings.TrimSpace(c.Recipient)
	if c.Username == "" {
		return nil, validationError("username is required")
	}
	if c.Recipient == "" && strings.TrimSpace(c.Room) == "" {
		return nil, validationError("room or recipient is required")
	}
	return c, nil
}

func validateText(text string, maxRunes int) (string, *CoreError) {
	if maxRunes <= 0 {
		maxRunes = DefaultMaxMessageRunes
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", validationError("message cannot be empty")
	}
	if utf8.RuneCountInString(text) > maxRunes {
		return "", validationError(fmt.Sprintf("message cannot exceed %d characters", maxRunes))
	}
	return text, nil
}
