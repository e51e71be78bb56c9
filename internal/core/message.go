package core

import "time"

// SystemUsername is the sender name of messages synthesized by the relay.
const SystemUsername = "System"

// MessageKind tells clients how to render a message.
type MessageKind string

const (
	KindSystem MessageKind = "system"
	KindUser   MessageKind = "user"
	KindDirect MessageKind = "direct"
)

// Message is an in-flight chat message. It is never mutated once routed.
type Message struct {
	ID        int64
	Kind      MessageKind
	From      string
	Room      string
	Recipient string
	Text      string
	CreatedAt time.Time
}

func systemMessage(room, text string, at time.Time) Message {
	return Message{
		Kind:      KindSystem,
		From:      SystemUsername,
		Room:      room,
		Text:      text,
		CreatedAt: at,
	}
}
