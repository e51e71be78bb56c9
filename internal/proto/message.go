package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeJoin       = "join"
	InboundTypeMessage    = "message"
	InboundTypeDirect     = "direct_message"
	InboundTypeTyping     = "typing"
	InboundTypeTypingStop = "typing_stop"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"
)

// JoinData requests to join a specific room.
type JoinData struct {
	Username string `json:"username"`
	Room     string `json:"room"`
}

// MessageData is a room message from the client.
type MessageData struct {
	Username string `json:"username"`
	Room     string `json:"room"`
	Text     string `json:"text"`
}

// DirectMessageData is a private message from the client.
type DirectMessageData struct {
	Username  string `json:"username"`
	Recipient string `json:"recipient"`
	Text      string `json:"text"`
}

// TypingData starts or stops a typing indicator in a room or private thread.
type TypingData struct {
	Username  string `json:"username"`
	Room      string `json:"room,omitempty"`
	Recipient string `json:"recipient,omitempty"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// EventMessage is a room message, user or system.
type EventMessage struct {
	ID        int64  `json:"id,omitempty"`
	Room      string `json:"room,omitempty"`
	Username  string `json:"username"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
	Kind      string `json:"kind"`
}

// EventDirectMessage is a private message. Sent marks the sender's echo.
type EventDirectMessage struct {
	ID        int64  `json:"id,omitempty"`
	Username  string `json:"username"`
	Recipient string `json:"recipient"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
	Sent      bool   `json:"sent"`
}

// PresenceUser is one entry of a presence list.
type PresenceUser struct {
	Username string `json:"username"`
}

// EventPresence is the presence snapshot of a room.
type EventPresence struct {
	Room  string         `json:"room"`
	Users []PresenceUser `json:"users"`
}

// EventTyping relays a typing indicator.
type EventTyping struct {
	Username string `json:"username"`
	Direct   bool   `json:"direct"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
