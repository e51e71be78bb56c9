package core

// Event is a notification the core emits to a single connection.
// The set of implementations is closed.
type Event interface {
	// Name is the wire name of the event.
	Name() string
	isEvent()
}

// MessageEvent carries a room message, user or system.
type MessageEvent struct {
	Message Message
}

// DirectMessageEvent carries a private message. Sent is true on the copy
// echoed back to the sender.
type DirectMessageEvent struct {
	Message Message
	Sent    bool
}

// PresenceEntry is one user in a presence snapshot.
type PresenceEntry struct {
	Username string
}

// PresenceEvent delivers the presence snapshot for a room.
type PresenceEvent struct {
	Room  string
	Users []PresenceEntry
}

// TypingEvent relays a typing indicator. Direct marks private-thread typing.
type TypingEvent struct {
	Username string
	Direct   bool
	Stop     bool
}

// ErrorEvent reports a rejected command to its originating connection.
type ErrorEvent struct {
	Error *CoreError
}

func (MessageEvent) Name() string       { return "message" }
func (DirectMessageEvent) Name() string { return "direct_message" }
func (PresenceEvent) Name() string      { return "presence" }
func (ErrorEvent) Name() string         { return "error" }

func (e TypingEvent) Name() string {
	if e.Stop {
		return "typing_stop"
	}
	return "typing"
}

func (MessageEvent) isEvent()       {}
func (DirectMessageEvent) isEvent() {}
func (PresenceEvent) isEvent()      {}
func (TypingEvent) isEvent()        {}
func (ErrorEvent) isEvent()         {}
