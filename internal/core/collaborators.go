package core

import "context"

// Directory lists known users. Implementations may fail; the core degrades.
type Directory interface {
	FindAllUsers(ctx context.Context, limit int) ([]string, error)
}

// HistoryStore reads and appends room and private messages.
type HistoryStore interface {
	// FindRecentMessages returns up to limit room messages, oldest first.
	FindRecentMessages(ctx context.Context, room string, limit int) ([]Message, error)
	// SaveMessage persists msg and returns its id.
	SaveMessage(ctx context.Context, msg Message) (int64, error)
}

// PresenceStore mirrors live bindings onto persisted user records.
type PresenceStore interface {
	SetUserRoom(ctx context.Context, username, room, connID string) error
	ClearConnection(ctx context.Context, connID string) error
}

type nopCollaborators struct{}

func (nopCollaborators) FindAllUsers(context.Context, int) ([]string, error) { return nil, nil }

func (nopCollaborators) FindRecentMessages(context.Context, string, int) ([]Message, error) {
	return nil, nil
}

func (nopCollaborators) SaveMessage(context.Context, Message) (int64, error) { return 0, nil }

func (nopCollaborators) SetUserRoom(context.Context, string, string, string) error { return nil }

func (nopCollaborators) ClearConnection(context.Context, string) error { return nil }
