package store

import (
	"context"

	"github.com/samber/lo"

	"github.com/vovakirdan/wirechat-relay/internal/core"
)

// Collaborators adapts a Store to the interfaces the hub consumes.
type Collaborators struct {
	st Store
}

var (
	_ core.Directory     = Collaborators{}
	_ core.HistoryStore  = Collaborators{}
	_ core.PresenceStore = Collaborators{}
)

// NewCollaborators wraps st.
func NewCollaborators(st Store) Collaborators {
	return Collaborators{st: st}
}

// Deps fills the collaborator fields of core.Deps.
func (c Collaborators) Deps(deps core.Deps) core.Deps {
	deps.Directory = c
	deps.History = c
	deps.Presence = c
	return deps
}

// FindAllUsers lists usernames in signup order.
func (c Collaborators) FindAllUsers(ctx context.Context, limit int) ([]string, error) {
	return c.st.ListUsernames(ctx, limit)
}

// FindRecentMessages returns recent group messages of room, oldest first.
func (c Collaborators) FindRecentMessages(ctx context.Context, room string, limit int) ([]core.Message, error) {
	msgs, err := c.st.ListRoomMessages(ctx, room, limit)
	if err != nil {
		return nil, err
	}
	return lo.Map(msgs, func(m *Message, _ int) core.Message {
		return core.Message{
			ID:        m.ID,
			Kind:      core.KindUser,
			From:      m.Username,
			Room:      m.Room,
			Text:      m.Text,
			CreatedAt: m.CreatedAt,
		}
	}), nil
}

// SaveMessage persists a room or direct message.
func (c Collaborators) SaveMessage(ctx context.Context, msg core.Message) (int64, error) {
	rec := &Message{
		Type:      MessageTypeGroup,
		Username:  msg.From,
		Room:      msg.Room,
		Text:      msg.Text,
		CreatedAt: msg.CreatedAt,
	}
	if msg.Kind == core.KindDirect {
		rec.Type = MessageTypePrivate
		rec.Room = ""
		rec.Recipient = msg.Recipient
	}
	if err := c.st.SaveMessage(ctx, rec); err != nil {
		return 0, err
	}
	return rec.ID, nil
}

// SetUserRoom records the live binding on the user record.
func (c Collaborators) SetUserRoom(ctx context.Context, username, room, connID string) error {
	return c.st.SetUserRoom(ctx, username, room, connID)
}

// ClearConnection drops the binding of connID.
func (c Collaborators) ClearConnection(ctx context.Context, connID string) error {
	return c.st.ClearConnection(ctx, connID)
}
