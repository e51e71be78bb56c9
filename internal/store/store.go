package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// User represents a registered user.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Room         string // last room joined, empty when offline
	ConnID       string // live connection id, empty when offline
	JoinedAt     time.Time
	LastLogin    time.Time
}

// MessageType distinguishes room messages from private ones.
type MessageType string

const (
	MessageTypeGroup   MessageType = "group"
	MessageTypePrivate MessageType = "private"
)

// Message represents a persisted chat message.
type Message struct {
	ID        int64
	Type      MessageType
	Username  string
	Room      string // set for group messages
	Recipient string // set for private messages
	Text      string
	CreatedAt time.Time
}

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser creates a new user with hashed password.
	CreateUser(ctx context.Context, username, passwordHash string) (*User, error)

	// GetUserByUsername retrieves a user by username.
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// TouchLastLogin records a successful login.
	TouchLastLogin(ctx context.Context, userID int64) error

	// ListUsernames returns up to limit usernames in signup order.
	ListUsernames(ctx context.Context, limit int) ([]string, error)
}

// PresenceStore mirrors live room bindings onto user records.
type PresenceStore interface {
	// SetUserRoom clears connID from any other user, then records room and
	// connID on username.
	SetUserRoom(ctx context.Context, username, room, connID string) error

	// ClearConnection removes room and connection from the user bound to connID.
	ClearConnection(ctx context.Context, connID string) error
}

// MessageStore handles message persistence.
type MessageStore interface {
	// SaveMessage persists a message and sets its ID.
	SaveMessage(ctx context.Context, msg *Message) error

	// ListRoomMessages returns the newest limit group messages of room, oldest first.
	ListRoomMessages(ctx context.Context, room string, limit int) ([]*Message, error)

	// ListDirectMessages returns the newest limit private messages exchanged
	// between two users in either direction, oldest first.
	ListDirectMessages(ctx context.Context, userA, userB string, limit int) ([]*Message, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	PresenceStore
	MessageStore

	// Close closes the underlying database connection.
	Close() error
}
