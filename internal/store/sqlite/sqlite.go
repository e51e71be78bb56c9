package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vovakirdan/wirechat-relay/internal/store"
)

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

var _ store.Store = (*SQLiteStore)(nil)

// New opens the database at dbPath and applies Schema.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, func(db *sql.DB) error {
		_, err := db.Exec(Schema)
		return err
	})
}

// NewWithSetup creates a new SQLite store and runs a setup function.
// Useful for tests to apply schema against ":memory:".
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection; it also keeps ":memory:" shared.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ==== UserStore implementation ====

// CreateUser creates a new user with hashed password.
func (s *SQLiteStore) CreateUser(ctx context.Context, username, passwordHash string) (*store.User, error) {
	query := `
		INSERT INTO users (username, password_hash)
		VALUES (?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, username, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return s.getUser(ctx, "id = ?", id)
}

// GetUserByUsername retrieves a user by username.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*store.User, error) {
	return s.getUser(ctx, "username = ?", username)
}

func (s *SQLiteStore) getUser(ctx context.Context, where string, arg any) (*store.User, error) {
	query := `
		SELECT id, username, password_hash, COALESCE(room, ''), COALESCE(conn_id, ''), joined_at, last_login
		FROM users
		WHERE ` + where
	var user store.User
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Room,
		&user.ConnID,
		&user.JoinedAt,
		&user.LastLogin,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user: %w", store.ErrNotFound)
		}
		return nil, fmt.Errorf("query user: %w", err)
	}

	return &user, nil
}

// TouchLastLogin records a successful login.
func (s *SQLiteStore) TouchLastLogin(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET last_login = ? WHERE id = ?`, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	return nil
}

// ListUsernames returns up to limit usernames in signup order.
func (s *SQLiteStore) ListUsernames(ctx context.Context, limit int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT username FROM users ORDER BY id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query usernames: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan username: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// ==== PresenceStore implementation ====

// SetUserRoom moves connID onto username and records the room.
func (s *SQLiteStore) SetUserRoom(ctx context.Context, username, room, connID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE users SET room = NULL, conn_id = NULL WHERE conn_id = ?`, connID); err != nil {
		return fmt.Errorf("clear previous binding: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET room = ?, conn_id = ?, last_login = ? WHERE username = ?`,
		room, connID, time.Now().UTC(), username,
	); err != nil {
		return fmt.Errorf("set user room: %w", err)
	}

	return tx.Commit()
}

// ClearConnection removes room and connection from the user bound to connID.
func (s *SQLiteStore) ClearConnection(ctx context.Context, connID string) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE users SET room = NULL, conn_id = NULL WHERE conn_id = ?`, connID); err != nil {
		return fmt.Errorf("clear connection: %w", err)
	}
	return nil
}

// ==== MessageStore implementation ====

// SaveMessage persists a message and sets its ID.
func (s *SQLiteStore) SaveMessage(ctx context.Context, msg *store.Message) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO messages (message_type, username, room, recipient, text, created_at)
		VALUES (?, ?, NULLIF(?, ''), NULLIF(?, ''), ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query,
		string(msg.Type), msg.Username, msg.Room, msg.Recipient, msg.Text, msg.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	msg.ID = id
	return nil
}

// ListRoomMessages returns the newest limit group messages of room, oldest first.
func (s *SQLiteStore) ListRoomMessages(ctx context.Context, room string, limit int) ([]*store.Message, error) {
	query := `
		SELECT id, message_type, username, COALESCE(room, ''), COALESCE(recipient, ''), text, created_at
		FROM messages
		WHERE room = ? AND message_type = 'group'
		ORDER BY id DESC
		LIMIT ?
	`
	return s.queryMessages(ctx, query, room, limit)
}

// ListDirectMessages returns the newest limit private messages between two users, oldest first.
func (s *SQLiteStore) ListDirectMessages(ctx context.Context, userA, userB string, limit int) ([]*store.Message, error) {
	query := `
		SELECT id, message_type, username, COALESCE(room, ''), COALESCE(recipient, ''), text, created_at
		FROM messages
		WHERE message_type = 'private'
		  AND ((username = ? AND recipient = ?) OR (username = ? AND recipient = ?))
		ORDER BY id DESC
		LIMIT ?
	`
	return s.queryMessages(ctx, query, userA, userB, userB, userA, limit)
}

func (s *SQLiteStore) queryMessages(ctx context.Context, query string, args ...any) ([]*store.Message, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	messages := make([]*store.Message, 0)
	for rows.Next() {
		var (
			msg     store.Message
			msgType string
		)
		if err := rows.Scan(&msg.ID, &msgType, &msg.Username, &msg.Room, &msg.Recipient, &msg.Text, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msg.Type = store.MessageType(msgType)
		messages = append(messages, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	// Queries select newest first; callers want chronological order.
	slices.Reverse(messages)
	return messages, nil
}
