package core

import (
	"cmp"
	"fmt"
	"iter"
	"slices"
	"sync"
)

// Session binds one live connection to a username and, after a successful
// join, to a room.
type Session struct {
	ConnID   string
	Username string
	Room     string

	seq uint64
}

// InRoom reports whether the session has a room bound.
func (s Session) InRoom() bool {
	return s.Room != ""
}

// Registry maps live connections to their sessions.
// Every method is atomic with respect to concurrent callers.
type Registry interface {
	// Register creates an unbound session for a newly opened connection.
	Register(connID string) error
	// BindRoom sets username and room, overwriting any previous binding.
	BindRoom(connID, username, room string) error
	// Unregister removes the session and returns it. Absent ids are a no-op.
	Unregister(connID string) (Session, bool)
	// SessionsInRoom returns the sessions bound to room as of the call.
	SessionsInRoom(room string) iter.Seq[Session]
	// FindByUsername returns the most recently registered session with username.
	FindByUsername(username string) (Session, bool)
	// Session returns the session for connID.
	Session(connID string) (Session, bool)
	// Len returns the number of live sessions.
	Len() int
}

// MemoryRegistry is the in-process Registry.
type MemoryRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	seq      uint64
}

var _ Registry = (*MemoryRegistry)(nil)

// NewRegistry creates an empty registry.
func NewRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		sessions: make(map[string]*Session),
	}
}

func (r *MemoryRegistry) Register(connID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[connID]; exists {
		return fmt.Errorf("register %s: %w", connID, ErrDuplicateConnection)
	}
	r.seq++
	r.sessions[connID] = &Session{ConnID: connID, seq: r.seq}
	return nil
}

func (r *MemoryRegistry) BindRoom(connID, username, room string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[connID]
	if !ok {
		return fmt.Errorf("bind %s: %w", connID, ErrUnknownConnection)
	}
	sess.Username = username
	sess.Room = NormalizeRoom(room)
	return nil
}

func (r *MemoryRegistry) Unregister(connID string) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[connID]
	if !ok {
		return Session{}, false
	}
	delete(r.sessions, connID)
	return *sess, true
}

func (r *MemoryRegistry) SessionsInRoom(room string) iter.Seq[Session] {
	room = NormalizeRoom(room)

	r.mu.RLock()
	matched := make([]Session, 0)
	for _, sess := range r.sessions {
		if sess.Room != "" && sess.Room == room {
			matched = append(matched, *sess)
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(matched, func(a, b Session) int {
		return cmp.Compare(a.seq, b.seq)
	})
	return slices.Values(matched)
}

func (r *MemoryRegistry) FindByUsername(username string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var found *Session
	for _, sess := range r.sessions {
		if sess.Username != username || username == "" {
			continue
		}
		if found == nil || sess.seq > found.seq {
			found = sess
		}
	}
	if found == nil {
		return Session{}, false
	}
	return *found, true
}

func (r *MemoryRegistry) Session(connID string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sess, ok := r.sessions[connID]
	if !ok {
		return Session{}, false
	}
	return *sess, true
}

func (r *MemoryRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
