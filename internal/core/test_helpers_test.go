package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// recorder is an Emitter that keeps every event per connection.
type recorder struct {
	mu     sync.Mutex
	events map[string][]Event
}

func newRecorder() *recorder {
	return &recorder{events: make(map[string][]Event)}
}

func (r *recorder) Emit(connID string, ev Event) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[connID] = append(r.events[connID], ev)
	return true
}

func (r *recorder) For(connID string) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events[connID]...)
}

func mustEvent[T Event](t *testing.T, c *Client) T {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-c.Events:
			if !ok {
				t.Fatalf("events channel of %s closed", c.ID)
			}
			if typed, match := ev.(T); match {
				return typed
			}
		case <-deadline:
			var zero T
			t.Fatalf("expected %T on %s, not received", zero, c.ID)
		}
	}
}

// flush returns every event queued for c before a marker error. The marker
// is produced by an invalid command so it is ordered behind earlier work.
func flush(t *testing.T, hub *Hub, c *Client) []Event {
	t.Helper()

	if err := hub.Submit(context.Background(), c.ID, TypingCommand{}); err != nil {
		t.Fatalf("submit marker: %v", err)
	}
	var out []Event
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-c.Events:
			if e, ok := ev.(ErrorEvent); ok && errors.Is(e.Error, ErrValidation) && e.Error.Message == "username is required" {
				return out
			}
			out = append(out, ev)
		case <-deadline:
			t.Fatalf("flush marker for %s not received", c.ID)
		}
	}
}

func eventsOf[T Event](events []Event) []T {
	var out []T
	for _, ev := range events {
		if typed, ok := ev.(T); ok {
			out = append(out, typed)
		}
	}
	return out
}

type fakeDirectory struct {
	users []string
	err   error
	calls int
}

func (d *fakeDirectory) FindAllUsers(_ context.Context, limit int) ([]string, error) {
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	if limit > 0 && len(d.users) > limit {
		return append([]string(nil), d.users[:limit]...), nil
	}
	return append([]string(nil), d.users...), nil
}

type fakeHistory struct {
	mu      sync.Mutex
	recent  map[string][]Message
	saved   []Message
	findErr error
	saveErr error
}

func (h *fakeHistory) FindRecentMessages(_ context.Context, room string, limit int) ([]Message, error) {
	if h.findErr != nil {
		return nil, h.findErr
	}
	msgs := h.recent[room]
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

func (h *fakeHistory) SaveMessage(_ context.Context, msg Message) (int64, error) {
	if h.saveErr != nil {
		return 0, h.saveErr
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.saved = append(h.saved, msg)
	return int64(len(h.saved)), nil
}

func (h *fakeHistory) Saved() []Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Message(nil), h.saved...)
}

type fakePresenceStore struct {
	mu      sync.Mutex
	rooms   map[string]string
	cleared []string
	err     error
}

func (p *fakePresenceStore) SetUserRoom(_ context.Context, username, room, _ string) error {
	if p.err != nil {
		return p.err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.rooms == nil {
		p.rooms = make(map[string]string)
	}
	p.rooms[username] = room
	return nil
}

func (p *fakePresenceStore) ClearConnection(_ context.Context, connID string) error {
	if p.err != nil {
		return p.err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cleared = append(p.cleared, connID)
	return nil
}
