package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/vovakirdan/wirechat-relay/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := NewWithSetup(":memory:", func(db *sql.DB) error {
		_, err := db.Exec(Schema)
		return err
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestUsersAndDirectoryOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	users := []string{"Alice", "Bob", "Charlie", "Diana", "Eve", "Frank"}
	for _, u := range users {
		if _, err := s.CreateUser(ctx, u, "hash"); err != nil {
			t.Fatalf("failed to create user %s: %v", u, err)
		}
	}

	if _, err := s.CreateUser(ctx, "Alice", "hash"); err == nil {
		t.Fatalf("expected duplicate username to fail")
	}

	names, err := s.ListUsernames(ctx, 5)
	if err != nil {
		t.Fatalf("ListUsernames failed: %v", err)
	}
	want := []string{"Alice", "Bob", "Charlie", "Diana", "Eve"}
	if fmt.Sprint(names) != fmt.Sprint(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}

	user, err := s.GetUserByUsername(ctx, "Bob")
	if err != nil {
		t.Fatalf("GetUserByUsername failed: %v", err)
	}
	if user.Username != "Bob" || user.PasswordHash != "hash" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if err := s.TouchLastLogin(ctx, user.ID); err != nil {
		t.Fatalf("TouchLastLogin failed: %v", err)
	}

	if _, err := s.GetUserByUsername(ctx, "nobody"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPresenceBindings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, u := range []string{"alice", "bob"} {
		if _, err := s.CreateUser(ctx, u, "hash"); err != nil {
			t.Fatalf("create %s: %v", u, err)
		}
	}

	if err := s.SetUserRoom(ctx, "alice", "nodejs", "conn-1"); err != nil {
		t.Fatalf("SetUserRoom failed: %v", err)
	}
	// Same connection rebinds under a different username.
	if err := s.SetUserRoom(ctx, "bob", "devops", "conn-1"); err != nil {
		t.Fatalf("SetUserRoom failed: %v", err)
	}

	alice, _ := s.GetUserByUsername(ctx, "alice")
	if alice.ConnID != "" || alice.Room != "" {
		t.Fatalf("expected alice binding cleared, got %+v", alice)
	}
	bob, _ := s.GetUserByUsername(ctx, "bob")
	if bob.ConnID != "conn-1" || bob.Room != "devops" {
		t.Fatalf("unexpected bob binding: %+v", bob)
	}

	if err := s.ClearConnection(ctx, "conn-1"); err != nil {
		t.Fatalf("ClearConnection failed: %v", err)
	}
	bob, _ = s.GetUserByUsername(ctx, "bob")
	if bob.ConnID != "" || bob.Room != "" {
		t.Fatalf("expected bob binding cleared, got %+v", bob)
	}

	// Unknown users and connections are not errors.
	if err := s.SetUserRoom(ctx, "ghost", "nodejs", "conn-2"); err != nil {
		t.Fatalf("SetUserRoom for unknown user: %v", err)
	}
	if err := s.ClearConnection(ctx, "conn-404"); err != nil {
		t.Fatalf("ClearConnection for unknown conn: %v", err)
	}
}

func TestMessagesHistory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	for i := range 5 {
		msg := &store.Message{
			Type:      store.MessageTypeGroup,
			Username:  "alice",
			Room:      "nodejs",
			Text:      fmt.Sprintf("room-%d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.SaveMessage(ctx, msg); err != nil {
			t.Fatalf("SaveMessage failed: %v", err)
		}
		if msg.ID == 0 {
			t.Fatalf("expected message id to be set")
		}
	}
	pairs := [][2]string{{"alice", "bob"}, {"bob", "alice"}, {"alice", "carol"}}
	for i, p := range pairs {
		msg := &store.Message{
			Type:      store.MessageTypePrivate,
			Username:  p[0],
			Recipient: p[1],
			Text:      fmt.Sprintf("dm-%d", i),
		}
		if err := s.SaveMessage(ctx, msg); err != nil {
			t.Fatalf("SaveMessage failed: %v", err)
		}
	}

	room, err := s.ListRoomMessages(ctx, "nodejs", 3)
	if err != nil {
		t.Fatalf("ListRoomMessages failed: %v", err)
	}
	if len(room) != 3 || room[0].Text != "room-2" || room[2].Text != "room-4" {
		t.Fatalf("unexpected room history: %+v", room)
	}
	if room[0].Type != store.MessageTypeGroup || room[0].Recipient != "" {
		t.Fatalf("unexpected message fields: %+v", room[0])
	}

	dms, err := s.ListDirectMessages(ctx, "bob", "alice", 100)
	if err != nil {
		t.Fatalf("ListDirectMessages failed: %v", err)
	}
	if len(dms) != 2 || dms[0].Text != "dm-0" || dms[1].Text != "dm-1" {
		t.Fatalf("unexpected direct history: %+v", dms)
	}

	empty, err := s.ListRoomMessages(ctx, "devops", 50)
	if err != nil {
		t.Fatalf("ListRoomMessages failed: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty history, got %d", len(empty))
	}
}
