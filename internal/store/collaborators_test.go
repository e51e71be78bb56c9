package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/vovakirdan/wirechat-relay/internal/core"
	"github.com/vovakirdan/wirechat-relay/internal/store"
	"github.com/vovakirdan/wirechat-relay/internal/store/sqlite"
)

func newCollaborators(t *testing.T) (store.Store, store.Collaborators) {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st, store.NewCollaborators(st)
}

func TestCollaboratorsMessages(t *testing.T) {
	st, c := newCollaborators(t)
	ctx := context.Background()
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	id, err := c.SaveMessage(ctx, core.Message{Kind: core.KindUser, From: "alice", Room: "nodejs", Text: "hi", CreatedAt: at})
	if err != nil {
		t.Fatalf("save room message: %v", err)
	}
	if id == 0 {
		t.Fatal("expected id for saved message")
	}
	if _, err := c.SaveMessage(ctx, core.Message{Kind: core.KindDirect, From: "alice", Recipient: "bob", Room: "nodejs", Text: "secret", CreatedAt: at}); err != nil {
		t.Fatalf("save direct message: %v", err)
	}

	recent, err := c.FindRecentMessages(ctx, "nodejs", 50)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 1 || recent[0].Text != "hi" || recent[0].From != "alice" || recent[0].Kind != core.KindUser {
		t.Fatalf("direct message leaked into room history: %+v", recent)
	}

	private, err := st.ListDirectMessages(ctx, "bob", "alice", 10)
	if err != nil {
		t.Fatalf("private: %v", err)
	}
	if len(private) != 1 || private[0].Type != store.MessageTypePrivate || private[0].Room != "" {
		t.Fatalf("unexpected private thread: %+v", private)
	}
}

func TestCollaboratorsDirectoryAndPresence(t *testing.T) {
	st, c := newCollaborators(t)
	ctx := context.Background()

	for _, name := range []string{"alice", "bob"} {
		if _, err := st.CreateUser(ctx, name, "hash"); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	names, err := c.FindAllUsers(ctx, 5)
	if err != nil {
		t.Fatalf("find all: %v", err)
	}
	if len(names) != 2 || names[0] != "alice" {
		t.Fatalf("unexpected directory: %v", names)
	}

	if err := c.SetUserRoom(ctx, "alice", "devops", "conn-1"); err != nil {
		t.Fatalf("set room: %v", err)
	}
	u, err := st.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if u.Room != "devops" || u.ConnID != "conn-1" {
		t.Fatalf("binding not stored: %+v", u)
	}

	if err := c.ClearConnection(ctx, "conn-1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	u, err = st.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if u.Room != "" || u.ConnID != "" {
		t.Fatalf("binding not cleared: %+v", u)
	}
}
