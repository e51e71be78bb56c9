package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/vovakirdan/wirechat-relay/internal/proto"
	"github.com/vovakirdan/wirechat-relay/internal/store"
)

func getJSON(t *testing.T, env *testEnv, path string, out any) int {
	t.Helper()

	resp, err := env.server.Client().Get(env.server.URL + path)
	if err != nil {
		t.Fatalf("get %s: %v", path, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return resp.StatusCode
}

func TestListRooms(t *testing.T) {
	env := startTestServer(t)

	var rooms RoomsResponse
	if status := getJSON(t, env, "/api/rooms", &rooms); status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if len(rooms.Rooms) != 5 || rooms.Rooms[0] != "devops" {
		t.Fatalf("unexpected rooms: %v", rooms.Rooms)
	}
}

func TestListMessages(t *testing.T) {
	env := startTestServer(t)
	ctx := context.Background()

	for _, msg := range []*store.Message{
		{Type: store.MessageTypeGroup, Username: "alice", Room: "devops", Text: "first"},
		{Type: store.MessageTypeGroup, Username: "bob", Room: "devops", Text: "second"},
		{Type: store.MessageTypeGroup, Username: "bob", Room: "nodejs", Text: "elsewhere"},
		{Type: store.MessageTypePrivate, Username: "alice", Recipient: "bob", Text: "hey bob"},
		{Type: store.MessageTypePrivate, Username: "bob", Recipient: "alice", Text: "hey alice"},
	} {
		if err := env.store.SaveMessage(ctx, msg); err != nil {
			t.Fatalf("save message: %v", err)
		}
	}

	var group []MessageResponse
	if status := getJSON(t, env, "/api/rooms/DevOps/messages", &group); status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if len(group) != 2 || group[0].Text != "first" || group[1].Text != "second" {
		t.Fatalf("unexpected room history: %+v", group)
	}

	var private []MessageResponse
	q := url.Values{"type": {"private"}, "username": {"bob"}, "recipient": {"alice"}}
	if status := getJSON(t, env, "/api/rooms/devops/messages?"+q.Encode(), &private); status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if len(private) != 2 || private[0].Text != "hey bob" || private[1].Type != "private" {
		t.Fatalf("unexpected private history: %+v", private)
	}

	if status := getJSON(t, env, "/api/rooms/gardening/messages", nil); status != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown room, got %d", status)
	}

	_ = env.store.Close()
	var degraded []MessageResponse
	if status := getJSON(t, env, "/api/rooms/devops/messages", &degraded); status != http.StatusOK {
		t.Fatalf("expected 200 on store failure, got %d", status)
	}
	if len(degraded) != 0 {
		t.Fatalf("expected empty list on store failure, got %+v", degraded)
	}
}

func TestListUsers(t *testing.T) {
	env := startTestServer(t)
	ctx := context.Background()

	for _, name := range []string{"alice", "bob", "carol", "dave", "erin", "frank"} {
		if _, err := env.auth.Register(ctx, name, "password123"); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}

	var users []UserResponse
	if status := getJSON(t, env, "/api/rooms/devops/users", &users); status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if len(users) != 5 || users[0].Username != "alice" {
		t.Fatalf("unexpected users: %+v", users)
	}
}

func TestListOnline(t *testing.T) {
	env := startTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialWS(t, ctx, env, "")
	send(t, ctx, conn, proto.InboundTypeJoin, proto.JoinData{Username: "alice", Room: "data science"})
	readUntil(t, ctx, conn, isEvent("presence"))

	var online []UserResponse
	if status := getJSON(t, env, "/api/rooms/"+url.PathEscape("data science")+"/online", &online); status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if len(online) != 1 || online[0].Username != "alice" {
		t.Fatalf("unexpected online users: %+v", online)
	}

	var empty []UserResponse
	if status := getJSON(t, env, "/api/rooms/nodejs/online", &empty); status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if len(empty) != 0 {
		t.Fatalf("expected nobody online, got %+v", empty)
	}
}
