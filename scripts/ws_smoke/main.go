package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/wirechat-relay/internal/proto"
)

type outbound struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

// run joins two users to one room and waits until the second one sees the
// first one's message.
func run() error {
	addr := flag.String("addr", "ws://localhost:3000/ws", "WebSocket address")
	room := flag.String("room", "nodejs", "room name")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	connA, err := dialAndJoin(ctx, *addr, "smoke-a", *room)
	if err != nil {
		return err
	}
	defer connA.Close(websocket.StatusNormalClosure, "bye")

	connB, err := dialAndJoin(ctx, *addr, "smoke-b", *room)
	if err != nil {
		return err
	}
	defer connB.Close(websocket.StatusNormalClosure, "bye")

	if err := send(ctx, connA, proto.InboundTypeMessage, proto.MessageData{Username: "smoke-a", Room: *room, Text: *text}); err != nil {
		return err
	}

	for {
		var out outbound
		if err := wsjson.Read(ctx, connB, &out); err != nil {
			return fmt.Errorf("read: %w", err)
		}
		if out.Error != nil {
			fmt.Printf("error: code=%s msg=%s\n", out.Error.Code, out.Error.Msg)
			continue
		}
		fmt.Printf("received type=%s event=%s\n", out.Type, out.Event)

		if out.Event != "message" {
			continue
		}
		var evt proto.EventMessage
		if err := json.Unmarshal(out.Data, &evt); err != nil {
			return fmt.Errorf("unmarshal message: %w", err)
		}
		fmt.Printf("message: kind=%s user=%s text=%q ts=%s\n", evt.Kind, evt.Username, evt.Text, evt.Timestamp)
		if evt.Username == "smoke-a" && evt.Text == *text {
			return nil
		}
	}
}

func dialAndJoin(ctx context.Context, addr, user, room string) (*websocket.Conn, error) {
	conn, _, err := websocket.Dial(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", user, err)
	}
	if err := send(ctx, conn, proto.InboundTypeJoin, proto.JoinData{Username: user, Room: room}); err != nil {
		conn.Close(websocket.StatusInternalError, "join failed")
		return nil, err
	}
	return conn, nil
}

func send(ctx context.Context, conn *websocket.Conn, typ string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", typ, err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: payload}); err != nil {
		return fmt.Errorf("send %s: %w", typ, err)
	}
	return nil
}
