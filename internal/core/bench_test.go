package core

import (
	"context"
	"fmt"
	"testing"
)

func benchmarkRoomBroadcast(b *testing.B, recipients int) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(HubConfig{EventBuffer: 1024}, Deps{})
	go hub.Run(ctx)

	sender := NewClient("sender", "", 1024)
	if err := hub.Connect(sender); err != nil {
		b.Fatal(err)
	}
	_ = hub.Submit(ctx, sender.ID, JoinCommand{Username: "sender", Room: "nodejs"})

	clients := make([]*Client, 0, recipients)
	for i := range recipients {
		c := NewClient(fmt.Sprintf("c%d", i), "", 1024)
		if err := hub.Connect(c); err != nil {
			b.Fatal(err)
		}
		_ = hub.Submit(ctx, c.ID, JoinCommand{Username: c.ID, Room: "nodejs"})
		clients = append(clients, c)
	}

	// Drain events for everyone except the sender to avoid backpressure.
	for _, c := range clients {
		go func(cl *Client) {
			for range cl.Events {
			}
		}(c)
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = hub.Submit(ctx, sender.ID, SendBroadcastCommand{Username: "sender", Room: "nodejs", Text: "payload"})
		for {
			if ev, ok := (<-sender.Events).(MessageEvent); ok && ev.Message.Text == "payload" {
				break
			}
		}
	}
}

func BenchmarkRoomBroadcast_10(b *testing.B)  { benchmarkRoomBroadcast(b, 10) }
func BenchmarkRoomBroadcast_100(b *testing.B) { benchmarkRoomBroadcast(b, 100) }
func BenchmarkRoomBroadcast_500(b *testing.B) { benchmarkRoomBroadcast(b, 500) }
