package core

import (
	"fmt"
	"time"
)

// RoomRouter fans room-scoped events out to the sessions bound to a room.
type RoomRouter struct {
	registry Registry
	catalog  *RoomCatalog
	emit     Emitter
	now      func() time.Time
}

// NewRoomRouter creates a router over the given registry and catalog.
func NewRoomRouter(registry Registry, catalog *RoomCatalog, emit Emitter) *RoomRouter {
	return &RoomRouter{
		registry: registry,
		catalog:  catalog,
		emit:     emit,
		now:      time.Now,
	}
}

// Broadcast delivers msg to every member of room, the sender included.
// It returns the number of connections the message was queued for.
func (r *RoomRouter) Broadcast(room string, msg Message) (int, error) {
	canonical, ok := r.catalog.Resolve(room)
	if !ok {
		return 0, invalidRoomError(room)
	}
	msg.Room = canonical
	return r.fanOut(canonical, MessageEvent{Message: msg}, ""), nil
}

// NotifyJoin announces a join to everyone in room except the joiner, who
// gets a welcome and history replay instead.
func (r *RoomRouter) NotifyJoin(room, username, joinerConnID string) (int, error) {
	canonical, ok := r.catalog.Resolve(room)
	if !ok {
		return 0, invalidRoomError(room)
	}
	msg := systemMessage(canonical, fmt.Sprintf("%s has joined the room", username), r.now())
	return r.fanOut(canonical, MessageEvent{Message: msg}, joinerConnID), nil
}

// NotifyLeave announces a departure. The leaving connection is already
// unregistered and cannot receive it.
func (r *RoomRouter) NotifyLeave(room, username string) (int, error) {
	canonical, ok := r.catalog.Resolve(room)
	if !ok {
		return 0, invalidRoomError(room)
	}
	msg := systemMessage(canonical, fmt.Sprintf("%s has left the room", username), r.now())
	return r.fanOut(canonical, MessageEvent{Message: msg}, ""), nil
}

// Typing relays a typing indicator to the room, excluding the sender.
func (r *RoomRouter) Typing(room, username, senderConnID string, stop bool) (int, error) {
	canonical, ok := r.catalog.Resolve(room)
	if !ok {
		return 0, invalidRoomError(room)
	}
	return r.fanOut(canonical, TypingEvent{Username: username, Stop: stop}, senderConnID), nil
}

// BroadcastPresence sends a presence snapshot to every member of room.
func (r *RoomRouter) BroadcastPresence(room string, users []PresenceEntry) (int, error) {
	canonical, ok := r.catalog.Resolve(room)
	if !ok {
		return 0, invalidRoomError(room)
	}
	return r.fanOut(canonical, PresenceEvent{Room: canonical, Users: users}, ""), nil
}

func (r *RoomRouter) fanOut(room string, ev Event, exclude string) int {
	delivered := 0
	for sess := range r.registry.SessionsInRoom(room) {
		if sess.ConnID == exclude {
			continue
		}
		if r.emit.Emit(sess.ConnID, ev) {
			delivered++
		}
	}
	return delivered
}
