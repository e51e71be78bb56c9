package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/vovakirdan/wirechat-relay/internal/core"
	"github.com/vovakirdan/wirechat-relay/internal/store"
)

const (
	messagePageLimit = 100
	usersPageLimit   = core.DefaultPresenceLimit
	storeTimeout     = 3 * time.Second
)

// RoomHandlers provides read-only room endpoints.
type RoomHandlers struct {
	hub   *core.Hub
	store store.Store
	log   *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(hub *core.Hub, st store.Store, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		hub:   hub,
		store: st,
		log:   logger,
	}
}

// RoomsResponse lists the configured rooms.
type RoomsResponse struct {
	Rooms []string `json:"rooms"`
}

// MessageResponse is a persisted message.
type MessageResponse struct {
	ID        int64  `json:"id"`
	Type      string `json:"message_type"`
	Username  string `json:"username"`
	Room      string `json:"room,omitempty"`
	Recipient string `json:"recipient,omitempty"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// UserResponse is one user of a listing.
type UserResponse struct {
	Username string `json:"username"`
}

// ListRooms returns the room catalog.
// GET /api/rooms
func (h *RoomHandlers) ListRooms(c *gin.Context) {
	c.JSON(http.StatusOK, RoomsResponse{Rooms: h.hub.Catalog().Names()})
}

// ListMessages returns recent room messages, or a private thread when
// type=private. Store failures degrade to an empty list.
// GET /api/rooms/:room/messages
func (h *RoomHandlers) ListMessages(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	var (
		msgs []*store.Message
		err  error
	)
	if c.Query("type") == string(store.MessageTypePrivate) {
		username, recipient := c.Query("username"), c.Query("recipient")
		if username == "" || recipient == "" {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "username and recipient are required"})
			return
		}
		msgs, err = h.store.ListDirectMessages(ctx, username, recipient, messagePageLimit)
	} else {
		room, ok := h.hub.Catalog().Resolve(c.Param("room"))
		if !ok {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "invalid room"})
			return
		}
		msgs, err = h.store.ListRoomMessages(ctx, room, messagePageLimit)
	}
	if err != nil {
		h.log.Warn().Err(err).Str("room", c.Param("room")).Msg("failed to load messages")
		msgs = nil
	}

	c.JSON(http.StatusOK, lo.Map(msgs, func(m *store.Message, _ int) MessageResponse {
		return MessageResponse{
			ID:        m.ID,
			Type:      string(m.Type),
			Username:  m.Username,
			Room:      m.Room,
			Recipient: m.Recipient,
			Text:      m.Text,
			Timestamp: m.CreatedAt.UTC().Format(time.RFC3339),
		}
	}))
}

// ListUsers returns up to five known users. Directory failures degrade to an
// empty list.
// GET /api/rooms/:room/users
func (h *RoomHandlers) ListUsers(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	names, err := h.store.ListUsernames(ctx, usersPageLimit)
	if err != nil {
		h.log.Warn().Err(err).Msg("failed to list users")
		names = nil
	}
	c.JSON(http.StatusOK, toUserResponses(names))
}

// ListOnline returns the users currently connected to a room.
// GET /api/rooms/:room/online
func (h *RoomHandlers) ListOnline(c *gin.Context) {
	room, ok := h.hub.Catalog().Resolve(c.Param("room"))
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "invalid room"})
		return
	}

	var names []string
	for s := range h.hub.Registry().SessionsInRoom(room) {
		names = append(names, s.Username)
	}
	c.JSON(http.StatusOK, toUserResponses(lo.Uniq(names)))
}

func toUserResponses(names []string) []UserResponse {
	return lo.Map(names, func(n string, _ int) UserResponse {
		return UserResponse{Username: n}
	})
}
