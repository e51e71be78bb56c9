package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-relay/internal/metrics"
)

// Defaults for HubConfig zero values.
const (
	DefaultHistoryLimit        = 50
	DefaultCollaboratorTimeout = 2 * time.Second
	DefaultQueueSize           = 256
)

// ErrHubStopped is returned by Submit and Disconnect after Run has returned.
var ErrHubStopped = errors.New("hub stopped")

// HubConfig tunes the dispatcher.
type HubConfig struct {
	Rooms               []string
	HistoryLimit        int
	PresenceLimit       int
	MaxMessageRunes     int
	EventBuffer         int
	QueueSize           int
	CollaboratorTimeout time.Duration
}

func (c HubConfig) withDefaults() HubConfig {
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = DefaultHistoryLimit
	}
	if c.PresenceLimit <= 0 {
		c.PresenceLimit = DefaultPresenceLimit
	}
	if c.MaxMessageRunes <= 0 {
		c.MaxMessageRunes = DefaultMaxMessageRunes
	}
	if c.EventBuffer <= 0 {
		c.EventBuffer = DefaultEventBuffer
	}
	if c.QueueSize <= 0 {
		c.QueueSize = DefaultQueueSize
	}
	if c.CollaboratorTimeout <= 0 {
		c.CollaboratorTimeout = DefaultCollaboratorTimeout
	}
	return c
}

// Deps are the collaborators injected into the hub. Nil fields fall back to
// an in-memory registry and no-op collaborators.
type Deps struct {
	Registry  Registry
	Directory Directory
	History   HistoryStore
	Presence  PresenceStore
	Logger    *zerolog.Logger
}

type inboundItem struct {
	connID     string
	cmd        Command
	reject     *CoreError
	disconnect bool
}

// Hub is the event dispatcher. A single goroutine (Run) processes inbound
// commands in arrival order; routers are only invoked from that goroutine.
type Hub struct {
	cfg      HubConfig
	registry Registry
	clients  *clientSet
	catalog  *RoomCatalog
	rooms    *RoomRouter
	direct   *DirectRouter
	presence *PresenceCoordinator
	history  HistoryStore
	store    PresenceStore
	log      *zerolog.Logger
	now      func() time.Time

	inbound chan inboundItem
	done    chan struct{}
}

// NewHub creates a new chat hub instance.
func NewHub(cfg HubConfig, deps Deps) *Hub {
	cfg = cfg.withDefaults()

	logger := deps.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	registry := deps.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	var history HistoryStore = nopCollaborators{}
	if deps.History != nil {
		history = deps.History
	}
	var presenceStore PresenceStore = nopCollaborators{}
	if deps.Presence != nil {
		presenceStore = deps.Presence
	}

	clients := newClientSet(logger)
	catalog := NewRoomCatalog(cfg.Rooms)

	return &Hub{
		cfg:      cfg,
		registry: registry,
		clients:  clients,
		catalog:  catalog,
		rooms:    NewRoomRouter(registry, catalog, clients),
		direct:   NewDirectRouter(registry, clients),
		presence: NewPresenceCoordinator(registry, deps.Directory, cfg.PresenceLimit, logger),
		history:  history,
		store:    presenceStore,
		log:      logger,
		now:      time.Now,
		inbound:  make(chan inboundItem, cfg.QueueSize),
		done:     make(chan struct{}),
	}
}

// Catalog returns the fixed room set.
func (h *Hub) Catalog() *RoomCatalog { return h.catalog }

// Registry returns the connection registry for read-only views.
func (h *Hub) Registry() Registry { return h.registry }

// Presence returns the presence coordinator.
func (h *Hub) Presence() *PresenceCoordinator { return h.presence }

// EventBuffer is the queue size transports should use for NewClient.
func (h *Hub) EventBuffer() int { return h.cfg.EventBuffer }

// Connect registers a freshly opened connection. It must be called before
// any Submit for the same client.
func (h *Hub) Connect(c *Client) error {
	if err := h.registry.Register(c.ID); err != nil {
		h.log.Error().Err(err).Str("conn_id", c.ID).Msg("connection registered twice")
		return err
	}
	h.clients.add(c)
	metrics.Connections.Inc()
	h.log.Debug().Str("conn_id", c.ID).Msg("connection registered")
	return nil
}

// Submit queues a command from connID. Commands from one connection are
// handled in submission order.
func (h *Hub) Submit(ctx context.Context, connID string, cmd Command) error {
	return h.enqueue(ctx, inboundItem{connID: connID, cmd: cmd})
}

// Reject queues a transport-level error for connID so it is delivered in
// order with the events of commands submitted before it.
func (h *Hub) Reject(ctx context.Context, connID string, cerr *CoreError) error {
	return h.enqueue(ctx, inboundItem{connID: connID, reject: cerr})
}

// Disconnect queues the close of connID behind its pending commands.
func (h *Hub) Disconnect(ctx context.Context, connID string) error {
	return h.enqueue(ctx, inboundItem{connID: connID, disconnect: true})
}

func (h *Hub) enqueue(ctx context.Context, item inboundItem) error {
	select {
	case h.inbound <- item:
		return nil
	case <-h.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes inbound items until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			return
		case item := <-h.inbound:
			h.handle(ctx, item)
		}
	}
}

func (h *Hub) handle(ctx context.Context, item inboundItem) {
	if item.disconnect {
		h.handleDisconnect(ctx, item.connID)
		return
	}

	if _, ok := h.registry.Session(item.connID); !ok {
		h.log.Debug().Str("conn_id", item.connID).Msg("item from unknown connection")
		return
	}
	if item.reject != nil {
		h.fail(item.connID, item.reject)
		return
	}

	metrics.CommandsTotal.WithLabelValues(item.cmd.Name()).Inc()

	cmd, cerr := item.cmd.validate(h.cfg.MaxMessageRunes)
	if cerr != nil {
		h.fail(item.connID, cerr)
		return
	}

	switch c := cmd.(type) {
	case JoinCommand:
		h.handleJoin(ctx, item.connID, c)
	case SendBroadcastCommand:
		h.handleBroadcast(ctx, item.connID, c)
	case SendDirectCommand:
		h.handleDirect(ctx, item.connID, c)
	case TypingCommand:
		h.handleTyping(item.connID, c)
	}
}

func (h *Hub) handleJoin(ctx context.Context, connID string, cmd JoinCommand) {
	room, ok := h.catalog.Resolve(cmd.Room)
	if !ok {
		h.fail(connID, invalidRoomError(cmd.Room))
		return
	}

	prev, _ := h.registry.Session(connID)
	if err := h.registry.BindRoom(connID, cmd.Username, room); err != nil {
		h.log.Error().Err(err).Str("conn_id", connID).Msg("bind room")
		return
	}
	if prev.InRoom() && prev.Room != room {
		// No leave notice goes to the previous room on a switch.
		h.log.Debug().Str("conn_id", connID).Str("from", prev.Room).Str("to", room).Msg("room switch")
	}

	h.collaborate(ctx, "set_user_room", func(ctx context.Context) error {
		return h.store.SetUserRoom(ctx, cmd.Username, room, connID)
	})

	welcome := systemMessage(room, fmt.Sprintf("Welcome to %s room, %s!", room, cmd.Username), h.now())
	h.clients.Emit(connID, MessageEvent{Message: welcome})

	for _, msg := range h.recentHistory(ctx, room) {
		msg.Kind = KindUser
		h.clients.Emit(connID, MessageEvent{Message: msg})
	}

	if _, err := h.rooms.NotifyJoin(room, cmd.Username, connID); err != nil {
		h.log.Error().Err(err).Str("room", room).Msg("notify join")
	}
	h.refreshPresence(ctx, room, cmd.Username)

	h.log.Info().Str("conn_id", connID).Str("username", cmd.Username).Str("room", room).Msg("joined room")
}

func (h *Hub) handleBroadcast(ctx context.Context, connID string, cmd SendBroadcastCommand) {
	room, ok := h.catalog.Resolve(cmd.Room)
	if !ok {
		h.fail(connID, invalidRoomError(cmd.Room))
		return
	}

	msg := Message{
		Kind:      KindUser,
		From:      cmd.Username,
		Room:      room,
		Text:      cmd.Text,
		CreatedAt: h.now(),
	}
	h.collaborate(ctx, "save_message", func(ctx context.Context) error {
		id, err := h.history.SaveMessage(ctx, msg)
		msg.ID = id
		return err
	})

	if _, err := h.rooms.Broadcast(room, msg); err != nil {
		h.failErr(connID, err)
	}
}

func (h *Hub) handleDirect(ctx context.Context, connID string, cmd SendDirectCommand) {
	msg := Message{
		Kind:      KindDirect,
		From:      cmd.Username,
		Recipient: cmd.Recipient,
		Text:      cmd.Text,
		CreatedAt: h.now(),
	}
	if err := h.direct.SendDirect(connID, msg); err != nil {
		h.failErr(connID, err)
		return
	}

	h.collaborate(ctx, "save_direct_message", func(ctx context.Context) error {
		_, err := h.history.SaveMessage(ctx, msg)
		return err
	})
}

func (h *Hub) handleTyping(connID string, cmd TypingCommand) {
	if cmd.Recipient != "" {
		if cmd.Stop {
			h.direct.NotifyStopTyping(cmd.Username, cmd.Recipient)
		} else {
			h.direct.NotifyTyping(cmd.Username, cmd.Recipient)
		}
		return
	}

	if _, err := h.rooms.Typing(cmd.Room, cmd.Username, connID, cmd.Stop); err != nil {
		h.failErr(connID, err)
	}
}

func (h *Hub) handleDisconnect(ctx context.Context, connID string) {
	sess, ok := h.registry.Unregister(connID)
	h.clients.remove(connID)
	if !ok {
		return
	}
	metrics.Connections.Dec()

	h.collaborate(ctx, "clear_connection", func(ctx context.Context) error {
		return h.store.ClearConnection(ctx, connID)
	})

	if !sess.InRoom() {
		h.log.Debug().Str("conn_id", connID).Msg("connection closed before joining")
		return
	}
	if _, err := h.rooms.NotifyLeave(sess.Room, sess.Username); err != nil {
		h.log.Error().Err(err).Str("room", sess.Room).Msg("notify leave")
	}
	h.refreshPresence(ctx, sess.Room, "")

	h.log.Info().Str("conn_id", connID).Str("username", sess.Username).Str("room", sess.Room).Msg("left room")
}

func (h *Hub) refreshPresence(ctx context.Context, room, requester string) {
	cctx, cancel := context.WithTimeout(ctx, h.cfg.CollaboratorTimeout)
	defer cancel()

	users := h.presence.Snapshot(cctx, room, requester)
	if _, err := h.rooms.BroadcastPresence(room, users); err != nil {
		h.log.Error().Err(err).Str("room", room).Msg("broadcast presence")
	}
}

func (h *Hub) recentHistory(ctx context.Context, room string) []Message {
	var history []Message
	h.collaborate(ctx, "find_recent_messages", func(ctx context.Context) error {
		msgs, err := h.history.FindRecentMessages(ctx, room, h.cfg.HistoryLimit)
		history = msgs
		return err
	})
	return history
}

// collaborate runs fn against an external collaborator with a bounded
// timeout. Failures are logged and counted, never surfaced to clients.
func (h *Hub) collaborate(ctx context.Context, op string, fn func(context.Context) error) {
	cctx, cancel := context.WithTimeout(ctx, h.cfg.CollaboratorTimeout)
	defer cancel()

	if err := fn(cctx); err != nil {
		metrics.CollaboratorFailuresTotal.WithLabelValues(op).Inc()
		h.log.Warn().Err(fmt.Errorf("%w: %w", ErrCollaboratorUnavailable, err)).Str("op", op).Msg("collaborator call failed")
	}
}

func (h *Hub) failErr(connID string, err error) {
	cerr, ok := AsCoreError(err)
	if !ok {
		h.log.Error().Err(err).Str("conn_id", connID).Msg("unexpected routing error")
		cerr = validationError(err.Error())
	}
	h.fail(connID, cerr)
}

func (h *Hub) fail(connID string, cerr *CoreError) {
	metrics.CommandErrorsTotal.WithLabelValues(cerr.Code).Inc()
	h.log.Debug().Str("conn_id", connID).Str("code", cerr.Code).Msg(cerr.Message)
	h.clients.Emit(connID, ErrorEvent{Error: cerr})
}
