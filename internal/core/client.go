package core

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-relay/internal/metrics"
)

// DefaultEventBuffer is the per-connection outbound queue size.
const DefaultEventBuffer = 64

// Client is a live connection as seen by the core layer.
type Client struct {
	ID string
	// Name is the authenticated username, empty for anonymous connections.
	Name   string
	Events chan Event
}

// NewClient constructs a client with an initialized event queue.
func NewClient(id, name string, buffer int) *Client {
	if buffer <= 0 {
		buffer = DefaultEventBuffer
	}
	return &Client{
		ID:     id,
		Name:   name,
		Events: make(chan Event, buffer),
	}
}

// Emitter delivers an event to one connection.
type Emitter interface {
	Emit(connID string, ev Event) bool
}

// clientSet owns the outbound queues of all live connections.
type clientSet struct {
	mu      sync.RWMutex
	clients map[string]*Client
	log     *zerolog.Logger
}

func newClientSet(logger *zerolog.Logger) *clientSet {
	return &clientSet{
		clients: make(map[string]*Client),
		log:     logger,
	}
}

func (s *clientSet) add(c *Client) {
	s.mu.Lock()
	s.clients[c.ID] = c
	s.mu.Unlock()
}

// remove closes the client's queue so its writer drains and exits.
func (s *clientSet) remove(connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.clients[connID]; ok {
		delete(s.clients, connID)
		close(c.Events)
	}
}

// Emit never blocks: a full queue drops the event.
func (s *clientSet) Emit(connID string, ev Event) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.clients[connID]
	if !ok {
		return false
	}
	select {
	case c.Events <- ev:
		metrics.EventsDeliveredTotal.WithLabelValues(ev.Name()).Inc()
		return true
	default:
		metrics.EventsDroppedTotal.Inc()
		s.log.Warn().Str("conn_id", connID).Str("event", ev.Name()).Msg("dropping event for slow consumer")
		return false
	}
}
