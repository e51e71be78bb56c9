package core

import (
	"strings"

	"github.com/samber/lo"
)

// DefaultRooms is the catalog used when configuration does not name any rooms.
var DefaultRooms = []string{"devops", "cloud computing", "data science", "hackathons", "nodejs"}

// NormalizeRoom returns the canonical form of a room identifier.
func NormalizeRoom(room string) string {
	return strings.ToLower(strings.TrimSpace(room))
}

// RoomCatalog is the fixed set of rooms known at startup.
// Rooms are never created or destroyed at runtime.
type RoomCatalog struct {
	names []string
	set   map[string]struct{}
}

// NewRoomCatalog normalizes and deduplicates names, keeping their order.
func NewRoomCatalog(names []string) *RoomCatalog {
	if len(names) == 0 {
		names = DefaultRooms
	}
	normalized := lo.Uniq(lo.FilterMap(names, func(name string, _ int) (string, bool) {
		n := NormalizeRoom(name)
		return n, n != ""
	}))

	set := make(map[string]struct{}, len(normalized))
	for _, n := range normalized {
		set[n] = struct{}{}
	}
	return &RoomCatalog{names: normalized, set: set}
}

// Resolve returns the canonical room for a client-supplied identifier.
func (c *RoomCatalog) Resolve(room string) (string, bool) {
	n := NormalizeRoom(room)
	if _, ok := c.set[n]; !ok {
		return "", false
	}
	return n, true
}

// Names lists the catalog in configuration order.
func (c *RoomCatalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}
