package core

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/vovakirdan/wirechat-relay/internal/metrics"
)

// DefaultPresenceLimit bounds a presence snapshot: the requester plus four others.
const DefaultPresenceLimit = 5

// PresenceCoordinator computes the "who is online" view for a room.
//
// The view is drawn from the user directory, not from room membership, so
// listed users may be offline or in another room. This keeps newly signed-up
// users discoverable but it is not a membership list; callers that need real
// membership must use Registry.SessionsInRoom.
type PresenceCoordinator struct {
	registry  Registry
	directory Directory
	limit     int
	log       *zerolog.Logger
}

// NewPresenceCoordinator creates a coordinator. limit <= 0 uses DefaultPresenceLimit.
func NewPresenceCoordinator(registry Registry, directory Directory, limit int, logger *zerolog.Logger) *PresenceCoordinator {
	if limit <= 0 {
		limit = DefaultPresenceLimit
	}
	if directory == nil {
		directory = nopCollaborators{}
	}
	return &PresenceCoordinator{
		registry:  registry,
		directory: directory,
		limit:     limit,
		log:       logger,
	}
}

// Snapshot lists requester first, then up to limit-1 other users in
// directory order. If the directory fails the live room members are used.
func (p *PresenceCoordinator) Snapshot(ctx context.Context, room, requester string) []PresenceEntry {
	names, err := p.directory.FindAllUsers(ctx, p.limit)
	if err != nil {
		metrics.CollaboratorFailuresTotal.WithLabelValues("find_all_users").Inc()
		p.log.Warn().
			Err(fmt.Errorf("%w: %w", ErrCollaboratorUnavailable, err)).
			Str("room", room).
			Msg("directory lookup failed, falling back to room members")
		names = p.roomMembers(room)
	}
	return assemblePresence(requester, names, p.limit)
}

func (p *PresenceCoordinator) roomMembers(room string) []string {
	var names []string
	for sess := range p.registry.SessionsInRoom(room) {
		names = append(names, sess.Username)
	}
	return names
}

func assemblePresence(requester string, names []string, limit int) []PresenceEntry {
	others := lo.Uniq(lo.Filter(names, func(name string, _ int) bool {
		return name != "" && name != requester
	}))

	ordered := make([]string, 0, limit)
	if requester != "" {
		ordered = append(ordered, requester)
	}
	ordered = append(ordered, others...)
	if len(ordered) > limit {
		ordered = ordered[:limit]
	}

	return lo.Map(ordered, func(name string, _ int) PresenceEntry {
		return PresenceEntry{Username: name}
	})
}
