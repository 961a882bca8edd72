package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/chatrelay/chatrelay-server/internal/metrics"
	"github.com/chatrelay/chatrelay-server/internal/store"
)

// Announcement and relay frame formats. Exact strings are observable
// contract.
const (
	joinedSuffix = "님이 대화방에 들어오셨습니다."
	leftSuffix   = "님이 대화방을 나가셨습니다."
)

// JoinAnnouncement is the frame sent to a room when a user joins.
func JoinAnnouncement(name string) string { return name + joinedSuffix }

// LeaveAnnouncement is the frame sent to a room when a user leaves.
func LeaveAnnouncement(name string) string { return name + leftSuffix }

// RelayFrame is the frame other members receive for a chat message.
func RelayFrame(name, content string) string { return name + " : " + content }

// Relay ties the registry, broadcaster and persistence bridge together into
// the connection lifecycle: join and announce, relay and persist, leave and
// announce.
type Relay struct {
	registry *Registry
	cast     *Broadcaster
	bridge   *Bridge
	log      *zerolog.Logger
}

// NewRelay wires the relay engine.
func NewRelay(registry *Registry, cast *Broadcaster, bridge *Bridge, logger *zerolog.Logger) *Relay {
	return &Relay{
		registry: registry,
		cast:     cast,
		bridge:   bridge,
		log:      logger,
	}
}

// Connect registers the session in its room and announces the join to the
// whole room, the joining session included.
func (r *Relay) Connect(ctx context.Context, s *Session) error {
	if err := r.registry.Join(s); err != nil {
		return err
	}

	r.log.Info().
		Int64("room_id", s.RoomID).
		Int64("user_id", s.UserID).
		Str("name", s.Name).
		Msg("user joined room")

	r.cast.ToRoom(ctx, s.RoomID, JoinAnnouncement(s.Name))
	return nil
}

// HandleText relays an inbound chat frame to the other room members and
// schedules its persistence. The sending session is excluded by session
// identity; the store write never blocks or fails the relay.
func (r *Relay) HandleText(ctx context.Context, s *Session, content string) {
	r.cast.Except(ctx, s.RoomID, RelayFrame(s.Name, content), s.ID)
	metrics.RelayedMessages.Inc()

	r.bridge.PersistAsync(&store.Message{
		RoomID:    s.RoomID,
		SenderID:  s.UserID,
		Content:   content,
		CreatedAt: time.Now(),
	})
}

// Disconnect removes the user's sessions from the room and announces the
// leave to the remaining members.
func (r *Relay) Disconnect(ctx context.Context, s *Session) {
	removed := r.registry.Leave(s.RoomID, s.UserID)
	if len(removed) == 0 {
		return
	}

	r.log.Info().
		Int64("room_id", s.RoomID).
		Int64("user_id", s.UserID).
		Str("name", s.Name).
		Msg("user left room")

	r.cast.ToRoom(ctx, s.RoomID, LeaveAnnouncement(s.Name))
}
