package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// SendResult records the outcome of one delivery attempt within a broadcast.
type SendResult struct {
	SessionID string
	UserID    int64
	Err       error
}

// Broadcaster delivers text frames to the members of a room. It only reads
// registry snapshots and never mutates membership. A failed send to one
// member is logged and recorded, and never stops delivery to the rest;
// nothing is propagated because announcement callers have no meaningful
// receiver for a partial failure.
type Broadcaster struct {
	registry *Registry
	log      *zerolog.Logger

	// sendTimeout bounds each individual send so a hung transport cannot
	// stall a broadcast forever. Zero disables the bound.
	sendTimeout time.Duration
}

// NewBroadcaster builds a broadcaster over the given registry.
func NewBroadcaster(registry *Registry, sendTimeout time.Duration, logger *zerolog.Logger) *Broadcaster {
	return &Broadcaster{
		registry:    registry,
		log:         logger,
		sendTimeout: sendTimeout,
	}
}

// ToRoom sends text to every current member of the room.
func (b *Broadcaster) ToRoom(ctx context.Context, roomID int64, text string) []SendResult {
	return b.send(ctx, roomID, text, "")
}

// Except sends text to every current member of the room except the session
// with the given ID. Exclusion is by session identity, not userId, so a
// second device of the same user still receives the frame.
func (b *Broadcaster) Except(ctx context.Context, roomID int64, text string, excludeSessionID string) []SendResult {
	return b.send(ctx, roomID, text, excludeSessionID)
}

func (b *Broadcaster) send(ctx context.Context, roomID int64, text string, exclude string) []SendResult {
	members := b.registry.Members(roomID)
	results := make([]SendResult, 0, len(members))

	for _, member := range members {
		if exclude != "" && member.ID == exclude {
			continue
		}
		err := b.sendOne(ctx, member, text)
		if err != nil {
			b.log.Warn().
				Err(err).
				Int64("room_id", roomID).
				Int64("user_id", member.UserID).
				Str("session_id", member.ID).
				Msg("broadcast send failed")
		}
		results = append(results, SendResult{SessionID: member.ID, UserID: member.UserID, Err: err})
	}
	return results
}

func (b *Broadcaster) sendOne(ctx context.Context, member *Session, text string) error {
	if b.sendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.sendTimeout)
		defer cancel()
	}
	return member.Send(ctx, text)
}
