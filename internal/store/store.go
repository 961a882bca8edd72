package store

import (
	"context"
	"time"
)

// Message is a persisted chat message. CreatedAt is assigned by the relay at
// receipt time, not by the store at write time; history ordering relies on it
// rather than on persist arrival order.
type Message struct {
	ID        int64
	RoomID    int64
	SenderID  int64
	Content   string
	CreatedAt time.Time
}

// MessageStore handles message persistence and the history query surface.
type MessageStore interface {
	// SaveMessage persists a message and fills in its assigned ID.
	SaveMessage(ctx context.Context, msg *Message) error

	// ListByRoom returns all messages of a room, oldest first.
	ListByRoom(ctx context.Context, roomID int64) ([]*Message, error)

	// ListByRoomDesc returns all messages of a room, newest first.
	ListByRoomDesc(ctx context.Context, roomID int64) ([]*Message, error)

	// ListAfter returns messages of a room strictly after ts, oldest first.
	ListAfter(ctx context.Context, roomID int64, ts time.Time) ([]*Message, error)

	// ListBefore returns messages of a room strictly before ts, newest
	// first. Useful for timestamp-based pagination.
	ListBefore(ctx context.Context, roomID int64, ts time.Time) ([]*Message, error)

	// CountByRoom returns the number of messages in a room.
	CountByRoom(ctx context.Context, roomID int64) (int64, error)

	// ListBySender returns all messages a user sent, across all rooms.
	ListBySender(ctx context.Context, senderID int64) ([]*Message, error)

	// ListBySenderInRoom returns all messages a user sent in one room.
	ListBySenderInRoom(ctx context.Context, roomID, senderID int64) ([]*Message, error)

	// SearchInRoom returns messages of a room whose content contains
	// keyword as a substring.
	SearchInRoom(ctx context.Context, roomID int64, keyword string) ([]*Message, error)

	// LatestInRoom returns the single most recent message of a room, or
	// nil if the room has none.
	LatestInRoom(ctx context.Context, roomID int64) (*Message, error)

	// DeleteBySenderInRoom deletes all messages a user sent in one room.
	DeleteBySenderInRoom(ctx context.Context, roomID, senderID int64) error

	// DeleteByRoom deletes all messages of a room.
	DeleteByRoom(ctx context.Context, roomID int64) error
}

// Store aggregates all storage interfaces.
type Store interface {
	MessageStore

	// Close closes the underlying database connection.
	Close() error
}
