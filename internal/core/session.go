package core

import (
	"context"

	"github.com/google/uuid"
)

// Transport is the send capability of a live client connection. The
// connection's lifecycle (close, error handling) belongs to the transport
// layer, not to the core.
type Transport interface {
	// Send writes a single text frame to the client.
	Send(ctx context.Context, text string) error
}

// Session is one client's live connection plus its claimed identity.
// Registry membership is keyed by UserID within RoomID; broadcast exclusion
// is keyed by the session ID, so a user connected from two devices is only
// excluded on the originating one.
type Session struct {
	// ID identifies the underlying transport, unique per connection.
	ID     string
	Name   string
	UserID int64
	RoomID int64

	transport Transport
}

// NewSession constructs a session for an accepted handshake.
func NewSession(hs Handshake, tr Transport) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Name:      hs.Name,
		UserID:    hs.UserID,
		RoomID:    hs.RoomID,
		transport: tr,
	}
}

// Send forwards a text frame to the session's transport.
func (s *Session) Send(ctx context.Context, text string) error {
	return s.transport.Send(ctx, text)
}
