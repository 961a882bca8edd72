package http

import (
	"context"
	"fmt"
	stdhttp "net/http"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	"github.com/chatrelay/chatrelay-server/internal/core"
	"github.com/chatrelay/chatrelay-server/internal/metrics"
)

// WSHandler upgrades HTTP connections and bridges them to the relay engine.
// Identity and room come from the handshake request headers; every inbound
// text frame is relayed to the other room members and persisted.
type WSHandler struct {
	relay *core.Relay
	log   *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(relay *core.Relay, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{relay: relay, log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx := r.Context()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	hs, rejection, err := h.validateHandshake(r)
	if err != nil {
		// Server fault, not a client error. The client still gets a frame
		// before the connection dies.
		h.log.Error().Err(err).Msg("handshake processing failed")
		_ = conn.Write(ctx, websocket.MessageText, []byte(core.RejectInternalError))
		conn.Close(websocket.StatusInternalError, "handshake failed")
		return
	}
	if rejection != nil {
		_ = conn.Write(ctx, websocket.MessageText, []byte(rejection.Reason))
		conn.Close(websocket.StatusNormalClosure, "")
		return
	}

	sess := core.NewSession(hs, wsTransport{conn: conn})

	if err := h.relay.Connect(ctx, sess); err != nil {
		h.log.Warn().
			Err(err).
			Int64("room_id", hs.RoomID).
			Int64("user_id", hs.UserID).
			Msg("connection refused")
		_ = conn.Write(ctx, websocket.MessageText, []byte("Error: "+err.Error()))
		conn.Close(websocket.StatusPolicyViolation, err.Error())
		return
	}

	metrics.ActiveConnections.Inc()
	defer metrics.ActiveConnections.Dec()

	h.readLoop(ctx, conn, sess)

	// The request context is tearing down with the connection; announcements
	// to the remaining members use a fresh one.
	h.relay.Disconnect(context.Background(), sess)
	conn.Close(websocket.StatusNormalClosure, "")
}

// validateHandshake extracts identity and room from the request headers.
// A panic while processing is converted into an error so one bad connection
// attempt never takes the process down.
func (h *WSHandler) validateHandshake(r *stdhttp.Request) (hs core.Handshake, rejection *core.Rejection, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("handshake header processing: %v", rec)
		}
	}()

	hs, rejection = core.ParseHandshake(r.Header.Get)
	return hs, rejection, nil
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, sess *core.Session) {
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
				h.log.Debug().
					Err(err).
					Str("session_id", sess.ID).
					Msg("ws connection closed")
			}
			return
		}
		if typ != websocket.MessageText {
			continue
		}
		h.relay.HandleText(ctx, sess, string(data))
	}
}

// wsTransport adapts a websocket connection to the core send capability.
type wsTransport struct {
	conn *websocket.Conn
}

func (t wsTransport) Send(ctx context.Context, text string) error {
	return t.conn.Write(ctx, websocket.MessageText, []byte(text))
}
