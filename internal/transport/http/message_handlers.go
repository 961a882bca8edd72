package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/chatrelay/chatrelay-server/internal/store"
)

// timestampLayout is an ISO-8601-like local date-time without a timezone,
// matching what history clients send.
const timestampLayout = "2006-01-02T15:04:05"

// MessageHandlers provides the REST surface over the message store.
type MessageHandlers struct {
	store store.MessageStore
	log   *zerolog.Logger
}

// NewMessageHandlers creates a new message handlers instance.
func NewMessageHandlers(st store.MessageStore, logger *zerolog.Logger) *MessageHandlers {
	return &MessageHandlers{
		store: st,
		log:   logger,
	}
}

// MessageResponse represents a message in API responses.
type MessageResponse struct {
	ID         int64  `json:"id"`
	ChatroomID int64  `json:"chatroomId"`
	SenderID   int64  `json:"senderId"`
	Content    string `json:"content"`
	Timestamp  string `json:"timestamp"`
}

// CountResponse represents a message count in API responses.
type CountResponse struct {
	Count int64 `json:"count"`
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ListByChatroom returns all messages of a room, oldest first.
// GET /v1/api/messages/chatroom/:chatroomId
func (h *MessageHandlers) ListByChatroom(c *gin.Context) {
	roomID, ok := h.pathID(c, "chatroomId")
	if !ok {
		return
	}
	h.listResponse(c, func() ([]*store.Message, error) {
		return h.store.ListByRoom(c.Request.Context(), roomID)
	})
}

// ListByChatroomRecent returns all messages of a room, newest first.
// GET /v1/api/messages/chatroom/:chatroomId/recent
func (h *MessageHandlers) ListByChatroomRecent(c *gin.Context) {
	roomID, ok := h.pathID(c, "chatroomId")
	if !ok {
		return
	}
	h.listResponse(c, func() ([]*store.Message, error) {
		return h.store.ListByRoomDesc(c.Request.Context(), roomID)
	})
}

// ListAfterTimestamp returns messages after the given local date-time.
// GET /v1/api/messages/chatroom/:chatroomId/after?timestamp=
func (h *MessageHandlers) ListAfterTimestamp(c *gin.Context) {
	roomID, ok := h.pathID(c, "chatroomId")
	if !ok {
		return
	}
	ts, ok := h.queryTimestamp(c)
	if !ok {
		return
	}
	h.listResponse(c, func() ([]*store.Message, error) {
		return h.store.ListAfter(c.Request.Context(), roomID, ts)
	})
}

// ListBeforeTimestamp returns messages before the given local date-time,
// newest first.
// GET /v1/api/messages/chatroom/:chatroomId/before?timestamp=
func (h *MessageHandlers) ListBeforeTimestamp(c *gin.Context) {
	roomID, ok := h.pathID(c, "chatroomId")
	if !ok {
		return
	}
	ts, ok := h.queryTimestamp(c)
	if !ok {
		return
	}
	h.listResponse(c, func() ([]*store.Message, error) {
		return h.store.ListBefore(c.Request.Context(), roomID, ts)
	})
}

// CountByChatroom returns the number of messages in a room.
// GET /v1/api/messages/chatroom/:chatroomId/count
func (h *MessageHandlers) CountByChatroom(c *gin.Context) {
	roomID, ok := h.pathID(c, "chatroomId")
	if !ok {
		return
	}

	count, err := h.store.CountByRoom(c.Request.Context(), roomID)
	if err != nil {
		h.storeError(c, err, "failed to count messages")
		return
	}
	c.JSON(http.StatusOK, CountResponse{Count: count})
}

// LatestInChatroom returns the single most recent message of a room.
// GET /v1/api/messages/chatroom/:chatroomId/latest
func (h *MessageHandlers) LatestInChatroom(c *gin.Context) {
	roomID, ok := h.pathID(c, "chatroomId")
	if !ok {
		return
	}

	msg, err := h.store.LatestInRoom(c.Request.Context(), roomID)
	if err != nil {
		h.storeError(c, err, "failed to get latest message")
		return
	}
	if msg == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no messages in chatroom"})
		return
	}
	c.JSON(http.StatusOK, toMessageResponse(msg))
}

// SearchInChatroom returns messages of a room containing the keyword.
// GET /v1/api/messages/chatroom/:chatroomId/search?keyword=
func (h *MessageHandlers) SearchInChatroom(c *gin.Context) {
	roomID, ok := h.pathID(c, "chatroomId")
	if !ok {
		return
	}
	keyword := c.Query("keyword")
	if keyword == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "keyword is required"})
		return
	}
	h.listResponse(c, func() ([]*store.Message, error) {
		return h.store.SearchInRoom(c.Request.Context(), roomID, keyword)
	})
}

// ListBySenderInChatroom returns all messages a user sent in one room.
// GET /v1/api/messages/chatroom/:chatroomId/sender/:senderId
func (h *MessageHandlers) ListBySenderInChatroom(c *gin.Context) {
	roomID, ok := h.pathID(c, "chatroomId")
	if !ok {
		return
	}
	senderID, ok := h.pathID(c, "senderId")
	if !ok {
		return
	}
	h.listResponse(c, func() ([]*store.Message, error) {
		return h.store.ListBySenderInRoom(c.Request.Context(), roomID, senderID)
	})
}

// ListBySender returns all messages a user sent, across all rooms.
// GET /v1/api/messages/sender/:senderId
func (h *MessageHandlers) ListBySender(c *gin.Context) {
	senderID, ok := h.pathID(c, "senderId")
	if !ok {
		return
	}
	h.listResponse(c, func() ([]*store.Message, error) {
		return h.store.ListBySender(c.Request.Context(), senderID)
	})
}

// DeleteChatroomMessages deletes all messages of a room.
// DELETE /v1/api/messages/chatroom/:chatroomId
func (h *MessageHandlers) DeleteChatroomMessages(c *gin.Context) {
	roomID, ok := h.pathID(c, "chatroomId")
	if !ok {
		return
	}

	if err := h.store.DeleteByRoom(c.Request.Context(), roomID); err != nil {
		h.storeError(c, err, "failed to delete chatroom messages")
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteSenderMessages deletes all messages a user sent in one room.
// DELETE /v1/api/messages/chatroom/:chatroomId/sender/:senderId
func (h *MessageHandlers) DeleteSenderMessages(c *gin.Context) {
	roomID, ok := h.pathID(c, "chatroomId")
	if !ok {
		return
	}
	senderID, ok := h.pathID(c, "senderId")
	if !ok {
		return
	}

	if err := h.store.DeleteBySenderInRoom(c.Request.Context(), roomID, senderID); err != nil {
		h.storeError(c, err, "failed to delete sender messages")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *MessageHandlers) pathID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + name})
		return 0, false
	}
	return id, true
}

func (h *MessageHandlers) queryTimestamp(c *gin.Context) (time.Time, bool) {
	raw := c.Query("timestamp")
	ts, err := time.ParseInLocation(timestampLayout, raw, time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid timestamp, expected " + timestampLayout})
		return time.Time{}, false
	}
	return ts, true
}

func (h *MessageHandlers) listResponse(c *gin.Context, query func() ([]*store.Message, error)) {
	messages, err := query()
	if err != nil {
		h.storeError(c, err, "failed to list messages")
		return
	}

	response := make([]MessageResponse, 0, len(messages))
	for _, msg := range messages {
		response = append(response, toMessageResponse(msg))
	}
	c.JSON(http.StatusOK, response)
}

func (h *MessageHandlers) storeError(c *gin.Context, err error, msg string) {
	h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg(msg)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

func toMessageResponse(msg *store.Message) MessageResponse {
	return MessageResponse{
		ID:         msg.ID,
		ChatroomID: msg.RoomID,
		SenderID:   msg.SenderID,
		Content:    msg.Content,
		Timestamp:  msg.CreatedAt.Format(timestampLayout),
	}
}
