package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/chatrelay/chatrelay-server/internal/config"
	"github.com/chatrelay/chatrelay-server/internal/core"
	"github.com/chatrelay/chatrelay-server/internal/metrics"
	"github.com/chatrelay/chatrelay-server/internal/store"
)

// NewServer builds the HTTP server: websocket relay endpoint, message
// history REST surface, health and metrics.
func NewServer(relay *core.Relay, st store.Store, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	router.GET("/health", healthHandler)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/ws", gin.WrapH(NewWSHandler(relay, logger)))

	mh := NewMessageHandlers(st, logger)
	messages := router.Group("/v1/api/messages")
	{
		messages.GET("/chatroom/:chatroomId", mh.ListByChatroom)
		messages.GET("/chatroom/:chatroomId/recent", mh.ListByChatroomRecent)
		messages.GET("/chatroom/:chatroomId/after", mh.ListAfterTimestamp)
		messages.GET("/chatroom/:chatroomId/before", mh.ListBeforeTimestamp)
		messages.GET("/chatroom/:chatroomId/count", mh.CountByChatroom)
		messages.GET("/chatroom/:chatroomId/latest", mh.LatestInChatroom)
		messages.GET("/chatroom/:chatroomId/search", mh.SearchInChatroom)
		messages.GET("/chatroom/:chatroomId/sender/:senderId", mh.ListBySenderInChatroom)
		messages.GET("/sender/:senderId", mh.ListBySender)
		messages.DELETE("/chatroom/:chatroomId", mh.DeleteChatroomMessages)
		messages.DELETE("/chatroom/:chatroomId/sender/:senderId", mh.DeleteSenderMessages)
	}

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
