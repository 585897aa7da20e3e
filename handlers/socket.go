package handlers

import (
	"taskhive/services/notification"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SocketHandler upgrades authenticated requests to realtime sockets.
type SocketHandler struct {
	Hub *notification.Hub
}

func NewSocketHandler(hub *notification.Hub) *SocketHandler {
	return &SocketHandler{Hub: hub}
}

// ServeSocketHandler blocks for the lifetime of the socket.
func (h *SocketHandler) ServeSocketHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	logger := getLogger(c).With(zap.String("userId", actor.ID))
	conn, err := notification.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	logger.Debug("socket connected")
	notification.NewClient(h.Hub, conn, actor, logger).Serve()
	logger.Debug("socket closed")
}
