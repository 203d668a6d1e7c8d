package feed

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  256,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler upgrades GET /ws to a forecast subscription. The socket is
// read only to notice the client going away.
func WSHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			hub.logger.Debug("ws upgrade failed", zap.Error(err))
			return
		}
		conn.SetReadLimit(512)

		sub := wsSubscriber{conn: conn}
		if err := hub.subscribe(sub); err != nil {
			hub.logger.Debug("ws subscribe failed", zap.Error(err))
			return
		}
		hub.logger.Info("feed subscriber joined", zap.String("transport", transportWS), zap.String("client", c.ClientIP()))

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}

		hub.unsubscribe(sub)
		hub.logger.Info("feed subscriber left", zap.String("transport", transportWS), zap.String("client", c.ClientIP()))
	}
}
