package notifier

import (
	"net/http"
	"time"

	"buslane/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect cross-origin in development; auth happens at
	// the token level, not the origin level.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WebSocketHandler upgrades the connection and streams hub events to the
// client as JSON frames.
func WebSocketHandler(hub *Hub) gin.HandlerFunc {
	log := logger.GetDefault()

	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.WithError(err).Warn("websocket upgrade failed",
				"ip", c.ClientIP())
			return
		}

		sub := hub.Subscribe()
		go writePump(conn, sub, log)
		go readPump(conn, sub)
	}
}

// writePump pushes events and keepalive pings until the subscription or
// connection dies.
func writePump(conn *websocket.Conn, sub *Subscription, log *logger.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		sub.Close()
		conn.Close()
	}()

	for {
		select {
		case event, ok := <-sub.Events:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				log.WithError(err).Debug("websocket write failed")
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards client frames; it exists to process control messages and
// notice disconnects.
func readPump(conn *websocket.Conn, sub *Subscription) {
	defer func() {
		sub.Close()
		conn.Close()
	}()

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// SetupWebSocketRoutes registers the live event stream endpoint.
func SetupWebSocketRoutes(rg *gin.RouterGroup, hub *Hub) {
	rg.GET("/ws", WebSocketHandler(hub))
}
