package realtime

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"imovelhub/internal/pkg/jwt"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true }, // configure in prod
}

// WSHandler upgrades clients onto the change feed.
// Endpoint: GET /ws?token=JWT since websocket clients cannot send headers.
type WSHandler struct {
	hub    *Hub
	jwt    *jwt.Service
	logger *zap.Logger
}

func NewWSHandler(hub *Hub, jwtService *jwt.Service, logger *zap.Logger) *WSHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSHandler{hub: hub, jwt: jwtService, logger: logger}
}

func (h *WSHandler) Handle(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token query parameter is required"})
		return
	}
	claims, err := h.jwt.ValidateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}

	wsConn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	conn := &connection{
		userID: claims.UserID,
		send:   make(chan []byte, 256),
		tables: make(map[string]bool),
	}
	h.hub.register(conn)
	h.logger.Debug("change-feed client connected", zap.Int64("user_id", claims.UserID))

	go h.writePump(wsConn, conn)
	h.readPump(wsConn, conn) // blocks until disconnect
}

func (h *WSHandler) readPump(wsConn *websocket.Conn, c *connection) {
	defer func() {
		h.hub.unregister(c)
		wsConn.Close()
		h.logger.Debug("change-feed client disconnected", zap.Int64("user_id", c.userID))
	}()

	wsConn.SetReadLimit(maxMsgSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := wsConn.ReadMessage()
		if err != nil {
			break
		}

		var cmd struct {
			Type  string `json:"type"`
			Table string `json:"table"`
		}
		if err := json.Unmarshal(msg, &cmd); err != nil {
			continue
		}

		switch cmd.Type {
		case "subscribe":
			h.hub.subscribe(c, cmd.Table)
		case "unsubscribe":
			h.hub.unsubscribe(c, cmd.Table)
		}
	}
}

func (h *WSHandler) writePump(wsConn *websocket.Conn, c *connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := wsConn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
