package api

import (
	"log"
	"net/http"

	"mediverse/internal/auth"
	"mediverse/internal/hub"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub      *hub.Hub
	upgrader websocket.Upgrader
}

func NewWebSocketHandler(h *hub.Hub, allowedOrigin string) *WebSocketHandler {
	return &WebSocketHandler{
		hub: h,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				// Non-browser clients send no Origin header.
				return origin == "" || origin == allowedOrigin
			},
		},
	}
}

// HandleWebSocket upgrades the connection after validating the same token
// cookie the HTTP middleware checks. The live channel is never a weaker
// authentication path: no session, no socket.
// @Summary WebSocket connection endpoint
// @Description Upgrade to WebSocket for real-time forum and post updates
// @Tags websocket
// @Success 101 {string} string "Switching Protocols"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /ws [get]
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	token, err := c.Cookie("token")
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	claims, err := auth.ValidateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	userID, _ := claims["user_id"].(string)
	username, _ := claims["username"].(string)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed for %s: %v", userID, err)
		return
	}

	client := hub.NewClient(h.hub, conn, userID, username)
	if err := h.hub.RegisterClient(client); err != nil {
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}

type WebSocketInfoResponse struct {
	TotalConnections int            `json:"total_connections"`
	RoomCounts       map[string]int `json:"room_counts"`
}

// GetConnectionInfo reports live connection and room membership counts
// @Summary WebSocket connection info
// @Tags websocket
// @Produce json
// @Success 200 {object} WebSocketInfoResponse
// @Router /ws/info [get]
func (h *WebSocketHandler) GetConnectionInfo(c *gin.Context) {
	c.JSON(200, WebSocketInfoResponse{
		TotalConnections: h.hub.ClientCount(),
		RoomCounts:       h.hub.RoomCounts(),
	})
}
