package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/ff-arena/middleware"
	"github.com/Dosada05/ff-arena/models"
	"github.com/Dosada05/ff-arena/realtime"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: сверять Origin со списком доверенных доменов перед продом.
		return true
	},
}

type WebSocketHandler struct {
	hub  *realtime.Hub
	auth *middleware.Authenticator
}

func NewWebSocketHandler(hub *realtime.Hub, auth *middleware.Authenticator) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, auth: auth}
}

// ServeWs апгрейдит соединение и подписывает клиента на его личную комнату.
// Админы дополнительно попадают в комнату админских уведомлений.
// Браузерный WebSocket не умеет выставлять заголовки, поэтому токен
// передаётся query-параметром: /ws?token=...
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	claims, err := h.auth.ParseToken(tokenString)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	userIDFloat, ok := claims["user_id"].(float64)
	if !ok || userIDFloat <= 0 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	userID := int(userIDFloat)

	rooms := []string{realtime.UserRoom(userID)}
	if rawRoles, ok := claims["roles"].([]interface{}); ok {
		for _, raw := range rawRoles {
			if role, ok := raw.(string); ok && models.UserRole(role) == models.RoleAdmin {
				rooms = append(rooms, realtime.AdminRoom)
				break
			}
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader.Upgrade сам отправляет HTTP-ошибку клиенту.
		slog.Error("failed to upgrade websocket connection", slog.Any("error", err))
		return
	}

	client := &realtime.Client{
		Hub:   h.hub,
		Conn:  conn,
		Send:  make(chan []byte, 256),
		Rooms: rooms,
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
