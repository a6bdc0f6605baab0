package realtime

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Типы событий, которые сервер пушит клиентам.
const (
	EventDepositStatus     = "DEPOSIT_STATUS_CHANGED"
	EventWithdrawalStatus  = "WITHDRAWAL_STATUS_CHANGED"
	EventWalletTransaction = "WALLET_TRANSACTION"
	EventTournamentStatus  = "TOURNAMENT_STATUS_CHANGED"
	EventNewDepositRequest = "NEW_DEPOSIT_REQUEST"
	EventNewWithdrawal     = "NEW_WITHDRAWAL_REQUEST"
)

// Event - сообщение, отправляемое в комнату.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Notifier - то, что видят сервисы: доставка событий пользователю или админам.
// Доставка best-effort: отсутствие подключённых клиентов не является ошибкой.
type Notifier interface {
	NotifyUser(userID int, event Event)
	NotifyAdmins(event Event)
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// AdminRoom - общая комната для событий, адресованных персоналу.
const AdminRoom = "admin"

func UserRoom(userID int) string {
	return fmt.Sprintf("user:%d", userID)
}

type Client struct {
	Hub      *Hub
	Conn     *websocket.Conn
	Send     chan []byte
	Rooms    []string
	IsClosed bool
	Mu       sync.Mutex
}

type Hub struct {
	Register   chan *Client
	Unregister chan *Client
	rooms      map[string]map[*Client]bool
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			for _, room := range client.Rooms {
				if _, ok := h.rooms[room]; !ok {
					h.rooms[room] = make(map[*Client]bool)
				}
				h.rooms[room][client] = true
			}
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			for _, room := range client.Rooms {
				if _, ok := h.rooms[room]; !ok {
					continue
				}
				if _, okClient := h.rooms[room][client]; okClient {
					delete(h.rooms[room], client)
					if len(h.rooms[room]) == 0 {
						delete(h.rooms, room)
					}
				}
			}
			client.Mu.Lock()
			if !client.IsClosed {
				close(client.Send)
				client.IsClosed = true
			}
			client.Mu.Unlock()
			h.mu.Unlock()
		}
	}
}

// BroadcastToRoom отправляет сообщение всем клиентам в указанной комнате.
func (h *Hub) BroadcastToRoom(room string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	roomClients, ok := h.rooms[room]
	if !ok {
		return
	}

	messageBytes, err := json.Marshal(event)
	if err != nil {
		log.Printf("Error marshalling event for room %s: %v", room, err)
		return
	}

	for client := range roomClients {
		client.Mu.Lock()
		if client.IsClosed {
			client.Mu.Unlock()
			continue
		}
		select {
		case client.Send <- messageBytes:
		default:
			// Канал клиента переполнен; клиент догонит состояние при следующем refetch.
		}
		client.Mu.Unlock()
	}
}

func (h *Hub) NotifyUser(userID int, event Event) {
	h.BroadcastToRoom(UserRoom(userID), event)
}

func (h *Hub) NotifyAdmins(event Event) {
	h.BroadcastToRoom(AdminRoom, event)
}

// RoomClientCount нужен в основном для тестов и диагностики.
func (h *Hub) RoomClientCount(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		// Входящие сообщения игнорируются: канал только серверный.
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket read error: %v", err)
			}
			break
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Сливаем накопившиеся сообщения в тот же фрейм.
			n := len(c.Send)
			for i := 0; i < n; i++ {
				w.Write(<-c.Send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
