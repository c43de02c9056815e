package kds

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/yeremiapane/cafe-pos/models"
	"github.com/yeremiapane/cafe-pos/utils"
)

// Event types
const (
	EventOrderCommitted = "order_committed"
	EventCatalogUpdated = "catalog_updated"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// CatalogChange is the payload of EventCatalogUpdated.
type CatalogChange struct {
	Action     string `json:"action"`
	MenuItemID uint   `json:"menu_item_id,omitempty"`
}

// Hub menampung semua client display (kitchen, counter) untuk broadcast
type Hub struct {
	clients map[*websocket.Conn]string // conn -> station
	mutex   sync.Mutex
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]string)}
}

// RegisterClient -> menambahkan connection ke set dengan station
func (h *Hub) RegisterClient(conn *websocket.Conn, station string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = station
}

// UnregisterClient -> melepaskan connection
func (h *Hub) UnregisterClient(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	delete(h.clients, conn)
	conn.Close()
}

// ClientCount returns the number of connected displays.
func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// BroadcastOrderCommitted -> order baru masuk ke dapur
func (h *Hub) BroadcastOrderCommitted(order models.Order) {
	h.broadcast(Message{
		Event: EventOrderCommitted,
		Data:  order,
	})
}

// BroadcastCatalogUpdated -> menu berubah, display perlu refresh
func (h *Hub) BroadcastCatalogUpdated(action string, menuItemID uint) {
	h.broadcast(Message{
		Event: EventCatalogUpdated,
		Data:  CatalogChange{Action: action, MenuItemID: menuItemID},
	})
}

func (h *Hub) broadcast(msg Message) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling message: %v", err)
		return
	}

	utils.InfoLogger.Debugf("Broadcasting %s to %d clients", msg.Event, len(h.clients))

	for conn, station := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Printf("Error sending %s to %s display: %v", msg.Event, station, err)
			continue
		}
	}
}
