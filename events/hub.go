package events

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/yeremiapane/pos-app/utils"
)

// Event types pushed to attached terminals.
const (
	EventSaleCreated   = "sale_created"
	EventSaleVoided    = "sale_voided"
	EventTableUpdate   = "table_update"
	EventTablesStatus  = "tables_status"
	EventSessionOpened = "session_opened"
	EventSessionClosed = "session_closed"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub fans out POS events to every connected terminal (floor screens,
// second registers, admin dashboards).
type Hub struct {
	clients map[*websocket.Conn]string // conn -> role
	mutex   sync.Mutex
}

var hub = Hub{
	clients: make(map[*websocket.Conn]string),
}

func RegisterClient(conn *websocket.Conn, role string) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	hub.clients[conn] = role
}

func UnregisterClient(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	delete(hub.clients, conn)
	conn.Close()
}

func Broadcast(event string, data interface{}) {
	broadcast(Message{Event: event, Data: data})
}

func broadcast(msg Message) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	payload, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling %s event: %v", msg.Event, err)
		return
	}

	for conn, role := range hub.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			utils.ErrorLogger.Printf("Error sending %s event to %s client: %v", msg.Event, role, err)
			continue
		}
	}
}
