package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		// TODO: Configure this for production
		return true
	},
}

// Event names broadcast to subscribed clients.
const (
	EventMapUpdated = "map_updated"
	EventMapRemoved = "map_removed"
)

// Message is the event frame delivered to subscribed clients.
type Message struct {
	Map   string      `json:"map"`
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// Client represents one WebSocket connection subscribed to a map.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	mapName string
}

// Hub maintains the set of active clients grouped by map name and fans
// events out to them.
type Hub struct {
	// Registered clients by map name
	maps map[string]map[*Client]bool

	// Inbound events to broadcast
	broadcast chan *Message

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client
}

// NewHub creates a new WebSocket hub.
func NewHub() *Hub {
	return &Hub{
		maps:       make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's event loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// ServeWS upgrades an HTTP request and subscribes the connection to a map.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, mapName string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, 256),
		mapName: mapName,
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// BroadcastMapEvent queues an event for every client subscribed to mapName.
// Safe to call from any goroutine.
func (h *Hub) BroadcastMapEvent(mapName, event string, data interface{}) {
	h.broadcast <- &Message{Map: mapName, Event: event, Data: data}
}

// registerClient adds a client to its map group.
func (h *Hub) registerClient(client *Client) {
	if h.maps[client.mapName] == nil {
		h.maps[client.mapName] = make(map[*Client]bool)
	}
	h.maps[client.mapName][client] = true

	log.Printf("Client subscribed to map %s (total clients: %d)",
		client.mapName, len(h.maps[client.mapName]))
}

// unregisterClient removes a client from its map group.
func (h *Hub) unregisterClient(client *Client) {
	if clients, ok := h.maps[client.mapName]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)

			// Clean up empty map groups
			if len(clients) == 0 {
				delete(h.maps, client.mapName)
			}

			log.Printf("Client unsubscribed from map %s (remaining clients: %d)",
				client.mapName, len(clients))
		}
	}
}

// broadcastMessage sends a message to all clients subscribed to its map.
func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Failed to marshal broadcast message: %v", err)
		return
	}

	if clients, ok := h.maps[message.Map]; ok {
		for client := range clients {
			select {
			case client.send <- data:
			default:
				// Client's send channel is full, drop it
				h.unregisterClient(client)
			}
		}
	}
}

// readPump drains the WebSocket connection and keeps it alive.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		// Clients don't send application messages; reading only detects
		// disconnects and pongs.
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current WebSocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
