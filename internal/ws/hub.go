package ws

import (
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
)

// Registration ties a connection to the device token it registered with.
type Registration struct {
	Conn  *websocket.Conn
	Token string
}

// Envelope is a payload addressed to a single device token.
type Envelope struct {
	Token   string
	Payload []byte
}

// Hub fans push payloads out to connected clients. Clients register with a
// device token; Direct delivers to every connection holding that token,
// Broadcast delivers to everyone. Delivery is at-most-once: a client that is
// not connected when the message goes out never sees it.
type Hub struct {
	clients    map[*websocket.Conn]string
	Register   chan Registration
	Unregister chan *websocket.Conn
	Direct     chan Envelope
	Broadcast  chan []byte
	mutex      sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]string),
		Register:   make(chan Registration),
		Unregister: make(chan *websocket.Conn),
		Direct:     make(chan Envelope, 64),
		Broadcast:  make(chan []byte, 64),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case reg := <-h.Register:
			h.mutex.Lock()
			h.clients[reg.Conn] = reg.Token
			h.mutex.Unlock()
			log.Println("New WS client connected")

		case conn := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case env := <-h.Direct:
			h.mutex.Lock()
			for conn, token := range h.clients {
				if token != env.Token {
					continue
				}
				if err := conn.WriteMessage(websocket.TextMessage, env.Payload); err != nil {
					conn.Close()
					delete(h.clients, conn)
				}
			}
			h.mutex.Unlock()

		case message := <-h.Broadcast:
			h.mutex.Lock()
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close()
					delete(h.clients, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}
