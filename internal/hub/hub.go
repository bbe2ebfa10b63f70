package hub

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Event is a catalog change pushed to connected clients.
type Event struct {
	Event    string `json:"event"`
	ID       int64  `json:"id,omitempty"`
	Filename string `json:"filename,omitempty"`
}

// Hub fans catalog change events out to websocket clients so UIs refresh
// without polling.
type Hub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	stop       chan struct{}
	stopOnce   sync.Once
	log        zerolog.Logger
}

// New builds a Hub. Run must be started on its own goroutine.
func New(log zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		stop:       make(chan struct{}),
		log:        log,
	}
}

// Run owns the client set; all membership changes and writes go through this
// loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.log.Debug().Int("clients", len(h.clients)).Msg("event client connected")

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			h.log.Debug().Int("clients", len(h.clients)).Msg("event client disconnected")

		case message := <-h.broadcast:
			for client := range h.clients {
				if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
					h.log.Debug().Err(err).Msg("dropping unreachable event client")
					delete(h.clients, client)
					client.Close()
				}
			}

		case <-h.stop:
			for client := range h.clients {
				client.Close()
			}
			h.clients = make(map[*websocket.Conn]bool)
			return
		}
	}
}

// Stop terminates the run loop and closes every client.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
}

// Register hands a new connection to the run loop.
func (h *Hub) Register(conn *websocket.Conn) {
	select {
	case h.register <- conn:
	case <-h.stop:
		conn.Close()
	}
}

// Unregister removes a connection.
func (h *Hub) Unregister(conn *websocket.Conn) {
	select {
	case h.unregister <- conn:
	case <-h.stop:
	}
}

// Notify broadcasts one event. It never blocks the caller: when the buffer
// is full the event is dropped.
func (h *Hub) Notify(event string, id int64, filename string) {
	payload, err := json.Marshal(Event{Event: event, ID: id, Filename: filename})
	if err != nil {
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		h.log.Debug().Str("event", event).Msg("event buffer full, dropped")
	}
}
