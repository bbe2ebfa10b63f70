package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"imagevault/internal/hub"
)

var upgrader = websocket.Upgrader{
	// The API is reachable from other devices on the network; origin checks
	// are left to the shared-secret middleware.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// EventsHandler upgrades to a websocket and streams catalog change events
// until the client goes away.
func EventsHandler(events *hub.Hub, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Debug().Err(err).Msg("websocket upgrade failed")
			return
		}

		events.Register(conn)

		// Clients only listen; the read loop just detects disconnects.
		go func() {
			defer events.Unregister(conn)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}
}
