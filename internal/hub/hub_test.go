package hub

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imagevault/internal/logger"
)

// dialTestClient upgrades one connection against a test server and registers
// it with the hub. It returns only after the run loop has taken the client,
// so a following Notify is guaranteed to reach it.
func dialTestClient(t *testing.T, h *Hub) *websocket.Conn {
	t.Helper()

	registered := make(chan struct{})
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		h.Register(conn)
		close(registered)
	}))
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	select {
	case <-registered:
	case <-time.After(5 * time.Second):
		t.Fatal("client registration timed out")
	}
	return client
}

func TestNotifyReachesClient(t *testing.T) {
	h := New(logger.Nop())
	go h.Run()
	t.Cleanup(h.Stop)

	client := dialTestClient(t, h)

	h.Notify("ingested", 7, "cat.png")

	client.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, payload, err := client.ReadMessage()
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal(payload, &event))
	assert.Equal(t, "ingested", event.Event)
	assert.Equal(t, int64(7), event.ID)
	assert.Equal(t, "cat.png", event.Filename)
}

func TestNotifyFanOut(t *testing.T) {
	h := New(logger.Nop())
	go h.Run()
	t.Cleanup(h.Stop)

	first := dialTestClient(t, h)
	second := dialTestClient(t, h)

	h.Notify("deleted", 3, "")

	for _, client := range []*websocket.Conn{first, second} {
		client.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, payload, err := client.ReadMessage()
		require.NoError(t, err)

		var event Event
		require.NoError(t, json.Unmarshal(payload, &event))
		assert.Equal(t, "deleted", event.Event)
	}
}

func TestNotifyWithoutRunDoesNotBlock(t *testing.T) {
	h := New(logger.Nop())

	// Fill the buffer past capacity; every call must return immediately.
	for i := 0; i < 100; i++ {
		h.Notify("updated", int64(i), "")
	}
}

func TestStopClosesClients(t *testing.T) {
	h := New(logger.Nop())
	go h.Run()

	client := dialTestClient(t, h)

	h.Stop()

	client.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := client.ReadMessage()
	assert.Error(t, err)
}
