package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gridiron/events"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBus struct {
	handlers map[events.EventType][]events.Handler
}

func (b *syncBus) Subscribe(eventType events.EventType, handler events.Handler) {
	if b.handlers == nil {
		b.handlers = make(map[events.EventType][]events.Handler)
	}
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

func (b *syncBus) emit(e events.Event) {
	for _, h := range b.handlers[e.Type()] {
		h(context.Background(), e)
	}
}

func dial(t *testing.T, hub *Hub, roomID int64) *websocket.Conn {
	t.Helper()
	return dialAs(t, hub, roomID, "alice", 1)
}

// dialAs connects a client and waits until the room counts online watchers
func dialAs(t *testing.T, hub *Hub, roomID int64, username string, online int) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Serve(w, r, roomID, username)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, func() bool { return hub.Online(roomID) == online }, time.Second, time.Millisecond)
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg map[string]any
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHub_OnlineUnknownRoom(t *testing.T) {
	hub := NewHub()
	assert.Equal(t, 0, hub.Online(999))
}

func TestHub_BroadcastReachesRoomClients(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	conn := dial(t, hub, 3)

	hub.Broadcast(3, events.TimerStateChangeEvent{RoomID: 3, GameID: 401, Running: true})

	msg := readMessage(t, conn)
	assert.Equal(t, string(events.EventTypeTimerStateChange), msg["type"])
	data := msg["data"].(map[string]any)
	assert.Equal(t, true, data["running"])
	assert.Equal(t, float64(401), data["game_id"])
}

func TestHub_SubscribeToBusRoutesByRoom(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	bus := &syncBus{}
	hub.SubscribeToBus(bus)

	conn := dial(t, hub, 1)

	other := int64(2)
	bus.emit(events.QuestionCreatedEvent{QuestionID: 10, RoomID: &other, Prompt: "elsewhere"})
	// Questions without a room are not streamed
	bus.emit(events.QuestionCreatedEvent{QuestionID: 11, Prompt: "no room"})

	room := int64(1)
	bus.emit(events.QuestionCreatedEvent{QuestionID: 12, RoomID: &room, Prompt: "Who scores next?", Options: []string{"A", "B", "C", "D"}})

	msg := readMessage(t, conn)
	assert.Equal(t, string(events.EventTypeQuestionCreated), msg["type"])
	data := msg["data"].(map[string]any)
	assert.Equal(t, float64(12), data["question_id"])
	assert.Equal(t, "Who scores next?", data["question"])
}

func TestHub_DisconnectUnregisters(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	conn := dial(t, hub, 5)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.Online(5) == 0 }, 2*time.Second, 5*time.Millisecond)
}

func TestHub_LastDisconnectStopsRoomHub(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	first := dial(t, hub, 6)
	second := dialAs(t, hub, 6, "bob", 2)
	assert.Equal(t, 1, hub.ActiveRooms())

	hub.mu.RLock()
	room := hub.rooms[6]
	hub.mu.RUnlock()
	require.NotNil(t, room)

	require.NoError(t, first.Close())
	require.Eventually(t, func() bool { return hub.Online(6) == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, hub.ActiveRooms())

	require.NoError(t, second.Close())
	require.Eventually(t, func() bool { return hub.ActiveRooms() == 0 }, 2*time.Second, 5*time.Millisecond)
	select {
	case <-room.quit:
	default:
		t.Fatal("evicted room hub is still running")
	}

	// A new watcher gets a fresh hub
	conn := dial(t, hub, 6)
	assert.Equal(t, 1, hub.ActiveRooms())
	hub.Broadcast(6, events.TimerStateChangeEvent{RoomID: 6, Running: true})
	assert.Equal(t, string(events.EventTypeTimerStateChange), readMessage(t, conn)["type"])
}

func TestHub_CloseDisconnectsClients(t *testing.T) {
	hub := NewHub()
	conn := dial(t, hub, 8)

	hub.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
	assert.Eventually(t, func() bool { return hub.Online(8) == 0 }, time.Second, time.Millisecond)
}
