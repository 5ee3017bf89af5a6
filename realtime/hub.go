// Package realtime pushes room activity to websocket clients.
package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"gridiron/events"
	"gridiron/metrics"

	log "github.com/sirupsen/logrus"
)

// Message is the frame written to clients
type Message struct {
	Type events.EventType `json:"type"`
	Data events.Event     `json:"data"`
}

// Hub lazily creates one RoomHub per room and stops it when the last
// watcher leaves
type Hub struct {
	mu     sync.RWMutex
	rooms  map[int64]*RoomHub
	closed bool
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[int64]*RoomHub)}
}

// acquire returns the room's hub, starting it on first use, and counts the
// caller as a watcher until release
func (h *Hub) acquire(roomID int64) *RoomHub {
	h.mu.Lock()
	defer h.mu.Unlock()

	room := h.rooms[roomID]
	if room == nil {
		room = newRoomHub(roomID)
		if h.closed {
			close(room.quit)
		} else {
			h.rooms[roomID] = room
			go room.run()
		}
	}
	room.watchers++
	return room
}

// release drops a watcher and stops the room's hub once nobody is left
func (h *Hub) release(room *RoomHub) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room.watchers--
	if room.watchers > 0 || h.rooms[room.roomID] != room {
		return
	}
	delete(h.rooms, room.roomID)
	if !h.closed {
		close(room.quit)
	}
	log.WithField("roomID", room.roomID).Debug("Room hub stopped")
}

// ActiveRooms returns the number of rooms with a running hub
func (h *Hub) ActiveRooms() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// Online returns the number of clients watching a room
func (h *Hub) Online(roomID int64) int {
	h.mu.RLock()
	room := h.rooms[roomID]
	h.mu.RUnlock()
	if room == nil {
		return 0
	}
	return room.Online()
}

// Broadcast sends an event to every client of a room that has watchers.
// Rooms nobody watches are skipped.
func (h *Hub) Broadcast(roomID int64, event events.Event) {
	h.mu.RLock()
	room := h.rooms[roomID]
	h.mu.RUnlock()
	if room == nil || room.Online() == 0 {
		return
	}

	payload, err := json.Marshal(Message{Type: event.Type(), Data: event})
	if err != nil {
		log.WithError(err).WithField("eventType", event.Type()).Error("Failed to encode room event")
		return
	}

	select {
	case room.broadcast <- payload:
	default:
		log.WithField("roomID", roomID).Warn("Room broadcast queue full, dropping event")
	}
}

// Close stops every room hub and disconnects their clients
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for _, room := range h.rooms {
		close(room.quit)
	}
}

// Subscriber is the part of the event bus the hub listens on
type Subscriber interface {
	Subscribe(eventType events.EventType, handler events.Handler)
}

// SubscribeToBus forwards room scoped events to the room's clients
func (h *Hub) SubscribeToBus(bus Subscriber) {
	bus.Subscribe(events.EventTypeQuestionCreated, func(_ context.Context, e events.Event) {
		if created, ok := e.(events.QuestionCreatedEvent); ok && created.RoomID != nil {
			h.Broadcast(*created.RoomID, created)
		}
	})
	bus.Subscribe(events.EventTypeQuestionResolved, func(_ context.Context, e events.Event) {
		if resolved, ok := e.(events.QuestionResolvedEvent); ok && resolved.RoomID != nil {
			h.Broadcast(*resolved.RoomID, resolved)
		}
	})
	bus.Subscribe(events.EventTypeBetPlaced, func(_ context.Context, e events.Event) {
		if placed, ok := e.(events.BetPlacedEvent); ok && placed.RoomID != nil {
			h.Broadcast(*placed.RoomID, placed)
		}
	})
	bus.Subscribe(events.EventTypeRoomMembership, func(_ context.Context, e events.Event) {
		if membership, ok := e.(events.RoomMembershipEvent); ok {
			h.Broadcast(membership.RoomID, membership)
		}
	})
	bus.Subscribe(events.EventTypeTimerStateChange, func(_ context.Context, e events.Event) {
		if changed, ok := e.(events.TimerStateChangeEvent); ok {
			h.Broadcast(changed.RoomID, changed)
		}
	})
}

// RoomHub owns the clients of one room. All client bookkeeping happens on
// the run goroutine; watchers is guarded by the Hub's mutex.
type RoomHub struct {
	roomID     int64
	watchers   int
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	quit       chan struct{}
	online     int32
}

func newRoomHub(roomID int64) *RoomHub {
	return &RoomHub{
		roomID:     roomID,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		quit:       make(chan struct{}),
	}
}

func (rh *RoomHub) run() {
	for {
		select {
		case c := <-rh.register:
			rh.clients[c] = true
			rh.updateOnline()
			metrics.WsConnections.Inc()
		case c := <-rh.unregister:
			if _, ok := rh.clients[c]; ok {
				rh.drop(c)
			}
		case msg := <-rh.broadcast:
			for c := range rh.clients {
				select {
				case c.send <- msg:
				default:
					// Slow consumer
					rh.drop(c)
				}
			}
		case <-rh.quit:
			for c := range rh.clients {
				rh.drop(c)
			}
			return
		}
	}
}

func (rh *RoomHub) drop(c *Client) {
	delete(rh.clients, c)
	close(c.send)
	rh.updateOnline()
	metrics.WsConnections.Dec()
}

func (rh *RoomHub) updateOnline() {
	atomic.StoreInt32(&rh.online, int32(len(rh.clients)))
}

// Online returns the number of connected clients
func (rh *RoomHub) Online() int {
	return int(atomic.LoadInt32(&rh.online))
}
