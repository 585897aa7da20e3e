package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"taskhive/models"

	"go.uber.org/zap"
)

// Hub tracks which local sockets are in which room and fans events out to
// them, through the Bus when one is configured.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[*Client]struct{}
	bus    Bus
	sinks  []Sink
	logger *zap.Logger
}

// NewHub creates a Hub. bus may be nil, in which case delivery is local only.
func NewHub(logger *zap.Logger, bus Bus, sinks ...Sink) *Hub {
	return &Hub{
		rooms:  make(map[string]map[*Client]struct{}),
		bus:    bus,
		sinks:  sinks,
		logger: logger,
	}
}

// Run consumes the bus until ctx is cancelled. Without a bus it returns at once.
func (h *Hub) Run(ctx context.Context) error {
	if h.bus == nil {
		return nil
	}
	return h.bus.Subscribe(ctx, h.deliverLocal)
}

// Join adds client to room.
func (h *Hub) Join(room string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[client] = struct{}{}
}

// Leave removes client from every room.
func (h *Hub) Leave(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for room, members := range h.rooms {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// RoomSize returns the number of local sockets in room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Emit implements Publisher.
func (h *Hub) Emit(ctx context.Context, room, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", event, err)
	}
	env := models.Envelope{Event: event, Room: room, Data: data}

	var emitErr error
	if h.bus != nil {
		if err := h.bus.Publish(ctx, env); err != nil {
			emitErr = fmt.Errorf("failed to publish %s to %s: %w", event, room, err)
		}
	} else {
		h.deliverLocal(env)
	}

	for _, sink := range h.sinks {
		if err := sink.Deliver(ctx, env); err != nil {
			h.logger.Warn("notification sink failed",
				zap.String("sink", sink.Name()),
				zap.String("event", event),
				zap.String("room", room),
				zap.Error(err))
		}
	}
	return emitErr
}

func (h *Hub) deliverLocal(env models.Envelope) {
	frame, err := json.Marshal(env)
	if err != nil {
		h.logger.Error("failed to encode frame", zap.Error(err))
		return
	}

	h.mu.RLock()
	members := make([]*Client, 0, len(h.rooms[env.Room]))
	for c := range h.rooms[env.Room] {
		members = append(members, c)
	}
	h.mu.RUnlock()

	for _, c := range members {
		if !c.enqueue(frame) {
			h.logger.Warn("dropping slow socket", zap.String("room", env.Room), zap.String("user", c.actor.ID))
			h.Leave(c)
			c.close()
		}
	}
}
