// Package hub tracks live connections and fans events out to them. It is the
// publisher side of the protocol: room snapshots, lobby updates and targeted
// notifications all leave the process through here.
package hub

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/harkirat155/tictac-realtime/pkg/types"
)

// Sender is a live client connection. Send must not block: it reports false
// when the client cannot keep up, and the transport tears the client down.
type Sender interface {
	ConnID() string
	Send(env types.Envelope) bool
}

type Hub struct {
	mu      sync.RWMutex
	clients map[string]Sender
	logger  *zap.Logger
}

func New(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[string]Sender),
		logger:  logger,
	}
}

func (h *Hub) Register(c Sender) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ConnID()] = c
}

func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, connID)
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// SendTo delivers one event to one connection. Unknown connections are a
// no-op; broadcasts routinely race with disconnects.
func (h *Hub) SendTo(connID, event string, data any) {
	env, err := envelope(event, data)
	if err != nil {
		h.logger.Error("encode event", zap.String("event", event), zap.Error(err))
		return
	}
	h.mu.RLock()
	c := h.clients[connID]
	h.mu.RUnlock()
	if c == nil {
		return
	}
	if !c.Send(env) {
		h.logger.Warn("dropping slow client", zap.String("conn", connID), zap.String("event", event))
	}
}

// SendToMany delivers one event to each listed connection.
func (h *Hub) SendToMany(connIDs []string, event string, data any) {
	env, err := envelope(event, data)
	if err != nil {
		h.logger.Error("encode event", zap.String("event", event), zap.Error(err))
		return
	}
	h.mu.RLock()
	targets := make([]Sender, 0, len(connIDs))
	for _, id := range connIDs {
		if c := h.clients[id]; c != nil {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()
	for _, c := range targets {
		if !c.Send(env) {
			h.logger.Warn("dropping slow client", zap.String("conn", c.ConnID()), zap.String("event", event))
		}
	}
}

// SendToAll delivers one event to every live connection (lobbyUpdate style).
func (h *Hub) SendToAll(event string, data any) {
	env, err := envelope(event, data)
	if err != nil {
		h.logger.Error("encode event", zap.String("event", event), zap.Error(err))
		return
	}
	h.mu.RLock()
	targets := make([]Sender, 0, len(h.clients))
	for _, c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()
	for _, c := range targets {
		if !c.Send(env) {
			h.logger.Warn("dropping slow client", zap.String("conn", c.ConnID()), zap.String("event", event))
		}
	}
}

func envelope(event string, data any) (types.Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return types.Envelope{}, err
	}
	return types.Envelope{Event: event, Data: raw}, nil
}
