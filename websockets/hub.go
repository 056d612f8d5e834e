package websockets

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"sysdash/monitoring"
)

// WebSocketMessage is the envelope for every frame sent to clients.
type WebSocketMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub tracks connected clients and broadcasts each collector snapshot to
// all of them.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

// NewHub creates an empty Hub. Run must be started before clients connect.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// registerClient hands c to the hub loop, or reports false when the hub
// has already stopped.
func (h *Hub) registerClient(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// unregisterClient returns c to the hub loop. After shutdown the send has
// no receiver, so the done channel keeps pump goroutines from blocking
// forever.
func (h *Hub) unregisterClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Run processes connections and snapshots until ctx is done. A client whose
// send buffer is full is dropped rather than allowed to stall the others.
func (h *Hub) Run(ctx context.Context, snapshots <-chan monitoring.Snapshot) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			log.Info().Msg("websocket hub stopped")
			return
		case client := <-h.register:
			h.clients[client] = true
			log.Info().Int("clients", len(h.clients)).Msg("websocket client connected")
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				log.Info().Int("clients", len(h.clients)).Msg("websocket client disconnected")
			}
		case snapshot := <-snapshots:
			message, err := json.Marshal(WebSocketMessage{Type: "snapshot", Data: snapshot})
			if err != nil {
				log.Error().Err(err).Msg("failed to marshal snapshot")
				continue
			}
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					delete(h.clients, client)
					close(client.send)
				}
			}
		}
	}
}
