package websocket

import (
	"context"
	"encoding/json"
	"sync"

	log "github.com/sirupsen/logrus"

	"portfolio/pkg/models"
)

// Hub tracks every open stream so that admin notices reach all of them.
type Hub struct {
	mu         sync.Mutex
	clients    map[*client]struct{}
	broadcast  chan models.Frame
	register   chan *client
	unregister chan *client
	stopped    chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*client]struct{}),
		broadcast:  make(chan models.Frame, 16),
		register:   make(chan *client),
		unregister: make(chan *client),
		stopped:    make(chan struct{}),
	}
}

// Run handles registration and broadcasting until ctx ends.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.stopped)
			h.mu.Lock()
			for c := range h.clients {
				c.close()
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			h.mu.Unlock()
			log.WithField("stream", c.name).Debug("Websocket client connected")

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				c.close()
				log.WithField("stream", c.name).Debug("Websocket client disconnected")
			}
			h.mu.Unlock()

		case frame := <-h.broadcast:
			data, err := json.Marshal(frame)
			if err != nil {
				log.WithError(err).Error("Failed to marshal frame")
				continue
			}
			h.mu.Lock()
			for c := range h.clients {
				if !c.offer(data) {
					log.WithField("stream", c.name).Warn("Websocket send channel full, removing")
					delete(h.clients, c)
					c.close()
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) add(c *client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.stopped:
		return false
	}
}

func (h *Hub) remove(c *client) {
	select {
	case h.unregister <- c:
	case <-h.stopped:
	}
}

// Broadcast sends a frame to every stream. It drops the frame when the hub is backed up.
func (h *Hub) Broadcast(f models.Frame) {
	select {
	case h.broadcast <- f:
	default:
		log.Warn("Websocket broadcast queue full, drop frame")
	}
}

func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
