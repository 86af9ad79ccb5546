// Package websocket streams live frames to browsers: view-model updates, collection
// snapshots and admin notices.
package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"portfolio/pkg/models"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	writeWait  = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Source feeds one connection. It starts pushing frames through send and keeps going
// until ctx ends; c is only valid during the call. A returned error is reported to the
// browser as an error frame.
type Source func(ctx context.Context, c *gin.Context, send func(models.Frame)) error

type client struct {
	name string
	conn *websocket.Conn
	send chan []byte
	once sync.Once
	done chan struct{}
}

func (c *client) offer(data []byte) bool {
	select {
	case <-c.done:
		return true
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	c.once.Do(func() { close(c.done) })
}

// Serve upgrades the request and runs source on the new connection.
func Serve(hub *Hub, source Source) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.WithError(err).Warn("Websocket upgrade failed")
			return
		}

		cl := &client{
			name: c.Request.URL.Path,
			conn: conn,
			send: make(chan []byte, 256),
			done: make(chan struct{}),
		}
		if !hub.add(cl) {
			_ = conn.Close()
			return
		}
		ctx, cancel := context.WithCancel(context.Background())

		push := func(f models.Frame) {
			data, err := json.Marshal(f)
			if err != nil {
				log.WithError(err).Error("Failed to marshal frame")
				return
			}
			if !cl.offer(data) {
				cl.close()
			}
		}
		if err := source(ctx, c, push); err != nil {
			push(models.Frame{Type: "error", Error: err.Error()})
		}

		go func() {
			<-cl.done
			cancel()
		}()
		go cl.writePump()
		go func() {
			cl.readPump()
			hub.remove(cl)
		}()
	}
}

// readPump only keeps the connection alive; browsers do not send frames.
func (c *client) readPump() {
	defer c.close()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.WithError(err).Warn("Websocket read failed")
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		}
	}
}
