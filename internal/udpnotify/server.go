// Package udpnotify pushes short notifications (new contact message, new guestbook
// entry, admin notices) to subscribed UDP monitors.
package udpnotify

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"portfolio/pkg/models"
)

const (
	TypeContact   = "contact"
	TypeGuestbook = "guestbook"
	TypeNotice    = "notice"
)

// Server keeps the subscriber registry. Monitors send "SUBSCRIBE" or "UNSUBSCRIBE".
type Server struct {
	addr string

	mu      sync.Mutex
	clients map[string]*net.UDPAddr // key = ip:port

	conn  *net.UDPConn
	ready chan struct{}
}

func New(addr string) *Server {
	return &Server{
		addr:    addr,
		clients: make(map[string]*net.UDPAddr),
		ready:   make(chan struct{}),
	}
}

// Addr is the bound address once Start is listening.
func (s *Server) Addr() net.Addr {
	<-s.ready
	return s.conn.LocalAddr()
}

func (s *Server) Start(ctx context.Context) error {
	udpAddr, err := net.ResolveUDPAddr("udp", s.addr)
	if err != nil {
		return err
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	close(s.ready)
	log.Infof("UDP notify listening on %s", conn.LocalAddr())

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	buf := make([]byte, 2048)
	for {
		n, clientAddr, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			log.WithError(err).Warn("UDP read failed")
			continue
		}

		switch strings.ToUpper(strings.TrimSpace(string(buf[:n]))) {
		case "SUBSCRIBE":
			s.mu.Lock()
			s.clients[clientAddr.String()] = clientAddr
			s.mu.Unlock()
			log.Infof("UDP subscribed: %s (total=%d)", clientAddr, s.Count())
		case "UNSUBSCRIBE":
			s.mu.Lock()
			delete(s.clients, clientAddr.String())
			s.mu.Unlock()
			log.Infof("UDP unsubscribed: %s (total=%d)", clientAddr, s.Count())
		}
	}
}

func (s *Server) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Notify sends one notification to every subscriber. Before Start it only logs.
func (s *Server) Notify(typ, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		log.Warn("UDP notify not started yet")
		return
	}

	b, err := json.Marshal(models.Notification{Type: typ, Message: message, Timestamp: time.Now().Unix()})
	if err != nil {
		log.WithError(err).Error("Failed to marshal notification")
		return
	}
	for key, addr := range s.clients {
		if _, err := s.conn.WriteToUDP(b, addr); err != nil {
			log.WithError(err).Warnf("UDP send to %s failed", key)
		}
	}
}
