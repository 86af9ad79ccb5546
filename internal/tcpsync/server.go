// Package tcpsync broadcasts every committed store write to TCP clients as
// newline-delimited JSON ChangeEvents.
package tcpsync

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net"
	"sync"

	log "github.com/sirupsen/logrus"

	"portfolio/pkg/models"
)

// Server fans ChangeEvents out to every connected client.
type Server struct {
	addr string

	mu      sync.Mutex
	clients map[net.Conn]struct{}
	ln      net.Listener
	ready   chan struct{}

	events chan models.ChangeEvent
}

func New(addr string) *Server {
	return &Server{
		addr:    addr,
		clients: make(map[net.Conn]struct{}),
		ready:   make(chan struct{}),
		events:  make(chan models.ChangeEvent, 100),
	}
}

// Publish queues evt for broadcast. It never blocks writers: when the queue is full the
// event is dropped.
func (s *Server) Publish(evt models.ChangeEvent) {
	select {
	case s.events <- evt:
	default:
		log.WithField("collection", evt.Collection).Warn("TCP change feed full, drop event")
	}
}

// Addr is the bound address once Start is listening.
func (s *Server) Addr() net.Addr {
	<-s.ready
	return s.ln.Addr()
}

func (s *Server) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Start listens and serves until ctx ends.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.ln = ln
	close(s.ready)
	log.Infof("TCP change feed listening on %s", ln.Addr())

	go s.broadcastLoop(ctx)
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				s.closeAll()
				return nil
			}
			log.WithError(err).Warn("TCP accept failed")
			continue
		}
		s.addClient(conn)
		log.WithField("remote", conn.RemoteAddr().String()).Info("TCP client connected")

		go s.readLoop(conn)
	}
}

func (s *Server) addClient(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[conn] = struct{}{}
}

func (s *Server) removeClient(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, conn)
	_ = conn.Close()
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		_ = conn.Close()
		delete(s.clients, conn)
	}
}

// readLoop only detects the disconnect; clients never send anything meaningful.
func (s *Server) readLoop(conn net.Conn) {
	sc := bufio.NewScanner(conn)
	for sc.Scan() {
	}
	s.removeClient(conn)
	log.WithField("remote", conn.RemoteAddr().String()).Info("TCP client disconnected")
}

func (s *Server) broadcastLoop(ctx context.Context) {
	for {
		var evt models.ChangeEvent
		select {
		case <-ctx.Done():
			return
		case evt = <-s.events:
		}
		b, err := json.Marshal(evt)
		if err != nil {
			log.WithError(err).Error("Failed to marshal change event")
			continue
		}
		b = append(b, '\n')

		s.mu.Lock()
		for conn := range s.clients {
			if _, err := conn.Write(b); err != nil {
				delete(s.clients, conn)
				_ = conn.Close()
			}
		}
		s.mu.Unlock()
	}
}
