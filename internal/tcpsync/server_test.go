package tcpsync

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"portfolio/pkg/models"
)

func TestBroadcastsChangeEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := New("127.0.0.1:0")
	go func() { _ = s.Start(ctx) }()

	conn, err := net.Dial("tcp", s.Addr().String())
	if err != nil {
		t.Fatalf("Failed to dial change feed: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for s.Count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if s.Count() != 1 {
		t.Fatalf("Expected one client, got %d", s.Count())
	}

	s.Publish(models.ChangeEvent{Op: "add", Collection: "guestbook_messages", DocID: "abc", Timestamp: 1})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		t.Fatalf("Failed to read event: %v", err)
	}
	var got models.ChangeEvent
	if err := json.Unmarshal(line, &got); err != nil {
		t.Fatalf("Event is not JSON: %v", err)
	}
	if got.Op != "add" || got.Collection != "guestbook_messages" || got.DocID != "abc" {
		t.Errorf("Unexpected event %+v", got)
	}
}

func TestPublishDropsWhenFull(t *testing.T) {
	s := New("127.0.0.1:0")
	for i := 0; i < cap(s.events)+10; i++ {
		s.Publish(models.ChangeEvent{Op: "set"})
	}
	if len(s.events) != cap(s.events) {
		t.Errorf("Expected a full queue, got %d", len(s.events))
	}
}
