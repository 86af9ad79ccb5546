package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"time"

	"portfolio/pkg/models"
)

func main() {
	server := "127.0.0.1:7070"
	if len(os.Args) > 1 {
		server = os.Args[1]
	}

	serverAddr, err := net.ResolveUDPAddr("udp", server)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to resolve server:", err)
		os.Exit(1)
	}

	// A random local port both sends SUBSCRIBE and receives the notifications.
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4zero, Port: 0})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to open socket:", err)
		os.Exit(1)
	}
	defer conn.Close()

	if _, err := conn.WriteToUDP([]byte("SUBSCRIBE"), serverAddr); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to subscribe:", err)
		os.Exit(1)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	go func() {
		<-stop
		_, _ = conn.WriteToUDP([]byte("UNSUBSCRIBE"), serverAddr)
		_ = conn.Close()
	}()

	fmt.Println("UDP monitor subscribed to:", server)
	fmt.Println("Local addr:", conn.LocalAddr().String())
	fmt.Println("Waiting for notifications...")

	buf := make([]byte, 4096)
	for {
		n, from, err := conn.ReadFromUDP(buf)
		if errors.Is(err, net.ErrClosed) {
			fmt.Println("Unsubscribed.")
			return
		}
		if err != nil {
			fmt.Println("read error:", err)
			continue
		}
		var note models.Notification
		if err := json.Unmarshal(buf[:n], &note); err != nil {
			fmt.Printf("FROM %s: %s\n", from.String(), string(buf[:n]))
			continue
		}
		fmt.Printf("[%s] %-9s %s\n", time.Unix(note.Timestamp, 0).Format("15:04:05"), note.Type, note.Message)
	}
}
