package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"portfolio/pkg/models"
)

// keep is how many events stay on screen.
const keep = 200

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FFFF")).Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true)
	opStyles   = map[string]lipgloss.Style{
		"add":       lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")),
		"delete":    lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F")),
		"increment": lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
	}
)

type eventMsg models.ChangeEvent

type closedMsg struct{ err error }

type model struct {
	addr   string
	events []models.ChangeEvent
	counts map[string]int
	closed error
	height int
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "c":
			m.events, m.counts = nil, map[string]int{}
		}
	case eventMsg:
		m.events = append(m.events, models.ChangeEvent(msg))
		if len(m.events) > keep {
			m.events = m.events[len(m.events)-keep:]
		}
		m.counts[msg.Collection]++
	case closedMsg:
		m.closed = msg.err
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Change feed "+m.addr) + "\n\n")

	rows := m.height - 8
	if rows < 5 {
		rows = 20
	}
	start := 0
	if len(m.events) > rows {
		start = len(m.events) - rows
	}
	for _, e := range m.events[start:] {
		op := fmt.Sprintf("%-9s", e.Op)
		if st, ok := opStyles[e.Op]; ok {
			op = st.Render(op)
		}
		fmt.Fprintf(&b, "%s %s %s/%s\n",
			mutedStyle.Render(time.Unix(e.Timestamp, 0).Format("15:04:05")), op, e.Collection, e.DocID)
	}
	if len(m.events) == 0 {
		b.WriteString(mutedStyle.Render("Waiting for writes...") + "\n")
	}

	if len(m.counts) > 0 {
		parts := make([]string, 0, len(m.counts))
		for c, n := range m.counts {
			parts = append(parts, fmt.Sprintf("%s=%d", c, n))
		}
		b.WriteString("\n" + mutedStyle.Render(strings.Join(parts, "  ")) + "\n")
	}
	if m.closed != nil {
		b.WriteString("\n" + errorStyle.Render("Disconnected: "+m.closed.Error()) + "\n")
	}
	b.WriteString("\n" + mutedStyle.Render("c: clear • q: quit"))
	return lipgloss.NewStyle().Margin(1, 2).Render(b.String())
}

func main() {
	addr := "127.0.0.1:9090"
	if len(os.Args) > 1 {
		addr = os.Args[1]
	}

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to connect to change feed:", err)
		os.Exit(1)
	}
	defer conn.Close()

	p := tea.NewProgram(model{addr: addr, counts: map[string]int{}}, tea.WithAltScreen())
	go func() {
		sc := bufio.NewScanner(conn)
		for sc.Scan() {
			var evt models.ChangeEvent
			if err := json.Unmarshal(sc.Bytes(), &evt); err != nil {
				continue
			}
			p.Send(eventMsg(evt))
		}
		err := sc.Err()
		if err == nil {
			err = fmt.Errorf("server closed the connection")
		}
		p.Send(closedMsg{err})
	}()
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		os.Exit(1)
	}
}
