package tui

import (
	"github.com/charmbracelet/lipgloss"

	"portfolio/internal/prefs"
)

type styles struct {
	doc     lipgloss.Style
	title   lipgloss.Style
	active  lipgloss.Style
	tab     lipgloss.Style
	body    lipgloss.Style
	muted   lipgloss.Style
	err     lipgloss.Style
	ok      lipgloss.Style
	overlay lipgloss.Style
}

func themeStyles(t prefs.Theme) styles {
	fg, accent, dim := "#EEEEEE", "#00FFFF", "#888888"
	if t == prefs.Light {
		fg, accent, dim = "#1A1A1A", "#005F87", "#6C6C6C"
	}
	return styles{
		doc:     lipgloss.NewStyle().Margin(1, 2),
		title:   lipgloss.NewStyle().Foreground(lipgloss.Color(accent)).Bold(true),
		active:  lipgloss.NewStyle().Foreground(lipgloss.Color(accent)).Bold(true).Underline(true),
		tab:     lipgloss.NewStyle().Foreground(lipgloss.Color(dim)),
		body:    lipgloss.NewStyle().Foreground(lipgloss.Color(fg)),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color(dim)),
		err:     lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true),
		ok:      lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")),
		overlay: lipgloss.NewStyle().Foreground(lipgloss.Color(accent)).Italic(true),
	}
}
