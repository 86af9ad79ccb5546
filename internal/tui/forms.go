package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type field struct {
	label  string
	secret bool
	value  string
}

// form is a small stack of text inputs. Enter on the last input submits.
type form struct {
	title  string
	labels []string
	inputs []textinput.Model
	focus  int
	submit func(values []string) tea.Cmd
}

func newForm(title string, fields []field, submit func([]string) tea.Cmd) *form {
	f := &form{title: title, submit: submit}
	for _, fd := range fields {
		ti := textinput.New()
		ti.Placeholder = fd.label
		ti.CharLimit = 2000
		ti.Width = 60
		ti.SetValue(fd.value)
		if fd.secret {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		f.labels = append(f.labels, fd.label)
		f.inputs = append(f.inputs, ti)
	}
	if len(f.inputs) > 0 {
		f.inputs[0].Focus()
	}
	return f
}

func (f *form) values() []string {
	out := make([]string, len(f.inputs))
	for i, in := range f.inputs {
		out[i] = in.Value()
	}
	return out
}

func (f *form) move(delta int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + len(f.inputs)) % len(f.inputs)
	return f.inputs[f.focus].Focus()
}

// update returns done once the form was submitted or dismissed.
func (f *form) update(msg tea.Msg) (cmd tea.Cmd, done bool) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "esc":
			return nil, true
		case "tab", "down":
			return f.move(1), false
		case "shift+tab", "up":
			return f.move(-1), false
		case "enter":
			if f.focus < len(f.inputs)-1 {
				return f.move(1), false
			}
			return f.submit(f.values()), true
		}
	}
	var c tea.Cmd
	f.inputs[f.focus], c = f.inputs[f.focus].Update(msg)
	return c, false
}

func (f *form) view(st styles) string {
	var b strings.Builder
	b.WriteString(st.title.Render(f.title) + "\n\n")
	for i, in := range f.inputs {
		b.WriteString(st.muted.Render(f.labels[i]) + "\n" + in.View() + "\n\n")
	}
	b.WriteString(st.muted.Render("tab: next field • enter: send • esc: cancel"))
	return b.String()
}
