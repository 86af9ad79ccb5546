// Package tui is the terminal rendition of the site: every page, the chat window and
// the admin dashboard, driven by the shell.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"

	"portfolio/internal/admin"
	"portfolio/internal/chat"
	"portfolio/internal/nav"
	"portfolio/internal/render"
	"portfolio/internal/session"
	"portfolio/internal/shell"
	"portfolio/internal/viewmodel"
)

// sendTimeout bounds how long a form waits for its view-model to report back.
const sendTimeout = 30 * time.Second

type refreshMsg struct{}

type tickMsg time.Time

// resultMsg is the outcome of a blocking command run off the update loop.
type resultMsg struct {
	notice string
	err    string
	then   shell.Action
}

type Config struct {
	Shell   *shell.Shell
	Session *session.Machine
	Chat    chat.Completer
	Surface *Surface
	Now     func() time.Time
}

type Model struct {
	ctx    context.Context
	cfg    Config
	redraw func()

	form     *form
	conv     *chat.Conversation
	input    textinput.Model
	chatting bool
	prompt   int

	watched shell.View
	cursor  int
	scrolls int
	confirm string
	notice  string
	err     string
	width   int
}

func New(ctx context.Context, cfg Config) *Model {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Surface == nil {
		cfg.Surface = NewSurface()
	}
	if cfg.Chat == nil {
		cfg.Chat = chat.NewClient("", "", "")
	}
	in := textinput.New()
	in.Placeholder = "Ketik pesan..."
	in.CharLimit = 500
	in.Width = 60
	return &Model{ctx: ctx, cfg: cfg, input: in, redraw: func() {}}
}

// Attach makes every shell, page and chat change ask for a redraw.
func (m *Model) Attach(redraw func()) {
	m.redraw = redraw
	m.cfg.Shell.OnChange(func(shell.Context) { redraw() })
	if f := m.cfg.Shell.Footer(); f != nil {
		f.OnChange(func(viewmodel.StatsView) { redraw() })
	}
	m.watch()
}

// watch subscribes to the mounted view the first time it is seen.
func (m *Model) watch() {
	v, _ := m.cfg.Shell.View()
	if v == m.watched {
		return
	}
	m.watched, m.cursor, m.confirm = v, 0, ""
	redraw := m.redraw
	switch x := v.(type) {
	case *viewmodel.Home:
		x.OnChange(func(viewmodel.HomeView) { redraw() })
	case *viewmodel.About:
		x.OnChange(func(viewmodel.AboutView) { redraw() })
	case *viewmodel.Projects:
		x.OnChange(func(viewmodel.ProjectsView) { redraw() })
	case *viewmodel.Certificates:
		x.OnChange(func(viewmodel.CertificatesView) { redraw() })
	case *viewmodel.Blog:
		x.OnChange(func(viewmodel.BlogView) { redraw() })
	case *viewmodel.Guestbook:
		x.OnChange(func(viewmodel.GuestbookView) { redraw() })
	case *viewmodel.Contact:
		x.OnChange(func(viewmodel.ContactView) { redraw() })
	case shell.AdminView:
		x.OnChange(func(admin.View) { redraw() })
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) Init() tea.Cmd { return tick() }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tickMsg:
		m.sync()
		return m, tick()
	case refreshMsg:
		m.sync()
		return m, nil
	case resultMsg:
		m.notice, m.err = msg.notice, msg.err
		if msg.then != nil {
			m.cfg.Shell.Dispatch(msg.then)
		}
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch {
		case m.form != nil:
			cmd, done := m.form.update(msg)
			if done {
				m.form = nil
			}
			return m, cmd
		case m.chatting:
			return m.updateChat(msg)
		}
		return m.updateBrowse(msg)
	}
	if m.chatting {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) sync() {
	m.watch()
	if n := m.cfg.Surface.Scrolls(); n != m.scrolls {
		m.scrolls, m.cursor = n, 0
	}
}

func (m *Model) updateBrowse(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := k.String()
	if m.confirm != "" {
		id := m.confirm
		m.confirm, m.notice = "", ""
		if key == "y" {
			return m, m.deleteCmd(id)
		}
		return m, nil
	}
	app := m.cfg.Shell.App()
	m.err = ""
	switch key {
	case "q":
		return m, tea.Quit
	case "right", "tab":
		m.step(app.Page, 1)
	case "left", "shift+tab":
		m.step(app.Page, -1)
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		if pages := nav.Pages(); int(key[0]-'1') < len(pages) {
			m.cfg.Shell.Dispatch(shell.Navigate{Page: pages[key[0]-'1']})
		}
	case "a":
		m.cfg.Shell.Dispatch(shell.Navigate{Page: nav.Admin})
	case "l":
		m.cfg.Shell.Dispatch(shell.ToggleLang{})
		if m.conv != nil {
			m.conv.SetLang(app.Lang.Toggle())
		}
	case "t":
		m.cfg.Shell.Dispatch(shell.ToggleTheme{})
	case "r":
		m.cfg.Shell.Dispatch(shell.Reload{})
	case "c":
		return m, m.openChat(app)
	case "o":
		return m, m.logoutCmd()
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < m.listLen()-1 {
			m.cursor++
		}
	}
	return m, m.pageKey(app, key)
}

// pageKey handles the keys that belong to the mounted page.
func (m *Model) pageKey(app shell.Context, key string) tea.Cmd {
	v, _ := m.cfg.Shell.View()
	switch x := v.(type) {
	case *viewmodel.Projects:
		if key == "[" || key == "]" {
			x.SetCategory(cycle(x.Current().Categories, x.Current().Category, key))
		}
	case *viewmodel.Blog:
		cur := x.Current()
		switch {
		case key == "enter" && cur.Selected == nil && m.cursor < len(cur.Articles):
			x.Select(cur.Articles[m.cursor].ID)
		case key == "esc":
			x.Select("")
		}
	case *viewmodel.Guestbook:
		if key == "enter" {
			m.form = guestbookForm(x, app)
		}
	case *viewmodel.Contact:
		if key == "enter" {
			m.form = contactForm(x, app)
		}
	case shell.AdminView:
		return m.adminKey(x, key)
	case nil:
		if app.Page != nav.Login {
			return nil
		}
		switch key {
		case "enter":
			m.form = m.loginForm()
		case "g":
			return m.federatedCmd()
		}
	}
	return nil
}

func (m *Model) adminKey(a shell.AdminView, key string) tea.Cmd {
	cur := a.Current()
	switch key {
	case "[", "]":
		tabs := make([]string, 0, len(admin.Tabs()))
		for _, t := range admin.Tabs() {
			tabs = append(tabs, string(t))
		}
		if err := a.SetTab(admin.Tab(cycle(tabs, string(cur.Tab), key))); err != nil {
			m.err = err.Error()
		}
		m.cursor = 0
	case "d":
		if m.cursor < len(cur.Items) {
			m.confirm = cur.Items[m.cursor].ID
			m.notice = admin.DeletePrompt + " (y/n)"
		}
	case "R":
		if cur.Tab == admin.TabGuestbook && m.cursor < len(cur.Items) {
			m.form = m.replyForm(a, cur.Items[m.cursor])
		}
	}
	return nil
}

func (m *Model) listLen() int {
	v, _ := m.cfg.Shell.View()
	switch x := v.(type) {
	case *viewmodel.Blog:
		return len(x.Current().Articles)
	case shell.AdminView:
		return len(x.Current().Items)
	}
	return 0
}

func (m *Model) step(cur nav.Page, delta int) {
	pages := nav.Pages()
	i := 0
	for j, p := range pages {
		if p == cur {
			i = j
		}
	}
	next := pages[(i+delta+len(pages))%len(pages)]
	m.cfg.Shell.Dispatch(shell.Navigate{Page: next})
}

// cycle moves from cur to its neighbour in options; "[" goes back, "]" forward.
func cycle(options []string, cur, key string) string {
	if len(options) == 0 {
		return cur
	}
	i := 0
	for j, o := range options {
		if o == cur {
			i = j
		}
	}
	if key == "[" {
		return options[(i-1+len(options))%len(options)]
	}
	return options[(i+1)%len(options)]
}

func (m *Model) openChat(app shell.Context) tea.Cmd {
	if m.conv == nil {
		m.conv = chat.NewConversation(m.ctx, m.cfg.Chat, app.Lang)
		redraw := m.redraw
		m.conv.OnChange(func(chat.ConversationView) { redraw() })
	}
	m.chatting = true
	return m.input.Focus()
}

func (m *Model) updateChat(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch k.String() {
	case "esc":
		m.chatting = false
		m.input.Blur()
		return m, nil
	case "enter":
		text := m.input.Value()
		m.input.SetValue("")
		m.conv.Send(text)
		return m, nil
	case "up":
		prompts := m.conv.Current().QuickPrompts
		if len(prompts) > 0 {
			m.input.SetValue(prompts[m.prompt%len(prompts)])
			m.input.CursorEnd()
			m.prompt++
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(k)
	return m, cmd
}

func (m *Model) loginForm() *form {
	return newForm("Admin Login", []field{{label: "Email"}, {label: "Password", secret: true}},
		func(v []string) tea.Cmd {
			return func() tea.Msg {
				if err := m.cfg.Session.SignInWithPassword(m.ctx, strings.TrimSpace(v[0]), v[1]); err != nil {
					return resultMsg{err: session.Message(err)}
				}
				return resultMsg{notice: "Login berhasil!", then: shell.Navigate{Page: nav.Admin}}
			}
		})
}

func (m *Model) federatedCmd() tea.Cmd {
	return func() tea.Msg {
		if err := m.cfg.Session.SignInFederated(m.ctx); err != nil {
			return resultMsg{err: session.Message(err)}
		}
		return resultMsg{notice: "Login berhasil!", then: shell.Navigate{Page: nav.Admin}}
	}
}

func (m *Model) logoutCmd() tea.Cmd {
	return func() tea.Msg {
		if err := m.cfg.Session.Logout(m.ctx); err != nil {
			log.WithError(err).Warn("Failed to sign out")
			return resultMsg{err: err.Error()}
		}
		return resultMsg{notice: "Logout", then: shell.Navigate{Page: nav.Home}}
	}
}

func (m *Model) deleteCmd(id string) tea.Cmd {
	v, _ := m.cfg.Shell.View()
	a, ok := v.(shell.AdminView)
	if !ok {
		return nil
	}
	return func() tea.Msg {
		if err := a.Delete(m.ctx, id, admin.Always); err != nil {
			return resultMsg{err: admin.DeleteFailed}
		}
		return resultMsg{}
	}
}

func (m *Model) replyForm(a shell.AdminView, it admin.Item) *form {
	return newForm("Balas: "+it.Label, []field{{label: "Balasan"}}, func(v []string) tea.Cmd {
		return func() tea.Msg {
			if err := a.Reply(m.ctx, it.ID, v[0]); err != nil {
				return resultMsg{err: err.Error()}
			}
			return resultMsg{}
		}
	})
}

// awaitSend runs a view-model send and blocks the command until its done callback fires.
func awaitSend(send func(done func(error)), ok string) tea.Cmd {
	return func() tea.Msg {
		ch := make(chan error, 1)
		send(func(err error) { ch <- err })
		select {
		case err := <-ch:
			if err != nil {
				return resultMsg{err: err.Error()}
			}
			return resultMsg{notice: ok}
		case <-time.After(sendTimeout):
			return resultMsg{err: "timeout"}
		}
	}
}

func guestbookForm(g *viewmodel.Guestbook, app shell.Context) *form {
	return newForm("Guestbook", []field{{label: pick(app.Lang, "Nama", "Name")}, {label: pick(app.Lang, "Pesan", "Message")}},
		func(v []string) tea.Cmd {
			return awaitSend(func(done func(error)) { g.Send(v[0], v[1], done) }, pick(app.Lang, "Terkirim!", "Sent!"))
		})
}

func contactForm(c *viewmodel.Contact, app shell.Context) *form {
	fields := []field{{label: pick(app.Lang, "Nama", "Name")}, {label: "Email"}, {label: pick(app.Lang, "Pesan", "Message")}}
	return newForm(pick(app.Lang, "Kontak", "Contact"), fields, func(v []string) tea.Cmd {
		return awaitSend(func(done func(error)) { c.Send(v[0], v[1], v[2], done) }, "")
	})
}

func (m *Model) View() string {
	app := m.cfg.Shell.App()
	st := themeStyles(app.Theme)
	var b strings.Builder

	title := m.cfg.Surface.Title()
	if title == "" {
		title = nav.Title(app.Page)
	}
	who := app.Session.String()
	if app.Identity.Email != "" {
		who += " " + app.Identity.Email
	}
	fmt.Fprintf(&b, "%s  %s\n", st.title.Render(title), st.muted.Render(fmt.Sprintf("%s · %s · %s", app.Lang, app.Theme, who)))

	tabs := make([]string, 0, len(nav.Pages()))
	for _, p := range nav.Pages() {
		if p == app.Page {
			tabs = append(tabs, st.active.Render(string(p)))
			continue
		}
		tabs = append(tabs, st.tab.Render(string(p)))
	}
	b.WriteString(strings.Join(tabs, " ") + "\n\n")

	if m.cfg.Surface.Overlay() {
		b.WriteString(st.overlay.Render("···") + "\n\n")
	}

	body := st.body
	if m.width > 8 {
		body = body.Width(m.width - 6)
	}
	switch {
	case m.form != nil:
		b.WriteString(m.form.view(st))
	case m.chatting:
		b.WriteString(m.chatView(st))
	default:
		b.WriteString(body.Render(m.page(app)))
	}

	if m.notice != "" {
		b.WriteString("\n\n" + st.ok.Render(m.notice))
	}
	if m.err != "" {
		b.WriteString("\n\n" + st.err.Render(m.err))
	}
	if f := m.cfg.Shell.Footer(); f != nil {
		b.WriteString("\n\n" + st.muted.Render(render.Stats(f.Current(), app.Lang)))
	}
	b.WriteString("\n" + st.muted.Render("←/→ pages • 1-9 jump • l lang • t theme • r reload • c chat • a admin • o logout • q quit"))
	return st.doc.Render(b.String())
}

func (m *Model) page(app shell.Context) string {
	v, failure := m.cfg.Shell.View()
	if failure != nil {
		return render.Failure() + "\n\nr: reload"
	}
	out, failure := m.cfg.Shell.Render(func() string { return body(app, v, m.cursor, m.cfg.Now()) })
	if failure != nil {
		return render.Failure() + "\n\nr: reload"
	}
	return out
}

func (m *Model) chatView(st styles) string {
	cv := m.conv.Current()
	var b strings.Builder
	b.WriteString(st.title.Render("Chat") + "\n\n")
	for _, msg := range cv.Messages {
		if msg.IsBot {
			b.WriteString(st.muted.Render("bot: ") + msg.Text + "\n")
			continue
		}
		b.WriteString(st.title.Render("you: ") + msg.Text + "\n")
	}
	if cv.Typing {
		b.WriteString(st.overlay.Render("...") + "\n")
	}
	b.WriteString("\n" + m.input.View() + "\n")
	b.WriteString(st.muted.Render(strings.Join(cv.QuickPrompts, " · ")) + "\n")
	b.WriteString(st.muted.Render("enter: send • ↑: quick prompt • esc: close"))
	return b.String()
}

// Run drives m until the user quits or ctx ends.
func Run(ctx context.Context, cfg Config) error {
	m := New(ctx, cfg)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	redraw := coalesce(ctx, func() { p.Send(refreshMsg{}) })
	m.cfg.Surface.Attach(redraw)
	m.Attach(redraw)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// coalesce returns a non-blocking trigger for fn. Triggers that arrive while fn is
// pending collapse into one call.
func coalesce(ctx context.Context, fn func()) func() {
	pending := make(chan struct{}, 1)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-pending:
				fn()
			}
		}
	}()
	return func() {
		select {
		case pending <- struct{}{}:
		default:
		}
	}
}
