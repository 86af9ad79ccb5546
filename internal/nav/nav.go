// Package nav maps the address fragment to a page and runs page transitions.
package nav

import (
	"slices"
	"strings"
	"sync"
	"time"
)

type Page string

const (
	Home         Page = "home"
	About        Page = "about"
	Projects     Page = "projects"
	Services     Page = "services"
	Certificates Page = "certificates"
	Blog         Page = "blog"
	Guestbook    Page = "guestbook"
	Contact      Page = "contact"
	Privacy      Page = "privacy"
	Login        Page = "login"
	Admin        Page = "admin"
	NotFound     Page = "404"
)

// Transition lock: the overlay shows for TransitionDelay before the new page commits,
// then stays SettleDelay longer. Data loading never waits on either.
const (
	TransitionDelay = 300 * time.Millisecond
	SettleDelay     = 100 * time.Millisecond
)

var titles = map[Page]string{
	Home:         "Portfolio | Refaldo",
	About:        "About Me | Refaldo",
	Projects:     "My Projects | Refaldo",
	Services:     "Services | Refaldo",
	Certificates: "Certificates | Refaldo",
	Blog:         "Blog | Refaldo",
	Guestbook:    "Guestbook | Refaldo",
	Contact:      "Get in Touch | Refaldo",
	Privacy:      "Privacy Policy | Refaldo",
	Login:        "Admin Login | Refaldo",
	Admin:        "Dashboard | Refaldo",
	NotFound:     "Page Not Found | Refaldo",
}

// Pages lists the routable pages; NotFound is not one of them.
func Pages() []Page {
	return []Page{Home, About, Projects, Services, Certificates, Blog, Guestbook, Contact, Privacy, Login, Admin}
}

// Parse maps a fragment, with or without the leading '#', to a page.
func Parse(fragment string) Page {
	f := strings.TrimPrefix(fragment, "#")
	if f == "" {
		return Home
	}
	p := Page(f)
	if p == NotFound {
		return NotFound
	}
	if _, ok := titles[p]; ok {
		return p
	}
	return NotFound
}

func Title(p Page) string {
	if t, ok := titles[p]; ok {
		return t
	}
	return titles[Home]
}

// Surface is where page commits become visible.
type Surface interface {
	SetTitle(title string)
	SetFragment(fragment string)
	ScrollToTop()
	SetOverlay(on bool)
}

type Timer interface{ Stop() bool }

type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// SystemClock uses real timers.
var SystemClock Clock = systemClock{}

type Machine struct {
	surface Surface
	clock   Clock

	mu            sync.Mutex
	current       Page
	transitioning bool
	observers     []func(Page)
}

// New derives the first page from fragment and commits it.
func New(fragment string, surface Surface, clock Clock) *Machine {
	if clock == nil {
		clock = SystemClock
	}
	m := &Machine{surface: surface, clock: clock, current: Parse(fragment)}
	m.apply(m.current)
	return m
}

func (m *Machine) Current() Page {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *Machine) Transitioning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transitioning
}

// OnChange registers fn for every committed page.
func (m *Machine) OnChange(fn func(Page)) {
	m.mu.Lock()
	m.observers = append(m.observers, fn)
	m.mu.Unlock()
}

// Navigate starts a transition to target. It reports false, doing nothing, when target
// is already current or another transition is in flight.
func (m *Machine) Navigate(target Page) bool {
	m.mu.Lock()
	if target == m.current || m.transitioning {
		m.mu.Unlock()
		return false
	}
	m.transitioning = true
	m.mu.Unlock()

	m.surface.SetOverlay(true)
	m.clock.AfterFunc(TransitionDelay, func() {
		m.commit(target)
		m.surface.ScrollToTop()
		m.clock.AfterFunc(SettleDelay, func() {
			m.mu.Lock()
			m.transitioning = false
			m.mu.Unlock()
			m.surface.SetOverlay(false)
		})
	})
	return true
}

// FragmentChanged handles an external fragment change such as back/forward. It commits
// at once, without the transition lock.
func (m *Machine) FragmentChanged(fragment string) {
	p := Parse(fragment)
	m.mu.Lock()
	same := p == m.current
	m.mu.Unlock()
	if !same {
		m.commit(p)
	}
}

func (m *Machine) commit(p Page) {
	m.mu.Lock()
	m.current = p
	obs := slices.Clone(m.observers)
	m.mu.Unlock()
	m.apply(p)
	for _, fn := range obs {
		fn(p)
	}
}

func (m *Machine) apply(p Page) {
	m.surface.SetTitle(Title(p))
	if p != NotFound {
		m.surface.SetFragment(string(p))
	}
}
