package tui

import "sync"

// Surface is the terminal's nav.Surface. It records what the navigation machine asks
// for and asks the program to redraw. redraw must not block: the navigation machine
// calls in from the shell's event loop.
type Surface struct {
	mu       sync.Mutex
	title    string
	fragment string
	overlay  bool
	scrolls  int
	redraw   func()
}

func NewSurface() *Surface { return &Surface{} }

func (s *Surface) Attach(redraw func()) {
	s.mu.Lock()
	s.redraw = redraw
	s.mu.Unlock()
}

func (s *Surface) SetTitle(title string)       { s.update(func() { s.title = title }) }
func (s *Surface) SetFragment(fragment string) { s.update(func() { s.fragment = fragment }) }
func (s *Surface) ScrollToTop()                { s.update(func() { s.scrolls++ }) }
func (s *Surface) SetOverlay(on bool)          { s.update(func() { s.overlay = on }) }

func (s *Surface) update(fn func()) {
	s.mu.Lock()
	fn()
	redraw := s.redraw
	s.mu.Unlock()
	if redraw != nil {
		redraw()
	}
}

func (s *Surface) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title
}

func (s *Surface) Fragment() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fragment
}

func (s *Surface) Overlay() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overlay
}

// Scrolls counts ScrollToTop calls; the model resets its cursor when it moves.
func (s *Surface) Scrolls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scrolls
}
