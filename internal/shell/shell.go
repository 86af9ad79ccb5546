// Package shell is the top of the client: it owns the application context (language,
// theme, session, page), mounts one page view-model at a time, and gates the admin page.
//
// The shell is the only writer of the context. Everything else asks for a change by
// dispatching an Action; actions are applied in order on the shell's event loop.
package shell

import (
	"context"
	"fmt"
	"runtime/debug"
	"slices"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"portfolio/internal/i18n"
	"portfolio/internal/live"
	"portfolio/internal/nav"
	"portfolio/internal/prefs"
	"portfolio/internal/session"
	"portfolio/internal/stats"
	"portfolio/internal/store"
	"portfolio/internal/viewmodel"
)

// Context is an immutable snapshot of the application state.
type Context struct {
	Lang     i18n.Lang
	Theme    prefs.Theme
	Session  session.State
	Identity session.Identity
	Page     nav.Page
	// Loading is true while the admin page waits for the session to resolve.
	Loading bool
}

// View is a mounted page.
type View interface {
	SetLang(i18n.Lang)
	Close()
}

// Mount builds the view-model of a page. ctx is cancelled when the page unmounts.
type Mount func(ctx context.Context, app Context) (View, error)

// PageFailure is what the error boundary holds after a page failed to mount or render.
type PageFailure struct {
	Page  nav.Page
	Err   error
	Stack string
}

func (f *PageFailure) Error() string { return fmt.Sprintf("page %s failed: %v", f.Page, f.Err) }

type Config struct {
	Store     store.Store
	Session   *session.Machine
	Prefs     *prefs.Prefs
	Tracker   *stats.Tracker
	Surface   nav.Surface
	Clock     nav.Clock
	Pages     map[nav.Page]Mount
	Fragment  string
	Lang      i18n.Lang
	UserAgent string
}

type Shell struct {
	cfg   Config
	scope *live.Scope
	nav   *nav.Machine

	// loop state
	app       Context
	page      nav.Page
	view      View
	cancel    context.CancelFunc
	failure   *PageFailure
	footer    *viewmodel.Stats
	visitedBy string
	presence  string

	mu      sync.Mutex
	current snapshot
	subs    []func(Context)
}

type snapshot struct {
	app     Context
	view    View
	failure *PageFailure
}

// New starts the shell on fragment. The session is not started; call Start.
func New(ctx context.Context, cfg Config) *Shell {
	if cfg.Prefs == nil {
		cfg.Prefs = prefs.New(prefs.NewMemory())
	}
	if cfg.Lang == "" {
		cfg.Lang = i18n.ID
	}
	s := &Shell{cfg: cfg, scope: live.NewScope(ctx)}
	s.scope.Call(func() {
		s.app = Context{
			Lang:    cfg.Prefs.Lang(cfg.Lang),
			Theme:   cfg.Prefs.Theme(),
			Session: cfg.Session.State(),
		}
		if cfg.Tracker != nil {
			s.footer = viewmodel.NewStats(s.scope.Context(), cfg.Store, cfg.Tracker)
		}
		s.nav = nav.New(cfg.Fragment, cfg.Surface, cfg.Clock)
		s.nav.OnChange(func(p nav.Page) { s.Dispatch(pageCommitted{p}) })
		s.app.Page = s.nav.Current()
		s.mount(s.app.Page)
		s.publish()
	})
	cfg.Session.Subscribe(func(st session.State, id session.Identity) {
		s.Dispatch(sessionChanged{st, id})
	})
	return s
}

// Start resolves the session: restore, or sign in anonymously.
func (s *Shell) Start(ctx context.Context) error {
	return s.cfg.Session.Start(ctx)
}

// Nav exposes the navigation machine, mainly for Transitioning.
func (s *Shell) Nav() *nav.Machine { return s.nav }

// Footer is the always-mounted stats view, nil without a tracker.
func (s *Shell) Footer() *viewmodel.Stats { return s.footer }

// Dispatch queues a for the event loop. It reports false once the shell is closed.
func (s *Shell) Dispatch(a Action) bool {
	return s.scope.Post(func() {
		a.apply(s)
		s.publish()
	})
}

// Do dispatches a and waits until it was applied.
func (s *Shell) Do(a Action) bool {
	return s.scope.Call(func() {
		a.apply(s)
		s.publish()
	})
}

func (s *Shell) App() Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.app
}

// View returns the mounted page view and the failure that replaced it, if any.
func (s *Shell) View() (View, *PageFailure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.view, s.current.failure
}

// OnChange registers fn for every published context. fn runs on the event loop.
func (s *Shell) OnChange(fn func(Context)) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

// Render runs fn inside the page error boundary. A panic becomes the page's failure and
// the returned text is empty.
func (s *Shell) Render(fn func() string) (out string, failure *PageFailure) {
	defer func() {
		if r := recover(); r != nil {
			failure = &PageFailure{Page: s.App().Page, Err: fmt.Errorf("%v", r), Stack: string(debug.Stack())}
			log.WithField("page", failure.Page).Errorf("Page render failed: %v", r)
			s.Dispatch(pageFailed{failure})
		}
	}()
	return fn(), nil
}

// Close releases the page, the footer and the presence entry.
func (s *Shell) Close() {
	s.scope.Call(func() {
		s.unmount()
		if s.presence != "" && s.cfg.Tracker != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			if err := s.cfg.Tracker.Leave(ctx, s.presence); err != nil {
				log.WithError(err).Warn("Failed to leave presence")
			}
			cancel()
		}
		if s.footer != nil {
			s.footer.Close()
		}
	})
	s.scope.Close()
}

func (s *Shell) publish() {
	snap := snapshot{app: s.app, view: s.view, failure: s.failure}
	s.mu.Lock()
	s.current = snap
	subs := slices.Clone(s.subs)
	s.mu.Unlock()
	for _, fn := range subs {
		fn(snap.app)
	}
}

func (s *Shell) unmount() {
	if s.view != nil {
		s.view.Close()
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.view, s.cancel, s.failure, s.page = nil, nil, nil, ""
}

// mount replaces the current page. The admin page only mounts for the admin; anyone
// else is sent to login before anything is subscribed.
func (s *Shell) mount(p nav.Page) {
	s.app.Loading = false
	if p == nav.Admin {
		switch session.Gate(s.app.Session) {
		case session.AccessLoading:
			s.unmount()
			s.page = p
			s.app.Loading = true
			return
		case session.AccessRedirect:
			s.unmount()
			s.nav.FragmentChanged(string(nav.Login))
			return
		}
	}
	if p == s.page && (s.view != nil || s.failure != nil) {
		return
	}
	s.unmount()
	s.page = p
	m, ok := s.cfg.Pages[p]
	if !ok {
		return
	}
	ctx, cancel := context.WithCancel(s.scope.Context())
	v, err := safeMount(ctx, m, s.app)
	if err != nil {
		cancel()
		s.failure = asFailure(p, err)
		log.WithField("page", p).WithError(err).Error("Page failed to mount")
		return
	}
	s.view, s.cancel = v, cancel
}

func safeMount(ctx context.Context, m Mount, app Context) (v View, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PageFailure{Page: app.Page, Err: fmt.Errorf("%v", r), Stack: string(debug.Stack())}
		}
	}()
	return m(ctx, app)
}

func asFailure(p nav.Page, err error) *PageFailure {
	if f, ok := err.(*PageFailure); ok {
		f.Page = p
		return f
	}
	return &PageFailure{Page: p, Err: err}
}

// track records a visit and joins the online list once per signed-in uid.
func (s *Shell) track(id session.Identity) {
	if s.cfg.Tracker == nil || id.UID == "" || id.UID == s.visitedBy {
		return
	}
	s.visitedBy = id.UID
	prev := s.presence
	tr, ua := s.cfg.Tracker, s.cfg.UserAgent
	live.Go(s.scope, func(ctx context.Context) (store.DocRef, error) {
		if prev != "" {
			_ = tr.Leave(ctx, prev)
		}
		if err := tr.RecordVisit(ctx); err != nil {
			log.WithError(err).Warn("Failed to record visit")
		}
		return tr.Join(ctx, id.UID, ua)
	}, func(ref store.DocRef, err error) {
		if err != nil {
			log.WithError(err).Warn("Failed to join presence")
			return
		}
		s.presence = ref.ID
	})
}
