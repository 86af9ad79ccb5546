package shell

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"portfolio/internal/i18n"
	"portfolio/internal/nav"
	"portfolio/internal/prefs"
	"portfolio/internal/session"
	"portfolio/internal/stats"
	"portfolio/internal/store"
	"portfolio/internal/store/storetest"
)

const adminEmail = "admin@example.com"

type provider struct{}

func (provider) Current(context.Context) (session.Identity, bool, error) {
	return session.Identity{}, false, nil
}

func (provider) SignInAnonymously(context.Context) (session.Identity, error) {
	return session.Identity{UID: "anon-1", Anonymous: true}, nil
}

func (provider) SignInWithPassword(_ context.Context, email, _ string) (session.Identity, error) {
	return session.Identity{UID: "uid-" + email, Email: email}, nil
}

func (provider) SignInFederated(context.Context) (session.Identity, error) {
	return session.Identity{}, session.ErrFederatedFailed
}

func (provider) SignOut(context.Context) error { return nil }

type surface struct {
	mu       sync.Mutex
	title    string
	fragment string
}

func (s *surface) SetTitle(t string) {
	s.mu.Lock()
	s.title = t
	s.mu.Unlock()
}

func (s *surface) SetFragment(f string) {
	s.mu.Lock()
	s.fragment = f
	s.mu.Unlock()
}

func (s *surface) ScrollToTop()    {}
func (s *surface) SetOverlay(bool) {}

// listens records the keys of every Listen call.
type listens struct {
	store.Store
	mu   sync.Mutex
	keys []string
}

func (l *listens) Listen(ctx context.Context, t store.Target) (store.Iterator, error) {
	l.mu.Lock()
	l.keys = append(l.keys, t.Key())
	l.mu.Unlock()
	return l.Store.Listen(ctx, t)
}

func (l *listens) any(prefix string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, k := range l.keys {
		if strings.HasPrefix(k, prefix) {
			return true
		}
	}
	return false
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("Timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func newShell(t *testing.T, fragment string, st store.Store, pages map[nav.Page]Mount) (*Shell, *session.Machine) {
	t.Helper()
	sess := session.New(provider{}, adminEmail)
	sh := New(context.Background(), Config{
		Store:    st,
		Session:  sess,
		Surface:  &surface{},
		Pages:    pages,
		Fragment: fragment,
	})
	t.Cleanup(sh.Close)
	return sh, sess
}

func TestAdminRedirectsAnonymousToLogin(t *testing.T) {
	st := &listens{Store: storetest.New(t)}
	sh, sess := newShell(t, "admin", st, Pages(st, func() string { return "" }))

	if app := sh.App(); app.Page != nav.Admin || !app.Loading {
		t.Fatalf("before session: %+v, want admin page loading", app)
	}

	if err := sh.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	eventually(t, "redirect to login", func() bool { return sh.App().Page == nav.Login })
	if sh.Nav().Current() != nav.Login {
		t.Errorf("nav page = %s", sh.Nav().Current())
	}
	if st.any("projects_data") {
		t.Errorf("admin data subscribed for an anonymous session: %v", st.keys)
	}

	sh.Do(Navigate{nav.Admin})
	if sh.Nav().Transitioning() {
		t.Error("navigate to admin while anonymous should not start a transition away from login")
	}

	if err := sess.SignInWithPassword(context.Background(), adminEmail, "pw"); err != nil {
		t.Fatal(err)
	}
	eventually(t, "admin session", func() bool { return sh.App().Session == session.AuthenticatedAdmin })
	sh.Do(Navigate{nav.Admin})
	eventually(t, "admin page mounted", func() bool {
		v, _ := sh.View()
		_, ok := v.(AdminView)
		return ok && sh.App().Page == nav.Admin
	})
	eventually(t, "admin subscription", func() bool { return st.any("projects_data") })
}

type recordingView struct {
	mu     sync.Mutex
	lang   i18n.Lang
	closed bool
}

func (v *recordingView) SetLang(l i18n.Lang) {
	v.mu.Lock()
	v.lang = l
	v.mu.Unlock()
}

func (v *recordingView) Close() {
	v.mu.Lock()
	v.closed = true
	v.mu.Unlock()
}

func TestLangAndThemeFlowThroughTheShell(t *testing.T) {
	view := &recordingView{}
	p := prefs.New(prefs.NewMemory())
	sess := session.New(provider{}, adminEmail)
	sh := New(context.Background(), Config{
		Store:   storetest.New(t),
		Session: sess,
		Prefs:   p,
		Surface: &surface{},
		Pages: map[nav.Page]Mount{
			nav.Home: func(context.Context, Context) (View, error) { return view, nil },
		},
	})
	defer sh.Close()

	app := sh.App()
	if app.Lang != i18n.ID || app.Theme != prefs.Dark || app.Page != nav.Home {
		t.Fatalf("initial context = %+v", app)
	}
	sh.Do(ToggleLang{})
	sh.Do(ToggleTheme{})
	app = sh.App()
	if app.Lang != i18n.EN || app.Theme != prefs.Light {
		t.Errorf("context = %+v", app)
	}
	view.mu.Lock()
	if view.lang != i18n.EN {
		t.Errorf("mounted view lang = %q", view.lang)
	}
	view.mu.Unlock()
	if p.Theme() != prefs.Light || p.Lang(i18n.ID) != i18n.EN {
		t.Error("preferences not saved")
	}
}

func TestErrorBoundary(t *testing.T) {
	calls := 0
	pages := map[nav.Page]Mount{
		nav.Home: func(context.Context, Context) (View, error) {
			calls++
			if calls == 1 {
				panic("boom")
			}
			return &recordingView{}, nil
		},
		nav.About: func(context.Context, Context) (View, error) {
			return nil, errors.New("no data")
		},
	}
	sh, _ := newShell(t, "", storetest.New(t), pages)

	_, failure := sh.View()
	if failure == nil || failure.Page != nav.Home || !strings.Contains(failure.Error(), "boom") {
		t.Fatalf("failure = %v", failure)
	}
	if sh.App().Page != nav.Home {
		t.Error("shell should stay usable")
	}

	sh.Do(Reload{})
	if v, f := sh.View(); v == nil || f != nil {
		t.Fatalf("after reload: view %v failure %v", v, f)
	}

	out, f := sh.Render(func() string { panic("render") })
	if out != "" || f == nil {
		t.Errorf("Render = %q, %v", out, f)
	}
	eventually(t, "render failure recorded", func() bool {
		_, f := sh.View()
		return f != nil
	})

	sh.Do(Navigate{nav.About})
	eventually(t, "about failure", func() bool {
		_, f := sh.View()
		return sh.App().Page == nav.About && f != nil && f.Page == nav.About
	})
}

func TestVisitAndPresence(t *testing.T) {
	st := storetest.New(t)
	tr := stats.New(st, "app")
	sess := session.New(provider{}, adminEmail)
	sh := New(context.Background(), Config{Store: st, Session: sess, Tracker: tr, Surface: &surface{}, UserAgent: "test"})
	ctx := context.Background()

	if err := sh.Start(ctx); err != nil {
		t.Fatal(err)
	}
	online := store.Collection(tr.OnlineCollection())
	eventually(t, "presence entry", func() bool {
		docs, _ := st.List(ctx, online)
		return len(docs) == 1
	})
	doc, err := st.Get(ctx, tr.VisitorDoc())
	if err != nil || doc.Int("count") != 100 {
		t.Fatalf("visitor doc = %v, %v", doc.Data, err)
	}
	eventually(t, "footer", func() bool {
		v := sh.Footer().Current()
		return v.Visitors == 100 && v.Online == 1
	})

	sh.Close()
	docs, _ := st.List(ctx, online)
	if len(docs) != 0 {
		t.Errorf("presence left behind: %v", docs)
	}
}
