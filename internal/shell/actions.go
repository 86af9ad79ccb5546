package shell

import (
	log "github.com/sirupsen/logrus"

	"portfolio/internal/i18n"
	"portfolio/internal/nav"
	"portfolio/internal/session"
)

// Action is a request to change the application context.
type Action interface {
	apply(s *Shell)
}

type SetLang struct{ Lang i18n.Lang }

func (a SetLang) apply(s *Shell) {
	if a.Lang == s.app.Lang {
		return
	}
	s.app.Lang = a.Lang
	if err := s.cfg.Prefs.SetLang(a.Lang); err != nil {
		log.WithError(err).Warn("Failed to save language")
	}
	if s.view != nil {
		s.view.SetLang(a.Lang)
	}
}

type ToggleLang struct{}

func (ToggleLang) apply(s *Shell) { SetLang{s.app.Lang.Toggle()}.apply(s) }

type ToggleTheme struct{}

func (ToggleTheme) apply(s *Shell) {
	s.app.Theme = s.app.Theme.Toggle()
	if err := s.cfg.Prefs.SetTheme(s.app.Theme); err != nil {
		log.WithError(err).Warn("Failed to save theme")
	}
}

// Navigate starts a page transition. Asking for the admin page without an admin
// session goes to login instead.
type Navigate struct{ Page nav.Page }

func (a Navigate) apply(s *Shell) {
	target := a.Page
	if target == nav.Admin && session.Gate(s.app.Session) == session.AccessRedirect {
		target = nav.Login
	}
	s.nav.Navigate(target)
}

// Reload remounts the current page, clearing a failure.
type Reload struct{}

func (Reload) apply(s *Shell) {
	p := s.app.Page
	s.unmount()
	s.mount(p)
}

type pageCommitted struct{ page nav.Page }

func (a pageCommitted) apply(s *Shell) {
	s.app.Page = a.page
	s.mount(a.page)
}

type sessionChanged struct {
	state session.State
	id    session.Identity
}

func (a sessionChanged) apply(s *Shell) {
	s.app.Session, s.app.Identity = a.state, a.id
	switch a.state {
	case session.Anonymous, session.AuthenticatedAdmin:
		s.track(a.id)
	}
	if s.app.Page == nav.Admin {
		s.mount(nav.Admin)
	}
}

type pageFailed struct{ f *PageFailure }

func (a pageFailed) apply(s *Shell) {
	if a.f.Page != s.app.Page {
		return
	}
	if s.view != nil {
		s.view.Close()
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.view, s.cancel, s.failure = nil, nil, a.f
}
