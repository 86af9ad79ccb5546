package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"portfolio/internal/i18n"
	"portfolio/internal/live"
	"portfolio/internal/render"
	"portfolio/internal/rules"
	"portfolio/internal/store"
	"portfolio/internal/viewmodel"
	"portfolio/pkg/models"
)

var errUnknownView = errors.New("unknown view")

// pageView is a live aggregator reduced to what the HTTP layer needs.
type pageView struct {
	current  func() (view any, loading bool)
	onChange func(func())
	text     func(i18n.Lang) string
	close    func()
}

type model[V any] interface {
	Current() V
	OnChange(func(V))
	Close()
}

func erase[V any](m model[V], loading func(V) bool, text func(V, i18n.Lang) string) pageView {
	return pageView{
		current: func() (any, bool) {
			v := m.Current()
			return v, loading(v)
		},
		onChange: func(fn func()) { m.OnChange(func(V) { fn() }) },
		text:     func(lang i18n.Lang) string { return text(m.Current(), lang) },
		close:    m.Close,
	}
}

// openView builds the aggregator of page. c is read synchronously for the page's options.
func (s *Server) openView(ctx context.Context, page string, lang i18n.Lang, c *gin.Context) (pageView, error) {
	switch page {
	case "home":
		return erase(viewmodel.NewHome(ctx, s.Store, lang),
			func(v viewmodel.HomeView) bool { return v.Loading }, render.Home), nil
	case "about":
		return erase(viewmodel.NewAbout(ctx, s.Store, lang),
			func(v viewmodel.AboutView) bool { return v.Loading }, render.About), nil
	case "projects":
		return erase(viewmodel.NewProjects(ctx, s.Store, lang, c.Query("category")),
			func(v viewmodel.ProjectsView) bool { return v.Loading }, render.Projects), nil
	case "certificates":
		return erase(viewmodel.NewCertificates(ctx, s.Store, lang),
			func(v viewmodel.CertificatesView) bool { return v.Loading }, render.Certificates), nil
	case "blog":
		b := viewmodel.NewBlog(ctx, s.Store, lang)
		if id := c.Query("article"); id != "" {
			b.Select(id)
		}
		return erase(b, func(v viewmodel.BlogView) bool { return v.Loading }, render.Blog), nil
	case "guestbook":
		uid := ""
		if claims := s.claims(c); claims != nil {
			uid = claims.UID
		}
		g := viewmodel.NewGuestbook(ctx, s.Store, lang, func() string { return uid })
		return erase(g, func(v viewmodel.GuestbookView) bool { return v.Loading },
			func(v viewmodel.GuestbookView, lang i18n.Lang) string { return render.Guestbook(v, time.Now(), lang) }), nil
	case "stats":
		return erase(viewmodel.NewStats(ctx, s.Store, s.Tracker),
			func(v viewmodel.StatsView) bool { return v.Loading }, render.Stats), nil
	}
	return pageView{}, fmt.Errorf("%w: %q", errUnknownView, page)
}

// settle waits until the view stops loading, the timeout passes or ctx ends.
func settle(ctx context.Context, v pageView, timeout time.Duration) (any, bool) {
	ready := make(chan struct{}, 1)
	v.onChange(func() {
		select {
		case ready <- struct{}{}:
		default:
		}
	})
	t := time.NewTimer(timeout)
	defer t.Stop()
	for {
		if view, loading := v.current(); !loading {
			return view, false
		}
		select {
		case <-ready:
		case <-t.C:
			return v.current()
		case <-ctx.Done():
			return v.current()
		}
	}
}

// failure is the error boundary answer: the generic panel with its reload action.
func failure(c *gin.Context) {
	if c.Query("format") == "text" {
		c.String(http.StatusInternalServerError, render.Failure())
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":  render.FailureTitle,
		"body":   render.FailureBody,
		"action": render.FailureAction,
	})
}

func (s *Server) handleView(c *gin.Context) {
	page := c.Param("page")
	lang := i18n.ParseLang(c.Query("lang"))
	defer func() {
		if r := recover(); r != nil {
			log.WithField("page", page).Errorf("View failed: %v", r)
			failure(c)
		}
	}()

	v, err := s.openView(c.Request.Context(), page, lang, c)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	defer v.close()

	view, loading := settle(c.Request.Context(), v, s.ViewTimeout)
	if c.Query("format") == "text" {
		c.String(http.StatusOK, v.text(lang))
		return
	}
	c.JSON(http.StatusOK, gin.H{"page": page, "lang": lang, "loading": loading, "view": view})
}

// viewSource streams a page's view on every change.
func (s *Server) viewSource(ctx context.Context, c *gin.Context, send func(models.Frame)) error {
	page := c.Param("page")
	v, err := s.openView(ctx, page, i18n.ParseLang(c.Query("lang")), c)
	if err != nil {
		return err
	}

	// The latest view is read under mu so the last frame sent is never stale.
	var mu sync.Mutex
	push := func() {
		mu.Lock()
		defer mu.Unlock()
		view, loading := v.current()
		send(models.Frame{Type: "view", Target: page, Payload: gin.H{"loading": loading, "view": view}})
	}
	v.onChange(push)
	push()

	go func() {
		<-ctx.Done()
		v.close()
	}()
	return nil
}

// collectionSource streams full snapshots of a query, or of one document with ?doc=id.
func (s *Server) collectionSource(ctx context.Context, c *gin.Context, send func(models.Frame)) error {
	q, err := queryFrom(c)
	if err != nil {
		return err
	}
	if err := s.rules.Check(s.claims(c), rules.OpRead, q.Collection); err != nil {
		return err
	}
	var target store.Target = q
	if id := c.Query("doc"); id != "" {
		target = store.Doc(q.Collection, id)
	}
	key := target.Key()
	live.Subscribe(ctx, s.Store, target,
		func(snap store.Snapshot) {
			send(models.Frame{Type: "snapshot", Target: key, Payload: docsJSON(snap.Docs)})
		},
		func(err error) {
			log.WithError(err).WithField("target", key).Warn("Snapshot stream failed")
			send(models.Frame{Type: "error", Target: key, Error: err.Error()})
		},
	)
	return nil
}
