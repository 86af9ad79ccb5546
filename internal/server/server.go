// Package server is the content service's HTTP API: public reads, visitor writes, the
// admin dashboard and live websocket streams, all behind the shared permission rules.
package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"

	"portfolio/internal/admin"
	"portfolio/internal/auth"
	"portfolio/internal/chat"
	"portfolio/internal/identity"
	"portfolio/internal/rules"
	"portfolio/internal/stats"
	"portfolio/internal/store"
	"portfolio/internal/websocket"
	"portfolio/pkg/models"
)

// Notifier sends short out-of-band notifications (UDP monitors).
type Notifier interface {
	Notify(typ, message string)
}

type Deps struct {
	Store      store.Store
	Identity   *identity.Repo
	Google     *identity.Google // nil disables federated sign-in
	Chat       chat.Completer   // nil answers with chat.NotConfigured
	Hub        *websocket.Hub
	Notifier   Notifier
	Tracker    *stats.Tracker
	Listeners  func() int
	Secret     []byte
	AdminEmail string
	Origins    []string
	CacheTTL   time.Duration

	// ViewTimeout bounds how long a view request waits for its first complete snapshot.
	ViewTimeout time.Duration
}

type Server struct {
	Deps
	rules  rules.Rules
	editor *admin.Editor
	cache  *cache.Cache
}

func New(d Deps) *Server {
	if d.CacheTTL <= 0 {
		d.CacheTTL = 5 * time.Minute
	}
	if d.ViewTimeout <= 0 {
		d.ViewTimeout = 5 * time.Second
	}
	if d.Chat == nil {
		d.Chat = chat.NewClient("", "", "")
	}
	if d.Listeners == nil {
		d.Listeners = func() int { return -1 }
	}
	return &Server{
		Deps:   d,
		rules:  rules.New(d.AdminEmail),
		editor: admin.NewEditor(d.Store),
		cache:  cache.New(d.CacheTTL, 2*d.CacheTTL),
	}
}

// Invalidate drops cached reads of the collection evt touched. It is fed by the store's
// change hook.
func (s *Server) Invalidate(evt models.ChangeEvent) {
	prefix := evt.Collection + "|"
	for k := range s.cache.Items() {
		if strings.HasPrefix(k, prefix) {
			s.cache.Delete(k)
		}
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/health", s.handleHealth)

	a := r.Group("/auth")
	a.POST("/anonymous", s.handleAnonymous)
	a.POST("/login", s.handleLogin)
	a.GET("/google/start", s.handleGoogleStart)
	a.GET("/google/callback", s.handleGoogleCallback)
	a.GET("/google/result", s.handleGoogleResult)
	a.GET("/me", auth.RequireJWT(s.Secret), s.handleMe)

	api := r.Group("/api", auth.OptionalJWT(s.Secret))
	api.GET("/collections/*path", s.handleList)
	api.GET("/docs/*path", s.handleGet)
	api.GET("/views/:page", s.handleView)
	api.GET("/nav", s.handleNav)
	api.POST("/chat", s.handleChat)

	signed := api.Group("", auth.RequireJWT(s.Secret))
	signed.POST("/contact", s.handleContact)
	signed.POST("/guestbook", s.handleGuestbook)
	signed.POST("/presence", s.handleJoin)
	signed.DELETE("/presence/:id", s.handleLeave)
	signed.POST("/visits", s.handleVisit)

	adm := r.Group("/api/admin", auth.RequireJWT(s.Secret), auth.RequireAdmin(s.AdminEmail))
	adm.GET("/settings", s.handleLoadSettings)
	adm.PUT("/settings", s.handleSaveSettings)
	adm.POST("/notify", s.handleNotify)
	adm.GET("/:tab", s.handleAdminList)
	adm.POST("/:tab", s.handleAdminCreate)
	adm.PUT("/:tab/:id", s.handleAdminUpdate)
	adm.DELETE("/:tab/:id", s.handleAdminDelete)
	adm.POST("/:tab/:id/reply", s.handleAdminReply)

	ws := r.Group("/ws")
	ws.GET("/views/:page", websocket.Serve(s.Hub, s.viewSource))
	ws.GET("/collections/*path", websocket.Serve(s.Hub, s.collectionSource))

	return r
}

// Handler is the router behind CORS for the configured frontends.
func (s *Server) Handler() http.Handler {
	origins := s.Origins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	return c.Handler(s.Router())
}

func (s *Server) handleHealth(c *gin.Context) {
	wsClients := 0
	if s.Hub != nil {
		wsClients = s.Hub.Count()
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "listeners": s.Listeners(), "ws_clients": wsClients})
}

func (s *Server) notify(typ, message string) {
	if s.Notifier != nil {
		s.Notifier.Notify(typ, message)
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(log.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Debug("HTTP request")
	}
}
