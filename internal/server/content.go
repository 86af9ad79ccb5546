package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"portfolio/internal/auth"
	"portfolio/internal/chat"
	"portfolio/internal/content"
	"portfolio/internal/i18n"
	"portfolio/internal/nav"
	"portfolio/internal/rules"
	"portfolio/internal/stats"
	"portfolio/internal/store"
	"portfolio/internal/udpnotify"
)

// claims returns the caller's claims from the Authorization header or, for websocket
// upgrades that cannot set headers, from the token query parameter.
func (s *Server) claims(c *gin.Context) *auth.Claims {
	if claims := auth.FromContext(c); claims != nil {
		return claims
	}
	if tok := c.Query("token"); tok != "" {
		if claims, err := auth.ParseJWT(s.Secret, tok); err == nil {
			return claims
		}
	}
	return nil
}

func (s *Server) allow(c *gin.Context, op rules.Op, collection string) bool {
	if err := s.rules.Check(s.claims(c), op, collection); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func docJSON(d store.Document) gin.H {
	return gin.H{"id": d.ID, "collection": d.Collection, "data": d.Data}
}

func docsJSON(docs []store.Document) []gin.H {
	out := make([]gin.H, 0, len(docs))
	for _, d := range docs {
		out = append(out, docJSON(d))
	}
	return out
}

// parseValue reads a filter value: booleans and integers keep their type.
func parseValue(raw string) any {
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	return raw
}

// queryFrom builds a query from ?order=field&dir=desc&limit=n&where=field:value.
func queryFrom(c *gin.Context) (store.Query, error) {
	q := store.Collection(strings.Trim(c.Param("path"), "/"))
	if q.Collection == "" {
		return q, errors.New("collection required")
	}
	for _, w := range c.QueryArray("where") {
		field, value, ok := strings.Cut(w, ":")
		if !ok || field == "" {
			return q, fmt.Errorf("bad filter %q", w)
		}
		q = q.Where(field, parseValue(value))
	}
	if field := c.Query("order"); field != "" {
		dir := store.Asc
		if strings.EqualFold(c.Query("dir"), "desc") {
			dir = store.Desc
		}
		q = q.OrderBy(field, dir)
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return q, fmt.Errorf("bad limit %q", raw)
		}
		q = q.Take(n)
	}
	return q, nil
}

func (s *Server) handleList(c *gin.Context) {
	q, err := queryFrom(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !s.allow(c, rules.OpRead, q.Collection) {
		return
	}
	key := q.Collection + "|" + q.Key()
	if v, ok := s.cache.Get(key); ok {
		c.JSON(http.StatusOK, gin.H{"docs": docsJSON(v.([]store.Document)), "cached": true})
		return
	}
	docs, err := s.Store.List(c.Request.Context(), q)
	if err != nil {
		log.WithError(err).WithField("collection", q.Collection).Error("Failed to list collection")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	s.cache.SetDefault(key, docs)
	c.JSON(http.StatusOK, gin.H{"docs": docsJSON(docs)})
}

func (s *Server) handleGet(c *gin.Context) {
	path := strings.Trim(c.Param("path"), "/")
	i := strings.LastIndex(path, "/")
	if i <= 0 || i == len(path)-1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "document path must be collection/id"})
		return
	}
	ref := store.Doc(path[:i], path[i+1:])
	if !s.allow(c, rules.OpRead, ref.Collection) {
		return
	}
	key := ref.Collection + "|doc/" + ref.ID
	if v, ok := s.cache.Get(key); ok {
		c.JSON(http.StatusOK, docJSON(v.(store.Document)))
		return
	}
	d, err := s.Store.Get(c.Request.Context(), ref)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
		return
	}
	if err != nil {
		log.WithError(err).WithField("doc", ref.Key()).Error("Failed to get document")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	s.cache.SetDefault(key, d)
	c.JSON(http.StatusOK, docJSON(d))
}

func (s *Server) handleContact(c *gin.Context) {
	var req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if !s.allow(c, rules.OpAdd, content.ContactMessages) {
		return
	}
	ref, err := content.PostContact(c.Request.Context(), s.Store, req.Name, req.Email, req.Message)
	if errors.Is(err, content.ErrEmptyMessage) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		log.WithError(err).Error("Failed to save contact message")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Gagal mengirim pesan. Cek koneksi internet Anda."})
		return
	}
	s.notify(udpnotify.TypeContact, fmt.Sprintf("Pesan baru dari %s <%s>", req.Name, req.Email))
	c.JSON(http.StatusCreated, gin.H{"id": ref.ID})
}

func (s *Server) handleGuestbook(c *gin.Context) {
	var req struct {
		Name    string `json:"name"`
		Message string `json:"message"`
		Lang    string `json:"lang"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if !s.allow(c, rules.OpAdd, content.GuestbookMsgs) {
		return
	}
	lang := i18n.ParseLang(req.Lang)
	ref, err := content.PostGuestbook(c.Request.Context(), s.Store, s.claims(c).UID, req.Name, req.Message, lang.String())
	if errors.Is(err, content.ErrEmptyMessage) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		log.WithError(err).Error("Failed to save guestbook message")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Gagal mengirim pesan. Pastikan koneksi aman."})
		return
	}
	s.notify(udpnotify.TypeGuestbook, fmt.Sprintf("Guestbook: %s menulis pesan", req.Name))
	c.JSON(http.StatusCreated, gin.H{"id": ref.ID})
}

func (s *Server) handleJoin(c *gin.Context) {
	var req struct {
		UserAgent string `json:"userAgent"`
	}
	_ = c.ShouldBindJSON(&req)
	if req.UserAgent == "" {
		req.UserAgent = c.Request.UserAgent()
	}
	if !s.allow(c, rules.OpSet, s.Tracker.OnlineCollection()) {
		return
	}
	ref, err := s.Tracker.Join(c.Request.Context(), s.claims(c).UID, req.UserAgent)
	if err != nil {
		log.WithError(err).Warn("Failed to join presence")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": ref.ID})
}

// handleLeave removes a presence document; only its owner or the admin may.
func (s *Server) handleLeave(c *gin.Context) {
	id := c.Param("id")
	claims := s.claims(c)
	if stats.Owner(id) != claims.UID && !claims.IsAdmin(s.AdminEmail) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your presence"})
		return
	}
	if err := s.Tracker.Leave(c.Request.Context(), id); err != nil {
		log.WithError(err).Warn("Failed to leave presence")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleVisit(c *gin.Context) {
	if !s.allow(c, rules.OpIncrement, s.Tracker.VisitorDoc().Collection) {
		return
	}
	if err := s.Tracker.RecordVisit(c.Request.Context()); err != nil {
		log.WithError(err).Warn("Failed to record visit")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleNav(c *gin.Context) {
	p := nav.Parse(c.Query("fragment"))
	c.JSON(http.StatusOK, gin.H{"page": p, "title": nav.Title(p)})
}

// handleChat always answers 200; upstream failures become the static apology.
func (s *Server) handleChat(c *gin.Context) {
	var req struct {
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	reply, err := chat.Reply(c.Request.Context(), s.Chat, req.Message)
	if errors.Is(err, chat.ErrEmptyMessage) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		log.WithError(err).Warn("Chat completion failed")
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}
