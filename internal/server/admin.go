package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"portfolio/internal/admin"
	"portfolio/internal/store"
	"portfolio/internal/udpnotify"
	"portfolio/pkg/models"
)

// adminError maps an editor failure to a status. Unknown failures are logged.
func adminError(c *gin.Context, err error, fallback string) {
	var invalid *admin.ValidationError
	var partial *admin.PartialSaveError
	switch {
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Message, "field": invalid.Field})
	case errors.As(err, &partial):
		log.WithError(err).Error("Failed to save settings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "saved": partial.Saved.Key(), "failed": partial.Failed.Key()})
	case errors.Is(err, admin.ErrUnknownTab), errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, admin.ErrNotEditable), errors.Is(err, admin.ErrEmptyReply):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, admin.ErrCancelled):
		c.JSON(http.StatusConflict, gin.H{"error": admin.DeletePrompt, "confirm": "pass confirm=true to delete"})
	case errors.Is(err, store.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		log.WithError(err).Error("Admin action failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func tabParam(c *gin.Context) (admin.Tab, bool) {
	tab, err := admin.ParseTab(c.Param("tab"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return "", false
	}
	return tab, true
}

func (s *Server) handleAdminList(c *gin.Context) {
	tab, ok := tabParam(c)
	if !ok {
		return
	}
	docs, err := s.editor.List(c.Request.Context(), tab)
	if err != nil {
		adminError(c, err, "db error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"tab": tab, "items": admin.Items(tab, docs)})
}

func (s *Server) handleAdminCreate(c *gin.Context) {
	tab, ok := tabParam(c)
	if !ok {
		return
	}
	form, err := admin.NewForm(tab)
	if err != nil {
		adminError(c, err, "db error")
		return
	}
	if err := c.ShouldBindJSON(form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	ref, err := s.editor.Create(c.Request.Context(), form)
	if err != nil {
		adminError(c, err, "db error")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": ref.ID, "notice": admin.NoticeCreated})
}

func (s *Server) handleAdminUpdate(c *gin.Context) {
	tab, ok := tabParam(c)
	if !ok {
		return
	}
	form, err := admin.NewForm(tab)
	if err != nil {
		adminError(c, err, "db error")
		return
	}
	if err := c.ShouldBindJSON(form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if err := s.editor.Update(c.Request.Context(), c.Param("id"), form); err != nil {
		adminError(c, err, "db error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"notice": admin.NoticeUpdated})
}

// handleAdminDelete needs confirm=true, the HTTP form of the dashboard's prompt.
func (s *Server) handleAdminDelete(c *gin.Context) {
	tab, ok := tabParam(c)
	if !ok {
		return
	}
	confirm := admin.ConfirmFunc(func(string) bool { return c.Query("confirm") == "true" })
	if err := s.editor.Delete(c.Request.Context(), tab, c.Param("id"), confirm); err != nil {
		adminError(c, err, admin.DeleteFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notice": admin.NoticeDeleted})
}

func (s *Server) handleAdminReply(c *gin.Context) {
	if c.Param("tab") != string(admin.TabGuestbook) {
		c.JSON(http.StatusNotFound, gin.H{"error": "only guestbook messages take replies"})
		return
	}
	var req struct {
		Reply string `json:"reply"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if err := s.editor.Reply(c.Request.Context(), c.Param("id"), req.Reply); err != nil {
		adminError(c, err, admin.ReplyFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notice": admin.NoticeReplied})
}

func (s *Server) handleLoadSettings(c *gin.Context) {
	settings, err := s.editor.LoadSiteSettings(c.Request.Context())
	if err != nil {
		adminError(c, err, "db error")
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (s *Server) handleSaveSettings(c *gin.Context) {
	var settings admin.SiteSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if err := s.editor.SaveSiteSettings(c.Request.Context(), settings); err != nil {
		adminError(c, err, "db error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"notice": admin.NoticeSettings})
}

// handleNotify pushes an admin notice to UDP monitors and every open websocket.
func (s *Server) handleNotify(c *gin.Context) {
	var req struct {
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message required"})
		return
	}
	s.notify(udpnotify.TypeNotice, req.Message)
	if s.Hub != nil {
		s.Hub.Broadcast(models.Frame{Type: "notice", Payload: req.Message})
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
