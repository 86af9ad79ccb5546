package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"portfolio/internal/auth"
	"portfolio/internal/session"
)

// authError answers a failed sign-in with the login page text and its wire code.
func authError(c *gin.Context, err error) {
	code := session.Code(err)
	status := http.StatusUnauthorized
	switch {
	case code == "":
		log.WithError(err).Error("Failed to sign in")
		status = http.StatusInternalServerError
	case errors.Is(err, session.ErrMissingCredentials):
		status = http.StatusBadRequest
	case errors.Is(err, session.ErrTooManyAttempts):
		status = http.StatusTooManyRequests
	}
	c.JSON(status, gin.H{"error": session.Message(err), "code": code})
}

func (s *Server) handleAnonymous(c *gin.Context) {
	sess, err := s.Identity.SignInAnonymously(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("Failed to create anonymous session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sign in failed"})
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (s *Server) handleLogin(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	sess, err := s.Identity.VerifyLogin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		authError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (s *Server) handleMe(c *gin.Context) {
	claims := auth.FromContext(c)
	sess, err := s.Identity.Refresh(c.Request.Context(), claims.UID)
	if err != nil {
		authError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (s *Server) handleGoogleStart(c *gin.Context) {
	if s.Google == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": session.Message(session.ErrFederatedFailed), "code": session.Code(session.ErrFederatedFailed)})
		return
	}
	url, state, err := s.Google.Start()
	if err != nil {
		log.WithError(err).Error("Failed to start Google sign-in")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "start failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url, "state": state})
}

func (s *Server) handleGoogleCallback(c *gin.Context) {
	if s.Google == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "google sign-in disabled"})
		return
	}
	sess, err := s.Google.Callback(c.Request.Context(), c.Query("state"), c.Query("code"))
	if err != nil {
		log.WithError(err).Warn("Google sign-in failed")
		authError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// handleGoogleResult lets the client that opened the consent page pick up its session.
func (s *Server) handleGoogleResult(c *gin.Context) {
	if s.Google == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "google sign-in disabled"})
		return
	}
	sess, ok := s.Google.Result(c.Query("state"))
	if !ok {
		c.JSON(http.StatusAccepted, gin.H{"pending": true})
		return
	}
	c.JSON(http.StatusOK, sess)
}
