// Package client talks to the content service's HTTP API on behalf of the terminal
// site: it is the session provider and the chat backend. Content itself goes over gRPC.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"portfolio/internal/prefs"
	"portfolio/internal/session"
)

const keyToken = "session_token"

// Client implements session.Provider and chat.Completer.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	// OpenURL shows the Google consent page to the user.
	OpenURL func(url string)

	PollInterval time.Duration
	PollTimeout  time.Duration

	kv    prefs.Store
	mu    sync.Mutex
	token string
}

// New returns a client of baseURL. kv, if set, keeps the session token across runs.
func New(baseURL string, kv prefs.Store) *Client {
	return &Client{
		BaseURL:      strings.TrimRight(baseURL, "/"),
		HTTP:         &http.Client{Timeout: 30 * time.Second},
		OpenURL:      func(string) {},
		PollInterval: time.Second,
		PollTimeout:  2 * time.Minute,
		kv:           kv,
	}
}

// Token is the current bearer token, or "".
func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *Client) setToken(tok string) {
	c.mu.Lock()
	c.token = tok
	c.mu.Unlock()
	if c.kv != nil {
		_ = c.kv.Set(keyToken, tok)
	}
}

type apiError struct {
	Status int
	Code   string
	Msg    string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Status, e.Msg)
}

// do sends a JSON request and decodes a JSON answer into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, r)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if tok := c.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var e struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return resp.StatusCode, &apiError{Status: resp.StatusCode, Code: e.Code, Msg: e.Error}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode %s: %w", path, err)
		}
	}
	return resp.StatusCode, nil
}

type sessionBody struct {
	UID       string `json:"uid"`
	Email     string `json:"email"`
	Anonymous bool   `json:"anonymous"`
	Token     string `json:"token"`
}

func (c *Client) accept(s sessionBody) session.Identity {
	c.setToken(s.Token)
	return session.Identity{UID: s.UID, Email: s.Email, Anonymous: s.Anonymous, Token: s.Token}
}

// Current restores the saved session; an expired or revoked token counts as none.
func (c *Client) Current(ctx context.Context) (session.Identity, bool, error) {
	if c.Token() == "" && c.kv != nil {
		if tok, ok, err := c.kv.Get(keyToken); err == nil && ok {
			c.mu.Lock()
			c.token = tok
			c.mu.Unlock()
		}
	}
	if c.Token() == "" {
		return session.Identity{}, false, nil
	}
	var s sessionBody
	status, err := c.do(ctx, http.MethodGet, "/auth/me", nil, &s)
	if status == http.StatusUnauthorized || errors.Is(sessionErr(err), session.ErrUserNotFound) {
		c.setToken("")
		return session.Identity{}, false, nil
	}
	if err != nil {
		return session.Identity{}, false, err
	}
	return c.accept(s), true, nil
}

func (c *Client) SignInAnonymously(ctx context.Context) (session.Identity, error) {
	var s sessionBody
	if _, err := c.do(ctx, http.MethodPost, "/auth/anonymous", nil, &s); err != nil {
		return session.Identity{}, err
	}
	return c.accept(s), nil
}

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (session.Identity, error) {
	var s sessionBody
	_, err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{"email": email, "password": password}, &s)
	if err != nil {
		return session.Identity{}, sessionErr(err)
	}
	return c.accept(s), nil
}

// SignInFederated opens the consent page and waits for the server to see the callback.
func (c *Client) SignInFederated(ctx context.Context) (session.Identity, error) {
	var start struct {
		URL   string `json:"url"`
		State string `json:"state"`
	}
	if _, err := c.do(ctx, http.MethodGet, "/auth/google/start", nil, &start); err != nil {
		return session.Identity{}, fmt.Errorf("%w: %v", session.ErrFederatedFailed, err)
	}
	c.OpenURL(start.URL)

	ctx, cancel := context.WithTimeout(ctx, c.PollTimeout)
	defer cancel()
	tick := time.NewTicker(c.PollInterval)
	defer tick.Stop()
	for {
		var s sessionBody
		status, err := c.do(ctx, http.MethodGet, "/auth/google/result?state="+url.QueryEscape(start.State), nil, &s)
		if err != nil {
			return session.Identity{}, fmt.Errorf("%w: %v", session.ErrFederatedFailed, err)
		}
		if status == http.StatusOK {
			return c.accept(s), nil
		}
		select {
		case <-ctx.Done():
			return session.Identity{}, fmt.Errorf("%w: %v", session.ErrFederatedFailed, ctx.Err())
		case <-tick.C:
		}
	}
}

func (c *Client) SignOut(context.Context) error {
	c.setToken("")
	return nil
}

// Complete asks the service's chat endpoint. The service already turns upstream failures
// into display text, so only transport errors surface here.
func (c *Client) Complete(ctx context.Context, text string) (string, error) {
	var out struct {
		Reply string `json:"reply"`
	}
	if _, err := c.do(ctx, http.MethodPost, "/api/chat", map[string]string{"message": text}, &out); err != nil {
		return "", err
	}
	return out.Reply, nil
}

// sessionErr maps a failed auth call to the session sentinel named by its wire code.
func sessionErr(err error) error {
	var e *apiError
	if errors.As(err, &e) && e.Code != "" {
		return session.FromCode(e.Code)
	}
	return err
}
