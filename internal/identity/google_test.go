package identity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"golang.org/x/oauth2"

	"portfolio/internal/session"
)

func fakeGoogle(t *testing.T, verified bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if verified {
			_, _ = w.Write([]byte(`{"email":"g@x.io","email_verified":true}`))
			return
		}
		_, _ = w.Write([]byte(`{"email":"g@x.io","email_verified":false}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newGoogle(t *testing.T, verified bool) *Google {
	t.Helper()
	srv := fakeGoogle(t, verified)
	g := NewGoogle(newRepo(t), "client", "secret", "http://localhost/auth/google/callback")
	g.conf.Endpoint = oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token", AuthStyle: oauth2.AuthStyleInParams}
	g.userInfo = srv.URL + "/userinfo"
	return g
}

func TestGoogleFlow(t *testing.T) {
	g := newGoogle(t, true)
	ctx := context.Background()

	consent, state, err := g.Start()
	if err != nil {
		t.Fatal(err)
	}
	u, err := url.Parse(consent)
	if err != nil || u.Query().Get("state") != state {
		t.Fatalf("consent URL %q does not carry state %q", consent, state)
	}

	if _, ok := g.Result(state); ok {
		t.Error("Result before callback should be empty")
	}
	sess, err := g.Callback(ctx, state, "code")
	if err != nil {
		t.Fatalf("Callback failed: %v", err)
	}
	if sess.Email != "g@x.io" || sess.Token == "" {
		t.Errorf("unexpected session %+v", sess)
	}
	got, ok := g.Result(state)
	if !ok || got.UID != sess.UID {
		t.Errorf("Result = %+v, %v", got, ok)
	}
	if _, ok := g.Result(state); ok {
		t.Error("Result must be taken once")
	}

	if _, err := g.Callback(ctx, state, "code"); !errors.Is(err, session.ErrFederatedFailed) {
		t.Errorf("reused state error = %v", err)
	}
}

func TestGoogleRequiresVerifiedEmail(t *testing.T) {
	g := newGoogle(t, false)
	_, state, err := g.Start()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.Callback(context.Background(), state, "code"); !errors.Is(err, session.ErrFederatedFailed) {
		t.Errorf("unverified email error = %v", err)
	}
}
