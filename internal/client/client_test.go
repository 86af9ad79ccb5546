package client_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"

	"portfolio/internal/chat"
	"portfolio/internal/client"
	"portfolio/internal/identity"
	"portfolio/internal/prefs"
	"portfolio/internal/server"
	"portfolio/internal/session"
	"portfolio/internal/stats"
	"portfolio/internal/store/storetest"
	"portfolio/pkg/database"
)

const adminEmail = "admin@example.com"

func serve(t *testing.T) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	st := storetest.New(t)
	db, err := database.Open(database.DriverPure, filepath.Join(t.TempDir(), "accounts.db"))
	if err != nil {
		t.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = database.Close(db) })

	secret := []byte("test-secret")
	repo := identity.NewRepo(db, secret)
	if err := repo.EnsureUser(context.Background(), adminEmail, "pw"); err != nil {
		t.Fatal(err)
	}
	srv := server.New(server.Deps{
		Store:      st,
		Identity:   repo,
		Tracker:    stats.New(st, "test"),
		Secret:     secret,
		AdminEmail: adminEmail,
	})
	hs := httptest.NewServer(srv.Router())
	t.Cleanup(hs.Close)
	return hs.URL
}

func TestSessionPersistsAcrossClients(t *testing.T) {
	base := serve(t)
	ctx := context.Background()
	kv := prefs.NewMemory()

	c := client.New(base, kv)
	if _, ok, err := c.Current(ctx); ok || err != nil {
		t.Fatalf("Fresh client must have no session, got %v %v", ok, err)
	}
	id, err := c.SignInAnonymously(ctx)
	if err != nil {
		t.Fatalf("SignInAnonymously failed: %v", err)
	}
	if !id.Anonymous || id.UID == "" || c.Token() == "" {
		t.Errorf("Unexpected anonymous identity %+v", id)
	}

	again := client.New(base, kv)
	restored, ok, err := again.Current(ctx)
	if err != nil || !ok || restored.UID != id.UID {
		t.Errorf("Expected restored session %s, got %+v %v %v", id.UID, restored, ok, err)
	}

	if err := again.SignOut(ctx); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := client.New(base, kv).Current(ctx); ok {
		t.Error("Signed out session must not be restored")
	}
}

func TestPasswordErrorsCarrySentinels(t *testing.T) {
	c := client.New(serve(t), nil)
	ctx := context.Background()
	if _, err := c.SignInWithPassword(ctx, adminEmail, "wrong"); !errors.Is(err, session.ErrWrongPassword) {
		t.Errorf("Expected ErrWrongPassword, got %v", err)
	}
	if _, err := c.SignInWithPassword(ctx, "nobody@example.com", "x"); !errors.Is(err, session.ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}

func TestMachineOverHTTP(t *testing.T) {
	c := client.New(serve(t), nil)
	ctx := context.Background()
	m := session.New(c, adminEmail)
	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if m.State() != session.Anonymous {
		t.Fatalf("Expected anonymous start, got %v", m.State())
	}
	if err := m.SignInWithPassword(ctx, adminEmail, "pw"); err != nil {
		t.Fatalf("Admin sign-in failed: %v", err)
	}
	if m.State() != session.AuthenticatedAdmin || m.Identity().Email != adminEmail {
		t.Errorf("Expected admin session, got %v %+v", m.State(), m.Identity())
	}
}

func TestFederatedDisabled(t *testing.T) {
	c := client.New(serve(t), nil)
	if _, err := c.SignInFederated(context.Background()); !errors.Is(err, session.ErrFederatedFailed) {
		t.Errorf("Expected ErrFederatedFailed, got %v", err)
	}
}

func TestChatThroughService(t *testing.T) {
	c := client.New(serve(t), nil)
	reply, err := chat.Reply(context.Background(), c, "Halo")
	if err != nil || reply != chat.NotConfigured {
		t.Errorf("Expected the not-configured text, got %q %v", reply, err)
	}
}
