package identity

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"portfolio/internal/auth"
	"portfolio/internal/session"
	"portfolio/pkg/database"
)

var secret = []byte("s")

func newRepo(t *testing.T) *Repo {
	t.Helper()
	db, err := database.Open(database.DriverPure, filepath.Join(t.TempDir(), "id.db"))
	if err != nil {
		t.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	return NewRepo(db, secret)
}

func TestPasswordSignIn(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	if err := r.EnsureUser(ctx, "admin@x.io", "pw1"); err != nil {
		t.Fatal(err)
	}
	if err := r.EnsureUser(ctx, "admin@x.io", "pw2"); err != nil {
		t.Fatal(err)
	}

	if _, err := r.VerifyLogin(ctx, "admin@x.io", "pw1"); !errors.Is(err, session.ErrWrongPassword) {
		t.Errorf("old password error = %v", err)
	}
	s, err := r.VerifyLogin(ctx, "admin@x.io", "pw2")
	if err != nil {
		t.Fatal(err)
	}
	claims, err := auth.ParseJWT(secret, s.Token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Email != "admin@x.io" || claims.UID != s.UID || claims.Anonymous {
		t.Errorf("claims = %+v", claims)
	}

	if _, err := r.VerifyLogin(ctx, "nobody@x.io", "pw"); !errors.Is(err, session.ErrUserNotFound) {
		t.Errorf("unknown user error = %v", err)
	}
	if _, err := r.VerifyLogin(ctx, "", "pw"); !errors.Is(err, session.ErrMissingCredentials) {
		t.Errorf("missing email error = %v", err)
	}
}

func TestTooManyAttempts(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	if _, err := r.CreateUser(ctx, "a@x.io", "right"); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < MaxAttempts; i++ {
		if _, err := r.VerifyLogin(ctx, "a@x.io", "wrong"); !errors.Is(err, session.ErrWrongPassword) {
			t.Fatalf("attempt %d error = %v", i+1, err)
		}
	}
	if _, err := r.VerifyLogin(ctx, "a@x.io", "right"); !errors.Is(err, session.ErrTooManyAttempts) {
		t.Errorf("error after %d failures = %v", MaxAttempts, err)
	}
}

func TestAnonymousAccounts(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	a, err := r.SignInAnonymously(ctx)
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.SignInAnonymously(ctx)
	if err != nil {
		t.Fatalf("second anonymous account: %v", err)
	}
	if a.UID == b.UID || !a.Anonymous || a.Email != "" {
		t.Errorf("sessions = %+v %+v", a, b)
	}
	again, err := r.Refresh(ctx, a.UID)
	if err != nil || again.UID != a.UID || !again.Anonymous {
		t.Errorf("Refresh = %+v, %v", again, err)
	}
	if _, err := r.Refresh(ctx, "missing"); !errors.Is(err, session.ErrUserNotFound) {
		t.Errorf("Refresh(missing) = %v", err)
	}
}

func TestSignInExternal(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	first, err := r.SignInExternal(ctx, ProviderGoogle, "g@x.io")
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.SignInExternal(ctx, ProviderGoogle, "g@x.io")
	if err != nil {
		t.Fatal(err)
	}
	if first.UID != second.UID {
		t.Error("federated sign-in created a second account")
	}
	if _, err := r.SignInExternal(ctx, ProviderGoogle, ""); !errors.Is(err, session.ErrFederatedFailed) {
		t.Errorf("empty email error = %v", err)
	}
	if NewGoogle(r, "", "", "") != nil {
		t.Error("Google without client id should be disabled")
	}
}
