// Package identity is the content service's sign-in provider: anonymous visitors,
// email/password accounts and Google sign-in, all issuing session tokens.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"portfolio/internal/auth"
	"portfolio/internal/session"
	"portfolio/pkg/database"
)

const (
	ProviderAnonymous = "anonymous"
	ProviderPassword  = "password"
	ProviderGoogle    = "google"
)

// Failed password sign-ins per email before further attempts are refused.
const (
	MaxAttempts   = 5
	AttemptWindow = 15 * time.Minute
)

type Repo struct {
	db       *gorm.DB
	secret   []byte
	attempts *cache.Cache
}

func NewRepo(db *gorm.DB, secret []byte) *Repo {
	return &Repo{db: db, secret: secret, attempts: cache.New(AttemptWindow, time.Minute)}
}

// Session is a signed-in identity with its token.
type Session struct {
	UID       string `json:"uid"`
	Email     string `json:"email,omitempty"`
	Anonymous bool   `json:"anonymous"`
	Token     string `json:"token"`
}

func (r *Repo) issue(a database.Account) (Session, error) {
	email := ""
	if a.Email != nil {
		email = *a.Email
	}
	tok, err := auth.SignJWT(r.secret, a.UID, email, a.Anonymous, auth.TokenTTL)
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}
	return Session{UID: a.UID, Email: email, Anonymous: a.Anonymous, Token: tok}, nil
}

func newUID() string { return strings.ReplaceAll(uuid.NewString(), "-", "") }

func (r *Repo) CreateUser(ctx context.Context, email, password string) (database.Account, error) {
	if email == "" || password == "" {
		return database.Account{}, session.ErrMissingCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return database.Account{}, err
	}
	a := database.Account{UID: newUID(), Email: &email, PasswordHash: string(hash), Provider: ProviderPassword}
	if err := r.db.WithContext(ctx).Create(&a).Error; err != nil {
		return database.Account{}, fmt.Errorf("create account %s: %w", email, err)
	}
	return a, nil
}

// EnsureUser creates the account when missing and resets its password otherwise.
func (r *Repo) EnsureUser(ctx context.Context, email, password string) error {
	a, err := r.byEmail(ctx, email)
	if errors.Is(err, session.ErrUserNotFound) {
		_, err = r.CreateUser(ctx, email, password)
		return err
	}
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&a).Update("password_hash", string(hash)).Error
}

func (r *Repo) byEmail(ctx context.Context, email string) (database.Account, error) {
	var a database.Account
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return a, session.ErrUserNotFound
	}
	return a, err
}

func (r *Repo) SignInAnonymously(ctx context.Context) (Session, error) {
	a := database.Account{UID: newUID(), Provider: ProviderAnonymous, Anonymous: true}
	if err := r.db.WithContext(ctx).Create(&a).Error; err != nil {
		return Session{}, fmt.Errorf("create anonymous account: %w", err)
	}
	return r.issue(a)
}

// VerifyLogin checks email and password. Repeated failures for one email are refused
// with ErrTooManyAttempts until the window passes.
func (r *Repo) VerifyLogin(ctx context.Context, email, password string) (Session, error) {
	if email == "" || password == "" {
		return Session{}, session.ErrMissingCredentials
	}
	if n, ok := r.attempts.Get(email); ok && n.(int) >= MaxAttempts {
		return Session{}, session.ErrTooManyAttempts
	}
	a, err := r.byEmail(ctx, email)
	if err != nil {
		if errors.Is(err, session.ErrUserNotFound) {
			r.fail(email)
		}
		return Session{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		r.fail(email)
		return Session{}, session.ErrWrongPassword
	}
	r.attempts.Delete(email)
	return r.issue(a)
}

func (r *Repo) fail(email string) {
	if err := r.attempts.Add(email, 1, cache.DefaultExpiration); err != nil {
		_, _ = r.attempts.IncrementInt(email, 1)
	}
}

// SignInExternal upserts the account of a federated identity.
func (r *Repo) SignInExternal(ctx context.Context, provider, email string) (Session, error) {
	if email == "" {
		return Session{}, session.ErrFederatedFailed
	}
	a, err := r.byEmail(ctx, email)
	if errors.Is(err, session.ErrUserNotFound) {
		a = database.Account{UID: newUID(), Email: &email, Provider: provider}
		err = r.db.WithContext(ctx).Create(&a).Error
	}
	if err != nil {
		return Session{}, fmt.Errorf("federated account %s: %w", email, err)
	}
	return r.issue(a)
}

// Refresh reissues the session of a still-existing account.
func (r *Repo) Refresh(ctx context.Context, uid string) (Session, error) {
	var a database.Account
	err := r.db.WithContext(ctx).Where("uid = ?", uid).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Session{}, session.ErrUserNotFound
	}
	if err != nil {
		return Session{}, err
	}
	return r.issue(a)
}
