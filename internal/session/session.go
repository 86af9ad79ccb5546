// Package session tracks who is using the site: an anonymous visitor or the admin.
package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

type State int

const (
	Unknown State = iota
	Anonymous
	AuthenticatedAdmin
	AuthenticatedNonAdmin
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case AuthenticatedAdmin:
		return "admin"
	case AuthenticatedNonAdmin:
		return "non-admin"
	}
	return "unknown"
}

type Identity struct {
	UID       string `json:"uid"`
	Email     string `json:"email,omitempty"`
	Anonymous bool   `json:"anonymous"`
	Token     string `json:"token,omitempty"`
}

// Provider is the identity service.
type Provider interface {
	// Current returns the restored session, if any.
	Current(ctx context.Context) (Identity, bool, error)
	SignInAnonymously(ctx context.Context) (Identity, error)
	SignInWithPassword(ctx context.Context, email, password string) (Identity, error)
	SignInFederated(ctx context.Context) (Identity, error)
	SignOut(ctx context.Context) error
}

// Machine is the session state machine. The admin is the single identity whose email
// equals adminEmail exactly.
type Machine struct {
	p          Provider
	adminEmail string

	mu        sync.Mutex
	state     State
	identity  Identity
	observers []func(State, Identity)
}

func New(p Provider, adminEmail string) *Machine {
	return &Machine{p: p, adminEmail: adminEmail}
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Machine) Identity() Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.identity
}

// Subscribe registers fn for every transition.
func (m *Machine) Subscribe(fn func(State, Identity)) {
	m.mu.Lock()
	m.observers = append(m.observers, fn)
	m.mu.Unlock()
}

func (m *Machine) set(s State, id Identity) {
	m.mu.Lock()
	m.state, m.identity = s, id
	obs := slices.Clone(m.observers)
	m.mu.Unlock()
	for _, fn := range obs {
		fn(s, id)
	}
}

func (m *Machine) classify(id Identity) State {
	switch {
	case id.Anonymous:
		return Anonymous
	case id.Email != "" && id.Email == m.adminEmail:
		return AuthenticatedAdmin
	}
	return AuthenticatedNonAdmin
}

// Start restores the session, or signs in anonymously when there is none.
func (m *Machine) Start(ctx context.Context) error {
	m.set(Unknown, Identity{})
	id, ok, err := m.p.Current(ctx)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	if ok {
		if s := m.classify(id); s != AuthenticatedNonAdmin {
			m.set(s, id)
			return nil
		}
		// a restored non-admin session is dropped like a fresh one
		_ = m.p.SignOut(ctx)
	}
	return m.anonymous(ctx)
}

func (m *Machine) anonymous(ctx context.Context) error {
	id, err := m.p.SignInAnonymously(ctx)
	if err != nil {
		return fmt.Errorf("anonymous sign-in: %w", err)
	}
	m.set(Anonymous, id)
	return nil
}

func (m *Machine) SignInWithPassword(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return ErrMissingCredentials
	}
	id, err := m.p.SignInWithPassword(ctx, email, password)
	if err != nil {
		return err
	}
	return m.admit(ctx, id)
}

func (m *Machine) SignInFederated(ctx context.Context) error {
	id, err := m.p.SignInFederated(ctx)
	if err != nil {
		if errors.Is(err, ErrFederatedFailed) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrFederatedFailed, err)
	}
	return m.admit(ctx, id)
}

// Accept applies an identity obtained outside the machine, such as an OAuth callback.
func (m *Machine) Accept(ctx context.Context, id Identity) error { return m.admit(ctx, id) }

func (m *Machine) admit(ctx context.Context, id Identity) error {
	if s := m.classify(id); s == AuthenticatedAdmin {
		m.set(s, id)
		return nil
	}
	m.set(AuthenticatedNonAdmin, id)
	_ = m.p.SignOut(ctx)
	if err := m.anonymous(ctx); err != nil {
		m.set(Unknown, Identity{})
	}
	return &NotAdminError{Email: id.Email}
}

func (m *Machine) Logout(ctx context.Context) error {
	err := m.p.SignOut(ctx)
	m.set(Unknown, Identity{})
	if aerr := m.anonymous(ctx); aerr != nil {
		return errors.Join(err, aerr)
	}
	return err
}

type Access int

const (
	AccessLoading Access = iota
	AccessAllow
	AccessRedirect
)

// Gate decides what the admin route renders for state.
func Gate(s State) Access {
	switch s {
	case Unknown:
		return AccessLoading
	case AuthenticatedAdmin:
		return AccessAllow
	}
	return AccessRedirect
}
