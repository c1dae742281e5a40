// Package auth owns the dashboard session: operator login, the session
// object handed to the API client, and its hydrate/teardown lifecycle.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/admindash/internal/config"
	"github.com/JonMunkholm/admindash/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNoSession          = errors.New("no active session")
)

// Identity is the signed-in operator as shown in the dashboard.
type Identity struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Subject string `json:"subject,omitempty"`
}

// Session is one signed-in browser. It is the token source of the API
// client built for its requests.
type Session struct {
	ID          string    `json:"id"`
	User        Identity  `json:"user"`
	BearerToken string    `json:"token"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Token implements apiclient.TokenSource.
func (s *Session) Token() string {
	if s == nil {
		return ""
	}
	return s.BearerToken
}

// Expired reports whether the session has passed its expiry.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// TeardownFunc releases per-session state when a session ends.
type TeardownFunc func(ctx context.Context, sessionID string) error

// Manager creates, restores and ends sessions.
type Manager struct {
	store      store.Store
	ttl        time.Duration
	email      string
	hash       string
	token      string
	onTeardown []TeardownFunc
}

// NewManager builds a manager for the operator account in cfg. apiToken is
// the bearer token every session presents upstream.
func NewManager(s store.Store, cfg config.AuthConfig, apiToken string) *Manager {
	return &Manager{
		store: s,
		ttl:   cfg.SessionTTL,
		email: strings.TrimSpace(cfg.AdminEmail),
		hash:  cfg.AdminPasswordHash,
		token: apiToken,
	}
}

// OnTeardown registers fn to run when a session ends.
func (m *Manager) OnTeardown(fn TeardownFunc) {
	m.onTeardown = append(m.onTeardown, fn)
}

// TTL is the session lifetime.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Authenticate checks the operator credentials.
func (m *Manager) Authenticate(email, password string) (Identity, error) {
	// Compare the password even for a wrong email so both paths cost a
	// bcrypt round.
	pwErr := CheckPassword(m.hash, password)
	if !strings.EqualFold(strings.TrimSpace(email), m.email) || pwErr != nil {
		return Identity{}, ErrInvalidCredentials
	}

	id := Identity{Email: m.email, Name: nameFromEmail(m.email)}
	if info := InspectToken(m.token); info.Subject != "" {
		id.Subject = info.Subject
	}
	return id, nil
}

// Start persists a new session for id.
func (m *Manager) Start(ctx context.Context, id Identity) (*Session, error) {
	now := time.Now().UTC()
	s := &Session{
		ID:          uuid.NewString(),
		User:        id,
		BearerToken: m.token,
		CreatedAt:   now,
		ExpiresAt:   now.Add(m.ttl),
	}
	if err := store.SetJSON(ctx, m.store, sessionKey(s.ID), s, m.ttl); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return s, nil
}

// Hydrate restores the session with the given id.
func (m *Manager) Hydrate(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrNoSession
	}
	s, err := store.GetJSON[*Session](ctx, m.store, sessionKey(id))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if s == nil || s.Expired(time.Now()) {
		return nil, ErrNoSession
	}
	return s, nil
}

// Save rewrites s, keeping its original expiry.
func (m *Manager) Save(ctx context.Context, s *Session) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return ErrNoSession
	}
	return store.SetJSON(ctx, m.store, sessionKey(s.ID), s, ttl)
}

// Teardown deletes the session and everything registered with OnTeardown.
// Every hook runs even when an earlier one fails.
func (m *Manager) Teardown(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}

	var errs []error
	if err := m.store.Delete(ctx, sessionKey(id)); err != nil {
		errs = append(errs, fmt.Errorf("delete session: %w", err))
	}
	for _, fn := range m.onTeardown {
		if err := fn(ctx, id); err != nil {
			slog.Warn("session teardown hook failed", "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func sessionKey(id string) string {
	return store.Key("session", id)
}

// nameFromEmail turns "jane.doe@example.com" into "jane.doe".
func nameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}
