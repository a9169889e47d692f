// Palaver - Social Network API Client and Sync Engine
// Copyright 2026 Palaver Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/palaver-net/palaver

// Package session manages the authentication lifecycle: rehydrating a
// stored token at startup, logging in and out, and exposing the current
// signed-in member to the rest of the engine.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/palaver-net/palaver/internal/logging"
	"github.com/palaver-net/palaver/internal/metrics"
	"github.com/palaver-net/palaver/internal/models"
	"github.com/palaver-net/palaver/internal/rest"
	"github.com/palaver-net/palaver/internal/store"
)

// State is the session lifecycle state.
type State int

const (
	// StateInitializing holds until stored credentials have been checked.
	StateInitializing State = iota
	// StateUnauthenticated means no valid token is installed.
	StateUnauthenticated
	// StateAuthenticated means a verified token and member are loaded.
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Manager owns the session state machine. All transitions are
// serialized; readers get a consistent state/member pair.
type Manager struct {
	api   rest.API
	store *store.Store

	mu       sync.RWMutex
	state    State
	member   *models.Member
	onChange func(State)
}

// NewManager creates a session manager in StateInitializing.
func NewManager(api rest.API, st *store.Store) *Manager {
	m := &Manager{
		api:   api,
		store: st,
		state: StateInitializing,
	}
	metrics.SessionState.Set(float64(StateInitializing))
	return m
}

// OnChange registers a callback invoked after every state transition.
// Must be called before Rehydrate; the callback runs outside the lock.
func (m *Manager) OnChange(fn func(State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = fn
}

// State returns the current session state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Member returns the signed-in member, or nil when unauthenticated.
func (m *Manager) Member() *models.Member {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.member
}

// Rehydrate restores the session from the stored token. An invalid or
// missing token lands in StateUnauthenticated without error: startup
// with a stale token is normal, not a failure. Only transport-level
// problems (store I/O, network) are returned.
func (m *Manager) Rehydrate(ctx context.Context) error {
	token, err := m.store.LoadToken()
	if err == store.ErrNoToken {
		logging.Debug().Msg("No stored token; starting unauthenticated")
		m.transition(StateUnauthenticated, nil)
		return nil
	}
	if err != nil {
		m.transition(StateUnauthenticated, nil)
		return fmt.Errorf("rehydrate: %w", err)
	}

	m.api.SetToken(token)
	member, err := m.api.CurrentMember(ctx)
	if err != nil {
		if rest.IsAuth(err) {
			// Token revoked or expired server-side. Clear it quietly.
			logging.Info().Msg("Stored token rejected; clearing session")
			m.api.ClearToken()
			if clearErr := m.store.ClearToken(); clearErr != nil {
				logging.Err(clearErr).Msg("Failed to clear rejected token")
			}
			m.transition(StateUnauthenticated, nil)
			return nil
		}
		// Network or server trouble: keep the token installed so a later
		// retry can succeed, but report unauthenticated for now.
		m.transition(StateUnauthenticated, nil)
		return fmt.Errorf("rehydrate: verify token: %w", err)
	}

	if saveErr := m.store.SaveMember(member); saveErr != nil {
		logging.Err(saveErr).Msg("Failed to snapshot member profile")
	}
	logging.Info().Int64("member_id", member.ID).Str("username", member.Username).Msg("Session restored")
	m.transition(StateAuthenticated, member)
	return nil
}

// Login authenticates with credentials. The token is persisted before
// the in-memory state flips, so a crash between the two leaves a
// restorable session rather than a phantom one.
func (m *Manager) Login(ctx context.Context, req *models.LoginRequest) (*models.Member, error) {
	grant, err := m.api.Login(ctx, req)
	if err != nil {
		return nil, err
	}
	return m.installGrant(grant)
}

// Register creates an account and signs in with the granted token.
func (m *Manager) Register(ctx context.Context, req *models.RegisterRequest) (*models.Member, error) {
	grant, err := m.api.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	return m.installGrant(grant)
}

func (m *Manager) installGrant(grant *models.TokenGrant) (*models.Member, error) {
	if err := m.store.SaveToken(grant.Token); err != nil {
		return nil, fmt.Errorf("persist token: %w", err)
	}
	if err := m.store.SaveMember(&grant.Member); err != nil {
		logging.Err(err).Msg("Failed to snapshot member profile")
	}

	m.api.SetToken(grant.Token)
	member := grant.Member
	logging.Info().Int64("member_id", member.ID).Str("username", member.Username).Msg("Signed in")
	m.transition(StateAuthenticated, &member)
	return &member, nil
}

// Logout revokes the token remotely on a best-effort basis and always
// clears local state. A failed revocation never blocks sign-out.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.api.Logout(ctx); err != nil {
		logging.Err(err).Msg("Remote logout failed; clearing local session anyway")
	}

	m.api.ClearToken()
	err := m.store.ClearToken()
	m.transition(StateUnauthenticated, nil)
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	logging.Info().Msg("Signed out")
	return nil
}

// Invalidate drops the session after the backend rejected the token
// mid-run. Pollers call this when they hit an auth error.
func (m *Manager) Invalidate() {
	m.api.ClearToken()
	if err := m.store.ClearToken(); err != nil {
		logging.Err(err).Msg("Failed to clear invalidated token")
	}
	logging.Warn().Msg("Session invalidated by backend")
	m.transition(StateUnauthenticated, nil)
}

// RefreshMember re-fetches the signed-in member's profile, for example
// after a profile update.
func (m *Manager) RefreshMember(ctx context.Context) (*models.Member, error) {
	member, err := m.api.CurrentMember(ctx)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.member = member
	m.mu.Unlock()

	if err := m.store.SaveMember(member); err != nil {
		logging.Err(err).Msg("Failed to snapshot member profile")
	}
	return member, nil
}

func (m *Manager) transition(next State, member *models.Member) {
	m.mu.Lock()
	prev := m.state
	m.state = next
	m.member = member
	fn := m.onChange
	m.mu.Unlock()

	metrics.SessionState.Set(float64(next))
	if prev != next {
		logging.Debug().Str("from", prev.String()).Str("to", next.String()).Msg("Session state changed")
	}
	if fn != nil {
		fn(next)
	}
}
