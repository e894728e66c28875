// Package session owns the admin credential: where it is persisted, how it
// is attached to requests, and what happens when the server rejects it.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Provider is the only way the rest of the program reads or changes the
// bearer credential.
type Provider interface {
	// Get returns the current token, or "" when unauthenticated.
	Get() string
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
	// HandleUnauthorized is called by the transport when the server answers
	// 401 to a request that carried sent ("" when none). It must be safe to
	// call from many goroutines at once.
	HandleUnauthorized(sent string)
}

// Manager is the Provider backed by a Store. The token is cached in memory
// after the first load.
type Manager struct {
	store Store

	mu         sync.Mutex
	token      string
	generation uint64 // bumped by every Set
	notified   uint64 // generation whose logout has been reported
	observer   func()
}

var _ Provider = (*Manager)(nil)

// NewManager loads any persisted token from store.
func NewManager(ctx context.Context, store Store) (*Manager, error) {
	tok, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &Manager{store: store, token: tok, generation: 1}, nil
}

// Get returns the cached token.
func (m *Manager) Get() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// Authenticated reports whether a credential is present. The server may
// still reject it; that surfaces through HandleUnauthorized.
func (m *Manager) Authenticated() bool {
	return m.Get() != ""
}

// Set persists token and starts a new session.
func (m *Manager) Set(ctx context.Context, token string) error {
	if token == "" {
		return m.Clear(ctx)
	}
	if err := m.store.Save(ctx, token); err != nil {
		return err
	}
	m.mu.Lock()
	m.token = token
	m.generation++
	m.mu.Unlock()
	return nil
}

// Clear removes the credential from memory and from the store.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()
	return m.store.Delete(ctx)
}

// OnUnauthorized registers the observer told about forced logouts. A second
// call replaces the first; there is only ever one observer.
func (m *Manager) OnUnauthorized(fn func()) {
	m.mu.Lock()
	m.observer = fn
	m.mu.Unlock()
}

// HandleUnauthorized clears the credential and notifies the observer. The
// observer runs at most once per session no matter how many in-flight
// requests fail. A rejection of any token other than the current one is
// ignored, so a late answer to an old session cannot end a newer login.
func (m *Manager) HandleUnauthorized(sent string) {
	m.mu.Lock()
	if sent != m.token {
		m.mu.Unlock()
		return
	}
	had := m.token != ""
	m.token = ""
	var fn func()
	if m.notified != m.generation {
		m.notified = m.generation
		fn = m.observer
	}
	m.mu.Unlock()

	if had {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.store.Delete(ctx); err != nil {
			log.Warn().Err(err).Msg("session: failed to delete persisted token")
		}
	}
	if fn != nil {
		fn()
	}
}
