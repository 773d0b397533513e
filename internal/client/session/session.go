// Package session derives the logged-in flag from the credential store and
// keeps it current: explicit logins and logouts, 401-driven clears, and
// token changes made by other processes all funnel into one re-derivation
// path. The flag is never stored; it is always recomputed from the store.
package session

import (
	"context"
	"sync"

	"chatterm/internal/client/credstore"
	"chatterm/internal/logging"
)

// State is the session machine's current position.
type State string

const (
	// StateUnknown exists only between construction and the first Refresh,
	// so callers can suppress output until the initial check completes. It
	// is never branched on beyond that; IsLoggedIn treats it as false.
	StateUnknown State = "unknown"

	StateAnonymous     State = "anonymous"
	StateAuthenticated State = "authenticated"
)

// Manager is the session state machine. One instance per process; it
// subscribes to the credential store at construction and stays subscribed
// until Close.
type Manager struct {
	store  *credstore.Store
	logger logging.Logger

	mu      sync.Mutex
	state   State
	subs    map[int]func(old, new State)
	nextSub int

	unsubscribe func()
}

// NewManager builds a Manager in StateUnknown and wires it to the store.
// Call Refresh once the rest of the application is ready for the initial
// derivation.
func NewManager(store *credstore.Store, logger logging.Logger) *Manager {
	m := &Manager{
		store:  store,
		logger: logger,
		state:  StateUnknown,
		subs:   make(map[int]func(old, new State)),
	}
	m.unsubscribe = store.Subscribe(m.HandleChange)
	return m
}

// State returns the current state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// IsLoggedIn reports whether the machine is authenticated. Unknown counts
// as not logged in.
func (m *Manager) IsLoggedIn() bool {
	return m.State() == StateAuthenticated
}

// Refresh re-reads the credential store and re-derives the state: a token
// present means authenticated. Observers are notified only on an actual
// transition.
func (m *Manager) Refresh() State {
	next := StateAnonymous
	if m.store.Read() != nil {
		next = StateAuthenticated
	}

	m.mu.Lock()
	prev := m.state
	m.state = next
	var fns []func(old, new State)
	if prev != next {
		fns = make([]func(old, new State), 0, len(m.subs))
		for _, fn := range m.subs {
			fns = append(fns, fn)
		}
	}
	m.mu.Unlock()

	if prev != next {
		m.logger.Debug(context.Background(), "session state changed", "from", prev, "to", next)
		for _, fn := range fns {
			fn(prev, next)
		}
	}
	return next
}

// HandleChange reacts to a credential store notification. Only the token
// key matters; everything else is ignored. The event payload is never
// trusted: the store is re-read, so a notification that lies about the new
// value cannot desynchronize the machine.
func (m *Manager) HandleChange(ev credstore.ChangeEvent) {
	if ev.Key != credstore.KeyToken {
		return
	}
	m.Refresh()
}

// OnTransition registers fn to run on every state change. The returned
// function removes the registration.
func (m *Manager) OnTransition(fn func(old, new State)) func() {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// Close detaches the manager from the store.
func (m *Manager) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}
