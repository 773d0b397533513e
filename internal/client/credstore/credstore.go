// Package credstore persists the bearer token and the cached user profile in
// two scopes: a durable one that survives restarts and is shared with other
// processes through the state directory, and an ephemeral one that lives only
// for the current process. Reads prefer the durable scope. Writes and clears
// never fail from the caller's point of view; storage trouble is logged and
// the operation degrades to a no-op.
package credstore

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"

	"chatterm/internal/client/models"
	"chatterm/internal/logging"
)

// Scope selects which persistence area an operation targets.
type Scope string

const (
	// ScopeDurable survives process restarts and is visible to other
	// processes sharing the same state directory.
	ScopeDurable Scope = "durable"
	// ScopeEphemeral is cleared when the process exits.
	ScopeEphemeral Scope = "ephemeral"
)

// Storage keys. KeyToken is the only key the session machine reacts to.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// Credential is the result of a successful Read: the bearer token plus the
// cached profile, if one was stored alongside it.
type Credential struct {
	Token string
	User  *models.UserProfile
	Scope Scope
}

// ChangeEvent describes one key mutation. Consumers must re-read the store
// rather than trust OldValue/NewValue; the values are carried for display
// and debugging only.
type ChangeEvent struct {
	Key      string
	OldValue []byte
	NewValue []byte
}

// Backend is a minimal key-value area. A missing key reads as (nil, nil).
type Backend interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// Store combines the two scopes and an observer registry.
type Store struct {
	durable   Backend
	ephemeral Backend
	logger    logging.Logger

	mu        sync.Mutex
	observers map[int]func(ChangeEvent)
	nextObsID int
}

// New builds a Store over the given backends. Both are required; tests pass
// two in-memory backends, production passes a file backend for the durable
// scope.
func New(durable, ephemeral Backend, logger logging.Logger) *Store {
	return &Store{
		durable:   durable,
		ephemeral: ephemeral,
		logger:    logger,
		observers: make(map[int]func(ChangeEvent)),
	}
}

func (s *Store) backend(scope Scope) Backend {
	if scope == ScopeEphemeral {
		return s.ephemeral
	}
	return s.durable
}

// Write persists the token (required) and user (optional) into the chosen
// scope. Storage failure is logged and swallowed; callers must tolerate the
// resulting no-op. Observers are notified for every key that changed.
func (s *Store) Write(token string, user *models.UserProfile, scope Scope) {
	b := s.backend(scope)

	oldToken := s.getQuiet(b, KeyToken)
	if err := b.Set(KeyToken, []byte(token)); err != nil {
		s.logger.Warn(context.Background(), "credential write failed", "key", KeyToken, "scope", scope, "error", err)
		return
	}
	s.notify(ChangeEvent{Key: KeyToken, OldValue: oldToken, NewValue: []byte(token)})

	oldUser := s.getQuiet(b, KeyUser)
	if user == nil {
		if err := b.Delete(KeyUser); err != nil {
			s.logger.Warn(context.Background(), "credential write failed", "key", KeyUser, "scope", scope, "error", err)
		}
		if oldUser != nil {
			s.notify(ChangeEvent{Key: KeyUser, OldValue: oldUser})
		}
		return
	}

	raw, err := json.Marshal(user)
	if err != nil {
		s.logger.Warn(context.Background(), "profile serialization failed", "error", err)
		return
	}
	if err := b.Set(KeyUser, raw); err != nil {
		s.logger.Warn(context.Background(), "credential write failed", "key", KeyUser, "scope", scope, "error", err)
		return
	}
	s.notify(ChangeEvent{Key: KeyUser, OldValue: oldUser, NewValue: raw})
}

// WriteUser refreshes only the cached profile in the given scope, leaving
// the token untouched. Used when /me or a profile update returns fresher
// data than the cached copy.
func (s *Store) WriteUser(user *models.UserProfile, scope Scope) {
	b := s.backend(scope)
	raw, err := json.Marshal(user)
	if err != nil {
		s.logger.Warn(context.Background(), "profile serialization failed", "error", err)
		return
	}
	old := s.getQuiet(b, KeyUser)
	if err := b.Set(KeyUser, raw); err != nil {
		s.logger.Warn(context.Background(), "credential write failed", "key", KeyUser, "scope", scope, "error", err)
		return
	}
	s.notify(ChangeEvent{Key: KeyUser, OldValue: old, NewValue: raw})
}

// Read returns the stored credential, durable scope first, or nil when no
// scope holds a token. A corrupt cached profile is dropped rather than
// failing the read; the token is what decides authentication.
func (s *Store) Read() *Credential {
	for _, scope := range []Scope{ScopeDurable, ScopeEphemeral} {
		b := s.backend(scope)
		token := s.getQuiet(b, KeyToken)
		if len(token) == 0 {
			continue
		}
		cred := &Credential{Token: string(token), Scope: scope}
		if raw := s.getQuiet(b, KeyUser); len(raw) > 0 {
			var u models.UserProfile
			if err := json.Unmarshal(raw, &u); err != nil {
				s.logger.Warn(context.Background(), "cached profile unreadable, ignoring", "error", err)
			} else {
				cred.User = &u
			}
		}
		return cred
	}
	return nil
}

// ActiveScope reports which scope currently holds a token, durable
// preferred. ok is false when neither does.
func (s *Store) ActiveScope() (Scope, bool) {
	if len(s.getQuiet(s.durable, KeyToken)) > 0 {
		return ScopeDurable, true
	}
	if len(s.getQuiet(s.ephemeral, KeyToken)) > 0 {
		return ScopeEphemeral, true
	}
	return "", false
}

// Clear removes token and user from both scopes. Idempotent; a second call
// is a no-op and produces no notifications.
func (s *Store) Clear() {
	for _, scope := range []Scope{ScopeDurable, ScopeEphemeral} {
		b := s.backend(scope)
		for _, key := range []string{KeyToken, KeyUser} {
			old := s.getQuiet(b, key)
			if err := b.Delete(key); err != nil {
				s.logger.Warn(context.Background(), "credential clear failed", "key", key, "scope", scope, "error", err)
				continue
			}
			if len(old) > 0 {
				s.notify(ChangeEvent{Key: key, OldValue: old})
			}
		}
	}
}

// Subscribe registers fn for change events (local writes and, when a Watcher
// is running, external ones). The returned function removes the
// subscription.
func (s *Store) Subscribe(fn func(ChangeEvent)) func() {
	s.mu.Lock()
	id := s.nextObsID
	s.nextObsID++
	s.observers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// notify delivers ev to all observers synchronously. Delivery order is not
// guaranteed.
func (s *Store) notify(ev ChangeEvent) {
	s.mu.Lock()
	fns := make([]func(ChangeEvent), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// notifyExternal is the entry point for the Watcher. Events whose value did
// not actually change are dropped so an echo of our own write does not fan
// out twice with identical content.
func (s *Store) notifyExternal(ev ChangeEvent) {
	if bytes.Equal(ev.OldValue, ev.NewValue) {
		return
	}
	s.notify(ev)
}

func (s *Store) getQuiet(b Backend, key string) []byte {
	v, err := b.Get(key)
	if err != nil {
		s.logger.Warn(context.Background(), "credential read failed", "key", key, "error", err)
		return nil
	}
	return v
}
