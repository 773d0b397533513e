// Package services contains the application services of the chat client.
// This file defines the authentication service: login, signup, profile
// reads and writes, token validation, and logout. It is the only layer that
// both talks to the backend and writes the credential store.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"chatterm/internal/client/api"
	"chatterm/internal/client/credstore"
	"chatterm/internal/client/models"
	"chatterm/internal/logging"
)

// ErrSessionExpired is returned by Validate when the token is rejected (or
// is a JWT that already expired). The credential store is cleared before it
// is returned.
var ErrSessionExpired = fmt.Errorf("session expired: %w", api.ErrUnauthorized)

// LoginOptions controls what happens to a token returned by Login/Signup.
//
//   - Remember: store durably (survives restart) vs ephemerally.
//   - AutoStore: write the credential store at all. Off for flows that want
//     the raw payload without side effects.
type LoginOptions struct {
	Remember  bool
	AutoStore bool
}

// DefaultLoginOptions matches the common path: remember and auto-store.
func DefaultLoginOptions() LoginOptions {
	return LoginOptions{Remember: true, AutoStore: true}
}

// AuthService defines the authentication operations used by the CLI.
//
// All methods honor context cancellation. Any 401 from an authorized call
// clears local credentials as a side effect, forcing the session machine
// back to anonymous.
type AuthService interface {
	Login(ctx context.Context, email, password string, opts LoginOptions) (*api.AuthResult, error)
	Signup(ctx context.Context, name, email, password, avatar string, opts LoginOptions) (*api.AuthResult, error)
	GetCurrentUser(ctx context.Context, syncLocal bool) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, upd api.ProfileUpdate) (*models.UserProfile, error)
	ChangePassword(ctx context.Context, oldPassword, newPassword string) (string, error)
	Validate(ctx context.Context) error
	Logout()
}

type authService struct {
	client api.Client
	store  *credstore.Store
	logger logging.Logger
}

// NewAuthService constructs an AuthService bound to the given API client
// and credential store.
func NewAuthService(client api.Client, store *credstore.Store, logger logging.Logger) AuthService {
	return &authService{client: client, store: store, logger: logger}
}

// storeResult persists a successful auth payload according to opts. A
// missing token stores nothing; a failed write is already swallowed by the
// store, so this never fails.
func (a *authService) storeResult(res *api.AuthResult, opts LoginOptions) {
	if !opts.AutoStore || res == nil || res.Token == "" {
		return
	}
	scope := credstore.ScopeEphemeral
	if opts.Remember {
		scope = credstore.ScopeDurable
	}
	a.store.Write(res.Token, res.User, scope)
}

// Login authenticates and, per opts, persists the returned credential. On
// failure the store is left untouched.
func (a *authService) Login(ctx context.Context, email, password string, opts LoginOptions) (*api.AuthResult, error) {
	res, err := a.client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	a.storeResult(res, opts)
	return res, nil
}

// Signup registers a new account, same storage contract as Login.
func (a *authService) Signup(ctx context.Context, name, email, password, avatar string, opts LoginOptions) (*api.AuthResult, error) {
	res, err := a.client.Register(ctx, name, email, password, avatar)
	if err != nil {
		return nil, err
	}
	a.storeResult(res, opts)
	return res, nil
}

// GetCurrentUser reads the caller's profile. With syncLocal, a result with
// a non-empty name refreshes the cached copy in whichever scope holds the
// token.
func (a *authService) GetCurrentUser(ctx context.Context, syncLocal bool) (*models.UserProfile, error) {
	u, err := a.client.CurrentUser(ctx)
	if err != nil {
		return nil, a.onAuthError(ctx, err)
	}
	if syncLocal && u.Name != "" {
		if scope, ok := a.store.ActiveScope(); ok {
			a.store.WriteUser(u, scope)
		}
	}
	return u, nil
}

// UpdateProfile writes the partial update and refreshes the cached user
// record when the backend returns one.
func (a *authService) UpdateProfile(ctx context.Context, upd api.ProfileUpdate) (*models.UserProfile, error) {
	u, err := a.client.UpdateProfile(ctx, upd)
	if err != nil {
		return nil, a.onAuthError(ctx, err)
	}
	if u != nil {
		if scope, ok := a.store.ActiveScope(); ok {
			a.store.WriteUser(u, scope)
		}
	}
	return u, nil
}

// ChangePassword returns the backend confirmation. The credential store is
// never touched on success; the token stays valid.
func (a *authService) ChangePassword(ctx context.Context, oldPassword, newPassword string) (string, error) {
	msg, err := a.client.ChangePassword(ctx, oldPassword, newPassword)
	if err != nil {
		return "", a.onAuthError(ctx, err)
	}
	return msg, nil
}

// Validate confirms the stored token is still accepted. Every failure
// path, including an unreachable backend, clears the store and returns
// ErrSessionExpired: a token that cannot be confirmed does not count as
// authenticated.
func (a *authService) Validate(ctx context.Context) error {
	cred := a.store.Read()
	if cred == nil {
		return ErrSessionExpired
	}

	// Cheap local precheck: an already-expired JWT is rejected without a
	// round trip. Opaque tokens fall through to the backend.
	if expired, ok := jwtExpired(cred.Token, time.Now()); ok && expired {
		a.store.Clear()
		return ErrSessionExpired
	}

	if err := a.client.ValidateToken(ctx); err != nil {
		a.logger.Info(ctx, "token validation failed, clearing credentials", "error", err)
		a.store.Clear()
		return ErrSessionExpired
	}
	return nil
}

// Logout wipes both credential scopes. Idempotent.
func (a *authService) Logout() {
	a.store.Clear()
}

// onAuthError clears local credentials when the backend rejected the token.
func (a *authService) onAuthError(ctx context.Context, err error) error {
	if errors.Is(err, api.ErrUnauthorized) {
		a.logger.Info(ctx, "token rejected, clearing credentials")
		a.store.Clear()
	}
	return err
}

// jwtExpired reports whether token is a parseable JWT whose exp claim is in
// the past. ok is false for opaque tokens or tokens without exp; those are
// left for the backend to judge.
func jwtExpired(token string, now time.Time) (expired, ok bool) {
	claims := jwt.MapClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err != nil {
		return false, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false, false
	}
	return exp.Before(now), true
}
