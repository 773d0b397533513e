// Package api implements the REST client for the chat backend. It covers
// the auth surface (login, register, me, profile, password, validate) and
// the chat endpoint, attaches bearer tokens to authorized calls, and
// normalizes every failure into a single *Error value.
package api

import (
	"context"

	"chatterm/internal/client/models"
)

// TokenSource supplies the current bearer token, or "" when no scope holds
// one. A call made with an empty token proceeds without the Authorization
// header; the backend is expected to reject it.
type TokenSource func() string

// AuthResult is the raw payload of a successful login or register call.
type AuthResult struct {
	Token   string              `json:"token"`
	User    *models.UserProfile `json:"user"`
	Message string              `json:"message,omitempty"`
}

// ProfileUpdate carries the fields of a partial profile write. Nil fields
// are omitted from the request body.
type ProfileUpdate struct {
	Name   *string `json:"name,omitempty"`
	Avatar *string `json:"avatar,omitempty"`
}

// Client is the backend API surface used by the services layer.
type Client interface {
	// Login posts credentials and returns the raw backend payload. It does
	// not touch local storage; that is the services layer's job.
	Login(ctx context.Context, email, password string) (*AuthResult, error)

	// Register creates an account, same contract as Login.
	Register(ctx context.Context, name, email, password, avatar string) (*AuthResult, error)

	// CurrentUser reads the caller's own profile. Both the nested
	// {user:{...}} and the flat response shape are accepted and normalized;
	// a response missing id or email is an error.
	CurrentUser(ctx context.Context) (*models.UserProfile, error)

	// UpdateProfile writes name and/or avatar. Returns the refreshed
	// profile when the backend includes one.
	UpdateProfile(ctx context.Context, upd ProfileUpdate) (*models.UserProfile, error)

	// ChangePassword returns the backend confirmation message only.
	ChangePassword(ctx context.Context, oldPassword, newPassword string) (string, error)

	// ValidateToken confirms the token is still accepted. Any failure means
	// "not authenticated"; callers clear local credentials on error.
	ValidateToken(ctx context.Context) error

	// Chat sends one message and returns the assistant reply.
	Chat(ctx context.Context, message string) (string, error)
}
