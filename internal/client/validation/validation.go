// Package validation implements the client-side form constraints. These are
// checked before any network call; a value that fails here is never sent to
// the backend.
package validation

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	ErrInvalidEmail    = errors.New("enter a valid email address")
	ErrPasswordTooWeak = errors.New("password must be at least 6 characters")
	ErrNameTooShort    = errors.New("name must be at least 2 characters")
	ErrInvalidAvatar   = errors.New("avatar must be an http(s) URL")
)

const minPasswordLen = 6

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Email checks the address shape after trimming surrounding whitespace.
func Email(email string) error {
	if !emailRe.MatchString(strings.TrimSpace(email)) {
		return ErrInvalidEmail
	}
	return nil
}

// Password enforces the minimum length.
func Password(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLen {
		return ErrPasswordTooWeak
	}
	return nil
}

// Name requires at least two characters after trimming.
func Name(name string) error {
	if utf8.RuneCountInString(strings.TrimSpace(name)) < 2 {
		return ErrNameTooShort
	}
	return nil
}

// AvatarURL accepts an empty value (a placeholder is generated elsewhere)
// or an absolute http/https URL.
func AvatarURL(avatar string) error {
	a := strings.TrimSpace(avatar)
	if a == "" {
		return nil
	}
	lower := strings.ToLower(a)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return ErrInvalidAvatar
	}
	return nil
}
