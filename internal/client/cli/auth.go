package cli

import (
	"context"
	"errors"
	"os"

	"chatterm/internal/client/api"
	"chatterm/internal/client/services"
	"chatterm/internal/client/validation"
)

// getSimpleText, getPassword and getYesNo are indirections used to
// facilitate testing; they point at the interactive input helpers.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getYesNo      = GetYesNo
)

// Login prompts for credentials, validates them locally, and attempts to
// authenticate. A validation failure is reported and stops the command
// before any network traffic. On success the credential store is written
// ("stay signed in" selects the durable scope) and the session machine
// flips to authenticated through the store notification.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	if err := validation.Email(email); err != nil {
		printlnFn(err.Error())
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	if err := validation.Password(password); err != nil {
		printlnFn(err.Error())
		return err
	}

	remember, err := getYesNo(a.reader, "Stay signed in?", true, os.Stdout)
	if err != nil {
		return err
	}

	rctx, cancel := a.reqCtx(ctx)
	defer cancel()

	res, err := a.auth.Login(rctx, email, password, services.LoginOptions{Remember: remember, AutoStore: true})
	if err != nil {
		printlnFn("Login failed:", err.Error())
		return err
	}

	if res.Message != "" {
		printlnFn(res.Message)
	} else {
		printlnFn("Logged in.")
	}
	return nil
}

// Signup prompts for the registration fields, validates them locally, and
// creates the account. The returned token is stored the same way Login
// stores it.
func (a *App) Signup(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", os.Stdout)
	if err != nil {
		return err
	}
	if err := validation.Name(name); err != nil {
		printlnFn(err.Error())
		return err
	}

	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	if err := validation.Email(email); err != nil {
		printlnFn(err.Error())
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	if err := validation.Password(password); err != nil {
		printlnFn(err.Error())
		return err
	}

	avatar, err := getSimpleText(a.reader, "Avatar URL (optional)", os.Stdout)
	if err != nil {
		return err
	}
	if err := validation.AvatarURL(avatar); err != nil {
		printlnFn(err.Error())
		return err
	}

	remember, err := getYesNo(a.reader, "Stay signed in?", true, os.Stdout)
	if err != nil {
		return err
	}

	rctx, cancel := a.reqCtx(ctx)
	defer cancel()

	res, err := a.auth.Signup(rctx, name, email, password, avatar, services.LoginOptions{Remember: remember, AutoStore: true})
	if err != nil {
		printlnFn("Signup failed:", err.Error())
		return err
	}

	if res.Message != "" {
		printlnFn(res.Message)
	} else {
		printlnFn("Account created.")
	}
	return nil
}

// Whoami fetches the caller's profile, refreshing the local cache.
func (a *App) Whoami(ctx context.Context) error {
	rctx, cancel := a.reqCtx(ctx)
	defer cancel()

	u, err := a.auth.GetCurrentUser(rctx, true)
	if err != nil {
		a.reportAuthError(err)
		return err
	}

	printlnFn("Name: ", u.Name)
	printlnFn("Email:", u.Email)
	printlnFn("Avatar:", u.AvatarURL())
	return nil
}

// Logout clears both credential scopes; the session machine observes the
// store change and drops to anonymous.
func (a *App) Logout(ctx context.Context) error {
	a.auth.Logout()
	printlnFn("Logged out.")
	return nil
}

// reportAuthError prints a friendly line for a failed authorized call; a
// 401 additionally means the credentials were already cleared.
func (a *App) reportAuthError(err error) {
	if errors.Is(err, api.ErrUnauthorized) {
		printlnFn("Your session has expired. Please log in again.")
		return
	}
	printlnFn("Error:", err.Error())
}
