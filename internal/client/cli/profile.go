package cli

import (
	"context"
	"os"

	"chatterm/internal/client/api"
	"chatterm/internal/client/validation"
)

// EditProfile shows the current profile and prompts for replacements.
// Pressing enter keeps a field as is; only changed fields are sent.
func (a *App) EditProfile(ctx context.Context) error {
	rctx, cancel := a.reqCtx(ctx)
	current, err := a.auth.GetCurrentUser(rctx, true)
	cancel()
	if err != nil {
		a.reportAuthError(err)
		return err
	}

	printlnFn("Current name:  ", current.Name)
	printlnFn("Current avatar:", current.AvatarURL())

	name, err := getSimpleText(a.reader, "New name (enter to keep)", os.Stdout)
	if err != nil {
		return err
	}
	if name != "" {
		if err := validation.Name(name); err != nil {
			printlnFn(err.Error())
			return err
		}
	}

	avatar, err := getSimpleText(a.reader, "New avatar URL (enter to keep)", os.Stdout)
	if err != nil {
		return err
	}
	if avatar != "" {
		if err := validation.AvatarURL(avatar); err != nil {
			printlnFn(err.Error())
			return err
		}
	}

	var upd api.ProfileUpdate
	if name != "" {
		upd.Name = &name
	}
	if avatar != "" {
		upd.Avatar = &avatar
	}
	if upd.Name == nil && upd.Avatar == nil {
		printlnFn("Nothing to change.")
		return nil
	}

	rctx, cancel = a.reqCtx(ctx)
	defer cancel()

	if _, err := a.auth.UpdateProfile(rctx, upd); err != nil {
		a.reportAuthError(err)
		return err
	}

	printlnFn("Profile updated.")
	return nil
}

// ChangePassword prompts for the old and new passwords and submits the
// change. Credentials in the store are left untouched either way.
func (a *App) ChangePassword(ctx context.Context) error {
	printlnFn("Current password")
	oldPassword, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	printlnFn("New password")
	newPassword, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	if err := validation.Password(newPassword); err != nil {
		printlnFn(err.Error())
		return err
	}

	rctx, cancel := a.reqCtx(ctx)
	defer cancel()

	msg, err := a.auth.ChangePassword(rctx, oldPassword, newPassword)
	if err != nil {
		a.reportAuthError(err)
		return err
	}

	if msg != "" {
		printlnFn(msg)
	} else {
		printlnFn("Password changed.")
	}
	return nil
}
