package cli

import (
	"context"
	"os"

	"github.com/betterimg/betterimg/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for an email and a password (twice, to confirm) and
// attempts to create a new account. A successful registration logs the new
// identity in; the screen controller follows to the dashboard through the
// session subscription.
//
// Validation and uniqueness failures are shown to the user and recorded on
// the view's error slot. The password byte slices are wiped before returning.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password: ", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := getPassword("Confirm password: ", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if err := a.session.Register(ctx, email, password, confirm); err != nil {
		a.views.SetError(err.Error())
		printlnFn("Registration failed:", err.Error())
		return err
	}

	printlnFn("Welcome! Your account starts with 10 credits.")
	return nil
}

// Login prompts for credentials and tries to authenticate. On failure the
// session and the presented form stay as they were; the error is shown and
// recorded on the view.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password: ", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.session.Login(ctx, email, password); err != nil {
		a.views.SetError(err.Error())
		printlnFn("Login failed:", err.Error())
		return err
	}

	printlnFn("Logged in.")
	return nil
}

// Logout abandons any pending purchase, clears the session and the persisted
// marker. Never fails.
func (a *App) Logout(ctx context.Context) error {
	a.payments.Cancel()
	a.session.Logout(ctx)
	printlnFn("Logged out.")
	return nil
}

// Toggle switches between the login and register forms. Only valid while
// logged out.
func (a *App) Toggle(ctx context.Context) error {
	if err := a.views.ToggleForm(); err != nil {
		printlnFn(err.Error())
		return err
	}
	printlnFn("Now on the " + a.views.State().String() + " form")
	return nil
}
