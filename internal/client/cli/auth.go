package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/pdfier/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

// readSecret prompts for a password and hands back a string copy. The raw
// bytes are wiped.
func (a *App) readSecret(prompt string) (string, error) {
	pw, err := getPassword(a.reader, prompt, a.out)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)
	return string(pw), nil
}

// Login prompts for credentials and authenticates. On success the session
// switches to the member and the greeting names the plan.
func (a *App) Login(ctx context.Context) error {
	if a.isLoggedIn() {
		a.printf("Already logged in, use logout first\n")
		return nil
	}

	username, err := getSimpleText(a.reader, "Enter username or email", a.out)
	if err != nil {
		return err
	}
	password, err := a.readSecret("Enter password")
	if err != nil {
		return err
	}

	user, err := a.authService.Login(ctx, username, password)
	if err != nil {
		return err
	}
	a.printf("Welcome, %s (%s plan)\n", user.Name, user.PlanType)
	return nil
}

// Signup creates an account, then walks through the OTP step. Typing
// "resend" at the code prompt asks for a new code.
func (a *App) Signup(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Choose a username", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := a.readSecret("Choose a password")
	if err != nil {
		return err
	}
	confirm, err := a.readSecret("Repeat password")
	if err != nil {
		return err
	}
	if password != confirm {
		return common.ErrPasswordMismatch
	}

	challenge, err := a.authService.Signup(ctx, username, email, password)
	if err != nil {
		return err
	}
	a.printf("%s\n", challenge.Message)

	if err := a.verify(ctx, challenge.UserID, email); err != nil {
		return err
	}
	a.printf("Account verified, you can log in now\n")
	return nil
}

// verify reads codes until one is accepted or the input is empty.
func (a *App) verify(ctx context.Context, userID, email string) error {
	for {
		code, err := getSimpleText(a.reader, "Enter the code from your email (or 'resend')", a.out)
		if err != nil {
			return err
		}
		switch strings.ToLower(code) {
		case "":
			return fmt.Errorf("%w: verification code is required", common.ErrValidation)
		case "resend":
			msg, err := a.authService.ResendOTP(ctx, userID, email)
			if err != nil {
				return err
			}
			a.printf("%s\n", msg)
			continue
		}

		msg, err := a.authService.VerifyOTP(ctx, userID, code)
		if err != nil {
			return err
		}
		if msg != "" {
			a.printf("%s\n", msg)
		}
		return nil
	}
}

// Forgot runs password recovery: email, code, new password.
func (a *App) Forgot(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter your account email", a.out)
	if err != nil {
		return err
	}

	challenge, err := a.authService.ForgotPassword(ctx, email)
	if err != nil {
		return err
	}
	a.printf("%s\n", challenge.Message)

	if err := a.verify(ctx, challenge.UserID, email); err != nil {
		return err
	}

	password, err := a.readSecret("New password")
	if err != nil {
		return err
	}
	confirm, err := a.readSecret("Repeat new password")
	if err != nil {
		return err
	}

	msg, err := a.authService.ResetPassword(ctx, challenge.UserID, password, confirm)
	if err != nil {
		return err
	}
	if msg == "" {
		msg = "Password updated"
	}
	a.printf("%s\n", msg)
	return nil
}

// Logout drops back to a guest session.
func (a *App) Logout(ctx context.Context) error {
	a.authService.Logout(ctx)
	a.printf("Logged out\n")
	return nil
}
