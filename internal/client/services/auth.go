// Package services contains the application services of the pdfier client.
// This file defines the authentication service: login, logout, signup with
// OTP verification, and the forgot-password flow.
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/pdfier/internal/client/client"
	"github.com/dmitrijs2005/pdfier/internal/client/models"
	"github.com/dmitrijs2005/pdfier/internal/client/session"
	"github.com/dmitrijs2005/pdfier/internal/common"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: exchange credentials, resolve the user, commit the session.
//   - Logout: drop the session back to a guest. Never fails.
//   - Signup / VerifyOTP / ResendOTP: account creation with a one-time code.
//   - ForgotPassword / ResetPassword: password recovery with a one-time code.
//
// All methods must honor context cancellation/timeouts.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*models.User, error)
	Logout(ctx context.Context)
	Signup(ctx context.Context, username, email, password string) (*client.Challenge, error)
	VerifyOTP(ctx context.Context, userID, otp string) (string, error)
	ResendOTP(ctx context.Context, userID, email string) (string, error)
	ForgotPassword(ctx context.Context, email string) (*client.Challenge, error)
	ResetPassword(ctx context.Context, userID, password, confirm string) (string, error)
}

type authService struct {
	api     client.AuthAPI
	session session.Session
}

// NewAuthService constructs an AuthService bound to the given API client and
// session.
func NewAuthService(api client.AuthAPI, s session.Session) AuthService {
	return &authService{api: api, session: s}
}

// Login authenticates against the backend. When the login answer does not
// embed the user, it is fetched with the new access token before the session
// is committed, so nothing is stored for a half-finished login.
func (a *authService) Login(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", common.ErrValidation)
	}

	resp, err := a.api.Login(ctx, username, password)
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}

	user := resp.User
	if user == nil {
		user, err = a.api.Me(ctx, resp.AccessToken)
		if err != nil {
			return nil, fmt.Errorf("fetch user error: %w", err)
		}
	}

	if err := a.session.Login(ctx, *user, resp.RefreshToken, resp.AccessToken); err != nil {
		return nil, fmt.Errorf("session error: %w", err)
	}
	return user, nil
}

func (a *authService) Logout(ctx context.Context) {
	a.session.Logout(ctx)
}

func (a *authService) Signup(ctx context.Context, username, email, password string) (*client.Challenge, error) {
	username, email = strings.TrimSpace(username), strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", common.ErrValidation)
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: invalid email address", common.ErrValidation)
	}
	return a.api.Signup(ctx, username, email, password)
}

func (a *authService) VerifyOTP(ctx context.Context, userID, otp string) (string, error) {
	otp = strings.TrimSpace(otp)
	if userID == "" || otp == "" {
		return "", fmt.Errorf("%w: user id and code are required", common.ErrValidation)
	}
	return a.api.VerifyOTP(ctx, userID, otp)
}

func (a *authService) ResendOTP(ctx context.Context, userID, email string) (string, error) {
	return a.api.ResendOTP(ctx, userID, email)
}

func (a *authService) ForgotPassword(ctx context.Context, email string) (*client.Challenge, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", common.ErrValidation)
	}
	return a.api.ForgotPassword(ctx, email)
}

// ResetPassword sets a new password once the OTP was verified. The new
// password must match its confirmation; no request is made otherwise.
func (a *authService) ResetPassword(ctx context.Context, userID, password, confirm string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("%w: password is required", common.ErrValidation)
	}
	if password != confirm {
		return "", common.ErrPasswordMismatch
	}
	return a.api.ResetPassword(ctx, userID, password)
}
