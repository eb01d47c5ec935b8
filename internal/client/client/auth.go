package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/pdfier/internal/client/models"
)

// Me fetches the current user. accessToken is sent as given; an empty token
// still produces "Authorization: Bearer ". A reply without a plan type,
// including an empty body, is ErrBadResponse.
func (c *HTTPClient) Me(ctx context.Context, accessToken string) (*models.User, error) {
	var u models.User
	err := c.call(ctx, request{method: http.MethodGet, path: "/api/v1/users/me", bearer: &accessToken}, &u)
	if err != nil {
		return nil, err
	}
	if u.PlanType == "" {
		return nil, ErrBadResponse
	}
	return &u, nil
}

// Refresh exchanges a refresh token for a new access token.
func (c *HTTPClient) Refresh(ctx context.Context, refreshToken string) (string, error) {
	body, err := jsonBody(map[string]string{"refresh_token": refreshToken})
	if err != nil {
		return "", err
	}
	var out struct {
		AccessToken string `json:"access_token"`
	}
	err = c.call(ctx, request{
		method:      http.MethodPost,
		path:        "/api/v1/auth/refresh",
		body:        body,
		contentType: "application/json",
	}, &out)
	if err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", ErrBadResponse
	}
	return out.AccessToken, nil
}

// Login posts form-encoded credentials.
func (c *HTTPClient) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	form := url.Values{"username": {username}, "password": {password}}
	var out LoginResponse
	err := c.call(ctx, request{
		method:      http.MethodPost,
		path:        "/api/v1/auth/login",
		body:        []byte(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.AccessToken == "" || out.RefreshToken == "" {
		return nil, ErrBadResponse
	}
	return &out, nil
}

func (c *HTTPClient) postJSON(ctx context.Context, path string, in any, out any) error {
	body, err := jsonBody(in)
	if err != nil {
		return err
	}
	return c.call(ctx, request{method: http.MethodPost, path: path, body: body, contentType: "application/json"}, out)
}

func (c *HTTPClient) Signup(ctx context.Context, username, email, password string) (*Challenge, error) {
	var out Challenge
	in := map[string]string{"username": username, "email": email, "password": password}
	if err := c.postJSON(ctx, "/api/v1/auth/signup", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type messageBody struct {
	Message string `json:"message"`
}

func (c *HTTPClient) VerifyOTP(ctx context.Context, userID, otp string) (string, error) {
	var out messageBody
	if err := c.postJSON(ctx, "/api/v1/auth/verify", map[string]string{"user_id": userID, "otp": otp}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *HTTPClient) ResendOTP(ctx context.Context, userID, email string) (string, error) {
	var out messageBody
	if err := c.postJSON(ctx, "/api/v1/auth/resend-otp", map[string]string{"user_id": userID, "email": email}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *HTTPClient) ForgotPassword(ctx context.Context, email string) (*Challenge, error) {
	var out Challenge
	if err := c.postJSON(ctx, "/api/v1/auth/forgot", map[string]string{"email": email}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ResetPassword(ctx context.Context, userID, newPassword string) (string, error) {
	var out messageBody
	in := map[string]string{"user_id": userID, "new_password": newPassword}
	if err := c.postJSON(ctx, "/api/v1/auth/forgot/reset-password", in, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}
