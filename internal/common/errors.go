package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Auth errors.
	ErrorUnauthorized = errors.New("unauthorized")
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
	ErrLoginRequired  = errors.New("please log in")

	// Quota errors.
	ErrQuotaExceeded   = errors.New("quota exceeded")
	ErrSessionNotReady = errors.New("session is still initializing, try again in a moment")

	// Validation errors raised before any network call.
	ErrValidation       = errors.New("validation error")
	ErrPasswordMismatch = errors.New("passwords do not match")
)
