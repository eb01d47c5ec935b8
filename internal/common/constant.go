// Package common contains constants and sentinel errors shared by the pdfier
// client, its backend transport and the development server.
package common

const (
	// AccessTokenCookie and RefreshTokenCookie are the cookie names the
	// backend expects. They must not change.
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"

	// AuthorizationHeader carries "Bearer <accessToken>" on authenticated calls.
	AuthorizationHeader = "Authorization"
	BearerPrefix        = "Bearer "

	// GuestID is the fixed sentinel id of an anonymous visitor.
	GuestID = "guest"

	// PersistedStateKey names the metadata entry holding the persisted session.
	PersistedStateKey = "auth-storage"
)
